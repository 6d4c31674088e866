package client

import (
	"container/list"
	"sync"
)

// PrivateMessage 缓存的私聊消息
type PrivateMessage struct {
	Sender string
	Text   string
}

// Inbox 群组模式下缓存的私聊消息
//
// FIFO，有界；满时丢弃最早的消息。
type Inbox struct {
	mu      sync.Mutex
	queue   *list.List
	maxSize int

	dropped int64
}

// NewInbox 创建收件箱
func NewInbox(maxSize int) *Inbox {
	if maxSize <= 0 {
		maxSize = DefaultConfig().InboxSize
	}
	return &Inbox{
		queue:   list.New(),
		maxSize: maxSize,
	}
}

// Push 入队，返回是否因容量丢弃了最早的消息
func (b *Inbox) Push(m PrivateMessage) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := false
	for b.queue.Len() >= b.maxSize {
		b.queue.Remove(b.queue.Front())
		b.dropped++
		dropped = true
	}
	b.queue.PushBack(m)
	return dropped
}

// Drain 取出全部消息并清空
func (b *Inbox) Drain() []PrivateMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]PrivateMessage, 0, b.queue.Len())
	for e := b.queue.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(PrivateMessage))
	}
	b.queue.Init()
	return out
}

// Len 返回当前消息数
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.Len()
}

// Dropped 返回因容量丢弃的消息总数
func (b *Inbox) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
