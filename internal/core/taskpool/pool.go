// Package taskpool 提供有界的即发即弃任务池
//
// 服务端的应答、目录广播、群消息扇出都通过任务池异步发送，
// 接收循环从不因发送而阻塞。队列满时任务被丢弃并记录警告；
// 任务返回的错误和 panic 只记录日志，不会影响其他任务。
package taskpool

import (
	"errors"
	"sync"

	"github.com/dep2p/go-udpchat/pkg/lib/log"
)

var logger = log.Logger("core/taskpool")

var (
	// ErrPoolClosed 任务池已关闭
	ErrPoolClosed = errors.New("taskpool: pool closed")

	// ErrQueueFull 队列已满，任务被丢弃
	ErrQueueFull = errors.New("taskpool: queue full")
)

// Task 任务
type Task func() error

// Config 任务池配置
type Config struct {
	// Workers worker 数量
	Workers int

	// QueueSize 队列长度
	QueueSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Workers:   8,
		QueueSize: 1024,
	}
}

// Pool 有界任务池
type Pool struct {
	name  string
	tasks chan namedTask

	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	onDrop func(name string)
}

type namedTask struct {
	name string
	fn   Task
}

// Option 任务池选项
type Option func(*Pool)

// WithDropHook 设置任务被丢弃时的回调
func WithDropHook(fn func(name string)) Option {
	return func(p *Pool) {
		p.onDrop = fn
	}
}

// New 创建并启动任务池
func New(name string, cfg Config, opts ...Option) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}

	p := &Pool{
		name:  name,
		tasks: make(chan namedTask, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}
	return p
}

// Submit 提交任务，不阻塞
//
// name 仅用于日志。
func (p *Pool) Submit(name string, fn Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- namedTask{name: name, fn: fn}:
		return nil
	default:
		logger.Warn("任务队列已满，丢弃任务", "pool", p.name, "task", name)
		if p.onDrop != nil {
			p.onDrop(name)
		}
		return ErrQueueFull
	}
}

// Pending 队列中等待执行的任务数
func (p *Pool) Pending() int {
	return len(p.tasks)
}

// Close 停止接收新任务，并等待已入队任务执行完毕
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.run(t)
	}
}

func (p *Pool) run(t namedTask) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("任务 panic", "pool", p.name, "task", t.name, "recover", r)
		}
	}()

	if err := t.fn(); err != nil {
		logger.Debug("任务失败", "pool", p.name, "task", t.name, "error", err)
	}
}
