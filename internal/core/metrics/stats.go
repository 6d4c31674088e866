package metrics

// DropReason 数据报丢弃原因
type DropReason string

const (
	// DropMalformed 信封格式错误
	DropMalformed DropReason = "malformed"
	// DropRateLimited 来源超出限速
	DropRateLimited DropReason = "rate_limited"
	// DropSendError 发送失败
	DropSendError DropReason = "send_error"
	// DropQueueFull 发送池队列已满
	DropQueueFull DropReason = "queue_full"
	// DropTruncated 数据报超过读缓冲，内容被截断
	DropTruncated DropReason = "truncated"
)

// Event 业务事件
type Event string

const (
	EventRegistered     Event = "registered"
	EventRejected       Event = "registration_rejected"
	EventDeregistered   Event = "deregistered"
	EventKicked         Event = "kicked"
	EventGroupCreated   Event = "group_created"
	EventGroupJoined    Event = "group_joined"
	EventGroupLeft      Event = "group_left"
	EventGroupMessage   Event = "group_message"
	EventAckRecorded    Event = "ack_recorded"
	EventAckLate        Event = "ack_late"
	EventMemberEvicted  Event = "member_evicted"
	EventTableBroadcast Event = "table_broadcast"
)

// Stats 指标快照
type Stats struct {
	DatagramsIn  int64 // 入站数据报
	DatagramsOut int64 // 出站数据报
	BytesIn      int64 // 入站字节
	BytesOut     int64 // 出站字节

	RateIn  float64 // 入站速率（字节/秒）
	RateOut float64 // 出站速率（字节/秒）

	Dropped map[DropReason]int64
	Events  map[Event]int64
}
