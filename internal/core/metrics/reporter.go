package metrics

// Reporter 记录与读取指标
type Reporter interface {
	// LogSentDatagram 记录一个出站数据报
	LogSentDatagram(size int)

	// LogRecvDatagram 记录一个入站数据报
	LogRecvDatagram(size int)

	// LogDropped 记录一个被丢弃的数据报
	LogDropped(reason DropReason)

	// LogEvent 记录业务事件
	LogEvent(e Event, n int)

	// Snapshot 返回当前快照
	Snapshot() Stats

	// Reset 清零
	Reset()
}

var (
	_ Reporter = (*Counter)(nil)
	_ Reporter = NopReporter{}
)

// NopReporter 不记录任何内容
type NopReporter struct{}

func (NopReporter) LogSentDatagram(int)     {}
func (NopReporter) LogRecvDatagram(int)     {}
func (NopReporter) LogDropped(DropReason)   {}
func (NopReporter) LogEvent(Event, int)     {}
func (NopReporter) Snapshot() Stats         { return Stats{} }
func (NopReporter) Reset()                  {}
