// Package transport 实现 udpchat 的 UDP 数据报传输
//
// 一个 Transport 绑定一个 UDP socket，既用于接收也用于发送：
//   - Serve 是该 socket 唯一的读者，逐个解码数据报并交给 Handler
//   - 格式错误或超出限速的数据报被直接丢弃并计入指标，不会交给 Handler
//   - Send 可被多个 goroutine 并发调用
//
// 回复地址规则：对端的 IP 取自数据报来源，端口取自信封中的监听端口
// （见 Datagram.ReplyAddr）。
package transport
