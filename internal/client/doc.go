// Package client 实现聊天客户端
//
// 客户端由两个并发部分组成：
//
//   - 请求引擎：逐行读取用户命令，向服务端或对端发送请求，
//     在确认槽上等待 ack，超时重试，耗尽后向服务端报告（kick）或结束会话
//   - 入站监听：唯一的读取者，处理 reg_ack、table、grp_msg、pri_msg 和 ack
//
// 两者通过确认槽（SlotTable）、目录镜像与收件箱（Inbox）共享状态，
// 由 errgroup 统一监督。会话以 *SessionEnded 结构化结束，CLI 据此决定退出码。
//
// 同一时刻最多只有一个用户发起的请求在等待确认。
package client
