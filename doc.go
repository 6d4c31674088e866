// Package udpchat 提供基于 UDP 数据报的聊天服务
//
// udpchat 由一个目录服务器和若干客户端组成：
//
//   - 服务器：维护客户端目录（名称永久唯一，记录在线状态）与群组表，
//     转发群消息并在宽限期内收集确认，未确认的成员被逐出群组
//   - 客户端：向服务器注册，点对点收发私聊消息，加入群组收发群消息；
//     每个请求等待确认，超时重试，耗尽后报告服务器或结束会话
//
// 所有消息都是文本信封（见 internal/protocol/envelope），可靠性、在线状态
// 和群组成员关系全部在应用层实现。
//
// # 快速开始
//
//	srv, err := udpchat.StartServer(ctx, udpchat.WithServerPort(5000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
//
//	err = udpchat.RunClient(ctx, os.Stdin,
//	    udpchat.WithClientName("alice"),
//	    udpchat.WithServer("127.0.0.1", 5000),
//	    udpchat.WithClientPort(6000),
//	)
//
// # 文件组织
//
//   - server.go: 服务器门面（StartServer）
//   - client.go: 客户端门面（RunClient）
//   - fx.go: Fx 应用组装
//   - options.go: 用户选项
//   - logging.go: 日志初始化
//   - errors.go: 公共错误
package udpchat
