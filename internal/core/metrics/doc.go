// Package metrics 提供 udpchat 的流量与事件指标
//
// 统计内容：
//   - 数据报与字节计数（入站/出站）
//   - 丢弃计数（格式错误、限速、发送失败、发送池已满）
//   - 业务事件计数（注册、群消息、驱逐等）
//   - 最近 60 秒的滑动窗口速率
//
// Counter 是唯一的实现，既可直接读取快照，
// 也可通过 Collector 注册到 Prometheus，并可选地暴露 /metrics 端点。
//
// # Fx 模块
//
//	app := fx.New(
//	    metrics.Module,
//	    fx.Invoke(func(r metrics.Reporter) {
//	        r.LogRecvDatagram(128)
//	    }),
//	)
//
// 关闭指标时 Module 提供 NopReporter，调用方无需判空。
package metrics
