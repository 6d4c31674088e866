// Package envelope 实现 udpchat 的文本信封编解码
//
// 每个 UDP 数据报承载一个信封，由换行拼接：
//
//	port:
//	<发送方监听端口>
//	name
//	<发送方名称>
//	type:
//	<消息类型>
//	msg:          （可选）
//	<载荷>        （可选）
//
// 不带载荷时恰好 6 行，带载荷时恰好 8 行，其余一律视为格式错误。
//
// 在原始信封之上，Parse/Build 提供按消息类型区分的具体结构
// （Register、SendGroup、GroupMessage 等），调用方通过类型分支处理，
// 而不是再去比较类型字符串。
package envelope
