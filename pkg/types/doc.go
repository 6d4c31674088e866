// Package types 定义 udpchat 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 udpchat 内部包。
// 所有类型都是纯值类型，用于在服务端、客户端和编解码器之间传递数据。
//
// # 文件组织
//
//   - enums.go     - MsgType 消息类型枚举
//   - names.go     - 保留名称、分隔符、名称校验
//   - directory.go - ClientRecord, Directory 目录快照
//   - reply.go     - 服务端应答载荷常量
//   - errors.go    - 公共错误定义
package types
