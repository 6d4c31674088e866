// Package delivery 实现群消息的投递与确认
//
// 一条群消息的生命周期：
//
//  1. Publish 为消息打上严格递增的时间戳，以 (sender, timestamp) 为键
//     登记待确认表，所有接收者初始为未确认；登记先于任何数据报发出
//  2. 通过发送池向每个接收者单播一条 grp_msg
//  3. 接收者回复 ack sender;timestamp，HandleAck 标记该接收者
//  4. 宽限期到期时删除该条目，仍未确认的接收者被移出群组
//
// 宽限期到期后才到达的 ack 是无副作用的空操作。
// 被移出群组的成员不会收到通知，下次群操作时会得到 "already not in group"。
package delivery
