package coordinator

import (
	"errors"

	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/internal/server/group"
	"github.com/dep2p/go-udpchat/pkg/types"
)

// Handle 处理一个入站数据报
//
// 在接收循环中同步调用；所有发送都交给发送池。
func (c *Coordinator) Handle(d transport.Datagram) {
	msg, err := envelope.Parse(d.Envelope)
	if err != nil {
		logger.Debug("丢弃无法解析的请求", "from", d.From.String(), "error", err)
		return
	}
	if !msg.Type().IsServerBound() && msg.Type() != types.MsgAck {
		logger.Debug("丢弃非服务端消息", "type", msg.Type(), "from", d.From.String())
		return
	}

	sender := d.Envelope.Name
	logger.Debug("收到请求", "type", msg.Type(), "sender", sender, "from", d.From.String())

	switch m := msg.(type) {
	case envelope.Register:
		c.handleRegister(d, sender)
	case envelope.Deregister:
		c.handleDeregister(d, sender)
	case envelope.Kick:
		c.handleKick(d, sender, m.Target)
	case envelope.CreateGroup:
		c.handleCreateGroup(d, m.Group)
	case envelope.ListGroups:
		c.handleListGroups(d)
	case envelope.JoinGroup:
		c.handleJoinGroup(d, sender, m.Group)
	case envelope.ListMembers:
		c.handleListMembers(d, sender, m.Group)
	case envelope.LeaveGroup:
		c.handleLeaveGroup(d, sender, m.Group)
	case envelope.SendGroup:
		c.handleSendGroup(d, sender, m)
	case envelope.Ack:
		c.handleAck(sender, m)
	}
}

// ============================================================================
//                              目录
// ============================================================================

func (c *Coordinator) handleRegister(d transport.Datagram, name string) {
	to := d.ReplyAddr()

	// 保留名称与非法名称一律按名称已占用拒绝
	if err := types.ValidateClientName(name); err != nil {
		c.reporter.LogEvent(metrics.EventRejected, 1)
		logger.Info("拒绝非法名称注册", "name", name, "error", err)
		c.reply(to, envelope.RegAck{Result: types.ReplyNameTaken})
		return
	}

	ip := d.From.IP.String()
	err := c.dir.Register(name, ip, d.Envelope.Port)
	switch {
	case err == nil:
		c.reporter.LogEvent(metrics.EventRegistered, 1)
		logger.Info("客户端已注册", "name", name, "ip", ip, "port", d.Envelope.Port)
		c.reply(to, envelope.RegAck{Result: types.ReplyRegistered})
		c.broadcastTable()
	case errors.Is(err, types.ErrNameTaken):
		c.reporter.LogEvent(metrics.EventRejected, 1)
		logger.Info("注册被拒绝：名称已占用", "name", name)
		c.reply(to, envelope.RegAck{Result: types.ReplyNameTaken})
	case errors.Is(err, types.ErrAddressTaken):
		c.reporter.LogEvent(metrics.EventRejected, 1)
		logger.Info("注册被拒绝：地址已占用", "name", name, "ip", ip, "port", d.Envelope.Port)
		c.reply(to, envelope.RegAck{Result: types.ReplyAddressTaken})
	default:
		logger.Warn("注册失败", "name", name, "error", err)
	}
}

func (c *Coordinator) handleDeregister(d transport.Datagram, name string) {
	changed := c.dir.Deregister(name)
	c.ack(d.ReplyAddr(), "")
	if changed {
		c.reporter.LogEvent(metrics.EventDeregistered, 1)
		logger.Info("客户端已注销", "name", name)
		c.broadcastTable()
	}
}

// handleKick 处理对端无响应的报告，无论目录是否变化都回复 ack，
// 报告者借此确认服务端仍然可达
func (c *Coordinator) handleKick(d transport.Datagram, reporter, target string) {
	changed := c.dir.Evict(target)
	c.ack(d.ReplyAddr(), "")
	if changed {
		c.reporter.LogEvent(metrics.EventKicked, 1)
		logger.Info("客户端被报告无响应，已置为离线", "target", target, "reporter", reporter)
		c.broadcastTable()
	}
}

// ============================================================================
//                              群组
// ============================================================================

func (c *Coordinator) handleCreateGroup(d transport.Datagram, name string) {
	err := c.groups.Create(name)
	switch {
	case err == nil:
		c.reporter.LogEvent(metrics.EventGroupCreated, 1)
		logger.Info("群组已创建", "group", name, "by", d.Envelope.Name)
		c.ack(d.ReplyAddr(), types.ReplyCreated)
	case errors.Is(err, group.ErrGroupExists):
		c.ack(d.ReplyAddr(), types.ReplyExists)
	default:
		c.ack(d.ReplyAddr(), types.ReplyInvalidName)
	}
}

func (c *Coordinator) handleListGroups(d transport.Datagram) {
	c.ack(d.ReplyAddr(), types.JoinNames(c.groups.List()))
}

func (c *Coordinator) handleJoinGroup(d transport.Datagram, member, name string) {
	if err := c.groups.Join(name, member); err != nil {
		c.ack(d.ReplyAddr(), types.ReplyNotExists)
		return
	}
	c.reporter.LogEvent(metrics.EventGroupJoined, 1)
	logger.Info("成员加入群组", "group", name, "member", member)
	logger.Debug("群组表", "groups", c.groups.Snapshot())
	c.ack(d.ReplyAddr(), types.ReplyJoined)
}

func (c *Coordinator) handleListMembers(d transport.Datagram, requester, name string) {
	members, err := c.groups.ListMembers(name, requester)
	if err != nil {
		c.ack(d.ReplyAddr(), types.ReplyNotInGroup)
		return
	}
	c.ack(d.ReplyAddr(), types.JoinNames(members))
}

func (c *Coordinator) handleLeaveGroup(d transport.Datagram, member, name string) {
	if err := c.groups.Leave(name, member); err != nil {
		c.ack(d.ReplyAddr(), types.ReplyNotInGroup)
		return
	}
	c.reporter.LogEvent(metrics.EventGroupLeft, 1)
	logger.Info("成员离开群组", "group", name, "member", member)
	logger.Debug("群组表", "groups", c.groups.Snapshot())
	c.ack(d.ReplyAddr(), "")
}

// ============================================================================
//                              群消息
// ============================================================================

func (c *Coordinator) handleSendGroup(d transport.Datagram, sender string, m envelope.SendGroup) {
	recipients, err := c.groups.Recipients(m.Group, sender)
	if err != nil {
		c.ack(d.ReplyAddr(), types.ReplyNotInGroup)
		return
	}

	c.ack(d.ReplyAddr(), "")
	logger.Info("收到群消息", "group", m.Group, "sender", sender, "recipients", len(recipients))

	if len(recipients) == 0 {
		return
	}
	if _, err := c.engine.Publish(sender, m.Group, m.Text, recipients); err != nil {
		logger.Warn("群消息投递失败", "group", m.Group, "sender", sender, "error", err)
	}
}

func (c *Coordinator) handleAck(member string, m envelope.Ack) {
	sender, ts, ok := m.GroupKey()
	if !ok {
		logger.Debug("忽略不带群消息标识的 ack", "member", member)
		return
	}
	result := c.engine.HandleAck(sender, ts, member)
	logger.Debug("群消息确认", "sender", sender, "timestamp", ts, "member", member, "result", result)
}
