package client

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/pkg/types"
)

const msgNotInGroup = "You're already not in the group, because the Server didn't receive your previous ack to a group message."

// ============================================================================
//                              请求与重试
// ============================================================================

// request 向 target 发送请求并等待确认
//
// 槽在首次发送前准备好，重试期间保持，返回前复位。
// 全部尝试超时返回 ErrAckTimeout；ctx 取消返回 ctx.Err()。
func (c *Client) request(ctx context.Context, target string, to *net.UDPAddr, m envelope.Message) (Reply, error) {
	env, err := envelope.Build(c.port, c.cfg.Name, m)
	if err != nil {
		return Reply{}, err
	}

	c.slots.Arm(target)
	defer c.slots.Take(target)

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.conn.Send(to, env); err != nil {
			if errors.Is(err, transport.ErrDatagramTooLarge) {
				return Reply{}, err
			}
			logger.Warn("发送请求失败", "type", m.Type(), "target", target, "attempt", attempt, "error", err)
		}
		if r, ok := c.slots.Wait(ctx, target, c.cfg.AckTimeout); ok {
			logger.Debug("收到确认", "type", m.Type(), "target", target, "attempt", attempt, "info", r.Info)
			return r, nil
		}
		if err := ctx.Err(); err != nil {
			return Reply{}, err
		}
		logger.Debug("等待确认超时", "type", m.Type(), "target", target, "attempt", attempt)
	}
	return Reply{}, types.ErrAckTimeout
}

// serverRequest 向服务端发送请求；耗尽时结束会话
func (c *Client) serverRequest(ctx context.Context, m envelope.Message) (Reply, error) {
	r, err := c.request(ctx, types.ServerName, c.server, m)
	if errors.Is(err, types.ErrAckTimeout) {
		return Reply{}, c.serverUnresponsive()
	}
	return r, err
}

// serverUnresponsive 输出提示，清空收件箱并结束会话
func (c *Client) serverUnresponsive() error {
	prefix := c.prefix()
	c.console.Alert("%sServer not responding", prefix)
	c.console.Alert("%sExiting", prefix)
	c.flushInbox()
	logger.Warn("服务端无响应", "name", c.cfg.Name, "server", c.server.String())
	return ended(ReasonServerUnresponsive)
}

// peerUnresponsive 向服务端报告无响应的对端，并借 kick 的 ack 确认服务端存活
func (c *Client) peerUnresponsive(ctx context.Context, target string) error {
	c.console.Println("No ACK from %s, message not delivered", target)
	c.console.Println("Report this issue to server")
	logger.Info("对端无响应，报告服务端", "target", target)

	env, err := envelope.Build(c.port, c.cfg.Name, envelope.Kick{Target: target})
	if err != nil {
		return err
	}

	c.slots.Arm(types.ServerName)
	defer c.slots.Take(types.ServerName)

	if err := c.conn.Send(c.server, env); err != nil {
		logger.Warn("发送 kick 失败", "target", target, "error", err)
	}
	if _, ok := c.slots.Wait(ctx, types.ServerName, c.cfg.AckTimeout); ok {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}
	return c.serverUnresponsive()
}

// ============================================================================
//                              注册
// ============================================================================

// register 发送一次 reg，在 MaxAttempts × AckTimeout 内等待 reg_ack
//
// 不重发：服务端会以名称已占用拒绝重复注册。
func (c *Client) register(ctx context.Context) error {
	env, err := envelope.Build(c.port, c.cfg.Name, envelope.Register{})
	if err != nil {
		return err
	}

	c.slots.Arm(types.ServerName)
	if err := c.conn.Send(c.server, env); err != nil {
		logger.Warn("发送注册请求失败", "error", err)
	}
	c.console.Println("Registration request sent")

	r, ok := c.slots.Wait(ctx, types.ServerName, c.cfg.AckTimeout*time.Duration(c.cfg.MaxAttempts))
	c.slots.Take(types.ServerName)
	if !ok {
		if ctx.Err() != nil {
			return nil
		}
		return c.serverUnresponsive()
	}

	err = types.RegistrationError(r.Info)
	switch {
	case err == nil:
		logger.Info("注册成功", "name", c.cfg.Name)
		return nil
	case errors.Is(err, types.ErrNameTaken):
		return ended(ReasonNameTaken)
	case errors.Is(err, types.ErrAddressTaken):
		return ended(ReasonAddressTaken)
	default:
		logger.Warn("无法识别的注册应答", "reply", r.Info)
		return err
	}
}

// ============================================================================
//                              命令执行
// ============================================================================

// Execute 执行一行用户命令
//
// 只有会话结束（*SessionEnded）或不可恢复的错误才返回非 nil。
func (c *Client) Execute(ctx context.Context, line string) error {
	cmd, err := ParseCommand(line, c.cfg.Name, c.Group())
	switch {
	case errors.Is(err, ErrGroupNameSeparator):
		c.console.Println("Group name should not contain ';'. Try again.")
		return nil
	case err != nil:
		c.console.Println("%sInvalid command", c.prefix())
		return nil
	}

	reqID := uuid.NewString()
	logger.Debug("执行命令", "req", reqID, "cmd", cmd.Kind, "group", cmd.Group, "target", cmd.Target)

	switch cmd.Kind {
	case CmdSend:
		err = c.sendPrivate(ctx, cmd)
	case CmdDereg:
		err = c.deregister(ctx)
	case CmdCreateGroup:
		err = c.createGroup(ctx, cmd.Group)
	case CmdListGroups:
		err = c.listGroups(ctx)
	case CmdJoinGroup:
		err = c.joinGroup(ctx, cmd.Group)
	case CmdSendGroup:
		err = c.sendGroup(ctx, cmd)
	case CmdListMembers:
		err = c.listMembers(ctx, cmd.Group)
	case CmdLeaveGroup:
		err = c.leaveGroup(ctx, cmd.Group)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if errors.Is(err, transport.ErrDatagramTooLarge) {
		c.console.Println("%sMessage too long, not sent", c.prefix())
		return nil
	}
	if err != nil {
		logger.Debug("命令结束会话", "req", reqID, "cmd", cmd.Kind, "error", err)
	}
	return err
}

func (c *Client) sendPrivate(ctx context.Context, cmd Command) error {
	rec, ok := c.lookup(cmd.Target)
	if !ok {
		c.console.Println("User %s does not exist", cmd.Target)
		return nil
	}
	if !rec.Online {
		c.console.Println("User %s is offline, message not sent", cmd.Target)
		return nil
	}

	_, err := c.request(ctx, cmd.Target, rec.Addr(), envelope.PrivateMessage{Text: cmd.Text})
	if errors.Is(err, types.ErrAckTimeout) {
		return c.peerUnresponsive(ctx, cmd.Target)
	}
	if err != nil {
		return err
	}
	c.console.Println("Message received by %s.", cmd.Target)
	return nil
}

func (c *Client) deregister(ctx context.Context) error {
	if _, err := c.serverRequest(ctx, envelope.Deregister{}); err != nil {
		return err
	}
	c.console.Println("You are Offline. Bye.")
	c.flushInbox()
	return ended(ReasonDeregistered)
}

func (c *Client) createGroup(ctx context.Context, group string) error {
	r, err := c.serverRequest(ctx, envelope.CreateGroup{Group: group})
	if err != nil {
		return err
	}
	switch r.Info {
	case types.ReplyCreated:
		c.console.Println("Group %s created by Server.", group)
	case types.ReplyExists:
		c.console.Println("Group %s already exists.", group)
	default:
		c.console.Println("Invalid group name %s", group)
	}
	return nil
}

func (c *Client) listGroups(ctx context.Context) error {
	r, err := c.serverRequest(ctx, envelope.ListGroups{})
	if err != nil {
		return err
	}
	names := types.SplitNames(r.Info)
	if !r.HasInfo || len(names) == 0 {
		c.console.Println("No available group right now")
		return nil
	}
	c.console.Println("Available group chats:")
	for _, name := range names {
		c.console.Println("%s", name)
	}
	return nil
}

func (c *Client) joinGroup(ctx context.Context, group string) error {
	r, err := c.serverRequest(ctx, envelope.JoinGroup{Group: group})
	if err != nil {
		return err
	}
	if r.Info == types.ReplyJoined {
		c.enterGroup(group)
		c.console.Println("Entered group %s successfully", group)
		return nil
	}
	c.console.Println("Group %s does not exist", group)
	return nil
}

func (c *Client) sendGroup(ctx context.Context, cmd Command) error {
	r, err := c.serverRequest(ctx, envelope.SendGroup{Group: cmd.Group, Text: cmd.Text})
	if err != nil {
		return err
	}
	if r.Info == types.ReplyNotInGroup {
		c.notInGroup()
		return nil
	}
	c.console.Println("(%s) Message received by Server.", cmd.Group)
	return nil
}

func (c *Client) listMembers(ctx context.Context, group string) error {
	r, err := c.serverRequest(ctx, envelope.ListMembers{Group: group})
	if err != nil {
		return err
	}
	if r.Info == types.ReplyNotInGroup {
		c.notInGroup()
		return nil
	}
	c.console.Println("(%s) Members in the group %s:", group, group)
	for _, m := range types.SplitNames(r.Info) {
		c.console.Println("(%s) %s", group, m)
	}
	return nil
}

func (c *Client) leaveGroup(ctx context.Context, group string) error {
	r, err := c.serverRequest(ctx, envelope.LeaveGroup{Group: group})
	if err != nil {
		return err
	}
	if r.Info == types.ReplyNotInGroup {
		c.notInGroup()
		return nil
	}
	c.console.Println("Leave group chat %s", group)
	c.exitGroup()
	c.flushInbox()
	return nil
}

// notInGroup 服务端已将本客户端驱逐出群组
func (c *Client) notInGroup() {
	c.console.Println(msgNotInGroup)
	c.exitGroup()
	c.flushInbox()
}
