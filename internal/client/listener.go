package client

import (
	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/pkg/types"
)

// handle 处理一个入站数据报，在接收循环中同步调用
func (c *Client) handle(d transport.Datagram) {
	msg, err := envelope.Parse(d.Envelope)
	if err != nil {
		logger.Debug("丢弃无法解析的消息", "from", d.From.String(), "error", err)
		return
	}

	switch m := msg.(type) {
	case envelope.RegAck:
		c.onRegAck(m)
	case envelope.Table:
		c.onTable(m)
	case envelope.GroupMessage:
		c.onGroupMessage(d, m)
	case envelope.PrivateMessage:
		c.onPrivateMessage(d, m)
	case envelope.Ack:
		c.onAck(d.Envelope.Name, m)
	default:
		logger.Debug("丢弃非客户端消息", "type", msg.Type(), "from", d.From.String())
	}
}

func (c *Client) onRegAck(m envelope.RegAck) {
	switch types.RegistrationError(m.Result) {
	case nil:
		c.console.Notice("Welcome, You are registered.")
	case types.ErrNameTaken:
		c.console.Alert("Someone has already used this name. Try another one.")
	case types.ErrAddressTaken:
		c.console.Alert("Someone has already used this (IP, port) combination. Try another one.")
	}
	c.slots.Ack(types.ServerName, Reply{Info: m.Result, HasInfo: true})
}

func (c *Client) onTable(m envelope.Table) {
	c.mu.Lock()
	c.table = m.Directory.Clone()
	c.mu.Unlock()

	encoded, err := types.EncodeDirectory(m.Directory)
	if err != nil {
		encoded = ""
	}
	c.console.Notice("%sClient table updated.\n%s", c.prefix(), encoded)
	logger.Debug("目录镜像已更新", "clients", len(m.Directory), "online", m.Directory.Online())
}

func (c *Client) onGroupMessage(d transport.Datagram, m envelope.GroupMessage) {
	ack := envelope.Ack{Info: m.Sender + types.Separator + m.Timestamp, HasInfo: true}
	c.reply(d, ack)
	c.console.Notice("%sGroup_Message %s: %s", c.prefix(), m.Sender, m.Text)
}

func (c *Client) onPrivateMessage(d transport.Datagram, m envelope.PrivateMessage) {
	c.reply(d, envelope.Ack{})

	sender := d.Envelope.Name
	if c.Group() != "" {
		if c.inbox.Push(PrivateMessage{Sender: sender, Text: m.Text}) {
			logger.Warn("收件箱已满，丢弃最早的消息", "size", c.inbox.Len())
		}
		return
	}
	c.console.Notice("%s: %s", sender, m.Text)
}

func (c *Client) onAck(from string, m envelope.Ack) {
	if !c.slots.Ack(from, Reply{Info: m.Info, HasInfo: m.HasInfo}) {
		logger.Debug("忽略未等待的 ack", "from", from)
	}
}

// reply 直接回复到来源 IP 与信封中的监听端口
func (c *Client) reply(d transport.Datagram, m envelope.Message) {
	env, err := envelope.Build(c.port, c.cfg.Name, m)
	if err != nil {
		logger.Warn("构造应答失败", "type", m.Type(), "error", err)
		return
	}
	if err := c.conn.Send(d.ReplyAddr(), env); err != nil {
		logger.Debug("发送应答失败", "type", m.Type(), "to", d.ReplyAddr().String(), "error", err)
	}
}
