package coordinator

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-udpchat/config"
	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/transport"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/internal/server/delivery"
	"github.com/dep2p/go-udpchat/pkg/types"
)

const (
	grace   = 500 * time.Millisecond
	waitFor = 2 * time.Second
)

// ============================================================================
//                              测试辅助
// ============================================================================

type harness struct {
	srv     *Coordinator
	addr    *net.UDPAddr
	clk     *clock.Mock
	reports chan delivery.EvictionReport
	counter *metrics.Counter
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tr, err := transport.Listen(transport.Config{ListenIP: "127.0.0.1"})
	require.NoError(t, err)

	h := &harness{
		clk:     clock.NewMock(),
		reports: make(chan delivery.EvictionReport, 8),
		counter: metrics.NewCounter(),
	}
	cfg := DefaultConfig()
	cfg.GracePeriod = grace

	h.srv, err = New(cfg, tr,
		WithClock(h.clk),
		WithReporter(h.counter),
		WithEvictionObserver(func(r delivery.EvictionReport) { h.reports <- r }),
	)
	require.NoError(t, err)
	require.NoError(t, h.srv.Start(context.Background()))
	t.Cleanup(func() { _ = h.srv.Stop(context.Background()) })

	h.addr = tr.LocalAddr()
	return h
}

type peer struct {
	name string
	tr   *transport.Transport
	in   *mailbox
}

// mailbox 收到的数据报；next 跳过的消息留在 held 中，不会丢失
type mailbox struct {
	ch   chan transport.Datagram
	held []transport.Datagram
}

func newPeer(t *testing.T, name string) *peer {
	t.Helper()

	tr, err := transport.Listen(transport.Config{ListenIP: "127.0.0.1"})
	require.NoError(t, err)

	p := &peer{name: name, tr: tr, in: &mailbox{ch: make(chan transport.Datagram, 64)}}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = tr.Serve(ctx, func(d transport.Datagram) { p.in.ch <- d }) }()
	t.Cleanup(func() {
		cancel()
		_ = tr.Close()
	})
	return p
}

func (p *peer) send(t *testing.T, to *net.UDPAddr, m envelope.Message) {
	t.Helper()
	e, err := envelope.Build(p.tr.Port(), p.name, m)
	require.NoError(t, err)
	require.NoError(t, p.tr.Send(to, e))
}

// next 返回下一条指定类型的消息，其他类型的消息按到达顺序保留
func (p *peer) next(t *testing.T, want types.MsgType) (envelope.Message, transport.Datagram) {
	t.Helper()
	for i, d := range p.in.held {
		if d.Envelope.Type == want {
			p.in.held = append(p.in.held[:i], p.in.held[i+1:]...)
			return p.parse(t, d), d
		}
	}
	deadline := time.After(waitFor)
	for {
		select {
		case d := <-p.in.ch:
			if d.Envelope.Type != want {
				p.in.held = append(p.in.held, d)
				continue
			}
			return p.parse(t, d), d
		case <-deadline:
			t.Fatalf("%s: no %s received", p.name, want)
			return nil, transport.Datagram{}
		}
	}
}

func (p *peer) parse(t *testing.T, d transport.Datagram) envelope.Message {
	t.Helper()
	m, err := envelope.Parse(d.Envelope)
	require.NoError(t, err)
	return m
}

// tableWhere 等待满足条件的目录广播
func (p *peer) tableWhere(t *testing.T, ok func(types.Directory) bool) types.Directory {
	t.Helper()
	deadline := time.Now().Add(waitFor)
	for time.Now().Before(deadline) {
		m, _ := p.next(t, types.MsgTable)
		if dir := m.(envelope.Table).Directory; ok(dir) {
			return dir
		}
	}
	t.Fatalf("%s: no matching table received", p.name)
	return nil
}

func (p *peer) ack(t *testing.T) envelope.Ack {
	t.Helper()
	m, _ := p.next(t, types.MsgAck)
	return m.(envelope.Ack)
}

// request 发送请求并等待 ack
func (p *peer) request(t *testing.T, h *harness, m envelope.Message) envelope.Ack {
	t.Helper()
	p.send(t, h.addr, m)
	return p.ack(t)
}

func (p *peer) register(t *testing.T, h *harness) {
	t.Helper()
	p.send(t, h.addr, envelope.Register{})
	m, _ := p.next(t, types.MsgRegAck)
	require.Equal(t, types.ReplyRegistered, m.(envelope.RegAck).Result)
}

// quiet 断言一段时间内没有收到指定类型的消息
func (p *peer) quiet(t *testing.T, want types.MsgType, d time.Duration) {
	t.Helper()
	deadline := time.After(d)
	for {
		select {
		case got := <-p.in.ch:
			if got.Envelope.Type == want {
				t.Fatalf("%s: unexpected %s", p.name, want)
			}
			p.in.held = append(p.in.held, got)
		case <-deadline:
			return
		}
	}
}

// ============================================================================
//                              注册
// ============================================================================

func TestRegister_ReplyAndBroadcast(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")

	alice.send(t, h.addr, envelope.Register{})
	m, d := alice.next(t, types.MsgRegAck)
	assert.Equal(t, envelope.RegAck{Result: types.ReplyRegistered}, m)
	assert.Equal(t, types.ServerName, d.Envelope.Name)
	assert.Equal(t, h.srv.Port(), d.Envelope.Port)

	m, _ = alice.next(t, types.MsgTable)
	table := m.(envelope.Table).Directory
	require.Contains(t, table, "alice")
	assert.True(t, table["alice"].Online)
	assert.Equal(t, alice.tr.Port(), table["alice"].Port)
	assert.Equal(t, "127.0.0.1", table["alice"].IP)
}

func TestRegister_Refusals(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	alice.register(t, h)

	// 同名
	dup := newPeer(t, "alice")
	dup.send(t, h.addr, envelope.Register{})
	m, _ := dup.next(t, types.MsgRegAck)
	assert.Equal(t, types.ReplyNameTaken, m.(envelope.RegAck).Result)

	// 同地址：复用 alice 的 socket 以不同名称注册
	imposter := &peer{name: "bob", tr: alice.tr, in: alice.in}
	imposter.send(t, h.addr, envelope.Register{})
	m, _ = imposter.next(t, types.MsgRegAck)
	assert.Equal(t, types.ReplyAddressTaken, m.(envelope.RegAck).Result)

	// 保留名称
	srv := newPeer(t, types.ServerName)
	srv.send(t, h.addr, envelope.Register{})
	m, _ = srv.next(t, types.MsgRegAck)
	assert.Equal(t, types.ReplyNameTaken, m.(envelope.RegAck).Result)

	assert.Equal(t, 1, h.srv.Directory().Len())
}

func TestDeregister_NamePermanentAddressReusable(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	alice.register(t, h)

	a := alice.request(t, h, envelope.Deregister{})
	assert.False(t, a.HasInfo)
	assert.False(t, h.srv.Directory().IsOnline("alice"))

	// 名称不可再用
	again := newPeer(t, "alice")
	again.send(t, h.addr, envelope.Register{})
	m, _ := again.next(t, types.MsgRegAck)
	assert.Equal(t, types.ReplyNameTaken, m.(envelope.RegAck).Result)

	// 地址可被其他名称复用
	bob := &peer{name: "bob", tr: alice.tr, in: alice.in}
	bob.register(t, h)
}

func TestKick_AlwaysAcked(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	bob := newPeer(t, "bob")
	alice.register(t, h)
	bob.register(t, h)

	a := alice.request(t, h, envelope.Kick{Target: "bob"})
	assert.False(t, a.HasInfo)
	assert.False(t, h.srv.Directory().IsOnline("bob"))

	// 目录变化后广播给仍在线的 alice；广播与 ack 的先后不固定
	alice.tableWhere(t, func(dir types.Directory) bool {
		rec, ok := dir["bob"]
		return ok && !rec.Online
	})

	// 重复报告仍然回复 ack
	alice.request(t, h, envelope.Kick{Target: "bob"})
	alice.request(t, h, envelope.Kick{Target: "nobody"})
}

// ============================================================================
//                              群组
// ============================================================================

func TestGroups_CreateListJoin(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	alice.register(t, h)

	a := alice.request(t, h, envelope.ListGroups{})
	assert.False(t, a.HasInfo)

	assert.Equal(t, types.ReplyCreated, alice.request(t, h, envelope.CreateGroup{Group: "g2"}).Info)
	assert.Equal(t, types.ReplyCreated, alice.request(t, h, envelope.CreateGroup{Group: "g1"}).Info)
	assert.Equal(t, types.ReplyExists, alice.request(t, h, envelope.CreateGroup{Group: "g1"}).Info)
	assert.Equal(t, types.ReplyInvalidName, alice.request(t, h, envelope.CreateGroup{Group: "a;b"}).Info)

	assert.Equal(t, "g1;g2", alice.request(t, h, envelope.ListGroups{}).Info)

	assert.Equal(t, types.ReplyNotExists, alice.request(t, h, envelope.JoinGroup{Group: "nope"}).Info)
	assert.Equal(t, types.ReplyJoined, alice.request(t, h, envelope.JoinGroup{Group: "g1"}).Info)
	assert.Equal(t, "alice", alice.request(t, h, envelope.ListMembers{Group: "g1"}).Info)
}

func TestGroups_ScenarioJoinLeave(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	bob := newPeer(t, "bob")
	alice.register(t, h)
	bob.register(t, h)

	alice.request(t, h, envelope.CreateGroup{Group: "g1"})
	alice.request(t, h, envelope.JoinGroup{Group: "g1"})
	bob.request(t, h, envelope.JoinGroup{Group: "g1"})

	assert.Equal(t, "alice;bob", bob.request(t, h, envelope.ListMembers{Group: "g1"}).Info)

	a := bob.request(t, h, envelope.LeaveGroup{Group: "g1"})
	assert.False(t, a.HasInfo)

	assert.Equal(t, types.ReplyNotInGroup, bob.request(t, h, envelope.ListMembers{Group: "g1"}).Info)
	assert.Equal(t, types.ReplyNotInGroup, bob.request(t, h, envelope.LeaveGroup{Group: "g1"}).Info)
	assert.Equal(t, types.ReplyNotInGroup, bob.request(t, h, envelope.SendGroup{Group: "g1", Text: "hi"}).Info)
	assert.Equal(t, "alice", alice.request(t, h, envelope.ListMembers{Group: "g1"}).Info)
}

// ============================================================================
//                              群消息
// ============================================================================

func TestSendGroup_FanOutAckAndEvict(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	bob := newPeer(t, "bob")
	carol := newPeer(t, "carol")
	for _, p := range []*peer{alice, bob, carol} {
		p.register(t, h)
	}

	alice.request(t, h, envelope.CreateGroup{Group: "g1"})
	for _, p := range []*peer{alice, bob, carol} {
		assert.Equal(t, types.ReplyJoined, p.request(t, h, envelope.JoinGroup{Group: "g1"}).Info)
	}

	a := alice.request(t, h, envelope.SendGroup{Group: "g1", Text: "hello; all"})
	assert.False(t, a.HasInfo)

	mb, db := bob.next(t, types.MsgGroupMessage)
	gm := mb.(envelope.GroupMessage)
	assert.Equal(t, "alice", gm.Sender)
	assert.Equal(t, "hello; all", gm.Text)
	assert.Equal(t, types.ServerName, db.Envelope.Name)

	mc, _ := carol.next(t, types.MsgGroupMessage)
	assert.Equal(t, gm, mc.(envelope.GroupMessage))
	alice.quiet(t, types.MsgGroupMessage, 20*time.Millisecond)

	// bob 确认，carol 不确认
	bob.send(t, db.ReplyAddr(), envelope.Ack{Info: gm.Sender + ";" + gm.Timestamp, HasInfo: true})
	require.Eventually(t, func() bool {
		return h.counter.Snapshot().Events[metrics.EventAckRecorded] == 1
	}, waitFor, 5*time.Millisecond)

	h.clk.Add(grace)
	var r delivery.EvictionReport
	select {
	case r = <-h.reports:
	case <-time.After(waitFor):
		t.Fatal("no eviction")
	}
	assert.Equal(t, []string{"carol"}, r.Evicted)
	assert.Zero(t, h.srv.Engine().Pending())

	assert.Equal(t, types.ReplyNotInGroup, carol.request(t, h, envelope.ListMembers{Group: "g1"}).Info)
	assert.Equal(t, "alice;bob", alice.request(t, h, envelope.ListMembers{Group: "g1"}).Info)

	// 宽限期后到达的 ack 不改变任何状态
	carol.send(t, h.addr, envelope.Ack{Info: gm.Sender + ";" + gm.Timestamp, HasInfo: true})
	require.Eventually(t, func() bool {
		return h.counter.Snapshot().Events[metrics.EventAckLate] == 1
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, []string{"alice", "bob"}, h.srv.Groups().Snapshot()["g1"])
}

func TestSendGroup_EvictsExitedMember(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	bob := newPeer(t, "bob")
	alice.register(t, h)
	bob.register(t, h)

	alice.request(t, h, envelope.CreateGroup{Group: "g1"})
	alice.request(t, h, envelope.JoinGroup{Group: "g1"})
	bob.request(t, h, envelope.JoinGroup{Group: "g1"})

	// bob 进程退出，不注销
	require.NoError(t, bob.tr.Close())

	alice.request(t, h, envelope.SendGroup{Group: "g1", Text: "anyone?"})
	require.Eventually(t, func() bool { return h.srv.Engine().Pending() == 1 }, waitFor, 5*time.Millisecond)
	h.clk.Add(grace)

	select {
	case r := <-h.reports:
		assert.Equal(t, []string{"bob"}, r.Evicted)
	case <-time.After(waitFor):
		t.Fatal("no eviction")
	}
	assert.Equal(t, "alice", alice.request(t, h, envelope.ListMembers{Group: "g1"}).Info)
}

func TestSendGroup_AloneInGroup(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")
	alice.register(t, h)

	alice.request(t, h, envelope.CreateGroup{Group: "g1"})
	alice.request(t, h, envelope.JoinGroup{Group: "g1"})
	a := alice.request(t, h, envelope.SendGroup{Group: "g1", Text: "echo"})
	assert.False(t, a.HasInfo)
	assert.Zero(t, h.srv.Engine().Pending())
}

// ============================================================================
//                              健壮性
// ============================================================================

func TestMalformedAndClientBoundDropped(t *testing.T) {
	h := newHarness(t)
	alice := newPeer(t, "alice")

	raw, err := net.DialUDP("udp", nil, h.addr)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Write([]byte("hello"))
	require.NoError(t, err)

	// 客户端方向的消息类型被忽略
	alice.send(t, h.addr, envelope.PrivateMessage{Text: "hi server"})
	alice.send(t, h.addr, envelope.Ack{})
	alice.quiet(t, types.MsgAck, 30*time.Millisecond)

	// 服务端仍然正常工作
	alice.register(t, h)
}

func TestLifecycle(t *testing.T) {
	tr, err := transport.Listen(transport.Config{ListenIP: "127.0.0.1"})
	require.NoError(t, err)

	c, err := New(DefaultConfig(), tr)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID())

	assert.ErrorIs(t, c.Stop(context.Background()), ErrNotStarted)
	require.NoError(t, c.Start(context.Background()))
	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyStarted)
	require.NoError(t, c.Stop(context.Background()))

	_, err = New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNilConn)
}

func TestModule(t *testing.T) {
	var c *Coordinator

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		fx.Supply(transport.Config{ListenIP: "127.0.0.1"}),
		transport.Module(),
		Module,
		fx.Populate(&c),
	)
	app.RequireStart()
	require.NotNil(t, c)

	alice := newPeer(t, "alice")
	alice.register(t, &harness{srv: c, addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: c.Port()}})

	app.RequireStop()
}
