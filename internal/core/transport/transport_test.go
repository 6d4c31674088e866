package transport

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-udpchat/internal/core/metrics"
	"github.com/dep2p/go-udpchat/internal/core/ratelimit"
	"github.com/dep2p/go-udpchat/internal/protocol/envelope"
	"github.com/dep2p/go-udpchat/pkg/types"
)

func listenLoopback(t *testing.T, opts ...Option) *Transport {
	t.Helper()
	tr, err := Listen(Config{ListenIP: "127.0.0.1", ReadBufferSize: 4096}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

// collect 在后台运行 Serve，把收到的数据报送到 channel
func collect(t *testing.T, tr *Transport) (<-chan Datagram, context.CancelFunc) {
	t.Helper()
	ch := make(chan Datagram, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tr.Serve(ctx, func(d Datagram) { ch <- d })
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after cancel")
		}
	})
	return ch, cancel
}

func recv(t *testing.T, ch <-chan Datagram) Datagram {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no datagram received")
		return Datagram{}
	}
}

func TestTransport_SendServe(t *testing.T) {
	a := listenLoopback(t)
	b := listenLoopback(t)
	ch, _ := collect(t, b)

	e := envelope.WithPayload(a.Port(), "alice", types.MsgPrivateMessage, "hello")
	require.NoError(t, a.Send(b.LocalAddr(), e))

	d := recv(t, ch)
	assert.Equal(t, e, d.Envelope)
	assert.Equal(t, a.Port(), d.From.Port)
	assert.Equal(t, a.Port(), d.ReplyAddr().Port)
	assert.True(t, d.ReplyAddr().IP.Equal(net.ParseIP("127.0.0.1")))
}

func TestTransport_DropsMalformed(t *testing.T) {
	counter := metrics.NewCounter()
	b := listenLoopback(t, WithReporter(counter))
	ch, _ := collect(t, b)

	raw, err := net.DialUDP("udp", nil, b.LocalAddr())
	require.NoError(t, err)
	defer raw.Close()

	_, err = raw.Write([]byte("port:\nnope\nname\nx\ntype:\nreg"))
	require.NoError(t, err)
	_, err = raw.Write([]byte("garbage"))
	require.NoError(t, err)

	good, err := envelope.Encode(envelope.New(6000, "x", types.MsgRegister))
	require.NoError(t, err)
	_, err = raw.Write(good)
	require.NoError(t, err)

	d := recv(t, ch)
	assert.Equal(t, types.MsgRegister, d.Envelope.Type)
	assert.Equal(t, int64(2), counter.Snapshot().Dropped[metrics.DropMalformed])
}

func TestTransport_DropsTruncated(t *testing.T) {
	counter := metrics.NewCounter()
	b := listenLoopback(t, WithReporter(counter))
	ch, _ := collect(t, b)

	raw, err := net.DialUDP("udp", nil, b.LocalAddr())
	require.NoError(t, err)
	defer raw.Close()

	// 前 4096 字节仍是完整的 8 行信封，必须整体丢弃而不是截断后交付
	big, err := envelope.Encode(envelope.WithPayload(6000, "x", types.MsgPrivateMessage, strings.Repeat("a", 6000)))
	require.NoError(t, err)
	_, err = raw.Write(big)
	require.NoError(t, err)

	good, err := envelope.Encode(envelope.New(6000, "x", types.MsgRegister))
	require.NoError(t, err)
	_, err = raw.Write(good)
	require.NoError(t, err)

	d := recv(t, ch)
	assert.Equal(t, types.MsgRegister, d.Envelope.Type)
	assert.Equal(t, int64(1), counter.Snapshot().Dropped[metrics.DropTruncated])
	assert.Zero(t, counter.Snapshot().Dropped[metrics.DropMalformed])
}

func TestTransport_SendRejectsOversize(t *testing.T) {
	a := listenLoopback(t)
	b := listenLoopback(t)

	big := envelope.WithPayload(a.Port(), "alice", types.MsgPrivateMessage, strings.Repeat("a", 5000))
	assert.ErrorIs(t, a.Send(b.LocalAddr(), big), ErrDatagramTooLarge)

	huge := envelope.WithPayload(a.Port(), "alice", types.MsgPrivateMessage, strings.Repeat("a", MaxDatagramSize))
	def, err := Listen(Config{ListenIP: "127.0.0.1"})
	require.NoError(t, err)
	defer def.Close()
	assert.ErrorIs(t, def.Send(b.LocalAddr(), huge), ErrDatagramTooLarge)
}

func TestTransport_DefaultCarriesLargeDatagrams(t *testing.T) {
	assert.Equal(t, 64*1024, DefaultConfig().ReadBufferSize)

	a, err := Listen(Config{ListenIP: "127.0.0.1"})
	require.NoError(t, err)
	defer a.Close()
	b, err := Listen(Config{ListenIP: "127.0.0.1"})
	require.NoError(t, err)
	defer b.Close()
	ch, _ := collect(t, b)

	text := strings.Repeat("a", 6000)
	require.NoError(t, a.Send(b.LocalAddr(), envelope.WithPayload(a.Port(), "alice", types.MsgPrivateMessage, text)))

	d := recv(t, ch)
	assert.Equal(t, text, d.Envelope.Payload)
}

func TestTransport_RateLimit(t *testing.T) {
	limiter, err := ratelimit.New(ratelimit.Config{Rate: 0.001, Burst: 1, CacheSize: 4})
	require.NoError(t, err)

	counter := metrics.NewCounter()
	a := listenLoopback(t)
	b := listenLoopback(t, WithLimiter(limiter), WithReporter(counter))
	ch, _ := collect(t, b)

	e := envelope.New(a.Port(), "a", types.MsgListGroups)
	require.NoError(t, a.Send(b.LocalAddr(), e))
	require.NoError(t, a.Send(b.LocalAddr(), e))

	recv(t, ch)
	require.Eventually(t, func() bool {
		return counter.Snapshot().Dropped[metrics.DropRateLimited] == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTransport_ConcurrentSend(t *testing.T) {
	a := listenLoopback(t)
	b := listenLoopback(t)
	ch, _ := collect(t, b)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Send(b.LocalAddr(), envelope.New(a.Port(), "a", types.MsgAck)))
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		recv(t, ch)
	}
}

func TestTransport_CloseStopsServe(t *testing.T) {
	tr, err := Listen(Config{ListenIP: "127.0.0.1"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- tr.Serve(context.Background(), func(Datagram) {}) }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}

	assert.ErrorIs(t, tr.Send(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}, envelope.New(1, "a", types.MsgAck)), ErrClosed)
}

func TestTransport_SendErrors(t *testing.T) {
	a := listenLoopback(t)
	assert.ErrorIs(t, a.Send(nil, envelope.New(1, "a", types.MsgAck)), ErrNilAddress)

	bad := envelope.WithPayload(1, "a", types.MsgPrivateMessage, "x\ny")
	assert.ErrorIs(t, a.Send(a.LocalAddr(), bad), envelope.ErrInvalidField)
}

func TestListen_InvalidIP(t *testing.T) {
	_, err := Listen(Config{ListenIP: "not-an-ip"})
	assert.ErrorIs(t, err, ErrInvalidListenAddr)
}

func TestModule(t *testing.T) {
	var tr *Transport
	var sender Sender

	app := fxtest.New(t,
		fx.Supply(Config{ListenIP: "127.0.0.1"}),
		Module(),
		fx.Populate(&tr, &sender),
	)
	app.RequireStart()
	require.NotNil(t, tr)
	assert.Same(t, tr, sender)
	assert.NotZero(t, tr.Port())
	app.RequireStop()

	assert.ErrorIs(t, tr.Send(tr.LocalAddr(), envelope.New(1, "a", types.MsgAck)), ErrClosed)
}
