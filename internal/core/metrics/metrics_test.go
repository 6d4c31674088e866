package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-udpchat/config"
)

func TestCounter_Snapshot(t *testing.T) {
	c := NewCounter()

	c.LogSentDatagram(100)
	c.LogSentDatagram(50)
	c.LogRecvDatagram(200)
	c.LogDropped(DropMalformed)
	c.LogDropped(DropMalformed)
	c.LogEvent(EventMemberEvicted, 3)
	c.LogEvent(EventRegistered, 0)

	s := c.Snapshot()
	assert.Equal(t, int64(2), s.DatagramsOut)
	assert.Equal(t, int64(150), s.BytesOut)
	assert.Equal(t, int64(1), s.DatagramsIn)
	assert.Equal(t, int64(200), s.BytesIn)
	assert.Equal(t, int64(2), s.Dropped[DropMalformed])
	assert.Equal(t, int64(3), s.Events[EventMemberEvicted])
	_, ok := s.Events[EventRegistered]
	assert.False(t, ok)

	c.Reset()
	s = c.Snapshot()
	assert.Zero(t, s.BytesOut)
	assert.Empty(t, s.Dropped)
}

func TestRateMeter_Window(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeterWithClock(clk)

	r.Add(60)
	assert.Equal(t, int64(60), r.Total())
	assert.InDelta(t, 1.0, r.Rate(), 0.001)

	clk.Add(30 * time.Second)
	r.Add(60)
	assert.Equal(t, int64(120), r.Total())

	// 第一个桶滑出窗口
	clk.Add(31 * time.Second)
	assert.Equal(t, int64(60), r.Total())

	clk.Add(2 * time.Minute)
	assert.Zero(t, r.Total())
}

func TestCollector(t *testing.T) {
	c := NewCounter()
	c.LogRecvDatagram(10)
	c.LogDropped(DropRateLimited)
	c.LogEvent(EventGroupMessage, 1)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(c)))

	expected := `
# HELP udpchat_datagrams_dropped_total Datagrams dropped by reason.
# TYPE udpchat_datagrams_dropped_total counter
udpchat_datagrams_dropped_total{reason="rate_limited"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "udpchat_datagrams_dropped_total")
	assert.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "udpchat_datagrams_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNopReporter(t *testing.T) {
	var r Reporter = NopReporter{}
	r.LogSentDatagram(1)
	r.LogEvent(EventKicked, 1)
	assert.Zero(t, r.Snapshot().DatagramsOut)
}

// TestModule_Provides 测试模块提供的类型
func TestModule_Provides(t *testing.T) {
	var reporter Reporter

	app := fxtest.New(t,
		Module,
		fx.Populate(&reporter),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, reporter)
	reporter.LogSentDatagram(100)
	assert.Equal(t, int64(100), reporter.Snapshot().BytesOut)
}

func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false

	var reporter Reporter
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&reporter),
	)
	defer app.RequireStart().RequireStop()

	assert.IsType(t, NopReporter{}, reporter)
}

func TestEndpoint_Serves(t *testing.T) {
	c := NewCounter()
	c.LogSentDatagram(42)

	ep, err := NewEndpoint("127.0.0.1:0", c)
	require.NoError(t, err)
	require.NoError(t, ep.Start(context.Background()))
	defer ep.Stop(context.Background())

	resp, err := http.Get("http://" + ep.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `udpchat_bytes_total{direction="out"} 42`)
}
