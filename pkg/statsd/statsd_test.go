package statsd_test

import (
	"net"
	"testing"
	"time"

	"github.com/goto/lineage/pkg/statsd"
	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter(t *testing.T) {
	t.Run("nil reporter is a no-op", func(t *testing.T) {
		var r *statsd.Reporter
		assert.NotPanics(t, func() {
			r.Timing("graph_operation", time.Millisecond).Tag("operation", "GetLineage").Success().Publish()
			r.Incr("graph_operation").Failure(assert.AnError).Publish()
			assert.NoError(t, r.Close())
		})
	})

	t.Run("disabled reporter is a no-op", func(t *testing.T) {
		r, err := statsd.Init(log.NewNoop(), statsd.Config{Enabled: false})
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			r.Gauge("visited", 3).Publish()
			r.Histogram("visited", 3).Publish()
		})
		assert.NoError(t, r.Close())
	})

	t.Run("publishes influx tagged metrics", func(t *testing.T) {
		conn, err := net.ListenPacket("udp", "127.0.0.1:0")
		require.NoError(t, err)
		defer conn.Close()

		r, err := statsd.Init(log.NewNoop(), statsd.Config{
			Enabled:             true,
			Address:             conn.LocalAddr().String(),
			Prefix:              "lineage",
			Separator:           ".",
			SamplingRate:        1,
			WithInfluxTagFormat: true,
		})
		require.NoError(t, err)
		defer r.Close()

		r.Timing("graph_operation", 5*time.Millisecond).Tag("operation", "GetLineage").Publish()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		buf := make([]byte, 1024)
		n, _, err := conn.ReadFrom(buf)
		require.NoError(t, err)

		packet := string(buf[:n])
		assert.Contains(t, packet, "lineage.graph_operation,operation=GetLineage:")
		assert.Contains(t, packet, "|ms")
	})
}

func TestMetric_TagOrder(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	r, err := statsd.Init(log.NewNoop(), statsd.Config{
		Enabled:             true,
		Address:             conn.LocalAddr().String(),
		Prefix:              "lineage",
		Separator:           ".",
		SamplingRate:        1,
		WithInfluxTagFormat: true,
	})
	require.NoError(t, err)
	defer r.Close()

	r.Incr("graph_operation").Tag("operation", "RemoveEdge").Failure(assert.AnError).Publish()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 1024)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)

	assert.Contains(t, string(buf[:n]), "lineage.graph_operation,operation=RemoveEdge,success=false:1|c")
}
