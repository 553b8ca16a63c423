package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)
	require.NotNil(t, m.GetGatherer())
	require.NotNil(t, m.GetRegisterer())

	// Counters and histograms are usable immediately.
	m.SlotsCreated.Inc()
	m.BidsPlaced.Inc()
	m.EscrowsReleased.Inc()
	m.BidLatency.Observe(0.01)
	m.SettleLatency.Observe(0.05)
}
