package healthcheck

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitorProbeAllPass(t *testing.T) {
	require := require.New(t)

	m := NewMonitor(Config{Timeout: time.Second},
		Check{Name: "index", Run: func() error { return nil }},
		Check{Name: "store", Run: func() error { return nil }},
	)

	require.NoError(m.Probe())
}

func TestMonitorProbeFailureNamesCheck(t *testing.T) {
	require := require.New(t)

	m := NewMonitor(Config{Timeout: time.Second},
		Check{Name: "index", Run: func() error { return nil }},
		Check{Name: "store", Run: func() error { return errors.New("disk full") }},
	)

	err := m.Probe()
	require.Error(err)
	require.Contains(err.Error(), "store")
	require.Contains(err.Error(), "disk full")
}

func TestMonitorProbeTimeout(t *testing.T) {
	require := require.New(t)

	m := NewMonitor(Config{Timeout: 50 * time.Millisecond},
		Check{Name: "slow", Run: func() error {
			time.Sleep(time.Second)
			return nil
		}},
	)

	err := m.Probe()
	require.Error(err)
	require.Contains(err.Error(), "timed out")
}

func TestMonitorProbeCaching(t *testing.T) {
	require := require.New(t)

	calls := 0
	m := NewMonitor(Config{Timeout: time.Second, CacheTTL: time.Hour},
		Check{Name: "index", Run: func() error { calls++; return nil }},
	)

	require.NoError(m.Probe())
	require.NoError(m.Probe())
	require.Equal(1, calls)
}
