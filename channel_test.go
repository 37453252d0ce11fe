package csmacd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// pattern is the activity of station idx at the end of tick k in the tests below
func pattern(k, idx int) bool {
	return (k+idx)%3 == 0
}

func TestChannelHistoryDelayedReadBack(t *testing.T) {
	for _, delay := range []int{0, 1, 3, 7} {
		const nStations = 4
		ch := createChannelHistory(nStations, delay)
		stations := make([]station, nStations)

		for k := 0; k < 40; k++ {
			sensed, busy := ch.sensed(k)
			require.Len(t, sensed, nStations)

			// state carried into tick k-delay was recorded at the end of tick k-delay-1;
			// with no delay that state is the current tick's and nothing is heard
			src := k - delay - 1
			if delay == 0 {
				src = -1
			}
			want := 0
			for idx := 0; idx < nStations; idx++ {
				expected := src >= 0 && pattern(src, idx)
				require.Equal(t, expected, sensed[idx], "delay %d tick %d station %d", delay, k, idx)
				if expected {
					want += 1
				}
			}
			require.Equal(t, want, busy, "delay %d tick %d", delay, k)

			for idx := range stations {
				stations[idx].active = pattern(k, idx)
			}
			ch.record(k, stations)
		}
	}
}

func TestChannelHistoryStartupTransientIsIdle(t *testing.T) {
	const delay = 5
	ch := createChannelHistory(3, delay)
	stations := []station{{active: true}, {active: true}, {active: true}}

	for k := 0; k < delay; k++ {
		sensed, busy := ch.sensed(k)
		require.Equal(t, 0, busy)
		require.Equal(t, []bool{false, false, false}, sensed)
		require.Equal(t, 3, ch.record(k, stations))
	}
}

func TestChannelHistoryReset(t *testing.T) {
	ch := createChannelHistory(2, 1)
	ch.record(0, []station{{active: true}, {active: true}})

	_, busy := ch.sensed(2)
	require.Equal(t, 2, busy)

	ch.reset()
	sensed, busy := ch.sensed(2)
	require.Equal(t, 0, busy)
	require.Equal(t, []bool{false, false}, sensed)
}

func TestChannelHistoryRingIsBounded(t *testing.T) {
	ch := createChannelHistory(6, 4)
	require.Len(t, ch.ring, 5)
	require.Len(t, ch.busy, 5)
}

func TestChannelHistoryZeroDelayIsAlwaysIdle(t *testing.T) {
	ch := createChannelHistory(3, 0)
	stations := []station{{active: true}, {active: true}, {}}

	for k := 0; k < 10; k++ {
		sensed, busy := ch.sensed(k)
		require.Equal(t, 0, busy, "tick %d", k)
		require.Equal(t, []bool{false, false, false}, sensed, "tick %d", k)
		require.Equal(t, 2, ch.record(k, stations))
	}
}
