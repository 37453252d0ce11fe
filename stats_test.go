package csmacd

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	sum := Counters{Generated: 30, Delivered: 12, Collided: 9, Blocked: 3}

	first := Reduce(sum, 3)
	require.Equal(t, Means{Generated: 10, Delivered: 4, Collided: 3, Blocked: 1}, first)

	// pure: same input, same output, input untouched
	require.Equal(t, first, Reduce(sum, 3))
	require.Equal(t, Counters{Generated: 30, Delivered: 12, Collided: 9, Blocked: 3}, sum)

	require.Panics(t, func() { Reduce(sum, 0) })
}

func TestSummarize(t *testing.T) {
	tot := createTotals(4)
	tot.addRound(Counters{Generated: 2, Delivered: 1})
	tot.addRound(Counters{Generated: 4, Delivered: 1})
	tot.addRound(Counters{Generated: 6, Delivered: 1})
	tot.addRound(Counters{Generated: 8, Delivered: 1})

	require.Equal(t, 4, tot.Rounds)
	require.Equal(t, Counters{Generated: 20, Delivered: 4}, tot.Sum)

	sum := tot.Summarize()
	require.Equal(t, Means{Generated: 5, Delivered: 1}, sum.Mean)
	// sample standard deviation of 2, 4, 6, 8
	require.InDelta(t, math.Sqrt(20.0/3.0), sum.StdDev.Generated, 1e-12)
	require.Zero(t, sum.StdDev.Delivered)
	require.Zero(t, sum.StdDev.Collided)
}

func TestSummarizeSingleRound(t *testing.T) {
	tot := createTotals(1)
	tot.addRound(Counters{Generated: 7, Delivered: 5, Collided: 2})

	sum := tot.Summarize()
	require.Equal(t, Means{Generated: 7, Delivered: 5, Collided: 2}, sum.Mean)
	require.Equal(t, Means{}, sum.StdDev)
}
