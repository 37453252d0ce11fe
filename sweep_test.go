package csmacd

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func smallSweep() SweepParams {
	sp := DefaultSweepParams()
	sp.Params.SimTime = 0.005
	sp.Params.Rounds = 2
	sp.Params.Stations = 4
	sp.Points = 5
	sp.Seeded = true
	sp.Seed = 17
	sp.TheoryPoints = 11
	return sp
}

func TestOfferedRates(t *testing.T) {
	sp := DefaultSweepParams()
	require.InDelta(t, 100.0, sp.MaxOfferedRate(), 1e-9)

	rates := sp.OfferedRates()
	require.Len(t, rates, 20)
	require.InDelta(t, 5.0, rates[0], 1e-9)
	require.InDelta(t, 100.0, rates[19], 1e-9)
	for idx := 1; idx < len(rates); idx++ {
		require.Greater(t, rates[idx], rates[idx-1])
	}
}

func TestUtilization(t *testing.T) {
	require.Equal(t, 1.0, Utilization(0))
	require.InDelta(t, 1/(1+0.04*math.E), Utilization(0.02), 1e-15)

	tc := TheoryCurveFor(0.1, 11)
	require.Len(t, tc.G, 11)
	require.Equal(t, 0.0, tc.G[0])
	require.InDelta(t, 1.0, tc.G[10], 1e-15)
	for idx := range tc.G {
		require.InDelta(t, tc.Utilization*tc.G[idx], tc.S[idx], 1e-15)
	}
}

func TestSweep(t *testing.T) {
	sp := smallSweep()
	sr, err := Sweep(context.Background(), "small", sp, nil, zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, "small", sr.Name)
	require.Len(t, sr.Points, 5)
	require.Len(t, sr.Theory, 4)

	rates := sp.OfferedRates()
	for idx, pt := range sr.Points {
		require.Equal(t, rates[idx], pt.OfferedRate)
		require.GreaterOrEqual(t, pt.G, pt.S)
		require.GreaterOrEqual(t, pt.S, 0.0)
		// 100 bit frames over 5 ms on a 100 kbit/s link: one frame is 0.2 of capacity
		require.InDelta(t, pt.Summary.Mean.Generated*0.2, pt.G, 1e-9)
		require.InDelta(t, pt.G*sp.Params.LinkRate, pt.OfferedBps, 1e-6)
	}

	require.GreaterOrEqual(t, sr.Peak, 0)
	require.Less(t, sr.Peak, len(sr.Points))
	for _, pt := range sr.Points {
		require.LessOrEqual(t, pt.S, sr.Points[sr.Peak].S)
	}
}

func TestSweepIndependentOfWorkers(t *testing.T) {
	sp := smallSweep()
	sp.Workers = 1
	serial, err := Sweep(context.Background(), "w", sp, nil, zerolog.Nop())
	require.NoError(t, err)

	sp.Workers = 3
	parallel, err := Sweep(context.Background(), "w", sp, nil, zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, serial.Points, parallel.Points)
	require.Equal(t, serial.Peak, parallel.Peak)
}

func TestSweepSeedZeroIsReproducible(t *testing.T) {
	sp := smallSweep()
	sp.Seed = 0

	first, err := Sweep(context.Background(), "zero", sp, nil, zerolog.Nop())
	require.NoError(t, err)
	second, err := Sweep(context.Background(), "zero", sp, nil, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, first.Points, second.Points)

	_, ok := sp.pointSource(0).(*SeededSource)
	require.True(t, ok)

	sp.Seeded = false
	_, ok = sp.pointSource(0).(*SeededSource)
	require.False(t, ok)
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sr, err := Sweep(ctx, "cancelled", smallSweep(), nil, zerolog.Nop())
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, sr)
}

func TestSweepRejectsInvalidParams(t *testing.T) {
	sp := smallSweep()
	sp.Points = 0
	_, err := Sweep(context.Background(), "bad", sp, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidParams)

	sp = smallSweep()
	sp.Params.Stations = 0
	_, err = Sweep(context.Background(), "bad", sp, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestSweepResultWriteToFile(t *testing.T) {
	sr, err := Sweep(context.Background(), "saved", smallSweep(), nil, zerolog.Nop())
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "results.yaml")
	require.NoError(t, sr.WriteToFile(filename))

	bytes, err := os.ReadFile(filename)
	require.NoError(t, err)

	read := SweepResult{}
	require.NoError(t, yaml.Unmarshal(bytes, &read))
	require.Equal(t, sr.Name, read.Name)
	require.Equal(t, sr.Peak, read.Peak)
	require.Len(t, read.Points, len(sr.Points))
	require.Equal(t, sr.Points[sr.Peak].Summary.Mean, read.Points[sr.Peak].Summary.Mean)
}
