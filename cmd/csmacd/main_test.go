package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/iti/csmacd"
)

func TestRootCmdWritesResults(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "results.yaml")
	trace := filepath.Join(dir, "trace.json")

	cmd := NewRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{
		"--sim-time", "0.005",
		"--rounds", "2",
		"--stations", "3",
		"--points", "4",
		"--seed", "99",
		"--workers", "2",
		"--out", out,
		"--trace", trace,
		"--name", "cli",
	})
	require.NoError(t, cmd.Execute())

	bytes, err := os.ReadFile(out)
	require.NoError(t, err)
	sr := csmacd.SweepResult{}
	require.NoError(t, yaml.Unmarshal(bytes, &sr))
	require.Equal(t, "cli", sr.Name)
	require.Len(t, sr.Points, 4)
	require.Equal(t, 3, sr.Sweep.Params.Stations)
	require.Equal(t, uint64(99), sr.Sweep.Seed)
	require.True(t, sr.Sweep.Seeded)

	_, err = os.Stat(trace)
	require.NoError(t, err)
}

func TestRootCmdFlagsOverrideExpFile(t *testing.T) {
	dir := t.TempDir()
	exp := filepath.Join(dir, "exp.yaml")
	out := filepath.Join(dir, "results.json")

	expCfg := csmacd.CreateExpCfg("file")
	require.NoError(t, expCfg.AddParameter("Channel", "stations", "5"))
	require.NoError(t, expCfg.AddParameter("Run", "rounds", "1"))
	require.NoError(t, expCfg.AddParameter("Run", "simTime", "0.004"))
	require.NoError(t, expCfg.AddParameter("Sweep", "points", "6"))
	require.NoError(t, expCfg.WriteToFile(exp))

	cmd := NewRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{"--exp", exp, "--points", "2", "--out", out})
	require.NoError(t, cmd.Execute())

	bytes, err := os.ReadFile(out)
	require.NoError(t, err)
	sr := csmacd.SweepResult{}
	require.NoError(t, json.Unmarshal(bytes, &sr))
	require.Len(t, sr.Points, 2)
	require.Equal(t, 5, sr.Sweep.Params.Stations)
	require.Equal(t, 1, sr.Sweep.Params.Rounds)
}

func TestRootCmdRejectsInvalidFlags(t *testing.T) {
	cmd := NewRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{"--stations", "0", "--out", filepath.Join(t.TempDir(), "r.yaml")})
	require.ErrorIs(t, cmd.Execute(), csmacd.ErrInvalidParams)

	cmd = NewRootCmd(zerolog.Nop())
	cmd.SetArgs([]string{"--out", filepath.Join(t.TempDir(), "missing", "r.yaml"), "--points", "1", "--sim-time", "0.001"})
	require.Error(t, cmd.Execute())
}
