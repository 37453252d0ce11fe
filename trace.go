package csmacd

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"

	"github.com/iti/evt/vrtime"
	"gopkg.in/yaml.v3"
)

type TraceRecordType int

const (
	RoundType TraceRecordType = iota
	CollisionType
)

var trtToStr map[TraceRecordType]string = map[TraceRecordType]string{RoundType: "round", CollisionType: "collision"}

type TraceInst struct {
	TraceTime string `json:"tracetime" yaml:"tracetime"`
	TraceType string `json:"tracetype" yaml:"tracetype"`
	TraceStr  string `json:"tracestr" yaml:"tracestr"`
}

// TraceManager gathers information about an execution of the simulation.
// Traces are saved by execution id; a sweep uses one id per (point, round).
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// all trace records for this experiment
	Traces map[int][]TraceInst `json:"traces" yaml:"traces"`

	mu sync.Mutex
}

// CreateTraceManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the trace manager is active.  By testing this
// flag we can inhibit the activity of gathering a trace when we don't want it,
// while embedding calls to its methods everywhere we need them when it is
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.Traces = make(map[int][]TraceInst)
	return tm
}

// Active tells the caller whether the Trace Manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm != nil && tm.InUse
}

// AddTrace stores a trace record under the execution id
func (tm *TraceManager) AddTrace(vrt vrtime.Time, execID int, trace TraceInst) {
	if !tm.Active() {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.Traces[execID] = append(tm.Traces[execID], trace)
}

// WriteToFile stores the Traces struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (tm *TraceManager) WriteToFile(filename string) error {
	if !tm.Active() {
		return nil
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return writeDesc(filename, tm)
}

// RoundTrace summarizes one completed round
type RoundTrace struct {
	Time     float64 // simulation time at the end of the round
	Ticks    int64   // ticks variable of time
	Round    int
	Counters Counters
}

func (rt *RoundTrace) TraceType() TraceRecordType {
	return RoundType
}

// CollisionTrace records the end-of-tick detection of overlapping transmissions
type CollisionTrace struct {
	Time     float64
	Ticks    int64
	Round    int
	Tick     int
	Stations []int // indices of the stations flagged
}

func (ct *CollisionTrace) TraceType() TraceRecordType {
	return CollisionType
}

func serializeTrace(rec any) string {
	bytes, merr := yaml.Marshal(rec)
	if merr != nil {
		panic(merr)
	}
	return string(bytes[:])
}

// tickTime converts a tick count into a virtual time stamp
func tickTime(tick int, rp *runParams) vrtime.Time {
	return vrtime.SecondsToTime(float64(tick) * rp.tickTime)
}

// addRoundTrace creates a RoundTrace and stores it
func addRoundTrace(tm *TraceManager, execID, round int, rp *runParams, cnt Counters) {
	vrt := tickTime(rp.totalTicks, rp)
	rt := &RoundTrace{Time: vrt.Seconds(), Ticks: vrt.Ticks(), Round: round, Counters: cnt}
	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)
	tm.AddTrace(vrt, execID, TraceInst{TraceTime: traceTime, TraceType: trtToStr[rt.TraceType()], TraceStr: serializeTrace(rt)})
}

// addCollisionTrace creates a CollisionTrace and stores it
func addCollisionTrace(tm *TraceManager, execID, round, tick int, rp *runParams, stations []station) {
	vrt := tickTime(tick, rp)
	ct := &CollisionTrace{Time: vrt.Seconds(), Ticks: vrt.Ticks(), Round: round, Tick: tick}
	for idx := range stations {
		if stations[idx].active {
			ct.Stations = append(ct.Stations, idx)
		}
	}
	traceTime := strconv.FormatFloat(vrt.Seconds(), 'f', -1, 64)
	tm.AddTrace(vrt, execID, TraceInst{TraceTime: traceTime, TraceType: trtToStr[ct.TraceType()], TraceStr: serializeTrace(ct)})
}

// writeDesc serializes desc to filename, as yaml or json depending on its extension
func writeDesc(filename string, desc any) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error

	switch pathExt {
	case ".yaml", ".YAML", ".yml":
		bytes, merr = yaml.Marshal(desc)
	case ".json", ".JSON":
		bytes, merr = json.MarshalIndent(desc, "", "\t")
	default:
		return fmt.Errorf("file %s: extension %q is neither yaml nor json", filename, pathExt)
	}
	if merr != nil {
		return merr
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		return cerr
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		f.Close()
		return werr
	}
	return f.Close()
}
