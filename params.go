package csmacd

// params.go holds the continuous parameters of a run and their conversion
// into the integer tick quantities the tick loop works with

import (
	"errors"
	"fmt"
	"math"
)

// maxTicks bounds the number of ticks in a round
const maxTicks = 1 << 40

// ErrInvalidParams is wrapped by every error reporting a violated run precondition
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Params describes one simulation run.  All fields are fixed for the duration of the run.
type Params struct {
	// frames per second offered by each station
	OfferedRate float64 `json:"offeredrate" yaml:"offeredrate"`

	// number of stations sharing the channel
	Stations int `json:"stations" yaml:"stations"`

	// propagation delay expressed as a fraction of the frame transmission time (a)
	DelayFraction float64 `json:"delayfraction" yaml:"delayfraction"`

	// number of independent rounds averaged into the result
	Rounds int `json:"rounds" yaml:"rounds"`

	// simulated seconds per round
	SimTime float64 `json:"simtime" yaml:"simtime"`

	// channel bandwidth, bits per second
	LinkRate float64 `json:"linkrate" yaml:"linkrate"`

	// frame length in bits
	FrameBits int `json:"framebits" yaml:"framebits"`

	// a collided station backs off uniformly in [1, BackoffFactor*FrameBits] ticks
	BackoffFactor int `json:"backofffactor" yaml:"backofffactor"`
}

// DefaultParams returns the parameters of the reference experiment: a 100 kbit/s
// channel carrying 100 bit frames among 10 stations, a = 0.02, one second per round
func DefaultParams() Params {
	return Params{
		OfferedRate:   0.0,
		Stations:      10,
		DelayFraction: 0.02,
		Rounds:        10,
		SimTime:       1.0,
		LinkRate:      1e5,
		FrameBits:     100,
		BackoffFactor: 10,
	}
}

// Validate returns an error wrapping ErrInvalidParams that lists every violated precondition
func (p *Params) Validate() error {
	errs := []error{}

	if p.Stations < 1 {
		errs = append(errs, fmt.Errorf("station count %d is less than 1", p.Stations))
	}
	if p.OfferedRate < 0 || math.IsNaN(p.OfferedRate) || math.IsInf(p.OfferedRate, 0) {
		errs = append(errs, fmt.Errorf("offered rate %g is not a finite non-negative number", p.OfferedRate))
	}
	if p.Rounds < 1 {
		errs = append(errs, fmt.Errorf("round count %d is less than 1", p.Rounds))
	}
	if p.DelayFraction < 0 || math.IsNaN(p.DelayFraction) || math.IsInf(p.DelayFraction, 0) {
		errs = append(errs, fmt.Errorf("delay fraction %g is not a finite non-negative number", p.DelayFraction))
	}
	if !(p.SimTime > 0) || math.IsInf(p.SimTime, 0) {
		errs = append(errs, fmt.Errorf("simulation time %g is not positive", p.SimTime))
	}
	if !(p.LinkRate > 0) || math.IsInf(p.LinkRate, 0) {
		errs = append(errs, fmt.Errorf("link rate %g is not positive", p.LinkRate))
	}
	if p.FrameBits < 1 {
		errs = append(errs, fmt.Errorf("frame length %d bits is less than 1", p.FrameBits))
	}
	if p.BackoffFactor < 1 {
		errs = append(errs, fmt.Errorf("backoff factor %d is less than 1", p.BackoffFactor))
	}

	// tick counts only make sense once the quantities they are built from do.
	// They are bounded as floats, before conversion to int can overflow
	if len(errs) == 0 {
		tick := p.TickDuration()
		total := roundFloat(p.SimTime/tick, rdigits)
		delay := roundFloat(p.DelayFraction*p.FrameTime()/tick, rdigits)
		switch {
		case total < 1:
			errs = append(errs, fmt.Errorf("simulation time %g is shorter than one tick (%g s)", p.SimTime, tick))
		case total > maxTicks:
			errs = append(errs, fmt.Errorf("simulation time %g spans %g ticks, more than %d", p.SimTime, total, maxTicks))
		case delay > total:
			errs = append(errs, fmt.Errorf("propagation delay of %g ticks exceeds the %g ticks of a round", delay, total))
		}
	}

	if err := ReportErrs(errs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// FrameTime is the transmission time of one frame, in seconds
func (p *Params) FrameTime() float64 {
	return float64(p.FrameBits) / p.LinkRate
}

// TickDuration is the simulation time step: one bit time
func (p *Params) TickDuration() float64 {
	return p.FrameTime() / float64(p.FrameBits)
}

// runParams holds the integer tick quantities derived from Params before the loop starts
type runParams struct {
	stations int
	rounds   int

	frameTime float64 // seconds
	tickTime  float64 // seconds

	totalTicks int // ticks per round
	frameTicks int // ticks to transmit one frame
	delayTicks int // propagation delay
	maxBackoff int // upper bound of the collision backoff draw

	// probability that a station generates a frame in one tick
	arrivalProb float64
}

// derive converts the continuous parameters into tick counts.  Durations are floored,
// after rounding away the representation error of the division
func (p *Params) derive() runParams {
	rp := runParams{stations: p.Stations, rounds: p.Rounds}
	rp.frameTime = p.FrameTime()
	rp.tickTime = p.TickDuration()
	rp.totalTicks = ticksIn(p.SimTime, rp.tickTime)
	rp.frameTicks = ticksIn(rp.frameTime, rp.tickTime)
	rp.delayTicks = ticksIn(p.DelayFraction*rp.frameTime, rp.tickTime)
	rp.maxBackoff = p.BackoffFactor * p.FrameBits
	rp.arrivalProb = p.OfferedRate * rp.tickTime
	return rp
}

// rdigits is the precision kept when turning a ratio of durations into a tick count
var rdigits uint = 9

// ticksIn returns the number of whole ticks of length tick in duration
func ticksIn(duration, tick float64) int {
	return int(math.Floor(roundFloat(duration/tick, rdigits)))
}

// round computed ratios to avoid flooring 199.99999999999997 to 199
func roundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
