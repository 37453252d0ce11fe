package csmacd

// sweep.go runs the simulation over a range of offered loads, converts the
// mean counts into normalised offered load (G) and efficiency (S), and sets
// them beside the analytic 1-persistent CSMA/CD curve

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// SweepParams describes an offered-load sweep
type SweepParams struct {
	// Params is the template for every point; OfferedRate is set per point
	Params Params `json:"params" yaml:"params"`

	// number of offered-load points
	Points int `json:"points" yaml:"points"`

	// when Seeded, point i draws from a SeededSource seeded with Seed+i;
	// otherwise every point draws from its own rngstream stream
	Seeded bool   `json:"seeded" yaml:"seeded"`
	Seed   uint64 `json:"seed" yaml:"seed"`

	// number of points simulated concurrently
	Workers int `json:"workers" yaml:"workers"`

	// delay fractions of the analytic curves reported beside the simulation
	TheoryDelays []float64 `json:"theorydelays" yaml:"theorydelays"`

	// number of G samples on [0,1] per analytic curve
	TheoryPoints int `json:"theorypoints" yaml:"theorypoints"`
}

// DefaultSweepParams returns the sweep of the reference experiment: 20 points up to
// the rate at which the stations together offer the full link capacity
func DefaultSweepParams() SweepParams {
	return SweepParams{
		Params:       DefaultParams(),
		Points:       20,
		Workers:      1,
		TheoryDelays: []float64{0.01, 0.02, 0.05, 0.1},
		TheoryPoints: 100,
	}
}

// Validate checks the sweep settings and the template run parameters
func (sp *SweepParams) Validate() error {
	errs := []error{}
	if sp.Points < 1 {
		errs = append(errs, fmt.Errorf("point count %d is less than 1", sp.Points))
	}
	if sp.Workers < 1 {
		errs = append(errs, fmt.Errorf("worker count %d is less than 1", sp.Workers))
	}
	if sp.TheoryPoints < 2 {
		errs = append(errs, fmt.Errorf("analytic curve needs at least 2 points, has %d", sp.TheoryPoints))
	}
	for _, a := range sp.TheoryDelays {
		if a < 0 || math.IsNaN(a) {
			errs = append(errs, fmt.Errorf("analytic delay fraction %g is negative", a))
		}
	}
	if err := ReportErrs(errs); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return sp.Params.Validate()
}

// MaxOfferedRate is the per-station frame rate at which the stations together
// offer one frame per frame time
func (sp *SweepParams) MaxOfferedRate() float64 {
	return sp.Params.LinkRate / float64(sp.Params.FrameBits) / float64(sp.Params.Stations)
}

// OfferedRates returns the per-station frame rate of every point, rising evenly up to MaxOfferedRate
func (sp *SweepParams) OfferedRates() []float64 {
	rateMax := sp.MaxOfferedRate()
	rates := make([]float64, sp.Points)
	for idx := range rates {
		rates[idx] = rateMax * float64(idx+1) / float64(sp.Points)
	}
	return rates
}

// SweepPoint is the outcome of one offered-load point
type SweepPoint struct {
	OfferedRate float64 `json:"offeredrate" yaml:"offeredrate"` // frames/s per station
	Summary     Summary `json:"summary" yaml:"summary"`

	G float64 `json:"g" yaml:"g"` // normalised offered load
	S float64 `json:"s" yaml:"s"` // normalised efficiency

	OfferedBps   float64 `json:"offeredbps" yaml:"offeredbps"`
	DeliveredBps float64 `json:"deliveredbps" yaml:"deliveredbps"`
}

// TheoryCurve samples S = G/(1+2ae) on G in [0,1]
type TheoryCurve struct {
	DelayFraction float64   `json:"delayfraction" yaml:"delayfraction"`
	Utilization   float64   `json:"utilization" yaml:"utilization"`
	G             []float64 `json:"g" yaml:"g"`
	S             []float64 `json:"s" yaml:"s"`
}

// SweepResult gathers every point of a sweep
type SweepResult struct {
	Name   string        `json:"name" yaml:"name"`
	Sweep  SweepParams   `json:"sweep" yaml:"sweep"`
	Points []SweepPoint  `json:"points" yaml:"points"`
	Peak   int           `json:"peak" yaml:"peak"` // index of the point with the largest S
	Theory []TheoryCurve `json:"theory" yaml:"theory"`
}

// WriteToFile stores the SweepResult to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (sr *SweepResult) WriteToFile(filename string) error {
	return writeDesc(filename, sr)
}

// Utilization is the 1-persistent CSMA/CD channel efficiency 1/(1+2ae)
func Utilization(delayFraction float64) float64 {
	return 1.0 / (1.0 + 2.0*delayFraction*math.E)
}

// TheoryCurveFor samples the analytic curve for one delay fraction at n values of G
func TheoryCurveFor(delayFraction float64, n int) TheoryCurve {
	tc := TheoryCurve{DelayFraction: delayFraction, Utilization: Utilization(delayFraction)}
	tc.G = floats.Span(make([]float64, n), 0, 1)
	tc.S = make([]float64, n)
	floats.ScaleTo(tc.S, tc.Utilization, tc.G)
	return tc
}

// normalize converts the summary of a point into G, S and bit rates
func (pt *SweepPoint) normalize(p *Params) {
	bitsPerRound := float64(p.FrameBits) / p.SimTime
	pt.OfferedBps = pt.Summary.Mean.Generated * bitsPerRound
	pt.DeliveredBps = pt.Summary.Mean.Delivered * bitsPerRound
	pt.G = pt.OfferedBps / p.LinkRate
	pt.S = pt.DeliveredBps / p.LinkRate
}

// pointSource returns the random source of point idx
func (sp *SweepParams) pointSource(idx int) Source {
	if sp.Seeded {
		return NewSeededSource(sp.Seed + uint64(idx))
	}
	return NewStreamSource(fmt.Sprintf("point-%d", idx))
}

// Sweep simulates every offered-load point of sp and returns the assembled result.
// Points run on sp.Workers goroutines.  Every point's random source is created before
// any point starts, so the result does not depend on the number of workers.
// Traces, when tm is active, are filed under execution id point*Rounds+round.
func Sweep(ctx context.Context, name string, sp SweepParams, tm *TraceManager, logger zerolog.Logger) (*SweepResult, error) {
	if err := sp.Validate(); err != nil {
		return nil, err
	}

	rates := sp.OfferedRates()
	srcs := make([]Source, len(rates))
	for idx := range rates {
		srcs[idx] = sp.pointSource(idx)
	}

	sr := &SweepResult{Name: name, Sweep: sp, Points: make([]SweepPoint, len(rates))}
	errs := make([]error, len(rates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < sp.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				errs[idx] = sr.runPoint(idx, rates[idx], srcs[idx], tm, logger)
			}
		}()
	}

	var ctxErr error
feed:
	for idx := range rates {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	if err := ReportErrs(errs); err != nil {
		return nil, err
	}

	s := make([]float64, len(sr.Points))
	for idx, pt := range sr.Points {
		s[idx] = pt.S
	}
	sr.Peak = floats.MaxIdx(s)

	for _, a := range sp.TheoryDelays {
		sr.Theory = append(sr.Theory, TheoryCurveFor(a, sp.TheoryPoints))
	}
	return sr, nil
}

// runPoint simulates one offered-load point and stores it in sr.Points[idx]
func (sr *SweepResult) runPoint(idx int, rate float64, src Source, tm *TraceManager, logger zerolog.Logger) error {
	p := sr.Sweep.Params
	p.OfferedRate = rate

	totals, err := Run(p, WithSource(src), WithTrace(tm, idx*p.Rounds))
	if err != nil {
		return fmt.Errorf("point %d: %w", idx, err)
	}

	pt := SweepPoint{OfferedRate: rate, Summary: totals.Summarize()}
	pt.normalize(&p)
	sr.Points[idx] = pt

	logger.Info().
		Int("point", idx+1).
		Int("of", len(sr.Points)).
		Float64("rate", rate).
		Float64("G", pt.G).
		Float64("S", pt.S).
		Float64("collided", pt.Summary.Mean.Collided).
		Float64("blocked", pt.Summary.Mean.Blocked).
		Msg("sweep point complete")
	return nil
}
