package csmacd

// sim.go holds the tick loop and the round orchestrator.
//   Within a tick every station is updated, in ascending index order, against the
// delayed channel snapshot; only after all updates are the new activity bits recorded
// and overlapping transmissions flagged.  A flagged station learns of the collision at
// the start of its next update, so no station reacts within the instant it caused one.

// Option configures a call to Run or Simulate
type Option func(*options)

type options struct {
	src    Source
	trace  *TraceManager
	execID int
}

// WithSource makes the run draw from src.  The source is used as is, never reseeded.
func WithSource(src Source) Option {
	return func(o *options) { o.src = src }
}

// WithSeed makes the run reproducible: it draws from a SeededSource built from seed
func WithSeed(seed uint64) Option {
	return func(o *options) { o.src = NewSeededSource(seed) }
}

// WithTrace records a summary of every round, and every collision detection, in tm.
// Round r is filed under execution id base+r.
func WithTrace(tm *TraceManager, base int) Option {
	return func(o *options) {
		o.trace = tm
		o.execID = base
	}
}

// simulator drives the rounds of one run
type simulator struct {
	rp       *runParams
	src      Source
	stations []station
	history  *channelHistory

	trace  *TraceManager
	execID int
	round  int
}

// createSimulator is a constructor
func createSimulator(rp *runParams, src Source) *simulator {
	sim := new(simulator)
	sim.rp = rp
	sim.src = src
	sim.stations = make([]station, rp.stations)
	sim.history = createChannelHistory(rp.stations, rp.delayTicks)
	return sim
}

// reset returns every station to idle with an empty queue, and clears the channel
func (sim *simulator) reset() {
	clear(sim.stations)
	sim.history.reset()
}

// step advances every station by one tick, then detects collisions
func (sim *simulator) step(tick int, cnt *Counters) {
	sensed, busy := sim.history.sensed(tick)

	for idx := range sim.stations {
		// a station does not contend with its own delayed signal
		others := busy
		if sensed[idx] {
			others -= 1
		}
		sim.stations[idx].advance(others, sim.rp, sim.src, cnt)
	}

	if sim.history.record(tick, sim.stations) > 1 {
		for idx := range sim.stations {
			if sim.stations[idx].active {
				sim.stations[idx].collisionPending = true
			}
		}
		if sim.trace.Active() {
			addCollisionTrace(sim.trace, sim.execID+sim.round, sim.round, tick, sim.rp, sim.stations)
		}
	}
}

// runRound plays one round from fresh stations and returns its counters
func (sim *simulator) runRound(round int) Counters {
	var cnt Counters
	sim.round = round
	sim.reset()
	for tick := 0; tick < sim.rp.totalTicks; tick++ {
		sim.step(tick, &cnt)
	}
	if sim.trace.Active() {
		addRoundTrace(sim.trace, sim.execID+round, round, sim.rp, cnt)
	}
	return cnt
}

// Run validates p, plays p.Rounds rounds and returns the accumulated totals.
// Without WithSource or WithSeed the run draws from a new rngstream stream.
func Run(p Params, opts ...Option) (*Totals, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = NewStreamSource("csmacd")
	}

	rp := p.derive()
	sim := createSimulator(&rp, o.src)
	sim.trace = o.trace
	sim.execID = o.execID

	totals := createTotals(rp.rounds)
	for round := 0; round < rp.rounds; round++ {
		totals.addRound(sim.runRound(round))
	}
	return totals, nil
}

// Simulate runs the reference channel (DefaultParams) at the given offered rate
// (frames per second per station), station count, propagation delay fraction and
// round count, and returns the per-round means of the generated, delivered, collided
// and blocked frame counts.
func Simulate(offeredRate float64, stations int, delayFraction float64, rounds int, opts ...Option) (Means, error) {
	p := DefaultParams()
	p.OfferedRate = offeredRate
	p.Stations = stations
	p.DelayFraction = delayFraction
	p.Rounds = rounds

	totals, err := Run(p, opts...)
	if err != nil {
		return Means{}, err
	}
	return totals.Means(), nil
}
