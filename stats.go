package csmacd

import (
	"gonum.org/v1/gonum/stat"
)

// Counters holds the four frame counts gathered by one round, or summed over many
type Counters struct {
	Generated int64 `json:"generated" yaml:"generated"`
	Delivered int64 `json:"delivered" yaml:"delivered"`
	Collided  int64 `json:"collided" yaml:"collided"`
	Blocked   int64 `json:"blocked" yaml:"blocked"`
}

// Add accumulates other into c
func (c *Counters) Add(other Counters) {
	c.Generated += other.Generated
	c.Delivered += other.Delivered
	c.Collided += other.Collided
	c.Blocked += other.Blocked
}

// Totals is the run-level accumulator.  One is created per run and every
// completed round is added into it.
type Totals struct {
	Rounds   int        `json:"rounds" yaml:"rounds"`
	Sum      Counters   `json:"sum" yaml:"sum"`
	PerRound []Counters `json:"perround" yaml:"perround"`
}

// createTotals is a constructor
func createTotals(rounds int) *Totals {
	tot := new(Totals)
	tot.PerRound = make([]Counters, 0, rounds)
	return tot
}

// addRound folds the counters of a completed round into the totals
func (tot *Totals) addRound(cnt Counters) {
	tot.Rounds += 1
	tot.Sum.Add(cnt)
	tot.PerRound = append(tot.PerRound, cnt)
}

// Means holds per-round mean counts
type Means struct {
	Generated float64 `json:"generated" yaml:"generated"`
	Delivered float64 `json:"delivered" yaml:"delivered"`
	Collided  float64 `json:"collided" yaml:"collided"`
	Blocked   float64 `json:"blocked" yaml:"blocked"`
}

// Reduce divides accumulated counters by the number of rounds they were gathered over.
// rounds must be positive.
func Reduce(sum Counters, rounds int) Means {
	if rounds < 1 {
		panic("Reduce called with a non-positive round count")
	}
	n := float64(rounds)
	return Means{
		Generated: float64(sum.Generated) / n,
		Delivered: float64(sum.Delivered) / n,
		Collided:  float64(sum.Collided) / n,
		Blocked:   float64(sum.Blocked) / n,
	}
}

// Means is Reduce applied to the totals
func (tot *Totals) Means() Means {
	return Reduce(tot.Sum, tot.Rounds)
}

// Summary reports the per-round mean of each counter and its sample standard deviation
type Summary struct {
	Mean   Means `json:"mean" yaml:"mean"`
	StdDev Means `json:"stddev" yaml:"stddev"`
}

// Summarize computes a Summary from the per-round samples.  With a single
// round the standard deviations are reported as zero.
func (tot *Totals) Summarize() Summary {
	sum := Summary{Mean: tot.Means()}
	if len(tot.PerRound) < 2 {
		return sum
	}

	gen := make([]float64, len(tot.PerRound))
	del := make([]float64, len(tot.PerRound))
	col := make([]float64, len(tot.PerRound))
	blk := make([]float64, len(tot.PerRound))
	for idx, cnt := range tot.PerRound {
		gen[idx] = float64(cnt.Generated)
		del[idx] = float64(cnt.Delivered)
		col[idx] = float64(cnt.Collided)
		blk[idx] = float64(cnt.Blocked)
	}
	sum.StdDev.Generated = stat.StdDev(gen, nil)
	sum.StdDev.Delivered = stat.StdDev(del, nil)
	sum.StdDev.Collided = stat.StdDev(col, nil)
	sum.StdDev.Blocked = stat.StdDev(blk, nil)
	return sum
}
