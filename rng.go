package csmacd

import (
	"sync"

	"github.com/iti/rngstream"
	"golang.org/x/exp/rand"
)

// Source supplies the uniform samples that drive frame arrivals and backoff draws.
// *rngstream.RngStream satisfies it, as does SeededSource.
type Source interface {
	// RandU01 returns a sample uniformly distributed on [0,1)
	RandU01() float64
}

// streamMu serializes stream creation; rngstream advances a package-level seed on every New
var streamMu sync.Mutex

// NewStreamSource returns a fresh L'Ecuyer stream.  Streams are independent of each
// other and are handed out in creation order, so a fixed creation order gives a
// reproducible run.  It is safe to call from concurrent goroutines.
func NewStreamSource(name string) *rngstream.RngStream {
	streamMu.Lock()
	defer streamMu.Unlock()
	return rngstream.New(name)
}

// SeededSource is a Source whose whole sequence is fixed by one integer seed
type SeededSource struct {
	rng *rand.Rand
}

// NewSeededSource is a constructor
func NewSeededSource(seed uint64) *SeededSource {
	ss := new(SeededSource)
	ss.rng = rand.New(rand.NewSource(seed))
	return ss
}

// RandU01 implements Source
func (ss *SeededSource) RandU01() float64 {
	return ss.rng.Float64()
}

// randInt returns an integer drawn uniformly from the closed range [lo, hi]
func randInt(src Source, lo, hi int) int {
	v := lo + int(float64(hi-lo+1)*src.RandU01())
	if v > hi {
		v = hi
	}
	return v
}
