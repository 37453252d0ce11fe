package csmacd

// channel.go holds the history of station activity on the shared medium.
//   The bit recorded at the end of tick k is the state a station carries into
// tick k+1, i.e., what it puts on the wire during k+1.  A listener at tick k
// hears what was on the wire delayTicks earlier.  With no propagation delay that
// is the current tick, which is not on the record while stations update, so
// the channel is heard as idle.  Only the most recent
// delayTicks+1 wire states can ever be read, so the history is a ring of that size.

// channelHistory is the ring of per-station activity vectors
type channelHistory struct {
	delay int // propagation delay, in ticks
	size  int // delay+1 slots

	ring [][]bool // ring[slot][station] is the activity bit of station on the wire
	busy []int    // busy[slot] is the number of active stations in ring[slot]

	idle []bool // all-zero vector returned during the startup transient
}

// createChannelHistory is a constructor
func createChannelHistory(stations, delay int) *channelHistory {
	ch := new(channelHistory)
	ch.delay = delay
	ch.size = delay + 1
	ch.ring = make([][]bool, ch.size)
	for slot := range ch.ring {
		ch.ring[slot] = make([]bool, stations)
	}
	ch.busy = make([]int, ch.size)
	ch.idle = make([]bool, stations)
	return ch
}

// reset clears the wire, as at the start of a round
func (ch *channelHistory) reset() {
	for slot := range ch.ring {
		clear(ch.ring[slot])
		ch.busy[slot] = 0
	}
}

// sensed returns the activity vector heard at tick k, and the number of busy stations in it.
// Before the first signal can have propagated (k < delay), and always when delay is 0,
// the channel is heard as idle.
// The returned slice belongs to the history and is valid until the next record.
func (ch *channelHistory) sensed(tick int) ([]bool, int) {
	if ch.delay == 0 || tick < ch.delay {
		return ch.idle, 0
	}
	slot := (tick - ch.delay) % ch.size
	return ch.ring[slot], ch.busy[slot]
}

// record saves the activity of every station after its tick k update, and returns
// the number of stations transmitting
func (ch *channelHistory) record(tick int, stations []station) int {
	slot := (tick + 1) % ch.size
	row := ch.ring[slot]
	busy := 0
	for idx := range stations {
		row[idx] = stations[idx].active
		if row[idx] {
			busy += 1
		}
	}
	ch.busy[slot] = busy
	return busy
}
