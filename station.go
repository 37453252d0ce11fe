package csmacd

// station.go holds the per-station state machine.  Every tick a station
//   - resolves the frame it has in flight (abort on collision, or count down to delivery),
//   - otherwise tries to send from its queue once its backoff has expired and the channel is heard idle,
//   - then independently runs one Bernoulli trial for a new frame arrival.

// station is the mutable record of one station within a round
type station struct {
	active           bool // transmitting now
	remaining        int  // ticks left in the current transmission
	queued           int  // frames waiting
	collisionPending bool // flagged by this tick's collision detector, resolved next tick
	backoff          int  // ticks until a retry is permitted
}

// transmit puts a frame on the channel
func (st *station) transmit(rp *runParams) {
	st.active = true
	st.remaining = rp.frameTicks
}

// advance applies one tick of the state machine.  others is the number of
// other stations heard transmitting in the delayed channel snapshot.
func (st *station) advance(others int, rp *runParams, src Source, cnt *Counters) {
	if st.remaining > 0 {
		if st.collisionPending {
			// abort, and requeue the frame behind a random backoff
			st.remaining = 0
			st.active = false
			st.backoff = randInt(src, 1, rp.maxBackoff)
			st.queued += 1
			st.collisionPending = false
			cnt.Collided += 1
		} else {
			st.remaining -= 1
			if st.remaining == 0 {
				st.active = false
				cnt.Delivered += 1
			}
		}
	} else if st.queued > 0 {
		switch {
		case st.backoff == 0 && others == 0:
			st.transmit(rp)
			st.queued -= 1
		case st.backoff > 0:
			st.backoff -= 1
		default:
			// backoff expired into a busy channel
			st.backoff = 2 * rp.delayTicks
			cnt.Blocked += 1
		}
	}

	if !(src.RandU01() < rp.arrivalProb) {
		return
	}
	cnt.Generated += 1

	if !st.active && st.backoff == 0 && others == 0 {
		st.transmit(rp)
		return
	}
	st.queued += 1

	// a transmitting station is not contending for the channel
	if !st.active && st.backoff == 0 && others > 0 {
		st.backoff = 2 * rp.delayTicks
		cnt.Blocked += 1
	}
}
