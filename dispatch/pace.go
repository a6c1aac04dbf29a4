package dispatch

import "time"

// paceAlpha is the EWMA coefficient applied to every ingress message's
// measured service time, per spec.md §4.6.
const paceAlpha = 1.0 / 16.0

// paceState implements the adaptive batching schedule: the next pace
// fires at now + max(minPace, ewmaPerMsg * qDepthNow), except that a pace
// which finds the queue empty goes idle and waits for the next ingress
// arrival to re-arm, rather than polling on a fixed interval.
type paceState struct {
	ewmaPerMsg time.Duration
	minPace    time.Duration
	idle       bool
	armed      bool
	deadline   time.Time
	lastFire   time.Time
}

func newPaceState(minPace time.Duration) *paceState {
	return &paceState{minPace: minPace, idle: true}
}

// observe folds one message's measured service time into the EWMA.
func (p *paceState) observe(serviceTime time.Duration) {
	if p.ewmaPerMsg == 0 {
		p.ewmaPerMsg = serviceTime
		return
	}
	p.ewmaPerMsg += time.Duration(paceAlpha * float64(serviceTime-p.ewmaPerMsg))
}

// arrivalFromIdle re-arms the pace immediately if it had gone idle. The
// first arrival after an idle queue always triggers a pace.
func (p *paceState) arrivalFromIdle(now time.Time) {
	if !p.idle {
		return
	}
	p.idle = false
	p.armed = true
	p.deadline = now
}

// fired records that the pace callback just ran at now, having observed
// qDepthNow items still queued, and schedules (or disarms) the next one.
func (p *paceState) fired(now time.Time, qDepthNow int) {
	p.lastFire = now
	if qDepthNow == 0 {
		p.idle = true
		p.armed = false
		return
	}
	wait := time.Duration(float64(p.ewmaPerMsg) * float64(qDepthNow))
	if wait < p.minPace {
		wait = p.minPace
	}
	p.armed = true
	p.deadline = now.Add(wait)
}

// next reports the duration until the pace should fire, and whether one
// is armed at all.
func (p *paceState) next(now time.Time) (time.Duration, bool) {
	if !p.armed {
		return 0, false
	}
	d := p.deadline.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

// lastFireOrNow returns lastFire, or now if no pace has fired yet — so the
// very first interval observation is zero rather than spuriously huge.
func (p *paceState) lastFireOrNow(now time.Time) time.Time {
	if p.lastFire.IsZero() {
		return now
	}
	return p.lastFire
}
