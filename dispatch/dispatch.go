package dispatch

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahwlsqja/bft-runtime-core/crypto"
	"github.com/ahwlsqja/bft-runtime-core/envelope"
	"github.com/ahwlsqja/bft-runtime-core/identity"
	"github.com/ahwlsqja/bft-runtime-core/ingress"
	"github.com/ahwlsqja/bft-runtime-core/timer"
)

// State is one of Dispatch's four lifecycle states.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config carries everything needed to construct a Dispatch. Receiver,
// Identities, and Crypto are required; Egress, Metrics, MinPace, and
// Clock have sane defaults if left zero.
type Config[M Message] struct {
	Receiver   Receiver[M]
	Identities *identity.Table
	Crypto     *crypto.Registry
	Egress     Egress
	Metrics    Metrics
	MinPace    time.Duration
	Clock      func() time.Time
}

// Dispatch is the single-threaded event loop owning one Receiver. It
// drains the ingress queue, drives the timer wheel, and invokes the pace
// callback, servicing exactly one event per iteration.
type Dispatch[M Message] struct {
	receiver   Receiver[M]
	pacer      Pacer[M]
	identities *identity.Table
	crypto     *crypto.Registry
	timers     *timer.Wheel
	ingress    *ingress.Queue[IngressItem]
	egress     Egress
	metrics    Metrics
	pace       *paceState
	clockFn    func() time.Time

	state        atomic.Int32
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	stoppedCh    chan struct{}
}

// New constructs an Idle Dispatch. Run must be called to start servicing
// events.
func New[M Message](cfg Config[M]) *Dispatch[M] {
	pacer, _ := cfg.Receiver.(Pacer[M])

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	m := cfg.Metrics
	if m == nil {
		m = noopMetrics{}
	}

	d := &Dispatch[M]{
		receiver:   cfg.Receiver,
		pacer:      pacer,
		identities: cfg.Identities,
		crypto:     cfg.Crypto,
		timers:     timer.New(),
		ingress:    ingress.New[IngressItem](),
		egress:     cfg.Egress,
		metrics:    m,
		pace:       newPaceState(cfg.MinPace),
		clockFn:    clock,
		shutdownCh: make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
	d.state.Store(int32(StateIdle))
	return d
}

// IngressQueue returns the queue the transport's reader goroutine pushes
// raw datagrams into. Exposed rather than duplicated so production and
// test transports share the exact same enqueue path Loopback uses.
func (d *Dispatch[M]) IngressQueue() *ingress.Queue[IngressItem] {
	return d.ingress
}

// SetEgress installs the Egress a constructed Dispatch sends through.
// Exists because a transport that reads from IngressQueue() must itself be
// constructed after the Dispatch, so production wiring is necessarily
// two-phase: New, then build the transport against IngressQueue(), then
// SetEgress. Must be called before Run; not safe to call concurrently
// with Run.
func (d *Dispatch[M]) SetEgress(e Egress) {
	d.egress = e
}

// QueueDepth returns the current ingress queue length, for status
// reporting.
func (d *Dispatch[M]) QueueDepth() int {
	return d.ingress.Len()
}

// State returns the current lifecycle state.
func (d *Dispatch[M]) State() State {
	return State(d.state.Load())
}

// Run drives the event loop until Stop is called. It blocks the calling
// goroutine; callers typically run it in its own goroutine.
func (d *Dispatch[M]) Run() error {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyRunning
	}
	defer func() {
		d.state.Store(int32(StateStopped))
		close(d.stoppedCh)
	}()

	for {
		now := d.now()
		ingressReady := d.ingress.WaitChan()

		var timerCh <-chan time.Time
		if dur, ok := d.timers.Next(now); ok {
			timerCh = time.After(dur)
		}

		var paceCh <-chan time.Time
		if dur, ok := d.pace.next(now); ok {
			paceCh = time.After(dur)
		}

		select {
		case <-d.shutdownCh:
			d.drainShutdown()
			return nil
		case <-ingressReady:
			d.handleIngress()
		case <-timerCh:
			d.timers.FireOne(d.now())
		case <-paceCh:
			d.handlePace()
		}
	}
}

// Stop requests shutdown: no new ingress is serviced, pending callbacks
// (none, since Stop and Run's loop share no lock and Stop only signals)
// complete, and live timers are canceled without firing. Idempotent.
func (d *Dispatch[M]) Stop() {
	d.shutdownOnce.Do(func() {
		d.state.Store(int32(StateShuttingDown))
		close(d.shutdownCh)
	})
}

// Wait blocks until Run has returned.
func (d *Dispatch[M]) Wait() {
	<-d.stoppedCh
}

func (d *Dispatch[M]) drainShutdown() {
	d.timers.CancelAll()
	d.ingress.Drain()
}

func (d *Dispatch[M]) now() time.Time {
	return d.clockFn()
}

// handleIngress services exactly one ingress item: deserialize, route by
// variant to its verification policy, verify if required, deliver.
func (d *Dispatch[M]) handleIngress() {
	item, ok := d.ingress.TryPop()
	if !ok {
		return
	}

	d.pace.arrivalFromIdle(d.now())

	start := d.now()
	defer func() {
		elapsed := d.now().Sub(start)
		d.pace.observe(elapsed)
		d.metrics.ObserveServiceTime(elapsed)
		d.metrics.SetQueueDepth(d.ingress.Len())
	}()

	msg, err := d.receiver.Decode(item.Payload)
	if err != nil {
		d.metrics.IncDrop("decode")
		return
	}

	policy := d.receiver.VerifyPolicy(msg.Tag())
	switch policy.Kind {
	case PolicyDrop:
		d.metrics.IncDrop("policy_drop")
		return
	case PolicyVerifyThen:
		signer, err := policy.ExtractSigner(msg)
		if err != nil {
			d.metrics.IncDrop("unknown_signer")
			return
		}
		canon, err := msg.CanonicalBytes()
		if err != nil {
			d.metrics.IncDrop("canonicalize")
			return
		}
		if !d.crypto.Verify(signer, canon, msg.Signature()) {
			d.metrics.IncDrop("bad_signature")
			return
		}
	case PolicySkip:
		// delivered without verification
	}

	d.metrics.IncMessageReceived(tagString(msg.Tag()))
	ctx := &Context[M]{d: d}
	d.receiver.OnMessage(ctx, msg)
}

func (d *Dispatch[M]) handlePace() {
	now := d.now()
	since := now.Sub(d.pace.lastFireOrNow(now))

	if d.pacer != nil {
		ctx := &Context[M]{d: d}
		d.pacer.OnPace(ctx)
	}

	qDepth := d.ingress.Len()
	d.metrics.ObservePaceInterval(since)
	d.pace.fired(now, qDepth)
	d.metrics.SetQueueDepth(qDepth)
}

func (d *Dispatch[M]) sendTo(to identity.ID, msg M) {
	entry, ok := d.identities.Lookup(to)
	if !ok {
		return
	}
	payload, err := d.receiver.Encode(msg)
	if err != nil {
		return
	}
	d.metrics.IncMessageSent(tagString(msg.Tag()))
	if d.egress != nil {
		d.egress.Send(EgressItem{Addr: entry.Addr, Payload: payload})
	}
}

func (d *Dispatch[M]) broadcast(msg M) {
	d.identities.Each(func(e identity.Entry) {
		d.sendTo(e.ID, msg)
	})
}

func (d *Dispatch[M]) loopback(msg M) {
	signed, err := d.receiver.Sign(msg)
	if err != nil {
		return
	}
	payload, err := d.receiver.Encode(signed)
	if err != nil {
		return
	}
	d.metrics.IncLoopback()
	d.ingress.Push(IngressItem{Source: "self", Payload: payload})
}

func (d *Dispatch[M]) setTimer(dur time.Duration, token Token) timer.ID {
	return d.timers.Set(d.now().Add(dur), func() {
		d.metrics.IncTimerFired()
		ctx := &Context[M]{d: d}
		d.receiver.OnTimer(ctx, token)
	})
}

func (d *Dispatch[M]) unsetTimer(id timer.ID) {
	d.timers.Cancel(id)
	d.metrics.IncTimerCanceled()
}

func tagString(t envelope.Tag) string {
	return strconv.Itoa(int(t))
}
