// Package timer provides a monotonic min-heap timer wheel. Dispatch uses
// it to schedule protocol timeouts (view-change, checkpoint), all on the
// single Dispatch goroutine; the pace tick is scheduled separately. Firing is non-reentrant: a
// callback running on Poll never triggers another Poll, and a timer
// cancelled before it is polled never fires even if its deadline has
// already passed.
package timer

import (
	"container/heap"
	"time"
)

// ID identifies one scheduled timer, returned by Set and accepted by
// Cancel. IDs are never reused within a Wheel's lifetime.
type ID uint64

// entry is one scheduled firing, ordered by Deadline in the heap.
type entry struct {
	id       ID
	deadline time.Time
	fn       func()
	index    int // maintained by container/heap
	canceled bool
}

// entryHeap is a container/heap.Interface over *entry, ordered by deadline.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	return h[i].deadline.Before(h[j].deadline)
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Wheel is a single-goroutine timer heap. It is not safe for concurrent
// use; callers own serializing access, matching Dispatch's single-threaded
// event loop.
type Wheel struct {
	heap   entryHeap
	byID   map[ID]*entry
	nextID ID
}

// New returns an empty Wheel.
func New() *Wheel {
	return &Wheel{byID: make(map[ID]*entry)}
}

// Set schedules fn to run when Poll is next called at or after deadline.
// It returns an ID that Cancel can later use to suppress the firing.
func (w *Wheel) Set(deadline time.Time, fn func()) ID {
	w.nextID++
	id := w.nextID
	e := &entry{id: id, deadline: deadline, fn: fn}
	w.byID[id] = e
	heap.Push(&w.heap, e)
	return id
}

// Cancel suppresses the timer identified by id. It is safe to call Cancel
// on an id that has already fired or was never issued; both are no-ops.
// Cancel always wins over any later Poll or FireOne: a canceled entry is
// marked in place and both skip marked entries without invoking fn.
func (w *Wheel) Cancel(id ID) {
	e, ok := w.byID[id]
	if !ok {
		return
	}
	e.canceled = true
	delete(w.byID, id)
}

// Poll fires every timer whose deadline is at or before now, in deadline
// order, then returns the duration until the next unfired timer (or false
// if none remain). Each fn runs to completion before the next is
// considered, so a callback that calls Set or Cancel observes a
// consistent heap.
func (w *Wheel) Poll(now time.Time) (time.Duration, bool) {
	// Collect everything due before firing any of it. A callback that
	// schedules a new timer must never see that timer fire within this
	// same Poll call, even if its deadline is already at or before now.
	var due []*entry
	for w.heap.Len() > 0 && !w.heap[0].deadline.After(now) {
		due = append(due, heap.Pop(&w.heap).(*entry))
	}
	for _, next := range due {
		if next.canceled {
			continue
		}
		delete(w.byID, next.id)
		next.fn()
	}
	if w.heap.Len() == 0 {
		return 0, false
	}
	d := w.heap[0].deadline.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Len returns the number of timers still pending, including any already
// canceled but not yet popped by Poll.
func (w *Wheel) Len() int {
	return w.heap.Len()
}

// Next reports the duration until the earliest pending deadline, relative
// to now, or false if the wheel is empty. It never fires anything; callers
// use it to size a select's timeout branch.
func (w *Wheel) Next(now time.Time) (time.Duration, bool) {
	if w.heap.Len() == 0 {
		return 0, false
	}
	d := w.heap[0].deadline.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

// FireOne fires at most the single earliest timer if its deadline is at or
// before now, skipping over (and discarding) any canceled entries it
// encounters first. It reports whether it fired something. Dispatch calls
// this once per event-loop iteration to preserve "one event per
// iteration" fairness between ingress, timers, and pace.
func (w *Wheel) FireOne(now time.Time) bool {
	for w.heap.Len() > 0 {
		next := w.heap[0]
		if next.deadline.After(now) {
			return false
		}
		heap.Pop(&w.heap)
		if next.canceled {
			continue
		}
		delete(w.byID, next.id)
		next.fn()
		return true
	}
	return false
}

// CancelAll marks every pending timer canceled without firing any of
// them. Dispatch calls this on shutdown; spec requires live timers never
// fire once shutdown has begun.
func (w *Wheel) CancelAll() {
	for id, e := range w.byID {
		e.canceled = true
		delete(w.byID, id)
	}
}
