package timer

import (
	"testing"
	"time"
)

func TestPollFiresInDeadlineOrder(t *testing.T) {
	w := New()
	base := time.Unix(1000, 0)
	var order []int

	w.Set(base.Add(30*time.Millisecond), func() { order = append(order, 3) })
	w.Set(base.Add(10*time.Millisecond), func() { order = append(order, 1) })
	w.Set(base.Add(20*time.Millisecond), func() { order = append(order, 2) })

	w.Poll(base.Add(100 * time.Millisecond))

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("fired %d timers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("fire order = %v, want %v", order, want)
		}
	}
}

func TestCancelBeforePollSuppressesFiring(t *testing.T) {
	w := New()
	base := time.Unix(1000, 0)
	fired := false

	id := w.Set(base.Add(10*time.Millisecond), func() { fired = true })
	w.Cancel(id)
	w.Poll(base.Add(100 * time.Millisecond))

	if fired {
		t.Fatal("canceled timer fired")
	}
}

func TestCancelAfterDeadlinePassedStillSuppresses(t *testing.T) {
	// A timer whose deadline has already elapsed in wall-clock terms must
	// still not fire if Cancel runs before the next Poll call — Poll is
	// the only thing that can observe or act on a deadline.
	w := New()
	base := time.Unix(1000, 0)
	fired := false

	id := w.Set(base.Add(-5*time.Millisecond), func() { fired = true })
	w.Cancel(id)
	w.Poll(base)

	if fired {
		t.Fatal("timer fired after being canceled, even though its deadline had passed")
	}
}

func TestPollReturnsNextDeadline(t *testing.T) {
	w := New()
	base := time.Unix(1000, 0)

	w.Set(base.Add(50*time.Millisecond), func() {})
	d, ok := w.Poll(base)
	if !ok {
		t.Fatal("Poll reported no pending timer, want one")
	}
	if d != 50*time.Millisecond {
		t.Fatalf("next deadline = %v, want 50ms", d)
	}
}

func TestPollOnEmptyWheel(t *testing.T) {
	w := New()
	if _, ok := w.Poll(time.Unix(1000, 0)); ok {
		t.Fatal("Poll on empty wheel reported a pending timer")
	}
}

func TestFireOneFiresOnlyEarliest(t *testing.T) {
	w := New()
	base := time.Unix(1000, 0)
	var order []int

	w.Set(base.Add(10*time.Millisecond), func() { order = append(order, 1) })
	w.Set(base.Add(20*time.Millisecond), func() { order = append(order, 2) })

	if fired := w.FireOne(base.Add(100 * time.Millisecond)); !fired {
		t.Fatal("FireOne reported nothing fired")
	}
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("FireOne fired %v, want exactly [1]", order)
	}

	if fired := w.FireOne(base.Add(100 * time.Millisecond)); !fired {
		t.Fatal("second FireOne reported nothing fired")
	}
	if len(order) != 2 || order[1] != 2 {
		t.Fatalf("after second FireOne, order = %v, want [1 2]", order)
	}
}

func TestFireOneReportsFalseWhenNothingDue(t *testing.T) {
	w := New()
	base := time.Unix(1000, 0)
	w.Set(base.Add(50*time.Millisecond), func() {})
	if fired := w.FireOne(base); fired {
		t.Fatal("FireOne fired a timer not yet due")
	}
}

func TestCancelAllSuppressesEverything(t *testing.T) {
	w := New()
	base := time.Unix(1000, 0)
	fired := false
	w.Set(base.Add(time.Millisecond), func() { fired = true })
	w.Set(base.Add(2*time.Millisecond), func() { fired = true })

	w.CancelAll()
	w.Poll(base.Add(time.Second))

	if fired {
		t.Fatal("timer fired after CancelAll")
	}
}

func TestCancelUnknownIDIsNoop(t *testing.T) {
	w := New()
	w.Cancel(ID(12345))
	if w.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", w.Len())
	}
}

func TestNonReentrantFiring(t *testing.T) {
	// A fired callback scheduling a new timer must not have that timer
	// fire within the same Poll call, even if its deadline is already due.
	w := New()
	base := time.Unix(1000, 0)
	secondFired := false

	w.Set(base.Add(10*time.Millisecond), func() {
		w.Set(base.Add(5*time.Millisecond), func() { secondFired = true })
	})
	w.Poll(base.Add(20 * time.Millisecond))

	if secondFired {
		t.Fatal("timer scheduled inside a callback fired within the same Poll call")
	}
	d, ok := w.Poll(base.Add(20 * time.Millisecond))
	if !ok || d != 0 {
		t.Fatalf("expected the nested timer to be due on the next Poll, got d=%v ok=%v", d, ok)
	}
}
