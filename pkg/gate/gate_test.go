package gate

import (
	"sync"
	"testing"

	"github.com/teslashibe/go-cobot/pkg/arm"
	"github.com/teslashibe/go-cobot/pkg/controller"
	"github.com/teslashibe/go-cobot/pkg/intent"
)

// recordingSink captures released batches for inspection.
type recordingSink struct {
	mu       sync.Mutex
	relative [][]controller.Pair
	absolute [][]controller.Pair
}

func (r *recordingSink) EnqueueRelative(pairs []controller.Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relative = append(r.relative, pairs)
}

func (r *recordingSink) EnqueueAbsolute(pairs []controller.Pair) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.absolute = append(r.absolute, pairs)
}

var testHome = arm.Pose{119.17, -94.83, 148.35, 26.71, -75.14, 117.59}

func TestRelativePassesThrough(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{
		{Kind: intent.KindRelativeMove, Joint: 3, Degrees: 15},
		{Kind: intent.KindRelativeMove, Joint: 2, Degrees: -20},
	})

	if len(sink.relative) != 1 {
		t.Fatalf("expected 1 relative batch, got %d", len(sink.relative))
	}
	batch := sink.relative[0]
	if len(batch) != 2 || batch[0].Joint != 3 || batch[1].Degrees != -20 {
		t.Errorf("unexpected batch %v", batch)
	}
	if len(sink.absolute) != 0 {
		t.Errorf("no absolute batch expected, got %v", sink.absolute)
	}
}

func TestAbsoluteHeldUntilConfirm(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{
		{Kind: intent.KindAbsoluteMove, Joint: 4, Degrees: 30},
		{Kind: intent.KindAbsoluteMove, Joint: 1, Degrees: 90},
	})

	if len(sink.absolute) != 0 {
		t.Fatalf("absolute moves must be held, got %v", sink.absolute)
	}
	home, abs := g.Pending()
	if home || len(abs) != 2 {
		t.Fatalf("pending = (%v, %v), want (false, 2 pairs)", home, abs)
	}

	g.Confirm()

	if len(sink.absolute) != 1 {
		t.Fatalf("expected 1 absolute batch after confirm, got %d", len(sink.absolute))
	}
	batch := sink.absolute[0]
	if batch[0].Joint != 4 || batch[0].Degrees != 30 || batch[1].Joint != 1 || batch[1].Degrees != 90 {
		t.Errorf("insertion order not preserved: %v", batch)
	}

	// Confirm is idempotent once flushed
	g.Confirm()
	if len(sink.absolute) != 1 {
		t.Errorf("second confirm must not resend, got %d batches", len(sink.absolute))
	}
}

func TestCancelDiscardsPending(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{{Kind: intent.KindAbsoluteMove, Joint: 2, Degrees: -45}})
	g.Handle([]intent.Token{{Kind: intent.KindHome}})
	g.Cancel()

	home, abs := g.Pending()
	if home || len(abs) != 0 {
		t.Errorf("pending after cancel = (%v, %v)", home, abs)
	}

	g.Confirm()
	if len(sink.absolute) != 0 {
		t.Errorf("cancelled commands must never execute, got %v", sink.absolute)
	}
}

func TestHomeExpandsToAbsolutePairs(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{{Kind: intent.KindHome}})
	if home, _ := g.Pending(); !home {
		t.Fatal("home should be pending")
	}
	g.Confirm()

	if len(sink.absolute) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(sink.absolute))
	}
	batch := sink.absolute[0]
	if len(batch) != arm.NumJoints {
		t.Fatalf("home batch has %d pairs, want %d", len(batch), arm.NumJoints)
	}
	for i, p := range batch {
		if p.Joint != i+1 || p.Degrees != testHome[i] {
			t.Errorf("pair %d = %v, want J%d %.2f", i, p, i+1, testHome[i])
		}
	}
}

func TestConfirmFlushesHomeBeforeAbsolute(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{{Kind: intent.KindAbsoluteMove, Joint: 5, Degrees: 10}})
	g.Handle([]intent.Token{{Kind: intent.KindHome}})
	g.Confirm()

	if len(sink.absolute) != 2 {
		t.Fatalf("expected 2 batches (home, then abs), got %d", len(sink.absolute))
	}
	if len(sink.absolute[0]) != arm.NumJoints {
		t.Errorf("first batch should be the home expansion, got %v", sink.absolute[0])
	}
	if len(sink.absolute[1]) != 1 || sink.absolute[1][0].Joint != 5 {
		t.Errorf("second batch should be the held pair, got %v", sink.absolute[1])
	}
}

func TestConfirmationDisabledExecutesImmediately(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{{Kind: intent.KindConfirmRequirement, Enabled: false}})
	g.Handle([]intent.Token{
		{Kind: intent.KindAbsoluteMove, Joint: 4, Degrees: 30},
		{Kind: intent.KindHome},
	})

	// Home executes on sight, then the absolute pair: two batches total.
	if len(sink.absolute) != 2 {
		t.Fatalf("expected 2 immediate batches, got %d: %v", len(sink.absolute), sink.absolute)
	}

	// Re-enabling restores the holding behavior without touching pending.
	g.Handle([]intent.Token{{Kind: intent.KindConfirmRequirement, Enabled: true}})
	g.Handle([]intent.Token{{Kind: intent.KindAbsoluteMove, Joint: 1, Degrees: 5}})
	if len(sink.absolute) != 2 {
		t.Errorf("pair should be held again, got %v", sink.absolute)
	}
}

func TestModeOwnership(t *testing.T) {
	g := New(&recordingSink{}, testHome, nil)

	if g.Mode() != intent.ModeRelative {
		t.Errorf("initial mode = %v, want relative", g.Mode())
	}
	g.Handle([]intent.Token{{Kind: intent.KindMode, Mode: intent.ModeAbsolute}})
	if g.Mode() != intent.ModeAbsolute {
		t.Errorf("mode after switch = %v, want absolute", g.Mode())
	}
}

func TestModeSwitchLeavesPendingIntact(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{{Kind: intent.KindAbsoluteMove, Joint: 2, Degrees: -30}})
	g.Handle([]intent.Token{{Kind: intent.KindMode, Mode: intent.ModeRelative}})

	if _, abs := g.Pending(); len(abs) != 1 {
		t.Errorf("pending lost across mode switch: %v", abs)
	}
}

func TestCancelThenNewCommand(t *testing.T) {
	sink := &recordingSink{}
	g := New(sink, testHome, nil)

	g.Handle([]intent.Token{{Kind: intent.KindAbsoluteMove, Joint: 3, Degrees: 50}})
	g.Cancel()
	g.Handle([]intent.Token{{Kind: intent.KindAbsoluteMove, Joint: 6, Degrees: -10}})
	g.Confirm()

	if len(sink.absolute) != 1 {
		t.Fatalf("expected only the post-cancel pair, got %v", sink.absolute)
	}
	if sink.absolute[0][0].Joint != 6 {
		t.Errorf("wrong pair survived: %v", sink.absolute[0])
	}
}
