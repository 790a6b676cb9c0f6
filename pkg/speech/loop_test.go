package speech

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/teslashibe/go-cobot/pkg/arm"
	"github.com/teslashibe/go-cobot/pkg/controller"
	"github.com/teslashibe/go-cobot/pkg/gate"
)

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

func startLoop(t *testing.T) (*Mock, *Loop, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	g := gate.New(sink, arm.Pose{}, nil)
	rec := NewMockRecognizer()
	loop := NewLoop(rec, g)
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { loop.Stop() })
	return rec, loop, sink
}

func TestFinalTranscriptDrivesTheGate(t *testing.T) {
	rec, _, sink := startLoop(t)

	rec.Say("mueve la junta 3 a 15 grados", true)

	if len(sink.relative) != 1 {
		t.Fatalf("expected 1 relative batch, got %d", len(sink.relative))
	}
	pair := sink.relative[0][0]
	if pair.Joint != 3 || pair.Degrees != 15 {
		t.Errorf("got %v, want J3 +15", pair)
	}
}

func TestInterimTranscriptIsNeverParsed(t *testing.T) {
	rec, loop, sink := startLoop(t)

	var lives []string
	loop.OnLive = func(text string) { lives = append(lives, text) }

	rec.Say("mueve la", false)
	rec.Say("mueve la junta 2 10 grados", false)

	if len(sink.relative) != 0 || len(sink.absolute) != 0 {
		t.Errorf("interim results must not produce commands: %v %v", sink.relative, sink.absolute)
	}
	if len(lives) != 2 || lives[1] != "mueve la junta 2 10 grados" {
		t.Errorf("live lines = %v", lives)
	}
}

func TestFinalCallbackFiresBeforeParsing(t *testing.T) {
	rec, loop, sink := startLoop(t)

	var finals []string
	loop.OnFinal = func(text string) { finals = append(finals, text) }

	rec.Say("baja la junta 2 20 grados", true)

	if len(finals) != 1 {
		t.Fatalf("OnFinal calls = %d, want 1", len(finals))
	}
	if len(sink.relative) != 1 || sink.relative[0][0].Degrees != -20 {
		t.Errorf("parsed command missing or wrong: %v", sink.relative)
	}
}

func TestModeFollowsTheGate(t *testing.T) {
	rec, _, sink := startLoop(t)

	rec.Say("cambia a modo absoluto", true)
	rec.Say("junta 4 a posicion 30", true)

	if len(sink.relative) != 0 {
		t.Errorf("no relative batch expected, got %v", sink.relative)
	}
	// Absolute move is held by the confirmation gate until confirmed.
	rec.Say("confirma", true)
	if len(sink.absolute) != 1 {
		t.Fatalf("expected 1 absolute batch after confirm, got %d", len(sink.absolute))
	}
	pair := sink.absolute[0][0]
	if pair.Joint != 4 || pair.Degrees != 30 {
		t.Errorf("got %v, want J4 → 30", pair)
	}
}

func TestRecognizerErrorForwarded(t *testing.T) {
	rec, loop, _ := startLoop(t)

	var got error
	loop.OnError = func(err error) { got = err }

	want := errors.New("gateway unreachable")
	rec.Fail(want)

	if !errors.Is(got, want) {
		t.Errorf("OnError received %v, want %v", got, want)
	}
}

func TestDoubleStartRejected(t *testing.T) {
	rec := NewMockRecognizer()
	loop := NewLoop(rec, gate.New(&recordingSink{}, arm.Pose{}, nil))
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	defer loop.Stop()
	if err := loop.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second start = %v, want ErrAlreadyStarted", err)
	}
}
