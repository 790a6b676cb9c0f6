// Package gate holds high-risk operator intents until an explicit voice
// confirmation. Relative moves pass straight through: they are low-risk
// increments. Absolute repositioning and homing are gated because a single
// misheard number can send the arm across its whole range.
package gate

import (
	"fmt"
	"sync"

	"github.com/teslashibe/go-cobot/pkg/arm"
	"github.com/teslashibe/go-cobot/pkg/controller"
	"github.com/teslashibe/go-cobot/pkg/intent"
)

// Sink receives the batches the gate releases. Implemented by the
// controller; tests substitute a recorder.
type Sink interface {
	EnqueueRelative(pairs []controller.Pair)
	EnqueueAbsolute(pairs []controller.Pair)
}

// Gate is the front-end decision point between parsed tokens and the
// command queue. It also owns the active parse mode, which the speech
// producer queries per utterance.
type Gate struct {
	sink Sink
	home arm.Pose
	logf func(string)

	mu             sync.Mutex
	mode           intent.Mode
	requireConfirm bool
	pendingHome    bool
	pendingAbs     []controller.Pair
}

// New creates a gate. Confirmation starts required and the grammar starts
// in relative mode. logf receives the operator-facing lines; nil is fine.
func New(sink Sink, home arm.Pose, logf func(string)) *Gate {
	if logf == nil {
		logf = func(string) {}
	}
	return &Gate{
		sink:           sink,
		home:           home,
		logf:           logf,
		mode:           intent.ModeRelative,
		requireConfirm: true,
	}
}

// Mode returns the grammar mode for the next utterance.
func (g *Gate) Mode() intent.Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// SetMode switches the grammar mode. Already-queued and already-pending
// commands are unaffected.
func (g *Gate) SetMode(m intent.Mode) {
	g.mu.Lock()
	g.mode = m
	g.mu.Unlock()
	if m == intent.ModeAbsolute {
		g.logf("[MODE] switched to ABSOLUTE")
	} else {
		g.logf("[MODE] switched to RELATIVE")
	}
}

// RequireConfirm reports whether absolute/home intents are being held.
func (g *Gate) RequireConfirm() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requireConfirm
}

// Pending returns a snapshot of what awaits confirmation.
func (g *Gate) Pending() (home bool, abs []controller.Pair) {
	g.mu.Lock()
	defer g.mu.Unlock()
	abs = make([]controller.Pair, len(g.pendingAbs))
	copy(abs, g.pendingAbs)
	return g.pendingHome, abs
}

// Handle processes one utterance worth of tokens in emission order.
func (g *Gate) Handle(tokens []intent.Token) {
	if len(tokens) == 0 {
		g.logf("no commands")
		return
	}

	var relPairs, absInstant []controller.Pair

	for _, t := range tokens {
		switch t.Kind {
		case intent.KindMode:
			g.SetMode(t.Mode)

		case intent.KindConfirm:
			g.Confirm()

		case intent.KindCancel:
			g.Cancel()

		case intent.KindConfirmRequirement:
			g.SetRequireConfirm(t.Enabled)

		case intent.KindHome:
			g.RequestHome()

		case intent.KindRelativeMove:
			relPairs = append(relPairs, controller.Pair{Joint: t.Joint, Degrees: t.Degrees})

		case intent.KindAbsoluteMove:
			if g.holdAbsolute(controller.Pair{Joint: t.Joint, Degrees: t.Degrees}) {
				continue
			}
			absInstant = append(absInstant, controller.Pair{Joint: t.Joint, Degrees: t.Degrees})
		}
	}

	if len(relPairs) > 0 {
		g.logf(fmt.Sprintf("[REL] → %v", relPairs))
		g.sink.EnqueueRelative(relPairs)
	}
	if len(absInstant) > 0 {
		g.logf(fmt.Sprintf("[ABS] (no confirmation) → %v", absInstant))
		g.sink.EnqueueAbsolute(absInstant)
	}
}

// RequestHome gates or forwards a home intent.
func (g *Gate) RequestHome() {
	g.mu.Lock()
	hold := g.requireConfirm
	if hold {
		g.pendingHome = true
	}
	g.mu.Unlock()

	if hold {
		g.logf("[HOME] pending confirmation (say 'confirma' or 'cancela')")
		return
	}
	g.logf("[HOME] executing (no confirmation)")
	g.enqueueHome()
}

// RequestAbsolute gates or forwards absolute pairs (used by the dashboard;
// voice goes through Handle).
func (g *Gate) RequestAbsolute(pairs []controller.Pair) {
	var instant []controller.Pair
	for _, p := range pairs {
		if g.holdAbsolute(p) {
			continue
		}
		instant = append(instant, p)
	}
	if len(instant) > 0 {
		g.logf(fmt.Sprintf("[ABS] (no confirmation) → %v", instant))
		g.sink.EnqueueAbsolute(instant)
	}
}

// RequestRelative forwards relative pairs immediately; never gated.
func (g *Gate) RequestRelative(pairs []controller.Pair) {
	if len(pairs) == 0 {
		return
	}
	g.logf(fmt.Sprintf("[REL] → %v", pairs))
	g.sink.EnqueueRelative(pairs)
}

// holdAbsolute appends the pair to the pending list when confirmation is
// required, reporting whether it was held.
func (g *Gate) holdAbsolute(p controller.Pair) bool {
	g.mu.Lock()
	hold := g.requireConfirm
	if hold {
		g.pendingAbs = append(g.pendingAbs, p)
	}
	g.mu.Unlock()

	if hold {
		g.logf(fmt.Sprintf("[ABS] pending J%d → %.2f° (say 'confirma' or 'cancela')", p.Joint, p.Degrees))
	}
	return hold
}

// Confirm flushes whatever is pending: home first, then the absolute pairs
// as one batch in insertion order.
func (g *Gate) Confirm() {
	g.mu.Lock()
	home := g.pendingHome
	abs := g.pendingAbs
	g.pendingHome = false
	g.pendingAbs = nil
	g.mu.Unlock()

	if home {
		g.logf("[HOME] confirmed by voice")
		g.enqueueHome()
	}
	if len(abs) > 0 {
		g.logf(fmt.Sprintf("[ABS] confirmed by voice → %v", abs))
		g.sink.EnqueueAbsolute(abs)
	}
}

// Cancel discards everything pending without forwarding.
func (g *Gate) Cancel() {
	g.mu.Lock()
	had := g.pendingHome || len(g.pendingAbs) > 0
	g.pendingHome = false
	g.pendingAbs = nil
	g.mu.Unlock()

	if had {
		g.logf("[CANCEL] pending commands discarded")
	} else {
		g.logf("[CANCEL] nothing was pending")
	}
}

// SetRequireConfirm toggles the gate. Existing pending state is untouched.
func (g *Gate) SetRequireConfirm(enabled bool) {
	g.mu.Lock()
	g.requireConfirm = enabled
	g.mu.Unlock()

	if enabled {
		g.logf("[CONF] voice confirmation ENABLED ('confirma' required)")
	} else {
		g.logf("[CONF] voice confirmation DISABLED (auto-execute)")
	}
}

// enqueueHome expands the home pose into per-joint absolute pairs, the
// same one-joint-at-a-time path every other command takes.
func (g *Gate) enqueueHome() {
	pairs := make([]controller.Pair, arm.NumJoints)
	for i := 0; i < arm.NumJoints; i++ {
		pairs[i] = controller.Pair{Joint: i + 1, Degrees: g.home[i]}
	}
	g.logf(fmt.Sprintf("[ABS] HOME → %v", pairs))
	g.sink.EnqueueAbsolute(pairs)
}
