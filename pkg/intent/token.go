// Package intent turns transcribed operator speech into typed motion commands.
//
// Parsing is a pure function over normalized text: no state, no I/O. The
// grammars are deliberately permissive and overlapping: a silently dropped
// spoken command is worse in a voice interface than an occasional duplicate
// match, and downstream validation is the safety backstop.
package intent

import "fmt"

// Mode selects which motion grammar applies to an utterance.
type Mode string

const (
	// ModeRelative interprets angles as deltas from the current pose.
	ModeRelative Mode = "relative"

	// ModeAbsolute interprets angles as target positions in degrees.
	ModeAbsolute Mode = "absolute"
)

// Kind identifies the variant of a Token.
type Kind int

const (
	// KindMode switches the grammar used for the next utterance.
	KindMode Kind = iota

	// KindHome requests a move to the home pose.
	KindHome

	// KindConfirm executes whatever is pending confirmation.
	KindConfirm

	// KindCancel discards whatever is pending confirmation.
	KindCancel

	// KindConfirmRequirement toggles whether confirmation is required.
	KindConfirmRequirement

	// KindRelativeMove nudges one joint by a signed delta in degrees.
	KindRelativeMove

	// KindAbsoluteMove sends one joint to a signed target in degrees.
	KindAbsoluteMove
)

// Token is one semantic command extracted from an utterance.
// Tokens are immutable once created and consumed in emission order.
type Token struct {
	Kind Kind

	// Mode is set for KindMode.
	Mode Mode

	// Enabled is set for KindConfirmRequirement.
	Enabled bool

	// Joint (1..6) and Degrees are set for the move kinds. Degrees is a
	// delta for relative moves and a target for absolute moves.
	Joint   int
	Degrees float64
}

// String renders the token for logs.
func (t Token) String() string {
	switch t.Kind {
	case KindMode:
		return fmt.Sprintf("Mode(%s)", t.Mode)
	case KindHome:
		return "Home"
	case KindConfirm:
		return "Confirm"
	case KindCancel:
		return "Cancel"
	case KindConfirmRequirement:
		return fmt.Sprintf("ConfirmRequirement(%v)", t.Enabled)
	case KindRelativeMove:
		return fmt.Sprintf("RelativeMove(J%d, %+.2f)", t.Joint, t.Degrees)
	case KindAbsoluteMove:
		return fmt.Sprintf("AbsoluteMove(J%d, %.2f)", t.Joint, t.Degrees)
	}
	return "Unknown"
}
