// Package limits evaluates candidate joint angles against the per-joint
// safety bounds. All functions are pure; the policy holds no state beyond
// the bounds it was built with.
package limits

import (
	"fmt"

	"github.com/teslashibe/go-cobot/pkg/arm"
)

// Range is an inclusive angular interval in degrees.
type Range struct {
	Min, Max float64
}

// Contains reports whether deg lies inside the range, bounds included.
func (r Range) Contains(deg float64) bool {
	return r.Min <= deg && deg <= r.Max
}

// Policy holds the hard per-joint bounds and the tolerance-widened command
// windows derived from them. Built once at startup, then read-only.
type Policy struct {
	userLimits [arm.NumJoints]Range
	window     [arm.NumJoints]Range
	tolerance  float64
}

// NewPolicy derives a Policy from the per-joint bounds (joints 1..6 in
// order) and the tolerance in degrees. The command window is each limit
// widened by the tolerance on both sides; it is used only to judge whether
// a current reading is close enough to be trusted for relative moves.
func NewPolicy(userLimits [arm.NumJoints]Range, toleranceDeg float64) (*Policy, error) {
	p := &Policy{userLimits: userLimits, tolerance: toleranceDeg}
	for i, r := range userLimits {
		if r.Min > r.Max {
			return nil, fmt.Errorf("limits: joint %d inverted: min %.2f > max %.2f", i+1, r.Min, r.Max)
		}
		p.window[i] = Range{Min: r.Min - toleranceDeg, Max: r.Max + toleranceDeg}
	}
	return p, nil
}

// UserLimit returns the hard bounds for joint (1..6).
func (p *Policy) UserLimit(joint int) Range {
	return p.userLimits[joint-1]
}

// Window returns the tolerance-widened command window for joint (1..6).
func (p *Policy) Window(joint int) Range {
	return p.window[joint-1]
}

// Tolerance returns the window widening in degrees.
func (p *Policy) Tolerance() float64 {
	return p.tolerance
}

// Verdict is the outcome of validating a candidate move.
type Verdict struct {
	Accepted bool

	// Reason is a human-readable line for the operator log. Rejections and
	// leniency acceptances always carry one.
	Reason string

	// Target is the full candidate pose when accepted, meaningful only then.
	Target arm.Pose
}

// ValidateRelative decides whether applying delta to joint (1..6) from the
// base pose may execute.
//
// The final target must always satisfy the hard bounds. The current reading
// may sit slightly outside them: inside the command window it is accepted
// with a leniency notice, and beyond the window only deltas that correct
// back toward the permitted range are allowed.
func (p *Policy) ValidateRelative(base arm.Pose, joint int, delta float64) Verdict {
	cur := base.Angle(joint)
	target := base.WithAngle(joint, cur+delta)
	tgt := target.Angle(joint)

	lim := p.UserLimit(joint)
	if !lim.Contains(tgt) {
		return Verdict{
			Reason: fmt.Sprintf("target %.2f° exceeds limits J%d [%.1f, %.1f]", tgt, joint, lim.Min, lim.Max),
		}
	}

	if lim.Contains(cur) {
		return Verdict{Accepted: true, Reason: "OK", Target: target}
	}

	if p.Window(joint).Contains(cur) {
		return Verdict{
			Accepted: true,
			Reason:   fmt.Sprintf("reading J%d %.2f° accepted within ±%.0f° window", joint, cur, p.tolerance),
			Target:   target,
		}
	}

	if (cur < lim.Min && delta > 0) || (cur > lim.Max && delta < 0) {
		return Verdict{
			Accepted: true,
			Reason:   fmt.Sprintf("J%d %.2f° out of window; move corrects toward the permitted range", joint, cur),
			Target:   target,
		}
	}

	return Verdict{
		Reason: fmt.Sprintf("J%d %.2f° out of window and the delta does not correct", joint, cur),
	}
}

// ValidateAbsolute decides whether joint (1..6) may be sent to target.
// Absolute moves get no tolerance leniency: a target outside the hard
// bounds is never safe regardless of where the arm currently is.
func (p *Policy) ValidateAbsolute(joint int, target float64) bool {
	return p.UserLimit(joint).Contains(target)
}
