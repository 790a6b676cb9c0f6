// Package arm defines the shared types for a 6-joint arm.
//
// Joints are indexed 1..6 throughout the project, matching the numbering
// spoken by operators and printed on the hardware.
package arm

// NumJoints is the number of rotational joints on the arm.
const NumJoints = 6

// Pose is an ordered set of joint angles in degrees, joints 1..6.
// Poses are passed by value; holders of a Pose own their copy.
type Pose [NumJoints]float64

// Angle returns the angle of the given joint (1..6).
func (p Pose) Angle(joint int) float64 {
	return p[joint-1]
}

// WithAngle returns a copy of p with the given joint (1..6) set to deg.
func (p Pose) WithAngle(joint int, deg float64) Pose {
	p[joint-1] = deg
	return p
}

// ValidJoint reports whether joint is a usable index (1..6).
func ValidJoint(joint int) bool {
	return joint >= 1 && joint <= NumJoints
}
