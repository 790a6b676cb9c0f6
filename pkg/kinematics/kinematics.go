// Package kinematics maps joint angles to Cartesian tool poses and back.
//
// It sits outside the safety-critical command path: the dashboard uses it
// to display the tool position, and the line planner resolves Cartesian
// displacements into joint-space waypoints. Joint angles cross this API in
// degrees, matching everything else in the project.
package kinematics

import "github.com/teslashibe/go-cobot/pkg/arm"

// Pose is a Cartesian tool pose: position in meters, ZYX Euler orientation
// in radians.
type Pose struct {
	X, Y, Z          float64
	Roll, Pitch, Yaw float64
}

// Model solves kinematics for a specific arm geometry.
type Model interface {
	// Forward computes the tool pose for joint angles in degrees.
	Forward(q arm.Pose) Pose

	// Inverse solves joint angles in degrees reaching the target, seeded
	// from the given configuration. Joint limits are not enforced here;
	// results are validated at the policy level like every other command.
	Inverse(target Pose, seed arm.Pose) (arm.Pose, error)
}
