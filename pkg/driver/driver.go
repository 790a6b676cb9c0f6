// Package driver talks to the physical arm.
//
// The controller consumes the small Driver interface; the serial myCobot
// implementation and the test mock both satisfy it. A Driver call may block
// until the hardware answers; timeouts live at the transport level.
package driver

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-cobot/pkg/arm"
)

// Sentinel errors for common conditions.
var (
	// ErrNoReading is returned when the arm did not produce a usable
	// angle reading.
	ErrNoReading = errors.New("driver: no angle reading available")

	// ErrClosed is returned when using a driver after Close.
	ErrClosed = errors.New("driver: connection closed")
)

// CommandError wraps a failed per-joint command with its context.
type CommandError struct {
	Joint int
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("driver: %s J%d: %v", e.Op, e.Joint, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Driver is the capability set the controller needs from the arm.
type Driver interface {
	// PowerOn enables servo torque.
	PowerOn() error

	// SendAngle moves a single joint (1..6) to target degrees at the
	// given speed (0..100). Returns once the command is on the wire; the
	// physical move completes asynchronously.
	SendAngle(joint int, targetDeg float64, speed int) error

	// SendAngles moves all six joints to the given pose at once.
	SendAngles(pose arm.Pose, speed int) error

	// GetAngles reads the current joint angles in degrees.
	// Returns ErrNoReading when the arm does not answer usably.
	GetAngles() (arm.Pose, error)

	// SetColor sets the base LED, used as a visual diagnostic.
	SetColor(r, g, b uint8) error

	// Close releases the connection.
	Close() error
}
