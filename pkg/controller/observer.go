package controller

import "github.com/teslashibe/go-cobot/pkg/arm"

// Callbacks groups the one-way notifications the controller publishes.
// All fields are optional. Callbacks receive snapshot copies, run on the
// controller goroutine and must return promptly; the controller never waits
// on or depends on observer completion.
type Callbacks struct {
	// OnStatus is called on every lifecycle transition.
	OnStatus func(Status)

	// OnPose is called with a copy of the pose after every read.
	OnPose func(arm.Pose)

	// OnLog is called with human-readable progress lines.
	OnLog func(msg string)

	// OnError is called with recoverable and fatal error messages.
	OnError func(msg string)
}

func (c *Callbacks) emitStatus(s Status) {
	if c.OnStatus != nil {
		c.OnStatus(s)
	}
}

func (c *Callbacks) emitPose(p arm.Pose) {
	if c.OnPose != nil {
		c.OnPose(p)
	}
}

func (c *Callbacks) emitLog(msg string) {
	if c.OnLog != nil {
		c.OnLog(msg)
	}
}

func (c *Callbacks) emitError(msg string) {
	if c.OnError != nil {
		c.OnError(msg)
	}
}
