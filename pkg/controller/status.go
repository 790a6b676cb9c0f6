package controller

// Status is the externally visible state of the controller.
type Status string

const (
	StatusConnecting        Status = "connecting"
	StatusConnected         Status = "connected"
	StatusFailed            Status = "failed"
	StatusHoming            Status = "homing"
	StatusListening         Status = "listening"
	StatusExecutingRelative Status = "executing_relative"
	StatusExecutingAbsolute Status = "executing_absolute"
	StatusStopped           Status = "stopped"
)

// Terminal reports whether the controller will make no further transitions.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusStopped
}
