// Package speech consumes the streaming speech-to-text collaborator and
// drives the parse loop on its final transcripts. Audio capture and the
// transcription itself live outside this process; all this package sees is
// a stream of (text, isFinal) events.
package speech

import (
	"context"
	"errors"
)

// Common errors returned by recognizers.
var (
	ErrAlreadyStarted = errors.New("speech: recognizer already started")
	ErrNotStarted     = errors.New("speech: recognizer not started")
	ErrMissingURL     = errors.New("speech: gateway URL required")
)

// Recognizer is the interface to a streaming transcript source.
// Interim results arrive with isFinal=false and are display-only; a final
// transcript closes the utterance.
type Recognizer interface {
	// Start begins delivering transcript events.
	// Call after the callbacks are registered.
	Start(ctx context.Context) error

	// Stop shuts the recognizer down.
	Stop() error

	// OnTranscript sets the transcript callback.
	OnTranscript(fn func(text string, isFinal bool))

	// OnError sets the error callback. Errors are informational; the
	// recognizer keeps trying until stopped.
	OnError(fn func(err error))
}

// Config holds the gateway connection parameters.
type Config struct {
	// GatewayURL is the websocket endpoint of the STT gateway.
	GatewayURL string

	// APIKey authenticates against the gateway.
	APIKey string

	// Language is the recognition language hint, e.g. "es-ES".
	Language string

	// SampleRate is the capture sample rate the gateway should assume.
	SampleRate int
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.GatewayURL == "" {
		return ErrMissingURL
	}
	return nil
}
