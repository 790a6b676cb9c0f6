package speech

import (
	"context"
	"log/slog"

	"github.com/teslashibe/go-cobot/pkg/gate"
	"github.com/teslashibe/go-cobot/pkg/intent"
)

// Loop is the producer side of the pipeline: it parses every final
// transcript with the gate's current mode and hands the tokens to the
// gate. Interim transcripts are forwarded for live display only and are
// never parsed.
type Loop struct {
	rec  Recognizer
	gate *gate.Gate

	// OnLive receives interim transcripts. Each interim replaces the
	// previous displayed line rather than accumulating.
	OnLive func(text string)

	// OnFinal receives final transcripts before they are parsed.
	OnFinal func(text string)

	// OnError receives recognizer errors.
	OnError func(err error)

	logger *slog.Logger
}

// NewLoop wires a recognizer to the gate.
func NewLoop(rec Recognizer, g *gate.Gate) *Loop {
	return &Loop{
		rec:    rec,
		gate:   g,
		logger: slog.Default().With("component", "speech.loop"),
	}
}

// Start registers the callbacks and starts the recognizer.
func (l *Loop) Start(ctx context.Context) error {
	l.rec.OnTranscript(l.handleTranscript)
	l.rec.OnError(func(err error) {
		l.logger.Warn("recognizer error", "error", err)
		if l.OnError != nil {
			l.OnError(err)
		}
	})
	return l.rec.Start(ctx)
}

// Stop stops the recognizer.
func (l *Loop) Stop() error {
	return l.rec.Stop()
}

func (l *Loop) handleTranscript(text string, isFinal bool) {
	if !isFinal {
		if l.OnLive != nil {
			l.OnLive(text)
		}
		return
	}

	if l.OnFinal != nil {
		l.OnFinal(text)
	}

	mode := l.gate.Mode()
	tokens := intent.Parse(text, mode)
	l.logger.Debug("utterance parsed", "mode", mode, "tokens", len(tokens))
	l.gate.Handle(tokens)
}
