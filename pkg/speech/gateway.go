package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// reconnectDelay is slept after a dropped stream before dialing again.
const reconnectDelay = time.Second

// transcriptEvent is what the gateway sends per recognition result.
type transcriptEvent struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
}

// sessionRequest configures the recognition stream on connect.
type sessionRequest struct {
	Language   string `json:"language"`
	SampleRate int    `json:"sample_rate"`
	Interim    bool   `json:"interim_results"`
}

// Gateway implements Recognizer against a websocket STT gateway.
// The gateway owns microphone capture and the cloud recognition session;
// this client subscribes to its transcript stream and reconnects with a
// short backoff whenever the stream drops.
type Gateway struct {
	config Config

	mu      sync.Mutex
	ws      *websocket.Conn
	running bool
	cancel  context.CancelFunc

	onTranscript func(text string, isFinal bool)
	onError      func(err error)

	logger *slog.Logger
}

// NewGateway creates a gateway recognizer.
func NewGateway(cfg Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Gateway{
		config: cfg,
		logger: slog.Default().With("component", "speech.gateway"),
	}, nil
}

// OnTranscript implements Recognizer.
func (g *Gateway) OnTranscript(fn func(text string, isFinal bool)) {
	g.mu.Lock()
	g.onTranscript = fn
	g.mu.Unlock()
}

// OnError implements Recognizer.
func (g *Gateway) OnError(fn func(err error)) {
	g.mu.Lock()
	g.onError = fn
	g.mu.Unlock()
}

// Start implements Recognizer. The read loop runs until Stop or ctx end.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return ErrAlreadyStarted
	}
	g.running = true
	ctx, g.cancel = context.WithCancel(ctx)
	g.mu.Unlock()

	go g.run(ctx)
	return nil
}

// Stop implements Recognizer.
func (g *Gateway) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return ErrNotStarted
	}
	g.running = false
	g.cancel()
	if g.ws != nil {
		g.ws.Close()
		g.ws = nil
	}
	return nil
}

// run dials, streams, and redials until cancelled.
func (g *Gateway) run(ctx context.Context) {
	for ctx.Err() == nil {
		if err := g.stream(ctx); err != nil && ctx.Err() == nil {
			g.emitError(err)
			select {
			case <-time.After(reconnectDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// stream handles one websocket session: configure, then read transcript
// events until the connection drops.
func (g *Gateway) stream(ctx context.Context) error {
	header := http.Header{}
	if g.config.APIKey != "" {
		header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.DialContext(ctx, g.config.GatewayURL, header)
	if err != nil {
		return fmt.Errorf("speech: connect gateway: %w", err)
	}

	g.mu.Lock()
	g.ws = ws
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		if g.ws == ws {
			g.ws = nil
		}
		g.mu.Unlock()
		ws.Close()
	}()

	req := sessionRequest{
		Language:   g.config.Language,
		SampleRate: g.config.SampleRate,
		Interim:    true,
	}
	if err := ws.WriteJSON(req); err != nil {
		return fmt.Errorf("speech: configure session: %w", err)
	}

	g.logger.Info("transcript stream open", "url", g.config.GatewayURL, "language", g.config.Language)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("speech: stream closed: %w", err)
		}

		var ev transcriptEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			g.logger.Warn("unparseable transcript event", "error", err)
			continue
		}
		if ev.Text == "" {
			continue
		}
		g.emitTranscript(ev.Text, ev.IsFinal)
	}
}

func (g *Gateway) emitTranscript(text string, isFinal bool) {
	g.mu.Lock()
	fn := g.onTranscript
	g.mu.Unlock()
	if fn != nil {
		fn(text, isFinal)
	}
}

func (g *Gateway) emitError(err error) {
	g.mu.Lock()
	fn := g.onError
	g.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Ensure Gateway implements Recognizer
var _ Recognizer = (*Gateway)(nil)
