// Package web provides a real-time operator dashboard for the arm.
package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-cobot/pkg/arm"
	"github.com/teslashibe/go-cobot/pkg/controller"
	"github.com/teslashibe/go-cobot/pkg/gate"
	"github.com/teslashibe/go-cobot/pkg/hub"
	"github.com/teslashibe/go-cobot/pkg/kinematics"
	"github.com/teslashibe/go-cobot/pkg/protocol"
)

// maxLogEntries bounds the in-memory operator log.
const maxLogEntries = 500

// LogEntry represents a log line for the dashboard.
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"` // info, error
	Message string `json:"message"`
}

// Server is the operator dashboard server. All motion requests it
// accepts go through the confirmation gate; it never touches the
// driver directly.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	gate  *gate.Gate
	ctrl  *controller.Controller
	model kinematics.Model

	// Log buffer (last maxLogEntries entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Live transcript line; replaced on every interim result
	live   string
	liveMu sync.RWMutex

	// Hub for websocket broadcast
	events *hub.Hub
}

// NewServer creates a new dashboard server.
func NewServer(port string, g *gate.Gate, ctrl *controller.Controller, model kinematics.Model) *Server {
	s := &Server{
		port:   port,
		logger: slog.Default().With("component", "web"),
		gate:   g,
		ctrl:   ctrl,
		model:  model,
		logs:   make([]LogEntry, 0, maxLogEntries),
	}
	s.events = hub.New(s.logger.With("hub", "events"))

	app := fiber.New(fiber.Config{
		AppName:               "Cobot Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/pose", s.handlePose)
	api.Get("/log", s.handleGetLog)
	api.Post("/moves/relative", s.handleRelativeMove)
	api.Post("/moves/absolute", s.handleAbsoluteMove)
	api.Post("/home", s.handleHome)
	api.Post("/confirm", s.handleConfirm)
	api.Post("/cancel", s.handleCancel)
	api.Post("/stop", s.handleStop)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start starts the web server. It blocks until the server exits.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	go s.events.Run()
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// PublishStatus broadcasts a controller status change.
func (s *Server) PublishStatus(st controller.Status) {
	s.broadcast(protocol.TypeStatus, protocol.StatusData{Status: string(st)})
}

// PublishPose broadcasts the latest joint angles together with the
// Cartesian tool position derived from them.
func (s *Server) PublishPose(p arm.Pose) {
	s.broadcast(protocol.TypePose, s.poseData(p))
}

// PublishLog appends a line to the operator log and broadcasts it.
func (s *Server) PublishLog(msg string) {
	s.appendLog("info", msg)
	s.broadcast(protocol.TypeLog, protocol.LogData{Message: msg})
}

// PublishError appends an error line to the operator log and broadcasts it.
func (s *Server) PublishError(msg string) {
	s.appendLog("error", msg)
	s.broadcast(protocol.TypeError, protocol.LogData{Message: msg})
}

// PublishTranscript broadcasts a speech transcript. Interim results
// replace the current live line; final results also land in the log.
func (s *Server) PublishTranscript(text string, final bool) {
	s.liveMu.Lock()
	if final {
		s.live = ""
	} else {
		s.live = text
	}
	s.liveMu.Unlock()

	if final {
		s.appendLog("info", "heard: "+text)
	}
	s.broadcast(protocol.TypeTranscript, protocol.TranscriptData{Text: text, Final: final})
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) poseData(p arm.Pose) protocol.PoseData {
	data := protocol.PoseData{Angles: p}
	if s.model != nil {
		tool := s.model.Forward(p)
		data.X, data.Y, data.Z = tool.X, tool.Y, tool.Z
	}
	return data
}

func (s *Server) appendLog(level, msg string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Level:   level,
		Message: msg,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogEntries {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()
}

func (s *Server) broadcast(msgType protocol.MessageType, data interface{}) {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		s.logger.Error("failed to encode event", "type", msgType, "error", err)
		return
	}
	frame, err := msg.Bytes()
	if err != nil {
		s.logger.Error("failed to encode event", "type", msgType, "error", err)
		return
	}
	s.events.Broadcast(frame)
}
