package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-cobot/pkg/controller"
	"github.com/teslashibe/go-cobot/pkg/hub"
)

// MoveRequest is the request body for manual move endpoints.
type MoveRequest struct {
	Pairs []controller.Pair `json:"pairs"`
}

// handleStatus returns the controller and gate state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	pendingHome, pendingAbs := s.gate.Pending()

	s.liveMu.RLock()
	live := s.live
	s.liveMu.RUnlock()

	return c.JSON(fiber.Map{
		"status":          string(s.ctrl.Status()),
		"mode":            string(s.gate.Mode()),
		"require_confirm": s.gate.RequireConfirm(),
		"pending_home":    pendingHome,
		"pending":         pendingAbs,
		"live_transcript": live,
		"clients":         s.events.ClientCount(),
	})
}

// handlePose returns the latest joint angles and tool position.
func (s *Server) handlePose(c *fiber.Ctx) error {
	return c.JSON(s.poseData(s.ctrl.Pose()))
}

// handleGetLog returns recent operator log entries.
func (s *Server) handleGetLog(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleRelativeMove queues relative joint moves through the gate.
func (s *Server) handleRelativeMove(c *fiber.Ctx) error {
	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(req.Pairs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no pairs"})
	}
	s.gate.RequestRelative(req.Pairs)
	return c.JSON(fiber.Map{"queued": len(req.Pairs)})
}

// handleAbsoluteMove submits absolute joint targets. They are held
// behind the confirmation gate like their voice equivalents.
func (s *Server) handleAbsoluteMove(c *fiber.Ctx) error {
	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(req.Pairs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no pairs"})
	}
	s.gate.RequestAbsolute(req.Pairs)
	return c.JSON(fiber.Map{"held": len(req.Pairs)})
}

// handleHome requests a move to the rest position.
func (s *Server) handleHome(c *fiber.Ctx) error {
	s.gate.RequestHome()
	return c.JSON(fiber.Map{"ok": true})
}

// handleConfirm releases all pending moves.
func (s *Server) handleConfirm(c *fiber.Ctx) error {
	s.gate.Confirm()
	return c.JSON(fiber.Map{"ok": true})
}

// handleCancel discards all pending moves.
func (s *Server) handleCancel(c *fiber.Ctx) error {
	s.gate.Cancel()
	return c.JSON(fiber.Map{"ok": true})
}

// handleStop shuts the controller down. Queued batches are discarded
// and the serial port is closed.
func (s *Server) handleStop(c *fiber.Ctx) error {
	go s.ctrl.Stop()
	return c.JSON(fiber.Map{"ok": true})
}

// handleEventsWS handles WebSocket connections for the event stream.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.events, c)
	client.Run() // Blocks until the connection closes
}
