package driver

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/teslashibe/go-cobot/pkg/arm"
)

const (
	// readTimeout bounds a single serial read. A full GetAngles exchange
	// may span several reads.
	readTimeout = 200 * time.Millisecond

	// replyDeadline bounds the wait for a complete GetAngles reply.
	replyDeadline = 2 * time.Second
)

// MyCobot drives a myCobot 280 over its USB serial link.
// Calls are serialized: the arm answers on the same half-duplex channel the
// commands go out on.
type MyCobot struct {
	mu     sync.Mutex
	port   serial.Port
	buf    []byte
	closed bool
	logger *slog.Logger
}

// OpenMyCobot opens the serial port and returns a connected driver.
func OpenMyCobot(portName string, baud int) (*MyCobot, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("driver: open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("driver: set read timeout: %w", err)
	}
	return &MyCobot{
		port:   port,
		logger: slog.Default().With("component", "driver.mycobot"),
	}, nil
}

// Close implements Driver.
func (c *MyCobot) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.port.Close()
}

// PowerOn implements Driver.
func (c *MyCobot) PowerOn() error {
	return c.write(cmdPowerOn, nil)
}

// SendAngle implements Driver.
func (c *MyCobot) SendAngle(joint int, targetDeg float64, speed int) error {
	if !arm.ValidJoint(joint) {
		return &CommandError{Joint: joint, Op: "send angle", Err: fmt.Errorf("joint out of range")}
	}
	hi, lo := encodeAngle(targetDeg)
	if err := c.write(cmdSendAngle, []byte{byte(joint - 1), hi, lo, byte(speed)}); err != nil {
		return &CommandError{Joint: joint, Op: "send angle", Err: err}
	}
	return nil
}

// SendAngles implements Driver.
func (c *MyCobot) SendAngles(pose arm.Pose, speed int) error {
	data := make([]byte, 0, 2*arm.NumJoints+1)
	for _, deg := range pose {
		hi, lo := encodeAngle(deg)
		data = append(data, hi, lo)
	}
	data = append(data, byte(speed))
	return c.write(cmdSendAngles, data)
}

// SetColor implements Driver.
func (c *MyCobot) SetColor(r, g, b uint8) error {
	return c.write(cmdSetColor, []byte{r, g, b})
}

// GetAngles implements Driver.
func (c *MyCobot) GetAngles() (arm.Pose, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return arm.Pose{}, ErrClosed
	}
	if _, err := c.port.Write(encodeFrame(cmdGetAngles, nil)); err != nil {
		return arm.Pose{}, fmt.Errorf("driver: request angles: %w", err)
	}

	deadline := time.Now().Add(replyDeadline)
	chunk := make([]byte, 64)
	for time.Now().Before(deadline) {
		n, err := c.port.Read(chunk)
		if err != nil {
			return arm.Pose{}, fmt.Errorf("driver: read angles: %w", err)
		}
		if n == 0 {
			continue // read timeout tick
		}
		c.buf = append(c.buf, chunk[:n]...)

		for {
			cmd, payload, consumed, err := decodeFrame(c.buf)
			if consumed == 0 && err == nil {
				break // need more bytes
			}
			c.buf = c.buf[consumed:]
			if err != nil {
				c.logger.Debug("resync after malformed frame")
				continue
			}
			if cmd != cmdGetAngles {
				continue // stale reply from an earlier command
			}
			pose, err := decodeAngles(payload)
			if err != nil {
				return arm.Pose{}, ErrNoReading
			}
			return pose, nil
		}
	}
	return arm.Pose{}, ErrNoReading
}

// write sends one command frame under the lock.
func (c *MyCobot) write(cmd byte, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, err := c.port.Write(encodeFrame(cmd, data)); err != nil {
		return fmt.Errorf("driver: write 0x%02X: %w", cmd, err)
	}
	return nil
}

// Ensure MyCobot implements Driver
var _ Driver = (*MyCobot)(nil)
