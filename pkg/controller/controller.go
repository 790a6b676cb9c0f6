// Package controller owns the hardware connection and the authoritative arm
// pose. A single worker goroutine drains the command queue, validates each
// motion against the limit policy and executes it with best-effort state
// tracking; everyone else sees only snapshot copies.
package controller

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/teslashibe/go-cobot/pkg/arm"
	"github.com/teslashibe/go-cobot/pkg/driver"
	"github.com/teslashibe/go-cobot/pkg/limits"
)

// DialFunc opens the hardware connection. It runs on the worker goroutine
// so a slow or failing connect never blocks the caller of Start.
type DialFunc func() (driver.Driver, error)

// Options are the fixed deployment parameters of a Controller.
type Options struct {
	Policy *limits.Policy

	// Home is the pose driven to at startup, and the pose a spoken "home"
	// command returns to.
	Home arm.Pose

	HomeSpeed   int // 0..100
	ManualSpeed int // 0..100, per-joint voice moves

	ConnectWait time.Duration // pause after opening the connection
	HomeWait    time.Duration // pause after the homing move
	Settle      time.Duration // pause after each per-joint move

	ReadRetries int           // angle read attempts before degrading
	ReadDelay   time.Duration // pause between read attempts

	// QueuePoll bounds how long the worker blocks waiting for a batch, so
	// stop requests are observed promptly. Defaults to 100ms.
	QueuePoll time.Duration

	// LEDSweep enables the startup LED diagnostic.
	LEDSweep bool
}

// Controller is the consumer side of the command pipeline.
type Controller struct {
	dial DialFunc
	opts Options
	cb   Callbacks

	queue  *Queue
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	stopping bool
	lastPose arm.Pose
	status   Status

	stop chan struct{}
	done chan struct{}
}

// New creates a controller. The callbacks may be zero-valued; the queue is
// created empty and owned by the controller.
func New(dial DialFunc, opts Options, cb Callbacks) *Controller {
	if opts.QueuePoll <= 0 {
		opts.QueuePoll = 100 * time.Millisecond
	}
	return &Controller{
		dial:     dial,
		opts:     opts,
		cb:       cb,
		queue:    NewQueue(),
		logger:   slog.Default().With("component", "controller"),
		lastPose: opts.Home,
		status:   StatusConnecting,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	go c.loop()
}

// Stop requests cooperative shutdown: the worker finishes the move in
// flight, the queue is drained without executing, and the worker exits.
// Blocks until the worker is gone.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running || c.stopping {
		c.mu.Unlock()
		return
	}
	c.stopping = true
	c.mu.Unlock()

	close(c.stop)
	if dropped := c.queue.Drain(); len(dropped) > 0 {
		c.logger.Info("discarded queued batches on stop", "count", len(dropped))
	}
	<-c.done
}

// EnqueueRelative queues signed per-joint deltas as one batch.
func (c *Controller) EnqueueRelative(pairs []Pair) {
	if len(pairs) == 0 {
		return
	}
	c.queue.Enqueue(NewBatch(BatchRelative, pairs))
}

// EnqueueAbsolute queues per-joint targets as one batch.
func (c *Controller) EnqueueAbsolute(pairs []Pair) {
	if len(pairs) == 0 {
		return
	}
	c.queue.Enqueue(NewBatch(BatchAbsolute, pairs))
}

// Pose returns a snapshot of the last known pose.
func (c *Controller) Pose() arm.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPose
}

// Status returns the last published status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
	c.cb.emitStatus(s)
}

func (c *Controller) setPose(p arm.Pose) {
	c.mu.Lock()
	c.lastPose = p
	c.mu.Unlock()
	c.cb.emitPose(p)
}

// loop is the worker: connect, init, home, then drain the queue until
// stopped. Only the initial connection failure is fatal.
func (c *Controller) loop() {
	defer close(c.done)

	c.setStatus(StatusConnecting)
	d, err := c.dial()
	if err != nil {
		c.logger.Error("connection failed", "error", err)
		c.cb.emitError(fmt.Sprintf("FAILED: %v", err))
		c.setStatus(StatusFailed)
		return
	}
	defer d.Close()

	time.Sleep(c.opts.ConnectWait)
	if err := d.PowerOn(); err != nil {
		c.logger.Error("power on failed", "error", err)
		c.cb.emitError(fmt.Sprintf("FAILED: %v", err))
		c.setStatus(StatusFailed)
		return
	}
	c.setStatus(StatusConnected)
	c.cb.emitLog("Status: CONNECTED")

	c.publishAngles(d, "current angles")

	if c.opts.LEDSweep {
		c.ledSweep(d)
	}

	c.home(d)

	c.cb.emitLog("listening for voice instructions")
	c.setStatus(StatusListening)

	for !c.stopped() {
		batch, ok := c.queue.Dequeue(c.opts.QueuePoll)
		if !ok {
			continue
		}
		switch batch.Kind {
		case BatchRelative:
			c.setStatus(StatusExecutingRelative)
			c.applyRelative(d, batch)
		case BatchAbsolute:
			c.setStatus(StatusExecutingAbsolute)
			c.applyAbsolute(d, batch)
		}
		c.setStatus(StatusListening)
	}

	c.setStatus(StatusStopped)
}

// readAngles reads with retries; falls back is up to the caller.
func (c *Controller) readAngles(d driver.Driver) (arm.Pose, bool) {
	tries := c.opts.ReadRetries
	if tries < 1 {
		tries = 1
	}
	for i := 0; i < tries; i++ {
		pose, err := d.GetAngles()
		if err == nil {
			return pose, true
		}
		time.Sleep(c.opts.ReadDelay)
	}
	return arm.Pose{}, false
}

// publishAngles reads and publishes the pose, logging the result.
func (c *Controller) publishAngles(d driver.Driver, prefix string) {
	pose, ok := c.readAngles(d)
	if !ok {
		c.cb.emitLog("could not read the angles right now")
		return
	}
	c.setPose(pose)
	c.cb.emitLog(fmt.Sprintf("%s (deg): %s", prefix, formatPose(pose)))
}

// ledSweep runs the red/green/blue diagnostic. Failures are logged and
// never fatal.
func (c *Controller) ledSweep(d driver.Driver) {
	colors := [][3]uint8{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}
	for cycle := 0; cycle < 3; cycle++ {
		for _, rgb := range colors {
			if err := d.SetColor(rgb[0], rgb[1], rgb[2]); err != nil {
				c.cb.emitError(fmt.Sprintf("LED error: %v", err))
				return
			}
			time.Sleep(time.Second)
		}
	}
	c.cb.emitLog("LED sequence: DONE")
}

// home drives the arm to the home pose, but only when every home angle
// satisfies the hard limits. The operator is responsible for home-pose
// integrity; a bad home is a warning, not a failure.
func (c *Controller) home(d driver.Driver) {
	for j := 1; j <= arm.NumJoints; j++ {
		if !c.opts.Policy.UserLimit(j).Contains(c.opts.Home.Angle(j)) {
			c.logger.Warn("home pose outside limits, skipping homing", "joint", j)
			c.cb.emitLog("[WARN] home pose outside the user limits")
			return
		}
	}

	c.setStatus(StatusHoming)
	c.cb.emitLog(fmt.Sprintf("moving to home: %s", formatPose(c.opts.Home)))
	if err := d.SendAngles(c.opts.Home, c.opts.HomeSpeed); err != nil {
		c.cb.emitError(fmt.Sprintf("home error: %v", err))
		return
	}
	time.Sleep(c.opts.HomeWait)
	c.publishAngles(d, "angles after home")
	c.cb.emitLog("HOME: DONE")
}

// applyRelative executes one batch of per-joint deltas. Offsets within one
// batch compose against measured state: after each accepted pair the pose
// is re-read and becomes the base for the next pair.
func (c *Controller) applyRelative(d driver.Driver, batch MotionBatch) {
	base, ok := c.readAngles(d)
	if !ok {
		base = c.Pose()
		c.cb.emitLog("read failed; using last known pose")
	}

	c.warnOutsideWindow(base)

	for _, pair := range batch.Pairs {
		if c.stopped() {
			return
		}
		if !arm.ValidJoint(pair.Joint) {
			c.cb.emitLog(fmt.Sprintf("invalid joint: %d (must be 1..6)", pair.Joint))
			continue
		}

		v := c.opts.Policy.ValidateRelative(base, pair.Joint, pair.Degrees)
		if !v.Accepted {
			c.cb.emitLog("move blocked: " + v.Reason)
			continue
		}
		if v.Reason != "OK" {
			c.cb.emitLog(v.Reason)
		}

		tgt := v.Target.Angle(pair.Joint)
		if err := d.SendAngle(pair.Joint, tgt, c.opts.ManualSpeed); err != nil {
			c.cb.emitError(fmt.Sprintf("error moving J%d: %v", pair.Joint, err))
			continue
		}
		c.cb.emitLog(fmt.Sprintf("→ J%d: %.2f° %+.2f° ⇒ %.2f° (vel=%d)",
			pair.Joint, base.Angle(pair.Joint), pair.Degrees, tgt, c.opts.ManualSpeed))

		time.Sleep(c.opts.Settle)
		read, ok := c.readAngles(d)
		if !ok {
			read = v.Target
		}
		base = read
		c.setPose(read)
	}
}

// applyAbsolute executes one batch of per-joint targets. Validation is the
// hard bound check only; absolute targets get no tolerance leniency.
func (c *Controller) applyAbsolute(d driver.Driver, batch MotionBatch) {
	base, ok := c.readAngles(d)
	if !ok {
		base = c.Pose()
	}

	for _, pair := range batch.Pairs {
		if c.stopped() {
			return
		}
		if !arm.ValidJoint(pair.Joint) {
			c.cb.emitLog(fmt.Sprintf("invalid joint: %d (must be 1..6)", pair.Joint))
			continue
		}

		if !c.opts.Policy.ValidateAbsolute(pair.Joint, pair.Degrees) {
			lim := c.opts.Policy.UserLimit(pair.Joint)
			c.cb.emitLog(fmt.Sprintf("blocked ABS J%d: target %.2f° outside [%.1f, %.1f]",
				pair.Joint, pair.Degrees, lim.Min, lim.Max))
			continue
		}

		if err := d.SendAngle(pair.Joint, pair.Degrees, c.opts.ManualSpeed); err != nil {
			c.cb.emitError(fmt.Sprintf("error ABS J%d: %v", pair.Joint, err))
			continue
		}
		c.cb.emitLog(fmt.Sprintf("ABS → J%d: %.2f° ⇒ %.2f° (vel=%d)",
			pair.Joint, base.Angle(pair.Joint), pair.Degrees, c.opts.ManualSpeed))

		time.Sleep(c.opts.Settle)
		read, ok := c.readAngles(d)
		if !ok {
			read = base
		}
		base = read
		c.setPose(read)
	}
}

// warnOutsideWindow logs joints whose current reading sits outside the
// command window. Informative only; it never blocks the batch.
func (c *Controller) warnOutsideWindow(pose arm.Pose) {
	var bad []string
	for j := 1; j <= arm.NumJoints; j++ {
		w := c.opts.Policy.Window(j)
		if !w.Contains(pose.Angle(j)) {
			bad = append(bad, fmt.Sprintf("J%d=%.2f°∉[%.1f, %.1f]", j, pose.Angle(j), w.Min, w.Max))
		}
	}
	if len(bad) > 0 {
		c.cb.emitLog("[notice] outside command window: " + strings.Join(bad, "; "))
	}
}

func formatPose(p arm.Pose) string {
	parts := make([]string, arm.NumJoints)
	for i, a := range p {
		parts[i] = fmt.Sprintf("%.2f", a)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
