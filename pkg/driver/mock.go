package driver

import (
	"sync"

	"github.com/teslashibe/go-cobot/pkg/arm"
)

// Mock implements Driver for testing.
// All methods can be customized via function fields; by default it behaves
// like an ideal arm that instantly reaches every commanded angle.
type Mock struct {
	// SendAngleFunc is called when SendAngle is invoked.
	// If nil, the mock records the target as the new joint angle.
	SendAngleFunc func(joint int, targetDeg float64, speed int) error

	// GetAnglesFunc is called when GetAngles is invoked.
	// If nil, returns the mock's current pose.
	GetAnglesFunc func() (arm.Pose, error)

	// PowerOnFunc, SetColorFunc and CloseFunc default to success.
	PowerOnFunc  func() error
	SetColorFunc func(r, g, b uint8) error
	CloseFunc    func() error

	mu    sync.Mutex
	pose  arm.Pose
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Joint  int
	Deg    float64
	Speed  int
}

// NewMock creates a mock arm resting at the given pose.
func NewMock(start arm.Pose) *Mock {
	return &Mock{pose: start}
}

// SetPose overrides the pose the mock reports, simulating drift or an
// operator physically moving the arm.
func (m *Mock) SetPose(p arm.Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = p
}

// Pose returns the mock's current pose.
func (m *Mock) Pose() arm.Pose {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pose
}

// Calls returns a copy of the recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SendAngleCalls returns only the recorded SendAngle invocations.
func (m *Mock) SendAngleCalls() []MockCall {
	var out []MockCall
	for _, c := range m.Calls() {
		if c.Method == "SendAngle" {
			out = append(out, c)
		}
	}
	return out
}

func (m *Mock) record(c MockCall) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// PowerOn implements Driver.
func (m *Mock) PowerOn() error {
	m.record(MockCall{Method: "PowerOn"})
	if m.PowerOnFunc != nil {
		return m.PowerOnFunc()
	}
	return nil
}

// SendAngle implements Driver.
func (m *Mock) SendAngle(joint int, targetDeg float64, speed int) error {
	m.record(MockCall{Method: "SendAngle", Joint: joint, Deg: targetDeg, Speed: speed})
	if m.SendAngleFunc != nil {
		return m.SendAngleFunc(joint, targetDeg, speed)
	}
	m.mu.Lock()
	m.pose[joint-1] = targetDeg
	m.mu.Unlock()
	return nil
}

// SendAngles implements Driver.
func (m *Mock) SendAngles(pose arm.Pose, speed int) error {
	m.record(MockCall{Method: "SendAngles", Speed: speed})
	m.mu.Lock()
	m.pose = pose
	m.mu.Unlock()
	return nil
}

// GetAngles implements Driver.
func (m *Mock) GetAngles() (arm.Pose, error) {
	m.record(MockCall{Method: "GetAngles"})
	if m.GetAnglesFunc != nil {
		return m.GetAnglesFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pose, nil
}

// SetColor implements Driver.
func (m *Mock) SetColor(r, g, b uint8) error {
	m.record(MockCall{Method: "SetColor"})
	if m.SetColorFunc != nil {
		return m.SetColorFunc(r, g, b)
	}
	return nil
}

// Close implements Driver.
func (m *Mock) Close() error {
	m.record(MockCall{Method: "Close"})
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Ensure Mock implements Driver
var _ Driver = (*Mock)(nil)
