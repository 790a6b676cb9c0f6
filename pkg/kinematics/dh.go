package kinematics

import (
	"errors"
	"math"

	"github.com/teslashibe/go-cobot/pkg/arm"
)

// ErrNoConvergence is returned when the iterative solver does not reach
// the target within its iteration limit.
var ErrNoConvergence = errors.New("kinematics: inverse solution did not converge")

// Link holds the Denavit-Hartenberg parameters of one revolute link:
// offset d along the previous z, length a along x, twist alpha, and a
// fixed joint offset added to the commanded angle.
type Link struct {
	D, A, Alpha, Offset float64
}

// DH is a serial 6R arm described by standard DH parameters.
type DH struct {
	links [arm.NumJoints]Link
}

// NewDH builds a model from six links.
func NewDH(links [arm.NumJoints]Link) *DH {
	return &DH{links: links}
}

// MyCobot280 returns the DH model of the myCobot 280.
func MyCobot280() *DH {
	const mm = 1e-3
	return NewDH([arm.NumJoints]Link{
		{D: 131.22 * mm, A: 0, Alpha: math.Pi / 2, Offset: 0},
		{D: 0, A: -110.4 * mm, Alpha: 0, Offset: -math.Pi / 2},
		{D: 0, A: -96.0 * mm, Alpha: 0, Offset: 0},
		{D: 63.40 * mm, A: 0, Alpha: math.Pi / 2, Offset: -math.Pi / 2},
		{D: 75.05 * mm, A: 0, Alpha: -math.Pi / 2, Offset: math.Pi / 2},
		{D: 45.60 * mm, A: 0, Alpha: 0, Offset: 0},
	})
}

// mat4 is a homogeneous transform, row-major.
type mat4 [4][4]float64

func identity() mat4 {
	return mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
}

func (m mat4) mul(o mat4) mat4 {
	var r mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// linkTransform is RotZ(theta)·TransZ(d)·TransX(a)·RotX(alpha).
func linkTransform(l Link, thetaRad float64) mat4 {
	ct, st := math.Cos(thetaRad+l.Offset), math.Sin(thetaRad+l.Offset)
	ca, sa := math.Cos(l.Alpha), math.Sin(l.Alpha)
	return mat4{
		{ct, -st * ca, st * sa, l.A * ct},
		{st, ct * ca, -ct * sa, l.A * st},
		{0, sa, ca, l.D},
		{0, 0, 0, 1},
	}
}

// transform computes the full base-to-tool transform for angles in degrees.
func (m *DH) transform(q arm.Pose) mat4 {
	t := identity()
	for i, l := range m.links {
		t = t.mul(linkTransform(l, q[i]*math.Pi/180))
	}
	return t
}

// Forward implements Model.
func (m *DH) Forward(q arm.Pose) Pose {
	t := m.transform(q)

	// ZYX Euler extraction; the gimbal-lock branch pins roll to zero.
	pitch := math.Asin(clampUnit(-t[2][0]))
	var roll, yaw float64
	if math.Abs(t[2][0]) < 1-1e-9 {
		roll = math.Atan2(t[2][1], t[2][2])
		yaw = math.Atan2(t[1][0], t[0][0])
	} else {
		yaw = math.Atan2(-t[0][1], t[1][1])
	}

	return Pose{
		X: t[0][3], Y: t[1][3], Z: t[2][3],
		Roll: roll, Pitch: pitch, Yaw: yaw,
	}
}

// Solver tuning. Damped least squares with a numerically differentiated
// Jacobian; plenty for dashboard-rate queries.
const (
	ikMaxIter   = 200
	ikTolerance = 1e-4 // meters / radians of residual twist
	ikDamping   = 0.05
	ikStepDeg   = 0.01 // finite-difference step
)

// Inverse implements Model.
func (m *DH) Inverse(target Pose, seed arm.Pose) (arm.Pose, error) {
	q := seed
	for iter := 0; iter < ikMaxIter; iter++ {
		e := m.errorTwist(q, target)
		if normSq(e) < ikTolerance*ikTolerance {
			return q, nil
		}

		// J[i][j] = ∂twist_i/∂q_j, finite differences in degrees.
		var jac [6][arm.NumJoints]float64
		for j := 0; j < arm.NumJoints; j++ {
			qj := q
			qj[j] += ikStepDeg
			ej := m.errorTwist(qj, target)
			for i := 0; i < 6; i++ {
				jac[i][j] = (e[i] - ej[i]) / ikStepDeg
			}
		}

		// Solve (JᵀJ + λ²I) δ = Jᵀe.
		var a [6][6]float64
		var b [6]float64
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				for k := 0; k < 6; k++ {
					a[i][j] += jac[k][i] * jac[k][j]
				}
			}
			a[i][i] += ikDamping * ikDamping
			for k := 0; k < 6; k++ {
				b[i] += jac[k][i] * e[k]
			}
		}
		delta, ok := solve6(a, b)
		if !ok {
			return q, ErrNoConvergence
		}
		for j := 0; j < arm.NumJoints; j++ {
			q[j] += delta[j]
		}
	}
	return q, ErrNoConvergence
}

// PlanLine interpolates a straight Cartesian displacement (dx, dy, dz in
// meters) from the start configuration and solves each waypoint with a
// warm-started inverse solution. Orientation is held at the start pose.
func (m *DH) PlanLine(start arm.Pose, dx, dy, dz float64, steps int) ([]arm.Pose, error) {
	if steps < 1 {
		steps = 1
	}
	p0 := m.Forward(start)

	out := make([]arm.Pose, 0, steps)
	seed := start
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		target := p0
		target.X += dx * f
		target.Y += dy * f
		target.Z += dz * f

		q, err := m.Inverse(target, seed)
		if err != nil {
			return out, err
		}
		seed = q
		out = append(out, q)
	}
	return out, nil
}

// errorTwist is the 6-vector [position error; orientation error] between
// the pose at q and the target.
func (m *DH) errorTwist(q arm.Pose, target Pose) [6]float64 {
	p := m.Forward(q)
	return [6]float64{
		p.X - target.X,
		p.Y - target.Y,
		p.Z - target.Z,
		angleDiff(p.Roll, target.Roll),
		angleDiff(p.Pitch, target.Pitch),
		angleDiff(p.Yaw, target.Yaw),
	}
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

func normSq(v [6]float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// solve6 solves a 6x6 linear system by Gaussian elimination with partial
// pivoting. Returns false for a singular system.
func solve6(a [6][6]float64, b [6]float64) ([6]float64, bool) {
	for col := 0; col < 6; col++ {
		pivot := col
		for r := col + 1; r < 6; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return b, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < 6; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < 6; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	var x [6]float64
	for i := 5; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < 6; j++ {
			s -= a[i][j] * x[j]
		}
		x[i] = s / a[i][i]
	}
	return x, true
}

// Ensure DH implements Model
var _ Model = (*DH)(nil)
