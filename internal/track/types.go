// Package track implements the multi-hypothesis tracker front-end:
// converting detections into Measurements in a common frame, and driving a
// HypothesisTracker that predicts, associates, updates, and merges
// Hypotheses over time.
package track

import "math"

// Vec3 is a 3D position or displacement.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Dot returns the scalar dot product v·o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Mat3 is a dense 3x3 matrix, row-major. Covariance matrices are expected
// (but not enforced by the type) to be symmetric positive-semi-definite.
type Mat3 struct {
	M [3][3]float64
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{M: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Diag3 returns a diagonal matrix, used to build the per-axis measurement
// covariance diag(σ²,σ²,σ²).
func Diag3(x, y, z float64) Mat3 {
	return Mat3{M: [3][3]float64{{x, 0, 0}, {0, y, 0}, {0, 0, z}}}
}

// Add returns m+o element-wise.
func (m Mat3) Add(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.M[i][j] = m.M[i][j] + o.M[i][j]
		}
	}
	return r
}

// Sub returns m-o element-wise.
func (m Mat3) Sub(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.M[i][j] = m.M[i][j] - o.M[i][j]
		}
	}
	return r
}

// Scale returns m scaled by s.
func (m Mat3) Scale(s float64) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.M[i][j] = m.M[i][j] * s
		}
	}
	return r
}

// Mul returns the matrix product m*o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m.M[i][k] * o.M[k][j]
			}
			r.M[i][j] = sum
		}
	}
	return r
}

// MulVec returns m*v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		Y: m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		Z: m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}

// Measurement is a detected object position in a common spatial frame.
// Covariance is symmetric positive-semi-definite.
type Measurement struct {
	Pos   Vec3
	Cov   Mat3
	Color byte
	Frame string
	Time  float64
}

// MeasurementBatch is one scan's worth of Measurements sharing a
// correlation id, so logs across the mutex-guarded predict/associate/update
// pass can be tied back to one call.
type MeasurementBatch struct {
	ID           string
	Measurements []Measurement
	Time         float64
}

// Hypothesis is a tracked object's current belief: a Gaussian over 3D
// position plus lifecycle bookkeeping. Id is assigned monotonically at
// creation and never reused.
type Hypothesis struct {
	ID         uint64
	Mean       Vec3
	Cov        Mat3
	BornAt     float64
	LastSeenAt float64
	TimesSeen  uint32
	IsActive   bool
}
