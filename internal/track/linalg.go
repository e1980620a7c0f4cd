package track

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a covariance sum is not positive-definite
// enough for a Cholesky factorization to succeed. Callers treat the
// affected edge as non-matching rather than propagate this, mapping it to
// "infinite distance" or "skip this pair" at the call site.
var ErrSingular = errors.New("track: covariance not positive-definite")

// sym converts m to a gonum SymDense, reading only the upper triangle (as
// gonum's SymDense always does), consistent with m being a symmetric
// covariance matrix.
func (m Mat3) sym() *mat.SymDense {
	data := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			data[i*3+j] = m.M[i][j]
		}
	}
	return mat.NewSymDense(3, data)
}

func (m Mat3) dense() *mat.Dense {
	data := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			data[i*3+j] = m.M[i][j]
		}
	}
	return mat.NewDense(3, 3, data)
}

func matToMat3(d mat.Matrix) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.M[i][j] = d.At(i, j)
		}
	}
	return r
}

func (v Vec3) col() *mat.Dense {
	return mat.NewDense(3, 1, []float64{v.X, v.Y, v.Z})
}

func colToVec3(d mat.Matrix) Vec3 {
	return Vec3{X: d.At(0, 0), Y: d.At(1, 0), Z: d.At(2, 0)}
}

// solveSym solves S*X = rhs for X via Cholesky factorization of S
// (mat.Cholesky.Factorize reports success/failure instead of silently
// dividing by a near-zero pivot). Returns ErrSingular instead of panicking
// or returning garbage when S isn't positive-definite.
func solveSym(s Mat3, rhs mat.Matrix) (*mat.Dense, error) {
	var chol mat.Cholesky
	ok := chol.Factorize(s.sym())
	if !ok {
		return nil, ErrSingular
	}
	var x mat.Dense
	if err := chol.SolveTo(&x, rhs); err != nil {
		return nil, ErrSingular
	}
	return &x, nil
}
