package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMahalanobis_ZeroDistanceForCoincidentMeans(t *testing.T) {
	t.Parallel()
	h := Hypothesis{Mean: Vec3{X: 1, Y: 2, Z: 3}, Cov: Diag3(1, 1, 1)}
	m := Measurement{Pos: Vec3{X: 1, Y: 2, Z: 3}, Cov: Diag3(1, 1, 1)}

	d, err := mahalanobis(h, m)
	assert.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestMahalanobis_ScalesWithCovariance(t *testing.T) {
	t.Parallel()
	h := Hypothesis{Mean: Vec3{}, Cov: Diag3(1, 1, 1)}
	m := Measurement{Pos: Vec3{X: 2}, Cov: Diag3(1, 1, 1)}

	dTight, err := mahalanobis(h, m)
	assert.NoError(t, err)

	hWide := Hypothesis{Mean: Vec3{}, Cov: Diag3(10, 10, 10)}
	dWide, err := mahalanobis(hWide, m)
	assert.NoError(t, err)

	assert.Greater(t, dTight, dWide, "a tighter covariance should report a larger Mahalanobis distance for the same offset")
}

func TestMahalanobis_SingularCovarianceReturnsInfAndErr(t *testing.T) {
	t.Parallel()
	h := Hypothesis{Mean: Vec3{}, Cov: Mat3{}}
	m := Measurement{Pos: Vec3{X: 1}, Cov: Mat3{}}

	d, err := mahalanobis(h, m)
	assert.ErrorIs(t, err, ErrSingular)
	assert.True(t, math.IsInf(d, 1))
}
