package track

import "math"

// mahalanobis computes d(h, m) = sqrt((m.pos - h.mean)ᵀ (h.cov + m.cov)⁻¹
// (m.pos - h.mean)). A numerical failure inverting the combined covariance
// is reported via err; callers treat that edge as if the distance were
// infinite rather than propagating the error.
func mahalanobis(h Hypothesis, m Measurement) (float64, error) {
	s := h.Cov.Add(m.Cov)
	diff := m.Pos.Sub(h.Mean)

	x, err := solveSym(s, diff.col())
	if err != nil {
		return math.Inf(1), err
	}

	d2 := diff.Dot(colToVec3(x))
	if d2 < 0 {
		// Can only happen from floating-point noise on a near-singular S;
		// clamp rather than feed Sqrt a negative value.
		d2 = 0
	}
	return math.Sqrt(d2), nil
}
