package track

// Constant-position filter behind each Hypothesis: identity state
// transition, additive process noise proportional to elapsed time, and a
// linear update with an identity observation model (the tracker observes
// position directly).

// predict grows h's covariance per the motion model: identity state
// transition (the mean is unchanged — constant position) plus additive
// process noise scaled by the elapsed time since the hypothesis was last
// touched. dt must be >= 0.
func predict(h Hypothesis, dt, processNoisePerSecond float64) Hypothesis {
	if dt <= 0 {
		return h
	}
	q := processNoisePerSecond * dt
	h.Cov = h.Cov.Add(Diag3(q, q, q))
	return h
}

// kalmanUpdate performs a linear Kalman update of h against measurement m,
// observation = identity on position:
//
//	S = P + R
//	K = P S⁻¹
//	mean' = mean + K(z - mean)
//	P'    = P - K P
//
// A numerical failure factorizing S is reported via err without mutating
// h; the caller is expected to skip this pair as if it had never been
// matched, so no hypothesis is corrupted.
func kalmanUpdate(h Hypothesis, m Measurement) (Hypothesis, error) {
	s := h.Cov.Add(m.Cov)

	// solveSym yields S⁻¹P; its transpose is P S⁻¹ since P and S are
	// symmetric.
	kDense, err := solveSym(s, h.Cov.dense())
	if err != nil {
		return h, err
	}
	k := matToMat3(kDense.T())

	diff := m.Pos.Sub(h.Mean)
	h.Mean = h.Mean.Add(k.MulVec(diff))
	h.Cov = h.Cov.Sub(k.Mul(h.Cov))
	return h, nil
}

// fuse combines two hypotheses whose centers are too close to keep
// distinct, via covariance-weighted fusion (the same combination rule
// as a Kalman update where one estimate plays the role of the
// "measurement"): the surviving mean/covariance are the information-form
// weighted average of the two inputs.
//
// A numerical failure is reported via err; the caller keeps whichever
// hypothesis was already chosen as primary unfused rather than corrupting
// it.
func fuse(a, b Hypothesis) (Vec3, Mat3, error) {
	s := a.Cov.Add(b.Cov)

	// Weight for b's contribution: Cb' = a.Cov * S^-1, pulling the fused
	// mean toward b in inverse proportion to each covariance, same weighted
	// form the Kalman update's gain takes.
	wDense, err := solveSym(s, a.Cov.dense())
	if err != nil {
		return a.Mean, a.Cov, err
	}
	w := matToMat3(wDense.T())

	diff := b.Mean.Sub(a.Mean)
	mean := a.Mean.Add(w.MulVec(diff))
	cov := a.Cov.Sub(w.Mul(a.Cov))
	return mean, cov, nil
}
