package track

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trailwire/obstacles/internal/monitoring"
	"github.com/trailwire/obstacles/internal/transform"
)

// oracleTimeout bounds every transform oracle lookup the front end makes,
// the same 100ms budget the segmenter uses.
const oracleTimeout = 100 * time.Millisecond

// Detection is one detected object pose, as handed to the front end by the
// external detector.
type Detection struct {
	Pos Vec3
}

// DetectionHeader carries the frame and timestamp shared by a batch of
// detections.
type DetectionHeader struct {
	FrameID string
	Time    time.Time
}

// DetectionBatch is one detector callback's worth of poses.
type DetectionBatch struct {
	Detections []Detection
	Header     DetectionHeader
}

// MeasurementFrontEnd builds Measurements from detections and transforms
// them into the configured world frame.
type MeasurementFrontEnd struct {
	oracle      transform.Oracle
	worldFrame  string
	sigmaMeters float64
}

// NewMeasurementFrontEnd constructs a front end. sigmaMeters is the
// per-axis measurement noise standard deviation, typically 0.03.
func NewMeasurementFrontEnd(oracle transform.Oracle, worldFrame string, sigmaMeters float64) *MeasurementFrontEnd {
	return &MeasurementFrontEnd{oracle: oracle, worldFrame: worldFrame, sigmaMeters: sigmaMeters}
}

// Convert turns a DetectionBatch into a MeasurementBatch in the world
// frame. On any transform lookup failure the whole batch is discarded: ok
// is false and the caller must not hand the result to the tracker.
func (f *MeasurementFrontEnd) Convert(batch DetectionBatch) (MeasurementBatch, bool) {
	sigma2 := f.sigmaMeters * f.sigmaMeters
	cov := Diag3(sigma2, sigma2, sigma2)
	t := float64(batch.Header.Time.UnixNano()) / 1e9

	raw := make([]Measurement, 0, len(batch.Detections))
	for _, d := range batch.Detections {
		raw = append(raw, Measurement{
			Pos:   d.Pos,
			Cov:   cov,
			Color: 'U',
			Frame: batch.Header.FrameID,
			Time:  t,
		})
	}

	if f.worldFrame == batch.Header.FrameID {
		return MeasurementBatch{ID: uuid.NewString(), Measurements: raw, Time: t}, true
	}
	if f.oracle == nil {
		monitoring.Logf("track: no transform oracle for %s->%s, dropping batch", batch.Header.FrameID, f.worldFrame)
		return MeasurementBatch{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), oracleTimeout)
	defer cancel()
	tr, err := f.oracle.Lookup(ctx, f.worldFrame, batch.Header.FrameID, batch.Header.Time)
	if err != nil {
		monitoring.Logf("track: transform %s->%s unavailable, dropping batch: %v", batch.Header.FrameID, f.worldFrame, err)
		return MeasurementBatch{}, false
	}

	out := make([]Measurement, len(raw))
	for i, m := range raw {
		wx, wy, wz := tr.Apply(m.Pos.X, m.Pos.Y, m.Pos.Z)
		m.Pos = Vec3{X: wx, Y: wy, Z: wz}
		m.Frame = f.worldFrame
		out[i] = m
	}
	return MeasurementBatch{ID: uuid.NewString(), Measurements: out, Time: t}, true
}
