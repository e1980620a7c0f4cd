package segment

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/trailwire/obstacles/internal/monitoring"
	"github.com/trailwire/obstacles/internal/transform"
)

// oracleTimeout bounds every transform oracle lookup the segmenter makes;
// on expiry the scan is dropped rather than ingested with a stale pose.
const oracleTimeout = 100 * time.Millisecond

// Publisher decouples the segmenter from whatever transport carries its
// three output streams.
type Publisher interface {
	// HasSubscribers reports whether anything downstream wants segmented
	// output at all. When false, Segmenter.IngestScan resets its ring
	// state for that scan instead of doing filter/segment work nobody will
	// see.
	HasSubscribers() bool
	PublishObstacleCloud(header ScanHeader, points []OutputPoint)

	// DebugEnabled reports whether the debug streams are wanted: they
	// carry real per-point cost, so the segmenter checks before building
	// them rather than discarding the work downstream.
	DebugEnabled() bool
	PublishDebugCloud(header ScanHeader, points []DebugPoint)
	PublishFilteredCloud(header ScanHeader, points []FilteredPoint)
}

// Segmenter is the ring-streaming segmenter core: one ringState per LiDAR
// ring, a shared Config snapshot, and the Publisher it reports to. All
// exported methods are safe for concurrent use; a single mutex guards the
// per-ring state because filter/segment progress on one ring is cheap
// enough that finer-grained locking isn't worth the complexity.
type Segmenter struct {
	params    *Params
	publisher Publisher
	oracle    transform.Oracle

	mu    sync.Mutex
	rings map[uint16]*ringState
}

// NewSegmenter constructs a Segmenter. oracle may be nil if the caller only
// ever ingests PointCloudScan (already-3D) input.
func NewSegmenter(cfg Config, publisher Publisher, oracle transform.Oracle) *Segmenter {
	return &Segmenter{
		params:    NewParams(cfg),
		publisher: publisher,
		oracle:    oracle,
		rings:     make(map[uint16]*ringState),
	}
}

// UpdateParam replaces the segmenter's configuration, taking effect on the
// next scan ingested (existing ring buffers are left untouched; a capacity
// change only affects rings created after the call).
func (s *Segmenter) UpdateParam(cfg Config) {
	s.params.UpdateParam(cfg)
}

func (s *Segmenter) ringFor(cfg Config, ring uint16) *ringState {
	rs, ok := s.rings[ring]
	if !ok {
		rs = newRingState(cfg.CircularBufferCapacity)
		s.rings[ring] = rs
	}
	return rs
}

// reset drops all per-ring state. Called when a scan arrives but nothing
// downstream is subscribed: no point paying the buffering and median cost
// for output nobody reads.
func (s *Segmenter) reset() {
	for _, rs := range s.rings {
		rs.reset()
	}
}

func newMedianSample(p InputPoint) MedianSample {
	nan := float32(math.NaN())
	return MedianSample{Point: p, DistNoise: nan, DistObject: nan, IntensNoise: nan, IntensObject: nan}
}

// IngestScan feeds one multibeam scan into the segmenter.
func (s *Segmenter) IngestScan(scan PointCloudScan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publisher == nil || !s.publisher.HasSubscribers() {
		s.reset()
		return
	}

	cfg := s.params.Snapshot()
	for _, p := range scan.Points {
		rs := s.ringFor(cfg, p.Ring)
		rs.buf.Push(newMedianSample(p))
	}

	s.process(cfg, scan.Header)
}

// IngestLaserScan feeds a single-plane 2D scan, projecting it to 3D first
// via local range/angle trigonometry and then into the configured world
// frame via the transform oracle. Ring is always 0 for 2D input. If the
// oracle lookup fails or times out, the whole scan is dropped rather than
// ingested with a wrong or stale pose.
func (s *Segmenter) IngestLaserScan(scan LaserScan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publisher == nil || !s.publisher.HasSubscribers() {
		s.reset()
		return
	}

	cfg := s.params.Snapshot()

	if s.oracle == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), oracleTimeout)
	tr, err := s.oracle.Lookup(ctx, cfg.WorldFrame, scan.Header.FrameID, scan.Header.Timestamp)
	cancel()
	if err != nil {
		monitoring.Logf("segment: transform %s->%s unavailable, dropping laser scan: %v", scan.Header.FrameID, cfg.WorldFrame, err)
		return
	}

	points := make([]InputPoint, 0, len(scan.Ranges))
	for i, r := range scan.Ranges {
		if r <= 0 || math.IsInf(float64(r), 0) || math.IsNaN(float64(r)) {
			continue
		}
		angle := scan.AngleMin + float64(i)*scan.AngleIncrement
		lx := float64(r) * math.Cos(angle)
		ly := float64(r) * math.Sin(angle)
		wx, wy, wz := tr.Apply(lx, ly, 0)
		if math.IsNaN(wx) || math.IsNaN(wy) || math.IsNaN(wz) {
			continue
		}

		intensity := float32(0)
		if i < len(scan.Intensities) {
			intensity = scan.Intensities[i]
		}
		points = append(points, InputPoint{
			X: float32(wx), Y: float32(wy), Z: float32(wz),
			Intensity: intensity,
			Distance:  r,
			Ring:      0,
		})
	}

	rs := s.ringFor(cfg, 0)
	for _, p := range points {
		rs.buf.Push(newMedianSample(p))
	}

	s.process(cfg, scan.Header)
}

// process runs the filter then segment stage on every ring with pending
// work, and publishes whatever the segment stage emits.
func (s *Segmenter) process(cfg Config, header ScanHeader) {
	var obstaclePoints []OutputPoint
	var debugPoints []DebugPoint
	var filterFactors []float32

	debugOn := s.publisher.DebugEnabled()

	for _, rs := range s.rings {
		runFilterStage(cfg, rs)
		results := runSegmentStage(cfg, rs)

		for _, r := range results {
			obstaclePoints = append(obstaclePoints, OutputPoint{
				X: r.point.X, Y: r.point.Y, Z: r.point.Z,
				Segment: r.segment,
			})
			if debugOn {
				debugPoints = append(debugPoints, DebugPoint{
					X: r.point.X, Y: r.point.Y, Z: r.point.Z,
					Intensity:             r.point.Intensity,
					Ring:                  r.point.Ring,
					Segmentation:          r.segment,
					SegmentationDistance:  float32(r.deltaD),
					SegmentationIntensity: float32(r.deltaI),
				})
				factor := float32(1.0)
				if !math.IsNaN(float64(r.distNoise)) && !math.IsNaN(float64(r.point.Distance)) && r.point.Distance != 0 {
					factor = r.distNoise / r.point.Distance
				}
				filterFactors = append(filterFactors, factor)
			}
		}
	}

	s.publisher.PublishObstacleCloud(header, obstaclePoints)
	if debugOn {
		s.publisher.PublishDebugCloud(header, debugPoints)
		s.publishFilteredCloud(cfg, header, debugPoints, filterFactors)
	}
}

// sensorFrame names the frame the filtered debug cloud is re-expressed in
// before publishing, chosen by sensor type.
func sensorFrame(cfg Config) string {
	if cfg.InputIsVelodyne {
		return "velodyne"
	}
	return "laser_scanner_center"
}

// publishFilteredCloud re-expresses the scan's debug points in the sensor
// frame, then moves each to where it would sit had the median filter been
// applied to its range (scale by dist_noise/distance). On a transform
// lookup failure the cloud is published empty for this scan rather than in
// the wrong frame.
func (s *Segmenter) publishFilteredCloud(cfg Config, header ScanHeader, debugPoints []DebugPoint, factors []float32) {
	frame := sensorFrame(cfg)
	outHeader := ScanHeader{FrameID: frame, Timestamp: header.Timestamp}

	if len(debugPoints) != len(factors) {
		s.publisher.PublishFilteredCloud(outHeader, nil)
		return
	}

	tr := transform.Identity()
	if header.FrameID != frame {
		if s.oracle == nil {
			s.publisher.PublishFilteredCloud(outHeader, nil)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), oracleTimeout)
		looked, err := s.oracle.Lookup(ctx, frame, header.FrameID, header.Timestamp)
		cancel()
		if err != nil {
			monitoring.Logf("segment: transform %s->%s unavailable, filtered cloud empty: %v", header.FrameID, frame, err)
			s.publisher.PublishFilteredCloud(outHeader, nil)
			return
		}
		tr = looked
	}

	filtered := make([]FilteredPoint, 0, len(debugPoints))
	for i, dp := range debugPoints {
		sx, sy, sz := tr.Apply(float64(dp.X), float64(dp.Y), float64(dp.Z))
		f := float64(factors[i])
		filtered = append(filtered, FilteredPoint{
			X: float32(sx * f), Y: float32(sy * f), Z: float32(sz * f),
			Segmentation: dp.Segmentation,
			Ring:         dp.Ring,
		})
	}
	s.publisher.PublishFilteredCloud(outHeader, filtered)
}
