// Command obstacles wires the segmentation and tracking stages into a
// single replay/demo pipeline: a synthetic scan generator feeds the
// segmenter, segmented obstacle points feed the measurement front end, and
// the front end feeds the hypothesis tracker. An HTTP server, always
// started on the -listen address, exposes a health check and the
// hypothesis debug dashboard.
//
// Instead of a bus-subscription/callback model, the stages are connected by
// a channel-based message loop: one goroutine per input stream feeds a
// queue, one goroutine per pipeline stage drains it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/trailwire/obstacles/internal/config"
	"github.com/trailwire/obstacles/internal/debugdash"
	"github.com/trailwire/obstacles/internal/monitoring"
	"github.com/trailwire/obstacles/internal/segment"
	sqlitestore "github.com/trailwire/obstacles/internal/storage/sqlite"
	"github.com/trailwire/obstacles/internal/track"
	"github.com/trailwire/obstacles/internal/transform"
)

var (
	listen       = flag.String("listen", ":8090", "HTTP listen address for the debug dashboard")
	configPath   = flag.String("config", "", "path to a tuning config JSON file (default: built-in defaults)")
	dbPath       = flag.String("db", "", "path to a sqlite file for the hypothesis history journal (empty disables journaling)")
	sensorFrame  = flag.String("sensor-frame", "sensor", "frame id the synthetic scan and detections are reported in")
	worldFrame   = flag.String("world-frame", "world", "frame id the tracker operates in")
	scanInterval = flag.Duration("scan-interval", 100*time.Millisecond, "interval between synthetic scans")
	scorePlot    = flag.String("score-plot", "", "write a PNG of the segmentation score curve to this path at startup")
)

func main() {
	flag.Parse()

	tuning := config.MustLoadDefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		tuning = loaded
	}

	oracle := transform.NewStaticOracle()
	oracle.Register(*sensorFrame, *worldFrame, transform.Identity())

	segCfg := segment.FromTuning(tuning)
	trackerCfg := track.TrackerConfigFromTuning(tuning)

	if *scorePlot != "" {
		if err := debugdash.SaveScoreCurve(segCfg, 200, *scorePlot); err != nil {
			log.Fatalf("failed to write score curve plot: %v", err)
		}
		log.Printf("wrote score curve plot to %s", *scorePlot)
	}

	tracker := track.NewHypothesisTracker(trackerCfg)
	frontend := track.NewMeasurementFrontEnd(oracle, *worldFrame, tuning.GetMeasurementSigmaMeters())

	var history *sqlitestore.HistoryStore
	if *dbPath != "" {
		h, err := sqlitestore.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open hypothesis history store: %v", err)
		}
		defer h.Close()
		history = h
	}

	detCh := make(chan track.DetectionBatch, 16)
	pub := &channelPublisher{frameID: *sensorFrame, out: detCh}
	segmenter := segment.NewSegmenter(segCfg, pub, nil)

	scanCh := make(chan segment.PointCloudScan, 16)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		runSyntheticScanLoop(ctx, *sensorFrame, *scanInterval, scanCh)
		close(scanCh)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for scan := range scanCh {
			segmenter.IngestScan(scan)
		}
		close(detCh)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runTrackingLoop(detCh, frontend, tracker, history)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runDebugServer(ctx, *listen, tracker)
	}()

	wg.Wait()
	log.Println("obstacles: shutdown complete")
}

// channelPublisher implements segment.Publisher by turning every obstacle
// point (Segment == 1) from one scan into a detection batch on a bounded
// queue.
type channelPublisher struct {
	frameID string
	debugOn bool
	out     chan<- track.DetectionBatch
}

func (p *channelPublisher) HasSubscribers() bool { return true }

func (p *channelPublisher) PublishObstacleCloud(header segment.ScanHeader, points []segment.OutputPoint) {
	dets := make([]track.Detection, 0, len(points))
	for _, pt := range points {
		if pt.Segment != 1 {
			continue
		}
		dets = append(dets, track.Detection{Pos: track.Vec3{X: float64(pt.X), Y: float64(pt.Y), Z: float64(pt.Z)}})
	}
	if len(dets) == 0 {
		return
	}

	batch := track.DetectionBatch{
		Detections: dets,
		Header:     track.DetectionHeader{FrameID: p.frameID, Time: header.Timestamp},
	}

	select {
	case p.out <- batch:
	default:
		monitoring.Logf("obstacles: detection queue full, dropping batch for frame %s", header.FrameID)
	}
}

func (p *channelPublisher) DebugEnabled() bool { return p.debugOn }

func (p *channelPublisher) PublishDebugCloud(segment.ScanHeader, []segment.DebugPoint)       {}
func (p *channelPublisher) PublishFilteredCloud(segment.ScanHeader, []segment.FilteredPoint) {}

// runTrackingLoop drains detection batches, converts them to measurements in
// the world frame, and advances the tracker, journaling each pass if a
// history store is configured.
func runTrackingLoop(in <-chan track.DetectionBatch, frontend *track.MeasurementFrontEnd, tracker *track.HypothesisTracker, history *sqlitestore.HistoryStore) {
	for batch := range in {
		measBatch, ok := frontend.Convert(batch)
		if !ok {
			continue
		}
		tracker.OnMeasurementBatch(measBatch)

		if history != nil {
			if err := history.RecordBatch(measBatch.ID, measBatch.Time, tracker.Hypotheses()); err != nil {
				monitoring.Logf("obstacles: failed to journal hypothesis batch %s: %v", measBatch.ID, err)
			}
		}
	}
}

// runSyntheticScanLoop produces a single-ring sweep of points orbiting the
// sensor at a slow radius drift, standing in for a real detector/driver in
// this replay/demo binary.
func runSyntheticScanLoop(ctx context.Context, frameID string, interval time.Duration, out chan<- segment.PointCloudScan) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	rng := rand.New(rand.NewSource(1))
	frame := 0

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			frame++
			points := make([]segment.InputPoint, 0, 64)
			radius := 5.0 + math.Sin(float64(frame)*0.05)
			for i := 0; i < 64; i++ {
				angle := 2 * math.Pi * float64(i) / 64
				dist := float32(radius + rng.NormFloat64()*0.02)
				points = append(points, segment.InputPoint{
					X:         float32(radius) * float32(math.Cos(angle)),
					Y:         float32(radius) * float32(math.Sin(angle)),
					Z:         0,
					Intensity: 100,
					Distance:  dist,
					Ring:      0,
				})
			}

			select {
			case out <- segment.PointCloudScan{Points: points, Header: segment.ScanHeader{FrameID: frameID, Timestamp: now}}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// runDebugServer mounts the hypothesis dashboard and a health endpoint,
// shutting down gracefully when ctx is canceled.
func runDebugServer(ctx context.Context, addr string, tracker *track.HypothesisTracker) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"obstacles","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339))
	})
	mux.Handle("/debug/hypotheses", debugdash.NewScoreDashboardHandler(tracker))

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("obstacles: debug dashboard listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("obstacles: HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("obstacles: shutting down debug dashboard...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("obstacles: HTTP shutdown error: %v", err)
		_ = server.Close()
	}
}
