package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwire/obstacles/internal/segment"
	"github.com/trailwire/obstacles/internal/track"
)

// TestFlagDefaults verifies the command's flags exist with the documented
// defaults.
func TestFlagDefaults(t *testing.T) {
	require.NotNil(t, listen)
	assert.Equal(t, ":8090", *listen)

	require.NotNil(t, scanInterval)
	assert.Equal(t, 100*time.Millisecond, *scanInterval)

	require.NotNil(t, sensorFrame)
	assert.Equal(t, "sensor", *sensorFrame)

	require.NotNil(t, worldFrame)
	assert.Equal(t, "world", *worldFrame)
}

func TestChannelPublisher_OnlyForwardsObstacleSegmentPoints(t *testing.T) {
	t.Parallel()
	out := make(chan track.DetectionBatch, 1)
	pub := &channelPublisher{frameID: "sensor", out: out}

	pub.PublishObstacleCloud(segment.ScanHeader{FrameID: "sensor"}, []segment.OutputPoint{
		{X: 1, Y: 2, Z: 3, Segment: 1},
		{X: 9, Y: 9, Z: 9, Segment: 0},
	})

	select {
	case batch := <-out:
		require.Len(t, batch.Detections, 1)
		assert.Equal(t, track.Vec3{X: 1, Y: 2, Z: 3}, batch.Detections[0].Pos)
	default:
		t.Fatal("expected a detection batch on the channel")
	}
}

func TestChannelPublisher_NoObstaclePointsSendsNothing(t *testing.T) {
	t.Parallel()
	out := make(chan track.DetectionBatch, 1)
	pub := &channelPublisher{frameID: "sensor", out: out}

	pub.PublishObstacleCloud(segment.ScanHeader{}, []segment.OutputPoint{{Segment: 0}})

	select {
	case <-out:
		t.Fatal("expected no detection batch when nothing is segmented as an obstacle")
	default:
	}
}

func TestRunSyntheticScanLoop_StopsOnContextCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan segment.PointCloudScan, 4)

	done := make(chan struct{})
	go func() {
		runSyntheticScanLoop(ctx, "sensor", 5*time.Millisecond, out)
		close(done)
	}()

	select {
	case scan := <-out:
		assert.Equal(t, "sensor", scan.Header.FrameID)
		assert.NotEmpty(t, scan.Points)
	case <-time.After(time.Second):
		t.Fatal("expected at least one synthetic scan")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected the scan loop to exit after context cancellation")
	}
}
