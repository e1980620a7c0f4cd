package track

import (
	"math"
	"sort"
	"sync"

	"github.com/trailwire/obstacles/internal/monitoring"
)

// entry is the tracker's internal bookkeeping for one Hypothesis: the
// public Hypothesis value plus the last time its covariance was grown,
// which may differ from LastSeenAt when several predict-without-measurement
// calls happen without an intervening match.
type entry struct {
	h             Hypothesis
	lastPredictAt float64
}

// HypothesisTracker holds the mutable Hypothesis set and drives it through
// predict, associate, update, create, and merge each time a measurement
// batch arrives. All exported methods are safe for concurrent use: one
// mutex serializes processing against itself, so each measurement batch
// runs predict/associate/update atomically, while parameter updates go
// through Params' own lock and are picked up by the next call's snapshot.
type HypothesisTracker struct {
	params *Params

	mu     sync.Mutex
	byID   map[uint64]*entry
	nextID uint64
}

// NewHypothesisTracker constructs an empty tracker. Ids start at 1 so a
// zero Hypothesis.ID reliably means "not yet assigned".
func NewHypothesisTracker(cfg TrackerConfig) *HypothesisTracker {
	return &HypothesisTracker{
		params: NewParams(cfg),
		byID:   make(map[uint64]*entry),
		nextID: 1,
	}
}

// UpdateParam replaces the tracker's configuration, taking effect on the
// next predict or measurement batch call.
func (t *HypothesisTracker) UpdateParam(cfg TrackerConfig) {
	t.params.UpdateParam(cfg)
}

// Hypotheses returns a snapshot of the full hypothesis set, ordered by id,
// for publishing.
func (t *HypothesisTracker) Hypotheses() []Hypothesis {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.sortedIDsLocked()
	out := make([]Hypothesis, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.byID[id].h)
	}
	return out
}

// Delete explicitly removes a hypothesis from the set. Hypotheses
// otherwise persist across calls; TTL expiry only deactivates one, it
// never removes it, so deletion is always an explicit caller action.
func (t *HypothesisTracker) Delete(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byID, id)
}

func (t *HypothesisTracker) sortedIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PredictWithoutMeasurement advances every hypothesis's covariance to now
// and deactivates any whose age since last_seen_at exceeds the configured
// TTL, without touching the measurement/association machinery.
func (t *HypothesisTracker) PredictWithoutMeasurement(now float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg := t.params.Snapshot()
	t.predictLocked(cfg, now)
}

func (t *HypothesisTracker) predictLocked(cfg TrackerConfig, now float64) {
	for _, e := range t.byID {
		dt := now - e.lastPredictAt
		e.h = predict(e.h, dt, cfg.ProcessNoisePerSecond)
		e.lastPredictAt = now

		if e.h.IsActive && now-e.h.LastSeenAt > cfg.HypothesisTTLSeconds {
			e.h.IsActive = false
			monitoring.Logf("track: hypothesis %d deactivated, unseen for %.3fs", e.h.ID, now-e.h.LastSeenAt)
		}
	}
}

// OnMeasurementBatch runs the full predict/associate/update/create/merge
// loop for one measurement batch, atomically under the tracker's mutex.
//
// Only currently-active hypotheses are eligible for association. A
// hypothesis that has aged out via TTL stays in the set (Hypotheses()
// still returns it) but cannot silently reabsorb a new measurement; a
// genuinely reappearing object gets a fresh id instead.
func (t *HypothesisTracker) OnMeasurementBatch(batch MeasurementBatch) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg := t.params.Snapshot()
	t.predictLocked(cfg, batch.Time)

	var activeIDs []uint64
	for _, id := range t.sortedIDsLocked() {
		if t.byID[id].h.IsActive {
			activeIDs = append(activeIDs, id)
		}
	}

	cost := make([][]float64, len(activeIDs))
	for i, id := range activeIDs {
		row := make([]float64, len(batch.Measurements))
		h := t.byID[id].h
		for j, m := range batch.Measurements {
			d, err := mahalanobis(h, m)
			if err != nil {
				monitoring.Logf("track: mahalanobis(%d, meas %d) failed: %v", id, j, err)
				d = math.Inf(1)
			}
			row[j] = d
		}
		cost[i] = row
	}

	matches := greedyAssign(cost, cfg.MaxMahalanobisDistance)

	matchedMeas := make([]bool, len(batch.Measurements))
	for _, mt := range matches {
		id := activeIDs[mt.HypIdx]
		e := t.byID[id]

		updated, err := kalmanUpdate(e.h, batch.Measurements[mt.MeasIdx])
		if err != nil {
			monitoring.Logf("track: kalman update for hypothesis %d failed: %v", id, err)
			continue
		}
		updated.TimesSeen++
		updated.LastSeenAt = batch.Time
		updated.IsActive = true
		e.h = updated
		matchedMeas[mt.MeasIdx] = true
	}

	for j, m := range batch.Measurements {
		if matchedMeas[j] {
			continue
		}
		id := t.nextID
		t.nextID++
		t.byID[id] = &entry{
			h: Hypothesis{
				ID:         id,
				Mean:       m.Pos,
				Cov:        m.Cov,
				BornAt:     batch.Time,
				LastSeenAt: batch.Time,
				TimesSeen:  1,
				IsActive:   true,
			},
			lastPredictAt: batch.Time,
		}
	}

	t.mergeLocked(cfg)
}

// mergeLocked repeatedly fuses the first pair of active hypotheses found
// within merge_distance of each other until none remain. The surviving id
// is always the smaller one.
func (t *HypothesisTracker) mergeLocked(cfg TrackerConfig) {
	for t.mergeOncePass(cfg) {
	}
}

func (t *HypothesisTracker) mergeOncePass(cfg TrackerConfig) bool {
	ids := t.sortedIDsLocked()
	for i := 0; i < len(ids); i++ {
		a := t.byID[ids[i]]
		if !a.h.IsActive {
			continue
		}
		for j := i + 1; j < len(ids); j++ {
			b := t.byID[ids[j]]
			if !b.h.IsActive {
				continue
			}
			if a.h.Mean.Sub(b.h.Mean).Norm() >= cfg.MergeDistance {
				continue
			}

			survivorID, otherID := ids[i], ids[j]
			survivor, other := a, b

			mean, cov, err := fuse(survivor.h, other.h)
			if err != nil {
				monitoring.Logf("track: merge fuse(%d, %d) failed: %v", survivorID, otherID, err)
				continue
			}
			survivor.h.Mean = mean
			survivor.h.Cov = cov
			if other.h.LastSeenAt > survivor.h.LastSeenAt {
				survivor.h.LastSeenAt = other.h.LastSeenAt
			}
			survivor.h.TimesSeen += other.h.TimesSeen
			delete(t.byID, otherID)
			return true
		}
	}
	return false
}
