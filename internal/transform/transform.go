// Package transform provides the coordinate-frame lookup the perception
// core treats as an external collaborator: a transform oracle that maps 3D
// points between named frames at a given time. Transform itself is a
// row-major 4x4 rigid-transform matrix, kept minimal because the core
// needs to apply one, not calibrate one.
package transform

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrFrameNotFound is returned when no transform is registered between the
// requested frames.
var ErrFrameNotFound = errors.New("transform: frame pair not found")

// Transform is a row-major 4x4 rigid transform: rotation in the top-left
// 3x3 block, translation in column 3, bottom row always [0 0 0 1].
type Transform struct {
	T [16]float64
}

// Identity returns the no-op transform.
func Identity() Transform {
	return Transform{T: [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Apply maps (x, y, z) through the transform.
func (t Transform) Apply(x, y, z float64) (wx, wy, wz float64) {
	wx = t.T[0]*x + t.T[1]*y + t.T[2]*z + t.T[3]
	wy = t.T[4]*x + t.T[5]*y + t.T[6]*z + t.T[7]
	wz = t.T[8]*x + t.T[9]*y + t.T[10]*z + t.T[11]
	return
}

// Oracle maps points between named frames at a given time. Callers derive
// ctx from context.WithTimeout (100ms everywhere in this module) and treat
// context.DeadlineExceeded the same as any other lookup failure: drop the
// batch, don't guess.
type Oracle interface {
	Lookup(ctx context.Context, target, source string, at time.Time) (Transform, error)
}

// StaticOracle is a minimal Oracle backed by a fixed registry of
// source->target transforms, with no time-varying interpolation. Suitable
// for a sensor rig with fixed extrinsics and for tests; a production
// deployment would swap in a real tf-style oracle behind the same
// interface.
type StaticOracle struct {
	mu    sync.RWMutex
	byKey map[frameKey]Transform
}

type frameKey struct{ source, target string }

// NewStaticOracle constructs an oracle with no registered frames; every
// frame pair other than identity (source == target) returns
// ErrFrameNotFound until Register is called.
func NewStaticOracle() *StaticOracle {
	return &StaticOracle{byKey: make(map[frameKey]Transform)}
}

// Register records the transform that maps a point in source into target.
func (o *StaticOracle) Register(source, target string, t Transform) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byKey[frameKey{source, target}] = t
}

// Lookup implements Oracle. Time is accepted for interface compatibility
// but ignored: StaticOracle has no time-varying state.
func (o *StaticOracle) Lookup(ctx context.Context, target, source string, _ time.Time) (Transform, error) {
	if err := ctx.Err(); err != nil {
		return Transform{}, err
	}
	if source == target {
		return Identity(), nil
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	t, ok := o.byKey[frameKey{source, target}]
	if !ok {
		return Transform{}, ErrFrameNotFound
	}
	return t, nil
}
