package controller

import "github.com/google/uuid"

// BatchKind distinguishes the two motion batch flavors.
type BatchKind string

const (
	// BatchRelative applies signed deltas to the measured pose.
	BatchRelative BatchKind = "relative"

	// BatchAbsolute sends joints to explicit targets in degrees.
	BatchAbsolute BatchKind = "absolute"
)

// Pair is one per-joint command inside a batch: a delta for relative
// batches, a target for absolute ones.
type Pair struct {
	Joint   int     `json:"joint"`
	Degrees float64 `json:"degrees"`
}

// MotionBatch is one unit of work drained by the controller. Immutable once
// enqueued; ownership transfers to the controller on dequeue.
type MotionBatch struct {
	ID    string    `json:"id"`
	Kind  BatchKind `json:"kind"`
	Pairs []Pair    `json:"pairs"`
}

// NewBatch builds a batch with a fresh ID for log correlation.
func NewBatch(kind BatchKind, pairs []Pair) MotionBatch {
	return MotionBatch{
		ID:    uuid.New().String(),
		Kind:  kind,
		Pairs: pairs,
	}
}
