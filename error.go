package hush

import "errors"

var (
	// ErrNoGraph is returned if engine is created without a startup graph.
	ErrNoGraph = errors.New("no startup graph")
	// ErrAllocated is returned if engine is allocated more than once.
	ErrAllocated = errors.New("engine is already allocated")
	// ErrSampleRate is returned for sample rates that are not positive.
	ErrSampleRate = errors.New("invalid sample rate")
	// ErrThreshold is returned for a negative phase threshold.
	ErrThreshold = errors.New("invalid threshold")
)
