package audit

import "errors"

var (
	// ErrQueueFull is returned by Recorder.Record when the queue is full and
	// the batch was dropped.
	ErrQueueFull = errors.New("audit: journal queue full")

	// ErrRecorderStopped is returned by Recorder.Record after Stop.
	ErrRecorderStopped = errors.New("audit: recorder stopped")
)
