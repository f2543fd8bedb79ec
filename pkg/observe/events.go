package observe

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventKernelStart  EventType = "kernel_start"
	EventKernelDone   EventType = "kernel_done"
	EventPipelineDone EventType = "pipeline_done"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// KernelEvent marks a kernel goroutine starting or finishing.
type KernelEvent struct {
	EventBase
	Kernel  string        `json:"kernel"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Err     error         `json:"-"`
}

// PipelineEvent marks a whole run finishing.
type PipelineEvent struct {
	EventBase
	Pipeline string        `json:"pipeline"`
	Elapsed  time.Duration `json:"elapsed,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for runner observability.
// Callbacks fire from the kernel goroutines, so they must be safe for
// concurrent use.
type LifecycleHooks struct {
	OnKernelStart  func(context.Context, *KernelEvent)
	OnKernelDone   func(context.Context, *KernelEvent)
	OnPipelineDone func(context.Context, *PipelineEvent)
}
