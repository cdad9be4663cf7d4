package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStart   EventType = "start"
	EventResume  EventType = "resume"
	EventSuspend EventType = "suspend"
	EventFinish  EventType = "finish"
	EventReject  EventType = "input_rejected"
	EventFault   EventType = "fault"
)

// Event describes one invocation boundary.
type Event struct {
	Timestamp          time.Time     `json:"timestamp"`
	Type               EventType     `json:"type"`
	ProgramLength      int           `json:"program_length"`
	InstructionPointer uint32        `json:"instruction_pointer"`
	Steps              uint64        `json:"steps"`
	Duration           time.Duration `json:"duration,omitempty"`
	Err                error         `json:"-"`
	Cached             bool          `json:"cached,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnStart   func(context.Context, *Event)
	OnResume  func(context.Context, *Event)
	OnSuspend func(context.Context, *Event)
	OnFinish  func(context.Context, *Event)
	OnReject  func(context.Context, *Event)
	OnFault   func(context.Context, *Event)
}

// Fire dispatches e to the hook matching its type.
func (h LifecycleHooks) Fire(ctx context.Context, e *Event) {
	var fn func(context.Context, *Event)
	switch e.Type {
	case EventStart:
		fn = h.OnStart
	case EventResume:
		fn = h.OnResume
	case EventSuspend:
		fn = h.OnSuspend
	case EventFinish:
		fn = h.OnFinish
	case EventReject:
		fn = h.OnReject
	case EventFault:
		fn = h.OnFault
	}
	if fn != nil {
		fn(ctx, e)
	}
}

// Merge combines two hook sets; both are called, h first.
func (h LifecycleHooks) Merge(o LifecycleHooks) LifecycleHooks {
	chain := func(a, b func(context.Context, *Event)) func(context.Context, *Event) {
		if a == nil {
			return b
		}
		if b == nil {
			return a
		}
		return func(ctx context.Context, e *Event) {
			a(ctx, e)
			b(ctx, e)
		}
	}
	return LifecycleHooks{
		OnStart:   chain(h.OnStart, o.OnStart),
		OnResume:  chain(h.OnResume, o.OnResume),
		OnSuspend: chain(h.OnSuspend, o.OnSuspend),
		OnFinish:  chain(h.OnFinish, o.OnFinish),
		OnReject:  chain(h.OnReject, o.OnReject),
		OnFault:   chain(h.OnFault, o.OnFault),
	}
}
