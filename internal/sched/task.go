package sched

// Action is a unit of work submitted to the scheduler. A non-nil error return
// models an uncaught throw; recovered panics are reported the same way.
type Action func() error

// TaskKind classifies a queued task.
type TaskKind int

const (
	KindNone TaskKind = iota
	KindMicrotask
	KindTimer
	KindFrame
)

func (k TaskKind) String() string {
	switch k {
	case KindMicrotask:
		return "microtask"
	case KindTimer:
		return "timer"
	case KindFrame:
		return "frame"
	default:
		return "none"
	}
}

// TimerHandle identifies a pending timer for cancellation.
type TimerHandle uint64

// FrameHandle identifies a pending animation-frame callback for cancellation.
type FrameHandle uint64

// task is one queued unit of deferred work. A task is created on submission
// and discarded after its action runs; a cancelled task is skipped if a
// queue still holds it.
type task struct {
	action    Action
	kind      TaskKind
	seq       uint64      // ordering sequence; re-assigned when an interval re-arms
	handle    TimerHandle // timers only: identity returned to the caller
	due       int64       // timers only: earliest virtual time the task may run
	every     int64       // timers only: >0 means re-arm after each run
	cancelled bool
}
