package sched

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusEnqueue StatusKind = iota
	StatusDispatch
	StatusFinish
	StatusFault
	StatusCancel
	StatusTick
)

// StatusEvent is emitted on every queue transition and on each tick
type StatusEvent struct {
	Now  int64 // virtual time at emission
	Kind StatusKind
	Task TaskKind
	Seq  uint64
	Err  error
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusEnqueue:
		return "Enqueued"
	case StatusDispatch:
		return "Dispatch"
	case StatusFinish:
		return "Finish"
	case StatusFault:
		return "Fault"
	case StatusCancel:
		return "Cancel"
	case StatusTick:
		return "Tick"
	default:
		return "Unknown"
	}
}
