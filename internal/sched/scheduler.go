// internal/sched/scheduler.go

package sched

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/rs/zerolog"
)

// Scheduler is a single-threaded cooperative task scheduler: a call-stack
// flag, a FIFO microtask queue, a timer queue ordered by (due, seq), and a
// per-frame callback batch, all driven by an explicit virtual clock.
//
// Exactly one action executes at any instant; every method must be called
// from the same goroutine that drives the run loop. There is no locking
// because concurrent access never occurs.
type Scheduler struct {
	cfg   Config
	clock *VirtualClock
	seq   uint64 // last assigned submission sequence

	micro      *linkedlistqueue.Queue // *task, FIFO
	timerQueue *redblacktree.Tree     // timerKey -> *task, ordered by (due, seq)
	timers     map[TimerHandle]*task  // pending timers by handle
	frameBatch *arraylist.List        // *task, submission order
	frames     map[FrameHandle]*task  // pending frame callbacks by handle

	running bool // a synchronous action is on the stack
	sink    ErrorSink
	log     zerolog.Logger

	// trace-related
	csvFile   *os.File
	csvWriter *csv.Writer
}

// New creates a Scheduler with the given configuration and a fresh virtual
// clock at time zero.
func New(cfg Config) *Scheduler {
	return NewWithClock(cfg, NewVirtualClock())
}

// NewWithClock creates a Scheduler driven by the given clock. Sharing a clock
// between schedulers keeps their timelines aligned without any cross-talk
// between their queues.
func NewWithClock(cfg Config, clock *VirtualClock) *Scheduler {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	s := &Scheduler{
		cfg:        cfg,
		clock:      clock,
		micro:      linkedlistqueue.New(),
		timerQueue: redblacktree.NewWith(timerCmp),
		timers:     make(map[TimerHandle]*task),
		frameBatch: arraylist.New(),
		frames:     make(map[FrameHandle]*task),
		log:        zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level),
	}
	s.sink = s.logSink
	return s
}

// SetErrorSink replaces the error sink. A nil sink swallows faults, which is
// the last resort; the default sink writes them to the scheduler's log.
func (s *Scheduler) SetErrorSink(sink ErrorSink) {
	s.sink = sink
}

// SetLogger replaces the scheduler's logger.
func (s *Scheduler) SetLogger(log zerolog.Logger) {
	s.log = log
}

// Now returns the current virtual time in milliseconds.
func (s *Scheduler) Now() int64 {
	return s.clock.Now()
}

// Clock returns the underlying virtual clock.
func (s *Scheduler) Clock() *VirtualClock {
	return s.clock
}

// EnableCSVTrace opens the given file path for CSV logging of scheduler
// events. Must be called before any work is submitted.
func (s *Scheduler) EnableCSVTrace(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	// write header
	w.Write([]string{"virtual_ms", "event", "task", "seq", "error"})
	w.Flush()
	s.csvFile = f
	s.csvWriter = w
	return nil
}

// Close flushes and closes the CSV trace, if one was enabled.
func (s *Scheduler) Close() error {
	if s.csvFile == nil {
		return nil
	}
	s.csvWriter.Flush()
	err := s.csvFile.Close()
	s.csvFile = nil
	s.csvWriter = nil
	return err
}

// RunSync executes fn immediately, to completion, before returning. Work
// submitted while fn runs is queued, never run inline. Only RunSync is
// permitted to surface an error to the caller; queue-driven execution is
// fault-isolated per task.
func (s *Scheduler) RunSync(fn Action) error {
	if s.running {
		return ErrBusy
	}
	seq := s.nextSeq()
	s.running = true
	s.emit(StatusDispatch, KindNone, seq, nil)
	err := s.call(fn)
	s.running = false
	if err != nil {
		s.emit(StatusFault, KindNone, seq, err)
		return err
	}
	s.emit(StatusFinish, KindNone, seq, nil)
	return nil
}

// QueueMicrotask appends fn to the microtask queue. Microtasks run in FIFO
// order, strictly before any timer or frame callback becomes eligible.
func (s *Scheduler) QueueMicrotask(fn Action) {
	s.enqueueMicro(fn)
}

func (s *Scheduler) enqueueMicro(fn Action) uint64 {
	t := &task{action: fn, kind: KindMicrotask, seq: s.nextSeq()}
	s.micro.Enqueue(t)
	s.emit(StatusEnqueue, KindMicrotask, t.seq, nil)
	return t.seq
}

// SetTimer schedules fn to run once the virtual clock reaches
// now + max(0, delayMS). A zero delay still waits for at least one full
// drain cycle; it is never synchronous.
func (s *Scheduler) SetTimer(fn Action, delayMS int64) TimerHandle {
	return s.addTimer(fn, delayMS, 0)
}

// SetInterval schedules fn to run repeatedly, every max(1, everyMS) virtual
// milliseconds. The returned handle cancels it via CancelTimer or
// ClearInterval. Only one timer fires per tick, so a busy interval cannot
// starve other due timers.
func (s *Scheduler) SetInterval(fn Action, everyMS int64) TimerHandle {
	if everyMS < 1 {
		everyMS = 1
	}
	return s.addTimer(fn, everyMS, everyMS)
}

func (s *Scheduler) addTimer(fn Action, delayMS, everyMS int64) TimerHandle {
	if delayMS < 0 {
		delayMS = 0
	}
	t := &task{
		action: fn,
		kind:   KindTimer,
		seq:    s.nextSeq(),
		due:    s.clock.Now() + delayMS,
		every:  everyMS,
	}
	t.handle = TimerHandle(t.seq)
	s.timerQueue.Put(timerKey{t.due, t.seq}, t)
	s.timers[t.handle] = t
	s.emit(StatusEnqueue, KindTimer, t.seq, nil)
	return t.handle
}

// CancelTimer cancels a pending timer. It reports whether a timer was
// actually cancelled; cancelling twice, or cancelling an already-run timer,
// is a no-op, not an error. A running action is never interrupted.
func (s *Scheduler) CancelTimer(h TimerHandle) bool {
	t, ok := s.timers[h]
	if !ok {
		return false
	}
	t.cancelled = true
	s.timerQueue.Remove(timerKey{t.due, t.seq})
	delete(s.timers, h)
	s.emit(StatusCancel, KindTimer, t.seq, nil)
	return true
}

// ClearInterval cancels a repeating timer. When called from inside the
// interval's own callback it prevents the re-arm.
func (s *Scheduler) ClearInterval(h TimerHandle) bool {
	return s.CancelTimer(h)
}

// RequestAnimationFrame appends fn to the current frame batch. The batch runs
// once per tick, after the tick's first microtask drain and before the timer
// phase; callbacks requested during the batch land in the next one.
func (s *Scheduler) RequestAnimationFrame(fn Action) FrameHandle {
	t := &task{action: fn, kind: KindFrame, seq: s.nextSeq()}
	s.frameBatch.Add(t)
	s.frames[FrameHandle(t.seq)] = t
	s.emit(StatusEnqueue, KindFrame, t.seq, nil)
	return FrameHandle(t.seq)
}

// CancelAnimationFrame removes a pending frame callback before its batch
// runs. It reports whether a callback was actually cancelled; cancelling
// twice or after the callback ran is a no-op.
func (s *Scheduler) CancelAnimationFrame(h FrameHandle) bool {
	t, ok := s.frames[h]
	if !ok {
		return false
	}
	t.cancelled = true
	delete(s.frames, h)
	if i := s.frameBatch.IndexOf(t); i >= 0 {
		s.frameBatch.Remove(i)
	}
	s.emit(StatusCancel, KindFrame, t.seq, nil)
	return true
}

// DrainMicrotasks runs queued microtasks in submission order until none
// remain, including microtasks enqueued by ones drained in this call.
// Returns the number of microtasks run.
//
// A microtask that always enqueues another microtask makes this call never
// return; bounding production is the caller's responsibility, exactly as it
// is in the runtime being modelled.
func (s *Scheduler) DrainMicrotasks() int {
	n := 0
	for {
		v, ok := s.micro.Dequeue()
		if !ok {
			return n
		}
		s.runTask(v.(*task))
		n++
	}
}

// RunOneTick advances virtual time by advanceMS, then runs one tick:
// drain microtasks, run the pending frame batch, drain again, run at most
// one due timer, drain again. Returns whether any task ran, so a caller can
// loop until quiescent.
func (s *Scheduler) RunOneTick(advanceMS int64) bool {
	s.clock.Advance(advanceMS)
	s.emit(StatusTick, KindNone, 0, nil)

	ran := s.DrainMicrotasks() > 0
	if s.runFrameBatch() {
		ran = true
	}
	if s.DrainMicrotasks() > 0 {
		ran = true
	}
	if s.runDueTimer() {
		ran = true
	}
	if s.DrainMicrotasks() > 0 {
		ran = true
	}
	return ran
}

// RunUntilQuiescent repeatedly calls RunOneTick, advancing virtual time by
// the configured tick_ms each time, until the scheduler is quiescent or the
// configured max_ticks bound is reached. Returns the number of ticks run.
func (s *Scheduler) RunUntilQuiescent() int {
	ticks := 0
	for ticks < s.cfg.MaxTicks && !s.Quiescent() {
		s.RunOneTick(s.cfg.TickMS)
		ticks++
	}
	return ticks
}

// Quiescent reports whether all queues are empty and no synchronous action
// is running.
func (s *Scheduler) Quiescent() bool {
	return !s.running &&
		s.micro.Empty() &&
		s.timerQueue.Empty() &&
		s.frameBatch.Empty()
}

// runFrameBatch runs every currently pending frame callback once, in
// submission order, emptying the batch first so callbacks requested during
// the batch queue for the next tick.
func (s *Scheduler) runFrameBatch() bool {
	if s.frameBatch.Empty() {
		return false
	}
	batch := s.frameBatch.Values()
	s.frameBatch.Clear()

	ran := false
	for _, v := range batch {
		t := v.(*task)
		if t.cancelled {
			continue
		}
		delete(s.frames, FrameHandle(t.seq))
		s.runTask(t)
		ran = true
	}
	return ran
}

// runDueTimer runs the single most-due timer, if any is eligible: lowest due
// time wins, ties broken by submission sequence. Intervals re-arm with a
// fresh sequence, so a re-armed timer queues behind already-pending timers
// with the same due time.
func (s *Scheduler) runDueTimer() bool {
	node := s.timerQueue.Left()
	if node == nil {
		return false
	}
	key := node.Key.(timerKey)
	if key.due > s.clock.Now() {
		return false
	}
	t := node.Value.(*task)
	s.timerQueue.Remove(key)
	if t.every <= 0 {
		delete(s.timers, t.handle)
	}

	s.runTask(t)

	if t.every > 0 {
		if t.cancelled {
			delete(s.timers, t.handle)
		} else {
			t.seq = s.nextSeq()
			t.due = s.clock.Now() + t.every
			s.timerQueue.Put(timerKey{t.due, t.seq}, t)
		}
	}
	return true
}

// runTask dispatches one queued task and routes any failure to the sink.
// The task is destroyed after its action completes; a failing action is
// never requeued.
func (s *Scheduler) runTask(t *task) {
	s.emit(StatusDispatch, t.kind, t.seq, nil)
	if err := s.call(t.action); err != nil {
		s.report(&TaskError{Err: err, Kind: t.kind, Seq: t.seq})
		return
	}
	s.emit(StatusFinish, t.kind, t.seq, nil)
}

// call invokes fn, converting a panic into a PanicError so that both failure
// modes follow the same policy.
func (s *Scheduler) call(fn Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r}
		}
	}()
	if fn == nil {
		return nil
	}
	return fn()
}

// report delivers a task fault to the configured sink, exactly once.
func (s *Scheduler) report(te *TaskError) {
	s.emit(StatusFault, te.Kind, te.Seq, te.Err)
	if s.sink != nil {
		s.sink(te)
	}
}

// logSink is the default error sink: faults land in the scheduler's
// structured log rather than crashing the host.
func (s *Scheduler) logSink(te *TaskError) {
	s.log.Error().
		Stringer("task", te.Kind).
		Uint64("seq", te.Seq).
		Bool("unhandled", te.Unhandled).
		Err(te.Err).
		Msg("task fault")
}

func (s *Scheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Scheduler) emit(kind StatusKind, tk TaskKind, seq uint64, err error) {
	now := s.clock.Now()

	s.log.Debug().
		Int64("now", now).
		Stringer("event", kind).
		Stringer("task", tk).
		Uint64("seq", seq).
		Err(err).
		Msg("scheduler event")

	// CSV output
	if s.csvWriter != nil {
		errStr := ""
		if err != nil {
			errStr = err.Error()
		}
		rec := []string{
			strconv.FormatInt(now, 10),
			kind.String(),
			tk.String(),
			strconv.FormatUint(seq, 10),
			errStr,
		}
		s.csvWriter.Write(rec)
		s.csvWriter.Flush()
	}
}

// timerKey is used as a key in the red-black tree.
type timerKey struct {
	due int64
	seq uint64
}

// timerCmp orders the timer queue by due time, then submission sequence.
func timerCmp(a, b any) int {
	ka, kb := a.(timerKey), b.(timerKey)
	switch {
	case ka.due < kb.due:
		return -1
	case ka.due > kb.due:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}
