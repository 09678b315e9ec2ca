package sched

type deferredState int

const (
	statePending deferredState = iota
	stateResolved
	stateRejected
)

// Deferred is a one-shot completion. Handlers attached with Then and Catch
// run as microtasks once the value is ready, which is how "await" is
// modelled here: the code before the suspension runs synchronously, and the
// continuation is a microtask submitted when the awaited value settles.
//
// A rejection with no Catch handler attached by the time the drain reaches
// the rejection's check microtask is reported to the scheduler's error sink
// as an unhandled rejection, distinct from an ordinary task fault.
type Deferred struct {
	s        *Scheduler
	value    any
	err      error
	onValue  []func(v any) error
	onError  []func(err error) error
	state    deferredState
	hasCatch bool
}

// NewDeferred creates a pending Deferred bound to this scheduler.
func (s *Scheduler) NewDeferred() *Deferred {
	return &Deferred{s: s}
}

// Then registers fn to run as a microtask once the deferred resolves.
// If already resolved, fn is queued immediately. An error returned by fn is
// an ordinary microtask fault; it is not routed to Catch handlers.
func (d *Deferred) Then(fn func(v any) error) *Deferred {
	if fn == nil {
		return d
	}
	switch d.state {
	case statePending:
		d.onValue = append(d.onValue, fn)
	case stateResolved:
		v := d.value
		d.s.QueueMicrotask(func() error { return fn(v) })
	}
	return d
}

// Catch registers fn to run as a microtask if the deferred rejects.
// Attaching a Catch handler, even after rejection, marks the rejection as
// handled.
func (d *Deferred) Catch(fn func(err error) error) *Deferred {
	if fn == nil {
		return d
	}
	d.hasCatch = true
	switch d.state {
	case statePending:
		d.onError = append(d.onError, fn)
	case stateRejected:
		err := d.err
		d.s.QueueMicrotask(func() error { return fn(err) })
	}
	return d
}

// Resolve settles the deferred with v and queues all Then handlers as
// microtasks in attachment order. The first settle wins; later calls to
// Resolve or Reject are no-ops.
func (d *Deferred) Resolve(v any) {
	if d.state != statePending {
		return
	}
	d.state = stateResolved
	d.value = v
	for _, fn := range d.onValue {
		fn := fn
		d.s.QueueMicrotask(func() error { return fn(v) })
	}
	d.onValue, d.onError = nil, nil
}

// Reject settles the deferred with err and queues all Catch handlers as
// microtasks in attachment order. If no Catch handler exists, a check
// microtask is queued; a handler attached before the drain reaches it still
// counts as handling the rejection.
func (d *Deferred) Reject(err error) {
	if d.state != statePending {
		return
	}
	d.state = stateRejected
	d.err = err
	for _, fn := range d.onError {
		fn := fn
		d.s.QueueMicrotask(func() error { return fn(err) })
	}
	d.onValue, d.onError = nil, nil

	if d.hasCatch {
		return
	}
	var seq uint64
	seq = d.s.enqueueMicro(func() error {
		if !d.hasCatch {
			d.s.report(&TaskError{Err: err, Kind: KindMicrotask, Seq: seq, Unhandled: true})
		}
		return nil
	})
}
