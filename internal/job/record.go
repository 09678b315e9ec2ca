package job

import (
	"fmt"

	"tickloop/internal/sched"
)

// Recorder collects labels in execution order. It is the observable side
// effect used by the demo driver and the tests: every action appends its
// label when (and only when) the scheduler actually runs it.
type Recorder struct {
	labels []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a label immediately.
func (r *Recorder) Record(label string) {
	r.labels = append(r.labels, label)
}

// Log returns an action that records label when it runs.
func (r *Recorder) Log(label string) sched.Action {
	return func() error {
		r.Record(label)
		return nil
	}
}

// Logf is Log with a format string.
func (r *Recorder) Logf(format string, args ...any) sched.Action {
	return r.Log(fmt.Sprintf(format, args...))
}

// Fail returns an action that records label and then fails with err.
func (r *Recorder) Fail(label string, err error) sched.Action {
	return func() error {
		r.Record(label)
		return err
	}
}

// Labels returns the labels recorded so far.
func (r *Recorder) Labels() []string {
	return r.labels
}

// Panics returns an action that panics with v.
func Panics(v any) sched.Action {
	return func() error {
		panic(v)
	}
}
