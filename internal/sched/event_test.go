package sched

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusKindString(t *testing.T) {
	assert.Equal(t, "Enqueued", StatusEnqueue.String())
	assert.Equal(t, "Dispatch", StatusDispatch.String())
	assert.Equal(t, "Finish", StatusFinish.String())
	assert.Equal(t, "Fault", StatusFault.String())
	assert.Equal(t, "Cancel", StatusCancel.String())
	assert.Equal(t, "Tick", StatusTick.String())
	assert.Equal(t, "Unknown", StatusKind(99).String())
}

func TestTaskKindString(t *testing.T) {
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "microtask", KindMicrotask.String())
	assert.Equal(t, "timer", KindTimer.String())
	assert.Equal(t, "frame", KindFrame.String())
}

func TestCSVTraceRecordsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")

	s := newTestScheduler()
	require.NoError(t, s.EnableCSVTrace(path))

	var got []string
	s.QueueMicrotask(log(&got, "m"))
	s.SetTimer(func() error { return errors.New("boom") }, 10)
	s.RunOneTick(10)
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"virtual_ms", "event", "task", "seq", "error"}, rows[0])

	var kinds []string
	for _, row := range rows[1:] {
		kinds = append(kinds, row[1])
	}
	assert.Contains(t, kinds, "Enqueued")
	assert.Contains(t, kinds, "Tick")
	assert.Contains(t, kinds, "Dispatch")
	assert.Contains(t, kinds, "Finish")
	assert.Contains(t, kinds, "Fault")
}

func TestCloseWithoutTraceIsNoop(t *testing.T) {
	s := newTestScheduler()
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
