package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderOrder(t *testing.T) {
	r := NewRecorder()
	r.Record("a")
	require.NoError(t, r.Log("b")())
	require.NoError(t, r.Logf("c%d", 1)())

	assert.Equal(t, []string{"a", "b", "c1"}, r.Labels())
}

func TestFailRecordsBeforeFailing(t *testing.T) {
	r := NewRecorder()
	boom := errors.New("boom")

	err := r.Fail("x", boom)()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"x"}, r.Labels())
}

func TestPanics(t *testing.T) {
	assert.PanicsWithValue(t, "bad", func() {
		_ = Panics("bad")()
	})
}
