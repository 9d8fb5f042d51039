package catalog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Reports(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 300, 100)

	tracker.Start()
	tracker.Update(50)
	assert.Empty(t, buf.String(), "below the interval nothing is written")

	tracker.Update(100)
	assert.Contains(t, buf.String(), "100/300")

	tracker.Update(500)
	assert.InDelta(t, 100.0, tracker.Percent(), 1e-9, "updates are capped at the total")

	tracker.Finish()
	out := buf.String()
	assert.Contains(t, out, "300/300 (100.0%)")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Update(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_NilWriter(t *testing.T) {
	tracker := NewProgressTracker(nil, 10, 0)
	tracker.Start()
	assert.NotPanics(t, func() {
		tracker.Update(3)
		tracker.Finish()
	})
}
