package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsedFloorsToSeconds(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	got, anomalous := Elapsed(start, start.Add(125*time.Second+999*time.Millisecond), 0)
	assert.EqualValues(t, 125, got)
	assert.False(t, anomalous)

	got, anomalous = Elapsed(start, start.Add(400*time.Millisecond), 0)
	assert.EqualValues(t, 0, got)
	assert.False(t, anomalous)
}

func TestElapsedClampsAnomalies(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	got, anomalous := Elapsed(start, start.Add(-3*time.Second), 0)
	assert.EqualValues(t, 0, got)
	assert.True(t, anomalous)

	got, anomalous = Elapsed(start, start.Add(49*time.Hour), 48*time.Hour)
	assert.EqualValues(t, 0, got)
	assert.True(t, anomalous)

	got, anomalous = Elapsed(start, start.Add(48*time.Hour), 48*time.Hour)
	assert.EqualValues(t, 48*3600, got)
	assert.False(t, anomalous)
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	c := NewManual(start)
	assert.Equal(t, start.Add(time.Minute), c.Advance(time.Minute))
	c.Set(start)
	assert.Equal(t, start, c.Now())
}
