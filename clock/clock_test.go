package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())

	loc := time.FixedZone("UTC+2", 2*60*60)
	c.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, loc))
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.Equal(t, 10, c.Now().Hour())
}

func TestRealClock_UTC(t *testing.T) {
	assert.Equal(t, time.UTC, NewRealClock().Now().Location())
}
