package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSteppingClock(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("ICT", 7*3600))
	clock := NewSteppingClock(start, 2*time.Second)

	assert.True(t, clock.Peek().Equal(start))
	first := clock.Now()
	second := clock.Now()
	assert.Equal(t, time.UTC, first.Location())
	assert.Equal(t, 2*time.Second, second.Sub(first))
	assert.True(t, clock.Peek().Equal(start.Add(4*time.Second)))
}
