package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsOnConsecutiveFailures(t *testing.T) {
	b := New("test", WithTripThreshold(3))

	assert.Equal(t, None, b.OnFailure())
	assert.Equal(t, None, b.OnFailure())
	assert.False(t, b.IsOpen())
	assert.Equal(t, Opened, b.OnFailure())
	assert.True(t, b.IsOpen())

	// Further failures while open are not new transitions.
	assert.Equal(t, None, b.OnFailure())
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := New("test", WithTripThreshold(3))

	b.OnFailure()
	b.OnFailure()
	b.OnSuccess()
	b.OnFailure()
	b.OnFailure()
	assert.False(t, b.IsOpen())
	assert.Equal(t, Opened, b.OnFailure())
}

func TestBreakerRestoresAfterConsecutiveSuccesses(t *testing.T) {
	b := New("test", WithTripThreshold(1), WithRestoreThreshold(2))

	assert.Equal(t, Opened, b.OnFailure())
	assert.Equal(t, None, b.OnSuccess())

	// A failure while open resets the recovery streak.
	b.OnFailure()
	assert.Equal(t, None, b.OnSuccess())
	assert.Equal(t, Closed, b.OnSuccess())
	assert.False(t, b.IsOpen())
}
