package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusDelivered, StatusAggregating))
	assert.True(t, CanTransition(StatusAggregating, StatusAggregated))

	// One-way: no path back, no skipping, no self-transition.
	assert.False(t, CanTransition(StatusAggregated, StatusAggregating))
	assert.False(t, CanTransition(StatusAggregated, StatusDelivered))
	assert.False(t, CanTransition(StatusDelivered, StatusAggregated))
	assert.False(t, CanTransition(StatusAggregating, StatusAggregating))
}
