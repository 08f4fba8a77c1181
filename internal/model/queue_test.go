package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePairsInArrivalOrder(t *testing.T) {
	q := NewQueue()
	_, _, ok := q.GetNextPair()
	assert.False(t, ok)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.AddPlayer(Player{ID: id}))
	}
	assert.ErrorIs(t, q.AddPlayer(Player{ID: "b"}), ErrAlreadyQueued)

	p1, p2, ok := q.GetNextPair()
	require.True(t, ok)
	assert.Equal(t, "a", p1.ID)
	assert.Equal(t, "b", p2.ID)
	assert.Equal(t, 1, q.Size())

	_, _, ok = q.GetNextPair()
	assert.False(t, ok)
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.AddPlayer(Player{ID: "a"}))
	require.NoError(t, q.AddPlayer(Player{ID: "b"}))

	assert.True(t, q.Remove("a"))
	assert.False(t, q.Remove("a"))
	assert.Equal(t, 1, q.Size())
	require.NoError(t, q.AddPlayer(Player{ID: "a"}), "a removed player may queue again")
}
