package race

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CRUD(t *testing.T) {
	s := NewStore()
	r := NewRoom("r1", "text", 2, time.Minute)
	s.Add(r)

	got, ok := s.Get("r1")
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Equal(t, 1, s.Len())

	s.Remove("r1")
	_, ok = s.Get("r1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestFindOpen_ReturnsOnlyMatchableRooms(t *testing.T) {
	s := NewStore()

	assert.Nil(t, s.FindOpen())

	full := NewRoom("full", "text", 2, time.Minute)
	_, _ = full.Join("a")
	_, _ = full.Join("b")
	s.Add(full)

	private := NewRoom("private", "text", 2, time.Minute)
	private.Private = true
	_, _ = private.Join("c")
	s.Add(private)

	assert.Nil(t, s.FindOpen())

	open := NewRoom("open", "text", 2, time.Minute)
	_, _ = open.Join("d")
	s.Add(open)

	found := s.FindOpen()
	require.NotNil(t, found)
	assert.Equal(t, "open", found.ID)
}
