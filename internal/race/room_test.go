package race

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeRoom(t *testing.T) *Room {
	t.Helper()
	r := NewRoom("r1", "some passage", 2, time.Minute)
	_, err := r.Join("a")
	require.NoError(t, err)
	started, err := r.Join("b")
	require.NoError(t, err)
	require.True(t, started)
	require.Equal(t, StateActive, r.State)
	return r
}

func racingRoom(t *testing.T) *Room {
	t.Helper()
	r := activeRoom(t)
	for _, id := range []string{"a", "b"} {
		_, err := r.MarkReady(id)
		require.NoError(t, err)
	}
	require.NoError(t, r.BeginCountdown())
	require.NoError(t, r.BeginRace(time.Now()))
	return r
}

func TestJoin_OrderAndStateFlip(t *testing.T) {
	r := NewRoom("r1", "text", 2, time.Minute)

	started, err := r.Join("first")
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, StateWaiting, r.State)

	started, err = r.Join("second")
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, StateActive, r.State)
	// join order is seat order
	assert.Equal(t, []string{"first", "second"}, r.Participants)
}

func TestJoin_Rejections(t *testing.T) {
	r := NewRoom("r1", "text", 2, time.Minute)
	_, _ = r.Join("a")

	_, err := r.Join("a")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	_, _ = r.Join("b")
	_, err = r.Join("c")
	assert.ErrorIs(t, err, ErrNotJoinable) // active rooms take no joins
}

func TestMarkReady_AllReadyOnlyWhenEveryoneSignaled(t *testing.T) {
	r := activeRoom(t)

	all, err := r.MarkReady("a")
	require.NoError(t, err)
	assert.False(t, all)

	// duplicate signal is absorbed
	all, err = r.MarkReady("a")
	require.NoError(t, err)
	assert.False(t, all)

	all, err = r.MarkReady("b")
	require.NoError(t, err)
	assert.True(t, all)
}

func TestMarkReady_OutsideActiveState(t *testing.T) {
	r := NewRoom("r1", "text", 2, time.Minute)
	_, _ = r.Join("a")

	_, err := r.MarkReady("a")
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestRecordProgress_Clamps(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative clamps to zero", -5, 0},
		{"in range passes through", 42.5, 42.5},
		{"exactly 100", 100, 100},
		{"over range clamps to 100", 150, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := racingRoom(t)
			_, err := r.RecordProgress("a", tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.Progress["a"])
		})
	}
}

func TestRecordProgress_FirstFinishOnly(t *testing.T) {
	r := racingRoom(t)

	finished, err := r.RecordProgress("a", 100)
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, []string{"a"}, r.FinishedOrder)

	finished, err = r.RecordProgress("a", 100)
	require.NoError(t, err)
	assert.False(t, finished)
	assert.Equal(t, []string{"a"}, r.FinishedOrder)

	finished, err = r.RecordProgress("b", 120)
	require.NoError(t, err)
	assert.True(t, finished)
	assert.Equal(t, []string{"a", "b"}, r.FinishedOrder)
	assert.True(t, r.AllFinished())
}

func TestRecordProgress_RequiresRacingState(t *testing.T) {
	r := activeRoom(t)
	_, err := r.RecordProgress("a", 50)
	assert.ErrorIs(t, err, ErrNotRacing)

	_, err = racingRoom(t).RecordProgress("ghost", 50)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestRecordWPM_FloorsNegative(t *testing.T) {
	r := racingRoom(t)
	require.NoError(t, r.RecordWPM("a", -3))
	assert.Equal(t, 0.0, r.WPM["a"])

	require.NoError(t, r.RecordWPM("a", 88))
	assert.Equal(t, 88.0, r.WPM["a"])
}

func TestEnd_GuardIsIdempotent(t *testing.T) {
	r := racingRoom(t)

	assert.True(t, r.End())
	assert.Equal(t, StateEnded, r.State)

	// a late duration timer or duplicate finish must not re-run end
	assert.False(t, r.End())

	r.Close()
	assert.False(t, r.End())
}

func TestLeave_ClearsParticipantState(t *testing.T) {
	r := activeRoom(t)
	_, err := r.MarkReady("b")
	require.NoError(t, err)

	r.Leave("b")
	r.ResetReady()

	assert.Equal(t, []string{"a"}, r.Participants)
	assert.Empty(t, r.Ready)
	assert.False(t, r.HasParticipant("b"))
}

func TestBeginRace_RequiresCountdown(t *testing.T) {
	r := activeRoom(t)
	assert.ErrorIs(t, r.BeginRace(time.Now()), ErrBadTransition)

	require.NoError(t, r.BeginCountdown())
	now := time.Now()
	require.NoError(t, r.BeginRace(now))
	assert.Equal(t, StateRacing, r.State)
	assert.Equal(t, now, r.StartedAt)

	// stale countdown fire against a racing room
	assert.ErrorIs(t, r.BeginRace(time.Now()), ErrBadTransition)
}
