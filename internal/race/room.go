package race

import (
	"errors"
	"time"
)

var ErrRoomFull = errors.New("room is full")
var ErrAlreadyInRoom = errors.New("participant already in room")
var ErrNotJoinable = errors.New("room is not joinable")
var ErrNotParticipant = errors.New("not a room participant")
var ErrNotRacing = errors.New("room is not racing")
var ErrBadTransition = errors.New("invalid state transition")

type State string

const (
	StateWaiting   State = "waiting"   // one participant, matchable
	StateActive    State = "active"    // full roster joined, pre-countdown
	StateCountdown State = "countdown" // everyone ready, countdown timer armed
	StateRacing    State = "racing"    // duration timer armed
	StateEnded     State = "ended"     // results broadcast, teardown timer armed
	StateClosed    State = "closed"    // terminal
)

// Room is one race instance. All fields are owned by the hub goroutine;
// nothing here is safe for concurrent use and nothing here performs I/O.
type Room struct {
	ID string
	// Private rooms come from lobby conversion and are skipped by the
	// matchmaking scan.
	Private bool
	// Participants is in join order. Index 0 is seat 0, which drives the
	// client's deterministic color assignment. The list is frozen once the
	// race starts.
	Participants []string
	MaxPlayers   int
	State        State
	Text         string
	Ready        map[string]bool
	StartedAt    time.Time // zero until racing
	Duration     time.Duration
	Progress     map[string]float64
	WPM          map[string]float64
	// FinishedOrder records participants in completion order, no duplicates.
	FinishedOrder []string
}

func NewRoom(id, text string, maxPlayers int, duration time.Duration) *Room {
	return &Room{
		ID:           id,
		MaxPlayers:   maxPlayers,
		State:        StateWaiting,
		Text:         text,
		Ready:        make(map[string]bool),
		Duration:     duration,
		Progress:     make(map[string]float64),
		WPM:          make(map[string]float64),
		Participants: []string{},
	}
}

func (r *Room) HasParticipant(id string) bool {
	for _, p := range r.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Join adds a participant to a waiting room. started reports whether the
// roster is now full, i.e. the room moved to StateActive.
func (r *Room) Join(id string) (started bool, err error) {
	if r.State != StateWaiting {
		return false, ErrNotJoinable
	}
	if r.HasParticipant(id) {
		return false, ErrAlreadyInRoom
	}
	if len(r.Participants) >= r.MaxPlayers {
		return false, ErrRoomFull
	}
	r.Participants = append(r.Participants, id)
	if len(r.Participants) == r.MaxPlayers {
		r.State = StateActive
		return true, nil
	}
	return false, nil
}

// Leave removes a participant before the race starts. The frozen-roster rule
// for racing rooms is enforced by the caller never routing a leave here once
// StateRacing is reached; mid-race departures force-end the room instead.
func (r *Room) Leave(id string) {
	for i, p := range r.Participants {
		if p == id {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			break
		}
	}
	delete(r.Ready, id)
	delete(r.Progress, id)
	delete(r.WPM, id)
}

// MarkReady records a ready signal. A repeated signal from the same
// participant is absorbed. allReady reports whether every current
// participant has now signaled.
func (r *Room) MarkReady(id string) (allReady bool, err error) {
	if r.State != StateActive {
		return false, ErrBadTransition
	}
	if !r.HasParticipant(id) {
		return false, ErrNotParticipant
	}
	r.Ready[id] = true
	return len(r.Ready) == len(r.Participants), nil
}

// ResetReady clears all ready signals, used when a departure knocks the room
// back out of the pre-countdown phase.
func (r *Room) ResetReady() {
	clear(r.Ready)
}

func (r *Room) BeginCountdown() error {
	if r.State != StateActive {
		return ErrBadTransition
	}
	r.State = StateCountdown
	return nil
}

func (r *Room) BeginRace(now time.Time) error {
	if r.State != StateCountdown {
		return ErrBadTransition
	}
	r.State = StateRacing
	r.StartedAt = now
	return nil
}

// RecordProgress stores a progress report, clamped to [0,100]. finishedNow
// is true only the first time a participant reaches 100; later reports for
// the same participant never re-append to FinishedOrder.
func (r *Room) RecordProgress(id string, progress float64) (finishedNow bool, err error) {
	if r.State != StateRacing {
		return false, ErrNotRacing
	}
	if !r.HasParticipant(id) {
		return false, ErrNotParticipant
	}
	progress = clampProgress(progress)
	r.Progress[id] = progress
	if progress < 100 {
		return false, nil
	}
	for _, f := range r.FinishedOrder {
		if f == id {
			return false, nil
		}
	}
	r.FinishedOrder = append(r.FinishedOrder, id)
	return true, nil
}

func (r *Room) RecordWPM(id string, wpm float64) error {
	if r.State != StateRacing {
		return ErrNotRacing
	}
	if !r.HasParticipant(id) {
		return ErrNotParticipant
	}
	if wpm < 0 {
		wpm = 0
	}
	r.WPM[id] = wpm
	return nil
}

func (r *Room) AllFinished() bool {
	return len(r.Participants) > 0 && len(r.FinishedOrder) == len(r.Participants)
}

// End flips the room to StateEnded. It is the idempotent end-guard: a room
// that already ended (or closed) reports false and the caller must not run
// end processing again, whether the trigger was a duplicate finish signal or
// a late duration timer.
func (r *Room) End() bool {
	if r.State == StateEnded || r.State == StateClosed {
		return false
	}
	r.State = StateEnded
	return true
}

func (r *Room) Close() {
	r.State = StateClosed
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
