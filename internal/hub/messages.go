package hub

import (
	"github.com/ShatadruM/MonkeRivals/internal/lobby"
	"github.com/ShatadruM/MonkeRivals/internal/protocol"
	"github.com/ShatadruM/MonkeRivals/internal/race"
)

type Msg interface{ isHubMsg() }

// Connect registers a live connection and the outbox its ws writer drains.
type Connect struct {
	ConnID string
	Outbox chan protocol.ServerMessage
}

type Disconnect struct{ ConnID string }

// FromClient carries one parsed client command into the loop.
type FromClient struct {
	ConnID string
	Cmd    protocol.Command
}

type Shutdown struct{}

// Timer fires re-enter the loop as ordinary messages so every state
// mutation stays on the one goroutine. Handlers re-check room existence and
// state; a stale fire against a room that moved on is dropped.
type countdownFired struct{ RoomID string }
type durationElapsed struct{ RoomID string }
type teardownDue struct{ RoomID string }

// InspectRoom reflects room state without data races; test-only.
type InspectRoom struct {
	RoomID string
	Reply  chan RoomView
}

type RoomView struct {
	Exists        bool
	State         race.State
	Participants  []string
	FinishedOrder []string
	Progress      map[string]float64
	WPM           map[string]float64
}

// InspectLobby reflects lobby state without data races; test-only.
type InspectLobby struct {
	Code  string
	Reply chan LobbyView
}

type LobbyView struct {
	Exists       bool
	Active       bool
	Participants []lobby.Participant
}

func (Connect) isHubMsg()         {}
func (Disconnect) isHubMsg()      {}
func (FromClient) isHubMsg()      {}
func (Shutdown) isHubMsg()        {}
func (countdownFired) isHubMsg()  {}
func (durationElapsed) isHubMsg() {}
func (teardownDue) isHubMsg()     {}
func (InspectRoom) isHubMsg()     {}
func (InspectLobby) isHubMsg()    {}
