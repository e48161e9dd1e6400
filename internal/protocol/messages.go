package protocol

import (
	"github.com/ShatadruM/MonkeRivals/internal/lobby"
)

// ClientMessage is the JSON envelope received from clients. Only the fields
// relevant to the given Type are populated; ParseCommand narrows it into a
// Command so the hub works with a closed set of kinds.
type ClientMessage struct {
	Type        string       `json:"type"`
	RoomID      string       `json:"roomId,omitempty"`
	Progress    float64      `json:"progress,omitempty"`
	WPM         float64      `json:"wpm,omitempty"`
	Stats       *FinishStats `json:"stats,omitempty"`
	GameCode    string       `json:"gameCode,omitempty"`
	DisplayName string       `json:"name,omitempty"`
}

// FinishStats is the final self-reported stat block sent with raceFinished.
// Accuracy is a pointer so an absent value stays absent instead of reading
// as a real 0%.
type FinishStats struct {
	WPM      float64  `json:"wpm"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Mistakes int      `json:"mistakes,omitempty"`
}

type CommandKind string

const (
	CmdRequestMatch   CommandKind = "requestMatch"
	CmdPlayerReady    CommandKind = "playerReady"
	CmdProgressUpdate CommandKind = "progressUpdate"
	CmdWPMUpdate      CommandKind = "wpmUpdate"
	CmdRaceFinished   CommandKind = "raceFinished"
	CmdCreateGame     CommandKind = "createGame"
	CmdJoinGame       CommandKind = "joinGame"
	CmdStartGame      CommandKind = "startGame"
	CmdLeaveGame      CommandKind = "leaveGame"
)

// Command is the parsed client->server message. Kind is always one of the
// Cmd* constants; unknown message types never produce a Command.
type Command struct {
	Kind        CommandKind
	RoomID      string
	Progress    float64
	WPM         float64
	Stats       *FinishStats
	GameCode    string
	DisplayName string
}

// ParseCommand validates the envelope's type against the catalog. The ws
// layer drops anything that doesn't parse, so the hub never sees an unknown
// kind.
func ParseCommand(m ClientMessage) (Command, bool) {
	switch CommandKind(m.Type) {
	case CmdRequestMatch:
		return Command{Kind: CmdRequestMatch}, true
	case CmdPlayerReady:
		return Command{Kind: CmdPlayerReady, RoomID: m.RoomID}, true
	case CmdProgressUpdate:
		return Command{Kind: CmdProgressUpdate, RoomID: m.RoomID, Progress: m.Progress}, true
	case CmdWPMUpdate:
		return Command{Kind: CmdWPMUpdate, RoomID: m.RoomID, WPM: m.WPM}, true
	case CmdRaceFinished:
		return Command{Kind: CmdRaceFinished, RoomID: m.RoomID, Stats: m.Stats}, true
	case CmdCreateGame:
		return Command{Kind: CmdCreateGame, DisplayName: m.DisplayName}, true
	case CmdJoinGame:
		return Command{Kind: CmdJoinGame, GameCode: m.GameCode, DisplayName: m.DisplayName}, true
	case CmdStartGame:
		return Command{Kind: CmdStartGame, GameCode: m.GameCode}, true
	case CmdLeaveGame:
		return Command{Kind: CmdLeaveGame, GameCode: m.GameCode}, true
	default:
		return Command{}, false
	}
}

type ServerEvent string

const (
	EvtWaitingForOpponent   ServerEvent = "waitingForOpponent"
	EvtMatchStart           ServerEvent = "matchStart"
	EvtAllPlayersReady      ServerEvent = "allPlayersReady"
	EvtRaceStart            ServerEvent = "raceStart"
	EvtProgressUpdates      ServerEvent = "progressUpdates"
	EvtPlayerFinished       ServerEvent = "playerFinished"
	EvtOpponentWPM          ServerEvent = "opponentWpm"
	EvtWPMUpdates           ServerEvent = "wpmUpdates"
	EvtRaceEnded            ServerEvent = "raceEnded"
	EvtOpponentDisconnected ServerEvent = "opponentDisconnected"
	EvtRoomClosed           ServerEvent = "roomClosed"
	EvtGameCreated          ServerEvent = "gameCreated"
	EvtPlayerJoined         ServerEvent = "playerJoined"
	EvtJoinError            ServerEvent = "joinError"
	EvtGameStart            ServerEvent = "gameStart"
)

// ServerMessage is the JSON envelope sent to clients. Data holds the typed
// payload for the event, or is omitted for signal-only events.
type ServerMessage struct {
	Type ServerEvent `json:"type"`
	Data any         `json:"data,omitempty"`
}

type WaitingPayload struct {
	RoomID string `json:"roomId"`
}

type MatchStartPayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
	// Participants is in join order; index 0 is seat 0.
	Participants []string `json:"participants"`
}

type RaceStartPayload struct {
	StartTime int64   `json:"startTime"` // unix millis
	Duration  float64 `json:"duration"`  // seconds
}

type ProgressSnapshotPayload struct {
	Progress map[string]float64 `json:"progress"`
}

type PlayerFinishedPayload struct {
	ParticipantID string  `json:"participantId"`
	Position      int     `json:"position"`
	WPM           float64 `json:"wpm"`
}

type OpponentWPMPayload struct {
	ParticipantID string   `json:"participantId"`
	WPM           float64  `json:"wpm"`
	Accuracy      *float64 `json:"accuracy,omitempty"`
	Finished      bool     `json:"finished,omitempty"`
}

type WPMSnapshotPayload struct {
	WPM map[string]float64 `json:"wpm"`
}

// raceEnded carries race.Results as its payload directly; see race.Results
// for the field set.

type GameCreatedPayload struct {
	GameCode string `json:"gameCode"`
}

type PlayerJoinedPayload struct {
	Participants []lobby.Participant `json:"participants"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}

type GameStartPayload struct {
	Text string `json:"text"`
}
