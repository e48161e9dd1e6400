// Package hub runs the coordination loop. A single goroutine owns the
// connection registry, the room store and the lobby table; every client
// command, disconnect and timer fire enters through one inbox and is handled
// run-to-completion, so compound read-modify-write sequences against the
// shared tables never interleave.
package hub

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShatadruM/MonkeRivals/internal/lobby"
	"github.com/ShatadruM/MonkeRivals/internal/profile"
	"github.com/ShatadruM/MonkeRivals/internal/protocol"
	"github.com/ShatadruM/MonkeRivals/internal/race"
	"github.com/ShatadruM/MonkeRivals/internal/registry"
	"github.com/ShatadruM/MonkeRivals/internal/texts"
)

// Quick matchmaking always pairs exactly two racers. Private lobbies size
// their rooms from the roster instead.
const quickMatchSize = 2

type Config struct {
	CountdownDelay time.Duration
	RaceDuration   time.Duration
	TeardownDelay  time.Duration
}

func (c Config) withDefaults() Config {
	if c.CountdownDelay <= 0 {
		c.CountdownDelay = 3 * time.Second
	}
	if c.RaceDuration <= 0 {
		c.RaceDuration = 60 * time.Second
	}
	if c.TeardownDelay <= 0 {
		c.TeardownDelay = 5 * time.Second
	}
	return c
}

type roomTimers struct {
	countdown *time.Timer
	duration  *time.Timer
	teardown  *time.Timer
}

func (t *roomTimers) stopAll() {
	for _, tm := range []*time.Timer{t.countdown, t.duration, t.teardown} {
		if tm != nil {
			tm.Stop()
		}
	}
}

type Hub struct {
	inbox    chan Msg
	reg      *registry.Registry
	rooms    *race.Store
	lobbies  *lobby.Manager
	texts    texts.Source
	profiles profile.Store
	cfg      Config
	timers   map[string]*roomTimers
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, cfg Config, src texts.Source, profiles profile.Store, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan Msg, 64),
		reg:      registry.New(),
		rooms:    race.NewStore(),
		lobbies:  lobby.NewManager(),
		texts:    src,
		profiles: profiles,
		cfg:      cfg.withDefaults(),
		timers:   make(map[string]*roomTimers),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				h.reg.Register(msg.ConnID, msg.Outbox)

			case Disconnect:
				h.handleDisconnect(msg.ConnID)

			case FromClient:
				h.handleCommand(msg.ConnID, msg.Cmd)

			case countdownFired:
				h.onCountdown(msg.RoomID)

			case durationElapsed:
				h.onDurationElapsed(msg.RoomID)

			case teardownDue:
				h.onTeardown(msg.RoomID)

			case InspectRoom:
				msg.Reply <- h.roomView(msg.RoomID)

			case InspectLobby:
				msg.Reply <- h.lobbyView(msg.Code)

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, t := range h.timers {
		t.stopAll()
		delete(h.timers, id)
	}
	h.cancel()
}

// post re-enters the loop from a timer goroutine.
func (h *Hub) post(m Msg) {
	select {
	case h.inbox <- m:
	case <-h.ctx.Done():
	}
}

func (h *Hub) handleCommand(connID string, cmd protocol.Command) {
	c, ok := h.reg.Get(connID)
	if !ok {
		return
	}
	switch cmd.Kind {
	case protocol.CmdRequestMatch:
		h.requestMatch(c)
	case protocol.CmdPlayerReady:
		h.playerReady(c, cmd.RoomID)
	case protocol.CmdProgressUpdate:
		h.progressUpdate(c, cmd.RoomID, cmd.Progress)
	case protocol.CmdWPMUpdate:
		h.wpmUpdate(c, cmd.RoomID, cmd.WPM)
	case protocol.CmdRaceFinished:
		h.raceFinished(c, cmd.RoomID, cmd.Stats)
	case protocol.CmdCreateGame:
		h.createGame(c, cmd.DisplayName)
	case protocol.CmdJoinGame:
		h.joinGame(c, cmd.GameCode, cmd.DisplayName)
	case protocol.CmdStartGame:
		h.startGame(c, cmd.GameCode)
	case protocol.CmdLeaveGame:
		h.leaveGame(c, cmd.GameCode)
	}
}

// ---- matchmaking ----

// requestMatch scans for an open room and joins it, or opens a fresh one.
// Scan and mutation happen back to back on the loop goroutine, so two
// concurrent requests can never claim the same slot.
func (h *Hub) requestMatch(c *registry.Conn) {
	if c.Ref != nil {
		// at most one active room or lobby per participant
		return
	}
	if r := h.rooms.FindOpen(); r != nil {
		started, err := r.Join(c.ID)
		if err != nil {
			h.log.Warn("matchmaking join failed", zap.String("room", r.ID), zap.Error(err))
			return
		}
		h.reg.Associate(c.ID, registry.Ref{Kind: registry.RefRoom, ID: r.ID})
		if started {
			h.log.Info("match started",
				zap.String("room", r.ID),
				zap.Strings("participants", r.Participants))
			h.broadcast(r, protocol.ServerMessage{
				Type: protocol.EvtMatchStart,
				Data: protocol.MatchStartPayload{
					RoomID:       r.ID,
					Text:         r.Text,
					Participants: slices.Clone(r.Participants),
				},
			})
		}
		return
	}

	r := race.NewRoom("room_"+uuid.NewString(), h.texts.Passage(), quickMatchSize, h.cfg.RaceDuration)
	if _, err := r.Join(c.ID); err != nil {
		return
	}
	h.rooms.Add(r)
	h.reg.Associate(c.ID, registry.Ref{Kind: registry.RefRoom, ID: r.ID})
	h.log.Info("room created", zap.String("room", r.ID), zap.String("conn", c.ID))
	h.send(c.ID, protocol.ServerMessage{
		Type: protocol.EvtWaitingForOpponent,
		Data: protocol.WaitingPayload{RoomID: r.ID},
	})
}

// ---- ready / countdown / racing ----

func (h *Hub) playerReady(c *registry.Conn, roomID string) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	allReady, err := r.MarkReady(c.ID)
	if err != nil || !allReady {
		return
	}
	h.broadcast(r, protocol.ServerMessage{Type: protocol.EvtAllPlayersReady})
	if err := r.BeginCountdown(); err != nil {
		return
	}
	h.log.Info("countdown started", zap.String("room", r.ID))
	id := r.ID
	h.timersFor(id).countdown = time.AfterFunc(h.cfg.CountdownDelay, func() {
		h.post(countdownFired{RoomID: id})
	})
}

func (h *Hub) onCountdown(roomID string) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	if err := r.BeginRace(time.Now()); err != nil {
		// stale fire; the room moved on
		return
	}
	h.log.Info("race started", zap.String("room", r.ID))
	h.broadcast(r, protocol.ServerMessage{
		Type: protocol.EvtRaceStart,
		Data: protocol.RaceStartPayload{
			StartTime: r.StartedAt.UnixMilli(),
			Duration:  r.Duration.Seconds(),
		},
	})
	h.timersFor(roomID).duration = time.AfterFunc(r.Duration, func() {
		h.post(durationElapsed{RoomID: roomID})
	})
}

func (h *Hub) onDurationElapsed(roomID string) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	if r.State != race.StateRacing {
		return
	}
	h.endRace(r, "duration elapsed")
}

// ---- progress & telemetry relay ----

func (h *Hub) progressUpdate(c *registry.Conn, roomID string, progress float64) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	finishedNow, err := r.RecordProgress(c.ID, progress)
	if err != nil {
		return
	}
	// Full snapshot, not a delta: any client can reconcile from the latest
	// broadcast regardless of what it missed.
	h.broadcast(r, protocol.ServerMessage{
		Type: protocol.EvtProgressUpdates,
		Data: protocol.ProgressSnapshotPayload{Progress: maps.Clone(r.Progress)},
	})
	if finishedNow {
		h.participantFinished(c, r)
	}
}

func (h *Hub) wpmUpdate(c *registry.Conn, roomID string, wpm float64) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	if err := r.RecordWPM(c.ID, wpm); err != nil {
		return
	}
	h.sendToOthers(r, c.ID, protocol.ServerMessage{
		Type: protocol.EvtOpponentWPM,
		Data: protocol.OpponentWPMPayload{ParticipantID: c.ID, WPM: r.WPM[c.ID]},
	})
	h.broadcast(r, protocol.ServerMessage{
		Type: protocol.EvtWPMUpdates,
		Data: protocol.WPMSnapshotPayload{WPM: maps.Clone(r.WPM)},
	})
}

func (h *Hub) raceFinished(c *registry.Conn, roomID string, stats *protocol.FinishStats) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	if stats != nil {
		c.Accuracy = stats.Accuracy
		_ = r.RecordWPM(c.ID, stats.WPM)
	}
	finishedNow, err := r.RecordProgress(c.ID, 100)
	if err != nil {
		return
	}
	h.broadcast(r, protocol.ServerMessage{
		Type: protocol.EvtProgressUpdates,
		Data: protocol.ProgressSnapshotPayload{Progress: maps.Clone(r.Progress)},
	})
	if !finishedNow {
		// duplicate finish signal, absorbed
		return
	}
	h.sendToOthers(r, c.ID, protocol.ServerMessage{
		Type: protocol.EvtOpponentWPM,
		Data: protocol.OpponentWPMPayload{
			ParticipantID: c.ID,
			WPM:           r.WPM[c.ID],
			Accuracy:      c.Accuracy,
			Finished:      true,
		},
	})
	h.participantFinished(c, r)
}

// participantFinished runs the first-finish bookkeeping shared by the
// progress path and the explicit raceFinished path.
func (h *Hub) participantFinished(c *registry.Conn, r *race.Room) {
	h.log.Info("participant finished",
		zap.String("room", r.ID),
		zap.String("conn", c.ID),
		zap.Int("position", len(r.FinishedOrder)))
	h.broadcast(r, protocol.ServerMessage{
		Type: protocol.EvtPlayerFinished,
		Data: protocol.PlayerFinishedPayload{
			ParticipantID: c.ID,
			Position:      len(r.FinishedOrder),
			WPM:           r.WPM[c.ID],
		},
	})
	if r.AllFinished() {
		h.endRace(r, "all participants finished")
	}
}

// ---- results & teardown ----

func (h *Hub) endRace(r *race.Room, reason string) {
	if !r.End() {
		return
	}
	if t := h.timers[r.ID]; t != nil && t.duration != nil {
		t.duration.Stop()
	}
	results := race.ComputeResults(r, h.accuracyOf, time.Now())
	h.log.Info("race ended",
		zap.String("room", r.ID),
		zap.String("reason", reason),
		zap.String("winner", results.Winner))
	h.broadcast(r, protocol.ServerMessage{Type: protocol.EvtRaceEnded, Data: results})
	go func() {
		if err := h.profiles.RecordRace(h.ctx, r.ID, results); err != nil {
			h.log.Warn("profile store rejected results", zap.String("room", r.ID), zap.Error(err))
		}
	}()
	id := r.ID
	h.timersFor(id).teardown = time.AfterFunc(h.cfg.TeardownDelay, func() {
		h.post(teardownDue{RoomID: id})
	})
}

func (h *Hub) accuracyOf(id string) *float64 {
	if c, ok := h.reg.Get(id); ok {
		return c.Accuracy
	}
	return nil
}

func (h *Hub) onTeardown(roomID string) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	if r.State != race.StateEnded {
		return
	}
	h.closeRoom(r)
}

func (h *Hub) closeRoom(r *race.Room) {
	r.Close()
	h.broadcast(r, protocol.ServerMessage{Type: protocol.EvtRoomClosed})
	for _, id := range r.Participants {
		h.reg.Dissociate(id)
	}
	if t := h.timers[r.ID]; t != nil {
		t.stopAll()
	}
	delete(h.timers, r.ID)
	h.rooms.Remove(r.ID)
	if r.Private {
		h.lobbies.Remove(r.ID)
	}
	h.log.Info("room closed", zap.String("room", r.ID))
}

// ---- disconnects ----

func (h *Hub) handleDisconnect(connID string) {
	ref, ok := h.reg.OnDisconnect(connID)
	if !ok {
		return
	}
	switch ref.Kind {
	case registry.RefRoom:
		h.roomDeparture(connID, ref.ID)
	case registry.RefLobby:
		h.lobbyDeparture(connID, ref.ID)
	}
}

func (h *Hub) roomDeparture(connID, roomID string) {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}
	switch r.State {
	case race.StateRacing:
		h.broadcast(r, protocol.ServerMessage{Type: protocol.EvtOpponentDisconnected})
		h.endRace(r, "participant disconnected")

	case race.StateWaiting, race.StateActive, race.StateCountdown:
		if r.State == race.StateCountdown {
			if t := h.timers[r.ID]; t != nil && t.countdown != nil {
				t.countdown.Stop()
			}
		}
		r.Leave(connID)
		r.ResetReady()
		if r.Private {
			// keep the lobby roster and its host flag in sync
			h.lobbyDeparture(connID, roomID)
		}
		if len(r.Participants) == 0 {
			h.closeRoom(r)
			return
		}
		if len(r.Participants) >= 2 {
			r.State = race.StateActive
			return
		}
		r.State = race.StateWaiting
		if !r.Private {
			// survivor is matchable again
			h.broadcast(r, protocol.ServerMessage{
				Type: protocol.EvtWaitingForOpponent,
				Data: protocol.WaitingPayload{RoomID: r.ID},
			})
		}

	case race.StateEnded, race.StateClosed:
		// teardown timer owns the rest
	}
}

// ---- private lobbies ----

func (h *Hub) createGame(c *registry.Conn, displayName string) {
	if c.Ref != nil {
		return
	}
	l, err := h.lobbies.Create(c.ID, displayName, h.texts.Passage())
	if err != nil {
		h.log.Error("lobby create failed", zap.Error(err))
		return
	}
	h.reg.Associate(c.ID, registry.Ref{Kind: registry.RefLobby, ID: l.Code})
	h.log.Info("lobby created", zap.String("code", l.Code), zap.String("host", c.ID))
	h.send(c.ID, protocol.ServerMessage{
		Type: protocol.EvtGameCreated,
		Data: protocol.GameCreatedPayload{GameCode: l.Code},
	})
}

func (h *Hub) joinGame(c *registry.Conn, code, displayName string) {
	if c.Ref != nil {
		return
	}
	l, err := h.lobbies.Join(code, c.ID, displayName)
	switch {
	case errors.Is(err, lobby.ErrNotFound):
		h.send(c.ID, joinError("Game not found"))
		return
	case errors.Is(err, lobby.ErrAlreadyStarted):
		h.send(c.ID, joinError("Game already started"))
		return
	case err != nil:
		return
	}
	h.reg.Associate(c.ID, registry.Ref{Kind: registry.RefLobby, ID: l.Code})
	h.broadcastLobby(l, rosterUpdate(l))
}

func (h *Hub) startGame(c *registry.Conn, code string) {
	l, err := h.lobbies.Start(code, c.ID)
	if err != nil {
		// host-only violations and early starts are silently ignored so a
		// probe can't learn whether the code exists
		return
	}
	r := race.NewRoom(l.Code, l.Text, len(l.Participants), h.cfg.RaceDuration)
	r.Private = true
	for _, id := range l.ParticipantIDs() {
		if _, err := r.Join(id); err != nil {
			h.log.Error("lobby conversion failed", zap.String("code", l.Code), zap.Error(err))
			return
		}
	}
	h.rooms.Add(r)
	for _, id := range r.Participants {
		h.reg.Associate(id, registry.Ref{Kind: registry.RefRoom, ID: r.ID})
	}
	h.log.Info("lobby race starting",
		zap.String("code", l.Code),
		zap.Int("participants", len(r.Participants)))
	h.broadcast(r, protocol.ServerMessage{
		Type: protocol.EvtGameStart,
		Data: protocol.GameStartPayload{Text: l.Text},
	})
}

func (h *Hub) leaveGame(c *registry.Conn, code string) {
	// only detach a connection from the lobby it actually sits in; a bogus
	// or stale code must not strip a race-room affiliation
	if c.Ref == nil || c.Ref.Kind != registry.RefLobby || c.Ref.ID != code {
		return
	}
	h.reg.Dissociate(c.ID)
	h.lobbyDeparture(c.ID, code)
}

func (h *Hub) lobbyDeparture(connID, code string) {
	l, hostChanged, removed := h.lobbies.Leave(code, connID)
	if l == nil || removed {
		return
	}
	if hostChanged {
		if host, ok := l.Host(); ok {
			h.log.Info("host handed off", zap.String("code", code), zap.String("host", host.ID))
		}
	}
	h.broadcastLobby(l, rosterUpdate(l))
}

// ---- outbound ----

func joinError(message string) protocol.ServerMessage {
	return protocol.ServerMessage{
		Type: protocol.EvtJoinError,
		Data: protocol.JoinErrorPayload{Message: message},
	}
}

func rosterUpdate(l *lobby.Lobby) protocol.ServerMessage {
	return protocol.ServerMessage{
		Type: protocol.EvtPlayerJoined,
		Data: protocol.PlayerJoinedPayload{Participants: slices.Clone(l.Participants)},
	}
}

// send delivers without blocking the loop; a full outbox drops the message.
// The snapshot broadcast strategy bounds the resulting staleness to the next
// tick.
func (h *Hub) send(connID string, msg protocol.ServerMessage) {
	c, ok := h.reg.Get(connID)
	if !ok {
		return
	}
	select {
	case c.Outbox <- msg:
	default:
		h.log.Warn("outbox full, dropping message",
			zap.String("conn", connID),
			zap.String("event", string(msg.Type)))
	}
}

func (h *Hub) broadcast(r *race.Room, msg protocol.ServerMessage) {
	for _, id := range r.Participants {
		h.send(id, msg)
	}
}

func (h *Hub) sendToOthers(r *race.Room, exceptID string, msg protocol.ServerMessage) {
	for _, id := range r.Participants {
		if id != exceptID {
			h.send(id, msg)
		}
	}
}

func (h *Hub) broadcastLobby(l *lobby.Lobby, msg protocol.ServerMessage) {
	for _, p := range l.Participants {
		h.send(p.ID, msg)
	}
}

func (h *Hub) timersFor(roomID string) *roomTimers {
	t, ok := h.timers[roomID]
	if !ok {
		t = &roomTimers{}
		h.timers[roomID] = t
	}
	return t
}

// ---- test probes ----

func (h *Hub) roomView(roomID string) RoomView {
	r, ok := h.rooms.Get(roomID)
	if !ok {
		return RoomView{}
	}
	return RoomView{
		Exists:        true,
		State:         r.State,
		Participants:  slices.Clone(r.Participants),
		FinishedOrder: slices.Clone(r.FinishedOrder),
		Progress:      maps.Clone(r.Progress),
		WPM:           maps.Clone(r.WPM),
	}
}

func (h *Hub) lobbyView(code string) LobbyView {
	l, ok := h.lobbies.Get(code)
	if !ok {
		return LobbyView{}
	}
	return LobbyView{
		Exists:       true,
		Active:       l.Active,
		Participants: slices.Clone(l.Participants),
	}
}
