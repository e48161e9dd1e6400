package lobby

import "errors"

var ErrNotFound = errors.New("game not found")
var ErrAlreadyStarted = errors.New("game already started")
var ErrAlreadyJoined = errors.New("already in this game")
var ErrNotHost = errors.New("only the host can start the game")
var ErrNotEnoughPlayers = errors.New("need at least two players")

type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Lobby is a private pre-race gathering joined by code. Participants keep
// join order; while the lobby is non-empty exactly one of them is host, and
// when the host leaves the next-oldest participant is promoted.
type Lobby struct {
	Code         string
	Participants []Participant
	Active       bool // set when the host starts the race
	Text         string
}

func (l *Lobby) Host() (Participant, bool) {
	for _, p := range l.Participants {
		if p.IsHost {
			return p, true
		}
	}
	return Participant{}, false
}

func (l *Lobby) HasParticipant(id string) bool {
	for _, p := range l.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ParticipantIDs returns ids in join order, for conversion into a race
// roster.
func (l *Lobby) ParticipantIDs() []string {
	ids := make([]string, len(l.Participants))
	for i, p := range l.Participants {
		ids[i] = p.ID
	}
	return ids
}

func (l *Lobby) join(id, name string) error {
	if l.Active {
		return ErrAlreadyStarted
	}
	if l.HasParticipant(id) {
		return ErrAlreadyJoined
	}
	l.Participants = append(l.Participants, Participant{
		ID:     id,
		Name:   name,
		IsHost: len(l.Participants) == 0,
	})
	return nil
}

// leave removes a participant, promoting the next-oldest remaining
// participant if the host left. hostChanged reports a promotion happened;
// empty reports the lobby has no participants left.
func (l *Lobby) leave(id string) (hostChanged, empty bool) {
	wasHost := false
	for i, p := range l.Participants {
		if p.ID == id {
			wasHost = p.IsHost
			l.Participants = append(l.Participants[:i], l.Participants[i+1:]...)
			break
		}
	}
	if len(l.Participants) == 0 {
		return false, true
	}
	if wasHost {
		l.Participants[0].IsHost = true
		return true, false
	}
	return false, false
}

// Manager owns the lobby table, keyed by game code. Like the race store it
// has exactly one owner (the hub goroutine) and no locking.
type Manager struct {
	lobbies map[string]*Lobby
}

func NewManager() *Manager {
	return &Manager{lobbies: make(map[string]*Lobby)}
}

func (m *Manager) Get(code string) (*Lobby, bool) {
	l, ok := m.lobbies[code]
	return l, ok
}

func (m *Manager) Len() int {
	return len(m.lobbies)
}

// Create makes a new lobby with the creator as host, retrying code
// generation on the (unlikely) collision with a live lobby.
func (m *Manager) Create(hostID, hostName, text string) (*Lobby, error) {
	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		if _, taken := m.lobbies[c]; !taken {
			code = c
			break
		}
	}
	l := &Lobby{Code: code, Text: text}
	if err := l.join(hostID, hostName); err != nil {
		return nil, err
	}
	m.lobbies[code] = l
	return l, nil
}

func (m *Manager) Join(code, id, name string) (*Lobby, error) {
	l, ok := m.lobbies[code]
	if !ok {
		return nil, ErrNotFound
	}
	if err := l.join(id, name); err != nil {
		return nil, err
	}
	return l, nil
}

// Leave removes a participant from a lobby, deleting the lobby once the
// last participant is gone. Leaving an unknown lobby is a no-op so
// disconnect handling stays idempotent.
func (m *Manager) Leave(code, id string) (l *Lobby, hostChanged, removed bool) {
	l, ok := m.lobbies[code]
	if !ok {
		return nil, false, false
	}
	hostChanged, empty := l.leave(id)
	if empty {
		delete(m.lobbies, code)
		return l, hostChanged, true
	}
	return l, hostChanged, false
}

// Start marks a lobby active on behalf of id. Only the host may start, and
// only with at least two participants present.
func (m *Manager) Start(code, id string) (*Lobby, error) {
	l, ok := m.lobbies[code]
	if !ok {
		return nil, ErrNotFound
	}
	if l.Active {
		return nil, ErrAlreadyStarted
	}
	host, ok := l.Host()
	if !ok || host.ID != id {
		return nil, ErrNotHost
	}
	if len(l.Participants) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	l.Active = true
	return l, nil
}

// Remove drops a lobby outright, used when its converted race room is torn
// down.
func (m *Manager) Remove(code string) {
	delete(m.lobbies, code)
}
