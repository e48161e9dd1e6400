package registry

import "github.com/ShatadruM/MonkeRivals/internal/protocol"

type RefKind string

const (
	RefRoom  RefKind = "room"
	RefLobby RefKind = "lobby"
)

// Ref points at the room or lobby a connection currently belongs to.
type Ref struct {
	Kind RefKind
	ID   string
}

// Conn is the ephemeral identity of one live client session. Accuracy is
// transient per-connection telemetry the results aggregator reads at
// end-of-race.
type Conn struct {
	ID       string
	Outbox   chan protocol.ServerMessage
	Ref      *Ref
	Accuracy *float64
}

// Registry tracks live connections and their room/lobby affiliation. Pure
// bookkeeping: no side effects, owned by the hub goroutine.
type Registry struct {
	conns map[string]*Conn
}

func New() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

func (g *Registry) Register(id string, outbox chan protocol.ServerMessage) *Conn {
	c := &Conn{ID: id, Outbox: outbox}
	g.conns[id] = c
	return c
}

func (g *Registry) Get(id string) (*Conn, bool) {
	c, ok := g.conns[id]
	return c, ok
}

func (g *Registry) Len() int {
	return len(g.conns)
}

func (g *Registry) Associate(id string, ref Ref) {
	if c, ok := g.conns[id]; ok {
		c.Ref = &ref
	}
}

func (g *Registry) Dissociate(id string) {
	if c, ok := g.conns[id]; ok {
		c.Ref = nil
		c.Accuracy = nil
	}
}

// OnDisconnect removes the connection and returns where it was attached so
// the owning component can react. Calling it again for the same id returns
// ok=false, which keeps downstream disconnect handling idempotent.
func (g *Registry) OnDisconnect(id string) (ref Ref, ok bool) {
	c, exists := g.conns[id]
	if !exists {
		return Ref{}, false
	}
	delete(g.conns, id)
	if c.Ref == nil {
		return Ref{}, false
	}
	return *c.Ref, true
}
