package race

// Store owns the room table. It is deliberately not a global: the hub holds
// the only reference and is the only goroutine that touches it, which is the
// single-writer rule that makes the scan-then-mutate matchmaking sequence
// atomic without locks.
type Store struct {
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

func (s *Store) Add(r *Room) {
	s.rooms[r.ID] = r
}

func (s *Store) Get(id string) (*Room, bool) {
	r, ok := s.rooms[id]
	return r, ok
}

func (s *Store) Remove(id string) {
	delete(s.rooms, id)
}

func (s *Store) Len() int {
	return len(s.rooms)
}

// FindOpen returns a public room still waiting on participants, or nil. The
// O(n) scan is fine at realistic room counts; if it ever isn't, replace it
// with a single "next open room" slot under the same single-writer rule.
func (s *Store) FindOpen() *Room {
	for _, r := range s.rooms {
		if r.State == StateWaiting && !r.Private && len(r.Participants) < r.MaxPlayers {
			return r
		}
	}
	return nil
}
