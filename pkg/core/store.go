package core

import "maps"

// Store holds the committed state values of one State, the values Build
// sees, and the partial updates queued since the last build. The element
// merges queued updates in order when it rebuilds.
//
// A nil *Store reads as empty.
type Store struct {
	committed map[string]any
	pending   []map[string]any
}

// Read returns a copy of the committed values.
func (s *Store) Read() map[string]any {
	if s == nil {
		return nil
	}
	return maps.Clone(s.committed)
}

// Get returns the committed value for name.
func (s *Store) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.committed[name]
	return v, ok
}

// seed sets the committed value for name without queueing an update.
func (s *Store) seed(name string, v any) {
	if s.committed == nil {
		s.committed = make(map[string]any)
	}
	s.committed[name] = v
}

// Queue records a partial update to merge on the next commit.
func (s *Store) Queue(partial map[string]any) {
	if len(partial) == 0 {
		return
	}
	s.pending = append(s.pending, maps.Clone(partial))
}

// HasPending reports whether updates are queued.
func (s *Store) HasPending() bool {
	return s != nil && len(s.pending) > 0
}

// Next returns the committed values with every queued update merged in,
// without committing them.
func (s *Store) Next() map[string]any {
	if s == nil {
		return nil
	}
	next := maps.Clone(s.committed)
	for _, partial := range s.pending {
		if next == nil {
			next = make(map[string]any, len(partial))
		}
		maps.Copy(next, partial)
	}
	return next
}

// Commit merges the queued updates into the committed values.
func (s *Store) Commit() {
	if s == nil || len(s.pending) == 0 {
		return
	}
	s.committed = s.Next()
	s.pending = nil
}
