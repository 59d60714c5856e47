package telemetry

import "sync/atomic"

// Store holds the most recent sample. Replace swaps the whole sample in one
// atomic step, so readers never observe a partially written value. The zero
// Store reports the zero sample until the first Replace.
type Store struct {
	current atomic.Pointer[Sample]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Sample{})
	return s
}

// Replace overwrites the held sample unconditionally.
func (s *Store) Replace(sample Sample) {
	s.current.Store(&sample)
}

// Get returns a copy of the held sample.
func (s *Store) Get() Sample {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Sample{}
}
