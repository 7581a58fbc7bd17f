package config

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Store is the single owner of the live Config
// Reads are lock-free snapshots; writes are serialised and validated
type Store struct {
	current atomic.Pointer[Config]

	mu        sync.Mutex
	listeners []func(Config)
}

// NewStore validates initial and publishes it
func NewStore(initial Config) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	s := &Store{}
	s.current.Store(&initial)
	return s, nil
}

// MustNewStore panics on an invalid initial config; intended for defaults and tests
func MustNewStore(initial Config) *Store {
	s, err := NewStore(initial)
	if err != nil {
		panic(err)
	}
	return s
}

// Load returns a copy of the current config
func (s *Store) Load() Config {
	return *s.current.Load()
}

// Set replaces the current config; invalid configs leave the old one in place
func (s *Store) Set(cfg Config) error {
	return s.Update(func(c *Config) { *c = cfg })
}

// Update applies fn to a copy of the current config and stores the result
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	next := *s.current.Load()
	fn(&next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current.Store(&next)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// OnChange registers fn to run after every successful update
func (s *Store) OnChange(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
