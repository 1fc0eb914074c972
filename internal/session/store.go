// Package session keeps scouting sessions in memory. A session's mapping is
// never mutated in place; every change stores a new Session value.
package session

import (
	"errors"
	"fmt"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
	Mapping   domain.UsernameMapping `json:"players"`
}

type Store struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, *Session]
	logger zerolog.Logger
}

func NewStore(logger zerolog.Logger) *Store {
	return NewStoreWithTTL(constants.SessionCacheSize, constants.SessionTTL, logger)
}

func NewStoreWithTTL(size int, ttl time.Duration, logger zerolog.Logger) *Store {
	return &Store{
		cache:  expirable.NewLRU[string, *Session](size, nil, ttl),
		logger: logger,
	}
}

func (s *Store) Create(mapping domain.UsernameMapping) (*Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	now := time.Now().UTC()
	sess := &Session{ID: id, CreatedAt: now, UpdatedAt: now, Mapping: mapping.Clone()}

	s.mu.Lock()
	s.cache.Add(id, sess)
	s.mu.Unlock()

	s.logger.Debug().Str("session_id", id).Int("usernames", mapping.Len()).Msg("session created")
	return sess, nil
}

func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(id)
}

// Replace stores a new Session whose mapping is fn's result. fn receives a copy
// and runs under the store lock, so it must not call back into the store.
func (s *Store) Replace(id string, fn func(domain.UsernameMapping) domain.UsernameMapping) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	next := &Session{
		ID:        cur.ID,
		CreatedAt: cur.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Mapping:   fn(cur.Mapping.Clone()),
	}
	s.cache.Add(id, next)
	return next, nil
}
