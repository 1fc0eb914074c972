package service

import (
	"context"
	"errors"
	"fmt"
	"rivals-scout/internal/aggregate"
	"rivals-scout/internal/domain"
	"rivals-scout/internal/session"
	"time"

	"github.com/rs/zerolog"
)

type SessionLedger interface {
	Insert(ctx context.Context, s domain.ScoutSession) error
	UpdateResolved(ctx context.Context, id string, usernames, resolved int) error
	Recent(ctx context.Context, limit int) ([]domain.ScoutSession, error)
}

// ScoutService ties extraction, resolution and stats together around
// in-memory sessions.
type ScoutService struct {
	extractor *Extractor
	batch     *BatchResolver
	resolver  UsernameResolver
	stats     *StatsFetcher
	sessions  *session.Store
	ledger    SessionLedger
	catalog   aggregate.HeroCatalog
	logger    zerolog.Logger
}

func NewScoutService(
	extractor *Extractor,
	batch *BatchResolver,
	resolver UsernameResolver,
	stats *StatsFetcher,
	sessions *session.Store,
	ledger SessionLedger,
	catalog aggregate.HeroCatalog,
	logger zerolog.Logger,
) *ScoutService {
	return &ScoutService{
		extractor: extractor,
		batch:     batch,
		resolver:  resolver,
		stats:     stats,
		sessions:  sessions,
		ledger:    ledger,
		catalog:   catalog,
		logger:    logger,
	}
}

// ProcessImage extracts usernames from image, resolves them and opens a
// session holding the resulting mapping.
func (s *ScoutService) ProcessImage(ctx context.Context, apiKey, image string) (*session.Session, error) {
	start := time.Now()

	usernames, err := s.extractor.Extract(ctx, apiKey, image)
	if err != nil {
		return nil, err
	}

	mapping, err := s.batch.ResolveAll(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve usernames: %w", err)
	}

	sess, err := s.sessions.Create(mapping)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	err = s.ledger.Insert(ctx, domain.ScoutSession{
		ID:            sess.ID,
		Provider:      s.extractor.Provider(),
		Model:         s.extractor.Model(),
		UsernameCount: mapping.Len(),
		ResolvedCount: mapping.Resolved(),
		DurationMS:    elapsed.Milliseconds(),
		CreatedAt:     sess.CreatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to record scout session")
	}

	s.logger.Info().
		Str("session_id", sess.ID).
		Int("usernames", mapping.Len()).
		Int("resolved", mapping.Resolved()).
		Dur("duration", elapsed).
		Msg("image processed")
	return sess, nil
}

// Correct re-resolves a misread username and replaces it in the session.
// A miss still renames the entry and leaves it unresolved.
func (s *ScoutService) Correct(ctx context.Context, sessionID, username, newUsername string) (*session.Session, error) {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return nil, session.ErrNotFound
	}

	id, err := s.resolver.Resolve(ctx, newUsername)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	sess, err := s.sessions.Replace(sessionID, func(m domain.UsernameMapping) domain.UsernameMapping {
		return m.Renamed(username, newUsername, id)
	})
	if err != nil {
		return nil, err
	}

	if err := s.ledger.UpdateResolved(ctx, sess.ID, sess.Mapping.Len(), sess.Mapping.Resolved()); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to update scout session")
	}

	s.logger.Info().
		Str("session_id", sess.ID).
		Str("username", username).
		Str("new_username", newUsername).
		Bool("resolved", id != "").
		Msg("username corrected")
	return sess, nil
}

func (s *ScoutService) Session(sessionID string) (*session.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (s *ScoutService) RecentSessions(ctx context.Context, limit int) ([]domain.ScoutSession, error) {
	return s.ledger.Recent(ctx, limit)
}

// Card builds the scouting card for id. With a session id the card's
// teammates are limited to that session's lobby.
func (s *ScoutService) Card(ctx context.Context, id domain.PlayerID, sessionID string) (*aggregate.Card, error) {
	mapping := domain.NewUsernameMapping()
	if sessionID != "" {
		sess, ok := s.sessions.Get(sessionID)
		if !ok {
			return nil, session.ErrNotFound
		}
		mapping = sess.Mapping
	}

	ps, err := s.stats.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	username := ""
	for _, u := range mapping.Usernames() {
		if v, ok := mapping.Get(u); ok && v == id {
			username = u
			break
		}
	}
	return aggregate.BuildCard(id, username, ps, mapping, s.catalog), nil
}
