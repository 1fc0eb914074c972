package repository

import (
	"context"
	"database/sql"
	"fmt"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type SessionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSessionRepository(sqlDB *sql.DB, logger zerolog.Logger) *SessionRepository {
	return &SessionRepository{db: sqlDB, logger: logger}
}

func (r *SessionRepository) Insert(ctx context.Context, s domain.ScoutSession) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scout_sessions (id, provider, model, username_count, resolved_count, duration_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Provider, s.Model, s.UsernameCount, s.ResolvedCount, s.DurationMS, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", s.ID).Msg("failed to insert scout session")
		return fmt.Errorf("failed to insert scout session: %w", err)
	}

	r.logger.Debug().Str("session_id", s.ID).Int("resolved", s.ResolvedCount).Msg("scout session recorded")
	return nil
}

func (r *SessionRepository) UpdateResolved(ctx context.Context, id string, usernames, resolved int) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE scout_sessions SET username_count = ?, resolved_count = ?, updated_at = ? WHERE id = ?`,
		usernames, resolved, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update scout session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Recent returns up to limit sessions, newest first.
func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]domain.ScoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.RecentSessionsLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, provider, model, username_count, resolved_count, duration_ms, created_at, updated_at
		FROM scout_sessions
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scout sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.ScoutSession{}
	for rows.Next() {
		var s domain.ScoutSession
		if err := rows.Scan(&s.ID, &s.Provider, &s.Model, &s.UsernameCount, &s.ResolvedCount, &s.DurationMS, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scout session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
