package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"rivals-scout/internal/database"
	"rivals-scout/internal/domain"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "scout.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionRepository(db, zerolog.Nop())
}

func TestSessionRepositoryInsertAndRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		err := repo.Insert(ctx, domain.ScoutSession{
			ID:            id,
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			UsernameCount: 6,
			ResolvedCount: i,
			DurationMS:    100,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert(%s): %v", id, err)
		}
	}

	got, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "mid" {
		t.Fatalf("Recent = %+v", got)
	}
	if got[0].ResolvedCount != 2 || got[0].Provider != "openai" || !got[0].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Errorf("row = %+v", got[0])
	}
}

func TestSessionRepositoryUpdateResolved(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, domain.ScoutSession{ID: "s1", Provider: "anthropic", Model: "m", UsernameCount: 6, ResolvedCount: 4}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateResolved(ctx, "s1", 6, 5); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.Recent(ctx, 0)
	if len(got) != 1 || got[0].ResolvedCount != 5 {
		t.Errorf("Recent = %+v", got)
	}

	if err := repo.UpdateResolved(ctx, "missing", 1, 1); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}
