package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"rivals-scout/internal/api"
	"rivals-scout/internal/catalog"
	"rivals-scout/internal/config"
	"rivals-scout/internal/domain"
	"rivals-scout/internal/session"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]domain.SearchCandidate
	fail    map[string]bool
	delay   map[string]time.Duration
}

func (f *fakeSearcher) FindPlayer(ctx context.Context, name string) ([]domain.SearchCandidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if d := f.delay[name]; d > 0 {
		time.Sleep(d)
	}
	if f.fail[name] {
		return nil, errors.New("search is down")
	}
	return f.results[name], nil
}

type fakeVision struct {
	names  []string
	err    error
	images []string
}

func (f *fakeVision) Provider() string { return "fake" }
func (f *fakeVision) Model() string    { return "fake-1" }

func (f *fakeVision) ExtractUsernames(ctx context.Context, apiKey, image, prompt string) ([]string, error) {
	f.images = append(f.images, image)
	return f.names, f.err
}

type memLedger struct {
	mu      sync.Mutex
	rows    map[string]domain.ScoutSession
	failAll bool
}

func (l *memLedger) Insert(ctx context.Context, s domain.ScoutSession) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll {
		return errors.New("disk full")
	}
	if l.rows == nil {
		l.rows = map[string]domain.ScoutSession{}
	}
	l.rows[s.ID] = s
	return nil
}

func (l *memLedger) UpdateResolved(ctx context.Context, id string, usernames, resolved int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failAll {
		return errors.New("disk full")
	}
	row := l.rows[id]
	row.UsernameCount, row.ResolvedCount = usernames, resolved
	l.rows[id] = row
	return nil
}

func (l *memLedger) Recent(ctx context.Context, limit int) ([]domain.ScoutSession, error) {
	return nil, nil
}

func candidates(pairs ...string) []domain.SearchCandidate {
	var out []domain.SearchCandidate
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.SearchCandidate{Name: pairs[i], PlayerID: domain.PlayerID(pairs[i+1])})
	}
	return out
}

func TestResolverExactMatch(t *testing.T) {
	s := &fakeSearcher{results: map[string][]domain.SearchCandidate{
		"Foo": candidates("foo", "1", "Foo", "2", "Foo", "3"),
		"Bar": candidates("bar", "4", "BAR", "5"),
	}}
	r := NewResolver(s, zerolog.Nop())

	id, err := r.Resolve(context.Background(), "Foo")
	if err != nil || id != "2" {
		t.Errorf("Resolve(Foo) = %q, %v; want first exact match 2", id, err)
	}

	_, err = r.Resolve(context.Background(), "Bar")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Username != "Bar" {
		t.Errorf("Resolve(Bar) err = %v, want NotFoundError", err)
	}
}

func TestResolverBlankAndFailure(t *testing.T) {
	s := &fakeSearcher{fail: map[string]bool{"Down": true}}
	r := NewResolver(s, zerolog.Nop())

	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("blank username err = %v", err)
	}
	if len(s.calls) != 0 {
		t.Errorf("blank username issued a search: %v", s.calls)
	}
	if _, err := r.Resolve(context.Background(), "Down"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("failing search err = %v, want ErrNotFound", err)
	}
}

func TestBatchResolverKeepsOrder(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]domain.SearchCandidate{
			"A": candidates("A", "1"),
			"B": candidates("B", "2"),
			"D": candidates("D", "4"),
		},
		fail:  map[string]bool{"C": true},
		delay: map[string]time.Duration{"A": 30 * time.Millisecond},
	}
	b := NewBatchResolver(NewResolver(s, zerolog.Nop()), zerolog.Nop())

	m, err := b.ResolveAll(context.Background(), []string{"A", "B", "C", "D", "Nobody"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.Usernames(), []string{"A", "B", "C", "D", "Nobody"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Usernames() = %v, want %v", got, want)
	}
	if id, _ := m.Get("A"); id != "1" {
		t.Errorf("A = %q", id)
	}
	if !m.Has("C") || m.Resolved() != 3 {
		t.Errorf("unexpected mapping: resolved=%d", m.Resolved())
	}
}

func TestBatchResolverEmpty(t *testing.T) {
	b := NewBatchResolver(NewResolver(&fakeSearcher{}, zerolog.Nop()), zerolog.Nop())
	m, err := b.ResolveAll(context.Background(), nil)
	if err != nil || m.Len() != 0 {
		t.Errorf("ResolveAll(nil) = %v, %v", m.Usernames(), err)
	}
}

func TestExtractor(t *testing.T) {
	v := &fakeVision{names: []string{" A ", "", "B", "  "}}
	e := NewExtractor(v, zerolog.Nop())

	if _, err := e.Extract(context.Background(), "", "AAAA"); !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("missing key err = %v", err)
	}
	if len(v.images) != 0 {
		t.Error("vision called without a key")
	}

	names, err := e.Extract(context.Background(), "k", "AAAA")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"A", "B"}) {
		t.Errorf("names = %v", names)
	}
	if v.images[0] != "data:image/png;base64,AAAA" {
		t.Errorf("image = %q", v.images[0])
	}

	e.Extract(context.Background(), "k", "data:image/jpeg;base64,BBBB")
	if v.images[1] != "data:image/jpeg;base64,BBBB" {
		t.Errorf("data url rewritten: %q", v.images[1])
	}

	v.err = errors.New("model unavailable")
	if _, err := e.Extract(context.Background(), "k", "AAAA"); !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("vision failure err = %v, want ErrExtraction", err)
	}
	if _, err := e.Extract(context.Background(), "k", " "); !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("empty image err = %v", err)
	}
}

const statsDoc = `{
  "stats": {"total_matches": 4, "total_wins": 2, "ranked_matches": 4, "ranked_matches_wins": 2,
    "ranked": {"total_kills": 10, "total_assists": 5, "total_deaths": 5, "total_time_played": 3600},
    "unranked": {"total_kills": 0, "total_assists": 0, "total_deaths": 0, "total_time_played": 0}},
  "teammates": [{"matches": 3, "win": 2, "info": {"nick_name": "B", "player_icon": 0, "player_uid": 2}}],
  "rank_history": [],
  "heroes_ranked": {"1011": {"matches": 4, "win": 2, "kills": 10, "deaths": 5, "assists": 5}},
  "matchups": []
}`

func newStatsServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/api/player/1", "/api/player/2":
			io.WriteString(w, statsDoc)
		case "/api/player/bad":
			io.WriteString(w, `{"stats": {"total_matches": 1, "total_wins": 3}}`)
		default:
			http.Error(w, "upstream broke", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStatsFetcher(t *testing.T) {
	var hits atomic.Int32
	srv := newStatsServer(t, &hits)
	cfg := &config.Config{RivalsAPIURL: srv.URL, Season: 2, StatsCacheTTL: time.Minute}
	f := NewStatsFetcher(api.NewRivalsClient(cfg), cfg, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	var okErr, failErr error
	wg.Add(2)
	go func() { defer wg.Done(); _, okErr = f.Fetch(ctx, "1") }()
	go func() { defer wg.Done(); _, failErr = f.Fetch(ctx, "500") }()
	wg.Wait()

	if okErr != nil {
		t.Errorf("sibling fetch failed: %v", okErr)
	}
	var fe *domain.FetchError
	if !errors.As(failErr, &fe) || fe.StatusCode != http.StatusInternalServerError || fe.PlayerID != "500" {
		t.Errorf("err = %v, want FetchError with status 500", failErr)
	}

	before := hits.Load()
	if _, err := f.Fetch(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != before {
		t.Error("second fetch was not served from cache")
	}

	if _, err := f.Fetch(ctx, "bad"); !errors.Is(err, domain.ErrSchema) {
		t.Errorf("bad document err = %v, want ErrSchema", err)
	}
	if _, err := f.Fetch(ctx, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("empty id err = %v", err)
	}
}

func newScout(t *testing.T, vision *fakeVision, searcher *fakeSearcher, ledger *memLedger) (*ScoutService, *session.Store) {
	t.Helper()
	var hits atomic.Int32
	srv := newStatsServer(t, &hits)
	cfg := &config.Config{RivalsAPIURL: srv.URL, Season: 2}
	logger := zerolog.Nop()
	resolver := NewResolver(searcher, logger)
	store := session.NewStore(logger)
	return NewScoutService(
		NewExtractor(vision, logger),
		NewBatchResolver(resolver, logger),
		resolver,
		NewStatsFetcher(api.NewRivalsClient(cfg), cfg, logger),
		store,
		ledger,
		catalog.Default(),
		logger,
	), store
}

func TestScoutProcessImageAndCorrect(t *testing.T) {
	vision := &fakeVision{names: []string{"A", "Bee"}}
	searcher := &fakeSearcher{results: map[string][]domain.SearchCandidate{
		"A": candidates("A", "1"),
		"B": candidates("B", "2"),
	}}
	ledger := &memLedger{}
	svc, _ := newScout(t, vision, searcher, ledger)
	ctx := context.Background()

	sess, err := svc.ProcessImage(ctx, "key", "AAAA")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Mapping.Resolved() != 1 || !sess.Mapping.Has("Bee") {
		t.Fatalf("mapping = %v", sess.Mapping.Usernames())
	}
	row := ledger.rows[sess.ID]
	if row.UsernameCount != 2 || row.ResolvedCount != 1 || row.Provider != "fake" {
		t.Errorf("ledger row = %+v", row)
	}

	card, err := svc.Card(ctx, "1", sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if card.Username != "A" || len(card.Teammates) != 0 {
		t.Errorf("card before correction = %+v", card)
	}

	fixed, err := svc.Correct(ctx, sess.ID, "Bee", "B")
	if err != nil {
		t.Fatal(err)
	}
	if got := fixed.Mapping.Usernames(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("usernames after correction = %v", got)
	}
	if sess.Mapping.Has("B") {
		t.Error("correction mutated the earlier session")
	}
	if ledger.rows[sess.ID].ResolvedCount != 2 {
		t.Errorf("ledger not updated: %+v", ledger.rows[sess.ID])
	}

	card, err = svc.Card(ctx, "1", sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(card.Teammates) != 1 || card.Teammates[0].NickName != "B" {
		t.Errorf("teammates after correction = %+v", card.Teammates)
	}
}

func TestScoutErrors(t *testing.T) {
	vision := &fakeVision{names: []string{"A"}}
	ledger := &memLedger{failAll: true}
	svc, _ := newScout(t, vision, &fakeSearcher{}, ledger)
	ctx := context.Background()

	sess, err := svc.ProcessImage(ctx, "key", "AAAA")
	if err != nil {
		t.Fatalf("ledger failure must not fail the request: %v", err)
	}
	if _, err := svc.Correct(ctx, "nope", "A", "B"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Correct unknown session err = %v", err)
	}
	if _, err := svc.Card(ctx, "1", "nope"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Card unknown session err = %v", err)
	}
	if _, err := svc.Card(ctx, "500", sess.ID); !errors.Is(err, domain.ErrFetch) {
		t.Errorf("Card upstream failure err = %v", err)
	}

	fixed, err := svc.Correct(ctx, sess.ID, "A", "Still Missing")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fixed.Mapping.Get("Still Missing"); ok || !fixed.Mapping.Has("Still Missing") {
		t.Errorf("miss should leave an unresolved entry: %v", fixed.Mapping.Usernames())
	}
	if !strings.Contains(strings.Join(fixed.Mapping.Usernames(), ","), "Still Missing") {
		t.Error("renamed entry missing")
	}
}

// callOrderResolver returns "1", "2", ... in the order lookups arrive.
type callOrderResolver struct {
	mu    sync.Mutex
	calls int
}

func (r *callOrderResolver) Resolve(ctx context.Context, username string) (domain.PlayerID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return domain.PlayerID(strconv.Itoa(r.calls)), nil
}

func TestBatchResolverDuplicateUsernameLastWins(t *testing.T) {
	// one lookup at a time, so the n-th input gets id n
	b := NewBatchResolver(&callOrderResolver{}, zerolog.Nop()).WithLimit(1)

	m, err := b.ResolveAll(context.Background(), []string{"A", "B", "A"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.Usernames(), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Usernames() = %v, want %v", got, want)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"A":"3","B":"2"}`; got != want {
		t.Errorf("mapping = %s, want %s", got, want)
	}
}
