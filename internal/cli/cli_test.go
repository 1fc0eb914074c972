package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const playerDoc = `{
  "stats": {"total_matches": 10, "total_wins": 5, "ranked_matches": 10, "ranked_matches_wins": 5,
    "ranked": {"total_kills": 20, "total_assists": 10, "total_deaths": 10, "total_time_played": 3600},
    "unranked": {}},
  "teammates": [{"matches": 3, "win": 2, "info": {"nick_name": "Bravo", "player_icon": 0, "player_uid": 2}}],
  "rank_history": [{"match_time_stamp": 1, "rank": {"level": 10, "new_level": 11}}],
  "heroes_ranked": {"1011": {"matches": 6, "win": 3, "kills": 12, "deaths": 6, "assists": 6}},
  "matchups": [{"matches": 4, "wins": 3, "hero_id": 1024}]
}`

// newUpstream serves rivalsmeta search and stats plus an OpenAI-style chat
// endpoint returning three usernames.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/find-player":
			var body struct {
				Name string `json:"name"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			switch body.Name {
			case "Alpha":
				io.WriteString(w, `[{"aid":"1","name":"Alpha","cur_head_icon_id":""}]`)
			case "Bravo":
				io.WriteString(w, `[{"aid":"2","name":"Bravo","cur_head_icon_id":""}]`)
			default:
				io.WriteString(w, `[]`)
			}
		case r.URL.Path == "/api/player/1":
			io.WriteString(w, playerDoc)
		case strings.HasPrefix(r.URL.Path, "/api/player/"):
			http.Error(w, "boom", http.StatusInternalServerError)
		case r.URL.Path == "/chat/completions":
			io.WriteString(w, `{"choices":[{"message":{"content":"{\"usernames\":[\"Alpha\",\"Bravo\",\"Charlie\"]}"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	t.Chdir(t.TempDir())
	t.Setenv("RIVALS_API_URL", srv.URL)
	t.Setenv("OPENAI_API_URL", srv.URL)
	t.Setenv("VISION_PROVIDER", "openai")
	t.Setenv("VISION_API_KEY", "")
	t.Setenv("HERO_CATALOG_PATH", "")
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lobby.png")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImageCommand(t *testing.T) {
	newUpstream(t)
	path := writePNG(t)

	out, err := run(t, "image", path, "--api-key", "sk-test")
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	for _, want := range []string{"Alpha", "Platinum II", "Hulk", "Bravo: failed to load player", "Charlie: failed to find player"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Alpha") > strings.Index(out, "Bravo:") {
		t.Error("cards are not in username order")
	}
}

func TestImageCommandJSON(t *testing.T) {
	newUpstream(t)
	path := writePNG(t)

	out, err := run(t, "image", path, "--api-key", "sk-test", "--json")
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	var results []cardResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 3 || results[0].Card == nil || results[1].Error == "" || results[2].PlayerID != "" {
		t.Fatalf("results = %+v", results)
	}
	if len(results[0].Card.Teammates) != 1 || results[0].Card.Teammates[0].NickName != "Bravo" {
		t.Errorf("teammates = %+v", results[0].Card.Teammates)
	}
}

func TestImageCommandWithoutKey(t *testing.T) {
	newUpstream(t)
	path := writePNG(t)

	if _, err := run(t, "image", path); err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("err = %v, want missing key error", err)
	}
}

func TestReadImageRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("hello"), 0o644)
	if _, err := readImage(path); err == nil {
		t.Error("expected error for a text file")
	}
}

func TestPlayerAndStatsCommands(t *testing.T) {
	newUpstream(t)

	out, err := run(t, "player", "Alpha")
	if err != nil || !strings.Contains(out, "https://rivalsmeta.com/player/1") {
		t.Errorf("player: %v\n%s", err, out)
	}

	out, err = run(t, "player", "alpha")
	if err != nil || !strings.Contains(out, "alpha: failed to find player") {
		t.Errorf("player miss: %v\n%s", err, out)
	}

	if _, err := run(t, "stats", "1"); err != nil {
		t.Errorf("stats: %v", err)
	}
	if _, err := run(t, "stats", "9"); err == nil {
		t.Error("stats for a failing id should return an error")
	}
}
