package report

import (
	"bytes"
	"errors"
	"rivals-scout/internal/aggregate"
	"rivals-scout/internal/domain"
	"strings"
	"testing"
)

func TestPrintCard(t *testing.T) {
	card := &aggregate.Card{
		PlayerID:   "42",
		Username:   "Foo",
		ProfileURL: aggregate.ProfileURL("42"),
		Rank:       &aggregate.Rank{Level: 11, Name: "Platinum II"},
		Overall:    aggregate.Record{Matches: 10, Wins: 6, WinRate: 60},
		RankedMode: aggregate.ModeSummary{KDALabel: "4.0 KDA", TimePlayed: "2h 1m"},
		TopHeroes: []aggregate.HeroLine{
			{HeroID: "1011", Name: "Hulk", Role: domain.RoleVanguard, Matches: 5, WinRate: 60, KDA: "3.0 KDA"},
		},
		WorstMatchups: []aggregate.MatchupLine{{HeroID: "1024", Name: "Hela", Matches: 4, PlayerWinRate: 25}},
		Roles: []aggregate.RoleShare{
			{Role: domain.RoleVanguard, Matches: 5, Percentage: 100, WinRate: 60},
		},
	}

	var buf bytes.Buffer
	PrintCard(&buf, card)
	out := buf.String()

	for _, want := range []string{"Foo", "Platinum II", "WR 60.0% (10)", "https://rivalsmeta.com/player/42", "Hulk", "Hela", "25.0", "vanguard"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "PLAYED WITH") || strings.Contains(out, "BEST HEROES") {
		t.Errorf("empty sections were rendered:\n%s", out)
	}
}

func TestPrintUnresolved(t *testing.T) {
	var buf bytes.Buffer
	PrintUnresolved(&buf, "Ghost", nil)
	PrintUnresolved(&buf, "Broken", errors.New("status 500"))
	out := buf.String()
	if !strings.Contains(out, "Ghost: failed to find player") || !strings.Contains(out, "Broken: failed to load player (status 500)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
