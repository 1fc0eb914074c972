// Package report renders scouting cards as terminal tables.
package report

import (
	"fmt"
	"io"
	"rivals-scout/internal/aggregate"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func PrintLobbyHeader(w io.Writer, index, total int) {
	fmt.Fprintf(w, "\n=== Lobby %d/%d ===\n", index, total)
}

// PrintUnresolved is printed in place of a card for a username that did not
// resolve, or whose stats could not be loaded.
func PrintUnresolved(w io.Writer, username string, err error) {
	if err != nil {
		fmt.Fprintf(w, "\n%s: failed to load player (%v)\n", username, err)
		return
	}
	fmt.Fprintf(w, "\n%s: failed to find player\n", username)
}

// PrintCard writes the summary line followed by hero, matchup, role and
// teammate tables. Empty sections are skipped.
func PrintCard(w io.Writer, c *aggregate.Card) {
	name := c.Username
	if name == "" {
		name = string(c.PlayerID)
	}
	rank := "unranked"
	if c.Rank != nil {
		rank = c.Rank.Name
	}
	fmt.Fprintf(w, "\n%s  |  %s  |  WR %.1f%% (%d)  |  Ranked WR %.1f%% (%d)  |  %s\n",
		name, rank, c.Overall.WinRate, c.Overall.Matches, c.Ranked.WinRate, c.Ranked.Matches, c.ProfileURL)
	fmt.Fprintf(w, "Ranked: %s, %s  |  Unranked: %s, %s\n\n",
		c.RankedMode.KDALabel, c.RankedMode.TimePlayed, c.UnrankedMode.KDALabel, c.UnrankedMode.TimePlayed)

	PrintHeroTable(w, "MOST PLAYED", c.TopHeroes)
	PrintHeroTable(w, "BEST HEROES", c.BestHeroes)
	PrintMatchupTable(w, "WORST MATCHUPS (PLAY)", c.WorstMatchups)
	PrintMatchupTable(w, "BEST MATCHUPS (AVOID)", c.BestMatchups)
	PrintRoleTable(w, c.Roles)
	PrintTeammateTable(w, c.Teammates)
}

func PrintHeroTable(w io.Writer, title string, heroes []aggregate.HeroLine) {
	if len(heroes) == 0 {
		return
	}
	table := newTable(w)
	table.Header(title, "ROLE", "MATCHES", "WR%", "KDA")
	for _, h := range heroes {
		table.Append(
			h.Name,
			string(h.Role),
			strconv.Itoa(h.Matches),
			fmt.Sprintf("%.1f", h.WinRate),
			h.KDA,
		)
	}
	table.Render()
}

// PrintMatchupTable shows the player's win rate against each hero.
func PrintMatchupTable(w io.Writer, title string, matchups []aggregate.MatchupLine) {
	if len(matchups) == 0 {
		return
	}
	table := newTable(w)
	table.Header(title, "MATCHES", "YOUR WR%")
	for _, m := range matchups {
		table.Append(m.Name, strconv.Itoa(m.Matches), fmt.Sprintf("%.1f", m.PlayerWinRate))
	}
	table.Render()
}

func PrintRoleTable(w io.Writer, roles []aggregate.RoleShare) {
	table := newTable(w)
	table.Header("ROLE", "MATCHES", "SHARE%", "WR%")
	for _, r := range roles {
		table.Append(string(r.Role), strconv.Itoa(r.Matches), fmt.Sprintf("%.1f", r.Percentage), fmt.Sprintf("%.1f", r.WinRate))
	}
	table.Render()
}

func PrintTeammateTable(w io.Writer, teammates []aggregate.TeammateLine) {
	if len(teammates) == 0 {
		return
	}
	table := newTable(w)
	table.Header("PLAYED WITH", "MATCHES", "WR%")
	for _, t := range teammates {
		table.Append(t.NickName, strconv.Itoa(t.Matches), fmt.Sprintf("%.1f", t.WinRate))
	}
	table.Render()
}
