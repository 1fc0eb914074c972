// Package aggregate derives scouting figures from a season stats document.
// All functions are pure and never mutate their inputs.
package aggregate

import (
	"fmt"
	"math"
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"slices"
	"strconv"
)

type HeroCatalog interface {
	HeroName(id string) string
	HeroRole(id string) domain.Role
	RankName(level int) string
}

// WinRate returns wins/matches as a percentage rounded to one decimal. With
// invert set the losses are used instead. Zero matches yield 0.
func WinRate(wins, matches int, invert bool) float64 {
	if matches <= 0 {
		return 0
	}
	num := wins
	if invert {
		num = matches - wins
	}
	return round1(float64(num) / float64(matches) * 100)
}

func KDA(kills, deaths, assists int) float64 {
	return float64(kills+assists) / float64(max(deaths, 1))
}

func FormatKDA(kills, deaths, assists int) string {
	return fmt.Sprintf("%.1f KDA", KDA(kills, deaths, assists))
}

// FormatTime renders a seconds count as "Hh Mm", truncating.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// TopPlayedHeroes returns the most played heroes, highest match count first.
// Ties keep document order.
func TopPlayedHeroes(heroes domain.HeroTable, n int) []domain.HeroRecord {
	out := slices.Clone([]domain.HeroRecord(heroes))
	slices.SortStableFunc(out, func(a, b domain.HeroRecord) int {
		return b.Matches - a.Matches
	})
	return head(out, n)
}

// BestHeroes returns heroes with more than minMatches matches ordered by win
// rate, highest first.
func BestHeroes(heroes domain.HeroTable, minMatches, n int) []domain.HeroRecord {
	out := make([]domain.HeroRecord, 0, len(heroes))
	for _, h := range heroes {
		if h.Matches > minMatches {
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.HeroRecord) int {
		return compareFloat(WinRate(b.Win, b.Matches, false), WinRate(a.Win, a.Matches, false))
	})
	return head(out, n)
}

// WorstMatchups returns the opposing heroes with the highest win rate against
// the player.
func WorstMatchups(matchups []domain.Matchup, n int) []domain.Matchup {
	out := slices.Clone(matchups)
	slices.SortStableFunc(out, func(a, b domain.Matchup) int {
		return compareFloat(WinRate(b.Wins, b.Matches, false), WinRate(a.Wins, a.Matches, false))
	})
	return head(out, n)
}

// BestMatchups returns the opposing heroes with the lowest win rate against
// the player.
func BestMatchups(matchups []domain.Matchup, n int) []domain.Matchup {
	out := slices.Clone(matchups)
	slices.SortStableFunc(out, func(a, b domain.Matchup) int {
		return compareFloat(WinRate(a.Wins, a.Matches, false), WinRate(b.Wins, b.Matches, false))
	})
	return head(out, n)
}

type RoleShare struct {
	Role       domain.Role `json:"role"`
	Matches    int         `json:"matches"`
	Wins       int         `json:"wins"`
	Percentage float64     `json:"percentage"`
	WinRate    float64     `json:"winRate"`
}

// RoleDistribution sums hero records per role. The result always lists
// vanguard, duelist and strategist in that order; heroes without a known
// role count towards the total only.
func RoleDistribution(heroes domain.HeroTable, cat HeroCatalog) []RoleShare {
	byRole := make(map[domain.Role]*RoleShare, len(domain.Roles))
	out := make([]RoleShare, len(domain.Roles))
	for i, r := range domain.Roles {
		out[i].Role = r
		byRole[r] = &out[i]
	}

	total := 0
	for _, h := range heroes {
		total += h.Matches
		if share, ok := byRole[cat.HeroRole(h.HeroID)]; ok {
			share.Matches += h.Matches
			share.Wins += h.Win
		}
	}

	for i := range out {
		if total > 0 {
			out[i].Percentage = round1(float64(out[i].Matches) / float64(total) * 100)
		}
		out[i].WinRate = WinRate(out[i].Wins, out[i].Matches, false)
	}
	return out
}

// FrequentTeammates keeps the teammates whose uid is a resolved player in
// mapping, most shared matches first.
func FrequentTeammates(teammates []domain.Teammate, mapping domain.UsernameMapping) []domain.Teammate {
	out := make([]domain.Teammate, 0, len(teammates))
	for _, tm := range teammates {
		if mapping.ContainsID(domain.PlayerID(strconv.FormatInt(tm.Info.PlayerUID, 10))) {
			out = append(out, tm)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Teammate) int {
		return b.Matches - a.Matches
	})
	return out
}

// CurrentRank reads the newest rank_history entry, which upstream lists
// first.
func CurrentRank(history []domain.RankEntry, cat HeroCatalog) (level int, name string, ok bool) {
	if len(history) == 0 {
		return 0, "", false
	}
	level = history[0].Rank.NewLevel
	return level, cat.RankName(level), true
}

// Lobbies splits usernames into consecutive groups of size. The last group
// may be shorter.
func Lobbies(usernames []string, size int) [][]string {
	if size <= 0 {
		size = constants.LobbySize
	}
	var out [][]string
	for start := 0; start < len(usernames); start += size {
		end := min(start+size, len(usernames))
		out = append(out, slices.Clone(usernames[start:end]))
	}
	return out
}

func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
