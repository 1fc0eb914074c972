package aggregate

import (
	"rivals-scout/internal/constants"
	"rivals-scout/internal/domain"
	"strconv"
)

const profileURLPrefix = "https://rivalsmeta.com/player/"

type Record struct {
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
}

type ModeSummary struct {
	KDA        float64 `json:"kda"`
	KDALabel   string  `json:"kdaLabel"`
	TimePlayed string  `json:"timePlayed"`
	Seconds    float64 `json:"seconds"`
}

type HeroLine struct {
	HeroID  string      `json:"heroId"`
	Name    string      `json:"name"`
	Role    domain.Role `json:"role"`
	Matches int         `json:"matches"`
	Wins    int         `json:"wins"`
	WinRate float64     `json:"winRate"`
	KDA     string      `json:"kda"`
}

// MatchupLine describes an opposing hero. OpponentWinRate is the hero's
// record against the player, PlayerWinRate its complement.
type MatchupLine struct {
	HeroID          string  `json:"heroId"`
	Name            string  `json:"name"`
	Matches         int     `json:"matches"`
	OpponentWinRate float64 `json:"opponentWinRate"`
	PlayerWinRate   float64 `json:"playerWinRate"`
}

type TeammateLine struct {
	PlayerID string  `json:"playerId"`
	NickName string  `json:"nickName"`
	Matches  int     `json:"matches"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"winRate"`
}

type Rank struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
}

// Card is everything shown for one scouted player.
type Card struct {
	PlayerID      domain.PlayerID `json:"playerId"`
	Username      string          `json:"username,omitempty"`
	ProfileURL    string          `json:"profileUrl"`
	Rank          *Rank           `json:"rank"`
	Overall       Record          `json:"overall"`
	Ranked        Record          `json:"ranked"`
	RankedMode    ModeSummary     `json:"rankedMode"`
	UnrankedMode  ModeSummary     `json:"unrankedMode"`
	TopHeroes     []HeroLine      `json:"topHeroes"`
	BestHeroes    []HeroLine      `json:"bestHeroes"`
	Roles         []RoleShare     `json:"roles"`
	WorstMatchups []MatchupLine   `json:"worstMatchups"`
	BestMatchups  []MatchupLine   `json:"bestMatchups"`
	Teammates     []TeammateLine  `json:"teammates"`
}

func ProfileURL(id domain.PlayerID) string {
	return profileURLPrefix + string(id)
}

// BuildCard assembles a card for id. mapping is the lobby the player was
// scouted in and may be empty.
func BuildCard(id domain.PlayerID, username string, ps *domain.PlayerStats, mapping domain.UsernameMapping, cat HeroCatalog) *Card {
	s := domain.Summary{}
	if ps.Stats != nil {
		s = *ps.Stats
	}

	card := &Card{
		PlayerID:      id,
		Username:      username,
		ProfileURL:    ProfileURL(id),
		Overall:       Record{Matches: s.TotalMatches, Wins: s.TotalWins, WinRate: WinRate(s.TotalWins, s.TotalMatches, false)},
		Ranked:        Record{Matches: s.RankedMatches, Wins: s.RankedMatchesWins, WinRate: WinRate(s.RankedMatchesWins, s.RankedMatches, false)},
		RankedMode:    modeSummary(s.Ranked),
		UnrankedMode:  modeSummary(s.Unranked),
		TopHeroes:     make([]HeroLine, 0, constants.TopPlayedLimit),
		BestHeroes:    make([]HeroLine, 0, constants.BestHeroesLimit),
		Roles:         RoleDistribution(ps.HeroesRanked, cat),
		WorstMatchups: make([]MatchupLine, 0, constants.WorstMatchupsLimit),
		BestMatchups:  make([]MatchupLine, 0, constants.BestMatchupsLimit),
		Teammates:     []TeammateLine{},
	}
	if level, name, ok := CurrentRank(ps.RankHistory, cat); ok {
		card.Rank = &Rank{Level: level, Name: name}
	}

	for _, h := range TopPlayedHeroes(ps.HeroesRanked, constants.TopPlayedLimit) {
		card.TopHeroes = append(card.TopHeroes, heroLine(h, cat))
	}
	for _, h := range BestHeroes(ps.HeroesRanked, constants.BestHeroMinMatches, constants.BestHeroesLimit) {
		card.BestHeroes = append(card.BestHeroes, heroLine(h, cat))
	}
	for _, m := range WorstMatchups(ps.Matchups, constants.WorstMatchupsLimit) {
		card.WorstMatchups = append(card.WorstMatchups, matchupLine(m, cat))
	}
	for _, m := range BestMatchups(ps.Matchups, constants.BestMatchupsLimit) {
		card.BestMatchups = append(card.BestMatchups, matchupLine(m, cat))
	}
	for _, tm := range FrequentTeammates(ps.Teammates, mapping) {
		card.Teammates = append(card.Teammates, TeammateLine{
			PlayerID: strconv.FormatInt(tm.Info.PlayerUID, 10),
			NickName: tm.Info.NickName,
			Matches:  tm.Matches,
			Wins:     tm.Win,
			WinRate:  WinRate(tm.Win, tm.Matches, false),
		})
	}
	return card
}

func modeSummary(m domain.ModeCounters) ModeSummary {
	return ModeSummary{
		KDA:        round1(KDA(m.TotalKills, m.TotalDeaths, m.TotalAssists)),
		KDALabel:   FormatKDA(m.TotalKills, m.TotalDeaths, m.TotalAssists),
		TimePlayed: FormatTime(m.TotalTimePlayed),
		Seconds:    m.TotalTimePlayed,
	}
}

func heroLine(h domain.HeroRecord, cat HeroCatalog) HeroLine {
	return HeroLine{
		HeroID:  h.HeroID,
		Name:    cat.HeroName(h.HeroID),
		Role:    cat.HeroRole(h.HeroID),
		Matches: h.Matches,
		Wins:    h.Win,
		WinRate: WinRate(h.Win, h.Matches, false),
		KDA:     FormatKDA(h.Kills, h.Deaths, h.Assists),
	}
}

func matchupLine(m domain.Matchup, cat HeroCatalog) MatchupLine {
	id := strconv.FormatInt(m.HeroID, 10)
	return MatchupLine{
		HeroID:          id,
		Name:            cat.HeroName(id),
		Matches:         m.Matches,
		OpponentWinRate: WinRate(m.Wins, m.Matches, false),
		PlayerWinRate:   WinRate(m.Wins, m.Matches, true),
	}
}
