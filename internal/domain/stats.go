package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PlayerStats is a season statistics document as served by rivalsmeta.
type PlayerStats struct {
	Stats        *Summary        `json:"stats"`
	Teammates    []Teammate      `json:"teammates"`
	RankHistory  []RankEntry     `json:"rank_history"`
	HeroesRanked HeroTable       `json:"heroes_ranked"`
	Matchups     []Matchup       `json:"matchups"`
	Raw          json.RawMessage `json:"-"`
}

type Summary struct {
	TotalMatches      int          `json:"total_matches"`
	TotalWins         int          `json:"total_wins"`
	RankedMatches     int          `json:"ranked_matches"`
	RankedMatchesWins int          `json:"ranked_matches_wins"`
	Ranked            ModeCounters `json:"ranked"`
	Unranked          ModeCounters `json:"unranked"`
}

type ModeCounters struct {
	TotalKills      int     `json:"total_kills"`
	TotalAssists    int     `json:"total_assists"`
	TotalDeaths     int     `json:"total_deaths"`
	TotalTimePlayed float64 `json:"total_time_played"` // seconds
}

type Teammate struct {
	Matches int          `json:"matches"`
	Win     int          `json:"win"`
	Info    TeammateInfo `json:"info"`
}

type TeammateInfo struct {
	NickName   string `json:"nick_name"`
	PlayerIcon int64  `json:"player_icon"`
	PlayerUID  int64  `json:"player_uid"`
}

type RankEntry struct {
	MatchTimeStamp int64      `json:"match_time_stamp"`
	Rank           RankChange `json:"rank"`
}

type RankChange struct {
	Level    int     `json:"level"`
	NewLevel int     `json:"new_level"`
	AddScore float64 `json:"add_score"`
	NewScore float64 `json:"new_score"`
}

type HeroStats struct {
	Matches int `json:"matches"`
	Win     int `json:"win"`
	MVP     int `json:"mvp"`
	SVP     int `json:"svp"`
	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`
}

type HeroRecord struct {
	HeroID string
	HeroStats
}

// HeroTable is the heroes_ranked object decoded into a slice that keeps the
// upstream key order, so ties in later sorts resolve by document order.
type HeroTable []HeroRecord

func (t *HeroTable) UnmarshalJSON(data []byte) error {
	var out HeroTable
	index := map[string]int{}
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var hs HeroStats
		if err := json.Unmarshal(raw, &hs); err != nil {
			return fmt.Errorf("hero %q: %w", key, err)
		}
		// a repeated key keeps its first position and takes the last value
		if i, ok := index[key]; ok {
			out[i].HeroStats = hs
			return nil
		}
		index[key] = len(out)
		out = append(out, HeroRecord{HeroID: key, HeroStats: hs})
		return nil
	})
	if err != nil {
		return err
	}
	*t = out
	return nil
}

func (t HeroTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, h := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(h.HeroID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(h.HeroStats)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Matchup struct {
	Matches int   `json:"matches"`
	Wins    int   `json:"wins"`
	HeroID  int64 `json:"hero_id"`
}

// ParsePlayerStats decodes and validates an upstream document. The raw bytes
// are kept on the result for pass-through.
func ParsePlayerStats(body []byte) (*PlayerStats, error) {
	var ps PlayerStats
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, &SchemaError{Field: "$", Reason: err.Error()}
	}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	ps.Raw = append(json.RawMessage(nil), body...)
	return &ps, nil
}

func (ps *PlayerStats) Validate() error {
	if ps.Stats == nil {
		return &SchemaError{Field: "stats", Reason: "missing"}
	}
	s := ps.Stats
	if err := checkRecord("stats.total", s.TotalMatches, s.TotalWins); err != nil {
		return err
	}
	if err := checkRecord("stats.ranked_matches", s.RankedMatches, s.RankedMatchesWins); err != nil {
		return err
	}
	for name, mode := range map[string]ModeCounters{"stats.ranked": s.Ranked, "stats.unranked": s.Unranked} {
		if mode.TotalKills < 0 || mode.TotalAssists < 0 || mode.TotalDeaths < 0 || mode.TotalTimePlayed < 0 {
			return &SchemaError{Field: name, Reason: "negative counter"}
		}
	}
	for _, h := range ps.HeroesRanked {
		if h.HeroID == "" {
			return &SchemaError{Field: "heroes_ranked", Reason: "empty hero id"}
		}
		if err := checkRecord("heroes_ranked."+h.HeroID, h.Matches, h.Win); err != nil {
			return err
		}
		if h.Kills < 0 || h.Deaths < 0 || h.Assists < 0 {
			return &SchemaError{Field: "heroes_ranked." + h.HeroID, Reason: "negative counter"}
		}
	}
	for i, m := range ps.Matchups {
		if err := checkRecord(fmt.Sprintf("matchups[%d]", i), m.Matches, m.Wins); err != nil {
			return err
		}
	}
	for i, tm := range ps.Teammates {
		if tm.Matches < 0 || tm.Win < 0 {
			return &SchemaError{Field: fmt.Sprintf("teammates[%d]", i), Reason: "negative counter"}
		}
	}
	return nil
}

func checkRecord(field string, matches, wins int) error {
	if matches < 0 || wins < 0 {
		return &SchemaError{Field: field, Reason: "negative counter"}
	}
	if wins > matches {
		return &SchemaError{Field: field, Reason: fmt.Sprintf("wins %d exceed matches %d", wins, matches)}
	}
	return nil
}
