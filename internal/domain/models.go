package domain

import (
	"time"
)

// PlayerID is the opaque identifier rivalsmeta assigns to a player ("aid").
type PlayerID string

type SearchCandidate struct {
	PlayerID   PlayerID `json:"aid"`
	Name       string   `json:"name"`
	HeadIconID string   `json:"cur_head_icon_id"`
}

type Role string

const (
	RoleVanguard   Role = "vanguard"
	RoleDuelist    Role = "duelist"
	RoleStrategist Role = "strategist"
	RoleUnknown    Role = "unknown"
)

// Roles is the fixed display order for role distributions.
var Roles = []Role{RoleVanguard, RoleDuelist, RoleStrategist}

type Hero struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Role Role   `json:"role" yaml:"role"`
}

// ScoutSession is the persisted summary of one processed screenshot. It holds
// counts only; usernames and player ids stay in memory.
type ScoutSession struct {
	ID            string    `json:"id"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	UsernameCount int       `json:"usernameCount"`
	ResolvedCount int       `json:"resolvedCount"`
	DurationMS    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
