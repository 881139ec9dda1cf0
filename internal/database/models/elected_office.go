package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// Political positions.
const (
	OfficeMayor          = "mayor"
	OfficeTreasurer      = "treasurer"
	OfficePoliceChief    = "police_chief"
	OfficeLaborSecretary = "labor_secretary"
	OfficeCentralBanker  = "central_banker"
)

// Positions is the canonical office list.
var Positions = []string{
	OfficeMayor,
	OfficeTreasurer,
	OfficePoliceChief,
	OfficeLaborSecretary,
	OfficeCentralBanker,
}

// Candidacy records one registered candidate and their tally.
type Candidacy struct {
	UserID       snowflake.ID `json:"user_id"`
	RegisteredAt time.Time    `json:"registered_at"`
	Votes        int          `json:"votes"`
}

// ElectedOffice is one election cycle for one position. A row is created when
// the election opens, resolved at term end, and superseded by the next cycle.
type ElectedOffice struct {
	bun.BaseModel `bun:"table:elected_offices,alias:eo"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,type:bigint"`
	Position string       `bun:"position,notnull"`

	Holder     snowflake.ID      `bun:"holder,type:bigint"`
	TermEndsAt time.Time         `bun:"term_ends_at,notnull"`
	Candidates []Candidacy       `bun:"candidates,type:jsonb"`
	Ballots    map[string]string `bun:"ballots,type:jsonb"` // voter id -> candidate id, one ballot each
	Resolved   bool              `bun:"resolved,notnull,default:false"`

	Version   int64     `bun:"version,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
