package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,type:bigint"`
	UserID   snowflake.ID `bun:"user_id,notnull,type:bigint"`

	Cash int64 `bun:"cash,notnull,default:0"`
	Bank int64 `bun:"bank,notnull,default:0"`

	// Employment. Job is the catalog id, empty when unemployed. Skills maps
	// job track to the earned level; SkillProgress accumulates toward the
	// next level on the current track.
	Job           string         `bun:"job"`
	Skills        map[string]int `bun:"skills,type:jsonb"`
	SkillProgress int            `bun:"skill_progress,notnull,default:0"`

	CreditScore float64   `bun:"credit_score,notnull,default:0.5"`
	Reputation  int       `bun:"reputation,notnull,default:0"`
	JailUntil   time.Time `bun:"jail_until,nullzero"`
	UnionMember bool      `bun:"union_member,notnull,default:false"`

	Inventory map[string]int `bun:"inventory,type:jsonb"`

	LastWork  time.Time `bun:"last_work,nullzero"`
	LastCrime time.Time `bun:"last_crime,nullzero"`
	LastRob   time.Time `bun:"last_rob,nullzero"`

	// Stamp of the last investment-returns period applied to this account.
	// Batch return application skips accounts already stamped with the
	// current period so a retried batch never double-applies.
	LastReturnsPeriod int64 `bun:"last_returns_period,notnull,default:0"`
	LastTaxPeriod     int64 `bun:"last_tax_period,notnull,default:0"`

	Version   int64     `bun:"version,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Liquid returns cash plus bank.
func (a *Account) Liquid() int64 {
	return a.Cash + a.Bank
}

// SkillFor returns the earned level on the given track.
func (a *Account) SkillFor(track string) int {
	if a.Skills == nil {
		return 0
	}
	return a.Skills[track]
}

// Jailed reports whether the account is jailed at the given instant.
func (a *Account) Jailed(now time.Time) bool {
	return a.JailUntil.After(now)
}
