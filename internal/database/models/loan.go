package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,type:bigint"`
	UserID   snowflake.ID `bun:"user_id,notnull,type:bigint"`

	Principal    int64     `bun:"principal,notnull"`
	Remaining    int64     `bun:"remaining,notnull"`
	InterestRate float64   `bun:"interest_rate,notnull"`
	OriginatedAt time.Time `bun:"originated_at,notnull"`
	DueAt        time.Time `bun:"due_at,notnull"`
	Defaulted    bool      `bun:"defaulted,notnull,default:false"`

	Version   int64     `bun:"version,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Overdue reports whether the loan is past due with debt outstanding.
func (l *Loan) Overdue(now time.Time) bool {
	return !l.Defaulted && l.Remaining > 0 && now.After(l.DueAt)
}
