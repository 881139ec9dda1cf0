package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// Position is one open investment holding. Value is the mark-to-market value
// advanced by the returns batch; Principal never changes after entry except
// by augmentation.
type Position struct {
	bun.BaseModel `bun:"table:positions,alias:p"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,type:bigint"`
	UserID   snowflake.ID `bun:"user_id,notnull,type:bigint"`

	Type            string    `bun:"type,notnull"`
	Principal       int64     `bun:"principal,notnull"`
	Value           float64   `bun:"value,notnull"`
	EntryPriceLevel float64   `bun:"entry_price_level,notnull"`
	EnteredAt       time.Time `bun:"entered_at,notnull"`

	Version   int64     `bun:"version,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
