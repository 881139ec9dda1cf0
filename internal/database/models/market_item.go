package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// MarketItem is a per-server row for one catalog item. Supply and demand
// counters accumulate between pricing ticks and are reset by the tick that
// consumes them.
type MarketItem struct {
	bun.BaseModel `bun:"table:market_items,alias:mi"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,type:bigint"`
	ItemID   string       `bun:"item_id,notnull"`

	BasePrice    int64   `bun:"base_price,notnull"`
	CurrentPrice int64   `bun:"current_price,notnull"`
	Elasticity   float64 `bun:"elasticity,notnull"`
	Necessity    float64 `bun:"necessity,notnull"`
	FeedSymbol   string  `bun:"feed_symbol,nullzero"`

	DemandCount int `bun:"demand_count,notnull,default:0"`
	SupplyCount int `bun:"supply_count,notnull,default:0"`

	Version   int64     `bun:"version,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
