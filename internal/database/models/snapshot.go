package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// MarketSnapshot is an append-only record of macro figures at each tick, used
// for history queries and the nightly archive export.
type MarketSnapshot struct {
	bun.BaseModel `bun:"table:market_snapshots,alias:ms"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,type:bigint"`

	GDP              int64   `bun:"gdp,notnull"`
	PriceLevel       float64 `bun:"price_level,notnull"`
	Gini             float64 `bun:"gini,notnull"`
	UnemploymentRate float64 `bun:"unemployment_rate,notnull"`
	CyclePhase       string  `bun:"cycle_phase,notnull"`
	MoneySupply      int64   `bun:"money_supply,notnull"`
	Treasury         int64   `bun:"treasury,notnull"`

	Timestamp time.Time `bun:"timestamp,notnull"`
}
