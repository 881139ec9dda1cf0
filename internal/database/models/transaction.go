package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// Transaction types. GDP aggregation sums the qualifying kinds (wage, buy,
// sell) over the rolling window; pure transfers between accounts are excluded
// so moving money around does not inflate output.
const (
	TxWage     = "wage"
	TxBuy      = "buy"
	TxSell     = "sell"
	TxTransfer = "transfer"
	TxCrime    = "crime"
	TxInvest   = "invest"
	TxTax      = "tax"
	TxWelfare  = "welfare"
	TxLoan     = "loan"
)

// GDPQualifying lists the transaction types counted as real output.
var GDPQualifying = []string{TxWage, TxBuy, TxSell}

type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,type:bigint"`

	FromUserID snowflake.ID `bun:"from_user_id,type:bigint"`
	ToUserID   snowflake.ID `bun:"to_user_id,type:bigint"`
	Amount     int64        `bun:"amount,notnull"`
	Type       string       `bun:"type,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
