// Package market implements the goods exchange: buying and selling catalog
// items at dynamic prices driven by the price level and per-item demand.
package market

import (
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

type Exchange struct {
	cfg     config.EconomyConfig
	catalog *Catalog
}

func NewExchange(cfg config.EconomyConfig, catalog *Catalog) *Exchange {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Exchange{cfg: cfg, catalog: catalog}
}

func (e *Exchange) Catalog() *Catalog {
	return e.catalog
}

// BuyPrice is the per-unit price a buyer pays: the current quote plus the
// spread surcharge.
func (e *Exchange) BuyPrice(item *models.MarketItem) int64 {
	return int64(float64(item.CurrentPrice) * (1 + e.cfg.Spread))
}

// SellPrice is the per-unit price a seller receives: the current quote minus
// the spread discount.
func (e *Exchange) SellPrice(item *models.MarketItem) int64 {
	return int64(float64(item.CurrentPrice) * (1 - e.cfg.Spread))
}

// Buy purchases qty units for cash and records the demand for the next
// pricing tick. The full order is priced at the quoted rate; partial fills
// do not exist.
func (e *Exchange) Buy(account *models.Account, item *models.MarketItem, qty int) (int64, error) {
	if qty <= 0 {
		return 0, ecoerr.InvalidAmountError{Amount: int64(qty)}
	}
	cost := e.BuyPrice(item) * int64(qty)
	if account.Cash < cost {
		return 0, ecoerr.InsufficientFundsError{Have: account.Cash, Need: cost}
	}

	account.Cash -= cost
	if account.Inventory == nil {
		account.Inventory = make(map[string]int)
	}
	account.Inventory[item.ItemID] += qty
	item.DemandCount += qty
	return cost, nil
}

// Sell liquidates qty units from inventory at the discounted quote and
// records the supply for the next pricing tick.
func (e *Exchange) Sell(account *models.Account, item *models.MarketItem, qty int) (int64, error) {
	if qty <= 0 {
		return 0, ecoerr.InvalidAmountError{Amount: int64(qty)}
	}
	have := account.Inventory[item.ItemID]
	if have < qty {
		return 0, ecoerr.InsufficientInventoryError{Item: item.ItemID, Have: have, Need: qty}
	}

	proceeds := e.SellPrice(item) * int64(qty)
	account.Cash += proceeds
	account.Inventory[item.ItemID] -= qty
	if account.Inventory[item.ItemID] == 0 {
		delete(account.Inventory, item.ItemID)
	}
	item.SupplyCount += qty
	return proceeds, nil
}

// Reprice recomputes the quote from the server price level and the demand
// accumulated since the last tick, then resets the counters. Essential goods
// never fall below half their necessity-weighted base price.
func (e *Exchange) Reprice(item *models.MarketItem, state *models.EconomicState, now time.Time) {
	demandFactor := float64(1+item.DemandCount) / float64(1+item.SupplyCount)
	demandAdj := 1 + (demandFactor-1)*item.Elasticity

	price := float64(item.BasePrice) * state.PriceLevel * demandAdj
	if floor := float64(item.BasePrice) * item.Necessity * 0.5; price < floor {
		price = floor
	}
	if price < 1 {
		price = 1
	}

	item.CurrentPrice = int64(price)
	item.DemandCount = 0
	item.SupplyCount = 0
	item.UpdatedAt = now
}

// RepriceQuoted pegs a feed-linked item to the external spot price scaled by
// the server price level. The demand counters are consumed like any other
// reprice so accumulated pressure never leaks into a later tick.
func (e *Exchange) RepriceQuoted(item *models.MarketItem, state *models.EconomicState, spot float64, now time.Time) {
	price := spot * state.PriceLevel
	if price < 1 {
		price = 1
	}
	item.CurrentPrice = int64(price)
	item.DemandCount = 0
	item.SupplyCount = 0
	item.UpdatedAt = now
}
