package economy

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/database/repositories"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

// ItemQuote is one shop row with the spread applied both ways.
type ItemQuote struct {
	Item *models.MarketItem
	Buy  int64
	Sell int64
}

// ListMarket returns the shop, seeding the per-server catalog on first touch.
func (e *Engine) ListMarket(ctx context.Context, serverID snowflake.ID) ([]ItemQuote, error) {
	var quotes []ItemQuote
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		items, err := r.Market.EnsureCatalog(ctx, serverID, e.exchange.Catalog().SeedRows())
		if err != nil {
			return err
		}
		quotes = make([]ItemQuote, 0, len(items))
		for _, item := range items {
			quotes = append(quotes, ItemQuote{
				Item: item,
				Buy:  e.exchange.BuyPrice(item),
				Sell: e.exchange.SellPrice(item),
			})
		}
		return nil
	})
	return quotes, err
}

// marketItem resolves a fuzzy item name to the server's priced row, seeding
// the catalog when the server has never traded.
func (e *Engine) marketItem(ctx context.Context, r *repositories.Set, serverID snowflake.ID, name string) (*models.MarketItem, error) {
	def, ok := e.exchange.Catalog().Resolve(name)
	if !ok {
		return nil, ecoerr.UnknownTargetError{Kind: "item", Name: name}
	}
	item, err := r.Market.Get(ctx, serverID, def.ID)
	var unknown ecoerr.UnknownTargetError
	if errors.As(err, &unknown) {
		if _, err = r.Market.EnsureCatalog(ctx, serverID, e.exchange.Catalog().SeedRows()); err != nil {
			return nil, err
		}
		item, err = r.Market.Get(ctx, serverID, def.ID)
	}
	return item, err
}

// Buy purchases qty of the named item at the current ask.
func (e *Engine) Buy(ctx context.Context, serverID, userID snowflake.ID, itemName string, qty int) (int64, error) {
	var cost int64
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		item, err := e.marketItem(ctx, r, serverID, itemName)
		if err != nil {
			return err
		}
		cost, err = e.exchange.Buy(account, item, qty)
		if err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if err := r.Market.Save(ctx, item); err != nil {
			return err
		}
		return r.Transactions.Record(ctx, &models.Transaction{
			ServerID:   serverID,
			FromUserID: userID,
			Amount:     cost,
			Type:       models.TxBuy,
		})
	})
	return cost, err
}

// Sell liquidates qty of the named item from inventory at the current bid.
func (e *Engine) Sell(ctx context.Context, serverID, userID snowflake.ID, itemName string, qty int) (int64, error) {
	var proceeds int64
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		item, err := e.marketItem(ctx, r, serverID, itemName)
		if err != nil {
			return err
		}
		proceeds, err = e.exchange.Sell(account, item, qty)
		if err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if err := r.Market.Save(ctx, item); err != nil {
			return err
		}
		return r.Transactions.Record(ctx, &models.Transaction{
			ServerID: serverID,
			ToUserID: userID,
			Amount:   proceeds,
			Type:     models.TxSell,
		})
	})
	return proceeds, err
}
