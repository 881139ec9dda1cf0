package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

type MarketRepository interface {
	// EnsureCatalog inserts any catalog items the server does not have yet
	// and returns the full per-server item list.
	EnsureCatalog(ctx context.Context, serverID snowflake.ID, seed []*models.MarketItem) ([]*models.MarketItem, error)
	Get(ctx context.Context, serverID snowflake.ID, itemID string) (*models.MarketItem, error)
	List(ctx context.Context, serverID snowflake.ID) ([]*models.MarketItem, error)
	Save(ctx context.Context, item *models.MarketItem) error
}

type marketRepository struct {
	db bun.IDB
}

func NewMarketRepository(db bun.IDB) MarketRepository {
	return &marketRepository{db: db}
}

func (r *marketRepository) EnsureCatalog(ctx context.Context, serverID snowflake.ID, seed []*models.MarketItem) ([]*models.MarketItem, error) {
	existing, err := r.List(ctx, serverID)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(existing))
	for _, item := range existing {
		have[item.ItemID] = true
	}

	var missing []*models.MarketItem
	for _, item := range seed {
		if have[item.ItemID] {
			continue
		}
		clone := *item
		clone.ServerID = serverID
		clone.CurrentPrice = clone.BasePrice
		clone.Version = 1
		clone.CreatedAt = time.Now()
		clone.UpdatedAt = time.Now()
		missing = append(missing, &clone)
	}

	if len(missing) > 0 {
		if _, err := r.db.NewInsert().Model(&missing).Exec(ctx); err != nil {
			return nil, err
		}
		existing = append(existing, missing...)
	}
	return existing, nil
}

func (r *marketRepository) Get(ctx context.Context, serverID snowflake.ID, itemID string) (*models.MarketItem, error) {
	item := new(models.MarketItem)
	err := r.db.NewSelect().
		Model(item).
		Where("server_id = ?", serverID).
		Where("item_id = ?", itemID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ecoerr.UnknownTargetError{Kind: "item", Name: itemID}
		}
		return nil, err
	}
	return item, nil
}

func (r *marketRepository) List(ctx context.Context, serverID snowflake.ID) ([]*models.MarketItem, error) {
	var items []*models.MarketItem
	err := r.db.NewSelect().
		Model(&items).
		Where("server_id = ?", serverID).
		Order("base_price ASC").
		Scan(ctx)
	return items, err
}

func (r *marketRepository) Save(ctx context.Context, item *models.MarketItem) error {
	prev := item.Version
	item.Version++
	item.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(item).
		WherePK().
		Where("version = ?", prev).
		Exec(ctx)
	if err != nil {
		item.Version = prev
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		item.Version = prev
		return err
	}
	if rows == 0 {
		item.Version = prev
		return ecoerr.VersionConflictError{Entity: "market_item"}
	}
	return nil
}
