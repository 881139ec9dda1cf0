package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/hazelvale/economica/internal/database/models"
)

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *models.MarketSnapshot) error
	Latest(ctx context.Context, serverID snowflake.ID) (*models.MarketSnapshot, error)
	ListSince(ctx context.Context, serverID snowflake.ID, since time.Time) ([]*models.MarketSnapshot, error)
}

type snapshotRepository struct {
	db bun.IDB
}

func NewSnapshotRepository(db bun.IDB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *models.MarketSnapshot) error {
	snapshot.Timestamp = time.Now()
	_, err := r.db.NewInsert().Model(snapshot).Exec(ctx)
	return err
}

func (r *snapshotRepository) Latest(ctx context.Context, serverID snowflake.ID) (*models.MarketSnapshot, error) {
	snapshot := new(models.MarketSnapshot)
	err := r.db.NewSelect().
		Model(snapshot).
		Where("server_id = ?", serverID).
		Order("timestamp DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *snapshotRepository) ListSince(ctx context.Context, serverID snowflake.ID, since time.Time) ([]*models.MarketSnapshot, error) {
	var snapshots []*models.MarketSnapshot
	err := r.db.NewSelect().
		Model(&snapshots).
		Where("server_id = ?", serverID).
		Where("timestamp >= ?", since).
		Order("timestamp ASC").
		Scan(ctx)
	return snapshots, err
}
