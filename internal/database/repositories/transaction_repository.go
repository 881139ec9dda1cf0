package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/hazelvale/economica/internal/database/models"
)

type TransactionRepository interface {
	Record(ctx context.Context, tx *models.Transaction) error
	// SumQualifying returns the total volume of GDP-qualifying transactions
	// since the given instant.
	SumQualifying(ctx context.Context, serverID snowflake.ID, since time.Time) (int64, error)
	ListRecent(ctx context.Context, serverID, userID snowflake.ID, limit int) ([]*models.Transaction, error)
}

type transactionRepository struct {
	db bun.IDB
}

func NewTransactionRepository(db bun.IDB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Record(ctx context.Context, tx *models.Transaction) error {
	tx.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(tx).Exec(ctx)
	return err
}

func (r *transactionRepository) SumQualifying(ctx context.Context, serverID snowflake.ID, since time.Time) (int64, error) {
	var total int64
	err := r.db.NewSelect().
		Model((*models.Transaction)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("server_id = ?", serverID).
		Where("created_at >= ?", since).
		Where("type IN (?)", bun.In(models.GDPQualifying)).
		Scan(ctx, &total)
	return total, err
}

func (r *transactionRepository) ListRecent(ctx context.Context, serverID, userID snowflake.ID, limit int) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.NewSelect().
		Model(&txs).
		Where("server_id = ?", serverID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("from_user_id = ?", userID).WhereOr("to_user_id = ?", userID)
		}).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return txs, err
}
