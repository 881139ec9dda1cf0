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

type AccountRepository interface {
	GetOrCreate(ctx context.Context, serverID, userID snowflake.ID, startingCash int64) (*models.Account, error)
	Get(ctx context.Context, serverID, userID snowflake.ID) (*models.Account, error)
	// Save persists the account with optimistic versioning and returns
	// ecoerr.VersionConflictError when a concurrent writer got there first.
	Save(ctx context.Context, account *models.Account) error
	List(ctx context.Context, serverID snowflake.ID) ([]*models.Account, error)
	ListTop(ctx context.Context, serverID snowflake.ID, limit int) ([]*models.Account, error)
	CountEmployed(ctx context.Context, serverID snowflake.ID, job string) (int, error)
}

type accountRepository struct {
	db bun.IDB
}

func NewAccountRepository(db bun.IDB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetOrCreate(ctx context.Context, serverID, userID snowflake.ID, startingCash int64) (*models.Account, error) {
	account, err := r.Get(ctx, serverID, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	account = &models.Account{
		ServerID:    serverID,
		UserID:      userID,
		Cash:        startingCash,
		CreditScore: 0.5,
		Skills:      map[string]int{},
		Inventory:   map[string]int{},
		Version:     1,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if _, err := r.db.NewInsert().Model(account).Exec(ctx); err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) Get(ctx context.Context, serverID, userID snowflake.ID) (*models.Account, error) {
	account := new(models.Account)
	err := r.db.NewSelect().
		Model(account).
		Where("server_id = ?", serverID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *accountRepository) Save(ctx context.Context, account *models.Account) error {
	prev := account.Version
	account.Version++
	account.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(account).
		WherePK().
		Where("version = ?", prev).
		Exec(ctx)
	if err != nil {
		account.Version = prev
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		account.Version = prev
		return err
	}
	if rows == 0 {
		account.Version = prev
		return ecoerr.VersionConflictError{Entity: "account"}
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context, serverID snowflake.ID) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.NewSelect().
		Model(&accounts).
		Where("server_id = ?", serverID).
		Order("id ASC").
		Scan(ctx)
	return accounts, err
}

func (r *accountRepository) ListTop(ctx context.Context, serverID snowflake.ID, limit int) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.NewSelect().
		Model(&accounts).
		Where("server_id = ?", serverID).
		OrderExpr("cash + bank DESC").
		Limit(limit).
		Scan(ctx)
	return accounts, err
}

func (r *accountRepository) CountEmployed(ctx context.Context, serverID snowflake.ID, job string) (int, error) {
	return r.db.NewSelect().
		Model((*models.Account)(nil)).
		Where("server_id = ?", serverID).
		Where("job = ?", job).
		Count(ctx)
}
