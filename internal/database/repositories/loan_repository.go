package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	ListByUser(ctx context.Context, serverID, userID snowflake.ID) ([]*models.Loan, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error)
	Save(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id int64) error
}

type loanRepository struct {
	db bun.IDB
}

func NewLoanRepository(db bun.IDB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	loan.Version = 1
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(loan).Exec(ctx)
	return err
}

func (r *loanRepository) ListByUser(ctx context.Context, serverID, userID snowflake.ID) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.NewSelect().
		Model(&loans).
		Where("server_id = ?", serverID).
		Where("user_id = ?", userID).
		Where("remaining > 0").
		Order("due_at ASC").
		Scan(ctx)
	return loans, err
}

func (r *loanRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.NewSelect().
		Model(&loans).
		Where("due_at < ?", now).
		Where("remaining > 0").
		Where("defaulted = false").
		Order("due_at ASC").
		Scan(ctx)
	return loans, err
}

func (r *loanRepository) Save(ctx context.Context, loan *models.Loan) error {
	prev := loan.Version
	loan.Version++
	loan.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(loan).
		WherePK().
		Where("version = ?", prev).
		Exec(ctx)
	if err != nil {
		loan.Version = prev
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		loan.Version = prev
		return err
	}
	if rows == 0 {
		loan.Version = prev
		return ecoerr.VersionConflictError{Entity: "loan"}
	}
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Loan)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
