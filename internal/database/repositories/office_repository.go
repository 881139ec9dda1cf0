package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

type OfficeRepository interface {
	Create(ctx context.Context, office *models.ElectedOffice) error
	GetActive(ctx context.Context, serverID snowflake.ID, position string) (*models.ElectedOffice, error)
	ListActive(ctx context.Context, serverID snowflake.ID) ([]*models.ElectedOffice, error)
	ListExpired(ctx context.Context, now time.Time) ([]*models.ElectedOffice, error)
	Save(ctx context.Context, office *models.ElectedOffice) error
}

type officeRepository struct {
	db bun.IDB
}

func NewOfficeRepository(db bun.IDB) OfficeRepository {
	return &officeRepository{db: db}
}

func (r *officeRepository) Create(ctx context.Context, office *models.ElectedOffice) error {
	office.Version = 1
	office.CreatedAt = time.Now()
	office.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(office).Exec(ctx)
	return err
}

func (r *officeRepository) GetActive(ctx context.Context, serverID snowflake.ID, position string) (*models.ElectedOffice, error) {
	office := new(models.ElectedOffice)
	err := r.db.NewSelect().
		Model(office).
		Where("server_id = ?", serverID).
		Where("position = ?", position).
		Where("resolved = false").
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return office, nil
}

func (r *officeRepository) ListActive(ctx context.Context, serverID snowflake.ID) ([]*models.ElectedOffice, error) {
	var offices []*models.ElectedOffice
	err := r.db.NewSelect().
		Model(&offices).
		Where("server_id = ?", serverID).
		Where("resolved = false").
		Order("position ASC").
		Scan(ctx)
	return offices, err
}

func (r *officeRepository) ListExpired(ctx context.Context, now time.Time) ([]*models.ElectedOffice, error) {
	var offices []*models.ElectedOffice
	err := r.db.NewSelect().
		Model(&offices).
		Where("resolved = false").
		Where("term_ends_at < ?", now).
		Order("term_ends_at ASC").
		Scan(ctx)
	return offices, err
}

func (r *officeRepository) Save(ctx context.Context, office *models.ElectedOffice) error {
	prev := office.Version
	office.Version++
	office.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(office).
		WherePK().
		Where("version = ?", prev).
		Exec(ctx)
	if err != nil {
		office.Version = prev
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		office.Version = prev
		return err
	}
	if rows == 0 {
		office.Version = prev
		return ecoerr.VersionConflictError{Entity: "elected_office"}
	}
	return nil
}
