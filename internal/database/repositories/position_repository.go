package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

type PositionRepository interface {
	Create(ctx context.Context, position *models.Position) error
	Get(ctx context.Context, serverID, userID snowflake.ID, invType string) (*models.Position, error)
	ListByUser(ctx context.Context, serverID, userID snowflake.ID) ([]*models.Position, error)
	ListByServer(ctx context.Context, serverID snowflake.ID) ([]*models.Position, error)
	Save(ctx context.Context, position *models.Position) error
	Delete(ctx context.Context, id int64) error
}

type positionRepository struct {
	db bun.IDB
}

func NewPositionRepository(db bun.IDB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Create(ctx context.Context, position *models.Position) error {
	position.Version = 1
	position.CreatedAt = time.Now()
	position.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(position).Exec(ctx)
	return err
}

func (r *positionRepository) Get(ctx context.Context, serverID, userID snowflake.ID, invType string) (*models.Position, error) {
	position := new(models.Position)
	err := r.db.NewSelect().
		Model(position).
		Where("server_id = ?", serverID).
		Where("user_id = ?", userID).
		Where("type = ?", invType).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return position, nil
}

func (r *positionRepository) ListByUser(ctx context.Context, serverID, userID snowflake.ID) ([]*models.Position, error) {
	var positions []*models.Position
	err := r.db.NewSelect().
		Model(&positions).
		Where("server_id = ?", serverID).
		Where("user_id = ?", userID).
		Order("entered_at ASC").
		Scan(ctx)
	return positions, err
}

func (r *positionRepository) ListByServer(ctx context.Context, serverID snowflake.ID) ([]*models.Position, error) {
	var positions []*models.Position
	err := r.db.NewSelect().
		Model(&positions).
		Where("server_id = ?", serverID).
		Order("id ASC").
		Scan(ctx)
	return positions, err
}

func (r *positionRepository) Save(ctx context.Context, position *models.Position) error {
	prev := position.Version
	position.Version++
	position.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(position).
		WherePK().
		Where("version = ?", prev).
		Exec(ctx)
	if err != nil {
		position.Version = prev
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		position.Version = prev
		return err
	}
	if rows == 0 {
		position.Version = prev
		return ecoerr.VersionConflictError{Entity: "position"}
	}
	return nil
}

func (r *positionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Position)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
