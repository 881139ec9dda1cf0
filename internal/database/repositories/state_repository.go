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

type StateRepository interface {
	GetOrCreate(ctx context.Context, serverID snowflake.ID, seed func() *models.EconomicState) (*models.EconomicState, error)
	Get(ctx context.Context, serverID snowflake.ID) (*models.EconomicState, error)
	Save(ctx context.Context, state *models.EconomicState) error
	ListServerIDs(ctx context.Context) ([]snowflake.ID, error)
}

type stateRepository struct {
	db bun.IDB
}

func NewStateRepository(db bun.IDB) StateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) GetOrCreate(ctx context.Context, serverID snowflake.ID, seed func() *models.EconomicState) (*models.EconomicState, error) {
	state, err := r.Get(ctx, serverID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	state = seed()
	state.ServerID = serverID
	state.Version = 1
	state.CreatedAt = time.Now()
	state.UpdatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(state).Exec(ctx); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *stateRepository) Get(ctx context.Context, serverID snowflake.ID) (*models.EconomicState, error) {
	state := new(models.EconomicState)
	err := r.db.NewSelect().
		Model(state).
		Where("server_id = ?", serverID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (r *stateRepository) Save(ctx context.Context, state *models.EconomicState) error {
	prev := state.Version
	state.Version++
	state.UpdatedAt = time.Now()

	res, err := r.db.NewUpdate().
		Model(state).
		WherePK().
		Where("version = ?", prev).
		Exec(ctx)
	if err != nil {
		state.Version = prev
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		state.Version = prev
		return err
	}
	if rows == 0 {
		state.Version = prev
		return ecoerr.VersionConflictError{Entity: "economic_state"}
	}
	return nil
}

func (r *stateRepository) ListServerIDs(ctx context.Context) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := r.db.NewSelect().
		Model((*models.EconomicState)(nil)).
		Column("server_id").
		Order("server_id ASC").
		Scan(ctx, &ids)
	return ids, err
}
