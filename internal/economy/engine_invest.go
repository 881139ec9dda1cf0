package economy

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/database/repositories"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
	"github.com/hazelvale/economica/internal/economy/invest"
)

// Invest opens a position of the named type, or augments the existing one.
func (e *Engine) Invest(ctx context.Context, serverID, userID snowflake.ID, typeName string, amount int64) (*models.Position, error) {
	var position *models.Position
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		now := time.Now()
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}

		var existing *models.Position
		if typ, ok := e.desk.Catalog().Resolve(typeName); ok {
			existing, err = r.Positions.Get(ctx, serverID, userID, typ.ID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
		}

		position, err = e.desk.Open(account, existing, typeName, amount, state, now)
		if err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if existing != nil {
			if err := r.Positions.Save(ctx, position); err != nil {
				return err
			}
		} else if err := r.Positions.Create(ctx, position); err != nil {
			return err
		}
		return r.Transactions.Record(ctx, &models.Transaction{
			ServerID:   serverID,
			FromUserID: userID,
			Amount:     amount,
			Type:       models.TxInvest,
		})
	})
	return position, err
}

// Portfolio lists the user's open positions.
func (e *Engine) Portfolio(ctx context.Context, serverID, userID snowflake.ID) ([]*models.Position, error) {
	var positions []*models.Position
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		positions, err = r.Positions.ListByUser(ctx, serverID, userID)
		return err
	})
	return positions, err
}

// Liquidate closes the named position, crediting the marked value minus any
// early-exit penalty.
func (e *Engine) Liquidate(ctx context.Context, serverID, userID snowflake.ID, typeName string) (invest.LiquidationResult, error) {
	var result invest.LiquidationResult
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		typ, ok := e.desk.Catalog().Resolve(typeName)
		if !ok {
			return ecoerr.UnknownTargetError{Kind: "investment", Name: typeName}
		}
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		position, err := r.Positions.Get(ctx, serverID, userID, typ.ID)
		if errors.Is(err, sql.ErrNoRows) {
			return ecoerr.NoPositionError{Type: typ.ID}
		}
		if err != nil {
			return err
		}

		result, err = e.desk.Liquidate(account, position, time.Now())
		if err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		return r.Positions.Delete(ctx, position.ID)
	})
	return result, err
}
