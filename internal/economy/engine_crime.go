package economy

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/database/repositories"
	"github.com/hazelvale/economica/internal/economy/crime"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

// CommitCrime attempts the named crime. The result is populated on both
// outcomes; a failed attempt persists the fine and jail term and still
// returns the CaughtError for the caller to present.
func (e *Engine) CommitCrime(ctx context.Context, serverID, userID snowflake.ID, crimeName string) (crime.Result, error) {
	var result crime.Result
	var caught error
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		caught = nil
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}

		result, err = e.underworld.Commit(account, state, crimeName, time.Now())
		var c ecoerr.CaughtError
		if errors.As(err, &c) {
			caught = err
		} else if err != nil {
			return err
		}

		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if result.Success {
			return r.Transactions.Record(ctx, &models.Transaction{
				ServerID: serverID,
				ToUserID: userID,
				Amount:   result.Loot,
				Type:     models.TxCrime,
			})
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, caught
}

// Rob attempts to take cash from another member. Both accounts persist in
// the same transaction so a retried conflict never half-applies the haul.
func (e *Engine) Rob(ctx context.Context, serverID, robberID, victimID snowflake.ID) (crime.RobResult, error) {
	var result crime.RobResult
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		robber, err := e.account(ctx, r, serverID, robberID)
		if err != nil {
			return err
		}
		victim, err := e.account(ctx, r, serverID, victimID)
		if err != nil {
			return err
		}

		result, err = e.underworld.Rob(robber, victim, time.Now())
		if err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, robber); err != nil {
			return err
		}
		return r.Accounts.Save(ctx, victim)
	})
	return result, err
}
