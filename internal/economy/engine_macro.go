package economy

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/database/repositories"
	"github.com/hazelvale/economica/internal/economy/invest"
	"github.com/hazelvale/economica/internal/economy/macro"
)

// tickConcurrency bounds the parallel per-server work in the batch jobs.
const tickConcurrency = 8

// Report returns the server's macro state for display.
func (e *Engine) Report(ctx context.Context, serverID snowflake.ID) (*models.EconomicState, error) {
	var state *models.EconomicState
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		state, err = e.loadState(ctx, r, serverID)
		return err
	})
	return state, err
}

// History returns the tick snapshots recorded since the given time.
func (e *Engine) History(ctx context.Context, serverID snowflake.ID, since time.Time) ([]*models.MarketSnapshot, error) {
	var snapshots []*models.MarketSnapshot
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		snapshots, err = r.Snapshots.ListSince(ctx, serverID, since)
		return err
	})
	return snapshots, err
}

// Tick advances one server's macro state: GDP over the rolling window, price
// level, Gini, unemployment, the cycle phase, item repricing and the
// inequality sweep, all committed atomically with an append-only snapshot.
func (e *Engine) Tick(ctx context.Context, serverID snowflake.ID) error {
	return e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		now := time.Now()
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		accounts, err := r.Accounts.List(ctx, serverID)
		if err != nil {
			return err
		}

		since := now.AddDate(0, 0, -e.cfg.Economy.GDPWindowDays)
		windowGDP, err := r.Transactions.SumQualifying(ctx, serverID, since)
		if err != nil {
			return err
		}

		moneySupply := state.Treasury
		netWorths := make([]int64, 0, len(accounts))
		var automation float64
		for _, acct := range accounts {
			moneySupply += acct.Liquid()
			netWorths = append(netWorths, acct.Liquid())
			if acct.Job == "" {
				continue
			}
			if job, ok := e.labor.Catalog().Get(acct.Job); ok {
				automation += job.AutomationRisk
			}
		}
		if len(accounts) > 0 {
			automation /= float64(len(accounts))
		}

		e.macro.ApplyTick(state, macro.TickInputs{
			WindowGDP:          windowGDP,
			MoneySupply:        moneySupply,
			NetWorths:          netWorths,
			AutomationExposure: automation,
			Now:                now,
		})

		items, err := r.Market.List(ctx, serverID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.FeedSymbol != "" {
				// Feed-linked quote; with the upstream and cache both gone
				// the stored price stands as the last known value.
				if quote, err := e.Quote(ctx, item.FeedSymbol); err == nil {
					e.exchange.RepriceQuoted(item, state, quote.Price, now)
				}
			} else {
				e.exchange.Reprice(item, state, now)
			}
			if err := r.Market.Save(ctx, item); err != nil {
				return err
			}
		}

		before := make([]int64, len(accounts))
		for i, acct := range accounts {
			before[i] = acct.Liquid()
		}
		if swept := e.macro.CheckInequality(state, accounts, now); swept > 0 {
			for i, acct := range accounts {
				if acct.Liquid() != before[i] {
					if err := r.Accounts.Save(ctx, acct); err != nil {
						return err
					}
				}
			}
		}

		snapshot := &models.MarketSnapshot{
			ServerID:         serverID,
			GDP:              state.GDP,
			PriceLevel:       state.PriceLevel,
			Gini:             state.Gini,
			UnemploymentRate: state.UnemploymentRate,
			CyclePhase:       state.CyclePhase,
			MoneySupply:      state.MoneySupply,
			Treasury:         state.Treasury,
			Timestamp:        now,
		}
		if err := r.Snapshots.Create(ctx, snapshot); err != nil {
			return err
		}
		return r.States.Save(ctx, state)
	})
}

// Servers lists every server with an economy.
func (e *Engine) Servers(ctx context.Context) ([]snowflake.ID, error) {
	return e.serverIDs(ctx)
}

// serverIDs lists every server with an economy.
func (e *Engine) serverIDs(ctx context.Context) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		ids, err = r.States.ListServerIDs(ctx)
		return err
	})
	return ids, err
}

// forEachServer runs fn for every server with bounded parallelism. Failures
// are collected, not fatal, so one broken server never starves the rest.
func (e *Engine) forEachServer(ctx context.Context, fn func(ctx context.Context, serverID snowflake.ID) error) error {
	ids, err := e.serverIDs(ctx)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var errs []error
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(tickConcurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}

// TickAll runs the macro tick for every server.
func (e *Engine) TickAll(ctx context.Context) error {
	return e.forEachServer(ctx, e.Tick)
}

// ApplyReturns marks every open position to market for the current returns
// period. The per-account period stamp keeps a rerun from compounding twice.
func (e *Engine) ApplyReturns(ctx context.Context) error {
	now := time.Now()
	period := invest.PeriodOf(now)

	return e.forEachServer(ctx, func(ctx context.Context, serverID snowflake.ID) error {
		var holders []snowflake.ID
		err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
			positions, err := r.Positions.ListByServer(ctx, serverID)
			if err != nil {
				return err
			}
			seen := make(map[snowflake.ID]bool)
			for _, p := range positions {
				if !seen[p.UserID] {
					seen[p.UserID] = true
					holders = append(holders, p.UserID)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		var errs []error
		for _, userID := range holders {
			err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
				account, err := r.Accounts.Get(ctx, serverID, userID)
				if err != nil {
					return err
				}
				positions, err := r.Positions.ListByUser(ctx, serverID, userID)
				if err != nil {
					return err
				}
				if !e.desk.ApplyPeriod(account, positions, period) {
					return nil
				}
				for _, position := range positions {
					if err := r.Positions.Save(ctx, position); err != nil {
						return err
					}
				}
				return r.Accounts.Save(ctx, account)
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// EnforceLoans defaults every loan past due: seize what the debtor has,
// write off the rest and mark the account.
func (e *Engine) EnforceLoans(ctx context.Context) error {
	now := time.Now()

	var overdue []*models.Loan
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		overdue, err = r.Loans.ListOverdue(ctx, now)
		return err
	})
	if err != nil {
		return err
	}

	var errs []error
	for _, stale := range overdue {
		loanID := stale.ID
		serverID, userID := stale.ServerID, stale.UserID
		err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
			loans, err := r.Loans.ListByUser(ctx, serverID, userID)
			if err != nil {
				return err
			}
			var loan *models.Loan
			for _, l := range loans {
				if l.ID == loanID {
					loan = l
					break
				}
			}
			if loan == nil || !loan.Overdue(now) {
				return nil
			}
			account, err := r.Accounts.Get(ctx, serverID, userID)
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			if err != nil {
				return err
			}
			state, err := e.loadState(ctx, r, serverID)
			if err != nil {
				return err
			}

			e.authority.Default(account, loan, state)
			if err := r.Accounts.Save(ctx, account); err != nil {
				return err
			}
			if err := r.Loans.Save(ctx, loan); err != nil {
				return err
			}
			return r.States.Save(ctx, state)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RollShocks runs the daily event lottery on every server. Returns the
// shocks that landed, keyed by server.
func (e *Engine) RollShocks(ctx context.Context) (map[snowflake.ID]*models.Shock, error) {
	now := time.Now()
	var mu sync.Mutex
	landed := make(map[snowflake.ID]*models.Shock)

	err := e.forEachServer(ctx, func(ctx context.Context, serverID snowflake.ID) error {
		return e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
			state, err := e.loadState(ctx, r, serverID)
			if err != nil {
				return err
			}
			shock := e.macro.RollShock(state, now)
			if shock == nil {
				return nil
			}
			if err := r.States.Save(ctx, state); err != nil {
				return err
			}
			mu.Lock()
			landed[serverID] = shock
			mu.Unlock()
			return nil
		})
	})
	return landed, err
}

// ResolveElections closes every election past term end and opens the next
// cycle with the winner as incumbent.
func (e *Engine) ResolveElections(ctx context.Context) error {
	now := time.Now()

	var expired []*models.ElectedOffice
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		expired, err = r.Offices.ListExpired(ctx, now)
		return err
	})
	if err != nil {
		return err
	}

	var errs []error
	for _, stale := range expired {
		office := stale
		err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
			current, err := r.Offices.GetActive(ctx, office.ServerID, office.Position)
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			if err != nil {
				return err
			}
			if current.ID != office.ID || !now.After(current.TermEndsAt) {
				return nil
			}

			winner := e.authority.Resolve(current)
			if err := r.Offices.Save(ctx, current); err != nil {
				return err
			}
			next, err := e.authority.OpenElection(current.ServerID, current.Position, winner, now)
			if err != nil {
				return err
			}
			return r.Offices.Create(ctx, next)
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
