// Package economy wires the simulation components behind one facade. The
// dispatcher calls one method per user command; the scheduler calls the tick
// and batch entry points. Every operation runs inside a single database
// transaction and retries a bounded number of times on version conflicts.
package economy

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/database/repositories"
	"github.com/hazelvale/economica/internal/economy/classes"
	"github.com/hazelvale/economica/internal/economy/crime"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
	"github.com/hazelvale/economica/internal/economy/fiscal"
	"github.com/hazelvale/economica/internal/economy/invest"
	"github.com/hazelvale/economica/internal/economy/labor"
	"github.com/hazelvale/economica/internal/economy/macro"
	"github.com/hazelvale/economica/internal/economy/market"
	"github.com/hazelvale/economica/internal/economy/rng"
	"github.com/hazelvale/economica/internal/pricefeed"
)

const maxConflictRetries = 3

type Engine struct {
	db  *database.DB
	cfg *config.Config

	classifier *classes.Classifier
	labor      *labor.Market
	exchange   *market.Exchange
	desk       *invest.Desk
	underworld *crime.Underworld
	authority  *fiscal.Authority
	macro      *macro.Engine
	feed       *pricefeed.Client
}

// New builds the engine with the default catalogs. feed may be nil when no
// external quote source is configured.
func New(db *database.DB, cfg *config.Config, feed *pricefeed.Client, src rng.Source) *Engine {
	if src == nil {
		src = rng.Default()
	}
	eco := cfg.Economy
	classifier := classes.NewClassifier(eco.ClassUpperBounds)
	return &Engine{
		db:         db,
		cfg:        cfg,
		classifier: classifier,
		labor:      labor.NewMarket(eco, labor.NewCatalog(nil), src),
		exchange:   market.NewExchange(eco, market.NewCatalog(nil)),
		desk:       invest.NewDesk(eco, invest.NewCatalog(nil), src),
		underworld: crime.NewUnderworld(eco, crime.NewCatalog(nil), src),
		authority:  fiscal.NewAuthority(eco, classifier),
		macro:      macro.NewEngine(eco, classifier, macro.DefaultShocks(), src),
		feed:       feed,
	}
}

// withTx runs fn in one transaction with a repository set bound to it.
func (e *Engine) withTx(ctx context.Context, fn func(ctx context.Context, r *repositories.Set) error) error {
	return e.db.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, repositories.New(tx))
	})
}

// withRetry reruns the whole transaction on optimistic-lock conflicts.
// Anything else surfaces immediately.
func (e *Engine) withRetry(ctx context.Context, fn func(ctx context.Context, r *repositories.Set) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = e.withTx(ctx, fn)
		var conflict ecoerr.VersionConflictError
		if !errors.As(err, &conflict) {
			return err
		}
	}
	return err
}

// loadState fetches the server economy, seeding a fresh one on first touch.
func (e *Engine) loadState(ctx context.Context, r *repositories.Set, serverID snowflake.ID) (*models.EconomicState, error) {
	return r.States.GetOrCreate(ctx, serverID, func() *models.EconomicState {
		return e.macro.NewState(serverID, time.Now())
	})
}

func (e *Engine) account(ctx context.Context, r *repositories.Set, serverID, userID snowflake.ID) (*models.Account, error) {
	return r.Accounts.GetOrCreate(ctx, serverID, userID, e.cfg.Economy.StartingCash)
}

// Balance returns the account, creating it with the starting grant on first
// touch, plus the derived class.
func (e *Engine) Balance(ctx context.Context, serverID, userID snowflake.ID) (*models.Account, classes.Class, error) {
	var account *models.Account
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		account, err = e.account(ctx, r, serverID, userID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return account, e.classifier.Classify(account.Liquid()), nil
}

// Deposit moves cash into the bank.
func (e *Engine) Deposit(ctx context.Context, serverID, userID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return ecoerr.InvalidAmountError{Amount: amount}
	}
	return e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		if account.Cash < amount {
			return ecoerr.InsufficientFundsError{Have: account.Cash, Need: amount}
		}
		account.Cash -= amount
		account.Bank += amount
		return r.Accounts.Save(ctx, account)
	})
}

// Withdraw moves bank funds back to cash.
func (e *Engine) Withdraw(ctx context.Context, serverID, userID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return ecoerr.InvalidAmountError{Amount: amount}
	}
	return e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		if account.Bank < amount {
			return ecoerr.InsufficientFundsError{Have: account.Bank, Need: amount}
		}
		account.Bank -= amount
		account.Cash += amount
		return r.Accounts.Save(ctx, account)
	})
}

// Transfer moves cash between two accounts on the same server.
func (e *Engine) Transfer(ctx context.Context, serverID, fromID, toID snowflake.ID, amount int64) error {
	if amount <= 0 {
		return ecoerr.InvalidAmountError{Amount: amount}
	}
	if fromID == toID {
		return ecoerr.SelfTargetError{}
	}
	return e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		from, err := e.account(ctx, r, serverID, fromID)
		if err != nil {
			return err
		}
		to, err := e.account(ctx, r, serverID, toID)
		if err != nil {
			return err
		}
		if from.Cash < amount {
			return ecoerr.InsufficientFundsError{Have: from.Cash, Need: amount}
		}

		from.Cash -= amount
		to.Cash += amount
		if err := r.Accounts.Save(ctx, from); err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, to); err != nil {
			return err
		}
		return r.Transactions.Record(ctx, &models.Transaction{
			ServerID:   serverID,
			FromUserID: fromID,
			ToUserID:   toID,
			Amount:     amount,
			Type:       models.TxTransfer,
		})
	})
}

// LeaderboardEntry pairs an account with its derived class for display.
type LeaderboardEntry struct {
	Account *models.Account
	Class   classes.Class
}

// Leaderboard returns the wealthiest accounts on the server.
func (e *Engine) Leaderboard(ctx context.Context, serverID snowflake.ID, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		accounts, err := r.Accounts.ListTop(ctx, serverID, limit)
		if err != nil {
			return err
		}
		entries = make([]LeaderboardEntry, 0, len(accounts))
		for _, acct := range accounts {
			entries = append(entries, LeaderboardEntry{
				Account: acct,
				Class:   e.classifier.Classify(acct.Liquid()),
			})
		}
		return nil
	})
	return entries, err
}

// ClassDistribution counts the server's accounts per economic class.
func (e *Engine) ClassDistribution(ctx context.Context, serverID snowflake.ID) (map[classes.Class]int, error) {
	dist := make(map[classes.Class]int, classes.Count)
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		accounts, err := r.Accounts.List(ctx, serverID)
		if err != nil {
			return err
		}
		for _, acct := range accounts {
			dist[e.classifier.Classify(acct.Liquid())]++
		}
		return nil
	})
	return dist, err
}

// Quote fetches an external market quote through the price feed.
func (e *Engine) Quote(ctx context.Context, symbol string) (pricefeed.Quote, error) {
	if e.feed == nil {
		return pricefeed.Quote{}, ecoerr.FeedUnavailableError{Symbol: symbol}
	}
	return e.feed.Fetch(ctx, symbol)
}
