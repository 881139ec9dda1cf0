// Package invest implements the investment desk: opening positions, marking
// them to market with a stochastic return process and liquidating with an
// early-withdrawal penalty.
package invest

import (
	"math"
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
	"github.com/hazelvale/economica/internal/economy/rng"
)

// yearHours converts return-period lengths to the annualized Mu/Sigma scale.
const yearHours = 365 * 24

// ReturnsPeriod is the fixed cadence at which the batch marks open positions
// to market.
const ReturnsPeriod = 12 * time.Hour

// PeriodOf numbers the returns period containing the instant.
func PeriodOf(now time.Time) int64 {
	return now.Unix() / int64(ReturnsPeriod/time.Second)
}

type Desk struct {
	cfg     config.EconomyConfig
	catalog *Catalog
	rand    rng.Source
}

func NewDesk(cfg config.EconomyConfig, catalog *Catalog, src rng.Source) *Desk {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	if src == nil {
		src = rng.Default()
	}
	return &Desk{cfg: cfg, catalog: catalog, rand: src}
}

func (d *Desk) Catalog() *Catalog {
	return d.catalog
}

// Open moves cash into a position of the named type. When the account
// already holds that type the stake is added to it; the entry timestamp
// resets so the maturity clock restarts on every top-up.
func (d *Desk) Open(account *models.Account, existing *models.Position, typeName string, amount int64, state *models.EconomicState, now time.Time) (*models.Position, error) {
	typ, ok := d.catalog.Resolve(typeName)
	if !ok {
		return nil, ecoerr.UnknownTargetError{Kind: "investment", Name: typeName}
	}
	if amount <= 0 {
		return nil, ecoerr.InvalidAmountError{Amount: amount}
	}
	if amount < typ.Minimum {
		return nil, ecoerr.BelowMinimumError{Type: typ.ID, Amount: amount, Minimum: typ.Minimum}
	}
	if account.Cash < amount {
		return nil, ecoerr.InsufficientFundsError{Have: account.Cash, Need: amount}
	}

	account.Cash -= amount
	if existing != nil {
		existing.Principal += amount
		existing.Value += float64(amount)
		existing.EnteredAt = now
		return existing, nil
	}
	return &models.Position{
		ServerID:        account.ServerID,
		UserID:          account.UserID,
		Type:            typ.ID,
		Principal:       amount,
		Value:           float64(amount),
		EntryPriceLevel: state.PriceLevel,
		EnteredAt:       now,
	}, nil
}

// Step marks the position to market over the elapsed period using geometric
// Brownian motion with the type's annualized drift and volatility. The value
// can shrink but never goes negative.
func (d *Desk) Step(position *models.Position, elapsed time.Duration) {
	typ, ok := d.catalog.Get(position.Type)
	if !ok {
		return
	}
	dt := elapsed.Hours() / yearHours
	if dt <= 0 {
		return
	}
	z := d.rand.NormFloat64()
	growth := math.Exp((typ.Mu-typ.Sigma*typ.Sigma/2)*dt + typ.Sigma*math.Sqrt(dt)*z)
	position.Value *= growth
}

// ApplyPeriod steps every position one returns period and stamps the account
// with the period number. An account already stamped at or past the period is
// left untouched, so a rerun of the batch never compounds returns twice.
func (d *Desk) ApplyPeriod(account *models.Account, positions []*models.Position, period int64) bool {
	if account.LastReturnsPeriod >= period {
		return false
	}
	for _, position := range positions {
		d.Step(position, ReturnsPeriod)
	}
	account.LastReturnsPeriod = period
	return true
}

// Penalty returns the early-withdrawal charge on the position's current
// value. It is the configured maximum at entry, decays linearly as the
// position ages and reaches zero at maturity. Illiquid types mature slower.
func (d *Desk) Penalty(position *models.Position, now time.Time) int64 {
	typ, ok := d.catalog.Get(position.Type)
	if !ok {
		return 0
	}
	maturity := d.cfg.Maturity()
	if typ.Liquidity > 0 {
		maturity = time.Duration(float64(maturity) / typ.Liquidity)
	}
	held := now.Sub(position.EnteredAt)
	if held >= maturity {
		return 0
	}
	rate := d.cfg.MaxEarlyPenalty * (1 - float64(held)/float64(maturity))
	return int64(position.Value * rate)
}

type LiquidationResult struct {
	Payout  int64
	Penalty int64
	Gain    int64 // payout minus principal, negative on a loss
}

// Liquidate closes the position, crediting the marked value minus any early
// penalty to cash. The caller deletes the position row afterwards.
func (d *Desk) Liquidate(account *models.Account, position *models.Position, now time.Time) (LiquidationResult, error) {
	if position == nil {
		return LiquidationResult{}, ecoerr.NoPositionError{Type: ""}
	}
	penalty := d.Penalty(position, now)
	payout := int64(position.Value) - penalty
	if payout < 0 {
		payout = 0
	}
	account.Cash += payout
	return LiquidationResult{
		Payout:  payout,
		Penalty: penalty,
		Gain:    payout - position.Principal,
	}, nil
}
