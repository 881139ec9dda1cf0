// Package macro implements the server-level simulation: the business cycle
// state machine, the quantity-theory price level, the Gini coefficient,
// random shocks and the inequality correction. The tick is the only writer
// of aggregate figures; every other component reads the stored snapshot.
package macro

import (
	"sort"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/classes"
	"github.com/hazelvale/economica/internal/economy/rng"
)

// Price level bounds. The damping keeps the level inside these under any
// sane input, the clamp guards against degenerate money-supply states.
const (
	minPriceLevel = 0.1
	maxPriceLevel = 10.0
)

// Unemployment tuning. The cap keeps the job market from closing entirely
// under stacked shocks.
const (
	automationWeight = 0.1
	maxUnemployment  = 0.5
)

type Engine struct {
	cfg        config.EconomyConfig
	classifier *classes.Classifier
	shocks     []ShockKind
	rand       rng.Source
}

func NewEngine(cfg config.EconomyConfig, classifier *classes.Classifier, shocks []ShockKind, src rng.Source) *Engine {
	if classifier == nil {
		classifier = classes.NewClassifier(cfg.ClassUpperBounds)
	}
	if shocks == nil {
		shocks = DefaultShocks()
	}
	if src == nil {
		src = rng.Default()
	}
	return &Engine{cfg: cfg, classifier: classifier, shocks: shocks, rand: src}
}

// NewState seeds a fresh server economy in early expansion.
func (e *Engine) NewState(serverID snowflake.ID, now time.Time) *models.EconomicState {
	return &models.EconomicState{
		ServerID:         serverID,
		CyclePhase:       models.PhaseExpansion,
		PhaseStartedAt:   now,
		PhaseLength:      e.phaseLength(),
		Velocity:         e.cfg.Velocity,
		PriceLevel:       1.0,
		UnemploymentRate: e.cfg.NaturalUnemployment,
		TaxModifier:      1.0,
		MinimumWage:      e.cfg.MinimumWage,
		InterestRate:     e.cfg.InterestRate,
		PoliceStrength:   e.cfg.PoliceStrength,
	}
}

// phaseLength draws the next phase duration in days: the even share of the
// cycle plus bounded jitter so servers do not move in lockstep.
func (e *Engine) phaseLength() float64 {
	base := float64(e.cfg.CycleDays) / float64(len(models.CyclePhases))
	jitter := base * e.cfg.PhaseJitterFrac * (2*e.rand.Float64() - 1)
	return base + jitter
}

// TickInputs are the aggregates the tick consumes, gathered by the caller
// from the store before the state snapshot is rebuilt.
type TickInputs struct {
	WindowGDP   int64   // qualifying transaction volume over the rolling window
	MoneySupply int64   // total liquid holdings plus treasury
	NetWorths   []int64 // full distribution for the Gini pass

	// AutomationExposure is the mean automation risk across the population,
	// employed accounts contributing their job's risk and idle ones zero.
	AutomationExposure float64

	Now time.Time
}

// ApplyTick advances the state one tick: GDP, price level, Gini, cycle day
// and phase. The caller persists the mutated state under its version guard.
func (e *Engine) ApplyTick(state *models.EconomicState, in TickInputs) {
	elapsed := in.Now.Sub(state.LastTickAt)
	if state.LastTickAt.IsZero() {
		elapsed = 0
	}

	state.PreviousGDP = state.GDP
	state.GDP = in.WindowGDP
	if state.LastShock.Active(in.Now) {
		state.GDP = int64(float64(state.GDP) * (1 + state.LastShock.GDPImpact))
	}

	state.MoneySupply = in.MoneySupply
	e.updatePriceLevel(state)
	state.Gini = Gini(in.NetWorths)
	e.updateUnemployment(state, in.AutomationExposure, in.Now)

	state.CycleDay += elapsed.Hours() / 24
	e.advancePhase(state, in.Now)
	state.LastTickAt = in.Now
}

// updatePriceLevel moves the level toward the quantity-theory target
// (M·V)/Y, damped against the previous value so one heavy tick cannot whip
// prices around.
func (e *Engine) updatePriceLevel(state *models.EconomicState) {
	if state.GDP <= 0 || state.MoneySupply <= 0 {
		return
	}
	target := float64(state.MoneySupply) * state.Velocity / float64(state.GDP)
	level := state.PriceLevel + e.cfg.InflationDamping*(target-state.PriceLevel)
	state.PriceLevel = clamp(level, minPriceLevel, maxPriceLevel)
}

// updateUnemployment rests on the natural rate scaled by the phase, plus
// automation displacement of the current workforce and any active shock.
func (e *Engine) updateUnemployment(state *models.EconomicState, exposure float64, now time.Time) {
	rate := e.cfg.NaturalUnemployment*state.PhaseModifiers().Unemployment + exposure*automationWeight
	if state.LastShock.Active(now) {
		rate += state.LastShock.UnemploymentImpact
	}
	state.UnemploymentRate = clamp(rate, 0, maxUnemployment)
}

// advancePhase rolls the cycle forward when the current phase has run its
// jittered length. Transitions are time-driven only.
func (e *Engine) advancePhase(state *models.EconomicState, now time.Time) {
	elapsedDays := now.Sub(state.PhaseStartedAt).Hours() / 24
	if elapsedDays < state.PhaseLength {
		return
	}
	for i, phase := range models.CyclePhases {
		if phase == state.CyclePhase {
			state.CyclePhase = models.CyclePhases[(i+1)%len(models.CyclePhases)]
			break
		}
	}
	state.PhaseStartedAt = now
	state.PhaseLength = e.phaseLength()
	if state.CyclePhase == models.PhaseExpansion {
		state.CycleDay = 0
	}
}

// RollShock runs the daily event lottery. At most one shock is active at a
// time; an active shock suppresses new draws until it expires.
func (e *Engine) RollShock(state *models.EconomicState, now time.Time) *models.Shock {
	if state.LastShock.Active(now) {
		return nil
	}
	for _, kind := range e.shocks {
		if e.rand.Float64() >= kind.Probability {
			continue
		}
		shock := &models.Shock{
			Kind:               kind.ID,
			GDPImpact:          kind.GDPImpact,
			UnemploymentImpact: kind.UnemploymentImpact,
			StartedAt:          now,
			EndsAt:             now.AddDate(0, 0, kind.DurationDays),
		}
		state.LastShock = shock
		return shock
	}
	return nil
}

// CheckInequality fires the redistribution sweep when the Gini coefficient
// crosses the threshold: a wealth tax on the upper classes into the
// treasury, at most once per cooldown window. Returns the amount swept.
func (e *Engine) CheckInequality(state *models.EconomicState, accounts []*models.Account, now time.Time) int64 {
	if state.Gini <= e.cfg.GiniThreshold {
		return 0
	}
	if !state.LastInequalityEvent.IsZero() && now.Sub(state.LastInequalityEvent) < e.cfg.InequalityCooldown() {
		return 0
	}

	var swept int64
	for _, acct := range accounts {
		if e.classifier.Classify(acct.Liquid()) < classes.Upper {
			continue
		}
		levy := int64(float64(acct.Liquid()) * e.cfg.RedistributionRate)
		fromCash := min(levy, acct.Cash)
		acct.Cash -= fromCash
		acct.Bank -= levy - fromCash
		swept += levy
	}
	state.Treasury += swept
	state.LastInequalityEvent = now
	return swept
}

// Gini computes the coefficient over the net-worth distribution with the
// sorted O(n log n) form. Debt-negative accounts count as zero so the
// result stays in [0, 1].
func Gini(netWorths []int64) float64 {
	if len(netWorths) == 0 {
		return 0
	}

	sorted := make([]float64, len(netWorths))
	var total float64
	for i, w := range netWorths {
		if w < 0 {
			w = 0
		}
		sorted[i] = float64(w)
		total += float64(w)
	}
	if total == 0 {
		return 0
	}
	sort.Float64s(sorted)

	n := float64(len(sorted))
	var numerator float64
	for i, w := range sorted {
		numerator += (2*float64(i) + 1 - n) * w
	}
	return numerator / (n * total)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
