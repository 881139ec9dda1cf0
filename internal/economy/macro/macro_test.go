package macro

import (
	"math"
	"testing"
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/rng"
)

func testEngine(src rng.Source) *Engine {
	return NewEngine(config.Default().Economy, nil, nil, src)
}

func TestGini(t *testing.T) {
	tests := []struct {
		name   string
		worths []int64
		want   float64
		within float64
	}{
		{name: "empty", worths: nil, want: 0},
		{name: "all equal", worths: []int64{100, 100, 100, 100}, want: 0},
		{name: "single account", worths: []int64{5_000}, want: 0},
		{name: "all zero", worths: []int64{0, 0, 0}, want: 0},
		{name: "one holds everything", worths: []int64{0, 0, 0, 1_000}, want: 0.75, within: 1e-9},
		{name: "moderate spread", worths: []int64{100, 200, 300, 400}, want: 0.25, within: 1e-9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Gini(tt.worths)
			if math.Abs(got-tt.want) > tt.within {
				t.Errorf("Gini(%v) = %f, want %f", tt.worths, got, tt.want)
			}
		})
	}

	t.Run("always in unit range", func(t *testing.T) {
		dists := [][]int64{
			{-500, 100, 100},
			{1, 1 << 40},
			{0, 0, 0, 1},
			{7},
		}
		for _, d := range dists {
			if g := Gini(d); g < 0 || g > 1 {
				t.Errorf("Gini(%v) = %f outside [0,1]", d, g)
			}
		}
	})
}

func TestNewState(t *testing.T) {
	e := testEngine(&rng.Fixed{Uniform: []float64{0.5}}) // zero jitter
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	state := e.NewState(42, now)
	if state.CyclePhase != models.PhaseExpansion {
		t.Errorf("phase = %s, want expansion", state.CyclePhase)
	}
	if state.PriceLevel != 1.0 {
		t.Errorf("price level = %f, want 1.0", state.PriceLevel)
	}
	if state.PhaseLength != 28.0/5 {
		t.Errorf("phase length = %f, want %f", state.PhaseLength, 28.0/5)
	}
	if state.MinimumWage != 1500 || state.InterestRate != 0.05 {
		t.Errorf("policy seeds: wage %d rate %f", state.MinimumWage, state.InterestRate)
	}
}

func TestPhaseLengthJitterBounded(t *testing.T) {
	e := testEngine(rng.New(1))
	base := 28.0 / 5
	lo, hi := base*(1-0.15), base*(1+0.15)
	for i := 0; i < 1000; i++ {
		l := e.phaseLength()
		if l < lo || l > hi {
			t.Fatalf("phase length %f outside [%f, %f]", l, lo, hi)
		}
	}
}

func TestApplyTick(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("records gdp and rolls the previous figure", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.GDP = 500

		e.ApplyTick(state, TickInputs{WindowGDP: 800, MoneySupply: 1_000, NetWorths: []int64{100, 200}, Now: now})
		if state.GDP != 800 || state.PreviousGDP != 500 {
			t.Errorf("gdp = %d prev = %d", state.GDP, state.PreviousGDP)
		}
		if !state.LastTickAt.Equal(now) {
			t.Error("LastTickAt not stamped")
		}
	})

	t.Run("price level moves toward the quantity-theory target, damped", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)

		// target = (2_000_000 * 1.5) / 1_000_000 = 3.0; damped step = 1 + 0.3*(3-1) = 1.6
		e.ApplyTick(state, TickInputs{WindowGDP: 1_000_000, MoneySupply: 2_000_000, NetWorths: []int64{1}, Now: now})
		if math.Abs(state.PriceLevel-1.6) > 1e-9 {
			t.Errorf("price level = %f, want 1.6", state.PriceLevel)
		}
	})

	t.Run("zero gdp leaves the price level alone", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		e.ApplyTick(state, TickInputs{WindowGDP: 0, MoneySupply: 1_000, NetWorths: nil, Now: now})
		if state.PriceLevel != 1.0 {
			t.Errorf("price level = %f, want unchanged", state.PriceLevel)
		}
	})

	t.Run("active shock drags gdp and unemployment", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.LastShock = &models.Shock{
			Kind:               "pandemic",
			GDPImpact:          -0.25,
			UnemploymentImpact: 0.40,
			StartedAt:          now.Add(-time.Hour),
			EndsAt:             now.Add(24 * time.Hour),
		}

		e.ApplyTick(state, TickInputs{WindowGDP: 1_000, MoneySupply: 1_000, NetWorths: []int64{1}, Now: now})
		if state.GDP != 750 {
			t.Errorf("gdp = %d, want 750 under -25%% shock", state.GDP)
		}
		baseline := 0.05 * models.PhaseModifierTable[models.PhaseExpansion].Unemployment
		if state.UnemploymentRate <= baseline {
			t.Errorf("unemployment %f should carry the shock above baseline %f", state.UnemploymentRate, baseline)
		}
	})

	t.Run("automation exposure raises unemployment", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		idle := e.NewState(1, now)
		automated := e.NewState(1, now)

		e.ApplyTick(idle, TickInputs{WindowGDP: 1, MoneySupply: 1, NetWorths: []int64{1}, Now: now})
		e.ApplyTick(automated, TickInputs{WindowGDP: 1, MoneySupply: 1, NetWorths: []int64{1}, AutomationExposure: 0.8, Now: now})

		want := idle.UnemploymentRate + 0.8*automationWeight
		if math.Abs(automated.UnemploymentRate-want) > 1e-9 {
			t.Errorf("unemployment = %f, want %f with exposure 0.8", automated.UnemploymentRate, want)
		}
	})

	t.Run("unemployment caps at half the workforce", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.LastShock = &models.Shock{
			Kind:               "pandemic",
			UnemploymentImpact: 0.90,
			StartedAt:          now.Add(-time.Hour),
			EndsAt:             now.Add(24 * time.Hour),
		}

		e.ApplyTick(state, TickInputs{WindowGDP: 1, MoneySupply: 1, NetWorths: []int64{1}, AutomationExposure: 1, Now: now})
		if state.UnemploymentRate != maxUnemployment {
			t.Errorf("unemployment = %f, want capped at %f", state.UnemploymentRate, maxUnemployment)
		}
	})

	t.Run("expired shock has no effect", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.LastShock = &models.Shock{GDPImpact: -0.25, EndsAt: now.Add(-time.Hour)}

		e.ApplyTick(state, TickInputs{WindowGDP: 1_000, MoneySupply: 1_000, NetWorths: []int64{1}, Now: now})
		if state.GDP != 1_000 {
			t.Errorf("gdp = %d, want 1000", state.GDP)
		}
	})
}

func TestAdvancePhase(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("full phase length transitions and resets the start stamp", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		after := now.Add(time.Duration(state.PhaseLength*24) * time.Hour)

		e.ApplyTick(state, TickInputs{WindowGDP: 1, MoneySupply: 1, NetWorths: []int64{1}, Now: after})
		if state.CyclePhase != models.PhasePeak {
			t.Errorf("phase = %s, want peak", state.CyclePhase)
		}
		if !state.PhaseStartedAt.Equal(after) {
			t.Error("phase start must reset on transition")
		}
	})

	t.Run("mid-phase tick does not transition", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)

		e.ApplyTick(state, TickInputs{WindowGDP: 1, MoneySupply: 1, NetWorths: []int64{1}, Now: now.Add(time.Hour)})
		if state.CyclePhase != models.PhaseExpansion {
			t.Errorf("phase = %s, want expansion", state.CyclePhase)
		}
	})

	t.Run("cycle wraps recovery back to expansion", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.CyclePhase = models.PhaseRecovery
		state.CycleDay = 27
		after := now.Add(time.Duration(state.PhaseLength*24) * time.Hour)

		e.ApplyTick(state, TickInputs{WindowGDP: 1, MoneySupply: 1, NetWorths: []int64{1}, Now: after})
		if state.CyclePhase != models.PhaseExpansion {
			t.Errorf("phase = %s, want expansion", state.CyclePhase)
		}
		if state.CycleDay != 0 {
			t.Errorf("cycle day = %f, want reset to 0", state.CycleDay)
		}
	})
}

func TestRollShock(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("draw below probability triggers the first kind", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.001}})
		state := e.NewState(1, now)

		shock := e.RollShock(state, now)
		if shock == nil {
			t.Fatal("expected a shock")
		}
		if shock.Kind != "stock_market_crash" {
			t.Errorf("kind = %s", shock.Kind)
		}
		if !shock.EndsAt.Equal(now.AddDate(0, 0, 7)) {
			t.Errorf("ends at %v, want 7 days out", shock.EndsAt)
		}
		if state.LastShock != shock {
			t.Error("shock not recorded on the state")
		}
	})

	t.Run("high draws trigger nothing", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.99}})
		state := e.NewState(1, now)
		if shock := e.RollShock(state, now); shock != nil {
			t.Errorf("unexpected shock %s", shock.Kind)
		}
	})

	t.Run("active shock suppresses new draws", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.0}})
		state := e.NewState(1, now)
		state.LastShock = &models.Shock{Kind: "trade_war", EndsAt: now.Add(time.Hour)}

		if shock := e.RollShock(state, now); shock != nil {
			t.Errorf("active shock must suppress draws, got %s", shock.Kind)
		}
	})
}

func TestCheckInequality(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	wealthy := func() []*models.Account {
		return []*models.Account{
			{Cash: 1_000},                      // lower, spared
			{Cash: 100_000, Bank: 500_000},     // elite, levied
			{Cash: 2_000_000, Bank: 3_000_000}, // oligarch, levied
		}
	}

	t.Run("sweeps the upper classes above the threshold", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.Gini = 0.60
		accounts := wealthy()

		swept := e.CheckInequality(state, accounts, now)
		if swept != 6_000+50_000 {
			t.Errorf("swept %d, want 56000 at 1%%", swept)
		}
		if accounts[0].Cash != 1_000 {
			t.Error("lower class must be spared")
		}
		if state.Treasury != swept {
			t.Errorf("treasury = %d, want %d", state.Treasury, swept)
		}
		if !state.LastInequalityEvent.Equal(now) {
			t.Error("event time not stamped")
		}
	})

	t.Run("below threshold is inert", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.Gini = 0.30
		if swept := e.CheckInequality(state, wealthy(), now); swept != 0 {
			t.Errorf("swept %d below threshold", swept)
		}
	})

	t.Run("cooldown window gates repeat sweeps", func(t *testing.T) {
		e := testEngine(&rng.Fixed{Uniform: []float64{0.5}})
		state := e.NewState(1, now)
		state.Gini = 0.60

		first := e.CheckInequality(state, wealthy(), now)
		second := e.CheckInequality(state, wealthy(), now.Add(time.Hour))
		third := e.CheckInequality(state, wealthy(), now.Add(25*time.Hour))
		if first == 0 || second != 0 || third == 0 {
			t.Errorf("sweeps = %d, %d, %d; want fire, skip, fire", first, second, third)
		}
	})
}
