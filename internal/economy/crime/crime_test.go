package crime

import (
	"errors"
	"testing"
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
	"github.com/hazelvale/economica/internal/economy/rng"
)

func testUnderworld(src rng.Source) *Underworld {
	return NewUnderworld(config.Default().Economy, NewCatalog(nil), src)
}

func calmState() *models.EconomicState {
	return &models.EconomicState{
		Gini:             0.30,
		UnemploymentRate: 0.05,
		PoliceStrength:   0.5,
	}
}

func TestSuccessChance(t *testing.T) {
	u := testUnderworld(&rng.Fixed{})
	pickpocket, _ := u.Catalog().Get("pickpocket")

	t.Run("skill raises the odds", func(t *testing.T) {
		low := u.SuccessChance(pickpocket, 0, calmState())
		high := u.SuccessChance(pickpocket, 5, calmState())
		if high <= low {
			t.Errorf("skill 5 chance %f should exceed skill 0 chance %f", high, low)
		}
	})

	t.Run("inequality above threshold raises the odds", func(t *testing.T) {
		equal := calmState()
		unequal := calmState()
		unequal.Gini = 0.60
		if u.SuccessChance(pickpocket, 0, unequal) <= u.SuccessChance(pickpocket, 0, equal) {
			t.Error("gini above threshold must raise crime odds")
		}
	})

	t.Run("inequality below threshold is inert", func(t *testing.T) {
		a := calmState()
		a.Gini = 0.10
		b := calmState()
		b.Gini = 0.40
		if u.SuccessChance(pickpocket, 0, a) != u.SuccessChance(pickpocket, 0, b) {
			t.Error("gini below the threshold must not move the odds")
		}
	})

	t.Run("police lower the odds", func(t *testing.T) {
		lax := calmState()
		lax.PoliceStrength = 0.1
		strict := calmState()
		strict.PoliceStrength = 1.0
		if u.SuccessChance(pickpocket, 0, strict) >= u.SuccessChance(pickpocket, 0, lax) {
			t.Error("stronger police must lower crime odds")
		}
	})

	t.Run("clamped to bounds", func(t *testing.T) {
		heist, _ := u.Catalog().Get("heist")
		hopeless := calmState()
		hopeless.PoliceStrength = 5
		if got := u.SuccessChance(heist, 0, hopeless); got != 0.05 {
			t.Errorf("floor = %f, want 0.05", got)
		}
		lawless := calmState()
		lawless.PoliceStrength = 0
		lawless.Gini = 0.99
		lawless.UnemploymentRate = 0.5
		if got := u.SuccessChance(pickpocket, 50, lawless); got != 0.95 {
			t.Errorf("ceiling = %f, want 0.95", got)
		}
	})
}

func TestCommit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success credits loot within bounds", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{Uniform: []float64{0.0, 0.5, 0.99}}) // win roll, mid loot, no skill-up
		acct := &models.Account{Cash: 100}

		res, err := u.Commit(acct, calmState(), "pickpocket", now)
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if !res.Success {
			t.Fatal("expected success")
		}
		if res.Loot < 100 || res.Loot > 500 {
			t.Errorf("loot %d outside [100, 500]", res.Loot)
		}
		if acct.Cash != 100+res.Loot {
			t.Errorf("cash = %d, want %d", acct.Cash, 100+res.Loot)
		}
		if acct.Reputation != -5 {
			t.Errorf("reputation = %d, want -5", acct.Reputation)
		}
		if !acct.LastCrime.Equal(now) {
			t.Error("LastCrime not stamped")
		}
	})

	t.Run("failure fines and jails", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{Uniform: []float64{0.99, 0.5}}) // lose roll, mid fine
		acct := &models.Account{Cash: 10_000}

		res, err := u.Commit(acct, calmState(), "pickpocket", now)
		var caught ecoerr.CaughtError
		if !errors.As(err, &caught) {
			t.Fatalf("want CaughtError, got %v", err)
		}
		if res.Success {
			t.Fatal("expected failure")
		}
		want := now.Add(2 * time.Hour)
		if !caught.JailUntil.Equal(want) || !acct.JailUntil.Equal(want) {
			t.Errorf("jail until %v, want %v", acct.JailUntil, want)
		}
		if res.Fine <= 0 || acct.Cash != 10_000-res.Fine {
			t.Errorf("fine %d, cash %d", res.Fine, acct.Cash)
		}
		if acct.Reputation != -10 {
			t.Errorf("reputation = %d, want -10", acct.Reputation)
		}
	})

	t.Run("fine never exceeds cash on hand", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{Uniform: []float64{0.99, 0.99}})
		acct := &models.Account{Cash: 50}

		res, err := u.Commit(acct, calmState(), "pickpocket", now)
		if !errors.Is(err, ecoerr.ErrStateConflict) {
			t.Fatalf("want CaughtError, got %v", err)
		}
		if res.Fine != 50 || acct.Cash != 0 {
			t.Errorf("fine %d cash %d, want fine capped at 50", res.Fine, acct.Cash)
		}
	})

	t.Run("skill gate", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		_, err := u.Commit(&models.Account{}, calmState(), "heist", now)
		var skill ecoerr.SkillTooLowError
		if !errors.As(err, &skill) {
			t.Fatalf("want SkillTooLowError, got %v", err)
		}
		if skill.Need != 7 {
			t.Errorf("Need = %d, want 7", skill.Need)
		}
	})

	t.Run("jailed accounts cannot attempt", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		acct := &models.Account{JailUntil: now.Add(time.Hour)}
		if _, err := u.Commit(acct, calmState(), "pickpocket", now); !errors.Is(err, ecoerr.ErrStateConflict) {
			t.Fatalf("want state conflict, got %v", err)
		}
	})

	t.Run("cooldown", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		acct := &models.Account{LastCrime: now.Add(-time.Hour)}
		var cd ecoerr.CooldownError
		if _, err := u.Commit(acct, calmState(), "pickpocket", now); !errors.As(err, &cd) {
			t.Fatalf("want CooldownError, got %v", err)
		}
	})

	t.Run("unknown crime", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		if _, err := u.Commit(&models.Account{}, calmState(), "jaywalk", now); !errors.Is(err, ecoerr.ErrValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("success can train the crime track", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{Uniform: []float64{0.0, 0.5, 0.0}}) // win, loot, skill-up
		acct := &models.Account{}
		if _, err := u.Commit(acct, calmState(), "pickpocket", now); err != nil {
			t.Fatal(err)
		}
		if acct.Skills[SkillTrack] != 1 {
			t.Errorf("crime skill = %d, want 1", acct.Skills[SkillTrack])
		}
	})
}

func TestRob(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success moves a bounded fraction", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{Uniform: []float64{0.0, 1.0}}) // win, max fraction
		robber := &models.Account{UserID: 1, Cash: 0}
		victim := &models.Account{UserID: 2, Cash: 10_000}

		res, err := u.Rob(robber, victim, now)
		if err != nil {
			t.Fatalf("Rob: %v", err)
		}
		maxLoot := int64(10_000 * u.cfg.RobCapFraction)
		if !res.Success || res.Loot > maxLoot {
			t.Errorf("loot %d exceeds cap %d", res.Loot, maxLoot)
		}
		if victim.Cash != 10_000-res.Loot || victim.Cash < 0 {
			t.Errorf("victim cash = %d", victim.Cash)
		}
		if robber.Cash != res.Loot {
			t.Errorf("robber cash = %d, want %d", robber.Cash, res.Loot)
		}
		if robber.Reputation != -3 {
			t.Errorf("reputation = %d, want -3", robber.Reputation)
		}
	})

	t.Run("failure fines the robber, victim untouched", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{Uniform: []float64{0.99, 0.5}})
		robber := &models.Account{UserID: 1, Cash: 1_000}
		victim := &models.Account{UserID: 2, Cash: 10_000}

		res, err := u.Rob(robber, victim, now)
		if err != nil {
			t.Fatal(err)
		}
		if res.Success {
			t.Fatal("expected failure")
		}
		if res.Fine <= 0 || robber.Cash != 1_000-res.Fine {
			t.Errorf("fine %d, robber cash %d", res.Fine, robber.Cash)
		}
		if victim.Cash != 10_000 {
			t.Error("failed rob must not touch the victim")
		}
		if robber.Reputation != -5 {
			t.Errorf("reputation = %d, want -5", robber.Reputation)
		}
	})

	t.Run("cannot rob yourself", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		acct := &models.Account{UserID: 7, Cash: 1_000}
		if _, err := u.Rob(acct, acct, now); !errors.Is(err, ecoerr.ErrValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})

	t.Run("jailed victims are under guard", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		robber := &models.Account{UserID: 1, Cash: 1_000}
		victim := &models.Account{UserID: 2, Cash: 10_000, JailUntil: now.Add(time.Hour)}
		if _, err := u.Rob(robber, victim, now); !errors.Is(err, ecoerr.ErrStateConflict) {
			t.Fatalf("want state conflict, got %v", err)
		}
		if victim.Cash != 10_000 {
			t.Error("victim must be untouched")
		}
	})

	t.Run("broke victims are not worth robbing", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		robber := &models.Account{UserID: 1}
		victim := &models.Account{UserID: 2, Cash: 50}
		if _, err := u.Rob(robber, victim, now); !errors.Is(err, ecoerr.ErrResource) {
			t.Fatalf("want resource error, got %v", err)
		}
	})

	t.Run("cooldown", func(t *testing.T) {
		u := testUnderworld(&rng.Fixed{})
		robber := &models.Account{UserID: 1, LastRob: now.Add(-time.Hour)}
		victim := &models.Account{UserID: 2, Cash: 10_000}
		if _, err := u.Rob(robber, victim, now); !errors.Is(err, ecoerr.ErrStateConflict) {
			t.Fatalf("want state conflict, got %v", err)
		}
	})

	t.Run("odds floor even when outmatched", func(t *testing.T) {
		weakRobber := &models.Account{UserID: 1, Skills: map[string]int{SkillTrack: 0}}
		sharpVictim := &models.Account{UserID: 2, Cash: 10_000, Skills: map[string]int{SkillTrack: 20}}

		// Odds floor at 0.1, so a roll below that wins even hopelessly outmatched.
		uw := testUnderworld(&rng.Fixed{Uniform: []float64{0.05, 0.5}})
		res, err := uw.Rob(weakRobber, sharpVictim, now)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Success {
			t.Error("roll below the floor probability must succeed")
		}
	})
}
