package fiscal

import (
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

func TestOpenElection(t *testing.T) {
	a := testAuthority()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	office, err := a.OpenElection(1, models.OfficeMayor, 42, now)
	if err != nil {
		t.Fatalf("OpenElection: %v", err)
	}
	if office.Holder != 42 {
		t.Error("incumbent must carry over until resolution")
	}
	if !office.TermEndsAt.Equal(now.AddDate(0, 0, a.cfg.TermDays)) {
		t.Errorf("term ends %v", office.TermEndsAt)
	}

	if _, err := a.OpenElection(1, "emperor", 0, now); !errors.Is(err, ecoerr.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	a := testAuthority()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	office, _ := a.OpenElection(1, models.OfficeMayor, 0, now)

	t.Run("requires the office power floor", func(t *testing.T) {
		broke := &models.Account{UserID: 1, Cash: 100}
		if err := a.Register(office, broke, now); !errors.Is(err, ecoerr.ErrStateConflict) {
			t.Fatalf("a pauper cannot run for mayor, got %v", err)
		}
	})

	t.Run("wealthy candidate registers", func(t *testing.T) {
		rich := &models.Account{UserID: 2, Cash: 500_000}
		if err := a.Register(office, rich, now); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if len(office.Candidates) != 1 || office.Candidates[0].UserID != 2 {
			t.Errorf("candidates = %+v", office.Candidates)
		}
	})

	t.Run("no double registration", func(t *testing.T) {
		rich := &models.Account{UserID: 2, Cash: 500_000}
		if err := a.Register(office, rich, now); err == nil {
			t.Fatal("second registration must fail")
		}
	})

	t.Run("cheaper offices have lower floors", func(t *testing.T) {
		labor, _ := a.OpenElection(1, models.OfficeLaborSecretary, 0, now)
		modest := &models.Account{UserID: 3, Cash: 30_000} // power 3+4=7 >= 5
		if err := a.Register(labor, modest, now); err != nil {
			t.Fatalf("Register: %v", err)
		}
	})
}

func TestVote(t *testing.T) {
	a := testAuthority()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	setup := func() *models.ElectedOffice {
		office, _ := a.OpenElection(1, models.OfficeMayor, 0, now)
		a.Register(office, &models.Account{UserID: 10, Cash: 500_000}, now)
		a.Register(office, &models.Account{UserID: 11, Cash: 500_000}, now.Add(time.Minute))
		return office
	}

	t.Run("ballots are weighted by political power", func(t *testing.T) {
		office := setup()
		pauper := &models.Account{UserID: 20, Cash: 500}
		tycoon := &models.Account{UserID: 21, Cash: 5_000_000}

		wPauper, err := a.Vote(office, pauper, 10)
		if err != nil {
			t.Fatal(err)
		}
		wTycoon, err := a.Vote(office, tycoon, 11)
		if err != nil {
			t.Fatal(err)
		}
		if wTycoon <= wPauper {
			t.Errorf("tycoon weight %d should exceed pauper weight %d", wTycoon, wPauper)
		}
		if office.Candidates[0].Votes != wPauper || office.Candidates[1].Votes != wTycoon {
			t.Errorf("tallies = %+v", office.Candidates)
		}
	})

	t.Run("one ballot per voter", func(t *testing.T) {
		office := setup()
		voter := &models.Account{UserID: 20, Cash: 500}
		if _, err := a.Vote(office, voter, 10); err != nil {
			t.Fatal(err)
		}
		if _, err := a.Vote(office, voter, 11); !errors.Is(err, ecoerr.ErrStateConflict) {
			t.Fatalf("second ballot must fail, got %v", err)
		}
	})

	t.Run("unknown candidate", func(t *testing.T) {
		office := setup()
		if _, err := a.Vote(office, &models.Account{UserID: 20}, 999); !errors.Is(err, ecoerr.ErrValidation) {
			t.Fatalf("want validation error, got %v", err)
		}
	})
}

func TestResolve(t *testing.T) {
	a := testAuthority()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	office := func(incumbent snowflake.ID, candidates ...models.Candidacy) *models.ElectedOffice {
		return &models.ElectedOffice{
			Position:   models.OfficeMayor,
			Holder:     incumbent,
			Candidates: candidates,
		}
	}

	t.Run("most votes wins", func(t *testing.T) {
		o := office(0,
			models.Candidacy{UserID: 1, Votes: 5, RegisteredAt: now},
			models.Candidacy{UserID: 2, Votes: 9, RegisteredAt: now},
		)
		if winner := a.Resolve(o); winner != 2 {
			t.Errorf("winner = %d, want 2", winner)
		}
		if !o.Resolved {
			t.Error("office not marked resolved")
		}
	})

	t.Run("tie goes to the incumbent", func(t *testing.T) {
		o := office(2,
			models.Candidacy{UserID: 1, Votes: 7, RegisteredAt: now},
			models.Candidacy{UserID: 2, Votes: 7, RegisteredAt: now.Add(time.Hour)},
		)
		if winner := a.Resolve(o); winner != 2 {
			t.Errorf("winner = %d, want incumbent 2", winner)
		}
	})

	t.Run("tie among challengers goes to the earliest registration", func(t *testing.T) {
		o := office(99,
			models.Candidacy{UserID: 1, Votes: 7, RegisteredAt: now.Add(time.Hour)},
			models.Candidacy{UserID: 2, Votes: 7, RegisteredAt: now},
		)
		if winner := a.Resolve(o); winner != 2 {
			t.Errorf("winner = %d, want earliest-registered 2", winner)
		}
	})

	t.Run("no candidates leaves the incumbent", func(t *testing.T) {
		o := office(42)
		if winner := a.Resolve(o); winner != 42 {
			t.Errorf("winner = %d, want 42", winner)
		}
	})
}

func TestOfficePowers(t *testing.T) {
	a := testAuthority()

	t.Run("mayor sets the tax modifier within bounds", func(t *testing.T) {
		state := neutralState()
		if err := a.SetTaxModifier(state, models.OfficeMayor, 1.8); err != nil {
			t.Fatal(err)
		}
		if state.TaxModifier != 1.8 {
			t.Errorf("modifier = %f", state.TaxModifier)
		}
		a.SetTaxModifier(state, models.OfficeMayor, 99)
		if state.TaxModifier != maxTaxModifier {
			t.Errorf("modifier = %f, want clamped to %f", state.TaxModifier, maxTaxModifier)
		}
		if err := a.SetTaxModifier(state, models.OfficeTreasurer, 1.0); err == nil {
			t.Error("only the mayor sets taxes")
		}
	})

	t.Run("labor secretary sets the minimum wage", func(t *testing.T) {
		state := neutralState()
		if err := a.SetMinimumWage(state, models.OfficeLaborSecretary, 2_000); err != nil {
			t.Fatal(err)
		}
		if state.MinimumWage != 2_000 {
			t.Errorf("minimum wage = %d", state.MinimumWage)
		}
		if err := a.SetMinimumWage(state, models.OfficeLaborSecretary, -5); !errors.Is(err, ecoerr.ErrValidation) {
			t.Errorf("negative wage must be rejected, got %v", err)
		}
		if err := a.SetMinimumWage(state, models.OfficeMayor, 2_000); err == nil {
			t.Error("only the labor secretary sets the minimum wage")
		}
	})

	t.Run("police chief sets police strength clamped to [0,1]", func(t *testing.T) {
		state := neutralState()
		if err := a.SetPoliceStrength(state, models.OfficePoliceChief, 0.9); err != nil {
			t.Fatal(err)
		}
		a.SetPoliceStrength(state, models.OfficePoliceChief, 7)
		if state.PoliceStrength != 1 {
			t.Errorf("strength = %f, want clamped to 1", state.PoliceStrength)
		}
	})

	t.Run("central banker sets rates and prints money", func(t *testing.T) {
		state := neutralState()
		if err := a.SetInterestRate(state, models.OfficeCentralBanker, 0.12); err != nil {
			t.Fatal(err)
		}
		if state.InterestRate != 0.12 {
			t.Errorf("rate = %f", state.InterestRate)
		}

		before := state.MoneySupply
		if err := a.PrintMoney(state, models.OfficeCentralBanker, 50_000); err != nil {
			t.Fatal(err)
		}
		if state.MoneySupply != before+50_000 {
			t.Errorf("money supply = %d", state.MoneySupply)
		}
		if err := a.PrintMoney(state, models.OfficeMayor, 1); err == nil {
			t.Error("only the central banker prints money")
		}
		if err := a.PrintMoney(state, models.OfficeCentralBanker, -1); !errors.Is(err, ecoerr.ErrValidation) {
			t.Errorf("negative print must be rejected, got %v", err)
		}
	})
}
