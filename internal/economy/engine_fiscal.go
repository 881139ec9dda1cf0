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
	"github.com/hazelvale/economica/internal/economy/fiscal"
)

// RequestLoan originates a loan against the caller's class limit and credits
// the principal to cash.
func (e *Engine) RequestLoan(ctx context.Context, serverID, userID snowflake.ID, amount int64) (*models.Loan, error) {
	var loan *models.Loan
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		open, err := r.Loans.ListByUser(ctx, serverID, userID)
		if err != nil {
			return err
		}
		var outstanding int64
		for _, l := range open {
			if !l.Defaulted {
				outstanding += l.Remaining
			}
		}

		loan, err = e.authority.RequestLoan(account, state, amount, outstanding, time.Now())
		if err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, loan); err != nil {
			return err
		}
		return r.Transactions.Record(ctx, &models.Transaction{
			ServerID: serverID,
			ToUserID: userID,
			Amount:   amount,
			Type:     models.TxLoan,
		})
	})
	return loan, err
}

// RepayLoan pays cash toward the caller's oldest open loan. Returns the
// amount actually applied; overpayment is capped at the debt.
func (e *Engine) RepayLoan(ctx context.Context, serverID, userID snowflake.ID, amount int64) (int64, error) {
	var paid int64
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}
		loans, err := r.Loans.ListByUser(ctx, serverID, userID)
		if err != nil {
			return err
		}
		var loan *models.Loan
		for _, l := range loans {
			if !l.Defaulted && l.Remaining > 0 {
				loan = l
				break
			}
		}
		if loan == nil {
			return ecoerr.UnknownTargetError{Kind: "loan", Name: "open"}
		}

		paid, err = e.authority.RepayLoan(account, loan, amount)
		if err != nil {
			return err
		}
		if err := r.Accounts.Save(ctx, account); err != nil {
			return err
		}
		return r.Loans.Save(ctx, loan)
	})
	return paid, err
}

// Loans lists the caller's loans, open and settled.
func (e *Engine) Loans(ctx context.Context, serverID, userID snowflake.ID) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		loans, err = r.Loans.ListByUser(ctx, serverID, userID)
		return err
	})
	return loans, err
}

// RunForOffice registers the caller as a candidate, opening the election
// cycle for the position if none is running.
func (e *Engine) RunForOffice(ctx context.Context, serverID, userID snowflake.ID, position string) (*models.ElectedOffice, error) {
	var office *models.ElectedOffice
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		now := time.Now()
		account, err := e.account(ctx, r, serverID, userID)
		if err != nil {
			return err
		}

		office, err = r.Offices.GetActive(ctx, serverID, position)
		created := false
		if errors.Is(err, sql.ErrNoRows) {
			office, err = e.authority.OpenElection(serverID, position, 0, now)
			created = true
		}
		if err != nil {
			return err
		}

		if err := e.authority.Register(office, account, now); err != nil {
			return err
		}
		if created {
			return r.Offices.Create(ctx, office)
		}
		return r.Offices.Save(ctx, office)
	})
	return office, err
}

// Vote casts the caller's weighted ballot for a registered candidate.
func (e *Engine) Vote(ctx context.Context, serverID, voterID snowflake.ID, position string, candidateID snowflake.ID) (int, error) {
	var weight int
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		voter, err := e.account(ctx, r, serverID, voterID)
		if err != nil {
			return err
		}
		office, err := r.Offices.GetActive(ctx, serverID, position)
		if errors.Is(err, sql.ErrNoRows) {
			return ecoerr.UnknownTargetError{Kind: "election", Name: position}
		}
		if err != nil {
			return err
		}

		weight, err = e.authority.Vote(office, voter, candidateID)
		if err != nil {
			return err
		}
		return r.Offices.Save(ctx, office)
	})
	return weight, err
}

// Elections lists the running election cycle of every position.
func (e *Engine) Elections(ctx context.Context, serverID snowflake.ID) ([]*models.ElectedOffice, error) {
	var offices []*models.ElectedOffice
	err := e.withTx(ctx, func(ctx context.Context, r *repositories.Set) error {
		var err error
		offices, err = r.Offices.ListActive(ctx, serverID)
		return err
	})
	return offices, err
}

// requireOffice checks that the actor currently holds the position.
func (e *Engine) requireOffice(ctx context.Context, r *repositories.Set, serverID, actorID snowflake.ID, position string) error {
	office, err := r.Offices.GetActive(ctx, serverID, position)
	if errors.Is(err, sql.ErrNoRows) {
		return ecoerr.NotInOfficeError{Office: position}
	}
	if err != nil {
		return err
	}
	if office.Holder != actorID {
		return ecoerr.NotInOfficeError{Office: position}
	}
	return nil
}

// setPolicy runs one office power: holder check, the state mutation, save.
func (e *Engine) setPolicy(ctx context.Context, serverID, actorID snowflake.ID, position string, apply func(*models.EconomicState) error) error {
	return e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		if err := e.requireOffice(ctx, r, serverID, actorID, position); err != nil {
			return err
		}
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		if err := apply(state); err != nil {
			return err
		}
		return r.States.Save(ctx, state)
	})
}

// SetTaxModifier is the mayor's power: scale every tax bracket.
func (e *Engine) SetTaxModifier(ctx context.Context, serverID, actorID snowflake.ID, modifier float64) error {
	return e.setPolicy(ctx, serverID, actorID, models.OfficeMayor, func(state *models.EconomicState) error {
		return e.authority.SetTaxModifier(state, models.OfficeMayor, modifier)
	})
}

// SetMinimumWage is the labor secretary's power.
func (e *Engine) SetMinimumWage(ctx context.Context, serverID, actorID snowflake.ID, wage int64) error {
	return e.setPolicy(ctx, serverID, actorID, models.OfficeLaborSecretary, func(state *models.EconomicState) error {
		return e.authority.SetMinimumWage(state, models.OfficeLaborSecretary, wage)
	})
}

// SetPoliceStrength is the police chief's power.
func (e *Engine) SetPoliceStrength(ctx context.Context, serverID, actorID snowflake.ID, strength float64) error {
	return e.setPolicy(ctx, serverID, actorID, models.OfficePoliceChief, func(state *models.EconomicState) error {
		return e.authority.SetPoliceStrength(state, models.OfficePoliceChief, strength)
	})
}

// SetInterestRate is the central banker's power.
func (e *Engine) SetInterestRate(ctx context.Context, serverID, actorID snowflake.ID, rate float64) error {
	return e.setPolicy(ctx, serverID, actorID, models.OfficeCentralBanker, func(state *models.EconomicState) error {
		return e.authority.SetInterestRate(state, models.OfficeCentralBanker, rate)
	})
}

// PrintMoney is the central banker's power: expand the money supply into the
// treasury, at the cost of future inflation.
func (e *Engine) PrintMoney(ctx context.Context, serverID, actorID snowflake.ID, amount int64) error {
	return e.setPolicy(ctx, serverID, actorID, models.OfficeCentralBanker, func(state *models.EconomicState) error {
		return e.authority.PrintMoney(state, models.OfficeCentralBanker, amount)
	})
}

// DistributeWelfare is the treasurer's power: pay eligible accounts from the
// treasury.
func (e *Engine) DistributeWelfare(ctx context.Context, serverID, actorID snowflake.ID) ([]fiscal.WelfarePayment, error) {
	var payments []fiscal.WelfarePayment
	err := e.withRetry(ctx, func(ctx context.Context, r *repositories.Set) error {
		if err := e.requireOffice(ctx, r, serverID, actorID, models.OfficeTreasurer); err != nil {
			return err
		}
		state, err := e.loadState(ctx, r, serverID)
		if err != nil {
			return err
		}
		accounts, err := r.Accounts.List(ctx, serverID)
		if err != nil {
			return err
		}

		payments, err = e.authority.DistributeWelfare(state, accounts)
		if err != nil {
			return err
		}
		for _, payment := range payments {
			if err := r.Accounts.Save(ctx, payment.Account); err != nil {
				return err
			}
			tx := &models.Transaction{
				ServerID: serverID,
				ToUserID: payment.Account.UserID,
				Amount:   payment.Amount,
				Type:     models.TxWelfare,
			}
			if err := r.Transactions.Record(ctx, tx); err != nil {
				return err
			}
		}
		return r.States.Save(ctx, state)
	})
	return payments, err
}
