// Package fiscal implements the state's side of the economy: progressive
// taxation into the treasury, welfare out of it, class-tiered lending and
// the elected offices that move the policy levers.
package fiscal

import (
	"math"
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/classes"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

const (
	// Policy lever bounds. Elected officials move levers inside these.
	minTaxModifier   = 0.5
	maxTaxModifier   = 2.0
	minInterestRate  = 0.01
	maxInterestRate  = 0.50
	minPoliceLevel   = 0.0
	maxPoliceLevel   = 1.0
	maxPoliticalPow  = 100
	unemployedFactor = 2

	repDefault         = 50
	creditScoreDefault = 0.2
	creditScoreRepay   = 0.05
)

type Authority struct {
	cfg        config.EconomyConfig
	classifier *classes.Classifier
}

func NewAuthority(cfg config.EconomyConfig, classifier *classes.Classifier) *Authority {
	if classifier == nil {
		classifier = classes.NewClassifier(cfg.ClassUpperBounds)
	}
	return &Authority{cfg: cfg, classifier: classifier}
}

func (a *Authority) Classify(netWorth int64) classes.Class {
	return a.classifier.Classify(netWorth)
}

// PoliticalPower is the vote weight and candidacy qualifier: the class base
// power plus a logarithmic wealth term, capped.
func (a *Authority) PoliticalPower(liquid int64) int {
	class := a.classifier.Classify(liquid)
	power := a.cfg.PoliticalPower[class]
	if liquid > 0 {
		power += int(math.Log10(float64(liquid)))
	}
	return min(power, maxPoliticalPow)
}

// TaxRate is the class bracket rate scaled by the Mayor's modifier.
func (a *Authority) TaxRate(class classes.Class, state *models.EconomicState) float64 {
	return a.cfg.TaxRates[class] * state.TaxModifier
}

// CollectTax assesses the period's income and remits to the treasury. The
// period stamp makes a retried batch a no-op for already-taxed accounts. The
// deduction drains cash first, then bank, and never overdraws either.
func (a *Authority) CollectTax(account *models.Account, state *models.EconomicState, income int64, period int64) int64 {
	if account.LastTaxPeriod >= period {
		return 0
	}
	account.LastTaxPeriod = period
	if income <= 0 {
		return 0
	}

	class := a.classifier.Classify(account.Liquid())
	tax := int64(float64(income) * a.TaxRate(class, state))
	if tax > account.Liquid() {
		tax = account.Liquid()
	}
	if tax <= 0 {
		return 0
	}

	fromCash := min(tax, account.Cash)
	account.Cash -= fromCash
	account.Bank -= tax - fromCash
	state.Treasury += tax
	return tax
}

type WelfarePayment struct {
	Account *models.Account
	Amount  int64
}

// DistributeWelfare pays eligible accounts (Lower class under the income
// threshold) from the treasury. The per-head payout grows with inequality
// and doubles for the unemployed. A short treasury rations every payment
// pro rata rather than refusing some recipients; an empty one fails.
func (a *Authority) DistributeWelfare(state *models.EconomicState, accounts []*models.Account) ([]WelfarePayment, error) {
	var payments []WelfarePayment
	var total int64
	for _, acct := range accounts {
		liquid := acct.Liquid()
		if a.classifier.Classify(liquid) != classes.Lower || liquid >= a.cfg.WelfareThreshold {
			continue
		}
		amount := int64(float64(a.cfg.WelfareBase) * (1 + state.Gini))
		if acct.Job == "" {
			amount *= unemployedFactor
		}
		payments = append(payments, WelfarePayment{Account: acct, Amount: amount})
		total += amount
	}
	if len(payments) == 0 {
		return nil, nil
	}
	if state.Treasury <= 0 {
		return nil, ecoerr.InsufficientTreasuryError{Treasury: state.Treasury}
	}

	// Ration pro rata when the treasury cannot cover the full round.
	if total > state.Treasury {
		scale := float64(state.Treasury) / float64(total)
		total = 0
		for i := range payments {
			payments[i].Amount = int64(float64(payments[i].Amount) * scale)
			total += payments[i].Amount
		}
	}

	for _, p := range payments {
		p.Account.Cash += p.Amount
	}
	state.Treasury -= total
	return payments, nil
}

// RequestLoan originates a loan against the account's class limit. The rate
// is the class base rate shifted by the central banker's deviation from the
// neutral rate, clamped to the lender's bounds. outstanding is the sum the
// account still owes across open loans.
func (a *Authority) RequestLoan(account *models.Account, state *models.EconomicState, amount, outstanding int64, now time.Time) (*models.Loan, error) {
	if amount <= 0 {
		return nil, ecoerr.InvalidAmountError{Amount: amount}
	}
	class := a.classifier.Classify(account.Liquid())
	limit := a.cfg.LoanMax[class]
	if amount+outstanding > limit {
		return nil, ecoerr.LoanLimitError{Requested: amount, Max: limit - outstanding}
	}

	rate := a.cfg.LoanInterest[class] + (state.InterestRate - a.cfg.InterestRate)
	rate = clamp(rate, minInterestRate, maxInterestRate)

	account.Cash += amount
	return &models.Loan{
		ServerID:     account.ServerID,
		UserID:       account.UserID,
		Principal:    amount,
		Remaining:    amount + int64(float64(amount)*rate),
		InterestRate: rate,
		OriginatedAt: now,
		DueAt:        now.AddDate(0, 0, a.cfg.LoanTermDays),
	}, nil
}

// RepayLoan pays cash against the loan. Full repayment nudges the credit
// score up.
func (a *Authority) RepayLoan(account *models.Account, loan *models.Loan, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ecoerr.InvalidAmountError{Amount: amount}
	}
	if amount > loan.Remaining {
		amount = loan.Remaining
	}
	if account.Cash < amount {
		return 0, ecoerr.InsufficientFundsError{Have: account.Cash, Need: amount}
	}

	account.Cash -= amount
	loan.Remaining -= amount
	if loan.Remaining == 0 {
		account.CreditScore = clamp(account.CreditScore+creditScoreRepay, 0, 1)
	}
	return amount, nil
}

// Default seizes what the debtor has, writes the rest off and marks the
// account: reputation and credit score both take the hit. Seized funds go
// to the treasury.
func (a *Authority) Default(account *models.Account, loan *models.Loan, state *models.EconomicState) int64 {
	seized := min(loan.Remaining, account.Liquid())
	fromCash := min(seized, account.Cash)
	account.Cash -= fromCash
	account.Bank -= seized - fromCash

	loan.Remaining -= seized
	loan.Defaulted = true
	account.Reputation -= repDefault
	account.CreditScore = clamp(account.CreditScore-creditScoreDefault, 0, 1)
	state.Treasury += seized
	return seized
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
