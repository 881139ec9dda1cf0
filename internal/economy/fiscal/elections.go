package fiscal

import (
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

// Candidacy power floors per office. Heavier offices demand more clout.
var officePowerFloor = map[string]int{
	models.OfficeMayor:          10,
	models.OfficeTreasurer:      8,
	models.OfficePoliceChief:    7,
	models.OfficeLaborSecretary: 5,
	models.OfficeCentralBanker:  12,
}

// OpenElection starts a cycle for the position. The incumbent carries over
// as Holder until the cycle resolves.
func (a *Authority) OpenElection(serverID snowflake.ID, position string, incumbent snowflake.ID, now time.Time) (*models.ElectedOffice, error) {
	if _, ok := officePowerFloor[position]; !ok {
		return nil, ecoerr.UnknownTargetError{Kind: "office", Name: position}
	}
	return &models.ElectedOffice{
		ServerID:   serverID,
		Position:   position,
		Holder:     incumbent,
		TermEndsAt: now.AddDate(0, 0, a.cfg.TermDays),
		Ballots:    make(map[string]string),
	}, nil
}

// Register enters the account as a candidate. Candidacy requires the
// office's political power floor.
func (a *Authority) Register(office *models.ElectedOffice, account *models.Account, now time.Time) error {
	power := a.PoliticalPower(account.Liquid())
	if floor := officePowerFloor[office.Position]; power < floor {
		return ecoerr.SkillTooLowError{Have: power, Need: floor}
	}
	for _, c := range office.Candidates {
		if c.UserID == account.UserID {
			return ecoerr.CooldownError{Operation: "register", Until: office.TermEndsAt}
		}
	}
	office.Candidates = append(office.Candidates, models.Candidacy{
		UserID:       account.UserID,
		RegisteredAt: now,
	})
	return nil
}

// Vote casts the voter's single weighted ballot for a registered candidate.
func (a *Authority) Vote(office *models.ElectedOffice, voter *models.Account, candidateID snowflake.ID) (int, error) {
	if _, voted := office.Ballots[voter.UserID.String()]; voted {
		return 0, ecoerr.CooldownError{Operation: "vote", Until: office.TermEndsAt}
	}
	idx := -1
	for i, c := range office.Candidates {
		if c.UserID == candidateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, ecoerr.UnknownTargetError{Kind: "candidate", Name: candidateID.String()}
	}

	weight := a.PoliticalPower(voter.Liquid())
	office.Candidates[idx].Votes += weight
	if office.Ballots == nil {
		office.Ballots = make(map[string]string)
	}
	office.Ballots[voter.UserID.String()] = candidateID.String()
	return weight, nil
}

// Resolve closes the cycle and seats the winner. Ties go to the incumbent
// if tied for the lead, otherwise to the earliest registration. An election
// with no candidates leaves the incumbent seated.
func (a *Authority) Resolve(office *models.ElectedOffice) snowflake.ID {
	winner := office.Holder
	best := -1
	var bestRegistered time.Time
	for _, c := range office.Candidates {
		switch {
		case c.Votes > best:
			winner, best, bestRegistered = c.UserID, c.Votes, c.RegisteredAt
		case c.Votes == best && c.UserID == office.Holder:
			winner, bestRegistered = c.UserID, c.RegisteredAt
		case c.Votes == best && winner != office.Holder && c.RegisteredAt.Before(bestRegistered):
			winner, bestRegistered = c.UserID, c.RegisteredAt
		}
	}
	office.Holder = winner
	office.Resolved = true
	return winner
}

// Office powers. Each setter validates the acting office and clamps the
// lever to its bounds; verifying that the caller actually holds the office
// is the engine's job.

func (a *Authority) SetTaxModifier(state *models.EconomicState, office string, modifier float64) error {
	if office != models.OfficeMayor {
		return ecoerr.UnknownTargetError{Kind: "office", Name: office}
	}
	state.TaxModifier = clamp(modifier, minTaxModifier, maxTaxModifier)
	return nil
}

func (a *Authority) SetMinimumWage(state *models.EconomicState, office string, wage int64) error {
	if office != models.OfficeLaborSecretary {
		return ecoerr.UnknownTargetError{Kind: "office", Name: office}
	}
	if wage <= 0 {
		return ecoerr.InvalidAmountError{Amount: wage}
	}
	state.MinimumWage = wage
	return nil
}

func (a *Authority) SetPoliceStrength(state *models.EconomicState, office string, strength float64) error {
	if office != models.OfficePoliceChief {
		return ecoerr.UnknownTargetError{Kind: "office", Name: office}
	}
	state.PoliceStrength = clamp(strength, minPoliceLevel, maxPoliceLevel)
	return nil
}

func (a *Authority) SetInterestRate(state *models.EconomicState, office string, rate float64) error {
	if office != models.OfficeCentralBanker {
		return ecoerr.UnknownTargetError{Kind: "office", Name: office}
	}
	state.InterestRate = clamp(rate, minInterestRate, maxInterestRate)
	return nil
}

// PrintMoney expands the money supply into the treasury. The next tick's
// quantity-theory pass turns the expansion into inflation.
func (a *Authority) PrintMoney(state *models.EconomicState, office string, amount int64) error {
	if office != models.OfficeCentralBanker {
		return ecoerr.UnknownTargetError{Kind: "office", Name: office}
	}
	if amount <= 0 {
		return ecoerr.InvalidAmountError{Amount: amount}
	}
	state.MoneySupply += amount
	state.Treasury += amount
	return nil
}
