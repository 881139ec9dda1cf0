// Package crime implements the underworld: solo crimes against the system
// and robberies against other accounts. Success odds track the macro state,
// a more unequal or depressed economy breeds more successful crime.
package crime

import (
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
	"github.com/hazelvale/economica/internal/economy/rng"
)

const (
	skillBonusPerLevel = 0.05
	inequalityWeight   = 0.5
	desperationWeight  = 0.3
	deterrenceWeight   = 0.2

	minSuccess = 0.05
	maxSuccess = 0.95

	// Reputation costs, successful crime still leaves a mark.
	repSuccessfulCrime = 5
	repFailedCrime     = 10
	repSuccessfulRob   = 3
	repFailedRob       = 5

	robBaseSuccess  = 0.4
	robMinSuccess   = 0.1
	robMaxSuccess   = 0.9
	robMinFraction  = 0.1
	robMinVictim    = 100
	failFineMinFrac = 0.1
	failFineMaxFrac = 0.2
)

type Underworld struct {
	cfg     config.EconomyConfig
	catalog *Catalog
	rand    rng.Source
}

func NewUnderworld(cfg config.EconomyConfig, catalog *Catalog, src rng.Source) *Underworld {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	if src == nil {
		src = rng.Default()
	}
	return &Underworld{cfg: cfg, catalog: catalog, rand: src}
}

func (u *Underworld) Catalog() *Catalog {
	return u.catalog
}

// SuccessChance is the attempt's success probability: base odds plus the
// skill margin, inequality above the threshold and unemployment desperation,
// minus the police deterrent. Clamped to [0.05, 0.95] so neither outcome is
// ever certain.
func (u *Underworld) SuccessChance(c Crime, skill int, state *models.EconomicState) float64 {
	p := c.BaseSuccess +
		float64(skill-c.SkillRequired)*skillBonusPerLevel +
		max(0, state.Gini-u.cfg.GiniThreshold)*inequalityWeight +
		state.UnemploymentRate*desperationWeight -
		state.PoliceStrength*deterrenceWeight
	return clamp(p, minSuccess, maxSuccess)
}

type Result struct {
	Crime     Crime
	Success   bool
	Loot      int64
	Fine      int64
	JailUntil time.Time
}

// Commit attempts the named crime. On success the loot lands in cash; on
// failure the account is fined up to its cash, jailed and the returned error
// is a CaughtError. The Result is populated either way.
func (u *Underworld) Commit(account *models.Account, state *models.EconomicState, crimeName string, now time.Time) (Result, error) {
	c, ok := u.catalog.Resolve(crimeName)
	if !ok {
		return Result{}, ecoerr.UnknownTargetError{Kind: "crime", Name: crimeName}
	}
	if account.Jailed(now) {
		return Result{}, ecoerr.JailedError{Until: account.JailUntil}
	}
	if until := account.LastCrime.Add(u.cfg.CrimeCooldown()); until.After(now) {
		return Result{}, ecoerr.CooldownError{Operation: "crime", Until: until}
	}
	skill := account.SkillFor(SkillTrack)
	if skill < c.SkillRequired {
		return Result{}, ecoerr.SkillTooLowError{Have: skill, Need: c.SkillRequired}
	}

	account.LastCrime = now
	chance := u.SuccessChance(c, skill, state)

	if u.rand.Float64() < chance {
		loot := c.MinSteal + int64(u.rand.Float64()*float64(c.MaxSteal-c.MinSteal))
		account.Cash += loot
		account.Reputation -= repSuccessfulCrime
		u.trainSkill(account)
		return Result{Crime: c, Success: true, Loot: loot}, nil
	}

	fine := int64(float64(c.MinSteal+int64(u.rand.Float64()*float64(c.MaxSteal-c.MinSteal))) * 0.5)
	if fine > account.Cash {
		fine = account.Cash
	}
	account.Cash -= fine
	account.Reputation -= repFailedCrime
	account.JailUntil = now.Add(time.Duration(c.JailHours) * time.Hour)

	res := Result{Crime: c, Success: false, Fine: fine, JailUntil: account.JailUntil}
	return res, ecoerr.CaughtError{Crime: c.ID, JailUntil: account.JailUntil}
}

// trainSkill advances the crime track; crime is learned by doing, there is
// no progress bar like honest work has.
func (u *Underworld) trainSkill(account *models.Account) {
	if u.rand.Float64() >= u.cfg.SkillUpChance {
		return
	}
	if account.Skills == nil {
		account.Skills = make(map[string]int)
	}
	account.Skills[SkillTrack]++
}

type RobResult struct {
	Success bool
	Loot    int64
	Fine    int64
}

// Rob attempts to take cash from another account. Odds ride on the skill
// difference between the two crime tracks. The haul is a random fraction of
// the victim's cash, capped so the victim is never drained below zero.
func (u *Underworld) Rob(robber, victim *models.Account, now time.Time) (RobResult, error) {
	if robber.UserID == victim.UserID {
		return RobResult{}, ecoerr.SelfTargetError{}
	}
	if robber.Jailed(now) {
		return RobResult{}, ecoerr.JailedError{Until: robber.JailUntil}
	}
	if until := robber.LastRob.Add(u.cfg.RobCooldown()); until.After(now) {
		return RobResult{}, ecoerr.CooldownError{Operation: "rob", Until: until}
	}
	// Jailed victims are under guard.
	if victim.Jailed(now) {
		return RobResult{}, ecoerr.JailedError{Until: victim.JailUntil}
	}
	if victim.Cash < robMinVictim {
		return RobResult{}, ecoerr.InsufficientFundsError{Have: victim.Cash, Need: robMinVictim}
	}

	robber.LastRob = now
	skillDiff := robber.SkillFor(SkillTrack) - victim.SkillFor(SkillTrack)
	chance := clamp(robBaseSuccess+float64(skillDiff)*skillBonusPerLevel, robMinSuccess, robMaxSuccess)

	if u.rand.Float64() < chance {
		frac := robMinFraction + u.rand.Float64()*(u.cfg.RobCapFraction-robMinFraction)
		loot := int64(float64(victim.Cash) * frac)
		if loot > victim.Cash {
			loot = victim.Cash
		}
		victim.Cash -= loot
		robber.Cash += loot
		robber.Reputation -= repSuccessfulRob
		return RobResult{Success: true, Loot: loot}, nil
	}

	fine := int64(float64(robber.Cash) * (failFineMinFrac + u.rand.Float64()*(failFineMaxFrac-failFineMinFrac)))
	robber.Cash -= fine
	robber.Reputation -= repFailedRob
	return RobResult{Success: false, Fine: fine}, nil
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
