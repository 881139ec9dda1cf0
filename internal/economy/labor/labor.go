// Package labor implements the job market: applying, resigning, working for
// a dynamic wage and the unemployment rate fed back into the macro tick.
package labor

import (
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
	"github.com/hazelvale/economica/internal/economy/rng"
)

// unionWageBonus is the wage premium union members earn in union jobs.
const unionWageBonus = 0.10

// skillProgressPerLevel is the progress bar length for one skill level.
const skillProgressPerLevel = 100

type Market struct {
	cfg     config.EconomyConfig
	catalog *Catalog
	rand    rng.Source
}

func NewMarket(cfg config.EconomyConfig, catalog *Catalog, src rng.Source) *Market {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	if src == nil {
		src = rng.Default()
	}
	return &Market{cfg: cfg, catalog: catalog, rand: src}
}

func (m *Market) Catalog() *Catalog {
	return m.catalog
}

// ComputeWage prices one shift. The wage is the job's base salary scaled by
// the cycle phase, labor supply, the worker's skill margin and GDP, then
// floored at the server minimum wage. Same inputs always price the same.
func (m *Market) ComputeWage(job Job, state *models.EconomicState, skill, headcount int) int64 {
	phaseMod := state.PhaseModifiers().GDPGrowth

	// Scarce labor pays above base. The premium shrinks as headcount grows,
	// scaled by how demand-elastic the role is.
	supplyMod := clamp(1+job.DemandElasticity/float64(max(headcount, 1)), 1, m.cfg.SupplyModifierCap)

	skillMod := clamp(1+0.5*float64(skill)/float64(max(job.SkillRequired, 1)), 1, m.cfg.SkillModifierCap)

	gdpMod := clamp(1+float64(state.GDP)/m.cfg.GDPBaseline*0.1, 1, m.cfg.GDPModifierCap)

	wage := int64(float64(job.BaseSalary) * phaseMod * supplyMod * skillMod * gdpMod)
	if wage < state.MinimumWage {
		wage = state.MinimumWage
	}
	return wage
}

// Apply hires the account into the named job. The skill requirement is
// checked against the account's level on the job's track.
func (m *Market) Apply(account *models.Account, jobName string) (Job, error) {
	job, ok := m.catalog.Resolve(jobName)
	if !ok {
		return Job{}, ecoerr.UnknownTargetError{Kind: "job", Name: jobName}
	}
	if account.Job != "" {
		return Job{}, ecoerr.AlreadyEmployedError{Job: account.Job}
	}
	if have := account.SkillFor(job.Track); have < job.SkillRequired {
		return Job{}, ecoerr.SkillTooLowError{Have: have, Need: job.SkillRequired}
	}
	account.Job = job.ID
	account.UnionMember = job.Union
	account.SkillProgress = 0
	return job, nil
}

// Resign quits the current job. Track skill is kept, progress toward the
// next level is forfeited.
func (m *Market) Resign(account *models.Account) error {
	if account.Job == "" {
		return ecoerr.UnemployedError{}
	}
	account.Job = ""
	account.UnionMember = false
	account.SkillProgress = 0
	return nil
}

type WorkResult struct {
	Job       Job
	Wage      int64
	LeveledUp bool
	Skill     int
}

// Work performs one shift: checks jail and cooldown, credits the wage to
// cash and advances skill progress on the job's track.
func (m *Market) Work(account *models.Account, state *models.EconomicState, headcount int, now time.Time) (WorkResult, error) {
	if account.Jailed(now) {
		return WorkResult{}, ecoerr.JailedError{Until: account.JailUntil}
	}
	if account.Job == "" {
		return WorkResult{}, ecoerr.UnemployedError{}
	}
	job, ok := m.catalog.Get(account.Job)
	if !ok {
		return WorkResult{}, ecoerr.UnknownTargetError{Kind: "job", Name: account.Job}
	}
	if until := account.LastWork.Add(m.cfg.WorkCooldown()); until.After(now) {
		return WorkResult{}, ecoerr.CooldownError{Operation: "work", Until: until}
	}

	skill := account.SkillFor(job.Track)
	wage := m.ComputeWage(job, state, skill, headcount)
	if account.UnionMember && job.Union {
		wage += int64(float64(wage) * unionWageBonus)
	}

	account.Cash += wage
	account.LastWork = now

	leveled := m.advanceSkill(account, job.Track)

	return WorkResult{
		Job:       job,
		Wage:      wage,
		LeveledUp: leveled,
		Skill:     account.SkillFor(job.Track),
	}, nil
}

// advanceSkill adds shift progress and levels the track either when the
// progress bar fills or on the lucky-breakthrough roll.
func (m *Market) advanceSkill(account *models.Account, track string) bool {
	account.SkillProgress += m.cfg.SkillProgressPerWork
	levelUp := account.SkillProgress >= skillProgressPerLevel ||
		m.rand.Float64() < m.cfg.SkillUpChance
	if !levelUp {
		return false
	}
	if account.Skills == nil {
		account.Skills = make(map[string]int)
	}
	account.Skills[track]++
	account.SkillProgress = 0
	return true
}

// Rate derives the server unemployment rate from the natural rate, the
// current cycle phase and any active shock.
func (m *Market) Rate(state *models.EconomicState, now time.Time) float64 {
	rate := m.cfg.NaturalUnemployment * state.PhaseModifiers().Unemployment
	if state.LastShock.Active(now) {
		rate += state.LastShock.UnemploymentImpact
	}
	return clamp(rate, 0, 1)
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
