package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// Cycle phases, in order. The cycle is circular with no terminal state.
const (
	PhaseExpansion = "expansion"
	PhasePeak      = "peak"
	PhaseRecession = "recession"
	PhaseTrough    = "trough"
	PhaseRecovery  = "recovery"
)

// CyclePhases is the canonical phase order.
var CyclePhases = []string{PhaseExpansion, PhasePeak, PhaseRecession, PhaseTrough, PhaseRecovery}

// Shock is the active random shock, stored inline on the state.
type Shock struct {
	Kind               string    `json:"kind"`
	GDPImpact          float64   `json:"gdp_impact"`
	UnemploymentImpact float64   `json:"unemployment_impact"`
	StartedAt          time.Time `json:"started_at"`
	EndsAt             time.Time `json:"ends_at"`
}

// Active reports whether the shock is in effect at the given instant.
func (s *Shock) Active(now time.Time) bool {
	return s != nil && now.Before(s.EndsAt)
}

// EconomicState is the server-scoped singleton mutated only by the macro tick
// and by elected-office actions. Command paths read it as a frozen snapshot.
type EconomicState struct {
	bun.BaseModel `bun:"table:economic_states,alias:es"`

	ID       int64        `bun:"id,pk,autoincrement"`
	ServerID snowflake.ID `bun:"server_id,notnull,unique,type:bigint"`

	CyclePhase     string    `bun:"cycle_phase,notnull"`
	CycleDay       float64   `bun:"cycle_day,notnull,default:0"`
	PhaseStartedAt time.Time `bun:"phase_started_at,notnull"`
	PhaseLength    float64   `bun:"phase_length,notnull"` // days, includes jitter

	MoneySupply int64   `bun:"money_supply,notnull,default:0"`
	Velocity    float64 `bun:"velocity,notnull"`
	PriceLevel  float64 `bun:"price_level,notnull,default:1"`
	GDP         int64   `bun:"gdp,notnull,default:0"`
	PreviousGDP int64   `bun:"previous_gdp,notnull,default:0"`

	Gini             float64 `bun:"gini,notnull,default:0"`
	UnemploymentRate float64 `bun:"unemployment_rate,notnull"`

	// Policy levers held by elected offices.
	TaxModifier    float64 `bun:"tax_modifier,notnull,default:1"`
	MinimumWage    int64   `bun:"minimum_wage,notnull"`
	InterestRate   float64 `bun:"interest_rate,notnull"`
	PoliceStrength float64 `bun:"police_strength,notnull"`

	Treasury int64 `bun:"treasury,notnull,default:0"`

	LastShock           *Shock    `bun:"last_shock,type:jsonb"`
	LastInequalityEvent time.Time `bun:"last_inequality_event,nullzero"`
	LastTickAt          time.Time `bun:"last_tick_at,nullzero"`

	Version   int64     `bun:"version,notnull,default:1"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// PhaseModifiers returns the multipliers the current phase applies to wages,
// unemployment and demand.
func (s *EconomicState) PhaseModifiers() PhaseModifier {
	return PhaseModifierTable[s.CyclePhase]
}

// PhaseModifier modulates the rest of the economy per cycle phase.
type PhaseModifier struct {
	GDPGrowth    float64
	Unemployment float64
	Inflation    float64
}

// PhaseModifierTable carries the per-phase multipliers.
var PhaseModifierTable = map[string]PhaseModifier{
	PhaseExpansion: {GDPGrowth: 1.15, Unemployment: 0.85, Inflation: 1.10},
	PhasePeak:      {GDPGrowth: 1.05, Unemployment: 0.90, Inflation: 1.15},
	PhaseRecession: {GDPGrowth: 0.85, Unemployment: 1.30, Inflation: 0.95},
	PhaseTrough:    {GDPGrowth: 0.80, Unemployment: 1.50, Inflation: 0.90},
	PhaseRecovery:  {GDPGrowth: 1.10, Unemployment: 1.10, Inflation: 1.02},
}
