package macro

// ShockKind describes one random economic event: daily trigger probability,
// the GDP and unemployment perturbation while active, and how long it lasts.
type ShockKind struct {
	ID                 string
	Probability        float64
	GDPImpact          float64
	UnemploymentImpact float64
	DurationDays       int
}

// DefaultShocks is the standard event table. Probabilities are per daily
// roll; at most one shock is active at a time.
func DefaultShocks() []ShockKind {
	return []ShockKind{
		{ID: "stock_market_crash", Probability: 0.02, GDPImpact: -0.15, UnemploymentImpact: 0.25, DurationDays: 7},
		{ID: "tech_boom", Probability: 0.03, GDPImpact: 0.20, UnemploymentImpact: -0.10, DurationDays: 14},
		{ID: "natural_disaster", Probability: 0.01, GDPImpact: -0.10, UnemploymentImpact: 0.15, DurationDays: 5},
		{ID: "trade_war", Probability: 0.02, GDPImpact: -0.08, UnemploymentImpact: 0.12, DurationDays: 21},
		{ID: "innovation_breakthrough", Probability: 0.02, GDPImpact: 0.15, UnemploymentImpact: -0.05, DurationDays: 30},
		{ID: "pandemic", Probability: 0.005, GDPImpact: -0.25, UnemploymentImpact: 0.40, DurationDays: 60},
		{ID: "oil_crisis", Probability: 0.015, GDPImpact: -0.12, UnemploymentImpact: 0.08, DurationDays: 14},
		{ID: "housing_bubble", Probability: 0.01, GDPImpact: -0.20, UnemploymentImpact: 0.30, DurationDays: 10},
	}
}
