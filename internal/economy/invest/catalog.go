package invest

import "github.com/sahilm/fuzzy"

// Type is one investable asset class. Mu and Sigma are annualized drift and
// volatility; Liquidity discounts the early-withdrawal penalty for assets
// that are easy to exit.
type Type struct {
	ID        string
	Minimum   int64
	Mu        float64
	Sigma     float64
	Liquidity float64
}

func DefaultCatalog() []Type {
	return []Type{
		{ID: "savings_account", Minimum: 100, Mu: 0.02, Sigma: 0.01, Liquidity: 1.0},
		{ID: "cryptocurrency", Minimum: 100, Mu: 0.20, Sigma: 0.60, Liquidity: 0.95},
		{ID: "stocks", Minimum: 500, Mu: 0.08, Sigma: 0.20, Liquidity: 0.9},
		{ID: "bonds", Minimum: 1000, Mu: 0.04, Sigma: 0.05, Liquidity: 0.8},
		{ID: "real_estate", Minimum: 50_000, Mu: 0.06, Sigma: 0.10, Liquidity: 0.3},
		{ID: "venture_capital", Minimum: 100_000, Mu: 0.15, Sigma: 0.40, Liquidity: 0.2},
	}
}

type Catalog struct {
	types []Type
	byID  map[string]*Type
	names []string
}

func NewCatalog(types []Type) *Catalog {
	if types == nil {
		types = DefaultCatalog()
	}
	c := &Catalog{
		types: types,
		byID:  make(map[string]*Type, len(types)),
	}
	for i := range c.types {
		c.byID[c.types[i].ID] = &c.types[i]
		c.names = append(c.names, c.types[i].ID)
	}
	return c
}

func (c *Catalog) Types() []Type {
	return c.types
}

func (c *Catalog) Get(id string) (Type, bool) {
	t, ok := c.byID[id]
	if !ok {
		return Type{}, false
	}
	return *t, true
}

func (c *Catalog) Resolve(input string) (Type, bool) {
	if t, ok := c.Get(input); ok {
		return t, true
	}
	matches := fuzzy.Find(input, c.names)
	if len(matches) == 0 {
		return Type{}, false
	}
	return c.Get(matches[0].Str)
}
