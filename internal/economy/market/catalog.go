package market

import (
	"github.com/sahilm/fuzzy"

	"github.com/hazelvale/economica/internal/database/models"
)

type Item struct {
	ID         string
	BasePrice  int64
	Elasticity float64
	Necessity  float64

	// FeedSymbol pegs the item to an external price feed symbol instead of
	// the demand model. Empty for ordinary goods.
	FeedSymbol string
}

// DefaultCatalog is the standard goods list, essentials through luxuries.
// High-necessity goods barely react to demand swings; luxuries swing hard.
// Gold is quoted off the external feed rather than local demand.
func DefaultCatalog() []Item {
	return []Item{
		{ID: "water", BasePrice: 3, Elasticity: 0.2, Necessity: 1.0},
		{ID: "bread", BasePrice: 5, Elasticity: 0.3, Necessity: 0.9},
		{ID: "medicine", BasePrice: 50, Elasticity: 0.1, Necessity: 0.8},
		{ID: "phone", BasePrice: 500, Elasticity: 0.7, Necessity: 0.4},
		{ID: "laptop", BasePrice: 1200, Elasticity: 0.8, Necessity: 0.3},
		{ID: "gold", BasePrice: 2400, Elasticity: 1.0, Necessity: 0.0, FeedSymbol: "gold"},
		{ID: "luxury_watch", BasePrice: 5000, Elasticity: 1.5, Necessity: 0.0},
		{ID: "car", BasePrice: 25000, Elasticity: 0.9, Necessity: 0.5},
		{ID: "house", BasePrice: 200000, Elasticity: 1.2, Necessity: 0.9},
		{ID: "yacht", BasePrice: 1000000, Elasticity: 2.0, Necessity: 0.0},
	}
}

type Catalog struct {
	items []Item
	byID  map[string]*Item
	names []string
}

func NewCatalog(items []Item) *Catalog {
	if items == nil {
		items = DefaultCatalog()
	}
	c := &Catalog{
		items: items,
		byID:  make(map[string]*Item, len(items)),
	}
	for i := range c.items {
		c.byID[c.items[i].ID] = &c.items[i]
		c.names = append(c.names, c.items[i].ID)
	}
	return c
}

func (c *Catalog) Items() []Item {
	return c.items
}

func (c *Catalog) Get(id string) (Item, bool) {
	item, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Resolve maps possibly-misspelled user input to a catalog item.
func (c *Catalog) Resolve(input string) (Item, bool) {
	if item, ok := c.Get(input); ok {
		return item, true
	}
	matches := fuzzy.Find(input, c.names)
	if len(matches) == 0 {
		return Item{}, false
	}
	return c.Get(matches[0].Str)
}

// SeedRows converts the catalog into per-server market rows for first-touch
// provisioning.
func (c *Catalog) SeedRows() []*models.MarketItem {
	rows := make([]*models.MarketItem, 0, len(c.items))
	for _, item := range c.items {
		rows = append(rows, &models.MarketItem{
			ItemID:       item.ID,
			BasePrice:    item.BasePrice,
			CurrentPrice: item.BasePrice,
			Elasticity:   item.Elasticity,
			Necessity:    item.Necessity,
			FeedSymbol:   item.FeedSymbol,
		})
	}
	return rows
}
