package market

import (
	"errors"
	"testing"
	"time"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/database/models"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

func testExchange() *Exchange {
	return NewExchange(config.Default().Economy, NewCatalog(nil))
}

func breadRow() *models.MarketItem {
	return &models.MarketItem{
		ItemID:       "bread",
		BasePrice:    100,
		CurrentPrice: 100,
		Elasticity:   0.3,
		Necessity:    0.9,
	}
}

func TestBuy(t *testing.T) {
	e := testExchange()

	t.Run("charges price plus spread", func(t *testing.T) {
		acct := &models.Account{Cash: 1000}
		item := breadRow()

		cost, err := e.Buy(acct, item, 2)
		if err != nil {
			t.Fatalf("Buy: %v", err)
		}
		if want := int64(105 * 2); cost != want {
			t.Errorf("cost = %d, want %d", cost, want)
		}
		if acct.Cash != 1000-cost {
			t.Errorf("cash = %d, want %d", acct.Cash, 1000-cost)
		}
		if acct.Inventory["bread"] != 2 {
			t.Errorf("inventory = %d, want 2", acct.Inventory["bread"])
		}
		if item.DemandCount != 2 {
			t.Errorf("demand count = %d, want 2", item.DemandCount)
		}
	})

	t.Run("insufficient funds leaves everything untouched", func(t *testing.T) {
		acct := &models.Account{Cash: 50}
		item := breadRow()

		_, err := e.Buy(acct, item, 1)
		var funds ecoerr.InsufficientFundsError
		if !errors.As(err, &funds) {
			t.Fatalf("want InsufficientFundsError, got %v", err)
		}
		if acct.Cash != 50 || len(acct.Inventory) != 0 || item.DemandCount != 0 {
			t.Error("failed buy must not mutate account or item")
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		for _, qty := range []int{0, -3} {
			if _, err := e.Buy(&models.Account{Cash: 1000}, breadRow(), qty); !errors.Is(err, ecoerr.ErrValidation) {
				t.Errorf("Buy(qty=%d): want validation error, got %v", qty, err)
			}
		}
	})
}

func TestSell(t *testing.T) {
	e := testExchange()

	t.Run("credits price minus spread", func(t *testing.T) {
		acct := &models.Account{Inventory: map[string]int{"bread": 5}}
		item := breadRow()

		proceeds, err := e.Sell(acct, item, 3)
		if err != nil {
			t.Fatalf("Sell: %v", err)
		}
		if want := int64(95 * 3); proceeds != want {
			t.Errorf("proceeds = %d, want %d", proceeds, want)
		}
		if acct.Inventory["bread"] != 2 {
			t.Errorf("inventory = %d, want 2", acct.Inventory["bread"])
		}
		if item.SupplyCount != 3 {
			t.Errorf("supply count = %d, want 3", item.SupplyCount)
		}
	})

	t.Run("selling out removes the inventory key", func(t *testing.T) {
		acct := &models.Account{Inventory: map[string]int{"bread": 1}}
		if _, err := e.Sell(acct, breadRow(), 1); err != nil {
			t.Fatal(err)
		}
		if _, ok := acct.Inventory["bread"]; ok {
			t.Error("zeroed inventory entry should be removed")
		}
	})

	t.Run("insufficient inventory", func(t *testing.T) {
		acct := &models.Account{Inventory: map[string]int{"bread": 1}}
		item := breadRow()

		_, err := e.Sell(acct, item, 2)
		var inv ecoerr.InsufficientInventoryError
		if !errors.As(err, &inv) {
			t.Fatalf("want InsufficientInventoryError, got %v", err)
		}
		if acct.Inventory["bread"] != 1 || item.SupplyCount != 0 {
			t.Error("failed sell must not mutate account or item")
		}
	})

	t.Run("round trip loses the spread", func(t *testing.T) {
		acct := &models.Account{Cash: 1000}
		item := breadRow()

		cost, _ := e.Buy(acct, item, 1)
		proceeds, _ := e.Sell(acct, item, 1)
		if proceeds >= cost {
			t.Errorf("buy-then-sell must cost the spread: paid %d, got back %d", cost, proceeds)
		}
	})
}

func TestReprice(t *testing.T) {
	e := testExchange()
	now := time.Now()
	flat := &models.EconomicState{PriceLevel: 1.0}

	t.Run("net demand raises the price", func(t *testing.T) {
		item := breadRow()
		item.DemandCount = 20

		e.Reprice(item, flat, now)
		if item.CurrentPrice <= item.BasePrice {
			t.Errorf("price = %d, want above base %d", item.CurrentPrice, item.BasePrice)
		}
	})

	t.Run("net supply lowers the price", func(t *testing.T) {
		item := breadRow()
		item.SupplyCount = 20

		e.Reprice(item, flat, now)
		if item.CurrentPrice >= item.BasePrice {
			t.Errorf("price = %d, want below base %d", item.CurrentPrice, item.BasePrice)
		}
	})

	t.Run("elastic goods swing harder", func(t *testing.T) {
		stiff := breadRow()
		stiff.Elasticity = 0.1
		stiff.DemandCount = 20
		loose := breadRow()
		loose.Elasticity = 1.5
		loose.DemandCount = 20

		e.Reprice(stiff, flat, now)
		e.Reprice(loose, flat, now)
		if loose.CurrentPrice <= stiff.CurrentPrice {
			t.Errorf("elastic price %d should exceed inelastic %d under equal demand", loose.CurrentPrice, stiff.CurrentPrice)
		}
	})

	t.Run("necessity floor holds under a supply glut", func(t *testing.T) {
		item := breadRow()
		item.SupplyCount = 10000

		e.Reprice(item, &models.EconomicState{PriceLevel: 0.5}, now)
		floor := int64(float64(item.BasePrice) * item.Necessity * 0.5)
		if item.CurrentPrice < floor {
			t.Errorf("price %d fell through necessity floor %d", item.CurrentPrice, floor)
		}
	})

	t.Run("price level scales the quote", func(t *testing.T) {
		item := breadRow()
		e.Reprice(item, &models.EconomicState{PriceLevel: 2.0}, now)
		if item.CurrentPrice != 200 {
			t.Errorf("price = %d, want 200 at price level 2.0", item.CurrentPrice)
		}
	})

	t.Run("counters reset", func(t *testing.T) {
		item := breadRow()
		item.DemandCount = 7
		item.SupplyCount = 3

		e.Reprice(item, flat, now)
		if item.DemandCount != 0 || item.SupplyCount != 0 {
			t.Errorf("counters not reset: demand %d supply %d", item.DemandCount, item.SupplyCount)
		}
	})

	t.Run("luxury can fall to a token price", func(t *testing.T) {
		item := &models.MarketItem{ItemID: "yacht", BasePrice: 100, CurrentPrice: 100, Elasticity: 2.0, Necessity: 0}
		item.SupplyCount = 10000

		e.Reprice(item, &models.EconomicState{PriceLevel: 0.1}, now)
		if item.CurrentPrice < 1 {
			t.Errorf("price must stay positive, got %d", item.CurrentPrice)
		}
	})
}

func TestRepriceQuoted(t *testing.T) {
	e := testExchange()
	now := time.Now()

	goldRow := func() *models.MarketItem {
		return &models.MarketItem{ItemID: "gold", BasePrice: 2400, CurrentPrice: 2400, FeedSymbol: "gold"}
	}

	t.Run("pegs the quote to spot scaled by the price level", func(t *testing.T) {
		item := goldRow()
		e.RepriceQuoted(item, &models.EconomicState{PriceLevel: 2.0}, 3_000, now)
		if item.CurrentPrice != 6_000 {
			t.Errorf("price = %d, want 6000 at spot 3000 and level 2.0", item.CurrentPrice)
		}
	})

	t.Run("local demand does not move a pegged quote", func(t *testing.T) {
		item := goldRow()
		item.DemandCount = 10_000

		e.RepriceQuoted(item, &models.EconomicState{PriceLevel: 1.0}, 2_500, now)
		if item.CurrentPrice != 2_500 {
			t.Errorf("price = %d, want the spot 2500 regardless of demand", item.CurrentPrice)
		}
		if item.DemandCount != 0 || item.SupplyCount != 0 {
			t.Errorf("counters not reset: demand %d supply %d", item.DemandCount, item.SupplyCount)
		}
	})

	t.Run("token price floor", func(t *testing.T) {
		item := goldRow()
		e.RepriceQuoted(item, &models.EconomicState{PriceLevel: 0.1}, 0.5, now)
		if item.CurrentPrice != 1 {
			t.Errorf("price = %d, want floor of 1", item.CurrentPrice)
		}
	})
}

func TestCatalogResolve(t *testing.T) {
	c := NewCatalog(nil)

	if item, ok := c.Resolve("bread"); !ok || item.ID != "bread" {
		t.Error("exact id should resolve")
	}
	if item, ok := c.Resolve("laptp"); !ok || item.ID != "laptop" {
		t.Errorf("fuzzy resolve gave %q %v", item.ID, ok)
	}
	if _, ok := c.Resolve("zzzz"); ok {
		t.Error("gibberish should not resolve")
	}
}

func TestSeedRows(t *testing.T) {
	rows := NewCatalog(nil).SeedRows()
	if len(rows) != len(DefaultCatalog()) {
		t.Fatalf("got %d rows, want %d", len(rows), len(DefaultCatalog()))
	}
	for _, row := range rows {
		if row.CurrentPrice != row.BasePrice {
			t.Errorf("%s: seed price %d should equal base %d", row.ItemID, row.CurrentPrice, row.BasePrice)
		}
	}

	var feedLinked int
	for _, row := range rows {
		if row.FeedSymbol != "" {
			feedLinked++
		}
	}
	if feedLinked == 0 {
		t.Error("the catalog must carry at least one feed-linked item")
	}
}
