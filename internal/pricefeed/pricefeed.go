// Package pricefeed pulls spot quotes for external symbols (gold, crypto,
// forex) with a last-known-value cache. The market never fabricates a quote:
// a symbol with no live value and no cached one is reported unavailable.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/hazelvale/economica/internal/config"
	"github.com/hazelvale/economica/internal/economy/ecoerr"
)

// Symbols the feed understands.
const (
	SymbolGold   = "gold"
	SymbolCrypto = "crypto"
	SymbolForex  = "forex"
)

type Quote struct {
	Symbol    string
	Price     float64
	FetchedAt time.Time
	Stale     bool
}

type cacheEntry struct {
	price     float64
	fetchedAt time.Time
}

type Client struct {
	cfg      config.FeedConfig
	http     *http.Client
	cache    *lru.Cache
	maxStale time.Duration
}

func New(cfg config.FeedConfig) (*Client, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 64
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed cache: %w", err)
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		cache:    cache,
		maxStale: time.Duration(cfg.MaxStaleSec) * time.Second,
	}, nil
}

// Fetch returns the live quote for the symbol, falling back to the cached
// last-known value when the upstream is down. Quotes served from cache are
// flagged stale; a cache miss on a dead upstream is a FeedUnavailableError.
func (c *Client) Fetch(ctx context.Context, symbol string) (Quote, error) {
	url, extract, err := c.route(symbol)
	if err != nil {
		return Quote{}, err
	}

	price, fetchErr := c.fetchLive(ctx, url, extract)
	if fetchErr == nil {
		c.cache.Add(symbol, cacheEntry{price: price, fetchedAt: time.Now()})
		return Quote{Symbol: symbol, Price: price, FetchedAt: time.Now()}, nil
	}

	if v, ok := c.cache.Get(symbol); ok {
		entry := v.(cacheEntry)
		if c.maxStale <= 0 || time.Since(entry.fetchedAt) <= c.maxStale {
			return Quote{Symbol: symbol, Price: entry.price, FetchedAt: entry.fetchedAt, Stale: true}, nil
		}
	}
	return Quote{}, ecoerr.FeedUnavailableError{Symbol: symbol}
}

func (c *Client) route(symbol string) (string, func(map[string]any) (float64, bool), error) {
	switch symbol {
	case SymbolGold:
		return c.cfg.GoldURL, extractPath("rates", "XAU"), nil
	case SymbolCrypto:
		return c.cfg.CryptoURL + "?ids=bitcoin&vs_currencies=usd", extractPath("bitcoin", "usd"), nil
	case SymbolForex:
		return c.cfg.ForexURL, extractPath("rates", "EUR"), nil
	default:
		return "", nil, ecoerr.UnknownTargetError{Kind: "symbol", Name: symbol}
	}
}

func (c *Client) fetchLive(ctx context.Context, url string, extract func(map[string]any) (float64, bool)) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode feed response: %w", err)
	}
	price, ok := extract(body)
	if !ok {
		return 0, fmt.Errorf("feed response missing price field")
	}
	return price, nil
}

// extractPath walks nested JSON objects to a numeric leaf.
func extractPath(keys ...string) func(map[string]any) (float64, bool) {
	return func(body map[string]any) (float64, bool) {
		var cur any = body
		for _, key := range keys {
			obj, ok := cur.(map[string]any)
			if !ok {
				return 0, false
			}
			cur, ok = obj[key]
			if !ok {
				return 0, false
			}
		}
		price, ok := cur.(float64)
		return price, ok
	}
}
