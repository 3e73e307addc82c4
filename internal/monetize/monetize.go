// Package monetize computes paid-item revenue for online titles from the
// active player estimate, per-category purchase rates, and a bounded random
// fluctuation.
package monetize

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/1836047093/YCJY-sub002/internal/config"
)

// Category keys into the configured purchase-rate table.
type Category string

const (
	CategoryCosmetic    Category = "cosmetic"
	CategoryConvenience Category = "convenience"
	CategorySeasonPass  Category = "season_pass"
	CategoryGacha       Category = "gacha"
)

// Item is one sellable catalog entry. Price is in the smallest currency unit.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    int64    `json:"price"`
	Enabled  bool     `json:"enabled"`
}

// ItemRevenue is one item's revenue for a single accrual tick.
type ItemRevenue struct {
	ItemID  string
	Revenue int64
}

// Calculator owns its RNG so concurrent engine ticks never race on it.
type Calculator struct {
	cfg config.Monetization
	log *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCalculator(cfg config.Monetization, seed int64, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		cfg: cfg,
		log: logger,
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// ComputeRevenue returns per-item revenue for one accrual tick.
//
// For each enabled, priced item: buyers = activePlayers x the category's
// purchase rate, revenue = buyers x price adjusted by a random fluctuation
// within the configured band, floored at one purchase (the item's price) so a
// live item with players present never reports zero. Disabled or unpriced
// items and unknown categories yield zero and are omitted.
func (c *Calculator) ComputeRevenue(activePlayers int64, items []Item) []ItemRevenue {
	if activePlayers <= 0 || len(items) == 0 {
		return nil
	}
	out := make([]ItemRevenue, 0, len(items))
	for _, it := range items {
		if !it.Enabled || it.Price <= 0 {
			continue
		}
		rate, ok := c.cfg.PurchaseRates[string(it.Category)]
		if !ok || rate <= 0 {
			c.log.Debug("unknown monetization category skipped",
				"item", it.ID, "category", string(it.Category))
			continue
		}
		gross := float64(activePlayers) * rate * float64(it.Price) * c.fluctuation()
		rev := int64(math.Round(gross))
		if rev < it.Price {
			rev = it.Price
		}
		out = append(out, ItemRevenue{ItemID: it.ID, Revenue: rev})
	}
	return out
}

// Total sums a tick's per-item revenue.
func Total(revs []ItemRevenue) int64 {
	var t int64
	for _, r := range revs {
		t += r.Revenue
	}
	return t
}

// fluctuation returns a factor 1 +/- amplitude, amplitude drawn uniformly
// from [FluctuationMin, FluctuationMax].
func (c *Calculator) fluctuation() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	amp := c.cfg.FluctuationMin + c.rnd.Float64()*(c.cfg.FluctuationMax-c.cfg.FluctuationMin)
	if c.rnd.Intn(2) == 0 {
		amp = -amp
	}
	return 1 + amp
}
