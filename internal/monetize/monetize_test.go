package monetize

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1836047093/YCJY-sub002/internal/config"
)

func newTestCalculator() *Calculator {
	return NewCalculator(config.Default().Monetization, 42,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestComputeRevenue_WithinFluctuationBand(t *testing.T) {
	c := newTestCalculator()
	item := Item{ID: "skin", Category: CategoryCosmetic, Price: 499, Enabled: true}

	for i := 0; i < 100; i++ {
		revs := c.ComputeRevenue(100_000, []Item{item})
		require.Len(t, revs, 1)
		// 100000 * 0.003 * 499 = 149700 expected, +/- 30% at most.
		assert.GreaterOrEqual(t, revs[0].Revenue, int64(104_000))
		assert.LessOrEqual(t, revs[0].Revenue, int64(195_000))
	}
}

func TestComputeRevenue_DisabledAndUnpricedYieldNothing(t *testing.T) {
	c := newTestCalculator()

	revs := c.ComputeRevenue(100_000, []Item{
		{ID: "off", Category: CategoryGacha, Price: 199, Enabled: false},
		{ID: "free", Category: CategoryGacha, Price: 0, Enabled: true},
	})
	assert.Empty(t, revs)
	assert.Equal(t, int64(0), Total(revs))
}

func TestComputeRevenue_FlooredAtItemPrice(t *testing.T) {
	c := newTestCalculator()
	item := Item{ID: "pass", Category: CategorySeasonPass, Price: 999, Enabled: true}

	// One active player cannot round down to zero revenue.
	revs := c.ComputeRevenue(1, []Item{item})
	require.Len(t, revs, 1)
	assert.Equal(t, int64(999), revs[0].Revenue)
}

func TestComputeRevenue_NoPlayersNoRevenue(t *testing.T) {
	c := newTestCalculator()
	item := Item{ID: "skin", Category: CategoryCosmetic, Price: 499, Enabled: true}

	assert.Empty(t, c.ComputeRevenue(0, []Item{item}))
	assert.Empty(t, c.ComputeRevenue(-5, []Item{item}))
}

func TestComputeRevenue_UnknownCategorySkipped(t *testing.T) {
	c := newTestCalculator()

	revs := c.ComputeRevenue(100_000, []Item{
		{ID: "odd", Category: Category("mystery"), Price: 100, Enabled: true},
	})
	assert.Empty(t, revs)
}

func TestComputeRevenue_GachaOutearnsCosmeticOnAverage(t *testing.T) {
	c := newTestCalculator()
	items := []Item{
		{ID: "skin", Category: CategoryCosmetic, Price: 499, Enabled: true},
		{ID: "crate", Category: CategoryGacha, Price: 499, Enabled: true},
	}

	var cosmetic, gacha int64
	for i := 0; i < 200; i++ {
		for _, r := range c.ComputeRevenue(50_000, items) {
			if r.ItemID == "skin" {
				cosmetic += r.Revenue
			} else {
				gacha += r.Revenue
			}
		}
	}
	assert.Greater(t, gacha, cosmetic)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, int64(0), Total(nil))
	assert.Equal(t, int64(30), Total([]ItemRevenue{{Revenue: 10}, {Revenue: 20}}))
}
