package bonus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1836047093/YCJY-sub002/internal/config"
)

func f(v float64) *float64 { return &v }

func TestRatingMultiplier(t *testing.T) {
	cfg := config.Default().Bonus

	// Nil rating is neutral.
	assert.Equal(t, 1.0, RatingMultiplier(UnitSales, nil, cfg))

	// Below 5 is a penalty on both tables.
	assert.Equal(t, 0.4, RatingMultiplier(UnitSales, f(0.5), cfg))
	assert.Equal(t, 0.5, RatingMultiplier(Registrations, f(4.9), cfg))

	// Top of the scale triples the base.
	assert.Equal(t, 3.0, RatingMultiplier(UnitSales, f(10), cfg))
	assert.Equal(t, 3.0, RatingMultiplier(Registrations, f(10), cfg))
}

func TestRatingMultiplier_MonotonicSteps(t *testing.T) {
	cfg := config.Default().Bonus
	prev := 0.0
	for _, r := range []float64{0, 3, 5, 6, 7, 8, 9, 10} {
		m := RatingMultiplier(Registrations, f(r), cfg)
		assert.GreaterOrEqual(t, m, prev, "rating %v", r)
		prev = m
	}
}

func TestFanMultiplier_TiersAndCap(t *testing.T) {
	cfg := config.Default().Bonus

	assert.Equal(t, 1.0, FanMultiplier(UnitSales, 0, cfg))
	assert.Equal(t, 1.03, FanMultiplier(UnitSales, 1_000, cfg))
	assert.Equal(t, 1.30, FanMultiplier(UnitSales, 5_000_000, cfg))
	assert.Equal(t, 1.50, FanMultiplier(Registrations, 5_000_000, cfg))
}

func TestIPAndReputationMultipliers(t *testing.T) {
	assert.Equal(t, 1.5, IPMultiplier(0.5))
	assert.Equal(t, 1.0, IPMultiplier(0))
	assert.Equal(t, 1.0, IPMultiplier(-0.3))

	assert.Equal(t, 1.1, ReputationMultiplier(0.1, 0.2))
	assert.Equal(t, 1.2, ReputationMultiplier(0.9, 0.2))
	assert.Equal(t, 1.0, ReputationMultiplier(-1, 0.2))
}

func TestCompose_ChainAndFloor(t *testing.T) {
	cfg := config.Default().Bonus

	got := Compose(1000, Registrations, Inputs{
		Rating:     f(8.0),
		FanCount:   1_000_000,
		IPBonus:    0.5,
		Reputation: 0.1,
	}, cfg)
	// 1000 * 1.6 * 1.5 * 1.5 * 1.1
	assert.InDelta(t, 3960.0, got, 1e-9)

	assert.Equal(t, 0.0, Compose(-50, UnitSales, Inputs{}, cfg))
}
