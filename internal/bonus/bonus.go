// Package bonus composes the launch and ongoing sales multipliers. There is
// exactly one composition path; both day accrual and minute projection go
// through Compose so the bonus order can never drift between call sites.
package bonus

import (
	"github.com/1836047093/YCJY-sub002/internal/config"
)

// Context selects which tuning tables apply: online registrations and retail
// unit sales are rewarded on different curves.
type Context string

const (
	Registrations Context = "registrations"
	UnitSales     Context = "unit_sales"
)

// Inputs are the caller-owned signals feeding the multiplier chain.
type Inputs struct {
	// Rating is the review score in [0,10]; nil means not yet reviewed and
	// contributes a neutral multiplier.
	Rating *float64
	// FanCount is the developer's fan base size.
	FanCount int64
	// IPBonus is the additive fraction granted for reusing an established
	// IP (0 for original titles).
	IPBonus float64
	// Reputation is the developer reputation fraction, capped in config.
	Reputation float64
}

// Compose applies the multiplier chain to base in the canonical order:
// rating, fans, IP, reputation. The result is floored at zero.
func Compose(base float64, ctx Context, in Inputs, cfg config.Bonus) float64 {
	v := base
	v *= RatingMultiplier(ctx, in.Rating, cfg)
	v *= FanMultiplier(ctx, in.FanCount, cfg)
	v *= IPMultiplier(in.IPBonus)
	v *= ReputationMultiplier(in.Reputation, cfg.ReputationCap)
	if v < 0 {
		return 0
	}
	return v
}

// RatingMultiplier resolves the step table for the context. A nil rating is
// neutral. Steps are matched by the highest MinRating <= rating, so ratings
// below the lowest named threshold take the table's first (penalty) step.
func RatingMultiplier(ctx Context, rating *float64, cfg config.Bonus) float64 {
	if rating == nil {
		return 1.0
	}
	steps := cfg.RatingUnitSales
	if ctx == Registrations {
		steps = cfg.RatingRegistrations
	}
	if len(steps) == 0 {
		return 1.0
	}
	m := steps[0].Multiplier
	for _, s := range steps {
		if *rating >= s.MinRating {
			m = s.Multiplier
		}
	}
	return m
}

// FanMultiplier returns 1 + the tiered fan bonus, capped per context.
func FanMultiplier(ctx Context, fans int64, cfg config.Bonus) float64 {
	tiers, cap := cfg.FanTiersRetail, cfg.FanCapRetail
	if ctx == Registrations {
		tiers, cap = cfg.FanTiersOnline, cfg.FanCapOnline
	}
	b := 0.0
	for _, t := range tiers {
		if fans >= t.MinFans {
			b = t.Bonus
		}
	}
	if cap > 0 && b > cap {
		b = cap
	}
	return 1.0 + b
}

// IPMultiplier returns 1 + the IP-reuse fraction; negative inputs are neutral.
func IPMultiplier(ipBonus float64) float64 {
	if ipBonus < 0 {
		return 1.0
	}
	return 1.0 + ipBonus
}

// ReputationMultiplier returns 1 + reputation clamped to [0, cap].
func ReputationMultiplier(reputation, cap float64) float64 {
	if reputation < 0 {
		reputation = 0
	}
	if cap > 0 && reputation > cap {
		reputation = cap
	}
	return 1.0 + reputation
}
