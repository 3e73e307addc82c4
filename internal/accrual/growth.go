package accrual

import (
	"math"

	"github.com/1836047093/YCJY-sub002/internal/bonus"
	"github.com/1836047093/YCJY-sub002/internal/config"
	"github.com/1836047093/YCJY-sub002/internal/lifecycle"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

// unreviewedRating places titles without a review score on the middle curve.
const unreviewedRating = 5.0

// projectedUnitsFor returns the day's unit quantity, reusing the minute
// projection when one was already cached for this date so the day settlement
// agrees with the stream the minute path paid out.
func (e *Engine) projectedUnitsFor(st *title.State, d DayContext) int64 {
	if st.MinuteDate.Equal(d.Date) && st.MinuteProjectedUnits > 0 {
		return st.MinuteProjectedUnits
	}
	return e.projectUnits(st, d)
}

// projectUnits computes the full-day unit quantity from scratch.
func (e *Engine) projectUnits(st *title.State, d DayContext) int64 {
	var units int64
	if len(st.DailyHistory) == 0 {
		units = e.firstDayUnits(st, d)
	} else if st.Category == title.CategoryOnline {
		units = e.nextDayRegistrations(st, d)
	} else {
		units = e.nextDayRetailUnits(st, d)
	}
	if st.Category == title.CategoryRetail {
		units = e.capRetail(st, d.Rating, units, len(st.DailyHistory) == 0)
	}
	if units < 0 {
		units = 0
	}
	return units
}

// firstDayUnits is the launch-day quantity: category base, price tier for
// retail, then the bonus chain.
func (e *Engine) firstDayUnits(st *title.State, d DayContext) int64 {
	var base float64
	bctx := bonus.UnitSales
	if st.Category == title.CategoryOnline {
		base = float64(e.cfg.Online.BaseFirstDayRegistrations)
		bctx = bonus.Registrations
	} else {
		base = float64(e.cfg.Retail.BaseFirstDayUnits) * e.priceTierFactor(st.UnitPrice)
	}
	v := bonus.Compose(base, bctx, bonus.Inputs{
		Rating:     d.Rating,
		FanCount:   d.FanCount,
		IPBonus:    d.IPBonus,
		Reputation: d.Reputation,
	}, e.cfg.Bonus)
	units := int64(math.Round(v))
	return clampUnits(units, e.perDayCap(st.Category))
}

// nextDayRetailUnits decays the previous day geometrically on the rating
// bracket's curve, floored at the bracket minimum.
func (e *Engine) nextDayRetailUnits(st *title.State, d DayContext) int64 {
	last, _ := st.LastRecord()
	curve := e.retailCurve(ratingOr(d.Rating))
	units := int64(math.Floor(float64(last.Units) * curve.DailyDecay))
	if units < curve.MinDailyUnits {
		units = curve.MinDailyUnits
	}
	return clampUnits(units, e.cfg.Retail.PerDayCap)
}

// nextDayRegistrations grows the previous day geometrically, with a bounded
// random fluctuation and the interest step multiplier (the same steps that
// gate the active-player pool). The per-day cap applies after all multipliers.
func (e *Engine) nextDayRegistrations(st *title.State, d DayContext) int64 {
	last, _ := st.LastRecord()
	curve := e.onlineCurve(ratingOr(d.Rating))
	fluct := 1 + (e.nextFloat()*2-1)*e.cfg.Online.Fluctuation
	v := float64(last.Units) * curve.DailyGrowth * fluct *
		lifecycle.ActivePlayerMultiplier(st.PlayerInterest)
	return clampUnits(int64(math.Round(v)), e.cfg.Online.PerDayCap)
}

// capRetail enforces the low-rating lifetime cap by spreading the remaining
// quota over the remaining sales window. The launch day skips the per-day
// quota but can never exceed the remaining total.
func (e *Engine) capRetail(st *title.State, rating *float64, units int64, firstDay bool) int64 {
	if rating == nil {
		return units
	}
	cap, ok := e.lifetimeCap(*rating)
	if !ok {
		return units
	}
	remaining := cap - st.Stats.TotalUnits
	if remaining <= 0 {
		return 0
	}
	if !firstDay {
		remDays := e.cfg.Retail.SalesWindowDays - st.Stats.DaysTracked
		if remDays < 1 {
			remDays = 1
		}
		quota := remaining / int64(remDays)
		if quota < 1 {
			quota = 1
		}
		if units > quota {
			units = quota
		}
	}
	if units > remaining {
		units = remaining
	}
	return units
}

func (e *Engine) perDayCap(cat title.Category) int64 {
	if cat == title.CategoryOnline {
		return e.cfg.Online.PerDayCap
	}
	return e.cfg.Retail.PerDayCap
}

// priceTierFactor matches the first tier whose MaxPrice covers the price;
// MaxPrice 0 is the open-ended fallback.
func (e *Engine) priceTierFactor(price int64) float64 {
	for _, t := range e.cfg.Retail.PriceTiers {
		if t.MaxPrice == 0 || price <= t.MaxPrice {
			return t.Factor
		}
	}
	return 1.0
}

func (e *Engine) retailCurve(rating float64) config.RetailCurve {
	c := e.cfg.Retail.Brackets[0]
	for _, b := range e.cfg.Retail.Brackets {
		if rating >= b.MinRating {
			c = b
		}
	}
	return c
}

func (e *Engine) onlineCurve(rating float64) config.OnlineCurve {
	c := e.cfg.Online.Brackets[0]
	for _, b := range e.cfg.Online.Brackets {
		if rating >= b.MinRating {
			c = b
		}
	}
	return c
}

// lifetimeCap matches the lowest MaxRating above the rating; ratings above
// every cap row are uncapped.
func (e *Engine) lifetimeCap(rating float64) (int64, bool) {
	for _, c := range e.cfg.Retail.LifetimeCaps {
		if rating < c.MaxRating {
			return c.Cap, true
		}
	}
	return 0, false
}

func ratingOr(r *float64) float64 {
	if r == nil {
		return unreviewedRating
	}
	return *r
}

func clampUnits(v, cap int64) int64 {
	if v < 0 {
		return 0
	}
	if cap > 0 && v > cap {
		return cap
	}
	return v
}
