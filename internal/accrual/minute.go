package accrual

import (
	"context"
	"fmt"
	"math"

	"github.com/1836047093/YCJY-sub002/internal/gamedate"
	"github.com/1836047093/YCJY-sub002/internal/monetize"
	"github.com/1836047093/YCJY-sub002/internal/telemetry"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

// MinuteResult is one incremental payout from the minute stream.
type MinuteResult struct {
	UnitsDelta   int64
	RevenueDelta int64

	// ProjectedUnits is the full-day quantity the stream converges to.
	ProjectedUnits   int64
	ProjectedRevenue int64
}

// AccrueMinute pays out the fraction of the projected full-day quantity that
// elapsed game minutes have earned, emitting only the increment over what was
// already paid. The unit projection is computed once per day and cached on the
// state, so the day settlement in AccrueDay reuses the same number and the
// unit stream sums to exactly the recorded day total. Retail revenue follows
// the same guarantee; online monetization revenue streamed here is an
// estimate and the day settlement stays authoritative.
//
// A single call after a long pause is smoothed: any increment above twice the
// nominal per-minute share is clamped to the nominal share.
func (e *Engine) AccrueMinute(ctx context.Context, id title.ID, d DayContext) (MinuteResult, error) {
	st, ok, err := e.Titles.Get(ctx, id)
	if err != nil {
		return MinuteResult{}, err
	}
	if !ok {
		return MinuteResult{}, fmt.Errorf("accrue minute %s: %w", id, title.ErrNotFound)
	}
	st.Normalize()

	if !st.IsActive || st.HasRecordFor(d.Date) {
		return MinuteResult{ProjectedUnits: st.MinuteProjectedUnits,
			ProjectedRevenue: st.MinuteProjectedRevenue}, nil
	}

	reprojected := false
	if !st.MinuteDate.Equal(d.Date) {
		st.MinuteDate = d.Date
		st.MinuteProjectedUnits = e.projectUnits(&st, d)
		st.MinuteProjectedRevenue = e.projectRevenue(&st, d, st.MinuteProjectedUnits)
		st.MinuteUnitsPaid = 0
		st.MinuteRevenuePaid = 0
		reprojected = true
	}

	startMinute := 0
	if d.Date.Equal(st.ReleaseDate) {
		startMinute = st.ReleaseMinute
	}
	span := gamedate.MinutesPerDay - startMinute
	elapsed := gamedate.ClampMinute(d.MinuteOfDay) - startMinute + 1
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > span {
		elapsed = span
	}
	frac := float64(elapsed) / float64(span)

	res := MinuteResult{
		ProjectedUnits:   st.MinuteProjectedUnits,
		ProjectedRevenue: st.MinuteProjectedRevenue,
	}
	res.UnitsDelta = payout(frac, st.MinuteProjectedUnits, st.MinuteUnitsPaid, span)
	res.RevenueDelta = payout(frac, st.MinuteProjectedRevenue, st.MinuteRevenuePaid, span)
	if res.UnitsDelta == 0 && res.RevenueDelta == 0 {
		if reprojected {
			// Persist the projection so later calls this date reuse it.
			if _, err := e.Titles.Put(ctx, st); err != nil {
				return MinuteResult{}, err
			}
		}
		return res, nil
	}

	st.MinuteUnitsPaid += res.UnitsDelta
	st.MinuteRevenuePaid += res.RevenueDelta
	if _, err := e.Titles.Put(ctx, st); err != nil {
		return MinuteResult{}, err
	}
	e.record(telemetry.EventMinuteAccrued, telemetry.EventMetadata{
		"title_id": string(id), "date": d.Date.String(), "minute": d.MinuteOfDay,
		"units_delta": res.UnitsDelta, "revenue_delta": res.RevenueDelta,
	})
	return res, nil
}

// projectRevenue estimates the full-day revenue matching a unit projection:
// copies x price for retail, a monetization estimate at the current active
// pool for online.
func (e *Engine) projectRevenue(st *title.State, d DayContext, units int64) int64 {
	if st.Category == title.CategoryRetail {
		return mulPrice(units, st.UnitPrice)
	}
	registered := e.guard.Add("registered_players:"+string(st.ID),
		st.TotalRegisteredPlayers, units)
	projected := *st
	projected.TotalRegisteredPlayers = registered
	return monetize.Total(e.money.ComputeRevenue(e.activePlayers(&projected), d.Items))
}

// payout converts a day fraction into the increment owed over what was
// already paid, clamped to the nominal per-minute share when a gap (pause,
// skipped ticks) would otherwise dump a spike into one call.
func payout(frac float64, projected, paid int64, span int) int64 {
	if projected <= 0 || span <= 0 {
		return 0
	}
	target := int64(math.Round(frac * float64(projected)))
	delta := target - paid
	if delta <= 0 {
		return 0
	}
	nominal := projected / int64(span)
	if projected%int64(span) != 0 {
		nominal++
	}
	if delta > 2*nominal {
		delta = nominal
	}
	return delta
}
