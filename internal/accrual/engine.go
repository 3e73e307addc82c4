// Package accrual is the economy engine: it advances per-title economic
// state one simulated day (or minute fraction) at a time, driving the growth
// curves, the interest lifecycle, monetization, and content updates.
package accrual

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/1836047093/YCJY-sub002/internal/config"
	"github.com/1836047093/YCJY-sub002/internal/counter"
	"github.com/1836047093/YCJY-sub002/internal/gamedate"
	"github.com/1836047093/YCJY-sub002/internal/lifecycle"
	"github.com/1836047093/YCJY-sub002/internal/monetize"
	"github.com/1836047093/YCJY-sub002/internal/telemetry"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

var (
	ErrUpdateInProgress = errors.New("content update already in progress")
	ErrNoUpdate         = errors.New("no content update in progress")
	ErrBackdated        = errors.New("accrual date precedes last recorded day")
)

// Engine mutates title state through the repository; the host scheduler
// decides when game days and minutes pass and calls in with the current date.
type Engine struct {
	Titles title.Repository
	Events telemetry.Repository

	cfg   *config.Config
	log   *slog.Logger
	guard *counter.Guard
	life  *lifecycle.Tracker
	money *monetize.Calculator

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewEngine(cfg *config.Config, titles title.Repository, events telemetry.Repository, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	seed := cfg.SeededRNG.Seed
	if !cfg.SeededRNG.Enabled {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		Titles: titles,
		Events: events,
		cfg:    cfg,
		log:    logger,
		guard:  counter.NewGuard(logger, events),
		life:   lifecycle.NewTracker(cfg.Lifecycle, cfg.Economy.DecayPeriodDays, logger),
		money:  monetize.NewCalculator(cfg.Monetization, seed+1, logger),
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// ReleaseSpec describes a title entering the market.
type ReleaseSpec struct {
	ID           title.ID
	Name         string
	Category     title.Category
	UnitPrice    int64
	AIControlled bool
	Date         gamedate.Date
	MinuteOfDay  int
}

// Release creates the title's economic state. The release minute-of-day is
// fixed here and anchors minute interpolation on the launch day.
func (e *Engine) Release(ctx context.Context, spec ReleaseSpec) (title.State, error) {
	if _, ok, err := e.Titles.Get(ctx, spec.ID); err != nil {
		return title.State{}, err
	} else if ok {
		return title.State{}, fmt.Errorf("release %s: title already exists", spec.ID)
	}
	st := title.State{
		ID:                        spec.ID,
		Name:                      spec.Name,
		Category:                  spec.Category,
		ReleaseDate:               spec.Date,
		ReleaseMinute:             gamedate.ClampMinute(spec.MinuteOfDay),
		UnitPrice:                 spec.UnitPrice,
		IsActive:                  true,
		AIControlled:              spec.AIControlled,
		PlayerInterest:            100,
		CumulativeSalesMultiplier: 1,
	}
	st.Normalize()
	st, err := e.Titles.Put(ctx, st)
	if err != nil {
		return title.State{}, err
	}
	e.record(telemetry.EventTitleReleased, telemetry.EventMetadata{
		"title_id": string(st.ID),
		"category": string(st.Category),
		"date":     st.ReleaseDate.String(),
	})
	return st, nil
}

// Delist freezes accrual for a title. History and statistics stay queryable.
func (e *Engine) Delist(ctx context.Context, id title.ID) error {
	st, ok, err := e.Titles.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("delist %s: %w", id, title.ErrNotFound)
	}
	st.IsActive = false
	_, err = e.Titles.Put(ctx, st)
	return err
}

// DayContext carries the caller-owned signals for one accrual tick. Rating,
// fans, IP, and reputation belong to the host app; the engine only reads
// them.
type DayContext struct {
	Date        gamedate.Date
	MinuteOfDay int

	Rating     *float64
	FanCount   int64
	IPBonus    float64
	Reputation float64

	Items        []monetize.Item
	UpdatePoints int
}

// DayResult reports one accrued day.
type DayResult struct {
	Units               int64
	Revenue             int64
	MonetizationRevenue int64
	ActivePlayers       int64

	Interest          int
	LifecycleProgress float64
	Phase             lifecycle.Phase
	Decayed           bool
	Recovered         bool
	UpdateCompleted   bool

	// Skipped is set when the day was already recorded or the title is
	// delisted; state is unchanged in that case.
	Skipped bool

	State title.State
}

// AccrueDay records one simulated day for a title. Calling it again with the
// same date is a no-op: the last history record's date is the idempotence
// key.
func (e *Engine) AccrueDay(ctx context.Context, id title.ID, d DayContext) (DayResult, error) {
	st, ok, err := e.Titles.Get(ctx, id)
	if err != nil {
		return DayResult{}, err
	}
	if !ok {
		return DayResult{}, fmt.Errorf("accrue day %s: %w", id, title.ErrNotFound)
	}
	st.Normalize()

	if !st.IsActive || st.HasRecordFor(d.Date) {
		return DayResult{Skipped: true, Interest: st.PlayerInterest,
			LifecycleProgress: st.LifecycleProgress, State: st}, nil
	}

	anchor := st.ReleaseDate
	if last, ok := st.LastRecord(); ok {
		anchor = last.Date
	}
	advance := anchor.DaysUntil(d.Date)
	if advance < 0 {
		return DayResult{}, fmt.Errorf("accrue day %s at %s: %w", id, d.Date, ErrBackdated)
	}

	res := DayResult{}

	if st.Category == title.CategoryOnline {
		st.DaysSinceLaunch += advance
		tick := e.life.Tick(st.DaysSinceLaunch, e.cfg.Economy.LifespanDays,
			st.PlayerInterest, st.LastInterestDecayDay)
		st.PlayerInterest = tick.Interest
		st.LastInterestDecayDay = tick.LastDecayDay
		st.LifecycleProgress = tick.Progress
		res.Phase = tick.Phase
		res.Decayed = tick.Decayed
		if tick.Decayed {
			e.record(telemetry.EventInterestDecayed, telemetry.EventMetadata{
				"title_id": string(id), "interest": st.PlayerInterest,
				"phase": string(tick.Phase),
			})
		}
		if st.AIControlled && st.PlayerInterest < 50 {
			if e.nextFloat() < e.life.AIRecoveryProbability(st.PlayerInterest) {
				recovered, pts := e.life.Recover(st.LifecycleProgress, st.PlayerInterest)
				st.PlayerInterest = recovered
				res.Recovered = true
				e.record(telemetry.EventInterestRecovered, telemetry.EventMetadata{
					"title_id": string(id), "points": pts, "interest": recovered,
					"reason": "ai_spontaneous",
				})
			}
		}
	}

	units := e.projectedUnitsFor(&st, d)

	rec := title.DayRecord{Date: d.Date, Units: units}
	if st.Category == title.CategoryRetail {
		rec.Revenue = mulPrice(units, st.UnitPrice)
	}

	if st.Category == title.CategoryOnline {
		st.TotalRegisteredPlayers = e.guard.Add("registered_players:"+string(id),
			st.TotalRegisteredPlayers, units)
		res.ActivePlayers = e.activePlayers(&st)
		for _, ir := range e.money.ComputeRevenue(res.ActivePlayers, d.Items) {
			st.MonetizationRevenueByItem[ir.ItemID] = e.guard.Add(
				"monetization:"+string(id)+":"+ir.ItemID,
				st.MonetizationRevenueByItem[ir.ItemID], ir.Revenue)
			res.MonetizationRevenue += ir.Revenue
		}
		rec.Revenue = res.MonetizationRevenue
		st.Stats.MonetizationRevenue = e.guard.Add("stats_monetization:"+string(id),
			st.Stats.MonetizationRevenue, res.MonetizationRevenue)
	}

	st.DailyHistory = append(st.DailyHistory, rec)
	st.Stats.TotalUnits = e.guard.Add("stats_units:"+string(id), st.Stats.TotalUnits, rec.Units)
	st.Stats.TotalRevenue = e.guard.Add("stats_revenue:"+string(id), st.Stats.TotalRevenue, rec.Revenue)
	st.Stats.DaysTracked++
	if rec.Units > st.Stats.PeakDailyUnits {
		st.Stats.PeakDailyUnits = rec.Units
	}

	if d.UpdatePoints > 0 && st.PendingUpdate != nil {
		completed, recoveredPts := e.applyUpdatePoints(&st, d.UpdatePoints)
		res.UpdateCompleted = completed
		if recoveredPts > 0 {
			res.Recovered = true
		}
	}

	// Settle minute interpolation for this date: the day record is now
	// authoritative and later minute calls must pay nothing more.
	st.MinuteDate = d.Date
	st.MinuteProjectedUnits = rec.Units
	st.MinuteProjectedRevenue = rec.Revenue
	st.MinuteUnitsPaid = rec.Units
	st.MinuteRevenuePaid = rec.Revenue

	st, err = e.Titles.Put(ctx, st)
	if err != nil {
		return DayResult{}, err
	}

	res.Units = rec.Units
	res.Revenue = rec.Revenue
	res.Interest = st.PlayerInterest
	res.LifecycleProgress = st.LifecycleProgress
	res.State = st

	e.record(telemetry.EventDayAccrued, telemetry.EventMetadata{
		"title_id": string(id), "date": d.Date.String(),
		"units": rec.Units, "revenue": rec.Revenue,
	})
	return res, nil
}

// activePlayers estimates the engaged pool from lifetime registrations.
func (e *Engine) activePlayers(st *title.State) int64 {
	base := float64(st.TotalRegisteredPlayers) * e.cfg.Economy.ActivePlayerRatio
	return int64(base * lifecycle.ActivePlayerMultiplier(st.PlayerInterest))
}

func (e *Engine) nextFloat() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Float64()
}

func (e *Engine) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if e.Events == nil {
		return
	}
	if err := e.Events.RecordEvent(t, md); err != nil {
		e.log.Warn("telemetry event dropped", "type", string(t), "err", err)
	}
}

// mulPrice multiplies units by price, saturating at the counter ceiling.
func mulPrice(units, price int64) int64 {
	if units <= 0 || price <= 0 {
		return 0
	}
	if units > counter.Ceiling/price {
		return counter.Ceiling
	}
	return units * price
}
