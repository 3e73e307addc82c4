package accrual

import (
	"context"
	"fmt"
	"math"

	"github.com/1836047093/YCJY-sub002/internal/counter"
	"github.com/1836047093/YCJY-sub002/internal/telemetry"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

// StartUpdate opens a content-update task over the named features. The sales
// multiplier the update will grant is fixed now, from the feature count, and
// applied only when the task completes.
func (e *Engine) StartUpdate(ctx context.Context, id title.ID, features []string) (title.UpdateTask, error) {
	if len(features) == 0 {
		return title.UpdateTask{}, fmt.Errorf("start update %s: at least one feature is required", id)
	}
	st, ok, err := e.Titles.Get(ctx, id)
	if err != nil {
		return title.UpdateTask{}, err
	}
	if !ok {
		return title.UpdateTask{}, fmt.Errorf("start update %s: %w", id, title.ErrNotFound)
	}
	if st.PendingUpdate != nil {
		return title.UpdateTask{}, fmt.Errorf("start update %s: %w", id, ErrUpdateInProgress)
	}

	n := len(features)
	mult := 1 + e.cfg.Update.MultiplierPerFeature*float64(n)
	if max := 1 + e.cfg.Update.MaxMultiplierPerUpdate; mult > max {
		mult = max
	}
	task := title.UpdateTask{
		Features:       append([]string(nil), features...),
		RequiredPoints: e.cfg.Update.PointsPerFeature * n,
		Multiplier:     mult,
	}
	st.PendingUpdate = &task
	if _, err := e.Titles.Put(ctx, st); err != nil {
		return title.UpdateTask{}, err
	}
	e.record(telemetry.EventUpdateStarted, telemetry.EventMetadata{
		"title_id": string(id), "features": task.Features,
		"required_points": task.RequiredPoints,
	})
	return task, nil
}

// UpdateProgress reports the state of an update task after adding points.
type UpdateProgress struct {
	Completed         bool
	RemainingPoints   int
	InterestRecovered int
}

// AddUpdateProgress adds work points to the pending update and, on
// completion, applies the deferred multiplier and interest recovery.
func (e *Engine) AddUpdateProgress(ctx context.Context, id title.ID, points int) (UpdateProgress, error) {
	st, ok, err := e.Titles.Get(ctx, id)
	if err != nil {
		return UpdateProgress{}, err
	}
	if !ok {
		return UpdateProgress{}, fmt.Errorf("update progress %s: %w", id, title.ErrNotFound)
	}
	if st.PendingUpdate == nil {
		return UpdateProgress{}, fmt.Errorf("update progress %s: %w", id, ErrNoUpdate)
	}

	completed, recovered := e.applyUpdatePoints(&st, points)
	prog := UpdateProgress{Completed: completed, InterestRecovered: recovered}
	if !completed {
		prog.RemainingPoints = st.PendingUpdate.RequiredPoints - st.PendingUpdate.CurrentPoints
	}
	if _, err := e.Titles.Put(ctx, st); err != nil {
		return UpdateProgress{}, err
	}
	return prog, nil
}

// applyUpdatePoints advances the pending task and settles completion: scale
// history and lifetime units by the stored ratio, fold it into the cumulative
// multiplier, and grant phase-dependent interest recovery. The multiplier is
// applied exactly once; the task is gone afterwards.
func (e *Engine) applyUpdatePoints(st *title.State, points int) (completed bool, recovered int) {
	task := st.PendingUpdate
	if task == nil || !task.AddProgress(points) {
		return false, 0
	}

	mult := task.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := range st.DailyHistory {
		st.DailyHistory[i].Units = scale(st.DailyHistory[i].Units, mult)
		if st.Category == title.CategoryRetail {
			st.DailyHistory[i].Revenue = mulPrice(st.DailyHistory[i].Units, st.UnitPrice)
		}
	}
	st.Stats.TotalUnits = scale(st.Stats.TotalUnits, mult)
	if st.Category == title.CategoryRetail {
		st.Stats.TotalRevenue = scale(st.Stats.TotalRevenue, mult)
	}
	st.Stats.PeakDailyUnits = scale(st.Stats.PeakDailyUnits, mult)

	st.CumulativeSalesMultiplier *= mult
	st.UpdateCount++
	st.PendingUpdate = nil

	if st.Category == title.CategoryOnline {
		newInterest, pts := e.life.Recover(st.LifecycleProgress, st.PlayerInterest)
		recovered = pts
		st.PlayerInterest = newInterest
		if pts > 0 {
			e.record(telemetry.EventInterestRecovered, telemetry.EventMetadata{
				"title_id": string(st.ID), "points": pts,
				"interest": newInterest, "reason": "content_update",
			})
		}
	}
	e.record(telemetry.EventUpdateCompleted, telemetry.EventMetadata{
		"title_id": string(st.ID), "multiplier": mult,
		"update_count": st.UpdateCount,
	})
	return true, recovered
}

// scale multiplies a counter by a float ratio, saturating at the ceiling.
func scale(v int64, mult float64) int64 {
	if v <= 0 {
		return v
	}
	scaled := math.Round(float64(v) * mult)
	if scaled >= float64(counter.Ceiling) {
		return counter.Ceiling
	}
	return int64(scaled)
}
