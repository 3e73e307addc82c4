package accrual

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1836047093/YCJY-sub002/internal/telemetry"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

func TestStartUpdate(t *testing.T) {
	e, _, _ := newEngineForTest()
	ctx := context.Background()
	releaseForTest(t, e, "g1", title.CategoryRetail, 2999)

	task, err := e.StartUpdate(ctx, "g1", []string{"raid", "crafting"})
	require.NoError(t, err)
	assert.Equal(t, []string{"raid", "crafting"}, task.Features)
	assert.Equal(t, 300, task.RequiredPoints) // 150 per feature
	assert.InDelta(t, 1.10, task.Multiplier, 1e-9)

	// The named features round-trip on the stored task.
	st, ok, err := e.Titles.Get(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, st.PendingUpdate)
	assert.Equal(t, []string{"raid", "crafting"}, st.PendingUpdate.Features)

	_, err = e.StartUpdate(ctx, "g1", []string{"balance"})
	assert.ErrorIs(t, err, ErrUpdateInProgress)

	_, err = e.StartUpdate(ctx, "ghost", []string{"balance"})
	assert.ErrorIs(t, err, title.ErrNotFound)

	_, err = e.StartUpdate(ctx, "g1", nil)
	assert.Error(t, err)
}

func TestStartUpdate_MultiplierCapped(t *testing.T) {
	e, _, _ := newEngineForTest()
	ctx := context.Background()
	releaseForTest(t, e, "g1", title.CategoryRetail, 2999)

	features := make([]string, 10)
	for i := range features {
		features[i] = fmt.Sprintf("feature-%d", i)
	}
	task, err := e.StartUpdate(ctx, "g1", features)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, task.Multiplier, 1e-9)
}

func TestUpdateCompletion_AppliesMultiplierOnce(t *testing.T) {
	e, _, _ := newEngineForTest()
	ctx := context.Background()
	releaseForTest(t, e, "g1", title.CategoryRetail, 2999)

	var dayUnits []int64
	for day := 0; day < 3; day++ {
		res, err := e.AccrueDay(ctx, "g1", DayContext{Date: launch.AddDays(day), Rating: f(8.0)})
		require.NoError(t, err)
		dayUnits = append(dayUnits, res.Units)
	}

	_, err := e.StartUpdate(ctx, "g1", []string{"raid", "crafting"}) // x1.10
	require.NoError(t, err)

	prog, err := e.AddUpdateProgress(ctx, "g1", 299)
	require.NoError(t, err)
	assert.False(t, prog.Completed)
	assert.Equal(t, 1, prog.RemainingPoints)

	prog, err = e.AddUpdateProgress(ctx, "g1", 1)
	require.NoError(t, err)
	assert.True(t, prog.Completed)

	st, ok, err := e.Titles.Get(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, st.PendingUpdate)
	assert.Equal(t, 1, st.UpdateCount)
	assert.InDelta(t, 1.10, st.CumulativeSalesMultiplier, 1e-9)

	// History scaled exactly once, and retail revenue rederived from units.
	for i, rec := range st.DailyHistory {
		want := int64(float64(dayUnits[i])*1.10 + 0.5)
		assert.Equal(t, want, rec.Units, "day %d", i)
		assert.Equal(t, rec.Units*2999, rec.Revenue, "day %d", i)
	}

	// No pending task left to complete twice.
	_, err = e.AddUpdateProgress(ctx, "g1", 50)
	assert.ErrorIs(t, err, ErrNoUpdate)
}

func TestUpdateCompletion_RecoversOnlineInterest(t *testing.T) {
	e, repo, events := newEngineForTest()
	ctx := context.Background()

	st := title.State{
		ID:                "g1",
		Category:          title.CategoryOnline,
		ReleaseDate:       launch,
		IsActive:          true,
		PlayerInterest:    50,
		LifecycleProgress: 40, // maturity: +15 on recovery
	}
	require.NoError(t, repo.Seed(ctx, []title.State{st}))

	_, err := e.StartUpdate(ctx, "g1", []string{"raid"})
	require.NoError(t, err)
	prog, err := e.AddUpdateProgress(ctx, "g1", 150)
	require.NoError(t, err)
	require.True(t, prog.Completed)
	assert.Equal(t, 15, prog.InterestRecovered)

	got, _, err := e.Titles.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 65, got.PlayerInterest)

	evs, err := events.GetEvents(time.Time{}, []telemetry.EventType{telemetry.EventInterestRecovered})
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}

func TestAccrueDay_CompletesUpdateWithDailyPoints(t *testing.T) {
	e, _, _ := newEngineForTest()
	ctx := context.Background()
	releaseForTest(t, e, "g1", title.CategoryOnline, 0)

	_, err := e.AccrueDay(ctx, "g1", DayContext{Date: launch, Rating: f(8.0)})
	require.NoError(t, err)

	_, err = e.StartUpdate(ctx, "g1", []string{"raid"}) // 150 points
	require.NoError(t, err)

	res, err := e.AccrueDay(ctx, "g1", DayContext{
		Date: launch.AddDays(1), Rating: f(8.0), UpdatePoints: 150,
	})
	require.NoError(t, err)
	assert.True(t, res.UpdateCompleted)
	assert.Equal(t, 1, res.State.UpdateCount)
	assert.Nil(t, res.State.PendingUpdate)
}
