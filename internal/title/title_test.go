package title

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1836047093/YCJY-sub002/internal/gamedate"
)

func TestNormalize(t *testing.T) {
	st := State{PlayerInterest: 150, LifecycleProgress: -4, DaysSinceLaunch: -1}
	st.Normalize()

	assert.Equal(t, 100, st.PlayerInterest)
	assert.Equal(t, 0.0, st.LifecycleProgress)
	assert.Equal(t, 0, st.DaysSinceLaunch)
	assert.Equal(t, 1.0, st.CumulativeSalesMultiplier)
	assert.NotNil(t, st.MonetizationRevenueByItem)
}

func TestHasRecordFor(t *testing.T) {
	d1 := gamedate.New(2024, 1, 1)
	d2 := d1.AddDays(1)
	st := State{DailyHistory: []DayRecord{{Date: d1, Units: 10}, {Date: d2, Units: 8}}}

	assert.True(t, st.HasRecordFor(d1))
	assert.True(t, st.HasRecordFor(d2))
	assert.False(t, st.HasRecordFor(d2.AddDays(1)))
	assert.False(t, (&State{}).HasRecordFor(d1))
}

func TestLastRecord(t *testing.T) {
	st := State{}
	_, ok := st.LastRecord()
	assert.False(t, ok)

	st.DailyHistory = []DayRecord{{Units: 1}, {Units: 2}}
	last, ok := st.LastRecord()
	require.True(t, ok)
	assert.Equal(t, int64(2), last.Units)
}

func TestTrimHistory(t *testing.T) {
	st := State{Stats: Statistics{TotalUnits: 5000}}
	start := gamedate.New(2024, 1, 1)
	for i := 0; i < 40; i++ {
		st.DailyHistory = append(st.DailyHistory, DayRecord{Date: start.AddDays(i), Units: int64(i)})
	}

	st.TrimHistory(30)
	require.Len(t, st.DailyHistory, 30)
	assert.Equal(t, start.AddDays(10), st.DailyHistory[0].Date)
	assert.Equal(t, start.AddDays(39), st.DailyHistory[29].Date)
	// Lifetime totals are untouched by retention.
	assert.Equal(t, int64(5000), st.Stats.TotalUnits)

	st.TrimHistory(0) // no-op
	assert.Len(t, st.DailyHistory, 30)
}

func TestUpdateTaskAddProgress(t *testing.T) {
	task := UpdateTask{RequiredPoints: 300}

	assert.False(t, task.AddProgress(299))
	assert.False(t, task.AddProgress(-50)) // ignored
	assert.Equal(t, 299, task.CurrentPoints)
	assert.True(t, task.AddProgress(1))
}

func TestMemoryRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	_, ok, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	st, err := repo.Put(ctx, State{ID: "g1", Category: CategoryRetail})
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.CumulativeSalesMultiplier) // normalized on the way in

	got, ok, err := repo.Get(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ID("g1"), got.ID)

	require.NoError(t, repo.Seed(ctx, []State{{ID: "g2"}, {ID: "g0"}}))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ID("g0"), list[0].ID) // sorted by ID

	deleted, err := repo.Delete(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, deleted)
}
