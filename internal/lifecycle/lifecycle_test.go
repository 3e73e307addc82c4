package lifecycle

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1836047093/YCJY-sub002/internal/config"
)

func newTestTracker() *Tracker {
	cfg := config.Default()
	return NewTracker(cfg.Lifecycle, cfg.Economy.DecayPeriodDays,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(0, 365))
	assert.InDelta(t, 50.0, Progress(182, 365), 0.5)
	assert.Equal(t, 100.0, Progress(400, 365))
	assert.Equal(t, 0.0, Progress(-3, 365))
}

func TestPhaseFor(t *testing.T) {
	tr := newTestTracker()

	assert.Equal(t, PhaseGrowth, tr.PhaseFor(0))
	assert.Equal(t, PhaseGrowth, tr.PhaseFor(29.9))
	assert.Equal(t, PhaseMaturity, tr.PhaseFor(30))
	assert.Equal(t, PhaseDecline, tr.PhaseFor(70))
	assert.Equal(t, PhaseEndOfLife, tr.PhaseFor(90))
	assert.Equal(t, PhaseEndOfLife, tr.PhaseFor(100))
}

// Advancing in 30-day steps must fire exactly one decay, at the 90-day
// boundary, and none again until 180.
func TestTick_DecayCadence(t *testing.T) {
	tr := newTestTracker()

	interest := 100
	lastDecay := 0
	fires := 0
	for _, day := range []int{0, 30, 60, 90, 120, 150} {
		r := tr.Tick(day, 365, interest, lastDecay)
		interest = r.Interest
		lastDecay = r.LastDecayDay
		if r.Decayed {
			fires++
			assert.Equal(t, 90, r.LastDecayDay)
		}
	}
	assert.Equal(t, 1, fires)
	assert.Equal(t, 92, interest) // growth phase, -8
}

func TestTick_SkippedPeriodsFireOnce(t *testing.T) {
	tr := newTestTracker()

	// Jumping straight to day 300 crosses three boundaries but decays once,
	// and the boundary snaps to 270.
	r := tr.Tick(300, 365, 100, 0)
	assert.True(t, r.Decayed)
	assert.Equal(t, 270, r.LastDecayDay)
	assert.Equal(t, 75, r.Interest) // 82% progress, decline phase, -25
}

func TestTick_DecayPointsByPhase(t *testing.T) {
	tr := newTestTracker()

	cases := []struct {
		day  int
		want int
	}{
		{90, 92},  // 24.7% growth: -8
		{180, 85}, // 49.3% maturity: -15
		{270, 75}, // 74.0% decline: -25
		{360, 65}, // 98.6% end of life: -35
	}
	for _, c := range cases {
		r := tr.Tick(c.day, 365, 100, c.day-90)
		assert.True(t, r.Decayed, "day %d", c.day)
		assert.Equal(t, c.want, r.Interest, "day %d", c.day)
	}
}

func TestTick_InterestFloorsAtZero(t *testing.T) {
	tr := newTestTracker()

	r := tr.Tick(360, 365, 10, 180)
	assert.True(t, r.Decayed)
	assert.Equal(t, 0, r.Interest)
}

func TestRecover(t *testing.T) {
	tr := newTestTracker()

	got, pts := tr.Recover(10, 40) // growth: +25
	assert.Equal(t, 25, pts)
	assert.Equal(t, 65, got)

	got, pts = tr.Recover(95, 40) // end of life: nothing
	assert.Equal(t, 0, pts)
	assert.Equal(t, 40, got)

	got, _ = tr.Recover(10, 90) // capped at 100
	assert.Equal(t, 100, got)
}

func TestAIRecoveryProbability(t *testing.T) {
	tr := newTestTracker()

	assert.Equal(t, 0.0, tr.AIRecoveryProbability(50))
	assert.Equal(t, 0.0, tr.AIRecoveryProbability(80))
	assert.InDelta(t, 0.35, tr.AIRecoveryProbability(0), 1e-9)
	assert.InDelta(t, 0.175, tr.AIRecoveryProbability(25), 1e-9)
}

func TestActivePlayerMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, ActivePlayerMultiplier(100))
	assert.Equal(t, 1.0, ActivePlayerMultiplier(70))
	assert.Equal(t, 0.7, ActivePlayerMultiplier(69))
	assert.Equal(t, 0.7, ActivePlayerMultiplier(50))
	assert.Equal(t, 0.4, ActivePlayerMultiplier(49))
	assert.Equal(t, 0.4, ActivePlayerMultiplier(30))
	assert.Equal(t, 0.2, ActivePlayerMultiplier(29))
	assert.Equal(t, 0.2, ActivePlayerMultiplier(0))
}
