// Package lifecycle models the interest state machine of an online title:
// lifecycle progress over the nominal lifespan, periodic interest decay that
// grows harsher in later phases, and recovery driven by content updates.
package lifecycle

import (
	"log/slog"

	"github.com/1836047093/YCJY-sub002/internal/config"
	"github.com/1836047093/YCJY-sub002/internal/counter"
)

type Phase string

const (
	PhaseGrowth    Phase = "growth"
	PhaseMaturity  Phase = "maturity"
	PhaseDecline   Phase = "decline"
	PhaseEndOfLife Phase = "end_of_life"
)

// Tracker evaluates decay and recovery against the tuned tables.
type Tracker struct {
	cfg        config.Lifecycle
	periodDays int
	log        *slog.Logger
}

func NewTracker(cfg config.Lifecycle, decayPeriodDays int, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if decayPeriodDays <= 0 {
		decayPeriodDays = 90
	}
	return &Tracker{cfg: cfg, periodDays: decayPeriodDays, log: logger}
}

// Progress maps days since launch onto lifecycle percent, clamped to [0,100].
func Progress(daysSinceLaunch, lifespanDays int) float64 {
	if lifespanDays <= 0 {
		return 0
	}
	p := float64(daysSinceLaunch) / float64(lifespanDays) * 100
	return counter.ClampFloat(p, 0, 100)
}

// PhaseFor buckets lifecycle percent into a phase.
func (t *Tracker) PhaseFor(progressPct float64) Phase {
	switch {
	case progressPct < t.cfg.GrowthBelowPct:
		return PhaseGrowth
	case progressPct < t.cfg.MaturityBelowPct:
		return PhaseMaturity
	case progressPct < t.cfg.DeclineBelowPct:
		return PhaseDecline
	default:
		return PhaseEndOfLife
	}
}

// TickResult is the lifecycle outcome of one accrued day.
type TickResult struct {
	Progress     float64
	Phase        Phase
	Interest     int
	LastDecayDay int
	Decayed      bool
}

// Tick advances lifecycle progress and fires interest decay when a decay
// period boundary has been crossed since the last firing. At most one decay
// fires per call regardless of how many days were skipped; lastDecayDay snaps
// to the boundary so missed periods do not stack retroactively.
func (t *Tracker) Tick(daysSinceLaunch, lifespanDays, interest, lastDecayDay int) TickResult {
	r := TickResult{
		Progress:     Progress(daysSinceLaunch, lifespanDays),
		Interest:     clampInterest(interest),
		LastDecayDay: lastDecayDay,
	}
	r.Phase = t.PhaseFor(r.Progress)

	if daysSinceLaunch/t.periodDays > lastDecayDay/t.periodDays {
		pts := t.decayPoints(r.Phase)
		r.Interest = clampInterest(r.Interest - pts)
		r.LastDecayDay = daysSinceLaunch / t.periodDays * t.periodDays
		r.Decayed = true
		t.log.Debug("interest decayed",
			"phase", string(r.Phase), "points", pts, "interest", r.Interest)
	}
	return r
}

// Recover applies the phase-dependent recovery points a completed content
// update grants. End-of-life titles recover nothing.
func (t *Tracker) Recover(progressPct float64, interest int) (newInterest, points int) {
	points = t.recoveryPoints(t.PhaseFor(progressPct))
	return clampInterest(interest + points), points
}

// AIRecoveryProbability is the chance of a spontaneous recovery roll
// succeeding for an AI-run title. Zero at interest >= 50, scaling linearly to
// the configured maximum at interest 0.
func (t *Tracker) AIRecoveryProbability(interest int) float64 {
	if interest >= 50 {
		return 0
	}
	return float64(50-clampInterest(interest)) / 50 * t.cfg.AIRecoveryMaxProbability
}

func (t *Tracker) decayPoints(p Phase) int {
	switch p {
	case PhaseGrowth:
		return t.cfg.DecayPoints.Growth
	case PhaseMaturity:
		return t.cfg.DecayPoints.Maturity
	case PhaseDecline:
		return t.cfg.DecayPoints.Decline
	default:
		return t.cfg.DecayPoints.EndOfLife
	}
}

func (t *Tracker) recoveryPoints(p Phase) int {
	switch p {
	case PhaseGrowth:
		return t.cfg.RecoveryPoints.Growth
	case PhaseMaturity:
		return t.cfg.RecoveryPoints.Maturity
	case PhaseDecline:
		return t.cfg.RecoveryPoints.Decline
	default:
		return t.cfg.RecoveryPoints.EndOfLife
	}
}

// ActivePlayerMultiplier maps interest onto the fraction of the nominal
// active-player pool that still shows up.
func ActivePlayerMultiplier(interest int) float64 {
	switch {
	case interest >= 70:
		return 1.0
	case interest >= 50:
		return 0.7
	case interest >= 30:
		return 0.4
	default:
		return 0.2
	}
}

func clampInterest(v int) int {
	return int(counter.Clamp(int64(v), 0, 100))
}
