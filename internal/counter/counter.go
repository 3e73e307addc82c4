// Package counter guards the monotonically growing int64 counters of the
// economy (lifetime units, revenue, registered players) against overflow and
// corrupted inputs. Counters saturate at Ceiling instead of wrapping.
package counter

import (
	"log/slog"
	"math"

	"github.com/1836047093/YCJY-sub002/internal/telemetry"
)

// Ceiling is the saturation point for guarded counters, kept well below
// MaxInt64 so downstream sums of a handful of counters cannot wrap either.
const Ceiling = math.MaxInt64 / 2

// Guard applies the counter rules, logs when it has to intervene, and
// reports interventions to the event log when one is attached.
type Guard struct {
	log    *slog.Logger
	events telemetry.Repository
}

func NewGuard(logger *slog.Logger, events telemetry.Repository) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{log: logger, events: events}
}

// Add returns current + increment under the counter rules:
// a negative current value is treated as corrupted state and repaired to
// max(increment, 0); a negative increment is ignored; the sum saturates at
// Ceiling. Every intervention emits a diagnostic log tagged with name.
func (g *Guard) Add(name string, current, increment int64) int64 {
	if current < 0 {
		repaired := increment
		if repaired < 0 {
			repaired = 0
		}
		g.log.Warn("counter repaired from negative state",
			"counter", name, "was", current, "now", repaired)
		g.record(telemetry.EventStateRepaired, telemetry.EventMetadata{
			"counter": name, "was": current, "now": repaired,
		})
		return repaired
	}
	if increment < 0 {
		g.log.Warn("negative counter increment ignored",
			"counter", name, "increment", increment)
		return current
	}
	if current > Ceiling-increment {
		g.log.Warn("counter saturated at ceiling",
			"counter", name, "current", current, "increment", increment)
		g.record(telemetry.EventCounterClamped, telemetry.EventMetadata{
			"counter": name, "current": current, "increment": increment,
		})
		return Ceiling
	}
	return current + increment
}

func (g *Guard) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if g.events == nil {
		return
	}
	if err := g.events.RecordEvent(t, md); err != nil {
		g.log.Warn("telemetry event dropped", "type", string(t), "err", err)
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat bounds v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
