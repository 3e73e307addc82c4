package store

import (
	"encoding/json"
	"math"

	"github.com/1836047093/YCJY-sub002/internal/config"
	"github.com/1836047093/YCJY-sub002/internal/gamedate"
	"github.com/1836047093/YCJY-sub002/internal/lifecycle"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

// v1DayRecord tolerates both layouts: version 1 stored an ordinal day index
// counted from release instead of a calendar date.
type v1DayRecord struct {
	Day     int           `json:"day"`
	Date    gamedate.Date `json:"date"`
	Units   int64         `json:"units"`
	Revenue int64         `json:"revenue"`
}

// v1Title shadows the fields whose layout changed between versions. The
// embedded State picks up everything that kept its shape.
type v1Title struct {
	title.State
	History       []v1DayRecord `json:"daily_history"`
	ActivePlayers int64         `json:"active_players"`
}

// decodeTitle unmarshals one stored title, upgrading from older schemas.
func decodeTitle(raw json.RawMessage, schemaVersion int, cfg *config.Config) (title.State, error) {
	if schemaVersion >= SchemaVersion {
		var st title.State
		if err := json.Unmarshal(raw, &st); err != nil {
			return title.State{}, err
		}
		return st, nil
	}

	var old v1Title
	if err := json.Unmarshal(raw, &old); err != nil {
		return title.State{}, err
	}
	return migrateV1(old, cfg), nil
}

// migrateV1 upgrades a version-1 record:
//
//   - Daily-history dates stored as ordinal day indices are rewritten to
//     calendar dates anchored on the release date.
//   - Online titles saved before registrations were tracked carry only an
//     active-player count; the registered total is back-computed by replaying
//     the interest decay the title would have gone through and inverting the
//     active-player formula.
func migrateV1(old v1Title, cfg *config.Config) title.State {
	st := old.State

	st.DailyHistory = make([]title.DayRecord, 0, len(old.History))
	for _, r := range old.History {
		date := r.Date
		if date.IsZero() {
			date = st.ReleaseDate.AddDays(r.Day)
		}
		st.DailyHistory = append(st.DailyHistory, title.DayRecord{
			Date: date, Units: r.Units, Revenue: r.Revenue,
		})
	}

	// Version 1 predates lifetime statistics; rebuild them from whatever
	// history survived.
	if st.Stats.TotalUnits == 0 && len(st.DailyHistory) > 0 {
		for _, r := range st.DailyHistory {
			st.Stats.TotalUnits += r.Units
			st.Stats.TotalRevenue += r.Revenue
			if r.Units > st.Stats.PeakDailyUnits {
				st.Stats.PeakDailyUnits = r.Units
			}
		}
		st.Stats.DaysTracked = len(st.DailyHistory)
	}

	if st.Category == title.CategoryOnline &&
		st.TotalRegisteredPlayers == 0 && old.ActivePlayers > 0 {
		interest := replayInterestDecay(st.DaysSinceLaunch, cfg)
		if st.PlayerInterest == 0 {
			st.PlayerInterest = interest
		}
		period := cfg.Economy.DecayPeriodDays
		st.LastInterestDecayDay = st.DaysSinceLaunch / period * period

		ratio := cfg.Economy.ActivePlayerRatio * lifecycle.ActivePlayerMultiplier(st.PlayerInterest)
		if ratio > 0 {
			st.TotalRegisteredPlayers = int64(math.Round(float64(old.ActivePlayers) / ratio))
		}
	}
	return st
}

// replayInterestDecay simulates the decay a title launched at full interest
// would have accumulated over its life so far.
func replayInterestDecay(daysSinceLaunch int, cfg *config.Config) int {
	tracker := lifecycle.NewTracker(cfg.Lifecycle, cfg.Economy.DecayPeriodDays, nil)
	interest := 100
	lastDecay := 0
	for day := cfg.Economy.DecayPeriodDays; day <= daysSinceLaunch; day += cfg.Economy.DecayPeriodDays {
		r := tracker.Tick(day, cfg.Economy.LifespanDays, interest, lastDecay)
		interest = r.Interest
		lastDecay = r.LastDecayDay
	}
	return interest
}
