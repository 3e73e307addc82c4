package title

import (
	"errors"

	"github.com/1836047093/YCJY-sub002/internal/gamedate"
)

var ErrNotFound = errors.New("title not found")

type ID string

// Category splits titles into the two economic models: retail titles sell
// copies, online titles register players and monetize items.
type Category string

const (
	CategoryRetail Category = "retail"
	CategoryOnline Category = "online"
)

// DayRecord is one accrued day. Units are copies sold for retail titles and
// new registrations for online titles. Revenue is the day's total take in the
// smallest currency unit.
type DayRecord struct {
	Date    gamedate.Date `json:"date"`
	Units   int64         `json:"units"`
	Revenue int64         `json:"revenue"`
}

// Statistics are lifetime totals. They survive history truncation, so they
// are the authoritative aggregate even when DailyHistory only holds the
// retained tail.
type Statistics struct {
	TotalUnits          int64 `json:"total_units"`
	TotalRevenue        int64 `json:"total_revenue"`
	MonetizationRevenue int64 `json:"monetization_revenue"`
	DaysTracked         int   `json:"days_tracked"`
	PeakDailyUnits      int64 `json:"peak_daily_units"`
}

// UpdateTask is an in-progress content update. Features names the planned
// work; the sales multiplier is fixed when the task starts and applied only
// on completion.
type UpdateTask struct {
	Features       []string `json:"features"`
	RequiredPoints int      `json:"required_points"`
	CurrentPoints  int      `json:"current_points"`
	Multiplier     float64  `json:"multiplier"`
}

// AddProgress adds work points and reports whether the task is now complete.
func (u *UpdateTask) AddProgress(points int) bool {
	if points > 0 {
		u.CurrentPoints += points
	}
	return u.CurrentPoints >= u.RequiredPoints
}

// State is the full economic state of one title.
type State struct {
	ID       ID       `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`

	ReleaseDate   gamedate.Date `json:"release_date"`
	ReleaseMinute int           `json:"release_minute"`
	UnitPrice     int64         `json:"unit_price"`

	IsActive     bool `json:"is_active"`
	AIControlled bool `json:"ai_controlled"`

	DailyHistory []DayRecord `json:"daily_history"`
	Stats        Statistics  `json:"stats"`

	// Online-title lifecycle state.
	TotalRegisteredPlayers int64   `json:"total_registered_players"`
	PlayerInterest         int     `json:"player_interest"`
	LifecycleProgress      float64 `json:"lifecycle_progress"`
	DaysSinceLaunch        int     `json:"days_since_launch"`
	LastInterestDecayDay   int     `json:"last_interest_decay_day"`

	// Monetization revenue accumulated per item ID.
	MonetizationRevenueByItem map[string]int64 `json:"monetization_revenue_by_item,omitempty"`

	// Content updates.
	PendingUpdate            *UpdateTask `json:"pending_update,omitempty"`
	UpdateCount              int         `json:"update_count"`
	CumulativeSalesMultiplier float64    `json:"cumulative_sales_multiplier"`

	// Minute-interpolation bookkeeping for the current day.
	MinuteDate             gamedate.Date `json:"minute_date"`
	MinuteProjectedUnits   int64         `json:"minute_projected_units"`
	MinuteProjectedRevenue int64         `json:"minute_projected_revenue"`
	MinuteUnitsPaid        int64         `json:"minute_units_paid"`
	MinuteRevenuePaid      int64         `json:"minute_revenue_paid"`
}

// Normalize repairs derivable fields after load or mutation. Call it any
// time state crosses a package boundary.
func (s *State) Normalize() {
	if s.CumulativeSalesMultiplier <= 0 {
		s.CumulativeSalesMultiplier = 1
	}
	if s.PlayerInterest < 0 {
		s.PlayerInterest = 0
	}
	if s.PlayerInterest > 100 {
		s.PlayerInterest = 100
	}
	if s.LifecycleProgress < 0 {
		s.LifecycleProgress = 0
	}
	if s.LifecycleProgress > 100 {
		s.LifecycleProgress = 100
	}
	if s.DaysSinceLaunch < 0 {
		s.DaysSinceLaunch = 0
	}
	if s.ReleaseMinute < 0 || s.ReleaseMinute >= gamedate.MinutesPerDay {
		s.ReleaseMinute = gamedate.ClampMinute(s.ReleaseMinute)
	}
	if s.MonetizationRevenueByItem == nil {
		s.MonetizationRevenueByItem = map[string]int64{}
	}
}

// LastRecord returns the most recent accrued day, if any.
func (s *State) LastRecord() (DayRecord, bool) {
	if len(s.DailyHistory) == 0 {
		return DayRecord{}, false
	}
	return s.DailyHistory[len(s.DailyHistory)-1], true
}

// HasRecordFor reports whether a day record already exists for date.
// History is appended in date order, so scanning back from the tail exits
// early for the common same-day probe.
func (s *State) HasRecordFor(date gamedate.Date) bool {
	for i := len(s.DailyHistory) - 1; i >= 0; i-- {
		if s.DailyHistory[i].Date.Equal(date) {
			return true
		}
		if s.DailyHistory[i].Date.Before(date) {
			return false
		}
	}
	return false
}

// TrimHistory drops all but the newest keep records. Statistics are
// untouched; they already hold lifetime totals.
func (s *State) TrimHistory(keep int) {
	if keep <= 0 || len(s.DailyHistory) <= keep {
		return
	}
	tail := s.DailyHistory[len(s.DailyHistory)-keep:]
	s.DailyHistory = append([]DayRecord(nil), tail...)
}
