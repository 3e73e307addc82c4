package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period           string            `json:"period"`
	EventCounts      map[EventType]int `json:"event_counts"`
	DaysAccrued      int               `json:"days_accrued"`
	Decays           int               `json:"decays"`
	Recoveries       int               `json:"recoveries"`
	UpdatesCompleted int               `json:"updates_completed"`
	UnitsByTitle     map[string]int64  `json:"units_by_title"`
	RevenueByTitle   map[string]int64  `json:"revenue_by_title"`
}

// CalculateStats computes balance stats from events
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:         since.Format("2006-01-02"),
		EventCounts:    make(map[EventType]int),
		UnitsByTitle:   make(map[string]int64),
		RevenueByTitle: make(map[string]int64),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventDayAccrued:
			stats.DaysAccrued++
			id, _ := metadata["title_id"].(string)
			if units, ok := metadata["units"].(float64); ok {
				stats.UnitsByTitle[id] += int64(units)
			}
			if rev, ok := metadata["revenue"].(float64); ok {
				stats.RevenueByTitle[id] += int64(rev)
			}
		case EventInterestDecayed:
			stats.Decays++
		case EventInterestRecovered:
			stats.Recoveries++
		case EventUpdateCompleted:
			stats.UpdatesCompleted++
		}
	}

	return stats, nil
}
