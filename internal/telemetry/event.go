package telemetry

import "time"

type EventType string

const (
	EventDayAccrued        EventType = "day_accrued"
	EventMinuteAccrued     EventType = "minute_accrued"
	EventTitleReleased     EventType = "title_released"
	EventInterestDecayed   EventType = "interest_decayed"
	EventInterestRecovered EventType = "interest_recovered"
	EventUpdateStarted     EventType = "update_started"
	EventUpdateCompleted   EventType = "update_completed"
	EventCounterClamped    EventType = "counter_clamped"
	EventStateRepaired     EventType = "state_repaired"
	EventStateMigrated     EventType = "state_migrated"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
