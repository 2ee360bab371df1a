package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTrialBuilt    EventType = "trial_built"
	EventTrialRejected EventType = "trial_rejected"
	EventTrialMeasured EventType = "trial_measured"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TrialKey  string    `json:"trial_key"`
}

// TrialEvent reports the outcome of building or measuring a trial.
type TrialEvent struct {
	EventBase
	ItemNumber string `json:"item_number"`
	Fixations  int    `json:"fixations"`
	Excluded   int    `json:"excluded"`
	Saccades   int    `json:"saccades"`
	Trial      *Trial `json:"-"`
	Err        error  `json:"-"`
}

// LifecycleHooks defines callbacks for analyzer observability.
type LifecycleHooks struct {
	OnTrialBuilt    func(context.Context, *TrialEvent)
	OnTrialRejected func(context.Context, *TrialEvent)
	OnTrialMeasured func(context.Context, *TrialEvent)
}
