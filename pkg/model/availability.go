package model

import "time"

// Availability is one stored hour window of one user for one event. The UI
// only ever produces 1-hour windows, but the record permits longer spans;
// normalization walks them hour by hour.
type Availability struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	EventID   string    `json:"event_id" bson:"event_id" validate:"required,uuid4"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Timezone  string    `json:"timezone" bson:"timezone" validate:"required,timezone"`
}

type AvailabilitySlot struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// AvailabilitySave is a full-replace submission of a user's availability for
// one event. An empty Slots list clears the user's availability.
type AvailabilitySave struct {
	Timezone string             `json:"timezone" validate:"required,timezone"`
	Slots    []AvailabilitySlot `json:"slots" validate:"dive"`
}

// SaveResult reports what a save did. Changed=false means the submission
// matched the stored state and no write was performed.
type SaveResult struct {
	Changed bool `json:"changed"`
	Added   int  `json:"added"`
	Removed int  `json:"removed"`
}

// DefaultAvailability is one cell of a user's recurring weekly pattern,
// independent of any event. Day 0 is Sunday.
type DefaultAvailability struct {
	UserID string `json:"user_id,omitempty" bson:"user_id"`
	Day    int    `json:"day" bson:"day" validate:"min=0,max=6"`
	Hour   int    `json:"hour" bson:"hour" validate:"min=0,max=23"`
}

// SlotSuggestion is the selector's pick for a week: the winning grid cell,
// its 1-hour span and who can make it.
type SlotSuggestion struct {
	Key       string    `json:"key"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Headcount int       `json:"headcount"`
	UserIDs   []string  `json:"user_ids"`
}
