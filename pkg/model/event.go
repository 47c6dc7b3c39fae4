package model

import "time"

// Event is a gathering being scheduled. It starts unscheduled; once the
// creator locks in a time, both scheduled fields are set, IsLocked flips on
// and availability submissions are rejected until the event is unscheduled.
type Event struct {
	ID                 string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Name               string     `json:"name" bson:"name" validate:"required,min=1,max=255"`
	Description        string     `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	CreatedBy          string     `json:"created_by" bson:"created_by" validate:"omitempty,max=255"`
	CreatedAt          time.Time  `json:"created_at" bson:"created_at"`
	ScheduledStartTime *time.Time `json:"scheduled_start_time,omitempty" bson:"scheduled_start_time,omitempty"`
	ScheduledEndTime   *time.Time `json:"scheduled_end_time,omitempty" bson:"scheduled_end_time,omitempty"`
	IsLocked           bool       `json:"is_locked" bson:"is_locked"`
	DiscordEventID     string     `json:"discord_event_id,omitempty" bson:"discord_event_id,omitempty"`
}

// ScheduleRequest carries the creator's chosen slot. The suggestion endpoint
// is advisory only; any caller-supplied pair of instants is accepted as long
// as the end follows the start.
type ScheduleRequest struct {
	StartTime        time.Time `json:"start_time" validate:"required"`
	EndTime          time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	DiscordChannelID string    `json:"discord_channel_id,omitempty"`
}

type Participant struct {
	ID          string `json:"-" bson:"_id,omitempty"`
	EventID     string `json:"event_id" bson:"event_id"`
	UserID      string `json:"user_id" bson:"user_id"`
	DisplayName string `json:"display_name,omitempty" bson:"-"`
}
