package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/margauxflores/synquora/internal/discord"
	eventserrors "github.com/margauxflores/synquora/internal/events/errors"
	"github.com/margauxflores/synquora/internal/events/repository"
	"github.com/margauxflores/synquora/internal/events/validator"
	"github.com/margauxflores/synquora/internal/identity"
	"github.com/margauxflores/synquora/pkg/config"
	apperrors "github.com/margauxflores/synquora/pkg/errors"
	"github.com/margauxflores/synquora/pkg/kafka"
	"github.com/margauxflores/synquora/pkg/metrics"
	"github.com/margauxflores/synquora/pkg/model"
)

// DiscordGateway is the slice of the Discord client the state machine uses.
// A nil gateway means the integration is not configured and the external
// calls are skipped entirely.
type DiscordGateway interface {
	CreateScheduledEvent(ctx context.Context, opts discord.CreateEventOptions) (*discord.ScheduledEvent, error)
	DeleteScheduledEvent(ctx context.Context, eventID string) error
	PostAnnouncement(ctx context.Context, a discord.Announcement) error
	EventURL(discordEventID string) string
	ListVoiceChannels(ctx context.Context) ([]discord.Channel, error)
}

// LifecyclePublisher emits schedule/unschedule transitions onto the event bus.
// Publishing never gates the transition; failures are counted and logged.
type LifecyclePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type EventService interface {
	Create(ctx context.Context, callerID string, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error)
	Join(ctx context.Context, eventID, userID string) error
	Participants(ctx context.Context, eventID string) ([]*model.Participant, error)
	Schedule(ctx context.Context, eventID, callerID string, req *model.ScheduleRequest) (*model.Event, error)
	Unschedule(ctx context.Context, eventID, callerID string) (*model.Event, error)
	ListDiscordChannels(ctx context.Context) ([]discord.Channel, error)
}

type eventService struct {
	repo            repository.EventRepository
	participantRepo repository.ParticipantRepository
	validator       *validator.EventValidator
	discord         DiscordGateway
	identity        identity.Resolver
	publisher       LifecyclePublisher
	cfg             *config.Config
}

func NewEventService(
	repo repository.EventRepository,
	participantRepo repository.ParticipantRepository,
	validator *validator.EventValidator,
	discordGateway DiscordGateway,
	identityResolver identity.Resolver,
	publisher LifecyclePublisher,
	cfg *config.Config,
) EventService {
	return &eventService{
		repo:            repo,
		participantRepo: participantRepo,
		validator:       validator,
		discord:         discordGateway,
		identity:        identityResolver,
		publisher:       publisher,
		cfg:             cfg,
	}
}

func (s *eventService) Create(ctx context.Context, callerID string, event *model.Event) error {
	if callerID == "" {
		return apperrors.Unauthorized("Authentication required to create an event")
	}

	event.CreatedBy = callerID
	event.IsLocked = false
	event.ScheduledStartTime = nil
	event.ScheduledEndTime = nil
	event.DiscordEventID = ""

	if err := s.validator.Validate(event); err != nil {
		s.cfg.Log.Warn("Event validation failed", "error", err)
		return apperrors.Validation("Event validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to create event", "error", err)
		return apperrors.Internal("Failed to create event", err)
	}

	// The creator participates by definition.
	if err := s.participantRepo.Join(ctx, event.ID, callerID); err != nil {
		s.cfg.Log.Error("Failed to add creator as participant", "event_id", event.ID, "error", err)
		return apperrors.Internal("Failed to add creator as participant", err)
	}

	s.cfg.Log.Info("Event created successfully", "id", event.ID, "name", event.Name, "created_by", callerID)
	return nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(id, err, "Failed to retrieve event")
	}

	return event, nil
}

func (s *eventService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Event, int64, error) {
	var count int64
	var events []*model.Event
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count events", "error", errCount)
			errCount = apperrors.Internal("Failed to count events", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		events, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list events", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve events", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return events, count, nil
}

func (s *eventService) Join(ctx context.Context, eventID, userID string) error {
	if userID == "" {
		return apperrors.Unauthorized("Authentication required to join an event")
	}

	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return translateRepoError(eventID, err, "Failed to check event existence")
	}

	if err := s.participantRepo.Join(ctx, eventID, userID); err != nil {
		s.cfg.Log.Error("Failed to join event", "event_id", eventID, "user_id", userID, "error", err)
		return apperrors.Internal("Failed to join event", err)
	}

	s.cfg.Log.Info("User joined event", "event_id", eventID, "user_id", userID)
	return nil
}

func (s *eventService) Participants(ctx context.Context, eventID string) ([]*model.Participant, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return nil, translateRepoError(eventID, err, "Failed to check event existence")
	}

	participants, err := s.participantRepo.FindByEvent(ctx, eventID)
	if err != nil {
		s.cfg.Log.Error("Failed to list participants", "event_id", eventID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve participants", err)
	}

	userIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	names := s.identity.DisplayNames(ctx, userIDs)
	for _, p := range participants {
		p.DisplayName = names[p.UserID]
	}

	return participants, nil
}

// Schedule locks in a slot. The Discord side effects are best-effort: a
// failed create or announcement never blocks the transition, it only leaves
// DiscordEventID empty. The database write alone decides success.
func (s *eventService) Schedule(ctx context.Context, eventID, callerID string, req *model.ScheduleRequest) (*model.Event, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required to schedule an event")
	}

	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, translateRepoError(eventID, err, "Failed to retrieve event")
	}

	if event.CreatedBy != callerID {
		return nil, apperrors.Unauthorized("Only the event creator can schedule it")
	}

	if err := s.validator.ValidateSchedule(req); err != nil {
		s.cfg.Log.Warn("Schedule request validation failed", "event_id", eventID, "error", err)
		return nil, apperrors.Validation("Schedule request validation failed", map[string]any{"error": err.Error()})
	}

	// Re-scheduling overwrites the previous slot; the stale Discord event is
	// removed best-effort so the guild calendar does not accumulate orphans.
	if event.DiscordEventID != "" && s.discord != nil {
		if err := s.discord.DeleteScheduledEvent(ctx, event.DiscordEventID); err != nil {
			metrics.DiscordFailures.Inc()
			s.cfg.Log.Warn("Failed to delete stale Discord event", "event_id", eventID, "discord_event_id", event.DiscordEventID, "error", err)
		}
	}

	discordEventID := s.createDiscordEvent(ctx, event, req)

	if err := s.repo.SetSchedule(ctx, eventID, req.StartTime, req.EndTime, discordEventID); err != nil {
		s.cfg.Log.Error("Failed to persist event schedule", "event_id", eventID, "error", err)
		return nil, translateRepoError(eventID, err, "Failed to schedule event")
	}

	start := req.StartTime.UTC()
	end := req.EndTime.UTC()
	event.ScheduledStartTime = &start
	event.ScheduledEndTime = &end
	event.IsLocked = true
	event.DiscordEventID = discordEventID

	s.publishLifecycle(ctx, "event.scheduled", event)

	s.cfg.Log.Info("Event scheduled",
		"event_id", eventID,
		"start_time", start,
		"end_time", end,
		"discord_event_id", discordEventID,
	)
	return event, nil
}

// Unschedule reverts a scheduled event to the open state. Unscheduling an
// event that was never scheduled is a no-op, not an error.
func (s *eventService) Unschedule(ctx context.Context, eventID, callerID string) (*model.Event, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized("Authentication required to unschedule an event")
	}

	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, translateRepoError(eventID, err, "Failed to retrieve event")
	}

	if event.CreatedBy != callerID {
		return nil, apperrors.Unauthorized("Only the event creator can unschedule it")
	}

	if !event.IsLocked {
		return event, nil
	}

	if event.DiscordEventID != "" && s.discord != nil {
		if err := s.discord.DeleteScheduledEvent(ctx, event.DiscordEventID); err != nil {
			metrics.DiscordFailures.Inc()
			s.cfg.Log.Warn("Failed to delete Discord event", "event_id", eventID, "discord_event_id", event.DiscordEventID, "error", err)
		}
	}

	if err := s.repo.ClearSchedule(ctx, eventID); err != nil {
		s.cfg.Log.Error("Failed to clear event schedule", "event_id", eventID, "error", err)
		return nil, translateRepoError(eventID, err, "Failed to unschedule event")
	}

	event.ScheduledStartTime = nil
	event.ScheduledEndTime = nil
	event.IsLocked = false
	event.DiscordEventID = ""

	s.publishLifecycle(ctx, "event.unscheduled", event)

	s.cfg.Log.Info("Event unscheduled", "event_id", eventID)
	return event, nil
}

func (s *eventService) ListDiscordChannels(ctx context.Context) ([]discord.Channel, error) {
	if s.discord == nil {
		return nil, apperrors.Unavailable("Discord integration")
	}

	channels, err := s.discord.ListVoiceChannels(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list Discord channels", "error", err)
		return nil, apperrors.Internal("Failed to list Discord channels", err)
	}
	return channels, nil
}

// createDiscordEvent runs the external create+announce pair and returns the
// created Discord event id, or "" when the integration is off or the create
// failed.
func (s *eventService) createDiscordEvent(ctx context.Context, event *model.Event, req *model.ScheduleRequest) string {
	if s.discord == nil {
		return ""
	}

	created, err := s.discord.CreateScheduledEvent(ctx, discord.CreateEventOptions{
		Name:        event.Name,
		Description: event.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    s.webEventURL(event.ID),
		ChannelID:   req.DiscordChannelID,
	})
	if err != nil {
		metrics.DiscordFailures.Inc()
		s.cfg.Log.Warn("Failed to create Discord scheduled event", "event_id", event.ID, "error", err)
	}

	discordEventID := ""
	link := s.webEventURL(event.ID)
	if created != nil {
		discordEventID = created.ID
		link = s.discord.EventURL(created.ID)
	}

	if err := s.discord.PostAnnouncement(ctx, discord.Announcement{
		EventName: event.Name,
		StartTime: req.StartTime,
		Link:      link,
	}); err != nil {
		metrics.DiscordFailures.Inc()
		s.cfg.Log.Warn("Failed to post Discord announcement", "event_id", event.ID, "error", err)
	}

	return discordEventID
}

func (s *eventService) webEventURL(eventID string) string {
	return fmt.Sprintf("%s/events/%s", s.cfg.BaseURL, eventID)
}

type lifecyclePayload struct {
	EventID        string     `json:"event_id"`
	Name           string     `json:"name"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	DiscordEventID string     `json:"discord_event_id,omitempty"`
}

func (s *eventService) publishLifecycle(ctx context.Context, eventType string, event *model.Event) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewMessage(event.ID, eventType, "synquora", lifecyclePayload{
		EventID:        event.ID,
		Name:           event.Name,
		StartTime:      event.ScheduledStartTime,
		EndTime:        event.ScheduledEndTime,
		DiscordEventID: event.DiscordEventID,
	})
	if err != nil {
		metrics.KafkaPublishFailures.Inc()
		s.cfg.Log.Warn("Failed to build lifecycle message", "event_id", event.ID, "type", eventType, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		metrics.KafkaPublishFailures.Inc()
		s.cfg.Log.Warn("Failed to publish lifecycle message", "event_id", event.ID, "type", eventType, "error", err)
	}
}

func translateRepoError(id string, err error, internalMsg string) error {
	if errors.Is(err, eventserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Event", id)
	}
	if errors.Is(err, eventserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid event ID format")
	}
	return apperrors.Internal(internalMsg, err)
}
