package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/margauxflores/synquora/internal/availability/repository"
	"github.com/margauxflores/synquora/internal/availability/validator"
	eventserrors "github.com/margauxflores/synquora/internal/events/errors"
	eventsrepo "github.com/margauxflores/synquora/internal/events/repository"
	"github.com/margauxflores/synquora/pkg/config"
	apperrors "github.com/margauxflores/synquora/pkg/errors"
	"github.com/margauxflores/synquora/pkg/metrics"
	"github.com/margauxflores/synquora/pkg/model"
	"github.com/margauxflores/synquora/pkg/timegrid"
)

type AvailabilityService interface {
	GetForEvent(ctx context.Context, eventID string) ([]*model.Availability, error)
	GetForUser(ctx context.Context, eventID, userID string) ([]*model.Availability, error)
	Save(ctx context.Context, eventID, userID string, save *model.AvailabilitySave) (*model.SaveResult, error)
	Suggest(ctx context.Context, eventID string, weekStart time.Time, timezone string) (*model.SlotSuggestion, error)
	GetDefaults(ctx context.Context, userID string) ([]*model.DefaultAvailability, error)
	SetDefaults(ctx context.Context, userID string, entries []model.DefaultAvailability) error
	ProjectDefaults(ctx context.Context, userID string, weekStart time.Time, timezone string) ([]model.AvailabilitySlot, error)
}

type availabilityService struct {
	repo        repository.AvailabilityRepository
	defaultRepo repository.DefaultAvailabilityRepository
	eventRepo   eventsrepo.EventRepository
	validator   *validator.AvailabilityValidator
	cfg         *config.Config
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	defaultRepo repository.DefaultAvailabilityRepository,
	eventRepo eventsrepo.EventRepository,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:        repo,
		defaultRepo: defaultRepo,
		eventRepo:   eventRepo,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *availabilityService) GetForEvent(ctx context.Context, eventID string) ([]*model.Availability, error) {
	if _, err := s.findEvent(ctx, eventID); err != nil {
		return nil, err
	}

	records, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		s.cfg.Log.Error("Failed to list availability", "event_id", eventID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}
	return records, nil
}

func (s *availabilityService) GetForUser(ctx context.Context, eventID, userID string) ([]*model.Availability, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if _, err := s.findEvent(ctx, eventID); err != nil {
		return nil, err
	}

	records, err := s.repo.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list user availability", "event_id", eventID, "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}
	return records, nil
}

// Save replaces the caller's availability for an event. The stored and
// submitted sets are both normalized to grid keys in the submission's
// timezone; when the delta is empty no write happens at all and the result
// reports Changed=false. Otherwise the user's records are deleted and
// reinserted in one transaction.
func (s *availabilityService) Save(ctx context.Context, eventID, userID string, save *model.AvailabilitySave) (*model.SaveResult, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Authentication required to save availability")
	}

	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsLocked {
		return nil, apperrors.Conflict("Event is locked; unschedule it before changing availability")
	}

	if err := s.validator.ValidateSave(save); err != nil {
		s.cfg.Log.Warn("Availability save validation failed", "event_id", eventID, "error", err)
		return nil, apperrors.Validation("Availability validation failed", map[string]any{"error": err.Error()})
	}

	loc, err := time.LoadLocation(save.Timezone)
	if err != nil {
		return nil, apperrors.InvalidInput("Unknown timezone: " + save.Timezone)
	}

	stored, err := s.repo.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to load stored availability", "event_id", eventID, "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load stored availability", err)
	}

	prev, err := timegrid.IntervalKeys(toIntervals(stored, userID), loc)
	if err != nil {
		return nil, apperrors.Internal("Failed to normalize stored availability", err)
	}

	nextIntervals := make([]timegrid.Interval, 0, len(save.Slots))
	for _, slot := range save.Slots {
		nextIntervals = append(nextIntervals, timegrid.Interval{
			UserID: userID,
			Start:  slot.StartTime,
			End:    slot.EndTime,
		})
	}
	next, err := timegrid.IntervalKeys(nextIntervals, loc)
	if err != nil {
		return nil, apperrors.Validation("Availability validation failed", map[string]any{"error": err.Error()})
	}

	delta := timegrid.Diff(prev, next)
	if delta.Empty() {
		metrics.AvailabilityNoopSaves.Inc()
		s.cfg.Log.Debug("Availability unchanged, skipping write", "event_id", eventID, "user_id", userID)
		return &model.SaveResult{Changed: false}, nil
	}

	// One record per grid key: the replacement store is hour-granular even if
	// the submission carried multi-hour spans.
	records := make([]*model.Availability, 0, len(next))
	for key := range next {
		start := key.Time(loc)
		records = append(records, &model.Availability{
			EventID:   eventID,
			UserID:    userID,
			StartTime: start.UTC(),
			EndTime:   start.Add(time.Hour).UTC(),
			Timezone:  save.Timezone,
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.DeleteByEventAndUser(sessCtx, eventID, userID); err != nil {
			return apperrors.Internal("Failed to clear availability", err)
		}
		if err := s.repo.InsertMany(sessCtx, records); err != nil {
			return apperrors.Internal("Failed to save availability", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to save availability", "event_id", eventID, "user_id", userID, "error", err)
		return nil, err
	}

	metrics.AvailabilitySaves.Inc()
	s.cfg.Log.Info("Availability saved",
		"event_id", eventID,
		"user_id", userID,
		"added", len(delta.Added),
		"removed", len(delta.Removed),
	)
	return &model.SaveResult{
		Changed: true,
		Added:   len(delta.Added),
		Removed: len(delta.Removed),
	}, nil
}

// Suggest aggregates every participant's intervals in the requested timezone
// and returns the strongest slot of the week starting at weekStart. NotFound
// when no availability lands inside the window.
func (s *availabilityService) Suggest(ctx context.Context, eventID string, weekStart time.Time, timezone string) (*model.SlotSuggestion, error) {
	if _, err := s.findEvent(ctx, eventID); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, apperrors.InvalidInput("Unknown timezone: " + timezone)
	}

	records, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		s.cfg.Log.Error("Failed to load availability for suggestion", "event_id", eventID, "error", err)
		return nil, apperrors.Internal("Failed to load availability", err)
	}

	grid, err := timegrid.Aggregate(toIntervals(records, ""), loc)
	if err != nil {
		return nil, apperrors.Internal("Failed to aggregate availability", err)
	}

	best, ok := timegrid.BestSlot(grid, weekStart, loc)
	if !ok {
		return nil, apperrors.NotFound("Slot suggestion")
	}

	return &model.SlotSuggestion{
		Key:       best.Key.String(),
		StartTime: best.Start.UTC(),
		EndTime:   best.Start.Add(time.Hour).UTC(),
		Headcount: best.Headcount,
		UserIDs:   best.UserIDs,
	}, nil
}

func (s *availabilityService) GetDefaults(ctx context.Context, userID string) ([]*model.DefaultAvailability, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	entries, err := s.defaultRepo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list default availability", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve default availability", err)
	}
	return entries, nil
}

func (s *availabilityService) SetDefaults(ctx context.Context, userID string, entries []model.DefaultAvailability) error {
	if userID == "" {
		return apperrors.Unauthorized("Authentication required to save default availability")
	}

	if err := s.validator.ValidateDefaults(entries); err != nil {
		s.cfg.Log.Warn("Default availability validation failed", "user_id", userID, "error", err)
		return apperrors.Validation("Default availability validation failed", map[string]any{"error": err.Error()})
	}

	records := make([]*model.DefaultAvailability, 0, len(entries))
	seen := make(map[model.DefaultAvailability]struct{}, len(entries))
	for _, e := range entries {
		e.UserID = userID
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		records = append(records, &model.DefaultAvailability{UserID: userID, Day: e.Day, Hour: e.Hour})
	}

	err := s.defaultRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.defaultRepo.DeleteByUser(sessCtx, userID); err != nil {
			return apperrors.Internal("Failed to clear default availability", err)
		}
		if err := s.defaultRepo.InsertMany(sessCtx, records); err != nil {
			return apperrors.Internal("Failed to save default availability", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to save default availability", "user_id", userID, "error", err)
		return err
	}

	s.cfg.Log.Info("Default availability saved", "user_id", userID, "entries", len(records))
	return nil
}

// ProjectDefaults renders the caller's weekly pattern as concrete 1-hour slots
// for the week starting at weekStart in the given timezone.
func (s *availabilityService) ProjectDefaults(ctx context.Context, userID string, weekStart time.Time, timezone string) ([]model.AvailabilitySlot, error) {
	entries, err := s.GetDefaults(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, apperrors.InvalidInput("Unknown timezone: " + timezone)
	}

	weekly := make([]timegrid.WeeklyEntry, 0, len(entries))
	for _, e := range entries {
		weekly = append(weekly, timegrid.WeeklyEntry{Day: e.Day, Hour: e.Hour})
	}

	keys, err := timegrid.DefaultKeys(weekly, weekStart, loc)
	if err != nil {
		return nil, apperrors.Internal("Failed to project default availability", err)
	}

	slots := make([]model.AvailabilitySlot, 0, len(keys))
	for key := range keys {
		start := key.Time(loc)
		slots = append(slots, model.AvailabilitySlot{
			StartTime: start.UTC(),
			EndTime:   start.Add(time.Hour).UTC(),
		})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots, nil
}

func (s *availabilityService) findEvent(ctx context.Context, eventID string) (*model.Event, error) {
	if eventID == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Event", eventID)
		}
		if errors.Is(err, eventserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid event ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve event", err)
	}
	return event, nil
}

func toIntervals(records []*model.Availability, overrideUserID string) []timegrid.Interval {
	intervals := make([]timegrid.Interval, 0, len(records))
	for _, rec := range records {
		userID := rec.UserID
		if overrideUserID != "" {
			userID = overrideUserID
		}
		intervals = append(intervals, timegrid.Interval{
			UserID: userID,
			Start:  rec.StartTime,
			End:    rec.EndTime,
		})
	}
	return intervals
}

