package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/margauxflores/synquora/internal/discord"
	eventserrors "github.com/margauxflores/synquora/internal/events/errors"
	"github.com/margauxflores/synquora/internal/events/validator"
	"github.com/margauxflores/synquora/pkg/config"
	mongotx "github.com/margauxflores/synquora/pkg/db/mongo"
	apperrors "github.com/margauxflores/synquora/pkg/errors"
	"github.com/margauxflores/synquora/pkg/kafka"
	"github.com/margauxflores/synquora/pkg/logger"
	"github.com/margauxflores/synquora/pkg/model"
)

type mockEventRepo struct {
	CreateFunc        func(ctx context.Context, event *model.Event) error
	FindByIDFunc      func(ctx context.Context, id string) (*model.Event, error)
	FindAllFunc       func(ctx context.Context, limit int, offset int64) ([]*model.Event, error)
	CountFunc         func(ctx context.Context) (int64, error)
	SetScheduleFunc   func(ctx context.Context, id string, start, end time.Time, discordEventID string) error
	ClearScheduleFunc func(ctx context.Context, id string) error
}

func (m *mockEventRepo) Create(ctx context.Context, event *model.Event) error {
	return m.CreateFunc(ctx, event)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockEventRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Event, error) {
	return m.FindAllFunc(ctx, limit, offset)
}

func (m *mockEventRepo) Count(ctx context.Context) (int64, error) {
	return m.CountFunc(ctx)
}

func (m *mockEventRepo) SetSchedule(ctx context.Context, id string, start, end time.Time, discordEventID string) error {
	return m.SetScheduleFunc(ctx, id, start, end, discordEventID)
}

func (m *mockEventRepo) ClearSchedule(ctx context.Context, id string) error {
	return m.ClearScheduleFunc(ctx, id)
}

func (m *mockEventRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockParticipantRepo struct {
	JoinFunc        func(ctx context.Context, eventID, userID string) error
	FindByEventFunc func(ctx context.Context, eventID string) ([]*model.Participant, error)
}

func (m *mockParticipantRepo) Join(ctx context.Context, eventID, userID string) error {
	return m.JoinFunc(ctx, eventID, userID)
}

func (m *mockParticipantRepo) FindByEvent(ctx context.Context, eventID string) ([]*model.Participant, error) {
	return m.FindByEventFunc(ctx, eventID)
}

type mockDiscord struct {
	CreateFunc       func(ctx context.Context, opts discord.CreateEventOptions) (*discord.ScheduledEvent, error)
	DeleteFunc       func(ctx context.Context, eventID string) error
	AnnounceFunc     func(ctx context.Context, a discord.Announcement) error
	ListChannelsFunc func(ctx context.Context) ([]discord.Channel, error)
}

func (m *mockDiscord) CreateScheduledEvent(ctx context.Context, opts discord.CreateEventOptions) (*discord.ScheduledEvent, error) {
	return m.CreateFunc(ctx, opts)
}

func (m *mockDiscord) DeleteScheduledEvent(ctx context.Context, eventID string) error {
	return m.DeleteFunc(ctx, eventID)
}

func (m *mockDiscord) PostAnnouncement(ctx context.Context, a discord.Announcement) error {
	return m.AnnounceFunc(ctx, a)
}

func (m *mockDiscord) EventURL(discordEventID string) string {
	return "https://discord.com/events/guild-1/" + discordEventID
}

func (m *mockDiscord) ListVoiceChannels(ctx context.Context) ([]discord.Channel, error) {
	return m.ListChannelsFunc(ctx)
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, msg kafka.Message) error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	return m.PublishFunc(ctx, msg)
}

type mockResolver struct {
	names map[string]string
}

func (m *mockResolver) DisplayNames(_ context.Context, userIDs []string) map[string]string {
	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := m.names[id]; ok {
			out[id] = name
		} else {
			out[id] = id
		}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL: "http://localhost:3000",
		Log:     logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

func scheduledFor(start time.Time) (*time.Time, *time.Time) {
	end := start.Add(time.Hour)
	return &start, &end
}

func newTestService(repo *mockEventRepo, parts *mockParticipantRepo, dg DiscordGateway, pub LifecyclePublisher) EventService {
	cfg := testConfig()
	return NewEventService(repo, parts, validator.NewEventValidator(cfg.Log), dg, &mockResolver{}, pub, cfg)
}

func TestCreate_RequiresAuthentication(t *testing.T) {
	svc := newTestService(&mockEventRepo{}, &mockParticipantRepo{}, nil, nil)

	err := svc.Create(context.Background(), "", &model.Event{Name: "Raid night"})
	if err == nil {
		t.Fatal("expected error for anonymous caller")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("code = %s, want %s", appErr.Code, apperrors.CodeUnauthorized)
	}
}

func TestCreate_AddsCreatorAsParticipant(t *testing.T) {
	var joinedEvent, joinedUser string
	repo := &mockEventRepo{
		CreateFunc: func(_ context.Context, event *model.Event) error {
			event.ID = "11111111-1111-4111-8111-111111111111"
			return nil
		},
	}
	parts := &mockParticipantRepo{
		JoinFunc: func(_ context.Context, eventID, userID string) error {
			joinedEvent, joinedUser = eventID, userID
			return nil
		},
	}
	svc := newTestService(repo, parts, nil, nil)

	event := &model.Event{Name: "Raid night"}
	if err := svc.Create(context.Background(), "creator-1", event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.CreatedBy != "creator-1" {
		t.Errorf("created_by = %q, want creator-1", event.CreatedBy)
	}
	if joinedEvent != event.ID || joinedUser != "creator-1" {
		t.Errorf("creator not joined: event=%q user=%q", joinedEvent, joinedUser)
	}
}

func TestSchedule_CreatorOnly(t *testing.T) {
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, Name: "Raid night", CreatedBy: "creator-1"}, nil
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, nil, nil)

	start := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), "ev-1", "someone-else", &model.ScheduleRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected error for non-creator caller")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeUnauthorized {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeUnauthorized)
	}
}

func TestSchedule_NotFound(t *testing.T) {
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return nil, eventserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, nil, nil)

	start := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), "missing", "creator-1", &model.ScheduleRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeNotFound)
	}
}

func TestSchedule_RejectsInvertedRange(t *testing.T) {
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, Name: "Raid night", CreatedBy: "creator-1"}, nil
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, nil, nil)

	start := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	_, err := svc.Schedule(context.Background(), "ev-1", "creator-1", &model.ScheduleRequest{
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	})
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeValidation)
	}
}

func TestSchedule_Success(t *testing.T) {
	var persistedDiscordID string
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, Name: "Raid night", CreatedBy: "creator-1"}, nil
		},
		SetScheduleFunc: func(_ context.Context, id string, start, end time.Time, discordEventID string) error {
			persistedDiscordID = discordEventID
			return nil
		},
	}
	dg := &mockDiscord{
		CreateFunc: func(_ context.Context, opts discord.CreateEventOptions) (*discord.ScheduledEvent, error) {
			return &discord.ScheduledEvent{ID: "discord-ev-1"}, nil
		},
		AnnounceFunc: func(_ context.Context, a discord.Announcement) error {
			if a.Link != "https://discord.com/events/guild-1/discord-ev-1" {
				t.Errorf("announcement link = %q, want native event url", a.Link)
			}
			return nil
		},
	}
	var published []string
	pub := &mockPublisher{
		PublishFunc: func(_ context.Context, msg kafka.Message) error {
			published = append(published, msg.Headers[kafka.HeaderEventType])
			return nil
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, dg, pub)

	start := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	event, err := svc.Schedule(context.Background(), "ev-1", "creator-1", &model.ScheduleRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !event.IsLocked {
		t.Error("event should be locked after scheduling")
	}
	if event.DiscordEventID != "discord-ev-1" || persistedDiscordID != "discord-ev-1" {
		t.Errorf("discord event id not carried through: event=%q persisted=%q", event.DiscordEventID, persistedDiscordID)
	}
	if len(published) != 1 || published[0] != "event.scheduled" {
		t.Errorf("published = %v, want [event.scheduled]", published)
	}
}

func TestSchedule_DiscordFailureStillSchedules(t *testing.T) {
	var persisted bool
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, Name: "Raid night", CreatedBy: "creator-1"}, nil
		},
		SetScheduleFunc: func(_ context.Context, id string, start, end time.Time, discordEventID string) error {
			persisted = true
			if discordEventID != "" {
				t.Errorf("discord event id = %q, want empty after failed create", discordEventID)
			}
			return nil
		},
	}
	dg := &mockDiscord{
		CreateFunc: func(_ context.Context, opts discord.CreateEventOptions) (*discord.ScheduledEvent, error) {
			return nil, context.DeadlineExceeded
		},
		AnnounceFunc: func(_ context.Context, a discord.Announcement) error {
			return nil
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, dg, nil)

	start := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
	event, err := svc.Schedule(context.Background(), "ev-1", "creator-1", &model.ScheduleRequest{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("schedule must succeed despite Discord failure, got: %v", err)
	}
	if !persisted {
		t.Error("schedule was not persisted")
	}
	if event.DiscordEventID != "" {
		t.Errorf("discord event id = %q, want empty", event.DiscordEventID)
	}
}

func TestSchedule_RescheduleDeletesStaleDiscordEvent(t *testing.T) {
	var deleted string
	start0, end0 := scheduledFor(time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC))
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{
				ID: id, Name: "Raid night", CreatedBy: "creator-1",
				IsLocked: true, DiscordEventID: "stale-1",
				ScheduledStartTime: start0, ScheduledEndTime: end0,
			}, nil
		},
		SetScheduleFunc: func(_ context.Context, id string, start, end time.Time, discordEventID string) error {
			return nil
		},
	}
	dg := &mockDiscord{
		DeleteFunc: func(_ context.Context, eventID string) error {
			deleted = eventID
			return nil
		},
		CreateFunc: func(_ context.Context, opts discord.CreateEventOptions) (*discord.ScheduledEvent, error) {
			return &discord.ScheduledEvent{ID: "fresh-1"}, nil
		},
		AnnounceFunc: func(_ context.Context, a discord.Announcement) error { return nil },
	}
	svc := newTestService(repo, &mockParticipantRepo{}, dg, nil)

	newStart := time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)
	event, err := svc.Schedule(context.Background(), "ev-1", "creator-1", &model.ScheduleRequest{
		StartTime: newStart,
		EndTime:   newStart.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "stale-1" {
		t.Errorf("deleted = %q, want stale-1", deleted)
	}
	if event.DiscordEventID != "fresh-1" {
		t.Errorf("discord event id = %q, want fresh-1", event.DiscordEventID)
	}
	if !event.ScheduledStartTime.Equal(newStart) {
		t.Errorf("start = %v, want %v", event.ScheduledStartTime, newStart)
	}
}

func TestUnschedule_NeverScheduledIsNoop(t *testing.T) {
	cleared := false
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, Name: "Raid night", CreatedBy: "creator-1", IsLocked: false}, nil
		},
		ClearScheduleFunc: func(_ context.Context, id string) error {
			cleared = true
			return nil
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, nil, nil)

	event, err := svc.Unschedule(context.Background(), "ev-1", "creator-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared {
		t.Error("no write expected for an event that was never scheduled")
	}
	if event.IsLocked {
		t.Error("event should remain unlocked")
	}
}

func TestUnschedule_Success(t *testing.T) {
	var deleted string
	cleared := false
	start0, end0 := scheduledFor(time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC))
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{
				ID: id, Name: "Raid night", CreatedBy: "creator-1",
				IsLocked: true, DiscordEventID: "discord-ev-1",
				ScheduledStartTime: start0, ScheduledEndTime: end0,
			}, nil
		},
		ClearScheduleFunc: func(_ context.Context, id string) error {
			cleared = true
			return nil
		},
	}
	dg := &mockDiscord{
		DeleteFunc: func(_ context.Context, eventID string) error {
			deleted = eventID
			return nil
		},
	}
	var published []string
	pub := &mockPublisher{
		PublishFunc: func(_ context.Context, msg kafka.Message) error {
			published = append(published, msg.Headers[kafka.HeaderEventType])
			return nil
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, dg, pub)

	event, err := svc.Unschedule(context.Background(), "ev-1", "creator-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "discord-ev-1" {
		t.Errorf("deleted = %q, want discord-ev-1", deleted)
	}
	if !cleared {
		t.Error("schedule was not cleared")
	}
	if event.IsLocked || event.ScheduledStartTime != nil || event.DiscordEventID != "" {
		t.Errorf("event not reverted to open state: %+v", event)
	}
	if len(published) != 1 || published[0] != "event.unscheduled" {
		t.Errorf("published = %v, want [event.unscheduled]", published)
	}
}

func TestUnschedule_DiscordFailureStillUnschedules(t *testing.T) {
	cleared := false
	start0, end0 := scheduledFor(time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC))
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{
				ID: id, Name: "Raid night", CreatedBy: "creator-1",
				IsLocked: true, DiscordEventID: "discord-ev-1",
				ScheduledStartTime: start0, ScheduledEndTime: end0,
			}, nil
		},
		ClearScheduleFunc: func(_ context.Context, id string) error {
			cleared = true
			return nil
		},
	}
	dg := &mockDiscord{
		DeleteFunc: func(_ context.Context, eventID string) error {
			return context.DeadlineExceeded
		},
	}
	svc := newTestService(repo, &mockParticipantRepo{}, dg, nil)

	if _, err := svc.Unschedule(context.Background(), "ev-1", "creator-1"); err != nil {
		t.Fatalf("unschedule must succeed despite Discord failure, got: %v", err)
	}
	if !cleared {
		t.Error("schedule was not cleared")
	}
}

func TestParticipants_ResolvesDisplayNames(t *testing.T) {
	repo := &mockEventRepo{
		FindByIDFunc: func(_ context.Context, id string) (*model.Event, error) {
			return &model.Event{ID: id, Name: "Raid night", CreatedBy: "u1"}, nil
		},
	}
	parts := &mockParticipantRepo{
		FindByEventFunc: func(_ context.Context, eventID string) ([]*model.Participant, error) {
			return []*model.Participant{
				{EventID: eventID, UserID: "u1"},
				{EventID: eventID, UserID: "u2"},
			}, nil
		},
	}
	cfg := testConfig()
	svc := NewEventService(repo, parts, validator.NewEventValidator(cfg.Log), nil,
		&mockResolver{names: map[string]string{"u1": "Alice"}}, nil, cfg)

	participants, err := svc.Participants(context.Background(), "ev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if participants[0].DisplayName != "Alice" {
		t.Errorf("u1 display name = %q, want Alice", participants[0].DisplayName)
	}
	// Unresolved ids fall back to the raw id.
	if participants[1].DisplayName != "u2" {
		t.Errorf("u2 display name = %q, want u2", participants[1].DisplayName)
	}
}

func TestListDiscordChannels_UnavailableWhenDisabled(t *testing.T) {
	svc := newTestService(&mockEventRepo{}, &mockParticipantRepo{}, nil, nil)

	_, err := svc.ListDiscordChannels(context.Background())
	if apperrors.AsAppError(err).Code != apperrors.CodeUnavailable {
		t.Errorf("code = %s, want %s", apperrors.AsAppError(err).Code, apperrors.CodeUnavailable)
	}
}
