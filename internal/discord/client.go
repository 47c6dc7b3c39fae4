// Package discord talks to the Discord REST API for the three best-effort
// side effects of the scheduling state machine: creating a guild scheduled
// event, deleting one, and posting an announcement message. All three may
// fail; callers log and swallow the error, never roll back local state.
package discord

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/margauxflores/synquora/pkg/client"
)

const (
	entityTypeVoice    = 2
	entityTypeExternal = 3

	privacyGuildOnly = 2

	channelTypeVoice = 2
	channelTypeStage = 13
)

type Client struct {
	http                  *client.HttpClient
	guildID               string
	announcementChannelID string
}

type Config struct {
	APIBaseURL            string
	BotToken              string
	GuildID               string
	AnnouncementChannelID string
}

func NewClient(cfg Config) *Client {
	return &Client{
		http:                  client.NewHttpClient(cfg.APIBaseURL).WithHeader("Authorization", "Bot "+cfg.BotToken),
		guildID:               cfg.GuildID,
		announcementChannelID: cfg.AnnouncementChannelID,
	}
}

type CreateEventOptions struct {
	Name        string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	// Location is the fallback entity metadata for external events, typically
	// the event's web URL.
	Location string
	// ChannelID switches the scheduled event to a voice/stage channel instead
	// of an external location.
	ChannelID string
}

type ScheduledEvent struct {
	ID string `json:"id"`
}

func (c *Client) CreateScheduledEvent(ctx context.Context, opts CreateEventOptions) (*ScheduledEvent, error) {
	body := map[string]any{
		"name":                 opts.Name,
		"description":          opts.Description,
		"scheduled_start_time": opts.StartTime.UTC().Format(time.RFC3339),
		"scheduled_end_time":   opts.EndTime.UTC().Format(time.RFC3339),
		"privacy_level":        privacyGuildOnly,
	}
	if opts.ChannelID != "" {
		body["entity_type"] = entityTypeVoice
		body["channel_id"] = opts.ChannelID
	} else {
		body["entity_type"] = entityTypeExternal
		body["entity_metadata"] = map[string]string{"location": opts.Location}
	}

	resp, err := c.http.POST(ctx, fmt.Sprintf("/guilds/%s/scheduled-events", c.guildID), body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discord scheduled-event creation failed: status %d: %s", resp.StatusCode, resp.Body)
	}

	var ev ScheduledEvent
	if err := resp.DecodeJSON(&ev); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled-event response: %w", err)
	}
	return &ev, nil
}

func (c *Client) DeleteScheduledEvent(ctx context.Context, eventID string) error {
	resp, err := c.http.DELETE(ctx, fmt.Sprintf("/guilds/%s/scheduled-events/%s", c.guildID, eventID))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord scheduled-event deletion failed: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type Announcement struct {
	EventName string
	StartTime time.Time
	// Link points at the native Discord event when one was created, otherwise
	// at the event's web page.
	Link string
}

func (c *Client) PostAnnouncement(ctx context.Context, a Announcement) error {
	content := fmt.Sprintf("@everyone\n📢 **%s** is happening <t:%d:F>!\n%s",
		a.EventName, a.StartTime.Unix(), a.Link)

	body := map[string]any{
		"content":          content,
		"allowed_mentions": map[string]any{"parse": []string{"everyone"}},
	}

	resp, err := c.http.POST(ctx, fmt.Sprintf("/channels/%s/messages", c.announcementChannelID), body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord announcement failed: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// EventURL is the native link to a guild scheduled event.
func (c *Client) EventURL(discordEventID string) string {
	return fmt.Sprintf("https://discord.com/events/%s/%s", c.guildID, discordEventID)
}

type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ListVoiceChannels returns the guild's voice and stage channels, the only
// channel kinds a scheduled event can be attached to.
func (c *Client) ListVoiceChannels(ctx context.Context) ([]Channel, error) {
	resp, err := c.http.GET(ctx, fmt.Sprintf("/guilds/%s/channels", c.guildID))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord channel listing failed: status %d: %s", resp.StatusCode, resp.Body)
	}

	var raw []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type int    `json:"type"`
	}
	if err := resp.DecodeJSON(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode channel list: %w", err)
	}

	channels := make([]Channel, 0, len(raw))
	for _, ch := range raw {
		switch ch.Type {
		case channelTypeVoice:
			channels = append(channels, Channel{ID: ch.ID, Name: ch.Name, Type: "Voice"})
		case channelTypeStage:
			channels = append(channels, Channel{ID: ch.ID, Name: ch.Name, Type: "Stage"})
		}
	}
	return channels, nil
}
