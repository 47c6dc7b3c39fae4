// Package identity resolves opaque user ids from the auth gateway into
// human-readable display names via the identity directory service.
package identity

import (
	"context"
	"fmt"
	"net/http"

	"github.com/margauxflores/synquora/pkg/client"
	"github.com/margauxflores/synquora/pkg/logger"
)

// Resolver maps user ids to display names. Resolution is cosmetic: callers
// always get an entry for every requested id, falling back to the raw id when
// the directory has no answer.
type Resolver interface {
	DisplayNames(ctx context.Context, userIDs []string) map[string]string
}

type httpResolver struct {
	http *client.HttpClient
	log  *logger.Logger
}

// NewResolver builds a directory-backed resolver. An empty baseURL yields a
// no-op resolver that echoes ids, so handlers never need to branch on whether
// the directory is configured.
func NewResolver(baseURL string, log *logger.Logger) Resolver {
	if baseURL == "" {
		return noopResolver{}
	}
	return &httpResolver{
		http: client.NewHttpClient(baseURL),
		log:  log,
	}
}

type lookupRequest struct {
	UserIDs []string `json:"userIds"`
}

type lookupResponse struct {
	Users []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"users"`
}

func (r *httpResolver) DisplayNames(ctx context.Context, userIDs []string) map[string]string {
	names := fallbackNames(userIDs)
	if len(userIDs) == 0 {
		return names
	}

	resolved, err := r.lookup(ctx, userIDs)
	if err != nil {
		r.log.Warn("identity lookup failed, falling back to raw ids", "error", err, "count", len(userIDs))
		return names
	}

	for id, name := range resolved {
		if name != "" {
			names[id] = name
		}
	}
	return names
}

func (r *httpResolver) lookup(ctx context.Context, userIDs []string) (map[string]string, error) {
	resp, err := r.http.POST(ctx, "/v1/users/lookup", lookupRequest{UserIDs: userIDs})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity lookup failed: status %d: %s", resp.StatusCode, resp.Body)
	}

	var body lookupResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	resolved := make(map[string]string, len(body.Users))
	for _, u := range body.Users {
		resolved[u.ID] = u.Name
	}
	return resolved, nil
}

type noopResolver struct{}

func (noopResolver) DisplayNames(_ context.Context, userIDs []string) map[string]string {
	return fallbackNames(userIDs)
}

func fallbackNames(userIDs []string) map[string]string {
	names := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		names[id] = id
	}
	return names
}
