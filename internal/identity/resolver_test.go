package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/margauxflores/synquora/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func TestDisplayNames_ResolvesFromDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/lookup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req lookupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.UserIDs) != 2 {
			t.Errorf("got %d user ids, want 2", len(req.UserIDs))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]string{
				{"id": "u1", "name": "Alice"},
			},
		})
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())
	names := r.DisplayNames(context.Background(), []string{"u1", "u2"})

	if names["u1"] != "Alice" {
		t.Errorf("u1 = %q, want Alice", names["u1"])
	}
	// u2 is unknown to the directory and falls back to the raw id.
	if names["u2"] != "u2" {
		t.Errorf("u2 = %q, want u2", names["u2"])
	}
}

func TestDisplayNames_DirectoryDownFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL, testLogger())
	names := r.DisplayNames(context.Background(), []string{"u1"})

	if names["u1"] != "u1" {
		t.Errorf("u1 = %q, want raw id fallback", names["u1"])
	}
}

func TestDisplayNames_UnconfiguredEchoesIDs(t *testing.T) {
	r := NewResolver("", testLogger())
	names := r.DisplayNames(context.Background(), []string{"a", "b"})

	if len(names) != 2 || names["a"] != "a" || names["b"] != "b" {
		t.Errorf("got %v, want ids echoed", names)
	}
}

func TestDisplayNames_EmptyInput(t *testing.T) {
	r := NewResolver("http://identity.invalid", testLogger())
	names := r.DisplayNames(context.Background(), nil)

	if len(names) != 0 {
		t.Errorf("got %v, want empty map", names)
	}
}
