package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/margauxflores/synquora/internal/availability/service"
	apperrors "github.com/margauxflores/synquora/pkg/errors"
	httputil "github.com/margauxflores/synquora/pkg/http"
	"github.com/margauxflores/synquora/pkg/logger"
	"github.com/margauxflores/synquora/pkg/model"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) GetForEvent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	records, err := h.service.GetForEvent(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetForEvent", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, records); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForEvent", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetMine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	records, err := h.service.GetForUser(r.Context(), ps.ByName("id"), httputil.CallerID(r))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetMine", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, records); err != nil {
		h.log.Error("failed to write success response", "handler", "GetMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Save(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var save model.AvailabilitySave
	if err := json.NewDecoder(r.Body).Decode(&save); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Save", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.Save(r.Context(), ps.ByName("id"), httputil.CallerID(r), &save)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Save", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Save", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Suggest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	weekStart, timezone, err := weekParams(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Suggest", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	suggestion, err := h.service.Suggest(r.Context(), ps.ByName("id"), weekStart, timezone)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Suggest", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, suggestion); err != nil {
		h.log.Error("failed to write success response", "handler", "Suggest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetDefaults(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := httputil.CallerID(r)

	// With week parameters the recurring pattern is rendered as concrete slots
	// for that week; without them the raw entries come back.
	if r.URL.Query().Get("week_start") != "" {
		weekStart, timezone, err := weekParams(r)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetDefaults", "operation", "WriteError", "error", writeErr)
			}
			return
		}

		slots, err := h.service.ProjectDefaults(r.Context(), callerID, weekStart, timezone)
		if err != nil {
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetDefaults", "operation", "WriteError", "error", writeErr)
			}
			return
		}

		if err := httputil.WriteSuccess(w, slots); err != nil {
			h.log.Error("failed to write success response", "handler", "GetDefaults", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	entries, err := h.service.GetDefaults(r.Context(), callerID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetDefaults", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "GetDefaults", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) SetDefaults(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var entries []model.DefaultAvailability
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SetDefaults", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.SetDefaults(r.Context(), httputil.CallerID(r), entries); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SetDefaults", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// weekParams parses the week_start and timezone query parameters shared by the
// suggestion and defaults-projection endpoints.
func weekParams(r *http.Request) (time.Time, string, error) {
	query := r.URL.Query()

	weekStartStr := query.Get("week_start")
	if weekStartStr == "" {
		return time.Time{}, "", apperrors.InvalidInput("'week_start' query parameter is required")
	}
	weekStart, err := time.Parse(time.RFC3339, weekStartStr)
	if err != nil {
		return time.Time{}, "", apperrors.InvalidInput("invalid week_start format, must be RFC3339")
	}

	timezone := query.Get("timezone")
	if timezone == "" {
		timezone = "UTC"
	}

	return weekStart, timezone, nil
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events/id/:id/availability", h.GetForEvent)
	router.PUT("/api/v1/events/id/:id/availability", h.Save)
	router.GET("/api/v1/events/id/:id/availability/me", h.GetMine)
	router.GET("/api/v1/events/id/:id/availability/suggestion", h.Suggest)
	router.GET("/api/v1/availability/defaults", h.GetDefaults)
	router.PUT("/api/v1/availability/defaults", h.SetDefaults)
}
