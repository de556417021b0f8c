package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/powersuspend/powersuspend-go/pkg/control"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/service"
	"github.com/powersuspend/powersuspend-go/pkg/subscription"
)

// maxBodySize bounds attribute and trigger request bodies.
const maxBodySize = 64

// Coordinator is the part of a PowerService the HTTP layer uses.
type Coordinator interface {
	NotifyAutosleep(state powerstate.State) bool
	NotifyPanel(state powerstate.State) bool
	Subscribe(h *subscription.Handler) uuid.UUID
	Unsubscribe(id uuid.UUID) bool
	Handlers() []subscription.Info
}

// API holds the HTTP handlers.
type API struct {
	surface     *control.Surface
	coordinator Coordinator
	logger      *slog.Logger
	eventBuffer int
}

// Logger returns the request logger.
func (a *API) Logger() *slog.Logger {
	return a.logger
}

// Health reports liveness.
func (a *API) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListAttributes returns all control endpoints with their values.
func (a *API) ListAttributes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"attributes": a.surface.Endpoints()})
}

// GetAttribute returns one endpoint value as text/plain.
func (a *API) GetAttribute(w http.ResponseWriter, r *http.Request) {
	value, err := a.surface.Read(chi.URLParam(r, "name"))
	if err != nil {
		writeControlError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, value+"\n")
}

// PutAttribute writes the request body to one endpoint.
func (a *API) PutAttribute(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := a.surface.Write(chi.URLParam(r, "name"), body); err != nil {
		writeControlError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostTrigger invokes the autosleep or panel hook.
func (a *API) PostTrigger(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	trigger, err := powerstate.ParseTrigger(source)
	if err != nil || trigger == powerstate.TriggerOperator {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown trigger source %q", source))
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	state, err := powerstate.ParseState(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var authorized bool
	switch trigger {
	case powerstate.TriggerAutosleep:
		authorized = a.coordinator.NotifyAutosleep(state)
	case powerstate.TriggerPanel:
		authorized = a.coordinator.NotifyPanel(state)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authorized": authorized})
}

// ListHandlers returns the registered handlers in registration order.
func (a *API) ListHandlers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"handlers": a.coordinator.Handlers()})
}

func readBody(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxBodySize {
		return "", fmt.Errorf("body exceeds %d bytes", maxBodySize)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeControlError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, control.ErrUnknownEndpoint):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, control.ErrReadOnly):
		writeError(w, http.StatusMethodNotAllowed, "read_only", err.Error())
	case errors.Is(err, service.ErrInvalidOperation):
		writeError(w, http.StatusConflict, "invalid_operation", err.Error())
	case errors.Is(err, service.ErrNotRunning):
		writeError(w, http.StatusServiceUnavailable, "not_running", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
