// Package httpapi provides the REST HTTP adapter for the board engine.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hylla/tavla/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Service is the board surface the adapter exposes over HTTP.
type Service interface {
	Board() *domain.BoardData
	Refresh(context.Context) error
	MoveTask(taskID, sourceColumnID, targetColumnID string) (domain.ChangeEvent, bool)
}

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	svc Service
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// MoveRequest is the POST /moves payload.
type MoveRequest struct {
	TaskID         string `json:"taskId"`
	SourceColumnID string `json:"sourceColumnId"`
	TargetColumnID string `json:"targetColumnId"`
}

// MoveResponse reports whether the move was applied and, when it was, the
// change event the engine emitted.
type MoveResponse struct {
	Moved bool                `json:"moved"`
	Event *domain.ChangeEvent `json:"event,omitempty"`
}

// NewHandler constructs one HTTP API adapter.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "board service is not configured",
		})
		return
	}
	switch normalizePath(r.URL.Path) {
	case "board":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		writeJSON(w, http.StatusOK, h.svc.Board())
	case "moves":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMove(w, r)
	case "refresh":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		if err := h.svc.Refresh(r.Context()); err != nil {
			writeJSONError(w, http.StatusBadGateway, APIError{
				Code:    "refresh_failed",
				Message: err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, h.svc.Board())
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// handleMove serves POST `/moves`.
func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "bad_request",
			Message: "invalid move payload: " + err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.TaskID) == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "bad_request",
			Message: "taskId is required",
		})
		return
	}

	evt, moved := h.svc.MoveTask(req.TaskID, req.SourceColumnID, req.TargetColumnID)
	resp := MoveResponse{Moved: moved}
	if moved {
		resp.Event = &evt
	}
	writeJSON(w, http.StatusOK, resp)
}

// normalizePath trims the mount prefix slashes from one request path.
func normalizePath(path string) string {
	return strings.Trim(path, "/")
}

// writeJSON writes one JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, status int, apiErr APIError) {
	writeJSON(w, status, ErrorEnvelope{Error: apiErr})
}

// writeMethodNotAllowed writes a 405 naming the allowed methods.
func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}
