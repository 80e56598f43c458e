package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
)

// Every endpoint answers with the same envelope, success or failure, so the
// frontend always knows the shape it is parsing.
//
// Success: {"statusCode":200,"data":{...},"message":"...","success":true}
// Failure: {"statusCode":404,"message":"...","errors":[...],"success":false}

// Response is the success envelope.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the failure envelope. Stack is populated only outside
// production configuration.
type ErrorResponse struct {
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Errors     []FieldError `json:"errors"`
	Success    bool         `json:"success"`
	Stack      string       `json:"stack,omitempty"`
}

// FieldError points at the specific input field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// responder writes the shared envelopes for a handler. Each handler embeds
// one, so the debug flag travels with the handler's other configuration
// instead of living in package state.
type responder struct {
	logger *slog.Logger
	// debug includes stack traces in error bodies. Wired from config at
	// construction; never enabled in production.
	debug bool
}

// writeSuccess sends data wrapped in the success envelope.
func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeRaw(w, status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// writeError maps a domain error to its HTTP status and sends the failure
// envelope. Unknown errors are normalized to a generic 500 — raw lower-layer
// messages (SQL text, file paths) never reach the client; the cause is
// logged instead.
func (rs responder) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "an internal error occurred"
	var fieldErrors []FieldError

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, apperror.ErrUploadFailed):
			status = http.StatusInternalServerError
		}
		message = appErr.Message
		if appErr.Field != "" {
			fieldErrors = append(fieldErrors, FieldError{Field: appErr.Field, Message: appErr.Message})
		}
	}

	if status == http.StatusInternalServerError {
		rs.logger.Error("request failed", slog.String("error", err.Error()))
	}

	resp := ErrorResponse{
		StatusCode: status,
		Message:    message,
		Errors:     fieldErrors,
		Success:    false,
	}
	if resp.Errors == nil {
		resp.Errors = []FieldError{}
	}
	if rs.debug {
		resp.Stack = string(debug.Stack())
	}

	writeRaw(w, status, resp)
}

// writeRaw sends any payload as JSON. Headers and status must be written
// before the body — once Encode writes, header changes are ignored.
func writeRaw(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already gone; logging is all that's left.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
