package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"task-manager/models"
	"task-manager/store"
)

// ValidationError reports bad field values, wrong JSON types or keys outside
// an update whitelist (400)
type ValidationError struct {
	Message string
	Fields  models.FieldErrors
}

func (e *ValidationError) Error() string { return e.Message }

// AuthenticationError reports bad credentials (400 on login)
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// NotFoundError reports an absent, foreign-owned or malformed-id record (404)
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// UnexpectedError wraps store or infrastructure failures (500)
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string { return e.Err.Error() }

func (e *UnexpectedError) Unwrap() error { return e.Err }

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error  string             `json:"error"`
	Fields models.FieldErrors `json:"fields,omitempty"`
}

// classify maps store and model errors onto the handler error taxonomy.
// notFound is the message used for store.ErrNotFound.
func classify(err error, notFound string) error {
	var (
		verr *ValidationError
		aerr *AuthenticationError
		nerr *NotFoundError
		fe   models.FieldErrors
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &aerr), errors.As(err, &nerr):
		return err
	case errors.As(err, &fe):
		return &ValidationError{Message: "Validation failed", Fields: fe}
	case errors.Is(err, store.ErrDuplicateEmail):
		return &ValidationError{Message: "Email is already in use", Fields: models.FieldErrors{"email": "is already in use"}}
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Message: notFound}
	}
	return &UnexpectedError{Err: err}
}

// respondError writes the response for err. Unexpected errors are logged and
// answered with a generic message.
func respondError(ctx context.Context, w http.ResponseWriter, err error, notFound string) {
	err = classify(err, notFound)

	var (
		verr *ValidationError
		aerr *AuthenticationError
		nerr *NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		logRequest(ctx, "info", "Rejected request", zap.String("reason", verr.Message))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Fields: verr.Fields})
	case errors.As(err, &aerr):
		logRequest(ctx, "info", "Authentication failed")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: aerr.Message})
	case errors.As(err, &nerr):
		logRequest(ctx, "info", nerr.Message)
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: nerr.Message})
	default:
		logRequest(ctx, "error", "Unexpected error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// decodeJSON decodes the request body into dst. Wrong JSON types are reported
// against the offending field.
func decodeJSON(r *http.Request, dst interface{}) error {
	return decodeBytes(r.Body, dst)
}

func decodeBytes(body io.Reader, dst interface{}) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &ValidationError{
				Message: "Validation failed",
				Fields:  models.FieldErrors{typeErr.Field: "has the wrong type"},
			}
		}
		return &ValidationError{Message: "Invalid JSON"}
	}
	return nil
}

// decodePatch decodes a partial update into dst after checking that every key
// of the body is in allowed
func decodePatch(r *http.Request, allowed []string, dst interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return &ValidationError{Message: "Invalid JSON"}
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return &ValidationError{Message: "Invalid JSON"}
	}

	for key := range keys {
		if !contains(allowed, key) {
			return &ValidationError{Message: "Invalid updates"}
		}
	}

	// none of the patchable fields is nullable; null must not read as "unchanged"
	nulls := models.FieldErrors{}
	for key, raw := range keys {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			nulls[key] = "must not be null"
		}
	}
	if len(nulls) > 0 {
		return &ValidationError{Message: "Validation failed", Fields: nulls}
	}

	return decodeBytes(bytes.NewReader(body), dst)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
