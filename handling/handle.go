package handling

import (
	"bengaliboutique_server/lib"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// StatusFor maps a domain error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, lib.ErrOutOfStock),
		errors.Is(err, lib.ErrExceedsStock),
		errors.Is(err, lib.ErrStockChanged),
		errors.Is(err, lib.ErrEmptyCart),
		errors.Is(err, lib.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, lib.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lib.ErrUnauthenticated),
		errors.Is(err, lib.ErrInvalidToken),
		errors.Is(err, lib.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, lib.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, lib.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, lib.ErrNotificationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorData is the payload rendered next to the message for client errors.
func errorData(err error) any {
	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		return map[string]any{"errors": ve.Errors}
	}
	var ne *lib.NotificationError
	if errors.As(err, &ne) {
		return map[string]any{"error": err.Error(), "order_id": ne.OrderID}
	}
	return map[string]any{"error": err.Error()}
}

// HandleError logs err and renders it with the status StatusFor assigns.
// Internal errors are logged at error level and never echoed to the client.
func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter) error {
	status := StatusFor(err)

	switch status {
	case http.StatusBadRequest:
		logger.Debug("Request rejected", gecho.Field("error", err), gecho.Field("msg", msg))
		return gecho.BadRequest(w, gecho.WithMessage(msg), gecho.WithData(errorData(err)), gecho.Send())
	case http.StatusNotFound:
		return gecho.NotFound(w, gecho.WithMessage(msg), gecho.Send())
	case http.StatusUnauthorized:
		return gecho.Unauthorized(w, gecho.WithMessage(msg), gecho.Send())
	case http.StatusForbidden:
		return gecho.Forbidden(w, gecho.WithMessage(msg), gecho.Send())
	case http.StatusConflict:
		return gecho.Conflict(w, gecho.WithMessage(msg), gecho.WithData(errorData(err)), gecho.Send())
	case http.StatusBadGateway:
		logger.Error("Upstream delivery failed", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))
		return WriteJSON(w, status, map[string]any{"message": msg, "data": errorData(err)})
	}

	logger.Error("An error occurred", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))
	return gecho.InternalServerError(w, gecho.WithMessage(msg), gecho.Send())
}

// WriteJSON writes payload with an explicit status for responses outside the gecho envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// ParseUUIDParam reads a chi URL parameter. Malformed ids are reported as lib.ErrNotFound.
func ParseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, lib.ErrNotFound
	}
	return id, nil
}

// AJAXMessage is the short user-facing reason rendered by the AJAX endpoints.
func AJAXMessage(err error) string {
	var ve *lib.ValidationError
	switch {
	case errors.Is(err, lib.ErrOutOfStock):
		return "Out of stock"
	case errors.Is(err, lib.ErrExceedsStock):
		return "Exceeds stock"
	case errors.Is(err, lib.ErrStockChanged):
		return "Stock changed, please update cart"
	case errors.Is(err, lib.ErrEmptyCart):
		return "Cart is empty"
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, lib.ErrNotFound):
		return "Not found"
	case errors.Is(err, lib.ErrUnauthenticated):
		return "Login required"
	case errors.Is(err, lib.ErrConflict):
		return "Request already in progress"
	}
	return "Something went wrong"
}

// WriteAJAXError renders {success: false, error} with the status StatusFor assigns.
func WriteAJAXError(err error, logger *gecho.Logger, w http.ResponseWriter) error {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("AJAX request failed", gecho.Field("error", err), gecho.WithCallerSkip(3))
	}
	return WriteJSON(w, status, map[string]any{
		"success": false,
		"error":   AJAXMessage(err),
	})
}

// IsJSONBody reports whether the request body is JSON rather than a form.
func IsJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
