package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/lifecycle"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/policy"
	"github.com/EASYDRIVECANADA/warrantyhub-sub002/internal/store"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps the domain error taxonomy to HTTP. Authorization denials on
// reads are already converted to not-found in the service layer, so
// forbidden here means a write the actor could see but not perform; it is
// still reported as not_found to keep the two paths indistinguishable.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		JSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, policy.ErrForbidden):
		JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, store.ErrLocked):
		JSONError(w, http.StatusConflict, "locked", err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		JSONError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, store.ErrAlreadyExists):
		JSONError(w, http.StatusConflict, "already_exists", nil)
	case errors.Is(err, store.ErrBackendUnavailable):
		JSONError(w, http.StatusServiceUnavailable, "backend_unavailable", nil)
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
