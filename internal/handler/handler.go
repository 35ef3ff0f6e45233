package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"ordersvc/internal/middleware"
	"ordersvc/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// validate is shared by all handlers; the validator is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// statusForCode maps domain error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeInvalidTransition:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates service errors into HTTP responses. Business-rule
// violations keep their code and details; everything else becomes an opaque
// internal error.
func respondError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	if de := model.AsDomainError(err); de != nil {
		status := statusForCode(de.Code)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg("handler error")
		} else {
			logger.Warn().Str("code", de.Code).Str("error", de.Message).Int("status", status).Msg("request rejected")
		}
		writeJSON(w, status, ErrorResponse{Error: de.Message, Code: de.Code, Details: de.Details})
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  model.ErrCodeInternalError,
	})
}

// decodeAndValidate decodes the JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.ValidationError("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return model.ValidationError("request validation failed").
				WithDetails(map[string]any{"fields": fields})
		}
		return model.ValidationError("request validation failed")
	}
	return nil
}

// principal returns the caller attached by the auth middleware.
func principal(r *http.Request) (model.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return model.Principal{}, model.NewDomainError(model.ErrCodeUnauthorised, "missing caller identity")
	}
	return p, nil
}

// orderIDParam parses the {id} path parameter.
func orderIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, model.ValidationError("invalid order ID format")
	}
	return id, nil
}
