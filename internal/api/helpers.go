package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rgehrsitz/aishcalc/internal/breakeven"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies, imports included
const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error   string             `json:"error"`
	Details []validationDetail `json:"details,omitempty"`
}

type validationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleServiceError maps domain errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		logger.Debug("invalid input", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, breakeven.ErrUnreachable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrMissingCollections), errors.Is(err, domain.ErrMalformedSnapshot):
		logger.Warn("rejected import", zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs the struct
// validator. It writes the 400 response itself and reports false on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, formatValidationErrors(err))
		return false
	}
	return true
}

func formatValidationErrors(err error) errorResponse {
	resp := errorResponse{Error: "request validation failed"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			resp.Details = append(resp.Details, validationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
	}
	return resp
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "numeric":
		return "Must be numeric"
	case "datetime":
		return "Must be a date in " + e.Param() + " form"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		return "Must have at least " + e.Param() + " entries"
	case "max":
		return "Must be at most " + e.Param() + " characters"
	default:
		return "Invalid value"
	}
}
