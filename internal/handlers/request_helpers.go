package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"verdant/internal/auth"
	"verdant/internal/logging"
	"verdant/internal/middleware"
	"verdant/internal/services"
)

const requestTimeout = 5 * time.Second

//nolint:gochecknoinits // validation errors should name JSON fields
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logging.Ctx(c.Request.Context()).Error().Str("route", route).Interface("panic", r).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	logging.Ctx(c.Request.Context()).Warn().Str("route", route).Int("status", status).Msg(message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			details = append(details, describeFieldError(fieldError))
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": []string{err.Error()}})
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(c *gin.Context, route string, err error) {
	var (
		verr *services.ValidationError
		nerr *services.NotFoundError
		ferr *services.ForbiddenError
	)
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if len(verr.Details) > 0 {
			body["details"] = verr.Details
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
	case errors.Is(err, services.ErrInvalidID):
		respondWithError(c, http.StatusBadRequest, route, "invalid id")
	case errors.As(err, &nerr):
		respondWithError(c, http.StatusNotFound, route, capitalize(nerr.Error()))
	case errors.As(err, &ferr):
		respondWithError(c, http.StatusForbidden, route, ferr.Reason)
	case errors.Is(err, services.ErrUnauthorized):
		respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
	case errors.Is(err, services.ErrConflict):
		respondWithError(c, http.StatusConflict, route, "conflict")
	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("route", route).Msg("request timed out")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("route", route).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseIDParam(c *gin.Context, route, name string) (primitive.ObjectID, bool) {
	id, err := services.ParseID(c.Param(name))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// caller returns the identity set by the auth guard.
func caller(c *gin.Context, route string) (auth.Identity, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "No token, authorization denied")
	}
	return id, ok
}

// flexibleTime accepts RFC 3339 timestamps, "YYYY-MM-DDTHH:MM" and plain
// dates. Plain dates are midnight UTC. null and "" leave it unset.
type flexibleTime struct {
	time.Time
}

var flexibleLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func (f *flexibleTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

// Ptr returns nil for an unset value.
func (f *flexibleTime) Ptr() *time.Time {
	if f == nil || f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}
