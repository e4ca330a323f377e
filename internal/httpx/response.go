package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kitchenpos/internal/logger"
	"kitchenpos/internal/models"
	"kitchenpos/internal/validation"
)

// ErrMalformedRequest is returned when a request body or path parameter cannot be read
var ErrMalformedRequest = errors.New("malformed request")

// DecodeJSON reads the request body into dst, rejecting unknown fields
func DecodeJSON(c *gin.Context, dst interface{}) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return nil
}

// ParseID reads a positive integer path parameter
func ParseID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrMalformedRequest, name, raw)
	}
	return id, nil
}

// StatusFor maps a service error to an HTTP status code.
// Missing tables are a 400 while creating an order and a 404 on table endpoints,
// so tableNotFound lets the caller choose.
func StatusFor(err error, tableNotFound int) int {
	var verr validation.ValidationError
	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrOrderAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, models.ErrTableNotFound):
		return tableNotFound
	case errors.Is(err, models.ErrInvalidOrder),
		errors.Is(err, models.ErrInvalidOrderStatus),
		errors.Is(err, models.ErrMenuNotFound),
		errors.Is(err, models.ErrTableEmpty),
		errors.Is(err, models.ErrInvalidTable),
		errors.Is(err, models.ErrInvalidMenuGroup),
		errors.Is(err, models.ErrInvalidProduct),
		errors.Is(err, models.ErrInvalidMenu),
		errors.Is(err, models.ErrMenuGroupNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, ErrMalformedRequest),
		errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError logs err and writes the error body. Internal errors are not exposed.
func WriteError(c *gin.Context, log *logger.Logger, action string, err error, status int) {
	requestID := RequestID(c)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error(action, "Request failed", requestID, err, map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		message = "Internal server error"
	} else {
		log.Debug(action, message, requestID, map[string]interface{}{
			"path":        c.Request.URL.Path,
			"status_code": status,
		})
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}
