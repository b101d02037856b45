package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse standardizes API errors.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ValidationError writes 400 payloads.
func ValidationError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: "validation_error", Message: "invalid request"}
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		detail := make(map[string]string)
		for _, field := range verr {
			detail[strings.ToLower(field.Field())] = field.Tag()
		}
		resp.Details = detail
	}
	c.JSON(http.StatusBadRequest, resp)
}

// BadRequest helper for malformed query parameters.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: message})
}

// NotFound helper.
func NotFound(c *gin.Context, resource string) {
	msg := "resource not found"
	if resource != "" {
		msg = resource + " not found"
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: msg})
}

// Conflict helper.
func Conflict(c *gin.Context, code, message string) {
	c.JSON(http.StatusConflict, ErrorResponse{Error: code, Message: message})
}

// ServiceUnavailable helper.
func ServiceUnavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "unavailable", Message: message})
}

// InternalServerError helper.
func InternalServerError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "unexpected error"})
	if gin.IsDebugging() {
		c.Error(err) // surface for logs
	}
}

// List writes an unpaginated collection envelope.
func List(c *gin.Context, data interface{}, total int) {
	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"total": total,
	})
}
