package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an error with the HTTP status it should be reported with.
type Error struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func BadRequest(message string, err error) *Error {
	return New(http.StatusBadRequest, message, err)
}

func NotFound(message string, err error) *Error {
	return New(http.StatusNotFound, message, err)
}

func Conflict(message string, err error) *Error {
	return New(http.StatusConflict, message, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "Internal server error", err)
}

// Validation reports every message in details with a 400.
func Validation(details []string) *Error {
	e := New(http.StatusBadRequest, "Validation failed", nil)
	e.Details = details
	return e
}

// Respond writes err as {"error": message} with its status code. Errors that
// are not *Error are reported as 500 without leaking their text.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = Internal(err)
	}
	body := gin.H{"error": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	if appErr.Code >= http.StatusInternalServerError && appErr.Err != nil {
		_ = c.Error(appErr.Err)
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}
