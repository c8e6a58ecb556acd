package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error is the application error carried from services up to the HTTP
// error handler, which maps Code to the response status.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Authentication means no valid caller identity.
func Authentication(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return &Error{Code: fiber.StatusUnauthorized, Message: message}
}

// SessionAccess merges not-found and not-owned so callers cannot tell
// other users' sessions apart from missing ones.
func SessionAccess() *Error {
	return &Error{Code: fiber.StatusNotFound, Message: "session not found or access denied"}
}

func NotFound(message string) *Error {
	return &Error{Code: fiber.StatusNotFound, Message: message}
}

func Validation(message string) *Error {
	return &Error{Code: fiber.StatusBadRequest, Message: message}
}

// As unwraps err into an *Error if possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
