package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned by the API. FORBIDDEN and NOT_FOUND are kept as
// separate codes internally; handlers that must not leak resource
// existence respond with the NOT_FOUND shape for both.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeDuplicateReq    = "DUPLICATE_REQUEST"
	CodeSelfRequest     = "SELF_REQUEST"
	CodeRoomUnavailable = "ROOM_UNAVAILABLE"
	CodeAlreadyResolved = "ALREADY_RESOLVED"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to an HTTP status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeValidation, CodeSelfRequest:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeDuplicateReq, CodeRoomUnavailable, CodeAlreadyResolved:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewDuplicateRequestError signals a second submission while a PENDING
// request already exists for the same (requester, room, folder) tuple.
func NewDuplicateRequestError() *AppError {
	return &AppError{
		Code:    CodeDuplicateReq,
		Message: "an access request is already pending for this scope",
	}
}

// NewSelfRequestError signals an owner requesting access to their own room.
func NewSelfRequestError() *AppError {
	return &AppError{
		Code:    CodeSelfRequest,
		Message: "room owners cannot request access to their own room",
	}
}

// NewRoomUnavailableError signals a request against a room whose lifecycle
// state no longer accepts submissions.
func NewRoomUnavailableError(status RoomStatus) *AppError {
	return &AppError{
		Code:    CodeRoomUnavailable,
		Message: fmt.Sprintf("room is %s and not accepting access requests", status),
	}
}

// NewAlreadyResolvedError signals a resolution attempt on a request that
// already left PENDING. Losers of a resolution race receive this error.
func NewAlreadyResolvedError(status AccessRequestStatus) *AppError {
	return &AppError{
		Code:    CodeAlreadyResolved,
		Message: fmt.Sprintf("access request was already %s", status),
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
