package serverutils

import "github.com/gofiber/fiber/v2"

// Stable error codes. Clients branch on these, so they never change
// even when messages do.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidAPIKey   = "INVALID_API_KEY"
	CodeRateLimited     = "RATE_LIMITED"
	CodePipelineTimeout = "PIPELINE_TIMEOUT"
	CodePipelineFailed  = "PIPELINE_FAILED"
	CodeNotFound        = "NOT_FOUND"
)

type AppError struct {
	Status    int
	ErrorCode string
	Message   string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, errorCode, message string) *AppError {
	return &AppError{Status: status, ErrorCode: errorCode, Message: message}
}

func InvalidInputError(message string) *AppError {
	return NewAppError(fiber.StatusBadRequest, CodeInvalidInput, message)
}

func NotFoundError(message string) *AppError {
	return NewAppError(fiber.StatusNotFound, CodeNotFound, message)
}

func InvalidAPIKeyError(message string) *AppError {
	return NewAppError(fiber.StatusBadGateway, CodeInvalidAPIKey, message)
}

func RateLimitedError(message string) *AppError {
	return NewAppError(fiber.StatusTooManyRequests, CodeRateLimited, message)
}

func PipelineTimeoutError(message string) *AppError {
	return NewAppError(fiber.StatusGatewayTimeout, CodePipelineTimeout, message)
}

func PipelineFailedError(message string) *AppError {
	return NewAppError(fiber.StatusInternalServerError, CodePipelineFailed, message)
}
