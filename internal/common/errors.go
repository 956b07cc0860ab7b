package common

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrValidation   = errors.New("validation failed")
)

// Local validation errors. These are returned before any network call.
var (
	ErrEmptyBatch         = errors.New("batch has no pages")
	ErrEmptyText          = errors.New("contract text is empty")
	ErrEmptyContext       = errors.New("letter context is empty")
	ErrInvalidDisputeType = errors.New("unknown dispute type")
	ErrIndexOutOfRange    = errors.New("page index out of range")
	ErrPageNotFound       = errors.New("page not found")
	ErrNoDraft            = errors.New("no letter draft")
)

// Stage failures. They wrap the transport cause.
var (
	ErrIngestionFailed = errors.New("ingestion failed")
	ErrAnalysisFailed  = errors.New("analysis failed")
	ErrLetterFailed    = errors.New("letter generation failed")
	ErrSuperseded      = errors.New("superseded by a newer request")
	ErrQueueClosed     = errors.New("queue is shut down")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// StageError marks err as a failure of the given stage while keeping the cause reachable.
func StageError(stage error, cause error) error {
	if cause == nil {
		return stage
	}
	return fmt.Errorf("%w: %w", stage, cause)
}

// IsValidation reports whether err is a local validation error.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrEmptyBatch),
		errors.Is(err, ErrEmptyText),
		errors.Is(err, ErrEmptyContext),
		errors.Is(err, ErrInvalidDisputeType),
		errors.Is(err, ErrIndexOutOfRange),
		errors.Is(err, ErrPageNotFound),
		errors.Is(err, ErrNoDraft),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrValidation):
		return true
	}
	return false
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func UnavailableError(message string) error {
	return status.Error(codes.Unavailable, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// CodeFromHTTP classifies a collaborator HTTP status as a gRPC code.
func CodeFromHTTP(httpStatus int) codes.Code {
	switch {
	case httpStatus >= 200 && httpStatus < 300:
		return codes.OK
	case httpStatus == http.StatusBadRequest, httpStatus == http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case httpStatus == http.StatusUnauthorized:
		return codes.Unauthenticated
	case httpStatus == http.StatusForbidden:
		return codes.PermissionDenied
	case httpStatus == http.StatusNotFound:
		return codes.NotFound
	case httpStatus == http.StatusRequestTimeout, httpStatus == http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	case httpStatus == http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case httpStatus == http.StatusNotImplemented:
		return codes.Unimplemented
	case httpStatus == http.StatusBadGateway, httpStatus == http.StatusServiceUnavailable:
		return codes.Unavailable
	case httpStatus >= 500:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// CodeOf returns the gRPC classification carried by err, or Unknown.
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if IsValidation(err) {
		return codes.InvalidArgument
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	var gs interface{ GRPCStatus() *status.Status }
	if errors.As(err, &gs) {
		return gs.GRPCStatus().Code()
	}
	return codes.Unknown
}
