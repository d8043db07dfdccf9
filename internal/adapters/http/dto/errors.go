// Package dto holds the JSON shapes of the HTTP API and the mapping from
// domain errors to error envelopes.
package dto

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail carries a machine-readable code. Details holds per-field
// messages for validation failures and the written/failed paths of a
// partial write.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeConflict     = "CONFLICT"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal     = "INTERNAL_ERROR"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeBadRequest   = "BAD_REQUEST"
	ErrorCodePartialWrite = "PARTIAL_WRITE"
)

const internalMessage = "an internal error occurred"

var statusByCode = map[string]int{
	ErrorCodeNotFound:     http.StatusNotFound,
	ErrorCodeConflict:     http.StatusConflict,
	ErrorCodeValidation:   http.StatusBadRequest,
	ErrorCodeBadRequest:   http.StatusBadRequest,
	ErrorCodeForbidden:    http.StatusForbidden,
	ErrorCodeUnauthorized: http.StatusUnauthorized,
	ErrorCodeUnavailable:  http.StatusServiceUnavailable,
	ErrorCodePartialWrite: http.StatusBadGateway,
	ErrorCodeTimeout:      http.StatusGatewayTimeout,
}

// HTTPStatusFromCode returns the status for an error code; unknown codes
// are 500.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// NewErrorResponse builds an envelope without details.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// errorRules is checked in order. A partial write wraps the failure of the
// path that did not land, usually an unavailable error, so it comes first.
var errorRules = []struct {
	match   func(error) bool
	code    string
	details func(error) map[string]string
}{
	{domain.IsPartialWrite, ErrorCodePartialWrite, partialWriteDetails},
	{domain.IsValidation, ErrorCodeValidation, validationDetails},
	{domain.IsNotFound, ErrorCodeNotFound, nil},
	{domain.IsConflict, ErrorCodeConflict, nil},
	{domain.IsAnonymous, ErrorCodeUnauthorized, nil},
	{domain.IsPermissionDenied, ErrorCodeForbidden, nil},
	{domain.IsUnavailable, ErrorCodeUnavailable, nil},
}

// MapDomainError returns the status and envelope for err. Errors outside
// the domain taxonomy become a 500 whose message hides the cause.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	for _, rule := range errorRules {
		if !rule.match(err) {
			continue
		}

		resp := NewErrorResponse(rule.code, err.Error())
		if rule.details != nil {
			resp.Error.Details = rule.details(err)
		}

		return HTTPStatusFromCode(rule.code), resp
	}

	return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, internalMessage)
}

func partialWriteDetails(err error) map[string]string {
	var pw *domain.PartialWriteError
	if !errors.As(err, &pw) {
		return nil
	}

	return map[string]string{
		"operation": pw.Operation,
		"written":   strings.Join(pw.Written, ","),
		"failed":    strings.Join(pw.Failed, ","),
	}
}

func validationDetails(err error) map[string]string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field == "" {
		return nil
	}

	return map[string]string{ve.Field: ve.Message}
}

// HandleError aborts with the envelope for err. 5xx responses are logged
// with the underlying error since the body does not carry it.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "request failed",
			slog.Int("status", status),
			slog.String("code", resp.Error.Code),
			slog.Any("error", err),
		)
	}

	abort(c, status, resp)
}

// HandleBindError aborts with 400 for a failed bind. Validator failures
// carry per-field details; anything else is a malformed request.
func HandleBindError(c *gin.Context, err error) {
	fields := ValidationErrors(err)
	if len(fields) == 0 {
		Abort(c, ErrorCodeBadRequest, "malformed request")
		return
	}

	resp := NewErrorResponse(ErrorCodeValidation, "request validation failed")
	resp.Error.Details = fields

	abort(c, http.StatusBadRequest, resp)
}

// Abort ends the request with code and message, for failures that have no
// domain error behind them: unknown routes, missing credentials, panics.
func Abort(c *gin.Context, code, message string) {
	abort(c, HTTPStatusFromCode(code), NewErrorResponse(code, message))
}

// AbortInternal is Abort for an unexpected failure.
func AbortInternal(c *gin.Context) {
	Abort(c, ErrorCodeInternal, internalMessage)
}

func abort(c *gin.Context, status int, resp *ErrorResponse) {
	resp.TraceID = GetTraceID(c)
	c.AbortWithStatusJSON(status, resp)
}

// GetTraceID returns the request span's trace id, or "" when untraced.
func GetTraceID(c *gin.Context) string {
	sc := trace.SpanFromContext(c.Request.Context()).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}

	return sc.TraceID().String()
}
