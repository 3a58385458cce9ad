// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidInput          ErrorCode = "INVALID_INPUT"
	ErrCodeInputParsingFailed    ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeRFQNotFound           ErrorCode = "RFQ_NOT_FOUND"
	ErrCodeQuoteLoadFailed       ErrorCode = "QUOTE_LOAD_FAILED"
	ErrCodeQuoteLoadTimeout      ErrorCode = "QUOTE_LOAD_TIMEOUT"
	ErrCodeHistoryLookupFailed   ErrorCode = "VENDOR_HISTORY_LOOKUP_FAILED"
	ErrCodeScoringFailed         ErrorCode = "SCORING_FAILED"
	ErrCodeRankingPublishFailed  ErrorCode = "RANKING_PUBLISH_FAILED"
	ErrCodeRankingPublishTimeout ErrorCode = "RANKING_PUBLISH_TIMEOUT"

	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeBusinessRule     ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Scoring input is structurally invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRFQNotFoundError(rfqID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRFQNotFound,
		Message:   "RFQ not found",
		Details:   fmt.Sprintf("rfqId: %s", rfqID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewQuoteLoadFailedError(rfqID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuoteLoadFailed,
		Message:   "Failed to load RFQ documents",
		Details:   fmt.Sprintf("rfqId: %s, error: %s", rfqID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewQuoteLoadTimeoutError(rfqID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuoteLoadTimeout,
		Message:   "Timed out loading RFQ documents",
		Details:   fmt.Sprintf("rfqId: %s", rfqID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewHistoryLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryLookupFailed,
		Message:   "Vendor history lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewScoringFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringFailed,
		Message:   "Vendor scoring failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRankingPublishFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRankingPublishFailed,
		Message:   "Failed to publish vendor ranking",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewRankingPublishTimeoutError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRankingPublishTimeout,
		Message:   "Timed out publishing vendor ranking",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBusinessRule,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthentication,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// BPMNErrorMapping maps internal error codes to the error codes caught by
// boundary events in the sourcing process model.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:          "INVALID_INPUT",
	ErrCodeInputParsingFailed:    "INVALID_INPUT",
	ErrCodeRFQNotFound:           "RFQ_NOT_FOUND",
	ErrCodeQuoteLoadFailed:       "QUOTE_LOAD_FAILED",
	ErrCodeQuoteLoadTimeout:      "QUOTE_LOAD_FAILED",
	ErrCodeHistoryLookupFailed:   "VENDOR_HISTORY_UNAVAILABLE",
	ErrCodeScoringFailed:         "SCORING_FAILED",
	ErrCodeRankingPublishFailed:  "RANKING_PUBLISH_FAILED",
	ErrCodeRankingPublishTimeout: "RANKING_PUBLISH_FAILED",
}

// GetRetryCount returns the number of broker retries for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeQuoteLoadFailed,
		ErrCodeHistoryLookupFailed,
		ErrCodeRankingPublishFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeQuoteLoadTimeout,
		ErrCodeRankingPublishTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0 // business errors are thrown, not retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}
	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "RFQ") || strings.Contains(codeStr, "QUOTE"):
		return "QUOTE_STORE"
	case strings.Contains(codeStr, "HISTORY"):
		return "VENDOR_HISTORY"
	case strings.Contains(codeStr, "RANKING"):
		return "SEARCH"
	case strings.Contains(codeStr, "SCORING"):
		return "SCORING"
	default:
		return "OTHER"
	}
}
