// Package errors provides the tagged error values returned by the prediction
// pipeline and the mapping of those tags onto transports.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Prediction pipeline errors.
const (
	ErrCodeMissingFeature            ErrorCode = "MISSING_FEATURE"
	ErrCodeInvalidNumericValue       ErrorCode = "INVALID_NUMERIC_VALUE"
	ErrCodeArtifactUnavailable       ErrorCode = "ARTIFACT_UNAVAILABLE"
	ErrCodeEncodingWidthMismatch     ErrorCode = "ENCODING_WIDTH_MISMATCH"
	ErrCodeInternalPredictionFailure ErrorCode = "INTERNAL_PREDICTION_FAILURE"
)

// Supporting errors raised around the pipeline.
const (
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeArtifactLoadFailed ErrorCode = "ARTIFACT_LOAD_FAILED"
	ErrCodeArtifactInvalid    ErrorCode = "ARTIFACT_INVALID"
	ErrCodeCacheFailure       ErrorCode = "CACHE_FAILURE"
	ErrCodeAlertPublishFailed ErrorCode = "ALERT_PUBLISH_FAILED"
	ErrCodeWorkflowEngine     ErrorCode = "WORKFLOW_ENGINE_ERROR"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

const internalFailurePublicMsg = "Prediction failed. See server logs for details."

// Artifact names carried in ARTIFACT_UNAVAILABLE metadata.
const (
	ArtifactClassifier = "classifier"
	ArtifactEncoder    = "encoder"
)

// StandardError represents a structured application error.
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

// Is matches on Code so callers can use errors.Is against a sentinel built
// with the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Feature returns the offending feature name for MISSING_FEATURE and
// INVALID_NUMERIC_VALUE errors.
func (e *StandardError) Feature() string {
	if v, ok := e.Metadata["feature"].(string); ok {
		return v
	}
	return ""
}

// Public returns the representation safe to hand to a caller. Internal
// failures are reduced to a generic message.
func (e *StandardError) Public() PublicError {
	if e.Code == ErrCodeInternalPredictionFailure || e.Code == ErrCodeInternal {
		return PublicError{Code: e.Code, Error: internalFailurePublicMsg}
	}
	return PublicError{Code: e.Code, Error: e.Message}
}

// PublicError is the body returned to API callers.
type PublicError struct {
	Code  ErrorCode `json:"code"`
	Error string    `json:"error"`
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
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

// ToErrorVariables returns a map suitable for setting job fail variables.
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

// ==========================
// 3. Error Constructors
// ==========================

// NewMissingFeatureError reports a schema slot absent from the submitted record.
func NewMissingFeatureError(feature string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFeature,
		Message:   fmt.Sprintf("Missing feature: %s", feature),
		Details:   fmt.Sprintf("feature: %s", feature),
		Retryable: false,
		Metadata:  map[string]interface{}{"feature": feature},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidNumericValueError reports a numeric slot whose value cannot be coerced.
func NewInvalidNumericValueError(feature string, value interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidNumericValue,
		Message:   fmt.Sprintf("Invalid numeric value for %s", feature),
		Details:   fmt.Sprintf("feature: %s, value: %v (%T)", feature, value, value),
		Retryable: false,
		Metadata:  map[string]interface{}{"feature": feature},
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactUnavailableError reports a classifier or encoder that failed to load.
func NewArtifactUnavailableError(artifact string) *StandardError {
	msg := "Model not loaded. Create a model with `riskctl stub-model` or place a valid model artifact at the configured path."
	if artifact == ArtifactEncoder {
		msg = "Encoder not loaded. Encoder artifact is required for this model."
	}
	return &StandardError{
		Code:      ErrCodeArtifactUnavailable,
		Message:   msg,
		Details:   fmt.Sprintf("artifact: %s", artifact),
		Retryable: true,
		Metadata:  map[string]interface{}{"artifact": artifact},
		Timestamp: time.Now().UTC(),
	}
}

// NewEncodingWidthMismatchError reports an encoded row that disagrees with the
// classifier's input width.
func NewEncodingWidthMismatchError(expected, actual int) *StandardError {
	return &StandardError{
		Code:      ErrCodeEncodingWidthMismatch,
		Message:   "Encoded input width does not match the classifier",
		Details:   fmt.Sprintf("expected: %d, actual: %d", expected, actual),
		Retryable: false,
		Metadata:  map[string]interface{}{"expected": expected, "actual": actual},
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalPredictionFailureError wraps an unexpected classifier failure.
// Details are for server-side logs only; Public() never exposes them.
func NewInternalPredictionFailureError(cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternalPredictionFailure,
		Message:   internalFailurePublicMsg,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestBodyError reports a request body that is not a JSON object.
func NewInvalidRequestBodyError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   "Request body must be a JSON object of feature values",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactLoadFailedError reports an artifact that could not be read from its source.
func NewArtifactLoadFailedError(artifact, location string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactLoadFailed,
		Message:   fmt.Sprintf("Could not load %s", artifact),
		Details:   fmt.Sprintf("location: %s, error: %s", location, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"artifact": artifact, "location": location},
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactInvalidError reports an artifact document that failed validation.
func NewArtifactInvalidError(artifact, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactInvalid,
		Message:   fmt.Sprintf("Invalid %s artifact", artifact),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"artifact": artifact},
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheFailureError wraps a prediction cache error.
func NewCacheFailureError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailure,
		Message:   "Prediction cache error",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertPublishFailedError wraps a risk alert delivery error.
func NewAlertPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertPublishFailed,
		Message:   "Risk alert delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkflowEngineError wraps a Zeebe gateway failure.
func NewWorkflowEngineError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowEngine,
		Message:   fmt.Sprintf("Workflow engine operation %s failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Inspection helpers
// ==========================

// AsStandardError unwraps err to a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or INTERNAL_ERROR for untagged errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// Normalize guarantees a *StandardError, tagging unknown errors as internal.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code onto a response status class.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeMissingFeature, ErrCodeInvalidNumericValue, ErrCodeInvalidRequestBody:
		return http.StatusBadRequest
	case ErrCodeArtifactUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory groups codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMissingFeature, ErrCodeInvalidNumericValue, ErrCodeInvalidRequestBody:
		return "CLIENT"
	case ErrCodeArtifactUnavailable, ErrCodeArtifactLoadFailed, ErrCodeArtifactInvalid:
		return "ARTIFACT"
	case ErrCodeCacheFailure, ErrCodeAlertPublishFailed, ErrCodeWorkflowEngine:
		return "INTEGRATION"
	default:
		return "INTERNAL"
	}
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeArtifactUnavailable, ErrCodeArtifactLoadFailed:
		return 3
	case ErrCodeCacheFailure, ErrCodeAlertPublishFailed, ErrCodeWorkflowEngine:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for the workflow engine.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	public := stdErr.Public()
	details := stdErr.Details
	if stdErr.Code == ErrCodeInternalPredictionFailure || stdErr.Code == ErrCodeInternal {
		details = ""
	}
	vars := map[string]interface{}{}
	if feature := stdErr.Feature(); feature != "" {
		vars["feature"] = feature
	}
	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        public.Error,
		Details:        details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: vars,
	}
}
