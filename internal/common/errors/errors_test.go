package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_CarryFeatureMetadata(t *testing.T) {
	missing := NewMissingFeatureError("X5")
	assert.Equal(t, ErrCodeMissingFeature, missing.Code)
	assert.Equal(t, "X5", missing.Feature())
	assert.Equal(t, "Missing feature: X5", missing.Message)

	invalid := NewInvalidNumericValueError("X3", "abc")
	assert.Equal(t, ErrCodeInvalidNumericValue, invalid.Code)
	assert.Equal(t, "X3", invalid.Feature())
	assert.Equal(t, "Invalid numeric value for X3", invalid.Message)
	assert.Contains(t, invalid.Details, "abc")
}

func TestArtifactUnavailable_Messages(t *testing.T) {
	clf := NewArtifactUnavailableError(ArtifactClassifier)
	enc := NewArtifactUnavailableError(ArtifactEncoder)

	assert.Contains(t, clf.Message, "Model not loaded")
	assert.Contains(t, enc.Message, "Encoder not loaded")
	assert.Equal(t, "encoder", enc.Metadata["artifact"])
}

func TestPublic_HidesInternalDetails(t *testing.T) {
	err := NewInternalPredictionFailureError(fmt.Errorf("index out of range [3] with length 2"))

	public := err.Public()
	assert.Equal(t, ErrCodeInternalPredictionFailure, public.Code)
	assert.Equal(t, "Prediction failed. See server logs for details.", public.Error)
	assert.NotContains(t, public.Error, "index out of range")
	assert.Contains(t, err.Details, "index out of range")
}

func TestAsStandardError_Wrapped(t *testing.T) {
	base := NewMissingFeatureError("X1")
	wrapped := fmt.Errorf("build vector: %w", base)

	got, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)
	assert.Equal(t, ErrCodeMissingFeature, CodeOf(wrapped))
	assert.True(t, stderrors.Is(wrapped, &StandardError{Code: ErrCodeMissingFeature}))
	assert.False(t, stderrors.Is(wrapped, &StandardError{Code: ErrCodeInvalidNumericValue}))
}

func TestNormalize_UntaggedError(t *testing.T) {
	std := Normalize(stderrors.New("disk on fire"))
	assert.Equal(t, ErrCodeInternal, std.Code)
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("x")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeMissingFeature, http.StatusBadRequest},
		{ErrCodeInvalidNumericValue, http.StatusBadRequest},
		{ErrCodeInvalidRequestBody, http.StatusBadRequest},
		{ErrCodeArtifactUnavailable, http.StatusServiceUnavailable},
		{ErrCodeEncodingWidthMismatch, http.StatusInternalServerError},
		{ErrCodeInternalPredictionFailure, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("client error keeps feature variable", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewMissingFeatureError("X7"))
		assert.Equal(t, "MISSING_FEATURE", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "X7", vars["feature"])
		assert.Equal(t, "MISSING_FEATURE", vars["errorCode"])
	})

	t.Run("internal failure drops details", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInternalPredictionFailureError(stderrors.New("nil map write")))
		assert.Empty(t, bpmn.Details)
		assert.Equal(t, "Prediction failed. See server logs for details.", bpmn.Message)
	})

	t.Run("artifact unavailable is retried", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewArtifactUnavailableError(ArtifactClassifier))
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)
	})
}

func TestRetriesFor(t *testing.T) {
	assert.Equal(t, int32(3), RetriesFor(ErrCodeArtifactUnavailable, 5))
	assert.Equal(t, int32(1), RetriesFor(ErrCodeArtifactUnavailable, 2))
	assert.Equal(t, int32(0), RetriesFor(ErrCodeMissingFeature, 3))
	assert.True(t, ShouldRetry(NewArtifactUnavailableError(ArtifactEncoder), 1))
	assert.False(t, ShouldRetry(NewArtifactUnavailableError(ArtifactEncoder), 0))
	assert.False(t, ShouldRetry(NewMissingFeatureError("X1"), 3))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CLIENT", GetErrorCategory(ErrCodeMissingFeature))
	assert.Equal(t, "ARTIFACT", GetErrorCategory(ErrCodeArtifactUnavailable))
	assert.Equal(t, "INTEGRATION", GetErrorCategory(ErrCodeCacheFailure))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeEncodingWidthMismatch))
}
