package ai

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantKind    Kind
		wantRetry   time.Duration
		rateLimited bool
	}{
		{
			name:        "generic failure",
			err:         errors.New("connection reset by peer"),
			wantKind:    KindOther,
			rateLimited: false,
		},
		{
			name:        "throttled with retry hint",
			err:         errors.New("googleapi: Error 429: Too Many Requests. Please retry in 12.3s."),
			wantKind:    KindThrottled,
			wantRetry:   13 * time.Second,
			rateLimited: true,
		},
		{
			name:        "throttled without hint",
			err:         errors.New("status 429"),
			wantKind:    KindThrottled,
			wantRetry:   DefaultRetryAfter,
			rateLimited: true,
		},
		{
			name:        "daily quota",
			err:         errors.New("429 quota exceeded for metric GenerateRequestsPerDayPerProjectPerModel, retry in 40s"),
			wantKind:    KindQuotaExhausted,
			wantRetry:   40 * time.Second,
			rateLimited: true,
		},
		{
			name:        "quota per day wording",
			err:         errors.New("RESOURCE_EXHAUSTED: Quota exceeded per model per day"),
			wantKind:    KindQuotaExhausted,
			wantRetry:   DefaultRetryAfter,
			rateLimited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.rateLimited, got.RateLimited())
			if tt.rateLimited {
				assert.Equal(t, tt.wantRetry, got.RetryAfter)
			}
			assert.True(t, errors.Is(got, tt.err))
		})
	}
}

func TestClassifyGenaiAPIError(t *testing.T) {
	apiErr := genai.APIError{
		Code:    429,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "You exceeded your current quota. Please retry in 7s.",
	}

	got := Classify(fmt.Errorf("gemini generate content: %w", apiErr))
	assert.Equal(t, KindThrottled, got.Kind)
	assert.Equal(t, 7*time.Second, got.RetryAfter)
}

func TestClassifyGenaiNonRateError(t *testing.T) {
	apiErr := genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad image"}
	got := Classify(apiErr)
	assert.Equal(t, KindOther, got.Kind)
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := &UpstreamError{Kind: KindQuotaExhausted, RetryAfter: time.Minute}
	got := Classify(fmt.Errorf("wrapped: %w", original))
	assert.Same(t, original, got)
	assert.Nil(t, Classify(nil))
}
