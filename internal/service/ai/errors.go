package ai

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Kind separates upstream failures the caller reacts to differently.
type Kind string

const (
	// KindThrottled is short-lived upstream rate limiting; retry after the hint.
	KindThrottled Kind = "throttled"
	// KindQuotaExhausted is a hard daily ceiling; retrying today is pointless.
	KindQuotaExhausted Kind = "quota_exhausted"
	KindOther          Kind = "other"
)

// DefaultRetryAfter is used when a rate signal carries no retry hint.
const DefaultRetryAfter = 30 * time.Second

// UpstreamError is the single classified failure type returned by every Model.
type UpstreamError struct {
	Kind       Kind
	RetryAfter time.Duration
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindThrottled:
		return fmt.Sprintf("upstream throttled, retry after %s: %s", e.RetryAfter, e.Detail)
	case KindQuotaExhausted:
		return fmt.Sprintf("upstream quota exhausted: %s", e.Detail)
	default:
		return fmt.Sprintf("upstream failure: %s", e.Detail)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the failure is a throttle or quota signal.
func (e *UpstreamError) RateLimited() bool {
	return e.Kind == KindThrottled || e.Kind == KindQuotaExhausted
}

var (
	dailyQuotaPattern = regexp.MustCompile(`(?i)GenerateRequestsPerDayPerProjectPerModel|quota.*per.*day`)
	retryPattern      = regexp.MustCompile(`(?i)retry.*?(\d+(\.\d+)?)s`)
)

// Classify turns any error from a provider SDK into an *UpstreamError. Errors
// that are already classified pass through unchanged.
func Classify(err error) *UpstreamError {
	if err == nil {
		return nil
	}

	var classified *UpstreamError
	if errors.As(err, &classified) {
		return classified
	}

	raw := err.Error()
	rateSignal := strings.Contains(raw, "429") || strings.Contains(raw, "RESOURCE_EXHAUSTED")

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		raw = fmt.Sprintf("%s %s %v", apiErr.Status, apiErr.Message, apiErr.Details)
		rateSignal = apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED"
	}

	if !rateSignal {
		return &UpstreamError{Kind: KindOther, Detail: err.Error(), Err: err}
	}

	kind := KindThrottled
	if dailyQuotaPattern.MatchString(raw) {
		kind = KindQuotaExhausted
	}

	return &UpstreamError{
		Kind:       kind,
		RetryAfter: parseRetryAfter(raw),
		Detail:     err.Error(),
		Err:        err,
	}
}

func parseRetryAfter(raw string) time.Duration {
	m := retryPattern.FindStringSubmatch(raw)
	if m == nil {
		return DefaultRetryAfter
	}

	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil || secs <= 0 {
		return DefaultRetryAfter
	}
	return time.Duration(math.Ceil(secs)) * time.Second
}
