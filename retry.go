package glacier

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/smithy-go"
)

// Default retry settings used by NewRetryer when zero values are given.
const (
	DefaultRetryAttempts = 10
	DefaultRetryBase     = 100 * time.Millisecond
	DefaultRetryMaxDelay = 30 * time.Second
)

// Retryer implements aws.Retryer with exponential backoff and jitter.
// It retries the transient error codes Glacier returns and nothing else.
//
// Thread Safety: all fields are set at creation time and never modified.
type Retryer struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewRetryer creates a Retryer. Zero or negative values select the defaults.
func NewRetryer(maxAttempts int, baseDelay, maxDelay time.Duration) *Retryer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultRetryAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBase
	}
	if maxDelay <= 0 {
		maxDelay = DefaultRetryMaxDelay
	}
	return &Retryer{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
	}
}

// MaxAttempts returns the maximum number of attempts, the first one included.
func (r *Retryer) MaxAttempts() int {
	return r.maxAttempts
}

// RetryDelay returns the backoff before the given attempt:
// baseDelay * 2^(attempt-1) with ±25% jitter, capped at maxDelay.
func (r *Retryer) RetryDelay(attempt int, _ error) (time.Duration, error) {
	if attempt < 1 {
		attempt = 1
	}

	exp := math.Pow(2, float64(attempt-1))
	if exp > float64(r.maxDelay/r.baseDelay) {
		return r.maxDelay, nil
	}
	delay := time.Duration(exp) * r.baseDelay

	jitterRange := int64(float64(delay) * 0.25)
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(2*jitterRange) - jitterRange)
	}

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	if delay < 0 {
		delay = 0
	}

	return delay, nil
}

// IsErrorRetryable reports whether err is a transient Glacier failure.
func (r *Retryer) IsErrorRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException",
			"RequestTimeoutException",
			"ServiceUnavailableException",
			"TooManyRequestsException",
			"SlowDown":
			return true
		}
	}

	// Connection failures and 5xx responses. Other API errors, including
	// invalid parameters, missing resources, denied access and retrieval
	// policy limits, are permanent.
	return transientFailures.IsErrorRetryable(err) == aws.TrueTernary
}

// transientFailures are the SDK's standard checks minus its throttle code
// list, which treats Glacier's LimitExceededException as transient.
var transientFailures = retry.IsErrorRetryables{
	retry.NoRetryCanceledError{},
	retry.RetryableError{},
	retry.RetryableConnectionError{},
	retry.RetryableHTTPStatusCode{Codes: retry.DefaultRetryableHTTPStatusCodes},
}

// GetRetryToken always grants a retry; the token release is a no-op.
func (r *Retryer) GetRetryToken(context.Context, error) (func(error) error, error) {
	return func(error) error { return nil }, nil
}

// GetInitialToken returns a no-op release function.
func (r *Retryer) GetInitialToken() func(error) error {
	return func(error) error { return nil }
}

// Ensure Retryer implements aws.Retryer
var _ aws.Retryer = (*Retryer)(nil)
