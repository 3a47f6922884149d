package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorCode represents a specific error condition of a Glacier session.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Transfer errors.

	// CodeIO indicates an archive stream could not be read or released.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeTransferFault indicates the transfer resolved in a faulted state.
	CodeTransferFault ErrorCode = "TRANSFER_FAULT"

	// CodeTransferCancelled indicates cooperative cancellation took effect.
	CodeTransferCancelled ErrorCode = "TRANSFER_CANCELLED"

	// CodeChecksumMismatch indicates the service rejected or disagreed with a tree hash.
	CodeChecksumMismatch ErrorCode = "CHECKSUM_MISMATCH"

	// Job errors.

	// CodeJobNotReady indicates job output was requested before completion.
	CodeJobNotReady ErrorCode = "JOB_NOT_READY"

	// CodeParse indicates job output could not be parsed.
	CodeParse ErrorCode = "PARSE_ERROR"

	// Resource errors.

	// CodeNotFound indicates a vault, job or upload does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeRateLimit indicates the request rate or retrieval policy limit was exceeded.
	CodeRateLimit ErrorCode = "RATE_LIMIT_EXCEEDED"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Glacier API error codes as reported by smithy.APIError.ErrorCode().
const (
	apiResourceNotFound     = "ResourceNotFoundException"
	apiInvalidParameter     = "InvalidParameterValueException"
	apiMissingParameter     = "MissingParameterValueException"
	apiAccessDenied         = "AccessDeniedException"
	apiThrottling           = "ThrottlingException"
	apiLimitExceeded        = "LimitExceededException"
	apiPolicyEnforced       = "PolicyEnforcedException"
	apiInsufficientCapacity = "InsufficientCapacityException"
	apiBadDigest            = "BadDigest"
)

// CodeOf returns the ErrorCode matching the sentinel found in err's chain.
// A nil error has no code and yields the empty string.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransferCancelled):
		return CodeTransferCancelled
	case errors.Is(err, ErrChecksumMismatch):
		return CodeChecksumMismatch
	case errors.Is(err, ErrIO):
		return CodeIO
	case errors.Is(err, ErrJobNotReady):
		return CodeJobNotReady
	case errors.Is(err, ErrParse):
		return CodeParse
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrTooManyRequests):
		return CodeRateLimit
	case errors.Is(err, ErrTransferFault):
		return CodeTransferFault
	default:
		return CodeUnknown
	}
}

// Classify maps an AWS SDK error onto the sentinel taxonomy while keeping the
// original error in the chain. notFound selects the sentinel reported for
// ResourceNotFoundException, which Glacier uses for both vaults and jobs.
func Classify(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrTransferCancelled, err)
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case apiResourceNotFound:
		if notFound == nil {
			notFound = ErrVaultNotFound
		}
		return fmt.Errorf("%w: %w", notFound, err)
	case apiInvalidParameter:
		if isNotReadyMessage(apiErr.ErrorMessage()) {
			return fmt.Errorf("%w: %w", ErrJobNotReady, err)
		}
		if strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "checksum") {
			return fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
		}
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case apiMissingParameter:
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case apiBadDigest:
		return fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
	case apiAccessDenied:
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case apiThrottling, apiLimitExceeded, apiPolicyEnforced, apiInsufficientCapacity:
		return fmt.Errorf("%w: %w", ErrTooManyRequests, err)
	}
	return err
}

// isNotReadyMessage reports whether a Glacier error message describes a job
// whose output cannot be downloaded yet.
func isNotReadyMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not currently available") ||
		strings.Contains(msg, "not ready") ||
		strings.Contains(msg, "in progress") ||
		strings.Contains(msg, "inprogress")
}
