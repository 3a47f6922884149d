// Package errors provides error types and handling for Glacier vault operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a Glacier operation error with context about the operation that failed.
// It wraps the underlying AWS SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "uploadArchive", "listJobs")
	Op string

	// Vault is the vault name (if applicable)
	Vault string

	// Resource is the archive, job or upload identifier (if applicable)
	Resource string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Vault != "" && e.Resource != "" {
		return fmt.Sprintf("glacier.%s %s/%s: %v", e.Op, e.Vault, e.Resource, e.Err)
	}
	if e.Vault != "" {
		return fmt.Sprintf("glacier.%s vault %s: %v", e.Op, e.Vault, e.Err)
	}
	if e.Resource != "" {
		return fmt.Sprintf("glacier.%s %s: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("glacier.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithVault adds vault context to an existing error.
func (e *Error) WithVault(vault string) *Error {
	e.Vault = vault
	return e
}

// WithResource adds archive, job or upload context to an existing error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewVaultError creates a new Error with vault context.
func NewVaultError(op, vault string, err error) *Error {
	return &Error{
		Op:    op,
		Vault: vault,
		Err:   err,
	}
}

// NewResourceError creates a new Error with vault and resource context.
func NewResourceError(op, vault, resource string, err error) *Error {
	return &Error{
		Op:       op,
		Vault:    vault,
		Resource: resource,
		Err:      err,
	}
}

// Sentinel errors for common Glacier operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrIO indicates that an archive stream could not be read, rewound or closed
	ErrIO = errors.New("glacier: stream i/o error")

	// ErrTransferFault indicates that an asynchronous transfer failed
	ErrTransferFault = errors.New("glacier: transfer faulted")

	// ErrTransferCancelled indicates that cooperative cancellation stopped a transfer
	ErrTransferCancelled = errors.New("glacier: transfer cancelled")

	// ErrJobNotReady indicates that job output was requested before the job finished
	ErrJobNotReady = errors.New("glacier: job output not ready")

	// ErrParse indicates that job output is not a well-formed inventory document
	ErrParse = errors.New("glacier: malformed inventory")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("glacier: invalid input")

	// ErrInvalidVaultName indicates that the vault name is invalid
	ErrInvalidVaultName = errors.New("glacier: invalid vault name")

	// ErrVaultNotFound indicates that the requested vault does not exist
	ErrVaultNotFound = errors.New("glacier: vault not found")

	// ErrJobNotFound indicates that the requested job does not exist
	ErrJobNotFound = errors.New("glacier: job not found")

	// ErrUploadNotFound indicates that no upload with the given id exists in the session
	ErrUploadNotFound = errors.New("glacier: upload not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("glacier: access denied")

	// ErrTooManyRequests indicates that the request rate or retrieval policy limit was hit
	ErrTooManyRequests = errors.New("glacier: too many requests")

	// ErrChecksumMismatch indicates that checksums don't match
	ErrChecksumMismatch = errors.New("glacier: checksum mismatch")

	// ErrClientClosed indicates that the client session has been closed
	ErrClientClosed = errors.New("glacier: client closed")
)

// IsJobNotReady checks if an error indicates that job output is not yet available.
func IsJobNotReady(err error) bool {
	return errors.Is(err, ErrJobNotReady)
}

// IsParse checks if an error indicates a malformed inventory document.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsChecksumMismatch checks if an error indicates a tree hash disagreement.
func IsChecksumMismatch(err error) bool {
	return errors.Is(err, ErrChecksumMismatch)
}

// IsIO checks if an error indicates an archive stream failure.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsInvalidInput checks if an error indicates invalid input.
// Vault name errors are reported as invalid input as well.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidVaultName)
}

// IsNotFound checks if an error indicates a missing vault, job or upload.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrVaultNotFound) ||
		errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrUploadNotFound)
}
