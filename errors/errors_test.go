package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op only", NewError("listJobs", base), "glacier.listJobs: boom"},
		{"vault", NewVaultError("listJobs", "photos", base), "glacier.listJobs vault photos: boom"},
		{"vault and resource", NewResourceError("describeJob", "photos", "job-1", base), "glacier.describeJob photos/job-1: boom"},
		{"resource only", NewError("cancelUpload", base).WithResource("abc"), "glacier.cancelUpload abc: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, base)
		})
	}
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("uploadArchive", ErrInvalidInput).WithVault("v").WithMessage("description too long")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "description too long")
	assert.True(t, IsInvalidInput(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound error
		want     error
		code     ErrorCode
	}{
		{
			name:     "job not found",
			err:      &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "The job ID was not found"},
			notFound: ErrJobNotFound,
			want:     ErrJobNotFound,
			code:     CodeNotFound,
		},
		{
			name: "vault not found by default",
			err:  &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "Vault not found"},
			want: ErrVaultNotFound,
			code: CodeNotFound,
		},
		{
			name: "job not ready",
			err: &smithy.GenericAPIError{
				Code:    "InvalidParameterValueException",
				Message: "The job is not currently available for download: job-1",
			},
			want: ErrJobNotReady,
			code: CodeJobNotReady,
		},
		{
			name: "checksum rejected",
			err: &smithy.GenericAPIError{
				Code:    "InvalidParameterValueException",
				Message: "Checksum mismatch: expected abc",
			},
			want: ErrChecksumMismatch,
			code: CodeChecksumMismatch,
		},
		{
			name: "other invalid parameter",
			err:  &smithy.GenericAPIError{Code: "InvalidParameterValueException", Message: "Invalid tier"},
			want: ErrInvalidInput,
			code: CodeInvalidInput,
		},
		{
			name: "throttled",
			err:  &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"},
			want: ErrTooManyRequests,
			code: CodeRateLimit,
		},
		{
			name: "access denied",
			err:  &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no"},
			want: ErrAccessDenied,
			code: CodeForbidden,
		},
		{
			name: "cancelled context",
			err:  fmt.Errorf("operation error: %w", context.Canceled),
			want: ErrTransferCancelled,
			code: CodeTransferCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, tt.notFound)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
			assert.Equal(t, tt.code, CodeOf(got))
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, Classify(nil, nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, Classify(plain, nil))

	unknown := &smithy.GenericAPIError{Code: "ServiceUnavailableException"}
	assert.Equal(t, CodeUnknown, CodeOf(Classify(unknown, nil)))
}

func TestCodeOf_Wrapped(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, CodeIO, CodeOf(NewError("uploadArchive", ErrIO)))
	assert.Equal(t, CodeParse, CodeOf(fmt.Errorf("x: %w", ErrParse)))
	assert.Equal(t, CodeTransferFault, CodeOf(fmt.Errorf("%w: network", ErrTransferFault)))
	assert.Equal(t, CodeNotFound, CodeOf(ErrUploadNotFound))
}
