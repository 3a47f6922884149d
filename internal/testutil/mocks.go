// Package testutil provides test utilities and mocks for Glacier operations.
// This package is internal and should only be used for testing within the Glacier module.
package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/glacier"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/glacierapi"
)

// MockGlacierClient is a mock implementation of the GlacierAPI interface for testing.
// It allows customization of each Glacier operation through function fields.
type MockGlacierClient struct {
	UploadArchiveFunc           func(context.Context, *glacier.UploadArchiveInput, ...func(*glacier.Options)) (*glacier.UploadArchiveOutput, error)
	InitiateMultipartUploadFunc func(context.Context, *glacier.InitiateMultipartUploadInput, ...func(*glacier.Options)) (*glacier.InitiateMultipartUploadOutput, error)
	UploadMultipartPartFunc     func(context.Context, *glacier.UploadMultipartPartInput, ...func(*glacier.Options)) (*glacier.UploadMultipartPartOutput, error)
	CompleteMultipartUploadFunc func(context.Context, *glacier.CompleteMultipartUploadInput, ...func(*glacier.Options)) (*glacier.CompleteMultipartUploadOutput, error)
	AbortMultipartUploadFunc    func(context.Context, *glacier.AbortMultipartUploadInput, ...func(*glacier.Options)) (*glacier.AbortMultipartUploadOutput, error)
	InitiateJobFunc             func(context.Context, *glacier.InitiateJobInput, ...func(*glacier.Options)) (*glacier.InitiateJobOutput, error)
	ListJobsFunc                func(context.Context, *glacier.ListJobsInput, ...func(*glacier.Options)) (*glacier.ListJobsOutput, error)
	DescribeJobFunc             func(context.Context, *glacier.DescribeJobInput, ...func(*glacier.Options)) (*glacier.DescribeJobOutput, error)
	GetJobOutputFunc            func(context.Context, *glacier.GetJobOutputInput, ...func(*glacier.Options)) (*glacier.GetJobOutputOutput, error)
}

// UploadArchive mocks the Glacier UploadArchive operation.
func (m *MockGlacierClient) UploadArchive(
	ctx context.Context,
	params *glacier.UploadArchiveInput,
	optFns ...func(*glacier.Options),
) (*glacier.UploadArchiveOutput, error) {
	if m.UploadArchiveFunc != nil {
		return m.UploadArchiveFunc(ctx, params, optFns...)
	}
	return &glacier.UploadArchiveOutput{}, nil
}

// InitiateMultipartUpload mocks the Glacier InitiateMultipartUpload operation.
func (m *MockGlacierClient) InitiateMultipartUpload(
	ctx context.Context,
	params *glacier.InitiateMultipartUploadInput,
	optFns ...func(*glacier.Options),
) (*glacier.InitiateMultipartUploadOutput, error) {
	if m.InitiateMultipartUploadFunc != nil {
		return m.InitiateMultipartUploadFunc(ctx, params, optFns...)
	}
	return &glacier.InitiateMultipartUploadOutput{}, nil
}

// UploadMultipartPart mocks the Glacier UploadMultipartPart operation.
func (m *MockGlacierClient) UploadMultipartPart(
	ctx context.Context,
	params *glacier.UploadMultipartPartInput,
	optFns ...func(*glacier.Options),
) (*glacier.UploadMultipartPartOutput, error) {
	if m.UploadMultipartPartFunc != nil {
		return m.UploadMultipartPartFunc(ctx, params, optFns...)
	}
	return &glacier.UploadMultipartPartOutput{}, nil
}

// CompleteMultipartUpload mocks the Glacier CompleteMultipartUpload operation.
func (m *MockGlacierClient) CompleteMultipartUpload(
	ctx context.Context,
	params *glacier.CompleteMultipartUploadInput,
	optFns ...func(*glacier.Options),
) (*glacier.CompleteMultipartUploadOutput, error) {
	if m.CompleteMultipartUploadFunc != nil {
		return m.CompleteMultipartUploadFunc(ctx, params, optFns...)
	}
	return &glacier.CompleteMultipartUploadOutput{}, nil
}

// AbortMultipartUpload mocks the Glacier AbortMultipartUpload operation.
func (m *MockGlacierClient) AbortMultipartUpload(
	ctx context.Context,
	params *glacier.AbortMultipartUploadInput,
	optFns ...func(*glacier.Options),
) (*glacier.AbortMultipartUploadOutput, error) {
	if m.AbortMultipartUploadFunc != nil {
		return m.AbortMultipartUploadFunc(ctx, params, optFns...)
	}
	return &glacier.AbortMultipartUploadOutput{}, nil
}

// InitiateJob mocks the Glacier InitiateJob operation.
func (m *MockGlacierClient) InitiateJob(
	ctx context.Context,
	params *glacier.InitiateJobInput,
	optFns ...func(*glacier.Options),
) (*glacier.InitiateJobOutput, error) {
	if m.InitiateJobFunc != nil {
		return m.InitiateJobFunc(ctx, params, optFns...)
	}
	return &glacier.InitiateJobOutput{}, nil
}

// ListJobs mocks the Glacier ListJobs operation.
func (m *MockGlacierClient) ListJobs(
	ctx context.Context,
	params *glacier.ListJobsInput,
	optFns ...func(*glacier.Options),
) (*glacier.ListJobsOutput, error) {
	if m.ListJobsFunc != nil {
		return m.ListJobsFunc(ctx, params, optFns...)
	}
	return &glacier.ListJobsOutput{}, nil
}

// DescribeJob mocks the Glacier DescribeJob operation.
func (m *MockGlacierClient) DescribeJob(
	ctx context.Context,
	params *glacier.DescribeJobInput,
	optFns ...func(*glacier.Options),
) (*glacier.DescribeJobOutput, error) {
	if m.DescribeJobFunc != nil {
		return m.DescribeJobFunc(ctx, params, optFns...)
	}
	return &glacier.DescribeJobOutput{}, nil
}

// GetJobOutput mocks the Glacier GetJobOutput operation.
func (m *MockGlacierClient) GetJobOutput(
	ctx context.Context,
	params *glacier.GetJobOutputInput,
	optFns ...func(*glacier.Options),
) (*glacier.GetJobOutputOutput, error) {
	if m.GetJobOutputFunc != nil {
		return m.GetJobOutputFunc(ctx, params, optFns...)
	}
	return &glacier.GetJobOutputOutput{}, nil
}

// Ensure MockGlacierClient implements glacierapi.GlacierAPI interface
var _ glacierapi.GlacierAPI = (*MockGlacierClient)(nil)
