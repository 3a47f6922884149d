// Package glacierapi defines interfaces for Glacier operations to enable testing and mocking.
package glacierapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/glacier"
)

// GlacierAPI defines the interface for Glacier operations used by this module.
// This interface allows for mocking in tests and potential future implementations.
type GlacierAPI interface {
	// UploadArchive uploads an archive in a single request
	UploadArchive(
		ctx context.Context,
		params *glacier.UploadArchiveInput,
		optFns ...func(*glacier.Options),
	) (*glacier.UploadArchiveOutput, error)

	// InitiateMultipartUpload starts a multipart archive upload
	InitiateMultipartUpload(
		ctx context.Context,
		params *glacier.InitiateMultipartUploadInput,
		optFns ...func(*glacier.Options),
	) (*glacier.InitiateMultipartUploadOutput, error)

	// UploadMultipartPart uploads one part of a multipart archive upload
	UploadMultipartPart(
		ctx context.Context,
		params *glacier.UploadMultipartPartInput,
		optFns ...func(*glacier.Options),
	) (*glacier.UploadMultipartPartOutput, error)

	// CompleteMultipartUpload assembles the uploaded parts into an archive
	CompleteMultipartUpload(
		ctx context.Context,
		params *glacier.CompleteMultipartUploadInput,
		optFns ...func(*glacier.Options),
	) (*glacier.CompleteMultipartUploadOutput, error)

	// AbortMultipartUpload discards a multipart archive upload
	AbortMultipartUpload(
		ctx context.Context,
		params *glacier.AbortMultipartUploadInput,
		optFns ...func(*glacier.Options),
	) (*glacier.AbortMultipartUploadOutput, error)

	// InitiateJob starts an archive or inventory retrieval job
	InitiateJob(
		ctx context.Context,
		params *glacier.InitiateJobInput,
		optFns ...func(*glacier.Options),
	) (*glacier.InitiateJobOutput, error)

	// ListJobs lists the jobs of a vault
	ListJobs(
		ctx context.Context,
		params *glacier.ListJobsInput,
		optFns ...func(*glacier.Options),
	) (*glacier.ListJobsOutput, error)

	// DescribeJob returns the state of a single job
	DescribeJob(
		ctx context.Context,
		params *glacier.DescribeJobInput,
		optFns ...func(*glacier.Options),
	) (*glacier.DescribeJobOutput, error)

	// GetJobOutput downloads the output of a completed job
	GetJobOutput(
		ctx context.Context,
		params *glacier.GetJobOutputInput,
		optFns ...func(*glacier.Options),
	) (*glacier.GetJobOutputOutput, error)
}

// Verify that the AWS Glacier client implements our interface
var _ GlacierAPI = (*glacier.Client)(nil)
