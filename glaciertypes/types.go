// Package glaciertypes provides shared type definitions for the Glacier module.
package glaciertypes

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-git/go-billy/v5"
)

// JobType classifies a vault job.
type JobType string

// Job types reported by ListJobs
const (
	// JobTypeArchiveRetrieval is a job that stages one archive for download
	JobTypeArchiveRetrieval JobType = "ArchiveRetrieval"

	// JobTypeInventoryRetrieval is a job that produces a vault inventory
	JobTypeInventoryRetrieval JobType = "InventoryRetrieval"
)

// JobStatusCode is the service-side state of a job.
type JobStatusCode string

// Job states as reported by the service
const (
	// JobStatusInProgress means the job is still running
	JobStatusInProgress JobStatusCode = "InProgress"

	// JobStatusSucceeded means the job output can be downloaded
	JobStatusSucceeded JobStatusCode = "Succeeded"

	// JobStatusFailed means the job ended without output
	JobStatusFailed JobStatusCode = "Failed"
)

// RetrievalTier selects the speed and cost of an archive retrieval.
type RetrievalTier string

// Predefined retrieval tiers
const (
	// TierExpedited returns data within minutes
	TierExpedited RetrievalTier = "Expedited"

	// TierStandard returns data within hours (service default)
	TierStandard RetrievalTier = "Standard"

	// TierBulk is the lowest cost tier
	TierBulk RetrievalTier = "Bulk"
)

// InventoryFormat is the output format of an inventory retrieval job.
type InventoryFormat string

// Supported inventory formats
const (
	// InventoryFormatJSON requests a JSON inventory (service default)
	InventoryFormatJSON InventoryFormat = "JSON"

	// InventoryFormatCSV requests a CSV inventory
	InventoryFormatCSV InventoryFormat = "CSV"
)

// Job is a read-only projection of a remote vault job.
type Job struct {
	// ID is the service-assigned job identifier
	ID string

	// Description is the caller-supplied job description
	Description string

	// StatusMessage is the free-form status text from the service
	StatusMessage string

	// Type is ArchiveRetrieval or InventoryRetrieval.
	// Every action other than archive retrieval is reported as InventoryRetrieval.
	Type JobType

	// Action is the raw action code reported by the service
	Action string

	// StatusCode is the job state
	StatusCode JobStatusCode

	// Completed reports whether the job has finished
	Completed bool

	// ArchiveID is the archive being retrieved (archive retrieval only)
	ArchiveID string

	// CreationDate is when the job was initiated
	CreationDate time.Time

	// CompletionDate is when the job finished (zero while running)
	CompletionDate time.Time

	// SizeInBytes is the archive or inventory size, when known
	SizeInBytes int64

	// TreeHash is the SHA-256 tree hash of the job output, when known
	TreeHash string

	// Tier is the retrieval tier
	Tier string
}

// UploadState is the lifecycle state of a session upload.
type UploadState string

// Upload states
const (
	// UploadPending means the transfer has not resolved yet
	UploadPending UploadState = "Pending"

	// UploadRanToCompletion means the service accepted the archive
	UploadRanToCompletion UploadState = "RanToCompletion"

	// UploadFaulted means the transfer failed
	UploadFaulted UploadState = "Faulted"

	// UploadCanceled means cooperative cancellation took effect
	UploadCanceled UploadState = "Canceled"
)

// Resolved reports whether the state is final.
func (s UploadState) Resolved() bool {
	return s != UploadPending && s != ""
}

// UploadStatus is a point-in-time view of one session upload.
type UploadStatus struct {
	// ID is the session-local upload identifier
	ID string

	// Description is the archive description
	Description string

	// Vault is the target vault
	Vault string

	// Status is the lifecycle state
	Status UploadState

	// ArchiveID is the service-assigned archive id, empty until completed
	ArchiveID string

	// Location is the archive resource path returned by the service
	Location string

	// Size is the archive size in bytes
	Size int64

	// Checksum is the hex tree hash sent with the archive
	Checksum string

	// Multipart reports whether the archive was sent in parts
	Multipart bool

	// Err is the transfer error for Faulted and Canceled uploads
	Err error

	// StartedAt is when the upload was submitted
	StartedAt time.Time

	// FinishedAt is when the upload resolved (zero while pending)
	FinishedAt time.Time
}

// JobOutput is the raw output of a completed job.
// The caller must close Body.
type JobOutput struct {
	// Body streams the job output
	Body io.ReadCloser

	// Checksum is the tree hash of the returned bytes when the service provides one
	Checksum string

	// ContentRange is the returned byte range for ranged requests
	ContentRange string

	// ContentType is the output media type
	ContentType string

	// ArchiveDescription is the description of the retrieved archive
	ArchiveDescription string

	// Status is the HTTP status code of the response
	Status int32
}

// Inventory is a parsed vault inventory.
type Inventory struct {
	// VaultARN identifies the vault
	VaultARN string `json:"VaultARN"`

	// InventoryDate is when the service last built the inventory
	InventoryDate time.Time `json:"InventoryDate"`

	// ArchiveList holds one entry per archive
	ArchiveList []InventoryArchive `json:"ArchiveList"`
}

// InventoryArchive is one archive listed in an inventory.
type InventoryArchive struct {
	ArchiveID          string    `json:"ArchiveId"`
	ArchiveDescription string    `json:"ArchiveDescription"`
	CreationDate       time.Time `json:"CreationDate"`
	Size               int64     `json:"Size"`
	SHA256TreeHash     string    `json:"SHA256TreeHash"`
}

// Configuration types for functional options

// ClientConfig holds configuration for the Glacier client.
type ClientConfig struct {
	Region             string
	Endpoint           string
	AccountID          string
	AccessKeyID        string
	SecretAccessKey    string
	MaxRetries         int
	Timeout            time.Duration
	Concurrency        int
	PartSize           int64
	MultipartThreshold int64
	CustomAWSConfig    *aws.Config
	CustomHTTPClient   *http.Client
	Retryer            aws.Retryer
	Logger             *slog.Logger
	Filesystem         billy.Filesystem // Filesystem abstraction for UploadFile
}

// UploadConfig holds per-client settings used by the upload pipeline.
type UploadConfig struct {
	AccountID          string
	PartSize           int64
	MultipartThreshold int64
	Concurrency        int
}

// ByteRange is an inclusive byte range.
type ByteRange struct {
	Start int64
	End   int64
}

// JobOptionConfig holds configuration for job initiation via functional options.
type JobOptionConfig struct {
	Tier           RetrievalTier
	SNSTopic       string
	RetrievalRange *ByteRange
}

// ListJobsOptionConfig holds configuration for job listing via functional options.
type ListJobsOptionConfig struct {
	Completed  *bool
	StatusCode JobStatusCode
	PageLimit  int32
}

// OutputOptionConfig holds configuration for job output retrieval via functional options.
type OutputOptionConfig struct {
	Range  *ByteRange
	Verify bool
}

// Option is a functional option for configuring the Glacier client.
type (
	Option func(*ClientConfig)
	// JobOption is a functional option for configuring job initiation.
	JobOption func(*JobOptionConfig)
	// ListJobsOption is a functional option for configuring job listing.
	ListJobsOption func(*ListJobsOptionConfig)
	// OutputOption is a functional option for configuring job output retrieval.
	OutputOption func(*OutputOptionConfig)
)
