package glacier

import (
	"context"
	"fmt"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/session"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/validation"
)

// UploadHandle refers to one archive upload of the session.
type UploadHandle struct {
	rec *session.Upload
}

// ID returns the session-local upload identifier.
func (h *UploadHandle) ID() string { return h.rec.ID() }

// Status returns the current lifecycle state.
func (h *UploadHandle) Status() glaciertypes.UploadState { return h.rec.Status() }

// ArchiveID returns the archive id assigned by the service, empty until the upload completes.
func (h *UploadHandle) ArchiveID() string { return h.rec.ArchiveID() }

// Snapshot returns a point-in-time view of the upload.
func (h *UploadHandle) Snapshot() glaciertypes.UploadStatus { return h.rec.Snapshot() }

// Done returns a channel closed once the upload has resolved.
func (h *UploadHandle) Done() <-chan struct{} { return h.rec.Done() }

// Cancel requests cooperative cancellation. A transfer past its last
// cancellation point may still complete; a resolved upload is unaffected.
func (h *UploadHandle) Cancel() { h.rec.Cancel() }

// Wait blocks until the upload resolves or ctx is done and returns its final status.
func (h *UploadHandle) Wait(ctx context.Context) (glaciertypes.UploadStatus, error) {
	if _, err := h.rec.Wait(ctx); err != nil {
		return h.rec.Snapshot(), err
	}
	return h.rec.Snapshot(), nil
}

// UploadArchive computes the tree hash of stream and submits it to vault in
// the background. It returns once the archive is hashed and registered; the
// transfer outcome is reported through the handle and Uploads. Cancelling ctx
// or closing the client interrupts the hash pass by closing stream.
//
// Ownership of stream passes to the client, which closes it on every path,
// including when UploadArchive itself fails.
//
// Errors:
//   - ErrInvalidVaultName: If the vault name is invalid
//   - ErrInvalidInput: If the description is invalid or stream is nil
//   - ErrIO: If the stream cannot be read or rewound
//   - ErrClientClosed: If the client has been closed
//
// Example:
//
//	f, err := os.Open("photos-2024.tar")
//	if err != nil {
//	    return err
//	}
//	handle, err := client.UploadArchive(ctx, "photos", f, "photos 2024")
//	if err != nil {
//	    return err
//	}
//	<-handle.Done()
//	fmt.Println(handle.ArchiveID())
func (c *Client) UploadArchive(
	ctx context.Context,
	vault string,
	stream io.ReadSeekCloser,
	description string,
) (*UploadHandle, error) {
	if stream == nil {
		return nil, errors.NewVaultError("uploadArchive", vault, errors.ErrInvalidInput).
			WithMessage("stream cannot be nil")
	}
	if err := validateUpload(vault, description); err != nil {
		_ = stream.Close()
		return nil, err
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		_ = stream.Close()
		return nil, errors.NewVaultError("uploadArchive", vault, errors.ErrClientClosed)
	}
	c.submitting.Add(1)
	c.mu.RUnlock()
	defer c.submitting.Done()

	rec, err := c.uploader.Submit(ctx, vault, description, stream, c.uploadConfig())
	if err != nil {
		if logger := c.clientConfig.Logger; logger != nil {
			logger.ErrorContext(ctx, "archive submission failed",
				"vault", vault,
				"error", err)
		}
		return nil, err
	}

	return &UploadHandle{rec: rec}, nil
}

// UploadFile opens path on the client filesystem and submits it like UploadArchive.
func (c *Client) UploadFile(ctx context.Context, vault, path, description string) (*UploadHandle, error) {
	if path == "" {
		return nil, errors.NewVaultError("uploadFile", vault, errors.ErrInvalidInput).
			WithMessage("path cannot be empty")
	}
	if err := validateUpload(vault, description); err != nil {
		return nil, err
	}

	fs := c.filesystem()

	info, err := fs.Stat(path)
	if err != nil {
		return nil, errors.NewResourceError("uploadFile", vault, path, fmt.Errorf("%w: %w", errors.ErrIO, err))
	}
	if info.IsDir() {
		return nil, errors.NewResourceError("uploadFile", vault, path, errors.ErrInvalidInput).
			WithMessage("path points to a directory, not a file")
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, errors.NewResourceError("uploadFile", vault, path, fmt.Errorf("%w: %w", errors.ErrIO, err))
	}

	return c.UploadArchive(ctx, vault, file, description)
}

// Uploads returns the status of every upload of the session in submission order.
// Nothing is ever removed from the session.
func (c *Client) Uploads() []glaciertypes.UploadStatus {
	return c.registry.Snapshot()
}

// Upload returns the handle of the upload with the given id.
func (c *Client) Upload(id string) (*UploadHandle, error) {
	rec, ok := c.registry.Get(id)
	if !ok {
		return nil, errors.NewResourceError("upload", "", id, errors.ErrUploadNotFound)
	}
	return &UploadHandle{rec: rec}, nil
}

// CancelUpload requests cooperative cancellation of the upload with the given id.
// Cancelling a resolved upload has no effect.
func (c *Client) CancelUpload(id string) error {
	if err := validation.ValidateUploadID(id); err != nil {
		return err
	}
	h, err := c.Upload(id)
	if err != nil {
		return errors.NewResourceError("cancelUpload", "", id, errors.ErrUploadNotFound)
	}
	h.Cancel()
	return nil
}

// PendingUploads returns the number of uploads that have not resolved yet.
func (c *Client) PendingUploads() int {
	return c.registry.Pending()
}

// WaitUploads blocks until every upload submitted so far has resolved or ctx is done.
func (c *Client) WaitUploads(ctx context.Context) error {
	if err := c.registry.Wait(ctx); err != nil {
		return errors.NewError("waitUploads", err)
	}
	return nil
}

// ListJobs returns every job of vault. Jobs whose action is not an archive
// retrieval are classified as InventoryRetrieval; Job.Action holds the raw action.
//
// Example:
//
//	jobs, err := client.ListJobs(ctx, "photos", glacier.WithCompletedOnly(true))
func (c *Client) ListJobs(
	ctx context.Context,
	vault string,
	opts ...glaciertypes.ListJobsOption,
) ([]glaciertypes.Job, error) {
	if err := c.checkVault("listJobs", vault); err != nil {
		return nil, err
	}

	config := &glaciertypes.ListJobsOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.StatusCode != "" {
		switch config.StatusCode {
		case glaciertypes.JobStatusInProgress, glaciertypes.JobStatusSucceeded, glaciertypes.JobStatusFailed:
		default:
			return nil, errors.NewVaultError("listJobs", vault, errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("unsupported status filter %q", config.StatusCode))
		}
	}

	return c.jobs.List(ctx, vault, config)
}

// DescribeJob returns the current state of one job.
func (c *Client) DescribeJob(ctx context.Context, vault, jobID string) (*glaciertypes.Job, error) {
	if err := c.checkVault("describeJob", vault); err != nil {
		return nil, err
	}
	if err := validation.ValidateJobID(jobID); err != nil {
		return nil, err
	}

	return c.jobs.Describe(ctx, vault, jobID)
}

// StartArchiveRequestJob initiates a retrieval job for archiveID and returns the job id.
// The archive id is not checked against the vault; the service rejects unknown archives.
func (c *Client) StartArchiveRequestJob(
	ctx context.Context,
	vault, archiveID, description string,
	opts ...glaciertypes.JobOption,
) (string, error) {
	if err := c.checkVault("initiateArchiveRetrieval", vault); err != nil {
		return "", err
	}
	if err := validation.ValidateArchiveID(archiveID); err != nil {
		return "", err
	}
	if err := validation.ValidateDescription(description); err != nil {
		return "", err
	}

	config := &glaciertypes.JobOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if err := validation.ValidateTier(config.Tier); err != nil {
		return "", err
	}

	return c.jobs.StartArchiveRetrieval(ctx, vault, archiveID, description, config)
}

// StartInventoryRetrievalJob initiates a job producing the inventory of vault
// in the given format and returns the job id.
func (c *Client) StartInventoryRetrievalJob(
	ctx context.Context,
	vault string,
	format glaciertypes.InventoryFormat,
	description string,
	opts ...glaciertypes.JobOption,
) (string, error) {
	if err := c.checkVault("initiateInventoryRetrieval", vault); err != nil {
		return "", err
	}
	if err := validation.ValidateInventoryFormat(format); err != nil {
		return "", err
	}
	if err := validation.ValidateDescription(description); err != nil {
		return "", err
	}

	config := &glaciertypes.JobOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return c.jobs.StartInventoryRetrieval(ctx, vault, format, description, config)
}

// RetrieveJobOutput fetches the output of a completed job. The caller must close the body.
//
// Errors:
//   - ErrJobNotReady: If the job has not finished yet
//   - ErrJobNotFound: If the vault has no such job
func (c *Client) RetrieveJobOutput(
	ctx context.Context,
	vault, jobID string,
	opts ...glaciertypes.OutputOption,
) (*glaciertypes.JobOutput, error) {
	if err := c.checkVault("getJobOutput", vault); err != nil {
		return nil, err
	}
	if err := validation.ValidateJobID(jobID); err != nil {
		return nil, err
	}

	config := &glaciertypes.OutputOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	return c.jobs.Output(ctx, vault, jobID, config)
}

// RetrieveInventoryOutput fetches the output of a completed inventory job and parses it.
// Both JSON and CSV inventories are accepted.
//
// Errors:
//   - ErrJobNotReady: If the job has not finished yet
//   - ErrParse: If the output is not a well-formed inventory
func (c *Client) RetrieveInventoryOutput(ctx context.Context, vault, jobID string) (*glaciertypes.Inventory, error) {
	if err := c.checkVault("retrieveInventory", vault); err != nil {
		return nil, err
	}
	if err := validation.ValidateJobID(jobID); err != nil {
		return nil, err
	}

	return c.jobs.Inventory(ctx, vault, jobID)
}

// checkVault rejects calls on a closed client and invalid vault names.
func (c *Client) checkVault(op, vault string) error {
	if c.isClosed() {
		return errors.NewVaultError(op, vault, errors.ErrClientClosed)
	}
	return validation.ValidateVaultName(vault)
}

// validateUpload validates the vault name and archive description of an upload.
func validateUpload(vault, description string) error {
	if err := validation.ValidateVaultName(vault); err != nil {
		return err
	}
	return validation.ValidateDescription(description)
}
