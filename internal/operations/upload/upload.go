package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glacier"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/glacierapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/session"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/treehash"
)

const (
	// DefaultPartSize is the multipart part size used when none is configured
	DefaultPartSize = 8 * 1024 * 1024

	// DefaultMultipartThreshold is the archive size from which multipart upload is used
	DefaultMultipartThreshold = 128 * 1024 * 1024

	// DefaultConcurrency is the number of parts in flight per upload
	DefaultConcurrency = 4

	// abortTimeout bounds the cleanup call of a failed multipart upload
	abortTimeout = 30 * time.Second
)

// Uploader submits archives and tracks them in a session registry.
type Uploader struct {
	client   glacierapi.GlacierAPI
	registry *session.Registry
	logger   *slog.Logger

	// base is the session-lifetime context every transfer derives from
	base context.Context

	// wg tracks running transfers and reconcilers
	wg sync.WaitGroup
}

// New creates a new Uploader. Transfers derive their contexts from base, so
// cancelling base cancels every pending upload.
func New(
	client glacierapi.GlacierAPI,
	registry *session.Registry,
	base context.Context,
	logger *slog.Logger,
) *Uploader {
	return &Uploader{
		client:   client,
		registry: registry,
		logger:   logger,
		base:     base,
	}
}

// transferResult is what a transfer goroutine reports to its reconciler
type transferResult struct {
	res session.Result
	err error
}

// Submit computes the tree hash of stream, registers a pending upload and
// starts the transfer in the background. It returns as soon as the upload is
// registered; the transfer outcome is only visible through the returned record.
//
// Ownership of stream passes to the uploader on every path: it is closed
// here when submission fails and by the reconciler otherwise.
func (u *Uploader) Submit(
	ctx context.Context,
	vault, description string,
	stream io.ReadSeekCloser,
	config *glaciertypes.UploadConfig,
) (*session.Upload, error) {
	config = withDefaults(config)

	digest, size, err := u.digest(ctx, vault, stream)
	if err != nil {
		return nil, err
	}

	rec := session.NewUpload(u.base, session.Params{
		Vault:       vault,
		Description: description,
		Size:        size,
		Checksum:    digest.String(),
		Multipart:   size >= config.MultipartThreshold,
		Stream:      stream,
	})
	u.registry.Append(rec)

	if u.logger != nil {
		u.logger.InfoContext(ctx, "archive upload submitted",
			"upload_id", rec.ID(),
			"vault", vault,
			"description", description,
			"size", size,
			"checksum", rec.Checksum(),
			"multipart", rec.Multipart())
	}

	results := make(chan transferResult, 1)

	u.wg.Add(2)
	go func() {
		defer u.wg.Done()
		res, err := u.transfer(rec, stream, digest, config)
		results <- transferResult{res: res, err: err}
	}()
	go func() {
		defer u.wg.Done()
		u.reconcile(rec, <-results)
	}()

	return rec, nil
}

// digest computes the tree hash and size of stream and rewinds it. The pass
// stops when ctx or the session context is done; the stream is closed then
// so that a read blocked inside it returns. On error the stream is closed.
func (u *Uploader) digest(ctx context.Context, vault string, stream io.ReadSeekCloser) (treehash.Digest, int64, error) {
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopSession := context.AfterFunc(u.base, cancel)
	defer stopSession()
	interrupted := make(chan struct{})
	stopClose := context.AfterFunc(dctx, func() {
		_ = stream.Close()
		close(interrupted)
	})

	digest, size, err := treehash.ComputeSize(&contextReader{ctx: dctx, r: stream})
	var seekErr error
	if err == nil {
		_, seekErr = stream.Seek(0, io.SeekStart)
	}

	if !stopClose() {
		<-interrupted
		if u.base.Err() != nil {
			return treehash.Digest{}, 0, errors.NewVaultError("uploadArchive", vault, errors.ErrClientClosed)
		}
		return treehash.Digest{}, 0, errors.NewVaultError("uploadArchive", vault, ctx.Err())
	}

	switch {
	case err != nil:
		_ = stream.Close()
		return treehash.Digest{}, 0, errors.NewVaultError("uploadArchive", vault, err)
	case seekErr != nil:
		_ = stream.Close()
		return treehash.Digest{}, 0, errors.NewVaultError("uploadArchive", vault, fmt.Errorf("%w: %w", errors.ErrIO, seekErr)).
			WithMessage("failed to rewind archive stream")
	}

	return digest, size, nil
}

// Wait blocks until every transfer started by the uploader has been reconciled.
func (u *Uploader) Wait() {
	u.wg.Wait()
}

// reconcile resolves the upload record with the transfer result
func (u *Uploader) reconcile(rec *session.Upload, tr transferResult) {
	_, closeErr := rec.Finish(tr.res, tr.err)
	if u.logger == nil {
		return
	}

	ctx := context.Background()
	st := rec.Snapshot()
	attrs := []any{
		"upload_id", st.ID,
		"vault", st.Vault,
		"status", st.Status,
		"duration", st.FinishedAt.Sub(st.StartedAt),
	}

	switch st.Status {
	case glaciertypes.UploadRanToCompletion:
		u.logger.InfoContext(ctx, "archive upload completed", append(attrs, "archive_id", st.ArchiveID)...)
	case glaciertypes.UploadCanceled:
		u.logger.WarnContext(ctx, "archive upload cancelled", append(attrs, "error", st.Err)...)
	default:
		u.logger.ErrorContext(ctx, "archive upload failed", append(attrs, "error", st.Err)...)
	}

	if closeErr != nil {
		u.logger.WarnContext(ctx, "failed to close archive stream",
			"upload_id", st.ID,
			"error", closeErr)
	}
}

// transfer sends the archive in one request or in parts
func (u *Uploader) transfer(
	rec *session.Upload,
	stream io.ReadSeeker,
	digest treehash.Digest,
	config *glaciertypes.UploadConfig,
) (session.Result, error) {
	ctx := rec.Context()
	if err := ctx.Err(); err != nil {
		return session.Result{}, err
	}

	if rec.Multipart() {
		return u.uploadMultipart(ctx, rec, stream, digest, config)
	}
	return u.uploadSingle(ctx, rec, stream, digest, config)
}

// uploadSingle sends the whole archive in one UploadArchive request
func (u *Uploader) uploadSingle(
	ctx context.Context,
	rec *session.Upload,
	stream io.ReadSeeker,
	digest treehash.Digest,
	config *glaciertypes.UploadConfig,
) (session.Result, error) {
	input := &glacier.UploadArchiveInput{
		AccountId: aws.String(config.AccountID),
		VaultName: aws.String(rec.Vault()),
		Body:      seekBody{stream},
		Checksum:  aws.String(digest.String()),
	}
	if rec.Description() != "" {
		input.ArchiveDescription = aws.String(rec.Description())
	}

	output, err := u.client.UploadArchive(ctx, input)
	if err != nil {
		return session.Result{}, errors.NewVaultError("uploadArchive", rec.Vault(),
			errors.Classify(err, errors.ErrVaultNotFound))
	}

	if err := checkChecksum(output.Checksum, digest); err != nil {
		return session.Result{}, errors.NewVaultError("uploadArchive", rec.Vault(), err)
	}

	return session.Result{
		ArchiveID: aws.ToString(output.ArchiveId),
		Location:  aws.ToString(output.Location),
	}, nil
}

// checkChecksum compares a service-reported tree hash with the local one.
// An absent checksum is accepted.
func checkChecksum(reported *string, digest treehash.Digest) error {
	if reported == nil || *reported == "" {
		return nil
	}

	got, err := treehash.Parse(*reported)
	if err != nil || got != digest {
		return fmt.Errorf("%w: service reported %s, computed %s",
			errors.ErrChecksumMismatch, aws.ToString(reported), digest)
	}
	return nil
}

// withDefaults fills unset upload settings
func withDefaults(config *glaciertypes.UploadConfig) *glaciertypes.UploadConfig {
	out := glaciertypes.UploadConfig{}
	if config != nil {
		out = *config
	}

	if out.AccountID == "" {
		out.AccountID = "-"
	}
	if out.PartSize <= 0 {
		out.PartSize = DefaultPartSize
	}
	if out.MultipartThreshold <= 0 {
		out.MultipartThreshold = DefaultMultipartThreshold
	}
	if out.Concurrency <= 0 {
		out.Concurrency = DefaultConcurrency
	}
	return &out
}

// seekBody exposes only Read and Seek so the transport cannot close the archive stream
type seekBody struct {
	io.ReadSeeker
}

// contextReader stops reading once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
