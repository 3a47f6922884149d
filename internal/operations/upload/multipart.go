package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
	"golang.org/x/sync/errgroup"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/session"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/treehash"
)

// uploadMultipart sends the archive as a multipart upload. Parts are read
// sequentially into pooled buffers and uploaded with bounded concurrency.
// The upload context is checked before each part is read.
func (u *Uploader) uploadMultipart(
	ctx context.Context,
	rec *session.Upload,
	stream io.Reader,
	digest treehash.Digest,
	config *glaciertypes.UploadConfig,
) (session.Result, error) {
	vault := rec.Vault()

	initInput := &glacier.InitiateMultipartUploadInput{
		AccountId: aws.String(config.AccountID),
		VaultName: aws.String(vault),
		PartSize:  aws.String(strconv.FormatInt(config.PartSize, 10)),
	}
	if rec.Description() != "" {
		initInput.ArchiveDescription = aws.String(rec.Description())
	}

	initOutput, err := u.client.InitiateMultipartUpload(ctx, initInput)
	if err != nil {
		return session.Result{}, errors.NewVaultError("initiateMultipartUpload", vault,
			errors.Classify(err, errors.ErrVaultNotFound))
	}
	uploadID := aws.ToString(initOutput.UploadId)

	partHashes, err := u.uploadParts(ctx, rec, uploadID, stream, config)
	if err != nil {
		u.abortMultipartUpload(ctx, vault, uploadID, config.AccountID)
		return session.Result{}, err
	}

	// The stream must not have changed since the digest pass.
	if combined := treehash.Combine(partHashes); combined != digest {
		u.abortMultipartUpload(ctx, vault, uploadID, config.AccountID)
		return session.Result{}, errors.NewResourceError("uploadMultipart", vault, uploadID,
			fmt.Errorf("%w: archive changed during upload", errors.ErrChecksumMismatch))
	}

	completeOutput, err := u.client.CompleteMultipartUpload(ctx, &glacier.CompleteMultipartUploadInput{
		AccountId:   aws.String(config.AccountID),
		VaultName:   aws.String(vault),
		UploadId:    aws.String(uploadID),
		ArchiveSize: aws.String(strconv.FormatInt(rec.Size(), 10)),
		Checksum:    aws.String(digest.String()),
	})
	if err != nil {
		u.abortMultipartUpload(ctx, vault, uploadID, config.AccountID)
		return session.Result{}, errors.NewResourceError("completeMultipartUpload", vault, uploadID,
			errors.Classify(err, errors.ErrVaultNotFound))
	}

	if err := checkChecksum(completeOutput.Checksum, digest); err != nil {
		return session.Result{}, errors.NewResourceError("completeMultipartUpload", vault, uploadID, err)
	}

	return session.Result{
		ArchiveID: aws.ToString(completeOutput.ArchiveId),
		Location:  aws.ToString(completeOutput.Location),
	}, nil
}

// uploadParts reads and sends every part, returning the per-part tree hashes in order
func (u *Uploader) uploadParts(
	ctx context.Context,
	rec *session.Upload,
	uploadID string,
	stream io.Reader,
	config *glaciertypes.UploadConfig,
) ([]treehash.Digest, error) {
	size := rec.Size()
	partCount := int((size + config.PartSize - 1) / config.PartSize)
	partHashes := make([]treehash.Digest, partCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Concurrency)

	for i := 0; i < partCount; i++ {
		if err := gctx.Err(); err != nil {
			break
		}

		start := int64(i) * config.PartSize
		length := min(config.PartSize, size-start)

		buf := pool.GetPart(int(config.PartSize))
		if _, err := io.ReadFull(stream, buf[:length]); err != nil {
			pool.PutPart(buf)
			g.Go(func() error {
				return errors.NewResourceError("uploadMultipart", rec.Vault(), uploadID,
					fmt.Errorf("%w: %w", errors.ErrIO, err))
			})
			break
		}

		h := treehash.New()
		_, _ = h.Write(buf[:length])
		partHashes[i] = h.Sum()

		partHash := partHashes[i]
		g.Go(func() error {
			defer pool.PutPart(buf)
			return u.uploadPart(gctx, rec.Vault(), uploadID, buf[:length], start, partHash, config)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Cancellation between parts leaves the group without an error.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return partHashes, nil
}

// uploadPart sends one part
func (u *Uploader) uploadPart(
	ctx context.Context,
	vault, uploadID string,
	data []byte,
	start int64,
	partHash treehash.Digest,
	config *glaciertypes.UploadConfig,
) error {
	end := start + int64(len(data)) - 1

	_, err := u.client.UploadMultipartPart(ctx, &glacier.UploadMultipartPartInput{
		AccountId: aws.String(config.AccountID),
		VaultName: aws.String(vault),
		UploadId:  aws.String(uploadID),
		Body:      bytes.NewReader(data),
		Checksum:  aws.String(partHash.String()),
		Range:     aws.String(fmt.Sprintf("bytes %d-%d/*", start, end)),
	})
	if err != nil {
		return errors.NewResourceError("uploadMultipartPart", vault, uploadID,
			errors.Classify(err, errors.ErrVaultNotFound)).
			WithMessage(fmt.Sprintf("part at offset %d", start))
	}
	return nil
}

// abortMultipartUpload cleans up a failed multipart upload.
// It runs detached from the transfer context, which may already be cancelled.
func (u *Uploader) abortMultipartUpload(ctx context.Context, vault, uploadID, accountID string) {
	abortCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
	defer cancel()

	_, err := u.client.AbortMultipartUpload(abortCtx, &glacier.AbortMultipartUploadInput{
		AccountId: aws.String(accountID),
		VaultName: aws.String(vault),
		UploadId:  aws.String(uploadID),
	})
	if err != nil && u.logger != nil {
		u.logger.WarnContext(abortCtx, "failed to abort multipart upload",
			"vault", vault,
			"multipart_upload_id", uploadID,
			"error", err)
	}
}
