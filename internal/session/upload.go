package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	glacierrors "github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
)

// Params describes an upload at submission time.
type Params struct {
	Vault       string
	Description string
	Size        int64
	Checksum    string
	Multipart   bool

	// Stream is released when the upload resolves
	Stream io.Closer
}

// Result is what a successful transfer reports back.
type Result struct {
	ArchiveID string
	Location  string
}

// Outcome is the final, immutable state of a resolved upload.
type Outcome struct {
	Status     glaciertypes.UploadState
	ArchiveID  string
	Location   string
	Err        error
	FinishedAt time.Time
}

// Upload is one archive transfer tracked by a session.
type Upload struct {
	id          string
	vault       string
	description string
	size        int64
	checksum    string
	multipart   bool
	startedAt   time.Time

	ctx    context.Context
	cancel context.CancelFunc
	stream io.Closer

	once    sync.Once
	done    chan struct{}
	outcome atomic.Pointer[Outcome]
}

// NewUpload creates a pending upload whose transfer context derives from parent.
func NewUpload(parent context.Context, p Params) *Upload {
	ctx, cancel := context.WithCancel(parent)
	return &Upload{
		id:          uuid.NewString(),
		vault:       p.Vault,
		description: p.Description,
		size:        p.Size,
		checksum:    p.Checksum,
		multipart:   p.Multipart,
		startedAt:   time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		stream:      p.Stream,
		done:        make(chan struct{}),
	}
}

// ID returns the session-local upload identifier.
func (u *Upload) ID() string { return u.id }

// Vault returns the target vault.
func (u *Upload) Vault() string { return u.vault }

// Description returns the archive description.
func (u *Upload) Description() string { return u.description }

// Size returns the archive size in bytes.
func (u *Upload) Size() int64 { return u.size }

// Checksum returns the hex tree hash sent with the archive.
func (u *Upload) Checksum() string { return u.checksum }

// Multipart reports whether the archive is sent in parts.
func (u *Upload) Multipart() bool { return u.multipart }

// Context returns the transfer context. It is cancelled by Cancel.
func (u *Upload) Context() context.Context { return u.ctx }

// Cancel requests cooperative cancellation of the transfer.
// It has no effect once the upload has resolved.
func (u *Upload) Cancel() {
	if u.Resolved() {
		return
	}
	u.cancel()
}

// Finish records the transfer result. Only the first call has any effect;
// it reports whether this call resolved the upload and any error from
// closing the stream.
//
// A nil err resolves the upload as RanToCompletion. An error observed after
// the transfer context was cancelled resolves it as Canceled, any other error
// as Faulted. The stream is closed in every case.
func (u *Upload) Finish(res Result, err error) (bool, error) {
	resolved := false
	var closeErr error

	u.once.Do(func() {
		resolved = true

		out := &Outcome{FinishedAt: time.Now()}
		switch {
		case err == nil:
			out.Status = glaciertypes.UploadRanToCompletion
			out.ArchiveID = res.ArchiveID
			out.Location = res.Location
		case u.ctx.Err() != nil || errors.Is(err, context.Canceled):
			out.Status = glaciertypes.UploadCanceled
			out.Err = wrapOutcome(glacierrors.ErrTransferCancelled, err)
		default:
			out.Status = glaciertypes.UploadFaulted
			out.Err = wrapOutcome(glacierrors.ErrTransferFault, err)
		}

		if u.stream != nil {
			if cerr := u.stream.Close(); cerr != nil {
				closeErr = fmt.Errorf("%w: %w", glacierrors.ErrIO, cerr)
			}
		}

		u.outcome.Store(out)
		u.cancel()
		close(u.done)
	})

	return resolved, closeErr
}

// Done returns a channel closed once the upload has resolved.
func (u *Upload) Done() <-chan struct{} { return u.done }

// Wait blocks until the upload resolves or ctx is done.
func (u *Upload) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-u.done:
		return *u.outcome.Load(), nil
	case <-ctx.Done():
		return Outcome{Status: glaciertypes.UploadPending}, ctx.Err()
	}
}

// Resolved reports whether Finish has published an outcome.
func (u *Upload) Resolved() bool {
	return u.outcome.Load() != nil
}

// Status returns the current lifecycle state.
func (u *Upload) Status() glaciertypes.UploadState {
	if out := u.outcome.Load(); out != nil {
		return out.Status
	}
	return glaciertypes.UploadPending
}

// ArchiveID returns the service-assigned archive id, empty until the upload completes.
func (u *Upload) ArchiveID() string {
	if out := u.outcome.Load(); out != nil {
		return out.ArchiveID
	}
	return ""
}

// Snapshot returns a point-in-time view of the upload.
func (u *Upload) Snapshot() glaciertypes.UploadStatus {
	st := glaciertypes.UploadStatus{
		ID:          u.id,
		Description: u.description,
		Vault:       u.vault,
		Status:      glaciertypes.UploadPending,
		Size:        u.size,
		Checksum:    u.checksum,
		Multipart:   u.multipart,
		StartedAt:   u.startedAt,
	}

	if out := u.outcome.Load(); out != nil {
		st.Status = out.Status
		st.ArchiveID = out.ArchiveID
		st.Location = out.Location
		st.Err = out.Err
		st.FinishedAt = out.FinishedAt
	}

	return st
}

// wrapOutcome tags err with sentinel unless it already carries it
func wrapOutcome(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
