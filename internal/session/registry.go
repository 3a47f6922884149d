package session

import (
	"context"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
)

// Registry is the ordered, append-only set of uploads of one session.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	uploads []*Upload
	byID    map[string]*Upload
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*Upload),
	}
}

// Append adds u to the end of the registry and returns its position.
func (r *Registry) Append(u *Upload) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.uploads = append(r.uploads, u)
	r.byID[u.ID()] = u
	return len(r.uploads) - 1
}

// Get returns the upload with the given id.
func (r *Registry) Get(id string) (*Upload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	return u, ok
}

// Len returns the number of registered uploads.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.uploads)
}

// Uploads returns the registered uploads in submission order.
func (r *Registry) Uploads() []*Upload {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Upload, len(r.uploads))
	copy(out, r.uploads)
	return out
}

// Snapshot returns the status of every upload in submission order.
func (r *Registry) Snapshot() []glaciertypes.UploadStatus {
	uploads := r.Uploads()

	out := make([]glaciertypes.UploadStatus, len(uploads))
	for i, u := range uploads {
		out[i] = u.Snapshot()
	}
	return out
}

// Pending returns the number of uploads that have not resolved yet.
func (r *Registry) Pending() int {
	n := 0
	for _, u := range r.Uploads() {
		if !u.Resolved() {
			n++
		}
	}
	return n
}

// Wait blocks until every upload registered at call time has resolved or ctx is done.
func (r *Registry) Wait(ctx context.Context) error {
	for _, u := range r.Uploads() {
		if _, err := u.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// CancelAll requests cancellation of every pending upload.
func (r *Registry) CancelAll() {
	for _, u := range r.Uploads() {
		u.Cancel()
	}
}
