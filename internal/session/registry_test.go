package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/glaciertypes"
)

func TestRegistry_AppendOrder(t *testing.T) {
	r := NewRegistry()

	var ids []string
	for i := 0; i < 5; i++ {
		u := NewUpload(context.Background(), Params{Vault: "v", Description: fmt.Sprintf("archive %d", i)})
		assert.Equal(t, i, r.Append(u))
		ids = append(ids, u.ID())
	}

	snap := r.Snapshot()
	require.Len(t, snap, 5)
	for i, st := range snap {
		assert.Equal(t, ids[i], st.ID)
		assert.Equal(t, fmt.Sprintf("archive %d", i), st.Description)
		assert.Equal(t, glaciertypes.UploadPending, st.Status)
	}
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, 5, r.Pending())
}

func TestRegistry_ConcurrentAppend(t *testing.T) {
	r := NewRegistry()
	const workers = 50

	positions := make([]int, workers)
	uploads := make([]*Upload, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := NewUpload(context.Background(), Params{Vault: "v"})
			uploads[i] = u
			positions[i] = r.Append(u)

			// Concurrent readers must not race with writers.
			_ = r.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := r.Snapshot()
	require.Len(t, snap, workers)

	seen := make(map[string]bool)
	for i, u := range uploads {
		assert.Equal(t, u.ID(), snap[positions[i]].ID)
		assert.False(t, seen[u.ID()], "duplicate upload id")
		seen[u.ID()] = true
	}
}

func TestRegistry_SnapshotReflectsResolution(t *testing.T) {
	r := NewRegistry()
	ok := NewUpload(context.Background(), Params{Vault: "v"})
	bad := NewUpload(context.Background(), Params{Vault: "v"})
	r.Append(ok)
	r.Append(bad)

	before := r.Snapshot()
	assert.Equal(t, glaciertypes.UploadPending, before[0].Status)

	_, _ = ok.Finish(Result{ArchiveID: "archive-ok"}, nil)
	_, _ = bad.Finish(Result{}, fmt.Errorf("boom"))

	after := r.Snapshot()
	assert.Equal(t, glaciertypes.UploadRanToCompletion, after[0].Status)
	assert.Equal(t, "archive-ok", after[0].ArchiveID)
	assert.Equal(t, glaciertypes.UploadFaulted, after[1].Status)
	assert.Empty(t, after[1].ArchiveID)

	// Earlier snapshots are copies.
	assert.Equal(t, glaciertypes.UploadPending, before[0].Status)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 0, r.Pending())
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	u := NewUpload(context.Background(), Params{Vault: "v"})
	r.Append(u)

	got, ok := r.Get(u.ID())
	require.True(t, ok)
	assert.Same(t, u, got)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_WaitAndCancelAll(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		u := NewUpload(context.Background(), Params{Vault: "v"})
		r.Append(u)
		go func() {
			<-u.Context().Done()
			_, _ = u.Finish(Result{}, u.Context().Err())
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	r.CancelAll()
	require.NoError(t, r.Wait(context.Background()))
	for _, st := range r.Snapshot() {
		assert.Equal(t, glaciertypes.UploadCanceled, st.Status)
	}
}
