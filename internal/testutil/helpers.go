// Package testutil provides test helper functions.
package testutil

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glacier"
)

// GenerateRandomData generates random bytes of the specified size.
// The same seed always yields the same bytes.
func GenerateRandomData(size int, seed int64) []byte {
	data := make([]byte, size)
	r := rand.New(rand.NewSource(seed))
	for i := range data {
		data[i] = byte(r.Intn(256))
	}
	return data
}

// TrackingStream is an in-memory io.ReadSeekCloser that records Close calls.
type TrackingStream struct {
	*bytes.Reader
	closed atomic.Int32
}

// NewTrackingStream returns a TrackingStream over data.
func NewTrackingStream(data []byte) *TrackingStream {
	return &TrackingStream{Reader: bytes.NewReader(data)}
}

// Close records the call. It never fails.
func (s *TrackingStream) Close() error {
	s.closed.Add(1)
	return nil
}

// Closed reports whether Close was called at least once.
func (s *TrackingStream) Closed() bool {
	return s.closed.Load() > 0
}

// CloseCount returns how many times Close was called.
func (s *TrackingStream) CloseCount() int {
	return int(s.closed.Load())
}

// Gate holds transfers until released so tests can observe pending uploads.
type Gate struct {
	once    sync.Once
	release chan struct{}
	entered chan struct{}
}

// NewGate returns a gate that holds callers until Release.
func NewGate() *Gate {
	return &Gate{
		release: make(chan struct{}),
		entered: make(chan struct{}, 64),
	}
}

// Wait blocks until Release is called or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entered returns a channel that receives once per Wait call.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets every current and future Wait call through.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// GatedUploadArchive returns an UploadArchiveFunc that drains the body, waits
// on the gate and then answers with archiveID.
func GatedUploadArchive(
	g *Gate,
	archiveID string,
) func(context.Context, *glacier.UploadArchiveInput, ...func(*glacier.Options)) (*glacier.UploadArchiveOutput, error) {
	return func(ctx context.Context, in *glacier.UploadArchiveInput, _ ...func(*glacier.Options)) (*glacier.UploadArchiveOutput, error) {
		if in.Body != nil {
			if _, err := io.Copy(io.Discard, in.Body); err != nil {
				return nil, err
			}
		}
		if err := g.Wait(ctx); err != nil {
			return nil, err
		}
		return &glacier.UploadArchiveOutput{
			ArchiveId: aws.String(archiveID),
			Checksum:  in.Checksum,
			Location:  aws.String("/-/vaults/" + aws.ToString(in.VaultName) + "/archives/" + archiveID),
		}, nil
	}
}

// BlockingStream is an io.ReadSeekCloser whose reads block until it is closed,
// like a pipe or socket whose peer has stalled.
type BlockingStream struct {
	reading   chan struct{}
	closed    chan struct{}
	readOnce  sync.Once
	closeOnce sync.Once
	closes    atomic.Int32
}

// NewBlockingStream returns a stream that blocks every Read until Close.
func NewBlockingStream() *BlockingStream {
	return &BlockingStream{
		reading: make(chan struct{}),
		closed:  make(chan struct{}),
	}
}

// Read blocks until Close and then fails with os.ErrClosed.
func (s *BlockingStream) Read([]byte) (int, error) {
	s.readOnce.Do(func() { close(s.reading) })
	<-s.closed
	return 0, os.ErrClosed
}

// Seek implements io.Seeker.
func (s *BlockingStream) Seek(int64, int) (int64, error) {
	return 0, nil
}

// Close unblocks pending reads.
func (s *BlockingStream) Close() error {
	s.closes.Add(1)
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// Reading returns a channel closed once the first Read has started.
func (s *BlockingStream) Reading() <-chan struct{} {
	return s.reading
}

// CloseCount returns how many times Close has been called.
func (s *BlockingStream) CloseCount() int {
	return int(s.closes.Load())
}
