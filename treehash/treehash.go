package treehash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/internal/pool"
)

// BlockSize is the size of one leaf block.
const BlockSize = pool.BlockSize

// Digest is a SHA-256 tree hash or one of its nodes.
type Digest [sha256.Size]byte

// String returns the lowercase hex form used as the Glacier checksum.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns a copy of the raw digest bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, len(d))
	copy(out, d[:])
	return out
}

// IsZero reports whether d is the zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Parse decodes a hex checksum as returned by the service.
func Parse(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, errors.NewError("parseTreeHash", errors.ErrInvalidInput).WithMessage(err.Error())
	}
	if len(raw) != len(d) {
		return d, errors.NewError("parseTreeHash", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("tree hash must be %d bytes, got %d", len(d), len(raw)))
	}
	copy(d[:], raw)
	return d, nil
}

// Leaf returns the hash of a single block.
func Leaf(block []byte) Digest {
	return sha256.Sum256(block)
}

// Combine reduces an ordered list of hashes to a single tree hash.
// Hashes are paired left to right at each level and an unpaired last hash
// is promoted unchanged. Combining no hashes yields the hash of an empty block.
func Combine(hashes []Digest) Digest {
	if len(hashes) == 0 {
		return Leaf(nil)
	}

	level := make([]Digest, len(hashes))
	copy(level, hashes)

	var pair [2 * sha256.Size]byte
	for len(level) > 1 {
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				break
			}
			copy(pair[:sha256.Size], level[i][:])
			copy(pair[sha256.Size:], level[i+1][:])
			next = append(next, sha256.Sum256(pair[:]))
		}
		level = next
	}
	return level[0]
}

// Hasher computes a tree hash incrementally. It implements io.Writer so it can
// sit behind io.Copy or io.TeeReader. The zero value is not usable; call New.
type Hasher struct {
	block  hash.Hash
	filled int
	leaves []Digest
	size   int64
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{block: sha256.New()}
}

// Write feeds p into the tree. It never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		room := BlockSize - h.filled
		if room > len(p) {
			room = len(p)
		}
		h.block.Write(p[:room])
		h.filled += room
		p = p[room:]
		if h.filled == BlockSize {
			h.closeBlock()
		}
	}
	h.size += int64(n)
	return n, nil
}

func (h *Hasher) closeBlock() {
	var d Digest
	h.block.Sum(d[:0])
	h.leaves = append(h.leaves, d)
	h.block.Reset()
	h.filled = 0
}

// Size returns the number of bytes written so far.
func (h *Hasher) Size() int64 {
	return h.size
}

// Sum returns the tree hash of everything written so far without changing
// the Hasher state.
func (h *Hasher) Sum() Digest {
	leaves := h.leaves
	if h.filled > 0 || len(leaves) == 0 {
		var d Digest
		h.block.Sum(d[:0])
		leaves = append(leaves[:len(leaves):len(leaves)], d)
	}
	return Combine(leaves)
}

// Reset clears the Hasher so it can be reused.
func (h *Hasher) Reset() {
	h.block.Reset()
	h.filled = 0
	h.leaves = h.leaves[:0]
	h.size = 0
}

// Compute reads r to EOF and returns its tree hash.
// Read failures are reported as errors.ErrIO.
func Compute(r io.Reader) (Digest, error) {
	d, _, err := ComputeSize(r)
	return d, err
}

// ComputeSize is Compute that also reports the number of bytes read.
func ComputeSize(r io.Reader) (Digest, int64, error) {
	h := New()
	buf := pool.GetBlock()
	defer pool.PutBlock(buf)

	if _, err := io.CopyBuffer(h, onlyReader{r}, buf); err != nil {
		return Digest{}, h.Size(), errors.NewError("computeTreeHash", fmt.Errorf("%w: %w", errors.ErrIO, err))
	}
	return h.Sum(), h.Size(), nil
}

// onlyReader hides WriterTo so io.CopyBuffer always uses the pooled block.
type onlyReader struct {
	io.Reader
}
