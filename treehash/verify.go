package treehash

import (
	"fmt"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
)

// VerifyingReader hashes everything read through it and, once the wrapped
// reader reports EOF, compares the result with the expected tree hash.
// A mismatch is returned in place of io.EOF.
type VerifyingReader struct {
	r        io.Reader
	h        *Hasher
	expected Digest
	err      error
}

// NewVerifyingReader wraps r so that reading it to EOF checks its tree hash.
func NewVerifyingReader(r io.Reader, expected Digest) *VerifyingReader {
	return &VerifyingReader{r: r, h: New(), expected: expected}
}

// Read implements io.Reader.
func (v *VerifyingReader) Read(p []byte) (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	n, err := v.r.Read(p)
	if n > 0 {
		_, _ = v.h.Write(p[:n])
	}
	if err == io.EOF {
		if got := v.h.Sum(); got != v.expected {
			v.err = errors.NewError("verifyTreeHash", errors.ErrChecksumMismatch).
				WithMessage(fmt.Sprintf("expected %s, got %s", v.expected, got))
			return n, v.err
		}
		v.err = io.EOF
	}
	return n, err
}

// Close closes the wrapped reader if it is an io.Closer.
func (v *VerifyingReader) Close() error {
	if c, ok := v.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
