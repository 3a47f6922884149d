package treehash

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	glacierrors "github.com/input-output-hk/catalyst-forge-libs/aws/glacier/errors"
)

func TestVerifyingReader(t *testing.T) {
	data := randomBytes(t, 2*BlockSize+17, 9)
	expected, err := Compute(bytes.NewReader(data))
	require.NoError(t, err)

	t.Run("matching content", func(t *testing.T) {
		v := NewVerifyingReader(bytes.NewReader(data), expected)
		got, err := io.ReadAll(v)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("tampered content", func(t *testing.T) {
		tampered := bytes.Clone(data)
		tampered[BlockSize+1] ^= 0x80

		v := NewVerifyingReader(bytes.NewReader(tampered), expected)
		_, err := io.ReadAll(v)
		require.Error(t, err)
		assert.ErrorIs(t, err, glacierrors.ErrChecksumMismatch)

		// The failure is sticky
		_, err = v.Read(make([]byte, 1))
		assert.ErrorIs(t, err, glacierrors.ErrChecksumMismatch)
	})

	t.Run("close passes through", func(t *testing.T) {
		v := NewVerifyingReader(io.NopCloser(bytes.NewReader(nil)), Leaf(nil))
		assert.NoError(t, v.Close())
	})
}
