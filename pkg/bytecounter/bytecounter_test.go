package bytecounter

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestByteCounter(t *testing.T) {
	bc := New(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))

	buf := make([]byte, 3)
	n, err := bc.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = bc.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = bc.Read(buf)
	require.Equal(t, io.EOF, err)

	require.Equal(t, uint64(4), bc.BytesReceived())
}

func TestByteCounterDataWithError(t *testing.T) {
	testErr := errors.New("broken source")

	bc := New(iotest.DataErrReader(io.MultiReader(
		bytes.NewReader([]byte{0x01, 0x02}),
		iotest.ErrReader(testErr),
	)))

	_, err := io.ReadAll(bc)
	require.Equal(t, testErr, err)
	require.Equal(t, uint64(2), bc.BytesReceived())
}
