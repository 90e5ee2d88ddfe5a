package klv

import (
	"bytes"
	"io"
)

// NewBytesSource allows to read KLV records from a buffer that is already in memory.
func NewBytesSource(buf []byte) io.Reader {
	return bytes.NewReader(buf)
}

// isExhausted checks whether an error returned by io.ReadFull means that the source ended.
func isExhausted(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
