// Package bytecounter contains a io.Reader wrapper that allows to count read bytes.
package bytecounter

import (
	"io"
	"sync/atomic"
)

// ByteCounter is a io.Reader wrapper that allows to count read bytes.
type ByteCounter struct {
	r        io.Reader
	received uint64
}

// New allocates a ByteCounter.
func New(r io.Reader) *ByteCounter {
	return &ByteCounter{
		r: r,
	}
}

// Read implements io.Reader.
// Bytes returned together with an error are counted too, since they are consumed from the source.
func (bc *ByteCounter) Read(p []byte) (int, error) {
	n, err := bc.r.Read(p)
	atomic.AddUint64(&bc.received, uint64(n))
	return n, err
}

// BytesReceived returns the number of bytes received.
func (bc *ByteCounter) BytesReceived() uint64 {
	return atomic.LoadUint64(&bc.received)
}
