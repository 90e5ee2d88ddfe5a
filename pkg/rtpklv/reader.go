package rtpklv

import (
	"io"

	"github.com/Mistobaan/klvdata/pkg/ringbuffer"
)

// Reader is a io.Reader that returns the content of KLV units in the order they are pushed.
// Units are pushed by a routine (usually the one that receives RTP packets)
// and read by another one, that can use the Reader as source of a klv.Reader.
type Reader struct {
	// maximum number of units waiting to be read.
	// It must be a power of two, and defaults to 256.
	QueueSize uint64

	queue *ringbuffer.RingBuffer
	cur   []byte
}

// Init initializes the reader.
func (r *Reader) Init() error {
	if r.QueueSize == 0 {
		r.QueueSize = 256
	}

	var err error
	r.queue, err = ringbuffer.New(r.QueueSize)
	return err
}

// Push adds a unit.
// It returns false when the queue is full or the reader is closed, in which case the unit is discarded.
func (r *Reader) Push(unit []byte) bool {
	return r.queue.Push(unit)
}

// Close makes Read() return io.EOF once pending units have been read.
func (r *Reader) Close() {
	r.queue.Close()
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		var ok bool
		r.cur, ok = r.queue.Pull()
		if !ok {
			return 0, io.EOF
		}
	}

	n := copy(p, r.cur)
	r.cur = r.cur[n:]

	return n, nil
}
