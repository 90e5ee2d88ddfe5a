// Package ringbuffer contains a ring buffer of byte chunks.
package ringbuffer

import (
	"fmt"
	"sync"
)

// RingBuffer is a bounded ring buffer of byte chunks,
// that allows a producer routine to pass data to a consumer routine.
type RingBuffer struct {
	size uint64

	mutex      sync.Mutex
	cond       *sync.Cond
	readIndex  uint64
	writeIndex uint64
	closed     bool
	buffer     [][]byte
}

// New allocates a RingBuffer.
func New(size uint64) (*RingBuffer, error) {
	// when writeIndex overflows, if size is not a power of
	// two, only a portion of the buffer is used.
	if size == 0 || (size&(size-1)) != 0 {
		return nil, fmt.Errorf("size must be a power of two")
	}

	r := &RingBuffer{
		size:   size,
		buffer: make([][]byte, size),
	}
	r.cond = sync.NewCond(&r.mutex)

	return r, nil
}

// Close makes Push() return false, and Pull() return false once the buffer is empty.
// A closed buffer cannot be reopened.
func (r *RingBuffer) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true
	r.cond.Broadcast()
}

// Push pushes data at the end of the buffer.
// It returns false when the buffer is full or closed, in which case data is discarded.
func (r *RingBuffer) Push(data []byte) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed || (r.writeIndex-r.readIndex) == r.size {
		return false
	}

	r.buffer[r.writeIndex%r.size] = data
	r.writeIndex++
	r.cond.Signal()

	return true
}

// Pull pulls data from the beginning of the buffer.
// It blocks until data is available, and returns false when the buffer is closed and empty.
func (r *RingBuffer) Pull() ([]byte, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for r.readIndex == r.writeIndex {
		if r.closed {
			return nil, false
		}
		r.cond.Wait()
	}

	i := r.readIndex % r.size
	data := r.buffer[i]
	r.buffer[i] = nil
	r.readIndex++

	return data, true
}
