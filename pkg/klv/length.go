package klv

import (
	"fmt"
	"io"
	"math"
)

const (
	lengthLongFormBit = 0x80
)

// decodeLengthBytes decodes the big-endian value of a long-form length.
func decodeLengthBytes(buf []byte) (int, bool) {
	var v uint64

	for _, b := range buf {
		if v > (math.MaxInt >> 8) {
			return 0, false
		}
		v = (v << 8) | uint64(b)
	}

	return int(v), true
}

// readLength reads a BER length.
// In case of a short read, it returns the error of io.ReadFull together with
// the number of requested and available bytes of the failed read.
// io.EOF is returned only when no byte at all was available.
func readLength(r io.Reader) (int, int, int, error) {
	var first [1]byte
	n, err := io.ReadFull(r, first[:])
	if err != nil {
		return 0, 1, n, err
	}

	// short form
	if (first[0] & lengthLongFormBit) == 0 {
		return int(first[0]), 0, 0, nil
	}

	// long form
	count := int(first[0] &^ lengthLongFormBit)
	if count == 0 {
		return 0, 0, 0, nil
	}

	buf := make([]byte, count)
	n, err = io.ReadFull(r, buf)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, count, n, err
	}

	length, ok := decodeLengthBytes(buf)
	if !ok {
		return 0, count, count, errLengthOverflow
	}

	return length, 0, 0, nil
}

var errLengthOverflow = fmt.Errorf("length does not fit in an int")

// ReadLength reads a BER length from a stream.
// It returns io.EOF when the stream is empty and
// io.ErrUnexpectedEOF when the stream ends inside the length.
func ReadLength(r io.Reader) (int, error) {
	length, _, _, err := readLength(r)
	return length, err
}

// ParseLength parses a BER length from a buffer.
// It returns the length and the number of bytes used by the length field.
func ParseLength(buf []byte) (int, int, error) {
	if len(buf) < 1 {
		return 0, 0, fmt.Errorf("buffer is too short")
	}

	if (buf[0] & lengthLongFormBit) == 0 {
		return int(buf[0]), 1, nil
	}

	count := int(buf[0] &^ lengthLongFormBit)
	if len(buf) < (1 + count) {
		return 0, 0, fmt.Errorf("insufficient data for length field")
	}

	length, ok := decodeLengthBytes(buf[1 : 1+count])
	if !ok {
		return 0, 0, errLengthOverflow
	}

	return length, 1 + count, nil
}
