package klv

import (
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/Mistobaan/klvdata/pkg/bytecounter"
	"github.com/Mistobaan/klvdata/pkg/liberrors"
)

const (
	// values up to this size are allocated at once,
	// bigger values are allocated while they are read.
	directReadMaxSize = 64 * 1024
)

// Reader reads KLV records from a stream.
// It is not safe for concurrent use.
type Reader struct {
	// source of the stream. It can be a file, a network connection,
	// or a buffer wrapped with NewBytesSource().
	// It is not closed by the reader.
	Source io.Reader

	// length of keys.
	// It defaults to DefaultKeyLength.
	KeyLength int

	// maximum size of values (optional).
	// It defaults to no limit.
	MaxValueSize int

	// called when bytes are discarded while searching for a key (optional).
	OnSkip func(n int)

	src *bytecounter.ByteCounter
	err error
}

// Init initializes the reader.
func (r *Reader) Init() error {
	if r.Source == nil {
		return fmt.Errorf("source not provided")
	}

	if r.KeyLength == 0 {
		r.KeyLength = DefaultKeyLength
	}
	if r.KeyLength < len(KeyHeader) {
		return fmt.Errorf("key length must be at least %d", len(KeyHeader))
	}

	if r.MaxValueSize < 0 {
		return fmt.Errorf("invalid maximum value size: %d", r.MaxValueSize)
	}

	if r.OnSkip == nil {
		r.OnSkip = func(int) {}
	}

	r.src = bytecounter.New(r.Source)
	r.err = nil

	return nil
}

// Offset returns the number of bytes consumed from the source.
// It is zero until the reader is initialized.
func (r *Reader) Offset() uint64 {
	if r.src == nil {
		return 0
	}
	return r.src.BytesReceived()
}

// Read reads the next record.
// It returns io.EOF when the source ends between two records,
// and liberrors.ErrReaderTruncated when the source ends inside a record.
// After an error is returned, every following call returns the same error.
func (r *Reader) Read() (*Record, error) {
	if r.err != nil {
		return nil, r.err
	}

	rec, err := r.readRecord()
	if err != nil {
		r.err = err
		return nil, err
	}

	return rec, nil
}

// All returns an iterator over the remaining records.
// Iteration stops when the source ends or an error occurs;
// the error can be retrieved with Err().
func (r *Reader) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for {
			rec, err := r.Read()
			if err != nil {
				return
			}

			if !yield(rec) {
				return
			}
		}
	}
}

// Err returns the error that stopped the reader, if the source did not end cleanly.
func (r *Reader) Err() error {
	if r.err == io.EOF {
		return nil
	}
	return r.err
}

func (r *Reader) readRecord() (*Record, error) {
	key, err := r.alignToKey()
	if err != nil {
		return nil, err
	}

	length, err := r.readLength()
	if err != nil {
		return nil, err
	}

	value, err := r.readValue(length)
	if err != nil {
		return nil, err
	}

	return &Record{
		Key:   key,
		Value: value,
	}, nil
}

func (r *Reader) truncated(err error, stage liberrors.ReaderStage, expected int, available int) error {
	if !isExhausted(err) {
		return err
	}

	return liberrors.ErrReaderTruncated{
		Stage:     stage,
		Offset:    r.src.BytesReceived(),
		Expected:  expected,
		Available: available,
	}
}

func (r *Reader) alignToKey() (Key, error) {
	window := make([]byte, r.KeyLength)
	n, err := io.ReadFull(r.src, window)
	if err != nil {
		if isExhausted(err) {
			return nil, r.endOfStream(window[:n], 0)
		}
		return nil, err
	}

	// a header may begin in the last bytes of the window
	keep := len(KeyHeader) - 1
	skipped := 0

	for {
		idx := bytes.Index(window, KeyHeader[:])

		switch {
		case idx == 0:
			r.skip(skipped)
			return Key(window), nil

		case idx > 0:
			r.skip(skipped + idx)

			key := make(Key, r.KeyLength)
			available := copy(key, window[idx:])

			n, err = io.ReadFull(r.src, key[available:])
			if err != nil {
				return nil, r.truncated(err, liberrors.ReaderStageKey, r.KeyLength, available+n)
			}

			return key, nil
		}

		skipped += len(window) - keep
		copy(window, window[len(window)-keep:])

		n, err = io.ReadFull(r.src, window[keep:])
		if err != nil {
			if isExhausted(err) {
				return nil, r.endOfStream(window[:keep+n], skipped)
			}
			return nil, err
		}
	}
}

// endOfStream is called when the source ends while searching for a key.
// The end is clean unless the remaining bytes contain the beginning of a key.
func (r *Reader) endOfStream(rest []byte, skipped int) error {
	idx := bytes.Index(rest, KeyHeader[:])
	if idx >= 0 {
		r.skip(skipped + idx)
		return liberrors.ErrReaderTruncated{
			Stage:     liberrors.ReaderStageKey,
			Offset:    r.src.BytesReceived(),
			Expected:  r.KeyLength,
			Available: len(rest) - idx,
		}
	}

	r.skip(skipped + len(rest))
	return io.EOF
}

func (r *Reader) skip(n int) {
	if n != 0 {
		r.OnSkip(n)
	}
}

func (r *Reader) readLength() (int, error) {
	length, expected, available, err := readLength(r.src)
	if err != nil {
		if err == errLengthOverflow {
			return 0, liberrors.ErrReaderLengthInvalid{
				Offset:      r.src.BytesReceived(),
				LengthBytes: expected,
			}
		}
		return 0, r.truncated(err, liberrors.ReaderStageLength, expected, available)
	}

	if r.MaxValueSize != 0 && length > r.MaxValueSize {
		return 0, liberrors.ErrReaderValueTooBig{
			Offset: r.src.BytesReceived(),
			Length: length,
			Max:    r.MaxValueSize,
		}
	}

	return length, nil
}

func (r *Reader) readValue(length int) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}

	if length <= directReadMaxSize {
		value := make([]byte, length)
		n, err := io.ReadFull(r.src, value)
		if err != nil {
			return nil, r.truncated(err, liberrors.ReaderStageValue, length, n)
		}
		return value, nil
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r.src, int64(length))
	if err != nil {
		return nil, r.truncated(err, liberrors.ReaderStageValue, length, int(n))
	}

	return buf.Bytes(), nil
}

// ReadAll reads all records of a stream.
// In case the stream ends inside a record, records read until then are returned together with the error.
func ReadAll(src io.Reader, keyLength int) ([]*Record, error) {
	r := &Reader{
		Source:    src,
		KeyLength: keyLength,
	}
	err := r.Init()
	if err != nil {
		return nil, err
	}

	var recs []*Record

	for rec := range r.All() {
		recs = append(recs, rec)
	}

	return recs, r.Err()
}
