// Package liberrors contains errors returned by the library.
package liberrors

import (
	"fmt"
	"io"
)

// ReaderStage is the stage of a KLV record at which a reader stopped.
type ReaderStage int

// stages.
const (
	ReaderStageKey ReaderStage = iota
	ReaderStageLength
	ReaderStageValue
)

// String implements fmt.Stringer.
func (s ReaderStage) String() string {
	switch s {
	case ReaderStageKey:
		return "key"
	case ReaderStageLength:
		return "length"
	case ReaderStageValue:
		return "value"
	}
	return "unknown"
}

// ErrReaderTruncated is returned when the source ends in the middle of a record.
type ErrReaderTruncated struct {
	Stage     ReaderStage
	Offset    uint64
	Expected  int
	Available int
}

// Error implements the error interface.
func (e ErrReaderTruncated) Error() string {
	return fmt.Sprintf("source ended inside %v at offset %d: expected %d bytes, available %d",
		e.Stage, e.Offset, e.Expected, e.Available)
}

// Unwrap allows to match the error with io.ErrUnexpectedEOF.
func (e ErrReaderTruncated) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// ErrReaderLengthInvalid is returned when a BER length field cannot be represented.
type ErrReaderLengthInvalid struct {
	Offset      uint64
	LengthBytes int
}

// Error implements the error interface.
func (e ErrReaderLengthInvalid) Error() string {
	return fmt.Sprintf("invalid BER length at offset %d: %d length bytes do not fit in an int",
		e.Offset, e.LengthBytes)
}

// ErrReaderValueTooBig is returned when a value exceeds the configured maximum size.
type ErrReaderValueTooBig struct {
	Offset uint64
	Length int
	Max    int
}

// Error implements the error interface.
func (e ErrReaderValueTooBig) Error() string {
	return fmt.Sprintf("value at offset %d is too big (%d bytes, maximum is %d)",
		e.Offset, e.Length, e.Max)
}
