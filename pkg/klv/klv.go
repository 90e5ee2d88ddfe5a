// Package klv contains a reader of KLV (Key-Length-Value) streams, as defined by SMPTE ST 336.
package klv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// DefaultKeyLength is the length of a SMPTE Universal Label.
const DefaultKeyLength = 16

// KeyHeader is the beginning of every SMPTE Universal Label.
var KeyHeader = [4]byte{0x06, 0x0e, 0x2b, 0x34}

// Well-known keys, that allow to tell which kind of KLV stream is being read.
var (
	// KeyUniversalSet is the key of universal sets.
	KeyUniversalSet = mustParseKey("06 0E 2B 34 - 01 01 01 01 - 0F 00 00 00 - 00 00 00 00")

	// KeyLocalSet is the key of local sets, used by MISB ST 0601.
	KeyLocalSet = mustParseKey("06 0E 2B 34 - 02 0B 01 01 – 0E 01 03 01 - 01 00 00 00")
)

// Key is a KLV key.
type Key []byte

// ParseKey parses a key in hexadecimal notation.
// Spaces and dashes between bytes are ignored, therefore
// "06 0E 2B 34 - 01 01 01 01" and "060e2b3401010101" are both valid.
func ParseKey(s string) (Key, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '–':
			return -1
		}
		return r
	}, s)

	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}

	if len(buf) == 0 {
		return nil, fmt.Errorf("invalid key: empty")
	}

	return Key(buf), nil
}

func mustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// String implements fmt.Stringer.
// Bytes are printed in groups of 4, like in SMPTE documents.
func (k Key) String() string {
	var sb strings.Builder

	for i, b := range k {
		if i != 0 {
			if (i % 4) == 0 {
				sb.WriteString(" - ")
			} else {
				sb.WriteByte(' ')
			}
		}
		fmt.Fprintf(&sb, "%02X", b)
	}

	return sb.String()
}

// Equal checks whether two keys have the same content.
func (k Key) Equal(other Key) bool {
	return bytes.Equal(k, other)
}

// HasHeader checks whether the key starts with KeyHeader.
func (k Key) HasHeader() bool {
	return bytes.HasPrefix(k, KeyHeader[:])
}

// Record is a KLV record.
type Record struct {
	Key   Key
	Value []byte
}
