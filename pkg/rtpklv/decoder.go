package rtpklv

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pion/rtp"

	"github.com/Mistobaan/klvdata/pkg/klv"
)

// ErrMorePacketsNeeded is returned when more packets are needed to complete a KLV unit.
var ErrMorePacketsNeeded = errors.New("need more packets")

// ErrNonStartingPacketAndNoPrevious is returned when we received a non-starting
// packet of a fragmented KLV unit and we didn't receive anything before.
// It's normal to receive this when decoding a stream that has been already
// running for some time.
var ErrNonStartingPacketAndNoPrevious = errors.New(
	"received a non-starting fragment without any previous starting fragment")

// unitIsComplete checks whether a KLV unit is made of whole KLV items.
func unitIsComplete(unit []byte, keyLength int) error {
	for len(unit) != 0 {
		if len(unit) < keyLength {
			return fmt.Errorf("truncated key")
		}

		if !bytes.HasPrefix(unit, klv.KeyHeader[:]) {
			return fmt.Errorf("invalid key")
		}

		length, lengthSize, err := klv.ParseLength(unit[keyLength:])
		if err != nil {
			return err
		}

		unit = unit[keyLength+lengthSize:]

		if length > len(unit) {
			return fmt.Errorf("truncated value: expected %d bytes, available %d",
				length, len(unit))
		}

		unit = unit[length:]
	}

	return nil
}

// Decoder is a RTP/KLV decoder.
// Specification: RFC6597
type Decoder struct {
	// length of keys.
	// It defaults to klv.DefaultKeyLength.
	KeyLength int

	buffer              []byte
	timestamp           uint32
	assembling          bool
	lastSeqNum          uint16
	firstPacketReceived bool
}

// Init initializes the decoder.
func (d *Decoder) Init() error {
	if d.KeyLength == 0 {
		d.KeyLength = klv.DefaultKeyLength
	}
	if d.KeyLength < len(klv.KeyHeader) {
		return fmt.Errorf("key length must be at least %d", len(klv.KeyHeader))
	}

	d.resetUnit()
	d.firstPacketReceived = false
	return nil
}

func (d *Decoder) resetUnit() {
	d.buffer = nil
	d.timestamp = 0
	d.assembling = false
}

// Decode decodes a KLV unit from RTP packets.
// It returns the complete KLV unit when all packets have been received,
// or ErrMorePacketsNeeded if more packets are needed.
func (d *Decoder) Decode(pkt *rtp.Packet) ([]byte, error) {
	if d.firstPacketReceived {
		expectedSeqNum := d.lastSeqNum + 1
		if pkt.SequenceNumber != expectedSeqNum {
			d.lastSeqNum = pkt.SequenceNumber
			d.resetUnit()
			return nil, fmt.Errorf("packet loss detected: expected seq %d, got %d",
				expectedSeqNum, pkt.SequenceNumber)
		}
	}
	d.lastSeqNum = pkt.SequenceNumber
	d.firstPacketReceived = true

	if !d.assembling {
		if !bytes.HasPrefix(pkt.Payload, klv.KeyHeader[:]) {
			return nil, ErrNonStartingPacketAndNoPrevious
		}

		d.timestamp = pkt.Timestamp
		d.assembling = true
		d.buffer = append([]byte(nil), pkt.Payload...)
	} else {
		if pkt.Timestamp != d.timestamp {
			prev := d.timestamp
			d.resetUnit()
			return nil, fmt.Errorf("incomplete KLV unit: timestamp changed from %d to %d",
				prev, pkt.Timestamp)
		}

		d.buffer = append(d.buffer, pkt.Payload...)
	}

	if !pkt.Marker {
		return nil, ErrMorePacketsNeeded
	}

	unit := d.buffer
	d.resetUnit()

	err := unitIsComplete(unit, d.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("invalid KLV unit: %w", err)
	}

	return unit, nil
}
