// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the AAFHeaderCodec: pure functions that write and
// parse the combined 24-byte AVTP common header + AAF-specific header
// described by IEEE 1722-2016 Clause 7, in the byte-offset style of the
// teacher's protos/rtp.Packet header handling (explicit offsets,
// encoding/binary big-endian access) rather than a generic bit-packed
// struct codec.
package wire

import (
	"encoding/binary"
	"errors"

	"github.com/openavnu-go/aafmap/aaf"
)

// Fixed sizes of the header regions.
const (
	AVTPCommonHeaderSize = 12
	AAFHeaderSize        = 12
	HeaderSize           = AVTPCommonHeaderSize + AAFHeaderSize

	// SubtypeAAF is the AVTP subtype value for the AAF mapping.
	SubtypeAAF byte = 2
	// AVTPVersion0 is the only AVTP version this mapping understands.
	AVTPVersion0 byte = 0
)

// Byte offsets and bit positions within the combined header.
const (
	offFlagsTV    = 1
	offSequence   = 2
	offFlagsTU    = 3
	offTimestamp  = 12
	offFormatWord = 16
	offPacketInfo = 20

	bitTV = 0x01
	bitTU = 0x01

	spByteOffset = 22
	spBit        = 1 << 4
)

// ErrBufferTooSmall is returned when a buffer shorter than HeaderSize is
// passed to Encode or Decode.
var ErrBufferTooSmall = errors.New("wire: buffer shorter than AAF header size")

// Header is the decoded/encodable form of the combined AVTP+AAF header.
// Fields not owned by this mapping (subtype, stream ID) are not modeled;
// the lower layer is responsible for them except where noted.
type Header struct {
	Sequence           uint8
	TimestampValid     bool
	TimestampUncertain bool
	Sparse             bool
	Timestamp          uint32 // meaningful only when TimestampValid

	Format     aaf.Format
	Rate       aaf.Rate
	Channels   uint16
	BitDepth   uint8
	EventField aaf.EventField

	PayloadLength uint16
}

// Encode writes h into buf[:HeaderSize]. It fills the subtype byte 0 with
// SubtypeAAF, the flag bits (TV at byte 1 bit 0, TU at byte 3 bit 0), the
// sequence number, and bytes 12-23
// (timestamp, format word, packet-info word including the SP bit). Bytes
// 4-11 (stream ID / reserved) are left untouched, as they belong to the
// lower layer. The timestamp field is zeroed when TimestampValid is false.
func Encode(buf []byte, h Header) error {
	if len(buf) < HeaderSize {
		return ErrBufferTooSmall
	}

	buf[0] = SubtypeAAF
	buf[offSequence] = h.Sequence

	if h.TimestampValid {
		buf[offFlagsTV] |= bitTV
	} else {
		buf[offFlagsTV] &^= bitTV
	}
	if h.TimestampUncertain {
		buf[offFlagsTU] |= bitTU
	} else {
		buf[offFlagsTU] &^= bitTU
	}

	var ts uint32
	if h.TimestampValid {
		ts = h.Timestamp
	}
	binary.BigEndian.PutUint32(buf[offTimestamp:offTimestamp+4], ts)

	formatWord := uint32(h.Format)<<24 | uint32(h.Rate)<<20 | uint32(h.Channels)<<8 | uint32(h.BitDepth)
	binary.BigEndian.PutUint32(buf[offFormatWord:offFormatWord+4], formatWord)

	packetInfo := uint32(h.PayloadLength)<<16 | uint32(h.EventField)<<8
	binary.BigEndian.PutUint32(buf[offPacketInfo:offPacketInfo+4], packetInfo)

	if h.Sparse {
		buf[spByteOffset] |= spBit
	} else {
		buf[spByteOffset] &^= spBit
	}

	return nil
}

// Decode parses buf[:HeaderSize] into a Header. The timestamp is reported
// as 0 when TV is clear, matching Encode's convention.
func Decode(buf []byte) (Header, error) {
	var h Header
	if len(buf) < HeaderSize {
		return h, ErrBufferTooSmall
	}

	h.TimestampValid = buf[offFlagsTV]&bitTV != 0
	h.Sequence = buf[offSequence]
	h.TimestampUncertain = buf[offFlagsTU]&bitTU != 0

	ts := binary.BigEndian.Uint32(buf[offTimestamp : offTimestamp+4])
	if h.TimestampValid {
		h.Timestamp = ts
	}

	formatWord := binary.BigEndian.Uint32(buf[offFormatWord : offFormatWord+4])
	h.Format = aaf.Format((formatWord >> 24) & 0xFF)
	h.Rate = aaf.Rate((formatWord >> 20) & 0x0F)
	h.Channels = uint16((formatWord >> 8) & 0x3FF)
	h.BitDepth = uint8(formatWord & 0xFF)

	packetInfo := binary.BigEndian.Uint32(buf[offPacketInfo : offPacketInfo+4])
	h.PayloadLength = uint16((packetInfo >> 16) & 0xFFFF)
	h.EventField = aaf.EventField((packetInfo >> 8) & 0x0F)
	h.Sparse = buf[spByteOffset]&spBit != 0

	return h, nil
}

// SequenceIsSparseTick reports whether seq is one of the every-eighth
// packets that carries a valid timestamp under sparse mode.
func SequenceIsSparseTick(seq uint8) bool {
	return seq&0x07 == 0
}
