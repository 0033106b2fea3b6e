// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openavnu-go/aafmap/aaf"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cases := []Header{
		{
			Sequence:       5,
			TimestampValid: true,
			Timestamp:      0xDEADBEEF,
			Format:         aaf.FormatInt16,
			Rate:           aaf.Rate48k,
			Channels:       2,
			BitDepth:       16,
			PayloadLength:  192,
			EventField:     aaf.EventStaticChannelsLayout,
		},
		{
			Sequence:           8,
			TimestampValid:     false,
			TimestampUncertain: true,
			Sparse:             true,
			Format:             aaf.FormatInt24,
			Rate:               aaf.Rate96k,
			Channels:           6,
			BitDepth:           24,
			PayloadLength:      1152,
			EventField:         aaf.Event51ChannelsLayout,
		},
		{
			Sequence:      255,
			Format:        aaf.FormatInt32,
			Rate:          aaf.Rate192k,
			Channels:      1,
			BitDepth:      32,
			PayloadLength: 4,
		},
	}

	for _, want := range cases {
		buf := make([]byte, HeaderSize)
		require := assert.New(t)
		require.NoError(Encode(buf, want))

		got, err := Decode(buf)
		require.NoError(err)
		require.Equal(want, got)
	}
}

func TestEncode_TimestampZeroedWhenInvalid(t *testing.T) {
	buf := make([]byte, HeaderSize)
	assert.NoError(t, Encode(buf, Header{TimestampValid: false, Timestamp: 0xFFFFFFFF}))

	for i := offTimestamp; i < offTimestamp+4; i++ {
		assert.Equal(t, byte(0), buf[i])
	}

	got, err := Decode(buf)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), got.Timestamp)
}

func TestEncode_IsDeterministicAndWritesSubtype(t *testing.T) {
	h := Header{
		Sequence:      9,
		Format:        aaf.FormatInt16,
		Rate:          aaf.Rate44k1,
		Channels:      2,
		BitDepth:      16,
		PayloadLength: 256,
	}

	bufA := make([]byte, HeaderSize)
	bufB := make([]byte, HeaderSize)
	assert.NoError(t, Encode(bufA, h))
	assert.NoError(t, Encode(bufB, h))
	assert.Equal(t, bufA, bufB)
	assert.Equal(t, SubtypeAAF, bufA[0])
}

func TestEncode_SparseBitIsolatedToByte22Bit4(t *testing.T) {
	base := Header{PayloadLength: 10, EventField: aaf.Event71ChannelsLayout}

	without := make([]byte, HeaderSize)
	withSparse := make([]byte, HeaderSize)
	assert.NoError(t, Encode(without, base))
	base.Sparse = true
	assert.NoError(t, Encode(withSparse, base))

	assert.Equal(t, byte(0), without[spByteOffset]&spBit)
	assert.Equal(t, spBit, int(withSparse[spByteOffset]&spBit))

	// The event-field nibble in byte 22 is unaffected by the SP bit.
	assert.Equal(t, without[spByteOffset]&0x0F, withSparse[spByteOffset]&0x0F)
}

func TestEncode_PayloadLengthOccupiesTopTwoBytesOfPacketInfo(t *testing.T) {
	buf := make([]byte, HeaderSize)
	assert.NoError(t, Encode(buf, Header{PayloadLength: 0x0102}))

	assert.Equal(t, byte(0x01), buf[offPacketInfo])
	assert.Equal(t, byte(0x02), buf[offPacketInfo+1])
}

func TestDecode_BufferTooSmall(t *testing.T) {
	_, err := Decode(make([]byte, HeaderSize-1))
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	err = Encode(make([]byte, HeaderSize-1), Header{})
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestSequenceIsSparseTick(t *testing.T) {
	for seq := 0; seq < 256; seq++ {
		want := seq%8 == 0
		assert.Equal(t, want, SequenceIsSparseTick(uint8(seq)), "seq=%d", seq)
	}
}
