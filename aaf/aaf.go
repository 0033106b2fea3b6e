// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package aaf holds the enumerations shared by every layer of the AAF
// (AVTP Audio Format, IEEE 1722-2016 Clause 7) mapping: the wire codec, the
// sample-width converter, the temporal-redundancy engine and the mapping
// core itself.
package aaf

// Rate is the AAF nominal sample rate enumeration carried in the format word.
type Rate uint8

// Nominal sample rates defined by Clause 7.
const (
	RateUnspec Rate = iota
	Rate8k
	Rate16k
	Rate32k
	Rate44k1
	Rate48k
	Rate88k2
	Rate96k
	Rate176k4
	Rate192k
	Rate24k
)

// RateFromHz maps an audio sample rate in Hz to its AAF enumeration.
// The zero value (RateUnspec, false) is returned for unsupported rates.
func RateFromHz(hz uint32) (Rate, bool) {
	switch hz {
	case 8000:
		return Rate8k, true
	case 16000:
		return Rate16k, true
	case 24000:
		return Rate24k, true
	case 32000:
		return Rate32k, true
	case 44100:
		return Rate44k1, true
	case 48000:
		return Rate48k, true
	case 88200:
		return Rate88k2, true
	case 96000:
		return Rate96k, true
	case 176400:
		return Rate176k4, true
	case 192000:
		return Rate192k, true
	default:
		return RateUnspec, false
	}
}

// Hz returns the nominal sample rate in Hz, or 0 if unspecified/unknown.
func (r Rate) Hz() uint32 {
	switch r {
	case Rate8k:
		return 8000
	case Rate16k:
		return 16000
	case Rate24k:
		return 24000
	case Rate32k:
		return 32000
	case Rate44k1:
		return 44100
	case Rate48k:
		return 48000
	case Rate88k2:
		return 88200
	case Rate96k:
		return 96000
	case Rate176k4:
		return 176400
	case Rate192k:
		return 192000
	default:
		return 0
	}
}

// Format is the AAF sample format enumeration carried in the format word.
type Format uint8

// Sample formats defined by Clause 7. AES3_32 is named for completeness but
// is explicitly out of scope (see Non-goals) and never produced here.
const (
	FormatUnspec Format = iota
	FormatFloat32
	FormatInt32
	FormatInt24
	FormatInt16
	FormatAES3_32
)

// IsInteger reports whether f is one of the three integer PCM formats this
// module converts between.
func (f Format) IsInteger() bool {
	return f >= FormatInt32 && f <= FormatInt16
}

// SampleBytes returns the per-sample byte width of an integer format, using
// the Clause-7-derived identity width = 6 - enum. Callers must check
// IsInteger first; the result is meaningless for non-integer formats.
func (f Format) SampleBytes() int {
	return 6 - int(f)
}

// BitDepth returns the conventional bit depth label (16/24/32) for an
// integer format, or 0 if f is not an integer format.
func (f Format) BitDepth() uint8 {
	switch f {
	case FormatInt32:
		return 32
	case FormatInt24:
		return 24
	case FormatInt16:
		return 16
	default:
		return 0
	}
}

// FormatFromBitDepth maps an integer bit depth to its AAF format enum.
func FormatFromBitDepth(bitDepth uint8) (Format, bool) {
	switch bitDepth {
	case 32:
		return FormatInt32, true
	case 24:
		return FormatInt24, true
	case 16:
		return FormatInt16, true
	default:
		return FormatUnspec, false
	}
}

// EventField is the automotive channel-layout event byte. Static (0) is the
// default; the numbered layouts are passed through transparently by
// MapCore without being interpreted.
type EventField uint8

// Automotive channel layouts defined alongside Clause 7's AAF usage.
const (
	EventStaticChannelsLayout EventField = 0
	EventMonoChannelsLayout   EventField = 1
	EventStereoChannelsLayout EventField = 2
	Event51ChannelsLayout     EventField = 3
	Event71ChannelsLayout     EventField = 4
	EventMaxChannelsLayout    EventField = 15
)

// SparseMode controls whether only every eighth packet carries a valid
// presentation timestamp.
type SparseMode uint8

// Sparse-timestamping modes.
const (
	SparseModeDisabled SparseMode = iota
	SparseModeEnabled
)

// MCRMode is the opaque Media Clock Recovery mode forwarded to the HAL.
type MCRMode uint32

// MCRNone disables Media Clock Recovery.
const MCRNone MCRMode = 0
