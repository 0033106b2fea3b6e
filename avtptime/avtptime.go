// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package avtptime defines the AVTP presentation-timestamp contract that
// MapCore manipulates on every media-queue item, plus a plain reference
// implementation for tests and the demo command. Production integrations
// supply their own Time backed by whatever clock domain their platform
// uses; this module only ever calls the contract's methods.
package avtptime

// Time is the per-item presentation-timestamp handle MapCore reads and
// writes. It is owned by the media queue item it is attached to.
type Time interface {
	TimestampIsValid() bool
	SetTimestampValid(valid bool)
	TimestampIsUncertain() bool
	SetTimestampUncertain(uncertain bool)
	AddUSec(usec uint32)
	SubUSec(usec uint32)
	GetAvtpTimestamp() uint32
	SetToTimestamp(ts uint32)
}

// Clock is a monotonically increasing microsecond source for Time
// implementations backed by a real clock; production AVTP time
// implementations typically derive it from a gPTP clock. The reference Ref
// below does not use a Clock, and this package provides no Clock
// implementation.
type Clock interface {
	NowUSec() uint64
}

// Ref is a minimal reference Time implementation: a valid/uncertain flag
// pair and a 64-bit microsecond value truncated to the 32-bit wire
// timestamp on demand. It is not safe for concurrent use; each media-queue
// item in the reference mediaq package owns its own instance.
type Ref struct {
	valid     bool
	uncertain bool
	usec      uint64
}

// NewRef creates a Ref with the given starting microsecond value.
func NewRef(usec uint64) *Ref {
	return &Ref{usec: usec}
}

func (t *Ref) TimestampIsValid() bool { return t.valid }

func (t *Ref) SetTimestampValid(valid bool) { t.valid = valid }

func (t *Ref) TimestampIsUncertain() bool { return t.uncertain }

func (t *Ref) SetTimestampUncertain(uncertain bool) { t.uncertain = uncertain }

func (t *Ref) AddUSec(usec uint32) { t.usec += uint64(usec) }

func (t *Ref) SubUSec(usec uint32) {
	if uint64(usec) > t.usec {
		t.usec = 0
		return
	}
	t.usec -= uint64(usec)
}

// GetAvtpTimestamp returns the low 32 bits of the microsecond value, the
// wire representation used by the AAF header's timestamp field.
func (t *Ref) GetAvtpTimestamp() uint32 { return uint32(t.usec) }

// SetToTimestamp sets the microsecond value's low 32 bits from ts, keeping
// the high bits (the "epoch" portion) unchanged — mirroring how a real AVTP
// time abstraction reconciles a 32-bit wire timestamp against its own wall
// clock.
func (t *Ref) SetToTimestamp(ts uint32) {
	t.usec = (t.usec &^ 0xFFFFFFFF) | uint64(ts)
}

// Reset clears validity flags and sets the microsecond value, for reuse
// across media-queue item cycles.
func (t *Ref) Reset(usec uint64) {
	t.valid = false
	t.uncertain = false
	t.usec = usec
}
