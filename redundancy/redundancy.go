// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package redundancy implements the Max Allowed Dropout Time (MADT)
// temporal-redundancy engine: every packet carries, alongside its primary
// payload, a second payload copy delayed by a configurable number of
// packets, so a listener that misses one packet can still recover its audio
// from the duplicate it already received. It is a direct port of the
// map_aaf_audio temporalRedundantQueue/trStatsEntryTypeQueue machinery onto
// ringqueue.Queue.
package redundancy

import (
	"time"

	"github.com/openavnu-go/aafmap/aaf"
	"github.com/openavnu-go/aafmap/ringqueue"
	"github.com/openavnu-go/aafmap/sampleconv"
)

// Stats is a point-in-time snapshot of the engine's loss-recovery counters.
type Stats struct {
	TotalFrames        uint64
	LostFrames         uint64
	NeededAvailable    uint64
	NeededNotAvailable uint64
}

// counters accumulates Stats. It follows the same single-writer,
// snapshot-by-value convention as stats.Flow; callers on the hot path never
// read concurrently with the writer, so plain fields (not atomics) are
// enough here.
type counters struct {
	Stats
}

func (c *counters) snapshot() Stats { return c.Stats }

func (c *counters) reset() { c.Stats = Stats{} }

// Engine holds the delay-line state for one AAF stream. The zero value is
// not ready for use; call Reset before TalkerSwap/Save/Lost.
type Engine struct {
	data       ringqueue.Queue
	entryTypes ringqueue.Queue

	frameSize     int
	offsetPackets int
	enabled       bool

	stats          counters
	reportInterval time.Duration
	nextReport     time.Time
}

// Disabled reports whether the last Reset had a zero offsetPackets or
// frameSize, i.e. temporal redundancy is off: TalkerSwap then returns its
// input unchanged, Save does nothing, and Lost only zero-fills dst.
func (e *Engine) Disabled() bool { return !e.enabled }

// Reset (re)allocates the delay line for a stream with the given per-packet
// frame size and redundancy offset, expressed in whole packets. offsetPackets
// of 0 disables the engine. isListener additionally primes the entry-type
// tracking queue used by Save/Lost.
func (e *Engine) Reset(frameSize, offsetPackets int, isListener bool) {
	e.frameSize = frameSize
	e.offsetPackets = offsetPackets
	e.enabled = offsetPackets > 0 && frameSize > 0
	e.stats.reset()

	if !e.enabled {
		e.data.Free()
		e.entryTypes.Free()
		return
	}

	queueSize := frameSize * (offsetPackets + 2)
	e.data.Allocate(queueSize)
	e.data.Push(nil, frameSize*offsetPackets)

	if isListener {
		e.entryTypes.Allocate(offsetPackets + 10)
		e.entryTypes.Push(nil, offsetPackets)
	}
}

// PrimeListenerStats allocates and primes the entry-type tracking queue
// that Save/Lost use to recall each saved block's format. Reset already
// sizes and primes the data queue itself; this covers the listener-only
// half of setup, called once a stream is known to be a listener.
func (e *Engine) PrimeListenerStats() {
	if !e.enabled {
		return
	}
	e.entryTypes.Allocate(e.offsetPackets + 10)
	e.entryTypes.Push(nil, e.offsetPackets)
}

// SetReportInterval configures the cadence for ShouldReport, and rebases the
// next deadline from now.
func (e *Engine) SetReportInterval(now time.Time, interval time.Duration) {
	e.reportInterval = interval
	if interval > 0 {
		e.nextReport = now.Add(interval)
	}
}

// ShouldReport reports whether the report interval has elapsed as of now,
// and if so, returns the accumulated Stats and resets the counters and
// deadline. If now has drifted past the deadline by more than one interval
// (e.g. after a long stall), the deadline is rebased from now rather than
// catching up one interval at a time.
func (e *Engine) ShouldReport(now time.Time) (Stats, bool) {
	if e.reportInterval <= 0 || now.Before(e.nextReport) {
		return Stats{}, false
	}

	s := e.stats.snapshot()
	e.stats.reset()

	e.nextReport = e.nextReport.Add(e.reportInterval)
	if now.After(e.nextReport) {
		e.nextReport = now.Add(e.reportInterval)
	}
	return s, true
}

// TalkerSwap is called once per outgoing packet with the frame that was just
// read from the media queue. It pushes current into the delay line, padding
// up to the queue's frame stride when current is narrower (a listener-width
// stride accommodating a wider format than this talker is actually sending),
// and returns the frame that was pushed offsetPackets packets earlier, which
// the caller places in the packet's primary payload slot (current goes in
// the redundant slot). If the engine is disabled, it returns current
// unchanged.
func (e *Engine) TalkerSwap(current []byte) []byte {
	if !e.enabled {
		return current
	}

	n := len(current)
	e.data.Push(current, n)
	if n < e.frameSize {
		e.data.Push(nil, e.frameSize-n)
	}

	delayed := make([]byte, n)
	e.data.Pull(delayed, n)
	if n < e.frameSize {
		e.data.Pull(nil, e.frameSize-n)
	}
	return delayed
}

// Save is called by a listener for every successfully received packet. It
// records the packet's redundant payload (and the format it was encoded in)
// for later loss recovery, and discards the oldest saved entry — whose
// window has now passed — updating TotalFrames. debugVerify, when true, also
// compares the discarded entry against primary to detect desynchronization;
// mismatches are reported via the returned bool.
func (e *Engine) Save(redundantPayload []byte, format aaf.Format, primaryPayload []byte, debugVerify bool) (mismatch bool) {
	if !e.enabled {
		return false
	}

	e.entryTypes.Push([]byte{byte(format)}, 1)
	e.data.Push(redundantPayload, len(redundantPayload))
	if len(redundantPayload) < e.frameSize {
		e.data.Push(nil, e.frameSize-len(redundantPayload))
	}

	var discardedFormat [1]byte
	e.entryTypes.Pull(discardedFormat[:], 1)

	if debugVerify && aaf.Format(discardedFormat[0]) != aaf.FormatUnspec {
		if !e.data.Compare(primaryPayload, len(primaryPayload)) {
			mismatch = true
		}
	}
	e.data.Pull(nil, e.frameSize)

	e.stats.TotalFrames++
	return mismatch
}

// Lost is called by a listener when a packet's primary payload was not
// received. It attempts to recover the missing frame from the delay line,
// converting sample width if the saved entry was encoded in a different
// integer format than currentFormat. dst must be at least
// currentFormat.SampleBytes()-scaled to hold payloadSize bytes; Lost fills
// exactly payloadSize bytes of dst (zero-filling on failure) and reports
// whether real (non-zero) data was recovered.
func (e *Engine) Lost(dst []byte, payloadSize int, currentFormat aaf.Format) (recovered bool) {
	if !e.enabled {
		zero(dst[:payloadSize])
		return false
	}
	defer e.pushBlankEntry()

	e.stats.TotalFrames++
	e.stats.LostFrames++

	var savedFormat [1]byte
	e.entryTypes.Pull(savedFormat[:], 1)
	format := aaf.Format(savedFormat[0])

	if format == aaf.FormatUnspec {
		e.stats.NeededNotAvailable++
		e.data.Pull(dst[:payloadSize], payloadSize)
		if payloadSize < e.frameSize {
			e.data.Pull(nil, e.frameSize-payloadSize)
		}
		return false
	}

	e.stats.NeededAvailable++

	if format == currentFormat || !format.IsInteger() || !currentFormat.IsInteger() {
		e.data.Pull(dst[:payloadSize], payloadSize)
		if payloadSize < e.frameSize {
			e.data.Pull(nil, e.frameSize-payloadSize)
		}
		return true
	}

	saved := make([]byte, e.frameSize)
	e.data.Pull(saved, e.frameSize)

	inLen := payloadSize / currentFormat.SampleBytes() * format.SampleBytes()
	n := sampleconv.Convert(dst[:payloadSize], saved[:inLen], format, currentFormat)
	if n != payloadSize {
		zero(dst[n:payloadSize])
	}
	return true
}

// pushBlankEntry replaces the slot Lost just consumed with a synthetic
// Unspec entry, so the delay line's depth stays constant even though the
// lost packet never contributed real data to it.
func (e *Engine) pushBlankEntry() {
	e.entryTypes.Push([]byte{byte(aaf.FormatUnspec)}, 1)
	e.data.Push(nil, e.frameSize)
}

// Snapshot returns the current loss-recovery counters without resetting
// them.
func (e *Engine) Snapshot() Stats { return e.stats.snapshot() }

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
