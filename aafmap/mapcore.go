// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package aafmap implements MapCore, the AAF (AVTP Audio Format) mapping
// module: it turns media-queue items into AAF/AVTP packets on the talker
// side and AAF/AVTP packets back into media-queue items on the listener
// side, including the optional temporal-redundancy (MADT) loss-recovery
// path. It is built on the aaf/wire/sampleconv/redundancy/mediaq/avtptime/mcr
// packages.
package aafmap

import (
	"time"

	"github.com/cnotch/xlog"
	"github.com/kelindar/rate"

	"github.com/openavnu-go/aafmap/aaf"
	"github.com/openavnu-go/aafmap/mcr"
	"github.com/openavnu-go/aafmap/mediaq"
	"github.com/openavnu-go/aafmap/redundancy"
	"github.com/openavnu-go/aafmap/sampleconv"
	"github.com/openavnu-go/aafmap/wire"
)

// MapCore is one stream's AAF mapping state: the derived packet/item sizes
// computed from Config, the mutable validity/sync flags, the temporal
// redundancy engine, and the external collaborators (media queue, MCR HAL)
// it was wired to.
type MapCore struct {
	cfg Config

	// Derived sizes, computed once by calculateSizes (called from GenInit).
	ready                   bool
	rate                    aaf.Rate
	format                  aaf.Format
	bitDepth               uint8
	framesPerPacket        uint32
	itemSampleSizeBytes    int
	packetSampleSizeBytes  int
	itemFrameSizeBytes     int
	packetFrameSizeBytes   int
	framesPerItem          uint32
	itemSize               int
	payloadSize            int
	payloadSizeMaxTalker   int
	payloadSizeMaxListener int

	temporalRedundantQueueFrameSize int
	temporalRedundantOffsetSamples  uint32
	temporalRedundantOffsetPackets  uint32

	// Mutable state.
	isTalker         bool
	dataValid        bool
	mediaQItemSyncTS bool
	intervalCounter  uint32 // reserved for pacing; never incremented, matching the original

	tre redundancy.Engine
	mq  mediaq.Queue
	hal mcr.HAL

	logger      *xlog.Logger
	warnLimiter *rate.Limiter
}

// NewMapCore creates a MapCore for the given stream configuration. logger
// may be nil, in which case the package-level xlog default is used.
func NewMapCore(cfg Config, logger *xlog.Logger) *MapCore {
	if logger == nil {
		logger = xlog.L()
	}
	return &MapCore{
		cfg:         cfg,
		logger:      logger,
		warnLimiter: rate.New(1, time.Second),
	}
}

// Configure applies one map_nv_* key/value pair. It is only meaningful
// before GenInit; calling it afterwards does not recompute derived sizes.
func (m *MapCore) Configure(name, value string) {
	m.cfg.Configure(name, value)
}

// Subtype returns the AVTP subtype for the AAF mapping.
func (m *MapCore) Subtype() uint8 { return wire.SubtypeAAF }

// AvtpVersion returns the AVTP version this mapping understands.
func (m *MapCore) AvtpVersion() uint8 { return wire.AVTPVersion0 }

// MaxDataSize returns the largest payload this mapping could ever produce
// or accept, plus header, for the role (talker/listener) established by
// TxInit/RxInit. Before either is called, the larger listener bound wins,
// matching the original's documented fallback.
func (m *MapCore) MaxDataSize() uint16 {
	if m.isTalker {
		return uint16(m.payloadSizeMaxTalker) + wire.HeaderSize
	}
	return uint16(m.payloadSizeMaxListener) + wire.HeaderSize
}

// TransmitInterval returns the configured talker packet rate.
func (m *MapCore) TransmitInterval() uint32 { return m.cfg.TxInterval }

// calculateSizes derives the AAF rate/format enums and every packet/item
// byte size from Config's audio source parameters.
func (m *MapCore) calculateSizes() error {
	rate, ok := aaf.RateFromHz(m.cfg.AudioRate)
	if !ok {
		return ErrInvalidAudioRate
	}
	m.rate = rate
	m.temporalRedundantOffsetSamples = uint32(uint64(m.cfg.TemporalRedundantOffsetUsec) * uint64(m.cfg.AudioRate) / 1000000)

	if m.cfg.AudioType == AudioTypeFloat {
		if m.cfg.AudioBitDepth != 32 {
			return ErrInvalidBitDepth
		}
		m.format = aaf.FormatFloat32
		m.itemSampleSizeBytes = 4
		m.packetSampleSizeBytes = 4
		m.bitDepth = 32
	} else {
		f, ok := aaf.FormatFromBitDepth(m.cfg.AudioBitDepth)
		if !ok {
			return ErrInvalidBitDepth
		}
		m.format = f
		m.itemSampleSizeBytes = f.SampleBytes()
		m.packetSampleSizeBytes = f.SampleBytes()
		m.bitDepth = m.cfg.AudioBitDepth
	}

	if m.cfg.TxInterval == 0 {
		return ErrInvalidTxInterval
	}
	framesPerPacket := m.cfg.AudioRate / m.cfg.TxInterval
	if m.cfg.AudioRate%m.cfg.TxInterval != 0 {
		m.logger.Warnf("audio rate (%d) is not an integer multiple of tx interval (%d)", m.cfg.AudioRate, m.cfg.TxInterval)
		framesPerPacket++
	}
	m.framesPerPacket = framesPerPacket

	m.packetFrameSizeBytes = m.packetSampleSizeBytes * int(m.cfg.AudioChannels)
	m.payloadSize = int(framesPerPacket) * m.packetFrameSizeBytes
	m.payloadSizeMaxTalker = m.payloadSize
	m.payloadSizeMaxListener = m.payloadSize
	if m.format.IsInteger() {
		// The widest integer sample we could receive before narrowing.
		m.payloadSizeMaxListener = 4 * int(m.cfg.AudioChannels) * int(framesPerPacket)
	}

	if m.cfg.PackingFactor == 0 {
		m.cfg.PackingFactor = 1
	}
	m.framesPerItem = framesPerPacket * m.cfg.PackingFactor
	m.itemFrameSizeBytes = m.itemSampleSizeBytes * int(m.cfg.AudioChannels)
	m.itemSize = m.itemFrameSizeBytes * int(m.framesPerItem)

	m.temporalRedundantQueueFrameSize = m.payloadSizeMaxListener
	m.payloadSizeMaxListener *= 2
	if m.cfg.TemporalRedundantOffsetUsec > 0 {
		m.payloadSizeMaxTalker *= 2
		m.temporalRedundantOffsetPackets = m.temporalRedundantOffsetSamples / framesPerPacket
	}

	return nil
}

// GenInit computes derived sizes, sizes mq to itemCount x itemSize, and
// allocates the temporal redundancy data queue if MADT is configured.
func (m *MapCore) GenInit(mq mediaq.Queue) error {
	if err := m.calculateSizes(); err != nil {
		m.logger.Errorf("mapping configuration rejected: %v", err)
		return err
	}

	m.mq = mq
	m.mq.SetSize(int(m.cfg.ItemCount), m.itemSize)
	m.mq.SetMaxLatency(m.cfg.PresentationLatencyUSec)

	if m.cfg.TemporalRedundantOffsetUsec > 0 && m.temporalRedundantOffsetSamples > 0 {
		if m.temporalRedundantOffsetSamples%m.framesPerPacket != 0 {
			m.logger.Error("temporal redundancy not supported when redundant data would be split between two packets")
			return ErrMisalignedRedundantOffset
		}
		m.tre.Reset(m.temporalRedundantQueueFrameSize, int(m.temporalRedundantOffsetPackets), false)
		if m.cfg.ReportSeconds > 0 {
			m.tre.SetReportInterval(time.Now(), time.Duration(m.cfg.ReportSeconds)*time.Second)
		}
	} else {
		m.tre.Reset(0, 0, false)
	}

	m.dataValid = true
	m.ready = true
	return nil
}

// TxInit marks this instance as a talker.
func (m *MapCore) TxInit() {
	m.isTalker = true
}

// RxInit marks this instance as a listener, initialises the MCR HAL if
// configured, validates the packing factor against sparse-mode constraints,
// and primes the listener-side MADT statistics queue. A packing factor that
// fails ValidatePackingFactor makes RxInit return ErrBadPackingFactor and
// leaves the instance inert (Rx returns false, RxLost does nothing).
func (m *MapCore) RxInit(hal mcr.HAL) error {
	m.isTalker = false
	m.hal = hal

	if m.cfg.AudioMCR != aaf.MCRNone && m.hal != nil {
		if err := m.hal.Init(m.cfg.AudioMCR, m.cfg.MCRTimestampInterval, m.cfg.MCRRecoveryInterval); err != nil {
			return err
		}
	}

	if err := ValidatePackingFactor(m.cfg.PackingFactor, m.cfg.SparseMode == aaf.SparseModeEnabled); err != nil {
		m.logger.Warnf("wrong packing factor value set (%d) for sparse timestamping mode", m.cfg.PackingFactor)
		m.ready = false
		return err
	}

	if m.cfg.TemporalRedundantOffsetUsec > 0 {
		m.tre.PrimeListenerStats()
	}

	return nil
}

// Tx builds one outgoing packet into buf, which must already carry the
// lower layer's own header fields (stream ID, sequence number) at their
// fixed offsets; Tx fills in everything AAFHeaderCodec owns and the
// payload. It returns the total packet length, or ErrNotReady if there
// isn't yet enough media-queue data or buffer space to build one.
func (m *MapCore) Tx(buf []byte) (int, error) {
	if !m.ready {
		return 0, ErrNoPrivateData
	}

	bytesNeeded := m.payloadSize
	if !m.mq.IsAvailableBytes(bytesNeeded, false) {
		return 0, ErrNotReady
	}

	madt := !m.tre.Disabled()
	need := wire.HeaderSize + bytesNeeded
	if madt {
		need += bytesNeeded
	}
	if len(buf) < need {
		m.logger.Error("not enough room in packet for payload")
		return 0, ErrNotReady
	}

	seq := buf[2]
	sparseEnabled := m.cfg.SparseMode == aaf.SparseModeEnabled
	sparseTick := sparseEnabled && !wire.SequenceIsSparseTick(seq)

	payloadOff := wire.HeaderSize
	if madt {
		// Write the fresh data into the redundant slot; the primary slot is
		// filled afterwards from the delay line.
		payloadOff += bytesNeeded
	}
	payload := buf[payloadOff : payloadOff+bytesNeeded]

	hdr := wire.Header{
		Sequence:      seq,
		Format:        m.format,
		Rate:          m.rate,
		Channels:      m.cfg.AudioChannels,
		BitDepth:      m.bitDepth,
		EventField:    m.cfg.EventField,
		PayloadLength: uint16(bytesNeeded),
		Sparse:        sparseEnabled,
	}

	item := m.mq.TailLock(false)
	if item == nil || item.DataLen == 0 {
		if item != nil {
			m.mq.TailUnlock()
		}
		return 0, ErrNotReady
	}

	switch {
	case sparseTick:
		hdr.TimestampValid = false
		hdr.TimestampUncertain = false
	case !item.AvtpTime.TimestampIsValid():
		m.logger.Error("unable to get the timestamp value")
		hdr.TimestampValid = false
		hdr.TimestampUncertain = false
	default:
		item.AvtpTime.AddUSec(m.cfg.MaxTransitUsec)
		if madt {
			item.AvtpTime.AddUSec(m.cfg.TemporalRedundantOffsetUsec)
		}
		hdr.TimestampValid = true
		hdr.TimestampUncertain = item.AvtpTime.TimestampIsUncertain()
		hdr.Timestamp = item.AvtpTime.GetAvtpTimestamp()
		item.AvtpTime.SetTimestampValid(false)
	}

	if item.DataLen-item.ReadIdx < bytesNeeded {
		m.logger.Error("not enough data in media queue item for packet")
		m.mq.TailPull()
		return 0, ErrNotReady
	}

	copy(payload, item.PubData[item.ReadIdx:item.ReadIdx+bytesNeeded])
	item.ReadIdx += bytesNeeded
	if item.ReadIdx >= item.DataLen {
		m.mq.TailPull()
	} else {
		m.mq.TailUnlock()
	}

	if err := wire.Encode(buf, hdr); err != nil {
		return 0, err
	}

	total := wire.HeaderSize + bytesNeeded
	if madt {
		primary := buf[wire.HeaderSize : wire.HeaderSize+bytesNeeded]
		redundant := buf[wire.HeaderSize+bytesNeeded : wire.HeaderSize+2*bytesNeeded]
		delayed := m.tre.TalkerSwap(redundant)
		copy(primary, delayed)
		total += bytesNeeded
	}

	return total, nil
}

// Rx consumes one received packet. It validates the header against this
// instance's configuration, converting sample width when possible, appends
// the payload to the media queue's head item, and saves the redundant copy
// for later loss recovery when MADT is enabled. It returns whether the
// packet was processed (as opposed to dropped for an invalid header or a
// full media queue).
func (m *MapCore) Rx(buf []byte, dataLen int) bool {
	if !m.ready || dataLen < wire.HeaderSize {
		return false
	}

	hdr, err := wire.Decode(buf[:wire.HeaderSize])
	if err != nil {
		return false
	}
	payload := buf[wire.HeaderSize:dataLen]

	dataValid := true
	conversionEnabled := false

	if int(hdr.PayloadLength) > dataLen-wire.HeaderSize {
		if m.dataValid {
			m.logger.Errorf("header data len %d > actual data len %d", hdr.PayloadLength, dataLen-wire.HeaderSize)
		}
		dataValid = false
	}

	if hdr.Format != m.format {
		if hdr.Format.IsInteger() && m.format.IsInteger() {
			conversionEnabled = true
		} else {
			if m.dataValid {
				m.logger.Errorf("listener format %d doesn't match received data (%d)", m.format, hdr.Format)
			}
			dataValid = false
		}
	}
	if hdr.Rate != m.rate {
		if m.dataValid {
			m.logger.Errorf("listener sample rate (%d) doesn't match received data (%d)", m.rate, hdr.Rate)
		}
		dataValid = false
	}
	if hdr.Channels != m.cfg.AudioChannels {
		if m.dataValid {
			m.logger.Errorf("listener channel count (%d) doesn't match received data (%d)", m.cfg.AudioChannels, hdr.Channels)
		}
		dataValid = false
	}
	if hdr.BitDepth == 0 {
		if m.dataValid {
			m.logger.Error("listener bit depth not valid")
		}
		dataValid = false
	}

	if int(hdr.PayloadLength) != m.payloadSize {
		if !conversionEnabled {
			if m.dataValid {
				m.logger.Errorf("listener payload size (%d) doesn't match received data (%d)", m.payloadSize, hdr.PayloadLength)
			}
			dataValid = false
		} else {
			inSample := hdr.Format.SampleBytes()
			outSample := m.format.SampleBytes()
			if int(hdr.PayloadLength)/inSample != m.payloadSize/outSample {
				if m.dataValid {
					m.logger.Errorf("listener payload samples (%d) doesn't match received data samples (%d)", m.payloadSize/outSample, int(hdr.PayloadLength)/inSample)
				}
				dataValid = false
			}
		}
	}
	if hdr.EventField != m.cfg.EventField && m.dataValid {
		m.logger.Warnf("listener event field (%d) doesn't match received data (%d)", m.cfg.EventField, hdr.EventField)
	}

	listenerSparse := m.cfg.SparseMode == aaf.SparseModeEnabled
	if hdr.Sparse && !listenerSparse {
		m.logger.Info("listener enabling sparse mode to match incoming stream")
		m.cfg.SparseMode = aaf.SparseModeEnabled
	}
	if !hdr.Sparse && listenerSparse {
		m.logger.Info("listener disabling sparse mode to match incoming stream")
		m.cfg.SparseMode = aaf.SparseModeDisabled
	}

	madt := !m.tre.Disabled()
	if madt && dataLen < wire.HeaderSize+2*int(hdr.PayloadLength) {
		m.logger.Warn("listener disabling temporal redundancy due to lack of data")
		m.tre.Reset(0, 0, false)
		madt = false
	}

	if !dataValid {
		if m.dataValid {
			m.logger.Info("rx data invalid, stream muted")
			m.dataValid = false
		}
		return false
	}

	item := m.mq.HeadLock()
	if item == nil {
		if m.warnLimiter.Limit() {
			m.logger.Warn("media queue full")
		}
		return false
	}

	if !m.dataValid {
		m.logger.Info("rx data valid, stream un-muted")
		m.dataValid = true
	}

	if item.DataLen == 0 {
		item.AvtpTime.SetTimestampValid(hdr.TimestampValid)
		if item.AvtpTime.TimestampIsValid() {
			item.AvtpTime.SetToTimestamp(hdr.Timestamp)
			item.AvtpTime.SubUSec(m.cfg.PresentationLatencyUSec)
			item.AvtpTime.SetTimestampUncertain(hdr.TimestampUncertain)
			m.mediaQItemSyncTS = true
		} else if !m.mediaQItemSyncTS {
			dataValid = false
		}
	}

	if dataValid {
		dst := item.PubData[item.DataLen : item.DataLen+m.payloadSize]
		if !conversionEnabled {
			src := payload[:m.payloadSize]
			if m.cfg.RxTranslate != nil {
				m.cfg.RxTranslate(src)
			}
			copy(dst, src)
		} else {
			src := payload[:hdr.PayloadLength]
			sampleconv.Convert(dst, src, hdr.Format, m.format)
			if m.cfg.RxTranslate != nil {
				m.cfg.RxTranslate(dst)
			}
		}
		item.DataLen += m.payloadSize
	}

	if item.DataLen < item.ItemSize {
		m.mq.HeadUnlock()
	} else {
		m.mq.HeadPush()
	}

	if madt {
		primary := payload[:hdr.PayloadLength]
		redundant := payload[hdr.PayloadLength : 2*hdr.PayloadLength]
		if mismatch := m.tre.Save(redundant, hdr.Format, primary, m.cfg.VerifyRedundancy); mismatch {
			m.logger.Debug("redundant data does not match primary data")
		}
		if stats, ok := m.tre.ShouldReport(time.Now()); ok {
			m.logger.Infof("temporal redundancy total=%d lost=%d available=%d not_available=%d",
				stats.TotalFrames, stats.LostFrames, stats.NeededAvailable, stats.NeededNotAvailable)
		}
	}

	return true
}

// RxLost runs the temporal redundancy recovery path for n consecutive
// packets the lower layer reports as missing.
func (m *MapCore) RxLost(n int) {
	if !m.ready || m.tre.Disabled() || !m.dataValid {
		return
	}

	for i := 0; i < n; i++ {
		item := m.mq.HeadLock()
		if item == nil {
			return
		}

		item.AvtpTime.SetTimestampValid(false)

		dst := item.PubData[item.DataLen : item.DataLen+m.payloadSize]
		m.tre.Lost(dst, m.payloadSize, m.format)
		if m.cfg.RxTranslate != nil {
			m.cfg.RxTranslate(dst)
		}
		item.DataLen += m.payloadSize

		if item.DataLen < item.ItemSize {
			m.mq.HeadUnlock()
		} else {
			m.mq.HeadPush()
		}
	}
}

// End closes the MCR HAL, if one was initialised.
func (m *MapCore) End() {
	if m.cfg.AudioMCR != aaf.MCRNone && m.hal != nil {
		m.hal.Close()
	}
	m.mediaQItemSyncTS = false
}

// GenEnd frees both temporal redundancy queues.
func (m *MapCore) GenEnd() {
	m.tre.Reset(0, 0, false)
}
