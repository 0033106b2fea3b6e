// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aafmap

import (
	"strconv"

	"github.com/openavnu-go/aafmap/aaf"
)

// AudioType selects whether Config.AudioBitDepth describes an integer PCM
// sample or a single-precision float sample.
type AudioType uint8

// Audio sample encodings this mapping accepts from its interface module.
const (
	AudioTypeInt AudioType = iota
	AudioTypeFloat
)

// Config holds everything a MapCore needs to know before GenInit: the
// audio source's own parameters (set directly by the interface module) and
// the map_nv_* settings (normally supplied one at a time through Configure),
// split out as its own value so NewMapCore has a clear input.
type Config struct {
	// Audio source parameters, set directly by the interface module.
	AudioRate     uint32 // Hz
	AudioType     AudioType
	AudioBitDepth uint8 // 16, 24 or 32
	AudioChannels uint16

	// map_nv_* settings.
	ItemCount                   uint32
	TxInterval                  uint32
	PackingFactor               uint32
	SparseMode                  aaf.SparseMode
	AudioMCR                    aaf.MCRMode
	MCRTimestampInterval        uint32
	MCRRecoveryInterval         uint32
	TemporalRedundantOffsetUsec uint32
	ReportSeconds               uint32

	// Set by the interface module outside the map_nv_* callback.
	MaxTransitUsec          uint32
	EventField              aaf.EventField
	PresentationLatencyUSec uint32

	// RxTranslate, when non-nil, is applied to each payload this core
	// delivers to the media queue on receive. A payload copied unchanged is
	// translated in the packet buffer before it is copied into the item; a
	// width-converted payload, or one RxLost recovers, is translated in
	// place in the item after it has been written there.
	RxTranslate func(payload []byte)

	// VerifyRedundancy enables the listener-side debug check that compares
	// a discarded redundant block against the primary payload it should
	// match, logging a mismatch. It costs a queue compare per packet, so it
	// defaults to off.
	VerifyRedundancy bool
}

// DefaultConfig returns the map_nv_* defaults the original mapping module
// installs at Initialize time, before any Configure call overrides them.
func DefaultConfig() Config {
	return Config{
		ItemCount:            20,
		TxInterval:           4000,
		PackingFactor:        1,
		SparseMode:           aaf.SparseModeDisabled,
		MCRTimestampInterval: 144,
		MCRRecoveryInterval:  512,
		EventField:           aaf.EventStaticChannelsLayout,
	}
}

// Configure applies one map_nv_* key/value pair: an unrecognised key is
// ignored, and a malformed value leaves the field at whatever it held
// before the call.
func (c *Config) Configure(name, value string) {
	switch name {
	case "map_nv_item_count":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.ItemCount = uint32(v)
		}
	case "map_nv_packing_factor":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.PackingFactor = uint32(v)
		}
	case "map_nv_tx_rate", "map_nv_tx_interval":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.TxInterval = uint32(v)
		}
	case "map_nv_sparse_mode":
		switch value {
		case "1":
			c.SparseMode = aaf.SparseModeEnabled
		case "0":
			c.SparseMode = aaf.SparseModeDisabled
		}
	case "map_nv_audio_mcr":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.AudioMCR = aaf.MCRMode(v)
		}
	case "map_nv_mcr_timestamp_interval":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.MCRTimestampInterval = uint32(v)
		}
	case "map_nv_mcr_recovery_interval":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.MCRRecoveryInterval = uint32(v)
		}
	case "map_nv_temporal_redundant_offset", "map_nv_max_allowed_dropout_time":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.TemporalRedundantOffsetUsec = uint32(v)
		}
	case "map_nv_report_seconds":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.ReportSeconds = uint32(v)
		}
	}
}
