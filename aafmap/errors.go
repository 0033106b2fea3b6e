// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aafmap

import "errors"

var (
	// ErrNotReady is returned by Tx when there is not yet enough media-queue
	// data, or not enough caller-supplied buffer space, to build a packet.
	// The caller is expected to retry on the next transmit interval.
	ErrNotReady = errors.New("aafmap: packet not ready")

	// ErrNoPrivateData reports that GenInit was never called (or failed),
	// so derived sizes haven't been computed yet.
	ErrNoPrivateData = errors.New("aafmap: mapping not initialized")

	// ErrInvalidAudioRate means Config.AudioRate has no aaf.Rate mapping.
	ErrInvalidAudioRate = errors.New("aafmap: invalid audio sample rate")

	// ErrInvalidBitDepth means Config.AudioBitDepth/AudioType has no
	// aaf.Format mapping.
	ErrInvalidBitDepth = errors.New("aafmap: invalid audio bit depth")

	// ErrInvalidTxInterval means Config.TxInterval is zero, which would
	// make the frames-per-packet division undefined.
	ErrInvalidTxInterval = errors.New("aafmap: tx interval must be positive")

	// ErrMisalignedRedundantOffset is returned by GenInit when the
	// configured MADT offset would split redundant data across two
	// packets.
	ErrMisalignedRedundantOffset = errors.New("aafmap: temporal redundancy offset is not a multiple of frames per packet")

	// ErrQueueAllocation reports that the temporal redundancy data queue
	// could not be sized. No function in this package returns it: GenInit
	// allocates the queue with make, whose failure is a runtime panic.
	ErrQueueAllocation = errors.New("aafmap: temporal redundancy queue allocation failed")

	// ErrBadPackingFactor is returned by RxInit and ValidatePackingFactor
	// when the packing factor is incompatible with sparse timestamping.
	ErrBadPackingFactor = errors.New("aafmap: packing factor incompatible with sparse mode")
)

// ValidatePackingFactor checks factor against the sparse-timestamping
// constraint: under sparse mode the listener can only stay aligned to the
// every-eighth-packet timestamp cadence if factor is 1, 2, 4, or any
// positive multiple of 8; zero is always invalid. Non-sparse mode accepts
// any positive value.
func ValidatePackingFactor(factor uint32, sparse bool) error {
	if factor == 0 {
		return ErrBadPackingFactor
	}
	if !sparse {
		return nil
	}
	if factor < 8 {
		if factor&(factor-1) != 0 {
			return ErrBadPackingFactor
		}
		return nil
	}
	if factor%8 != 0 {
		return ErrBadPackingFactor
	}
	return nil
}
