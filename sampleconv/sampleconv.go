// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sampleconv converts interleaved integer PCM between the three
// widths AAF carries (16/24/32-bit), sample by sample, for the case where a
// temporally-redundant packet was recovered in a format that no longer
// matches the stream's current format.
package sampleconv

import "github.com/openavnu-go/aafmap/aaf"

// Convert reinterprets src, an interleaved buffer of samples in fromFormat,
// as the same number of samples in toFormat, writing the result into dst.
// Both formats must be integer PCM formats (aaf.Format.IsInteger). Widening
// zero-pads each sample's trailing bytes per Clause 7.3.4; narrowing drops
// them. dst must be at least len(src)/fromFormat.SampleBytes() *
// toFormat.SampleBytes() bytes long. Convert returns the number of bytes
// written.
func Convert(dst, src []byte, fromFormat, toFormat aaf.Format) int {
	if !fromFormat.IsInteger() || !toFormat.IsInteger() {
		return 0
	}
	if fromFormat == toFormat {
		n := copy(dst, src)
		return n
	}

	inWidth := fromFormat.SampleBytes()
	outWidth := toFormat.SampleBytes()

	nSamples := len(src) / inWidth
	out := 0
	for s := 0; s < nSamples; s++ {
		in := src[s*inWidth : s*inWidth+inWidth]
		o := dst[out : out+outWidth]

		if inWidth < outWidth {
			copy(o, in)
			for i := inWidth; i < outWidth; i++ {
				o[i] = 0
			}
		} else {
			copy(o, in[:outWidth])
		}
		out += outWidth
	}
	return out
}

// OutputLen returns the buffer size Convert will need to hold nSamples
// samples converted to toFormat.
func OutputLen(nSamples int, toFormat aaf.Format) int {
	return nSamples * toFormat.SampleBytes()
}
