// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sampleconv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openavnu-go/aafmap/aaf"
)

func TestConvert_WidenPadsTrailingZero(t *testing.T) {
	// Two Int16 samples -> Int24: each 2-byte sample gets a trailing zero.
	src := []byte{0x01, 0x02, 0x03, 0x04}
	dst := make([]byte, OutputLen(2, aaf.FormatInt24))

	n := Convert(dst, src, aaf.FormatInt16, aaf.FormatInt24)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte{0x01, 0x02, 0x00, 0x03, 0x04, 0x00}, dst)
}

func TestConvert_NarrowTruncatesTrailingBytes(t *testing.T) {
	// One Int32 sample -> Int16: drop the two trailing bytes.
	src := []byte{0x01, 0x02, 0x03, 0x04}
	dst := make([]byte, OutputLen(1, aaf.FormatInt16))

	n := Convert(dst, src, aaf.FormatInt32, aaf.FormatInt16)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x01, 0x02}, dst)
}

func TestConvert_SameFormatIsPlainCopy(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, len(src))
	n := Convert(dst, src, aaf.FormatInt24, aaf.FormatInt24)
	assert.Equal(t, len(src), n)
	assert.Equal(t, src, dst)
}

func TestConvert_RoundTripWidenThenNarrowRecoversOriginal(t *testing.T) {
	src := []byte{0xAA, 0xBB} // one Int16 sample
	widened := make([]byte, OutputLen(1, aaf.FormatInt32))
	Convert(widened, src, aaf.FormatInt16, aaf.FormatInt32)

	narrowed := make([]byte, OutputLen(1, aaf.FormatInt16))
	Convert(narrowed, widened, aaf.FormatInt32, aaf.FormatInt16)

	assert.Equal(t, src, narrowed)
}

func TestConvert_NonIntegerFormatsAreRejected(t *testing.T) {
	dst := make([]byte, 4)
	n := Convert(dst, []byte{1, 2, 3, 4}, aaf.FormatFloat32, aaf.FormatInt16)
	assert.Equal(t, 0, n)
}

func TestConvert_MultiSamplePreservesOrder(t *testing.T) {
	// Three Int24 samples -> Int16: each sample narrows independently.
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
	dst := make([]byte, OutputLen(3, aaf.FormatInt16))

	Convert(dst, src, aaf.FormatInt24, aaf.FormatInt16)
	assert.Equal(t, []byte{1, 2, 4, 5, 7, 8}, dst)
}
