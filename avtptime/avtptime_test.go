// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package avtptime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef_ValidAndUncertainFlags(t *testing.T) {
	r := NewRef(0)
	assert.False(t, r.TimestampIsValid())

	r.SetTimestampValid(true)
	r.SetTimestampUncertain(true)
	assert.True(t, r.TimestampIsValid())
	assert.True(t, r.TimestampIsUncertain())

	r.SetTimestampValid(false)
	assert.False(t, r.TimestampIsValid())
	assert.True(t, r.TimestampIsUncertain())
}

func TestRef_AddSubUSec(t *testing.T) {
	r := NewRef(1000)
	r.AddUSec(500)
	assert.EqualValues(t, 1500, r.GetAvtpTimestamp())

	r.SubUSec(2000)
	assert.EqualValues(t, 0, r.GetAvtpTimestamp())
}

func TestRef_SetToTimestampOverwritesLow32Bits(t *testing.T) {
	r := NewRef(0)
	r.SetToTimestamp(0xDEADBEEF)
	assert.EqualValues(t, 0xDEADBEEF, r.GetAvtpTimestamp())
}

var _ Time = (*Ref)(nil)
