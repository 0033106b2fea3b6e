// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mediaq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRef_WriteThenReadCycle(t *testing.T) {
	q := NewRef()
	q.SetSize(2, 8)

	w := q.HeadLock()
	copy(w.PubData, []byte{1, 2, 3, 4})
	w.DataLen = 4
	q.HeadUnlock()
	q.HeadPush()

	r := q.TailLock(false)
	assert.NotNil(t, r)
	assert.Equal(t, []byte{1, 2, 3, 4}, r.PubData[:r.DataLen])
	q.TailUnlock()
	q.TailPull()

	assert.Nil(t, q.TailLock(false))
}

func TestRef_IsAvailableBytes(t *testing.T) {
	q := NewRef()
	q.SetSize(1, 8)

	assert.False(t, q.IsAvailableBytes(4, false))

	w := q.HeadLock()
	w.DataLen = 4
	q.HeadPush()

	assert.True(t, q.IsAvailableBytes(4, false))
	assert.False(t, q.IsAvailableBytes(5, false))
}

func TestRef_TailLockBlocksUntilPush(t *testing.T) {
	q := NewRef()
	q.SetSize(1, 8)

	done := make(chan *Item, 1)
	go func() {
		done <- q.TailLock(true)
	}()

	time.Sleep(10 * time.Millisecond)
	w := q.HeadLock()
	w.DataLen = 2
	q.HeadPush()

	select {
	case it := <-done:
		assert.NotNil(t, it)
	case <-time.After(time.Second):
		t.Fatal("TailLock did not wake up after HeadPush")
	}
}

func TestRef_SetMaxLatency(t *testing.T) {
	q := NewRef()
	q.SetMaxLatency(5000)
	assert.EqualValues(t, 5000, q.MaxLatency())
}
