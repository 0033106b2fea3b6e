// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_FIFO(t *testing.T) {
	q := New(16)

	q.Push([]byte{1, 2, 3, 4}, 4)
	q.Push([]byte{5, 6}, 2)

	got := make([]byte, 4)
	q.Pull(got, 4)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	got2 := make([]byte, 2)
	q.Pull(got2, 2)
	assert.Equal(t, []byte{5, 6}, got2)

	assert.Equal(t, 0, q.BytesQueued())
}

func TestQueue_WrapsAcrossBoundary(t *testing.T) {
	q := New(8)

	// Fill then drain 6 bytes so head/tail sit near the end of the buffer.
	q.Push([]byte{1, 2, 3, 4, 5, 6}, 6)
	q.Pull(make([]byte, 6), 6)

	// This push straddles the wrap point (head=6, size=8).
	q.Push([]byte{7, 8, 9, 10}, 4)
	assert.Equal(t, 4, q.BytesQueued())

	got := make([]byte, 4)
	q.Pull(got, 4)
	assert.Equal(t, []byte{7, 8, 9, 10}, got)
}

func TestQueue_ZeroPushIsEquivalentToZeroBytes(t *testing.T) {
	q := New(8)
	q.Push(nil, 4)

	got := make([]byte, 4)
	q.Pull(got, 4)
	assert.Equal(t, []byte{0, 0, 0, 0}, got)
}

func TestQueue_DiscardPull(t *testing.T) {
	q := New(8)
	q.Push([]byte{1, 2, 3, 4}, 4)
	q.Pull(nil, 4)
	assert.Equal(t, 0, q.BytesQueued())
}

func TestQueue_PushPullInterleavingPreservesOrder(t *testing.T) {
	// Up to 6 bytes are queued at once; head == tail means empty, so the
	// ring needs at least 7 bytes. 10 bytes through 8 still wraps.
	q := New(8)
	var pushed, pulled []byte

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	for i := 0; i < len(src); i++ {
		q.Push(src[i:i+1], 1)
		pushed = append(pushed, src[i])
		if i%2 == 1 {
			b := make([]byte, 1)
			q.Pull(b, 1)
			pulled = append(pulled, b...)
		}
	}
	// Drain the remainder.
	for q.BytesQueued() > 0 {
		b := make([]byte, 1)
		q.Pull(b, 1)
		pulled = append(pulled, b...)
	}

	assert.Equal(t, pushed, pulled)
}

func TestQueue_Compare(t *testing.T) {
	q := New(8)
	q.Push([]byte{1, 2, 3, 4}, 4)

	assert.True(t, q.Compare([]byte{1, 2, 3, 4}, 4))
	assert.False(t, q.Compare([]byte{1, 2, 3, 5}, 4))
	assert.False(t, q.Compare(nil, 4))

	// Compare must not consume the data.
	assert.Equal(t, 4, q.BytesQueued())
}

func TestQueue_CompareAcrossWrapBoundary(t *testing.T) {
	q := New(4)
	q.Push([]byte{1, 2, 3, 4}, 4)
	q.Pull(make([]byte, 2), 2)
	q.Push([]byte{5, 6}, 2) // tail=2, head wraps to 2: storage is [5 6 3 4]

	// Next 4 queued bytes, starting at tail=2, are 3,4,5,6.
	assert.True(t, q.Compare([]byte{3, 4, 5, 6}, 4))
	assert.False(t, q.Compare([]byte{3, 4, 5, 7}, 4))
}

func TestQueue_FreeIsIdempotent(t *testing.T) {
	q := New(8)
	q.Free()
	assert.False(t, q.IsValid())
	q.Free()
	assert.False(t, q.IsValid())
}

func TestQueue_InvalidUntilAllocated(t *testing.T) {
	var q Queue
	assert.False(t, q.IsValid())
	q.Allocate(8)
	assert.True(t, q.IsValid())
}
