// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringqueue implements the fixed-capacity byte ring used by the
// Temporal Redundancy engine to hold a delay line of audio payloads. It is
// a direct port of the map_aaf_audio circular_queue_t helpers: the queue
// owns its backing array exclusively, cursor wrap needs no fill counter or
// locking, and the caller guarantees pushes never overflow.
package ringqueue

// Queue is a fixed-capacity byte ring with independent head (write) and
// tail (read) cursors into a contiguous backing buffer.
type Queue struct {
	storage []byte
	head    int
	tail    int
	size    int
}

// New allocates a Queue with the given capacity. size == 0 yields an
// invalid, zero-value queue (IsValid reports false).
func New(size int) *Queue {
	q := &Queue{}
	q.Allocate(size)
	return q
}

// Allocate reserves size bytes of backing storage and resets the cursors.
// Any previously held storage is released first.
func (q *Queue) Allocate(size int) {
	q.Free()
	if size <= 0 {
		return
	}
	q.storage = make([]byte, size)
	q.size = size
}

// Free releases the backing storage and zeros the queue's metadata. It is
// idempotent: calling Free on an already-freed (or never-allocated) queue
// is safe.
func (q *Queue) Free() {
	q.storage = nil
	q.size = 0
	q.head = 0
	q.tail = 0
}

// IsValid reports whether the queue has non-nil storage of positive size.
func (q *Queue) IsValid() bool {
	return q.storage != nil && q.size > 0
}

// Size returns the queue's total capacity in bytes.
func (q *Queue) Size() int {
	return q.size
}

// BytesQueued returns the number of bytes currently queued between tail and
// head.
func (q *Queue) BytesQueued() int {
	if q.size == 0 {
		return 0
	}
	d := q.head - q.tail
	if d < 0 {
		d += q.size
	}
	return d
}

// Push copies n bytes from src into the queue, advancing head by n. If src
// is nil, n zero bytes are written instead (a padding push). The caller
// must guarantee n does not exceed the queue's free space; Push performs no
// overflow check, matching the original's contract.
func (q *Queue) Push(src []byte, n int) {
	if n <= 0 || q.size == 0 {
		return
	}

	phase1 := q.size - q.head
	if phase1 > n {
		phase1 = n
	}
	if src != nil {
		copy(q.storage[q.head:q.head+phase1], src[:phase1])
	} else {
		zero(q.storage[q.head : q.head+phase1])
	}
	q.head += phase1

	if q.head >= q.size {
		q.head = 0
		if phase1 < n {
			phase2 := n - phase1
			if src != nil {
				copy(q.storage[0:phase2], src[phase1:phase1+phase2])
			} else {
				zero(q.storage[0:phase2])
			}
			q.head += phase2
		}
	}
}

// Pull copies n bytes from the tail into dst, advancing tail by n. If dst
// is nil, the bytes are discarded rather than copied.
func (q *Queue) Pull(dst []byte, n int) {
	if n <= 0 || q.size == 0 {
		return
	}

	phase1 := q.size - q.tail
	if phase1 > n {
		phase1 = n
	}
	if dst != nil {
		copy(dst[:phase1], q.storage[q.tail:q.tail+phase1])
	}
	q.tail += phase1

	if q.tail >= q.size {
		q.tail = 0
		if phase1 < n {
			phase2 := n - phase1
			if dst != nil {
				copy(dst[phase1:phase1+phase2], q.storage[0:phase2])
			}
			q.tail += phase2
		}
	}
}

// Compare performs a non-destructive comparison of the next n queued bytes
// (starting at tail) against src, without consuming them. It reports false
// if src is nil.
func (q *Queue) Compare(src []byte, n int) bool {
	if src == nil || q.size == 0 {
		return false
	}

	phase1 := q.size - q.tail
	if phase1 > n {
		phase1 = n
	}
	if !bytesEqual(src[:phase1], q.storage[q.tail:q.tail+phase1]) {
		return false
	}
	if phase1 < n {
		phase2 := n - phase1
		// Phase 2 continues at src[phase1:], comparing against the wrapped
		// front of storage.
		if !bytesEqual(src[phase1:phase1+phase2], q.storage[0:phase2]) {
			return false
		}
	}
	return true
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
