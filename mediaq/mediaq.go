// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mediaq defines the media-queue contract MapCore drains from (as
// a talker) and fills (as a listener), plus a reference ring-buffer
// implementation used by this module's own tests and cmd/aafmapdemo. It
// follows the same sync.Cond-guarded blocking idiom as media/cache.PackQueue,
// generalized from a single linear queue to the fixed-size, head/tail-locked
// item ring the AAF mapping expects.
package mediaq

import (
	"sync"

	"github.com/openavnu-go/aafmap/avtptime"
)

// Item is one fixed-size slot in the queue. PubData is the backing sample
// storage; DataLen is the writer's cursor (how much of PubData holds valid
// data); ReadIdx is the reader's cursor into that data; ItemSize is the
// slot's capacity; AvtpTime carries the item's presentation timestamp.
type Item struct {
	PubData  []byte
	DataLen  int
	ReadIdx  int
	ItemSize int
	AvtpTime avtptime.Time
}

// Queue is the external media-queue contract: a fixed-size-item FIFO with
// independent head (write) and tail (read) locking.
type Queue interface {
	SetSize(count, itemBytes int)
	SetMaxLatency(usec uint32)
	IsAvailableBytes(n int, wait bool) bool

	HeadLock() *Item
	HeadPush()
	HeadUnlock()

	TailLock(wait bool) *Item
	TailPull()
	TailUnlock()
}

// Ref is a reference Queue: a ring of preallocated Items guarded by a
// sync.Cond, in the style of media/cache.PackQueue's cond.Wait/Signal pair.
// It is a single-producer/single-consumer queue; concurrent producers or
// concurrent consumers are not supported.
type Ref struct {
	cond *sync.Cond

	items      []*Item
	writeIdx   int
	readIdx    int
	ready      int
	maxLatency uint32
}

// NewRef creates an unsized Ref; call SetSize before use.
func NewRef() *Ref {
	return &Ref{cond: sync.NewCond(&sync.Mutex{})}
}

// SetSize allocates count items of itemBytes capacity each, discarding any
// previous contents.
func (q *Ref) SetSize(count, itemBytes int) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	q.items = make([]*Item, count)
	for i := range q.items {
		q.items[i] = &Item{
			PubData:  make([]byte, itemBytes),
			ItemSize: itemBytes,
			AvtpTime: avtptime.NewRef(0),
		}
	}
	q.writeIdx = 0
	q.readIdx = 0
	q.ready = 0
}

// SetMaxLatency records the presentation-latency budget. The reference
// implementation does not itself drop stale items; it is recorded for
// callers (or a future eviction policy) to consult.
func (q *Ref) SetMaxLatency(usec uint32) {
	q.cond.L.Lock()
	q.maxLatency = usec
	q.cond.L.Unlock()
}

// MaxLatency returns the value last passed to SetMaxLatency.
func (q *Ref) MaxLatency() uint32 {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	return q.maxLatency
}

// IsAvailableBytes reports whether the item at the tail has at least n
// unread bytes. When wait is true and it currently doesn't, the caller
// blocks until a TailLock-visible push makes enough bytes available.
func (q *Ref) IsAvailableBytes(n int, wait bool) bool {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	for {
		if q.ready > 0 {
			it := q.items[q.readIdx]
			if it.DataLen-it.ReadIdx >= n {
				return true
			}
		}
		if !wait {
			return false
		}
		q.cond.Wait()
	}
}

// HeadLock returns the item currently being written, for the producer to
// append to. It never blocks: the head slot is reused across calls until
// HeadPush advances it.
func (q *Ref) HeadLock() *Item {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	return q.items[q.writeIdx]
}

// HeadPush marks the head item as complete and ready for the reader,
// advancing to the next slot and clearing it for reuse.
func (q *Ref) HeadPush() {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	if len(q.items) == 0 {
		return
	}

	q.writeIdx = (q.writeIdx + 1) % len(q.items)
	if q.ready < len(q.items) {
		q.ready++
	}

	// When every slot now holds unread data, the next slot is the reader's
	// oldest item; TailPull clears it once it has been consumed.
	if q.ready < len(q.items) {
		next := q.items[q.writeIdx]
		next.DataLen = 0
		next.ReadIdx = 0
		next.AvtpTime.SetTimestampValid(false)
	}

	q.cond.Signal()
}

// HeadUnlock is a no-op in the reference implementation: HeadLock does not
// hold the mutex across calls, so there is nothing to release. It exists to
// satisfy the contract's lock/unlock pairing.
func (q *Ref) HeadUnlock() {}

// TailLock returns the oldest ready item for the consumer to drain. If none
// is ready, it blocks when wait is true, else returns nil.
func (q *Ref) TailLock(wait bool) *Item {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	for q.ready == 0 {
		if !wait {
			return nil
		}
		q.cond.Wait()
	}
	return q.items[q.readIdx]
}

// TailPull marks the tail item fully consumed, returning its slot to the
// producer's pool.
func (q *Ref) TailPull() {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	if q.ready == 0 {
		return
	}
	full := q.ready == len(q.items)
	q.readIdx = (q.readIdx + 1) % len(q.items)
	q.ready--

	if full {
		// The slot just consumed is also the head slot; clear it for the
		// producer.
		free := q.items[q.writeIdx]
		free.DataLen = 0
		free.ReadIdx = 0
		free.AvtpTime.SetTimestampValid(false)
	}
}

// TailUnlock is a no-op, mirroring HeadUnlock.
func (q *Ref) TailUnlock() {}

var _ Queue = (*Ref)(nil)
