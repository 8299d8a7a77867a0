package fifo

import (
	"time"

	"github.com/trussle/collector/pkg/models"
	"github.com/trussle/collector/pkg/uuid"
)

// EvictionReason describes why the eviction happened
type EvictionReason int

const (
	// Purged by calling reset
	Purged EvictionReason = iota

	// Popped manually from the cache
	Popped

	// Removed manually from the cache
	Removed

	// Dequeued by walking over due to being dequeued
	Dequeued
)

// KeyValue pairs an in-flight delivery with the lock token it was
// received under.
type KeyValue struct {
	Key   uuid.UUID
	Value models.Message
}

// EvictCallback lets you know when an eviction has happened in the cache
type EvictCallback func(EvictionReason, uuid.UUID, models.Message)

// FIFO tracks in-flight deliveries in arrival order, keyed by lock
// token.
type FIFO struct {
	items   []KeyValue
	onEvict EvictCallback
}

// NewFIFO implements a non-thread safe FIFO cache
func NewFIFO(onEvict EvictCallback) *FIFO {
	return &FIFO{
		items:   make([]KeyValue, 0),
		onEvict: onEvict,
	}
}

// Add adds a delivery under its lock token.
func (f *FIFO) Add(value models.Message) bool {
	f.items = append(f.items, KeyValue{
		Key:   value.LockToken(),
		Value: value,
	})
	return true
}

// Get returns back a delivery if it exists.
// Returns true if found.
func (f *FIFO) Get(key uuid.UUID) (models.Message, bool) {
	for _, v := range f.items {
		if v.Key.Equal(key) {
			return v.Value, true
		}
	}
	return nil, false
}

// Remove a delivery using its lock token
// Returns true if a removal happened
func (f *FIFO) Remove(key uuid.UUID) bool {
	for k, v := range f.items {
		if v.Key.Equal(key) {
			f.items = append(f.items[:k], f.items[k+1:]...)
			f.onEvict(Removed, v.Key, v.Value)
			return true
		}
	}
	return false
}

// Contains finds out if a lock token is present in the cache
func (f *FIFO) Contains(key uuid.UUID) bool {
	for _, v := range f.items {
		if v.Key.Equal(key) {
			return true
		}
	}
	return false
}

// Pop removes the oldest delivery with in the cache
func (f *FIFO) Pop() (uuid.UUID, models.Message, bool) {
	if len(f.items) == 0 {
		return uuid.Empty, nil, false
	}

	var kv KeyValue
	kv, f.items = f.items[0], f.items[1:]
	f.onEvict(Popped, kv.Key, kv.Value)
	return kv.Key, kv.Value, true
}

// Purge removes all items with in the cache, calling evict callback on each.
func (f *FIFO) Purge() {
	for _, v := range f.items {
		f.onEvict(Purged, v.Key, v.Value)
	}
	f.items = f.items[:0]
}

// Keys returns the lock tokens as a slice
func (f *FIFO) Keys() []uuid.UUID {
	res := make([]uuid.UUID, len(f.items))
	for k, v := range f.items {
		res[k] = v.Key
	}
	return res
}

// Len returns the current length of the cache
func (f *FIFO) Len() int {
	return len(f.items)
}

// Slice returns a snapshot of the KeyValue pairs.
func (f *FIFO) Slice() []KeyValue {
	return f.items[0:]
}

// Expiring returns the deliveries whose locks lapse before the given
// time, oldest first.
func (f *FIFO) Expiring(before time.Time) []KeyValue {
	var res []KeyValue
	for _, v := range f.items {
		if v.Value.LockedUntil().Before(before) {
			res = append(res, v)
		}
	}
	return res
}

// Dequeue iterates over the cache removing a delivery upon each iteration.
func (f *FIFO) Dequeue(fn func(uuid.UUID, models.Message) error) ([]KeyValue, error) {
	var dequeued []KeyValue
	for k, v := range f.items {
		if err := fn(v.Key, v.Value); err != nil {
			f.items = f.items[k:]
			return dequeued, err
		}
		f.onEvict(Dequeued, v.Key, v.Value)
		dequeued = append(dequeued, v)
	}

	f.items = f.items[:0]
	return dequeued, nil
}
