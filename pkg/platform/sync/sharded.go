// Package sync provides keyed locking for per-client counters.
package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 16

// KeyedMutex serializes work per key using a fixed set of mutex shards.
// Different keys may share a shard; the same key always does.
type KeyedMutex struct {
	shards [shardCount]sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Do runs fn while holding the shard lock for key.
func (m *KeyedMutex) Do(key string, fn func()) {
	mu := &m.shards[shardFor(key)]
	mu.Lock()
	defer mu.Unlock()
	fn()
}

func shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % shardCount
}
