package sharding

import (
	"hash/crc32"
	"sync"
)

// ShardCount is the number of partitions a Map spreads its keys over.
const ShardCount = 32

// ShardFor returns the deterministic partition of key.
func ShardFor(key string) int {
	return int(crc32.ChecksumIEEE([]byte(key)) % ShardCount)
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// Map is a string-keyed map split into ShardCount independently locked
// partitions, so unrelated keys do not contend on one mutex.
type Map[V any] struct {
	shards [ShardCount]shard[V]
}

func NewMap[V any]() *Map[V] {
	m := &Map[V]{}
	for i := range m.shards {
		m.shards[i].items = map[string]V{}
	}
	return m
}

func (m *Map[V]) Store(key string, value V) {
	s := &m.shards[ShardFor(key)]
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

func (m *Map[V]) Load(key string) (V, bool) {
	s := &m.shards[ShardFor(key)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (m *Map[V]) Delete(key string) {
	s := &m.shards[ShardFor(key)]
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// DeleteFunc removes every entry for which drop returns true and reports how
// many were removed. Shards are locked one at a time.
func (m *Map[V]) DeleteFunc(drop func(key string, value V) bool) int {
	removed := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.items {
			if drop(k, v) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

func (m *Map[V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}
