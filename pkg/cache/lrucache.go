package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
)

// lruItem is the internal structure stored in the linked list.
type lruItem struct {
	key   string
	value []byte
}

// InMemoryStore is a thread-safe, in-memory Store with a fixed capacity and a
// Least Recently Used (LRU) eviction policy. Contents do not survive a restart.
type InMemoryStore struct {
	maxEntries int

	mu    sync.Mutex
	ll    *list.List               // Recency order, most recent at the front.
	items map[string]*list.Element // Fast key lookups.
}

// NewInMemoryStore creates a size-limited in-memory store.
// - maxEntries: The maximum number of keys to hold. Must be > 0.
func NewInMemoryStore(maxEntries int) (*InMemoryStore, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("maxEntries must be greater than 0")
	}
	return &InMemoryStore{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}, nil
}

// Get returns a copy of the value under key and marks it as recently used.
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	s.ll.MoveToFront(elem)
	return append([]byte(nil), elem.Value.(*lruItem).value...), nil
}

// Set stores value under key, evicting the least recently used key if the
// store is over capacity.
func (s *InMemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := append([]byte(nil), value...)
	if elem, ok := s.items[key]; ok {
		elem.Value.(*lruItem).value = stored
		s.ll.MoveToFront(elem)
		return nil
	}

	s.items[key] = s.ll.PushFront(&lruItem{key: key, value: stored})
	if s.ll.Len() > s.maxEntries {
		s.evict()
	}
	return nil
}

// Delete removes key if present.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.ll.Remove(elem)
		delete(s.items, key)
	}
	return nil
}

// Len reports the number of stored keys.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}

// evict removes the least recently used item.
// This method is unexported and must be called within a locked mutex.
func (s *InMemoryStore) evict() {
	back := s.ll.Back()
	if back != nil {
		item := s.ll.Remove(back).(*lruItem)
		delete(s.items, item.key)
	}
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
