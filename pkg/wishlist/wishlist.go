// Package wishlist keeps the user's saved destinations in the cache store.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/illmade-knight/go-destinations/pkg/cache"
	"github.com/illmade-knight/go-destinations/pkg/types"
	"github.com/rs/zerolog"
)

// StorageKey is the store key holding the whole list.
const StorageKey = "travelGuideWishlist"

// Wishlist is an ordered set of items identified by (ID, Type). Items are
// kept in the order they were added. Thread-safe within a process.
type Wishlist struct {
	store  cache.Store
	mu     sync.Mutex
	logger zerolog.Logger
}

// New creates a Wishlist backed by store.
func New(store cache.Store, logger zerolog.Logger) (*Wishlist, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Wishlist{
		store:  store,
		logger: logger.With().Str("component", "Wishlist").Logger(),
	}, nil
}

// List returns all saved items. A missing or unreadable list is empty.
func (w *Wishlist) List(ctx context.Context) []types.WishlistItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx)
}

// Contains reports whether the item is saved.
func (w *Wishlist) Contains(ctx context.Context, id, itemType string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return indexOf(w.load(ctx), id, itemType) >= 0
}

// Add saves item. Adding an item that is already saved is a no-op.
func (w *Wishlist) Add(ctx context.Context, item types.WishlistItem) error {
	if item.ID == "" || item.Type == "" {
		return fmt.Errorf("wishlist item requires an id and a type")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	items := w.load(ctx)
	if indexOf(items, item.ID, item.Type) >= 0 {
		return nil
	}
	return w.save(ctx, append(items, item))
}

// Remove deletes the item if saved.
func (w *Wishlist) Remove(ctx context.Context, id, itemType string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	items := w.load(ctx)
	i := indexOf(items, id, itemType)
	if i < 0 {
		return nil
	}
	return w.save(ctx, append(items[:i], items[i+1:]...))
}

// Toggle adds item when absent and removes it when present. It reports
// whether the item is saved afterwards.
func (w *Wishlist) Toggle(ctx context.Context, item types.WishlistItem) (bool, error) {
	if item.ID == "" || item.Type == "" {
		return false, fmt.Errorf("wishlist item requires an id and a type")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	items := w.load(ctx)
	if i := indexOf(items, item.ID, item.Type); i >= 0 {
		return false, w.save(ctx, append(items[:i], items[i+1:]...))
	}
	return true, w.save(ctx, append(items, item))
}

func (w *Wishlist) load(ctx context.Context) []types.WishlistItem {
	raw, err := w.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			w.logger.Warn().Err(err).Msg("Failed to load wishlist, starting empty.")
		}
		return []types.WishlistItem{}
	}
	var items []types.WishlistItem
	if err := json.Unmarshal(raw, &items); err != nil {
		w.logger.Warn().Err(err).Msg("Corrupt wishlist, starting empty.")
		return []types.WishlistItem{}
	}
	if items == nil {
		items = []types.WishlistItem{}
	}
	return items
}

func (w *Wishlist) save(ctx context.Context, items []types.WishlistItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}
	if err := w.store.Set(ctx, StorageKey, data); err != nil {
		w.logger.Error().Err(err).Msg("Failed to save wishlist.")
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	return nil
}

func indexOf(items []types.WishlistItem, id, itemType string) int {
	for i, it := range items {
		if it.ID == id && it.Type == itemType {
			return i
		}
	}
	return -1
}
