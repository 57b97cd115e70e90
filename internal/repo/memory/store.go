// Package memory is the in-process record-store backend. It backs the
// integration tests and the explicit "memory" backend mode; it is selected
// by configuration, never by sniffing credentials.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
)

type inventoryKey struct {
	userID uuid.UUID
	itemID uuid.UUID
}

// Store keeps every table behind one mutex so each method is independently
// atomic, matching the row-level contract of the remote backends.
type Store struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]model.Profile
	shops     map[uuid.UUID]model.Shop
	items     map[uuid.UUID]model.Item
	listings  map[uuid.UUID]model.ShopItem
	inventory map[inventoryKey]model.InventoryEntry
	purchases []model.PurchaseRecord
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		profiles:  make(map[uuid.UUID]model.Profile),
		shops:     make(map[uuid.UUID]model.Shop),
		items:     make(map[uuid.UUID]model.Item),
		listings:  make(map[uuid.UUID]model.ShopItem),
		inventory: make(map[inventoryKey]model.InventoryEntry),
		now:       time.Now,
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// ---- profiles ----

func (s *Store) Get(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}
	return profile, nil
}

func (s *Store) DebitBalance(_ context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	if amount <= 0 {
		return model.Profile{}, fmt.Errorf("amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}
	if profile.BalanceFor(currency) < amount {
		return model.Profile{}, repo.ErrInsufficientBalance
	}

	s.adjustLocked(&profile, currency, -amount)
	s.profiles[userID] = profile
	return profile, nil
}

func (s *Store) CreditBalance(_ context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	if amount <= 0 {
		return model.Profile{}, fmt.Errorf("amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}

	s.adjustLocked(&profile, currency, amount)
	s.profiles[userID] = profile
	return profile, nil
}

func (s *Store) adjustLocked(profile *model.Profile, currency enums.Currency, delta int64) {
	if currency == enums.CurrencyCash {
		profile.Cash += delta
	} else {
		profile.Xenocoins += delta
	}
	profile.UpdatedAt = s.now().UTC()
}

// ---- shops and listings ----

func (s *Store) ListShops(context.Context) ([]model.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shops := make([]model.Shop, 0, len(s.shops))
	for _, shop := range s.shops {
		shops = append(shops, shop)
	}
	sort.Slice(shops, func(i, j int) bool { return shops[i].Name < shops[j].Name })
	return shops, nil
}

func (s *Store) ListItems(_ context.Context, shopID uuid.UUID) ([]model.ShopItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var listings []model.ShopItem
	for _, listing := range s.listings {
		if listing.ShopID == shopID && listing.IsAvailable {
			listings = append(listings, s.withItemLocked(listing))
		}
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].ID.String() < listings[j].ID.String()
	})
	return listings, nil
}

func (s *Store) GetAvailableItem(_ context.Context, shopItemID uuid.UUID) (model.ShopItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[shopItemID]
	if !ok || !listing.IsAvailable {
		return model.ShopItem{}, repo.ErrListingNotFound
	}
	return s.withItemLocked(listing), nil
}

func (s *Store) DecrementStock(_ context.Context, shopItemID uuid.UUID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[shopItemID]
	if !ok {
		return repo.ErrListingNotFound
	}
	if listing.StockLimit == nil {
		return nil
	}
	if *listing.StockLimit < quantity {
		return repo.ErrInsufficientStock
	}

	remaining := *listing.StockLimit - quantity
	listing.StockLimit = &remaining
	s.listings[shopItemID] = listing
	return nil
}

func (s *Store) UpsertItem(_ context.Context, listing model.ShopItem) (model.ShopItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	listing.Item = nil
	s.listings[listing.ID] = listing
	return s.withItemLocked(listing), nil
}

func (s *Store) Restock(_ context.Context, shopItemID uuid.UUID, stockLimit *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[shopItemID]
	if !ok {
		return repo.ErrListingNotFound
	}
	listing.StockLimit = stockLimit
	s.listings[shopItemID] = listing
	return nil
}

func (s *Store) UpdateItemImage(_ context.Context, itemID uuid.UUID, imagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return repo.ErrItemNotFound
	}
	item.ImagePath = imagePath
	s.items[itemID] = item
	return nil
}

func (s *Store) withItemLocked(listing model.ShopItem) model.ShopItem {
	if item, ok := s.items[listing.ItemID]; ok {
		listing.Item = &item
	}
	return listing
}

// ---- inventory ----

func (s *Store) Add(_ context.Context, userID, itemID uuid.UUID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := inventoryKey{userID: userID, itemID: itemID}
	entry, ok := s.inventory[key]
	if !ok {
		entry = model.InventoryEntry{
			UserID:     userID,
			ItemID:     itemID,
			AcquiredAt: s.now().UTC(),
		}
	}
	entry.Quantity += quantity
	s.inventory[key] = entry
	return nil
}

func (s *Store) Remove(_ context.Context, userID, itemID uuid.UUID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := inventoryKey{userID: userID, itemID: itemID}
	entry, ok := s.inventory[key]
	if !ok {
		return nil
	}
	if entry.Quantity <= quantity {
		delete(s.inventory, key)
		return nil
	}
	entry.Quantity -= quantity
	s.inventory[key] = entry
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID uuid.UUID) ([]model.InventoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []model.InventoryEntry
	for _, entry := range s.inventory {
		if entry.UserID != userID {
			continue
		}
		if item, ok := s.items[entry.ItemID]; ok {
			entry.Item = &item
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ItemID.String() < entries[j].ItemID.String()
	})
	return entries, nil
}

// ---- purchases audit ----

func (s *Store) Append(_ context.Context, record model.PurchaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	s.purchases = append(s.purchases, record)
	return nil
}

func (s *Store) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.purchases[:0]
	var removed int64
	for _, record := range s.purchases {
		if record.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	s.purchases = kept
	return removed, nil
}

// ---- seeding helpers ----

func (s *Store) SeedProfile(profile model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
}

func (s *Store) SeedShop(shop model.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[shop.ID] = shop
}

func (s *Store) SeedItem(item model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

func (s *Store) SeedListing(listing model.ShopItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing.Item = nil
	s.listings[listing.ID] = listing
}

func (s *Store) PurchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}
