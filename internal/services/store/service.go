package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
)

var ErrValidation = errors.New("validation error")

type ProfileStore interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	DebitBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error)
	CreditBalance(ctx context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error)
}

type ListingStore interface {
	ListShops(ctx context.Context) ([]model.Shop, error)
	ListItems(ctx context.Context, shopID uuid.UUID) ([]model.ShopItem, error)
	GetAvailableItem(ctx context.Context, shopItemID uuid.UUID) (model.ShopItem, error)
	DecrementStock(ctx context.Context, shopItemID uuid.UUID, quantity int64) error
	UpsertItem(ctx context.Context, listing model.ShopItem) (model.ShopItem, error)
	Restock(ctx context.Context, shopItemID uuid.UUID, stockLimit *int64) error
}

type InventoryStore interface {
	Add(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error
	Remove(ctx context.Context, userID, itemID uuid.UUID, quantity int64) error
}

type PurchaseLog interface {
	Append(ctx context.Context, record model.PurchaseRecord) error
}

type Locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

type CatalogCache interface {
	GetShopItems(ctx context.Context, shopID uuid.UUID) ([]model.ShopItem, bool, error)
	SetShopItems(ctx context.Context, shopID uuid.UUID, listings []model.ShopItem, ttl time.Duration) error
	InvalidateShopItems(ctx context.Context, shopID uuid.UUID) error
}

type Config struct {
	LockTTL  time.Duration
	CacheTTL time.Duration
}

type Dependencies struct {
	Profiles  ProfileStore
	Listings  ListingStore
	Inventory InventoryStore
	Audit     PurchaseLog
	Locker    Locker
	Cache     CatalogCache
}

type Service struct {
	profiles  ProfileStore
	listings  ListingStore
	inventory InventoryStore
	audit     PurchaseLog
	locker    Locker
	cache     CatalogCache
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(deps Dependencies, cfg Config, logger *zap.Logger) *Service {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		profiles:  deps.Profiles,
		listings:  deps.Listings,
		inventory: deps.Inventory,
		audit:     deps.Audit,
		locker:    deps.Locker,
		cache:     deps.Cache,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) ListShops(ctx context.Context) ([]model.Shop, error) {
	if s.listings == nil {
		return nil, fmt.Errorf("listing store is nil")
	}
	return s.listings.ListShops(ctx)
}

func (s *Service) ListShopItems(ctx context.Context, shopID uuid.UUID) ([]model.ShopItem, error) {
	if shopID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.listings == nil {
		return nil, fmt.Errorf("listing store is nil")
	}

	if s.cache != nil {
		cached, hit, err := s.cache.GetShopItems(ctx, shopID)
		if err != nil {
			s.logger.Debug("catalog cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	listings, err := s.listings.ListItems(ctx, shopID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetShopItems(ctx, shopID, listings, s.cfg.CacheTTL); err != nil {
			s.logger.Debug("catalog cache write failed", zap.Error(err))
		}
	}

	return listings, nil
}

func (s *Service) GetListing(ctx context.Context, shopItemID uuid.UUID) (model.ShopItem, error) {
	if shopItemID == uuid.Nil {
		return model.ShopItem{}, ErrValidation
	}
	if s.listings == nil {
		return model.ShopItem{}, fmt.Errorf("listing store is nil")
	}
	return s.listings.GetAvailableItem(ctx, shopItemID)
}

// UpsertListing creates or updates a listing and drops the cached catalog
// page for its shop (admin surface).
func (s *Service) UpsertListing(ctx context.Context, listing model.ShopItem) (model.ShopItem, error) {
	if s.listings == nil {
		return model.ShopItem{}, fmt.Errorf("listing store is nil")
	}

	saved, err := s.listings.UpsertItem(ctx, listing)
	if err != nil {
		return model.ShopItem{}, err
	}
	s.invalidateCatalog(ctx, saved.ShopID)
	return saved, nil
}

// RestockListing overwrites a listing's stock limit; nil means unlimited.
func (s *Service) RestockListing(ctx context.Context, shopItemID uuid.UUID, stockLimit *int64) error {
	if shopItemID == uuid.Nil {
		return ErrValidation
	}
	if s.listings == nil {
		return fmt.Errorf("listing store is nil")
	}

	listing, err := s.listings.GetAvailableItem(ctx, shopItemID)
	if err == nil {
		defer s.invalidateCatalog(ctx, listing.ShopID)
	}
	return s.listings.Restock(ctx, shopItemID, stockLimit)
}

func (s *Service) invalidateCatalog(ctx context.Context, shopID uuid.UUID) {
	if s.cache == nil || shopID == uuid.Nil {
		return
	}
	if err := s.cache.InvalidateShopItems(ctx, shopID); err != nil {
		s.logger.Debug("catalog cache invalidation failed", zap.Error(err))
	}
}
