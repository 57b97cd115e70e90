package store

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
)

type profileStoreStub struct {
	profiles    map[uuid.UUID]model.Profile
	debitErr    error
	debitCalls  int
	creditCalls int
}

func newProfileStoreStub() *profileStoreStub {
	return &profileStoreStub{profiles: make(map[uuid.UUID]model.Profile)}
}

func (s *profileStoreStub) Get(_ context.Context, userID uuid.UUID) (model.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}
	return p, nil
}

func (s *profileStoreStub) DebitBalance(_ context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	s.debitCalls++
	if s.debitErr != nil {
		return model.Profile{}, s.debitErr
	}
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}
	if p.BalanceFor(currency) < amount {
		return model.Profile{}, repo.ErrInsufficientBalance
	}
	switch currency {
	case enums.CurrencyCash:
		p.Cash -= amount
	default:
		p.Xenocoins -= amount
	}
	s.profiles[userID] = p
	return p, nil
}

func (s *profileStoreStub) CreditBalance(_ context.Context, userID uuid.UUID, currency enums.Currency, amount int64) (model.Profile, error) {
	s.creditCalls++
	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, repo.ErrProfileNotFound
	}
	switch currency {
	case enums.CurrencyCash:
		p.Cash += amount
	default:
		p.Xenocoins += amount
	}
	s.profiles[userID] = p
	return p, nil
}

type listingStoreStub struct {
	listings     map[uuid.UUID]model.ShopItem
	decrementErr error
}

func newListingStoreStub() *listingStoreStub {
	return &listingStoreStub{listings: make(map[uuid.UUID]model.ShopItem)}
}

func (s *listingStoreStub) ListShops(_ context.Context) ([]model.Shop, error) {
	return nil, nil
}

func (s *listingStoreStub) ListItems(_ context.Context, shopID uuid.UUID) ([]model.ShopItem, error) {
	var out []model.ShopItem
	for _, l := range s.listings {
		if l.ShopID == shopID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *listingStoreStub) GetAvailableItem(_ context.Context, shopItemID uuid.UUID) (model.ShopItem, error) {
	l, ok := s.listings[shopItemID]
	if !ok || !l.IsAvailable {
		return model.ShopItem{}, repo.ErrListingNotFound
	}
	return l, nil
}

func (s *listingStoreStub) DecrementStock(_ context.Context, shopItemID uuid.UUID, quantity int64) error {
	if s.decrementErr != nil {
		return s.decrementErr
	}
	l, ok := s.listings[shopItemID]
	if !ok {
		return repo.ErrListingNotFound
	}
	if l.StockLimit == nil {
		return nil
	}
	if *l.StockLimit < quantity {
		return repo.ErrInsufficientStock
	}
	next := *l.StockLimit - quantity
	l.StockLimit = &next
	s.listings[shopItemID] = l
	return nil
}

func (s *listingStoreStub) UpsertItem(_ context.Context, listing model.ShopItem) (model.ShopItem, error) {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	s.listings[listing.ID] = listing
	return listing, nil
}

func (s *listingStoreStub) Restock(_ context.Context, shopItemID uuid.UUID, stockLimit *int64) error {
	l, ok := s.listings[shopItemID]
	if !ok {
		return repo.ErrListingNotFound
	}
	l.StockLimit = stockLimit
	s.listings[shopItemID] = l
	return nil
}

type inventoryStoreStub struct {
	entries     map[uuid.UUID]map[uuid.UUID]int64
	addErr      error
	removeCalls int
}

func newInventoryStoreStub() *inventoryStoreStub {
	return &inventoryStoreStub{entries: make(map[uuid.UUID]map[uuid.UUID]int64)}
}

func (s *inventoryStoreStub) Add(_ context.Context, userID, itemID uuid.UUID, quantity int64) error {
	if s.addErr != nil {
		return s.addErr
	}
	if s.entries[userID] == nil {
		s.entries[userID] = make(map[uuid.UUID]int64)
	}
	s.entries[userID][itemID] += quantity
	return nil
}

func (s *inventoryStoreStub) Remove(_ context.Context, userID, itemID uuid.UUID, quantity int64) error {
	s.removeCalls++
	if s.entries[userID] == nil {
		return nil
	}
	s.entries[userID][itemID] -= quantity
	if s.entries[userID][itemID] <= 0 {
		delete(s.entries[userID], itemID)
	}
	return nil
}

func (s *inventoryStoreStub) quantity(userID, itemID uuid.UUID) int64 {
	return s.entries[userID][itemID]
}

type purchaseLogStub struct {
	records   []model.PurchaseRecord
	appendErr error
}

func (s *purchaseLogStub) Append(_ context.Context, record model.PurchaseRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, record)
	return nil
}

type lockerStub struct {
	held     map[string]string
	releases int
}

func newLockerStub() *lockerStub {
	return &lockerStub{held: make(map[string]string)}
}

func (s *lockerStub) Acquire(_ context.Context, key, token string, _ time.Duration) (bool, error) {
	if _, taken := s.held[key]; taken {
		return false, nil
	}
	s.held[key] = token
	return true, nil
}

func (s *lockerStub) Release(_ context.Context, key, token string) error {
	if s.held[key] == token {
		delete(s.held, key)
	}
	s.releases++
	return nil
}

type fixture struct {
	svc       *Service
	profiles  *profileStoreStub
	listings  *listingStoreStub
	inventory *inventoryStoreStub
	audit     *purchaseLogStub
	locker    *lockerStub

	userID    uuid.UUID
	itemID    uuid.UUID
	listingID uuid.UUID
}

func newFixture(xenocoins int64, stockLimit *int64, price int64) *fixture {
	f := &fixture{
		profiles:  newProfileStoreStub(),
		listings:  newListingStoreStub(),
		inventory: newInventoryStoreStub(),
		audit:     &purchaseLogStub{},
		locker:    newLockerStub(),
		userID:    uuid.New(),
		itemID:    uuid.New(),
		listingID: uuid.New(),
	}

	f.profiles.profiles[f.userID] = model.Profile{
		ID:        f.userID,
		Username:  "tester",
		Xenocoins: xenocoins,
	}
	f.listings.listings[f.listingID] = model.ShopItem{
		ID:          f.listingID,
		ShopID:      uuid.New(),
		ItemID:      f.itemID,
		Price:       price,
		Currency:    enums.CurrencyXenocoins,
		StockLimit:  stockLimit,
		IsAvailable: true,
		Item:        &model.Item{ID: f.itemID, Name: "Health Potion"},
	}

	f.svc = NewService(Dependencies{
		Profiles:  f.profiles,
		Listings:  f.listings,
		Inventory: f.inventory,
		Audit:     f.audit,
		Locker:    f.locker,
	}, Config{}, nil)

	return f
}

func stock(n int64) *int64 { return &n }

func TestPurchaseItemHappyPath(t *testing.T) {
	f := newFixture(100, stock(5), 30)

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 2)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if result.NewBalance == nil || result.NewBalance.Xenocoins != 40 {
		t.Fatalf("expected balance 40, got %+v", result.NewBalance)
	}
	if got := f.inventory.quantity(f.userID, f.itemID); got != 2 {
		t.Fatalf("expected 2 items granted, got %d", got)
	}
	if got := *f.listings.listings[f.listingID].StockLimit; got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
	if len(f.audit.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(f.audit.records))
	}
	if rec := f.audit.records[0]; rec.TotalCost != 60 || rec.Quantity != 2 {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
	if f.locker.releases != 1 {
		t.Fatalf("expected lock released once, got %d", f.locker.releases)
	}
}

func TestPurchaseItemInsufficientFunds(t *testing.T) {
	f := newFixture(100, stock(5), 30)

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 4)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(result.Message, "Insufficient xenocoins") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if f.profiles.debitCalls != 0 {
		t.Fatalf("balance must not be touched, got %d debits", f.profiles.debitCalls)
	}
	if got := f.inventory.quantity(f.userID, f.itemID); got != 0 {
		t.Fatalf("inventory must stay empty, got %d", got)
	}
	if len(f.audit.records) != 0 {
		t.Fatalf("no audit record expected, got %d", len(f.audit.records))
	}
}

func TestPurchaseItemCompensatesOnInventoryFailure(t *testing.T) {
	f := newFixture(100, stock(5), 30)
	f.inventory.addErr = errors.New("inventory backend down")

	_, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 2)
	if err == nil {
		t.Fatalf("expected error")
	}
	if f.profiles.creditCalls != 1 {
		t.Fatalf("expected 1 compensating credit, got %d", f.profiles.creditCalls)
	}
	if got := f.profiles.profiles[f.userID].Xenocoins; got != 100 {
		t.Fatalf("balance must be restored to 100, got %d", got)
	}
	if got := *f.listings.listings[f.listingID].StockLimit; got != 5 {
		t.Fatalf("stock must be untouched, got %d", got)
	}
	if len(f.audit.records) != 0 {
		t.Fatalf("no audit record expected, got %d", len(f.audit.records))
	}
	if f.locker.releases != 1 {
		t.Fatalf("lock must be released on failure, got %d releases", f.locker.releases)
	}
}

func TestPurchaseItemStockWriteFailureStillSucceeds(t *testing.T) {
	f := newFixture(100, stock(5), 30)
	f.listings.decrementErr = errors.New("stock backend down")

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 2)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success despite stock write failure, got %q", result.Message)
	}
	if got := f.profiles.profiles[f.userID].Xenocoins; got != 40 {
		t.Fatalf("expected balance 40, got %d", got)
	}
	if got := f.inventory.quantity(f.userID, f.itemID); got != 2 {
		t.Fatalf("expected 2 items granted, got %d", got)
	}
}

func TestPurchaseItemAuditFailureStillSucceeds(t *testing.T) {
	f := newFixture(100, stock(5), 30)
	f.audit.appendErr = errors.New("audit backend down")

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 1)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success despite audit failure, got %q", result.Message)
	}
}

func TestPurchaseItemUnknownListing(t *testing.T) {
	f := newFixture(100, stock(5), 30)

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, uuid.New(), 1)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Success || result.Message != "Item not found or unavailable" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestPurchaseItemRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(100, stock(5), 30)

	for _, quantity := range []int64{0, -1} {
		result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, quantity)
		if err != nil {
			t.Fatalf("purchase quantity %d: %v", quantity, err)
		}
		if result.Success || result.Message != "Quantity must be at least 1" {
			t.Fatalf("quantity %d: unexpected result %+v", quantity, result)
		}
	}
}

func TestPurchaseItemRejectsOverflowingQuantity(t *testing.T) {
	f := newFixture(100, nil, 30)

	// 30 * quantity wraps negative; a wrapped total would pass the funds
	// check and turn the debit into a credit.
	quantity := int64(math.MaxInt64/30 + 1)
	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, quantity)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Success || result.Message != "Quantity too large" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if f.profiles.debitCalls != 0 {
		t.Fatalf("balance must not be touched, got %d debits", f.profiles.debitCalls)
	}
	if got := f.profiles.profiles[f.userID].Xenocoins; got != 100 {
		t.Fatalf("balance must stay 100, got %d", got)
	}
	if got := f.inventory.quantity(f.userID, f.itemID); got != 0 {
		t.Fatalf("inventory must stay empty, got %d", got)
	}

	if f.svc.CanAffordItem(context.Background(), f.userID, f.listingID, quantity) {
		t.Fatalf("overflowing quantity must not be affordable")
	}
}

func TestPurchaseItemInsufficientStock(t *testing.T) {
	f := newFixture(100, stock(1), 30)

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 2)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Success || result.Message != "Insufficient stock" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if f.profiles.debitCalls != 0 {
		t.Fatalf("balance must not be touched, got %d debits", f.profiles.debitCalls)
	}
}

func TestPurchaseItemUnlimitedStock(t *testing.T) {
	f := newFixture(1000, nil, 30)

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 10)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if got := f.profiles.profiles[f.userID].Xenocoins; got != 700 {
		t.Fatalf("expected balance 700, got %d", got)
	}
}

func TestPurchaseItemLockBusy(t *testing.T) {
	f := newFixture(100, stock(5), 30)
	f.locker.held[f.userID.String()] = "someone-else"

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 1)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Success || result.Message != msgPurchaseBusy {
		t.Fatalf("unexpected result: %+v", result)
	}
	if f.profiles.debitCalls != 0 {
		t.Fatalf("balance must not be touched while locked")
	}
}

func TestPurchaseItemConcurrentDebitConflict(t *testing.T) {
	f := newFixture(100, stock(5), 30)
	f.profiles.debitErr = repo.ErrInsufficientBalance

	result, err := f.svc.PurchaseItem(context.Background(), f.userID, f.listingID, 2)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if result.Success {
		t.Fatalf("expected business failure")
	}
	if !strings.Contains(result.Message, "Insufficient xenocoins") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if got := f.inventory.quantity(f.userID, f.itemID); got != 0 {
		t.Fatalf("inventory must stay empty, got %d", got)
	}
}

func TestCanAffordItem(t *testing.T) {
	f := newFixture(100, stock(5), 30)

	if !f.svc.CanAffordItem(context.Background(), f.userID, f.listingID, 3) {
		t.Fatalf("expected affordable at quantity 3")
	}
	if f.svc.CanAffordItem(context.Background(), f.userID, f.listingID, 4) {
		t.Fatalf("expected unaffordable at quantity 4")
	}
	if f.svc.CanAffordItem(context.Background(), f.userID, uuid.New(), 1) {
		t.Fatalf("unknown listing must read as unaffordable")
	}
	if f.svc.CanAffordItem(context.Background(), f.userID, f.listingID, 0) {
		t.Fatalf("non-positive quantity must read as unaffordable")
	}
	if f.svc.CanAffordItem(context.Background(), uuid.New(), f.listingID, 1) {
		t.Fatalf("unknown user must read as unaffordable")
	}
}
