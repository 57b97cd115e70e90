package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo/memory"
	authsvc "github.com/xenopets/backend/internal/services/auth"
	storesvc "github.com/xenopets/backend/internal/services/store"
	"github.com/xenopets/backend/internal/transport/http/dto"
)

func newPurchaseFixture(t *testing.T) (*PurchaseHandler, *memory.Store, uuid.UUID, uuid.UUID) {
	t.Helper()

	record := memory.NewStore()
	userID := uuid.New()
	itemID := uuid.New()
	listingID := uuid.New()

	record.SeedProfile(model.Profile{ID: userID, Username: "tester", Xenocoins: 100})
	record.SeedItem(model.Item{ID: itemID, Name: "Health Potion"})
	limit := int64(5)
	record.SeedListing(model.ShopItem{
		ID:          listingID,
		ShopID:      uuid.New(),
		ItemID:      itemID,
		Price:       30,
		Currency:    enums.CurrencyXenocoins,
		StockLimit:  &limit,
		IsAvailable: true,
	})

	svc := storesvc.NewService(storesvc.Dependencies{
		Profiles:  record,
		Listings:  record,
		Inventory: record,
		Audit:     record,
	}, storesvc.Config{}, nil)

	return NewPurchaseHandler(svc), record, userID, listingID
}

func doPurchase(t *testing.T, handler *PurchaseHandler, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/purchase", strings.NewReader(body))
	if userID != uuid.Nil {
		ctx := authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: userID})
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	handler.Purchase(rec, req)
	return rec
}

func TestPurchaseEndpointSuccess(t *testing.T) {
	handler, record, userID, listingID := newPurchaseFixture(t)

	body := `{"shop_item_id":"` + listingID.String() + `","quantity":2}`
	rec := doPurchase(t, handler, userID, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PurchaseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Message)
	}
	if resp.NewBalance == nil || resp.NewBalance.Xenocoins != 40 {
		t.Fatalf("unexpected balance: %+v", resp.NewBalance)
	}
	if record.PurchaseCount() != 1 {
		t.Fatalf("expected 1 purchase record, got %d", record.PurchaseCount())
	}
}

func TestPurchaseEndpointInsufficientFunds(t *testing.T) {
	handler, _, userID, listingID := newPurchaseFixture(t)

	body := `{"shop_item_id":"` + listingID.String() + `","quantity":4}`
	rec := doPurchase(t, handler, userID, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("business failures must still be 200, got %d", rec.Code)
	}

	var resp dto.PurchaseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(resp.Message, "Insufficient xenocoins") {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestPurchaseEndpointDefaultsQuantityToOne(t *testing.T) {
	handler, record, userID, listingID := newPurchaseFixture(t)

	body := `{"shop_item_id":"` + listingID.String() + `"}`
	rec := doPurchase(t, handler, userID, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.PurchaseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("omitted quantity should buy one unit, got %q", resp.Message)
	}
	if resp.NewBalance == nil || resp.NewBalance.Xenocoins != 70 {
		t.Fatalf("unexpected balance: %+v", resp.NewBalance)
	}
	if record.PurchaseCount() != 1 {
		t.Fatalf("expected 1 purchase record, got %d", record.PurchaseCount())
	}
}

func TestAffordabilityEndpointDefaultsQuantityToOne(t *testing.T) {
	handler, _, userID, listingID := newPurchaseFixture(t)

	body := `{"shop_item_id":"` + listingID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/purchase/affordability", strings.NewReader(body))
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: userID}))

	rec := httptest.NewRecorder()
	handler.Affordability(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AffordabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.CanAfford {
		t.Fatalf("one unit at price 30 should be affordable with 100 coins")
	}
}

func TestPurchaseEndpointRequiresAuth(t *testing.T) {
	handler, _, _, listingID := newPurchaseFixture(t)

	body := `{"shop_item_id":"` + listingID.String() + `","quantity":1}`
	rec := doPurchase(t, handler, uuid.Nil, body)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPurchaseEndpointRejectsBadBody(t *testing.T) {
	handler, _, userID, _ := newPurchaseFixture(t)

	for _, body := range []string{"not-json", `{"shop_item_id":"nope","quantity":1}`, `{"unknown_field":true}`} {
		rec := doPurchase(t, handler, userID, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestAffordabilityEndpoint(t *testing.T) {
	handler, _, userID, listingID := newPurchaseFixture(t)

	check := func(quantity int64, want bool) {
		t.Helper()

		body := `{"shop_item_id":"` + listingID.String() + `","quantity":` + strconv.FormatInt(quantity, 10) + `}`
		req := httptest.NewRequest(http.MethodPost, "/v1/purchase/affordability", strings.NewReader(body))
		req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{UserID: userID}))

		rec := httptest.NewRecorder()
		handler.Affordability(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp dto.AffordabilityResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.CanAfford != want {
			t.Fatalf("quantity %d: expected can_afford=%v", quantity, want)
		}
	}

	check(3, true)
	check(4, false)
}
