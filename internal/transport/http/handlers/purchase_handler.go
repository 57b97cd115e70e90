package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	authsvc "github.com/xenopets/backend/internal/services/auth"
	storesvc "github.com/xenopets/backend/internal/services/store"
	"github.com/xenopets/backend/internal/transport/http/dto"
	httperrors "github.com/xenopets/backend/internal/transport/http/errors"
)

type PurchaseHandler struct {
	store *storesvc.Service
}

func NewPurchaseHandler(store *storesvc.Service) *PurchaseHandler {
	return &PurchaseHandler{store: store}
}

func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.store == nil {
		writeInternal(w, "STORE_SERVICE_UNAVAILABLE", "store service is unavailable")
		return
	}

	var req dto.PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	shopItemID, err := uuid.Parse(req.ShopItemID)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid shop item id")
		return
	}

	result, err := h.store.PurchaseItem(r.Context(), identity.UserID, shopItemID, quantityOrOne(req.Quantity))
	if err != nil {
		if errors.Is(err, storesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase payload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to process purchase")
		return
	}

	resp := dto.PurchaseResponse{
		Success: result.Success,
		Message: result.Message,
	}
	if result.NewBalance != nil {
		balance := dto.BalanceFromModel(*result.NewBalance)
		resp.NewBalance = &balance
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *PurchaseHandler) Affordability(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.store == nil {
		writeInternal(w, "STORE_SERVICE_UNAVAILABLE", "store service is unavailable")
		return
	}

	var req dto.AffordabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	shopItemID, err := uuid.Parse(req.ShopItemID)
	if err != nil {
		httperrors.Write(w, http.StatusOK, dto.AffordabilityResponse{CanAfford: false})
		return
	}

	canAfford := h.store.CanAffordItem(r.Context(), identity.UserID, shopItemID, quantityOrOne(req.Quantity))
	httperrors.Write(w, http.StatusOK, dto.AffordabilityResponse{CanAfford: canAfford})
}

// quantityOrOne applies the single-unit default for requests that omit the
// quantity field.
func quantityOrOne(quantity *int64) int64 {
	if quantity == nil {
		return 1
	}
	return *quantity
}
