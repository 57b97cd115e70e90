package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/repo"
	storesvc "github.com/xenopets/backend/internal/services/store"
	"github.com/xenopets/backend/internal/transport/http/dto"
	httperrors "github.com/xenopets/backend/internal/transport/http/errors"
)

type ShopHandler struct {
	store *storesvc.Service
}

func NewShopHandler(store *storesvc.Service) *ShopHandler {
	return &ShopHandler{store: store}
}

func (h *ShopHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeInternal(w, "STORE_SERVICE_UNAVAILABLE", "store service is unavailable")
		return
	}

	shops, err := h.store.ListShops(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list shops")
		return
	}

	out := make([]dto.ShopResponse, 0, len(shops))
	for _, shop := range shops {
		out = append(out, dto.ShopFromModel(shop))
	}
	httperrors.Write(w, http.StatusOK, out)
}

func (h *ShopHandler) ListShopItems(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeInternal(w, "STORE_SERVICE_UNAVAILABLE", "store service is unavailable")
		return
	}

	shopID, err := uuid.Parse(chi.URLParam(r, "shopID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid shop id")
		return
	}

	listings, err := h.store.ListShopItems(r.Context(), shopID)
	if err != nil {
		if errors.Is(err, storesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid shop id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list shop items")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ShopItemsFromModels(listings))
}

func (h *ShopHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeInternal(w, "STORE_SERVICE_UNAVAILABLE", "store service is unavailable")
		return
	}

	shopItemID, err := uuid.Parse(chi.URLParam(r, "shopItemID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid shop item id")
		return
	}

	listing, err := h.store.GetListing(r.Context(), shopItemID)
	if err != nil {
		switch {
		case errors.Is(err, storesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid shop item id")
		case errors.Is(err, repo.ErrListingNotFound):
			writeNotFound(w, "LISTING_NOT_FOUND", "shop item not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load shop item")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ShopItemFromModel(listing))
}
