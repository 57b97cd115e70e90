package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenopets/backend/internal/domain/enums"
	"github.com/xenopets/backend/internal/domain/model"
	"github.com/xenopets/backend/internal/repo"
	assetsvc "github.com/xenopets/backend/internal/services/assets"
	profilesvc "github.com/xenopets/backend/internal/services/profiles"
	storesvc "github.com/xenopets/backend/internal/services/store"
	"github.com/xenopets/backend/internal/transport/http/dto"
	httperrors "github.com/xenopets/backend/internal/transport/http/errors"
)

const maxImageUploadSize = 10 << 20 // 10 MiB

type AdminHandler struct {
	store    *storesvc.Service
	profiles *profilesvc.Service
	assets   *assetsvc.Service
}

func NewAdminHandler(store *storesvc.Service, profiles *profilesvc.Service, assets *assetsvc.Service) *AdminHandler {
	return &AdminHandler{
		store:    store,
		profiles: profiles,
		assets:   assets,
	}
}

func (h *AdminHandler) UpsertShopItem(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeInternal(w, "STORE_SERVICE_UNAVAILABLE", "store service is unavailable")
		return
	}

	var req dto.UpsertShopItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	listing, err := listingFromUpsertRequest(req)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	saved, err := h.store.UpsertListing(r.Context(), listing)
	if err != nil {
		if errors.Is(err, storesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid shop item payload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to save shop item")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ShopItemFromModel(saved))
}

func (h *AdminHandler) Restock(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeInternal(w, "STORE_SERVICE_UNAVAILABLE", "store service is unavailable")
		return
	}

	shopItemID, err := uuid.Parse(chi.URLParam(r, "shopItemID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid shop item id")
		return
	}

	var req dto.RestockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.StockLimit != nil && *req.StockLimit < 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "stock limit must not be negative")
		return
	}

	if err := h.store.RestockListing(r.Context(), shopItemID, req.StockLimit); err != nil {
		switch {
		case errors.Is(err, storesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid restock payload")
		case errors.Is(err, repo.ErrListingNotFound):
			writeNotFound(w, "LISTING_NOT_FOUND", "shop item not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to restock shop item")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AdminHandler) Credit(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	var req dto.CreditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	currency, err := enums.ParseCurrency(req.Currency)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid currency")
		return
	}

	balance, err := h.profiles.Credit(r.Context(), userID, currency, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid credit payload")
		case errors.Is(err, repo.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to credit balance")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CreditResponse{
		OK:         true,
		NewBalance: dto.BalanceFromModel(balance),
	})
}

func (h *AdminHandler) UploadItemImage(w http.ResponseWriter, r *http.Request) {
	if h.assets == nil {
		writeInternal(w, "ASSET_SERVICE_UNAVAILABLE", "asset service is unavailable")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadSize)
	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	image, err := h.assets.UploadItemImage(r.Context(), itemID, header.Filename, contentType, file, header.Size)
	if err != nil {
		if errors.Is(err, assetsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid image upload")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to upload item image")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ItemImageResponse{
		ItemID:    image.ItemID.String(),
		ImagePath: image.ImagePath,
		URL:       image.URL,
	})
}

func listingFromUpsertRequest(req dto.UpsertShopItemRequest) (model.ShopItem, error) {
	var listing model.ShopItem

	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return model.ShopItem{}, errors.New("invalid shop item id")
		}
		listing.ID = id
	}

	shopID, err := uuid.Parse(req.ShopID)
	if err != nil {
		return model.ShopItem{}, errors.New("invalid shop id")
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return model.ShopItem{}, errors.New("invalid item id")
	}
	currency, err := enums.ParseCurrency(req.Currency)
	if err != nil {
		return model.ShopItem{}, errors.New("invalid currency")
	}
	if req.Price < 0 {
		return model.ShopItem{}, errors.New("price must not be negative")
	}
	if req.StockLimit != nil && *req.StockLimit < 0 {
		return model.ShopItem{}, errors.New("stock limit must not be negative")
	}

	listing.ShopID = shopID
	listing.ItemID = itemID
	listing.Price = req.Price
	listing.Currency = currency
	listing.StockLimit = req.StockLimit
	listing.IsAvailable = req.IsAvailable
	return listing, nil
}
