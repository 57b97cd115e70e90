package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/xenopets/backend/internal/services/auth"
	invsvc "github.com/xenopets/backend/internal/services/inventory"
	"github.com/xenopets/backend/internal/transport/http/dto"
	httperrors "github.com/xenopets/backend/internal/transport/http/errors"
)

type InventoryHandler struct {
	inventory *invsvc.Service
}

func NewInventoryHandler(inventory *invsvc.Service) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.inventory == nil {
		writeInternal(w, "INVENTORY_SERVICE_UNAVAILABLE", "inventory service is unavailable")
		return
	}

	entries, err := h.inventory.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, invsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid inventory request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list inventory")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.InventoryFromModels(entries))
}
