package handlers

import (
	"errors"
	"net/http"

	"github.com/xenopets/backend/internal/repo"
	authsvc "github.com/xenopets/backend/internal/services/auth"
	profilesvc "github.com/xenopets/backend/internal/services/profiles"
	"github.com/xenopets/backend/internal/transport/http/dto"
	httperrors "github.com/xenopets/backend/internal/transport/http/errors"
)

type ProfileHandler struct {
	profiles *profilesvc.Service
}

func NewProfileHandler(profiles *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.profiles == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileFromModel(profile))
}

func (h *ProfileHandler) Balances(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.profiles == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	balance, err := h.profiles.GetBalances(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BalanceFromModel(balance))
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile request")
	case errors.Is(err, repo.ErrProfileNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to load profile")
	}
}
