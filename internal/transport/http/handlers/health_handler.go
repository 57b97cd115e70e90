package handlers

import (
	"net/http"

	diagsvc "github.com/xenopets/backend/internal/services/diagnostics"
	"github.com/xenopets/backend/internal/transport/http/dto"
	httperrors "github.com/xenopets/backend/internal/transport/http/errors"
)

type HealthHandler struct {
	diagnostics *diagsvc.Service
}

func NewHealthHandler(diagnostics *diagsvc.Service) *HealthHandler {
	return &HealthHandler{diagnostics: diagnostics}
}

// Liveness answers as long as the process is up; it does not probe
// dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.diagnostics == nil {
		httperrors.Write(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
		return
	}

	if !h.diagnostics.Healthy(r.Context()) {
		httperrors.Write(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded"})
		return
	}
	httperrors.Write(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	if h.diagnostics == nil {
		writeInternal(w, "DIAGNOSTICS_SERVICE_UNAVAILABLE", "diagnostics service is unavailable")
		return
	}

	checks := h.diagnostics.Check(r.Context())
	healthy := true
	for _, check := range checks {
		if !check.Healthy {
			healthy = false
			break
		}
	}

	httperrors.Write(w, http.StatusOK, dto.DiagnosticsResponse{
		Healthy: healthy,
		Checks:  checks,
	})
}
