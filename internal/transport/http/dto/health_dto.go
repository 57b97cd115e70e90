package dto

import "github.com/xenopets/backend/internal/services/diagnostics"

type HealthResponse struct {
	Status string `json:"status"`
}

type DiagnosticsResponse struct {
	Healthy bool                      `json:"healthy"`
	Checks  []diagnostics.CheckResult `json:"checks"`
}
