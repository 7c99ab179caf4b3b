// Package handler provides HTTP handlers for the VeloAir API.
package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/veloair/veloair/internal/api/models"
	"github.com/veloair/veloair/internal/api/response"
	"github.com/veloair/veloair/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. The registry may be nil, in which
// case readiness reports OK with no provider detail.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// The service is DEGRADED when any upstream provider circuit is open;
// routing still works through fallbacks, so this never reports FAIL.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			if !p.IsHealthy() {
				status = models.HealthStatusDegraded
				break
			}
		}
	}
	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - per-provider circuit status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	var providers []*resilience.ProviderHealth
	if h.registry != nil {
		providers = h.registry.GetAllHealth()
	}
	sort.Slice(providers, func(i, j int) bool {
		return providers[i].Name < providers[j].Name
	})

	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      now,
		Providers: make([]models.ProviderStatus, 0, len(providers)),
	}
	for _, p := range providers {
		ps := models.ProviderStatus{
			Provider: p.Name,
			Status:   models.HealthStatusOK,
		}
		if !p.IsHealthy() {
			ps.Status = models.HealthStatusDegraded
			status.Status = models.HealthStatusDegraded
		}
		if p.LastSuccessAt != nil {
			t := models.Timestamp(*p.LastSuccessAt)
			ps.LastSuccessAt = &t
		}
		if p.LastFailureAt != nil {
			t := models.Timestamp(*p.LastFailureAt)
			ps.LastFailureAt = &t
		}
		if p.LastError != "" {
			msg := p.LastError
			ps.Message = &msg
		}
		status.Providers = append(status.Providers, ps)
	}

	response.JSON(w, r, http.StatusOK, status)
}
