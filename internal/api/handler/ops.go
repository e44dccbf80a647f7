// Package handler provides HTTP handlers for the rail delay API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/raildelay/raildelay/internal/api/models"
	"github.com/raildelay/raildelay/internal/api/response"
	"github.com/raildelay/raildelay/internal/provider/resilience"
)

// ProviderHealthSource reports the health of outbound providers.
// *resilience.Registry satisfies it.
type ProviderHealthSource interface {
	GetAllHealth() []*resilience.ProviderHealth
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version       string
	buildTime     string
	refDataSource string
	providers     ProviderHealthSource
}

// NewOpsHandler creates a new OpsHandler. providers may be nil when the
// classifier runs in-process.
func NewOpsHandler(version, buildTime, refDataSource string, providers ProviderHealthSource) *OpsHandler {
	return &OpsHandler{
		version:       version,
		buildTime:     buildTime,
		refDataSource: refDataSource,
		providers:     providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// is not ready while any provider circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	var open []string
	for _, p := range h.providerHealth() {
		if p.IsUnhealthy() {
			open = append(open, p.Name)
		}
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if len(open) > 0 {
		health.Status = models.HealthStatusFail
		health.Details = map[string]any{"openCircuits": open}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	providers := h.providerHealth()

	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{
			{Name: "refdata-" + h.refDataSource, Status: models.HealthStatusOK},
		},
		Providers: make([]models.ProviderStatus, 0, len(providers)),
	}

	for _, p := range providers {
		ps := providerStatus(p)
		status.Status = worst(status.Status, ps.Status)
		status.Providers = append(status.Providers, ps)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) providerHealth() []*resilience.ProviderHealth {
	if h.providers == nil {
		return nil
	}
	return h.providers.GetAllHealth()
}

func providerStatus(p *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:      p.Name,
		Status:        circuitHealth(p.CircuitState),
		CircuitState:  p.CircuitState.String(),
		Requests:      p.Counts.Requests,
		Failures:      p.Counts.TotalFailures,
		LastSuccessAt: models.TimestampPtr(p.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(p.LastFailureAt),
	}
	if p.LastError != "" {
		msg := p.LastError
		ps.Message = &msg
	}
	return ps
}

func circuitHealth(state gobreaker.State) models.HealthStatus {
	switch state {
	case gobreaker.StateOpen:
		return models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

var healthRank = map[models.HealthStatus]int{
	models.HealthStatusOK:       0,
	models.HealthStatusDegraded: 1,
	models.HealthStatusFail:     2,
}

func worst(a, b models.HealthStatus) models.HealthStatus {
	if healthRank[b] > healthRank[a] {
		return b
	}
	return a
}
