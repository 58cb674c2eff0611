// Copyright (c) 2026 MEhub. All rights reserved.

// Package api contains the health check handlers for liveness and readiness probes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/respond"
)

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func() error

	// CheckCache pings the Redis client.
	CheckCache func() error
}

// probe is one named readiness dependency.
type probe struct {
	name  string
	check func() error
}

type healthHandler struct {
	probes []probe
	logger *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{logger: logger}
	if deps.CheckDatabase != nil {
		handler.probes = append(handler.probes, probe{name: "postgres", check: deps.CheckDatabase})
	}
	if deps.CheckCache != nil {
		handler.probes = append(handler.probes, probe{name: "redis", check: deps.CheckCache})
	}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready (Readiness probe). Every probe runs even
// after one fails, so the payload always names each unhealthy dependency.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]string, len(handler.probes))
	status := http.StatusOK

	for _, p := range handler.probes {
		if err := p.check(); err != nil {
			checks[p.name] = err.Error()
			status = http.StatusServiceUnavailable
			handler.logger.Error("readiness_check_failed",
				slog.String("dependency", p.name),
				slog.Any("error", err))
			continue
		}
		checks[p.name] = "ok"
	}

	payload := map[string]any{"status": "ready", "checks": checks}
	if status != http.StatusOK {
		payload["status"] = "degraded"
	}

	respond.JSON(writer, status, payload)
}
