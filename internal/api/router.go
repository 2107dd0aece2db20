// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edutask/edutask/internal/api/handlers"
	apimiddleware "github.com/edutask/edutask/internal/api/middleware"
	"github.com/edutask/edutask/internal/config"
	"github.com/edutask/edutask/internal/metrics"
	"github.com/edutask/edutask/internal/payment"
	"github.com/edutask/edutask/internal/render"
	"github.com/edutask/edutask/internal/services"
)

// Dependencies holds all the dependencies needed for the API
type Dependencies struct {
	Config            *config.AppConfig
	DB                *sql.DB
	GenerationService *services.GenerationService
	Renderer          *render.Renderer
	ReceiptStore      *payment.ReceiptStore
	MetricsManager    *metrics.Manager
}

// NewRouter creates and configures the main application router
func NewRouter(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(apimiddleware.HTTPLogger)

	// Create handlers
	worksheetsHandler := handlers.NewWorksheetsHandler(deps.GenerationService, deps.Renderer)
	premiumHandler := handlers.NewPremiumHandler(deps.GenerationService, deps.ReceiptStore)
	catalogHandler := handlers.NewCatalogHandler()

	// API routes
	r.Route("/api", func(r chi.Router) {
		worksheetsHandler.RegisterRoutes(r)
		premiumHandler.RegisterRoutes(r)
		catalogHandler.RegisterRoutes(r)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics
	if deps.MetricsManager != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			deps.MetricsManager.GetRegistry(),
			promhttp.HandlerOpts{},
		))
	}

	return r
}
