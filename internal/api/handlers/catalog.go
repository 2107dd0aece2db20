// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edutask/edutask/internal/models"
)

// CatalogHandler serves the static education catalog used by form UIs
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// CatalogResponse lists the selectable levels, grades and subjects.
type CatalogResponse struct {
	Levels        []string            `json:"levels"`
	GradesByLevel map[string][]string `json:"gradesByLevel"`
	Subjects      []string            `json:"subjects"`
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.GetCatalog)
}

// GetCatalog returns the education levels, grades and subjects.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, CatalogResponse{
		Levels:        models.EducationLevels,
		GradesByLevel: models.GradesByLevel,
		Subjects:      models.Subjects,
	})
}
