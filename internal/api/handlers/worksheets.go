// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/edutask/edutask/internal/models"
	"github.com/edutask/edutask/internal/render"
	"github.com/edutask/edutask/internal/services"
)

// WorksheetsHandler handles worksheet generation and history requests
type WorksheetsHandler struct {
	generationService *services.GenerationService
	renderer          *render.Renderer
}

// NewWorksheetsHandler creates a new worksheets handler
func NewWorksheetsHandler(generationService *services.GenerationService, renderer *render.Renderer) *WorksheetsHandler {
	return &WorksheetsHandler{
		generationService: generationService,
		renderer:          renderer,
	}
}

// RegisterRoutes registers worksheet routes
func (h *WorksheetsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/worksheets", func(r chi.Router) {
		r.Post("/", h.Generate)
		r.Get("/", h.List)

		r.Route("/{worksheetID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Get("/print", h.Print)
			r.Delete("/", h.Delete)
		})
	})
}

// Generate runs one worksheet generation request.
func (h *WorksheetsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Failed to decode generation request")
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if subject, ok := models.MatchSubject(req.Subject); ok {
		req.Subject = subject
	} else {
		RespondError(w, http.StatusBadRequest, "Unknown subject")
		return
	}

	if !models.ValidLevel(req.Level) {
		RespondError(w, http.StatusBadRequest, "Unknown education level")
		return
	}
	if !models.ValidGrade(req.Level, req.Grade) {
		RespondError(w, http.StatusBadRequest, "Unknown grade for education level")
		return
	}

	worksheet, err := h.generationService.RequestGeneration(r.Context(), req)
	if err != nil {
		h.respondGenerationError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, worksheet)
}

func (h *WorksheetsHandler) respondGenerationError(w http.ResponseWriter, err error) {
	var genErr *services.GenerationError

	switch {
	case errors.Is(err, services.ErrQuotaExceeded):
		// Expected outcome, the caller shows the upgrade path
		RespondError(w, http.StatusPaymentRequired, "Daily free generation limit reached")
	case errors.Is(err, services.ErrEmptyTopic):
		RespondError(w, http.StatusBadRequest, "Topic must not be empty")
	case errors.As(err, &genErr):
		RespondError(w, http.StatusBadGateway, genErr.Error())
	case errors.Is(err, models.ErrCorruptEntitlement):
		log.Error().Err(err).Msg("Entitlement state is corrupt")
		RespondError(w, http.StatusInternalServerError, "Stored entitlement state is corrupt")
	default:
		log.Error().Err(err).Msg("Generation request failed")
		RespondError(w, http.StatusInternalServerError, "Failed to process generation request")
	}
}

// List returns stored worksheets, optionally fuzzy-filtered by title/topic.
func (h *WorksheetsHandler) List(w http.ResponseWriter, r *http.Request) {
	worksheets, err := h.generationService.ListWorksheets(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list worksheets")
		RespondError(w, http.StatusInternalServerError, "Failed to retrieve worksheets")
		return
	}

	if search := r.URL.Query().Get("search"); search != "" {
		worksheets = filterWorksheets(worksheets, search)
	}

	if worksheets == nil {
		worksheets = []*models.Worksheet{}
	}

	RespondJSON(w, http.StatusOK, worksheets)
}

// filterWorksheets ranks worksheets whose title or topic fuzzy-matches the
// search term, best match first.
func filterWorksheets(worksheets []*models.Worksheet, search string) []*models.Worksheet {
	type ranked struct {
		ws   *models.Worksheet
		rank int
	}

	var matches []ranked
	for _, ws := range worksheets {
		best := -1
		for _, field := range []string{ws.Title, ws.Topic} {
			if r := fuzzy.RankMatchNormalizedFold(search, field); r >= 0 && (best < 0 || r < best) {
				best = r
			}
		}
		if best >= 0 {
			matches = append(matches, ranked{ws: ws, rank: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})

	result := make([]*models.Worksheet, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.ws)
	}
	return result
}

func worksheetIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "worksheetID"), 10, 64)
}

// Get returns a single stored worksheet.
func (h *WorksheetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := worksheetIDFromPath(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid worksheet ID")
		return
	}

	worksheet, err := h.generationService.Worksheet(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrWorksheetNotFound) {
			RespondError(w, http.StatusNotFound, "Worksheet not found")
			return
		}
		log.Error().Err(err).Int64("worksheetID", id).Msg("Failed to get worksheet")
		RespondError(w, http.StatusInternalServerError, "Failed to retrieve worksheet")
		return
	}

	RespondJSON(w, http.StatusOK, worksheet)
}

// Print serves the print-ready HTML page for a stored worksheet.
func (h *WorksheetsHandler) Print(w http.ResponseWriter, r *http.Request) {
	id, err := worksheetIDFromPath(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid worksheet ID")
		return
	}

	worksheet, err := h.generationService.Worksheet(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrWorksheetNotFound) {
			RespondError(w, http.StatusNotFound, "Worksheet not found")
			return
		}
		log.Error().Err(err).Int64("worksheetID", id).Msg("Failed to get worksheet for printing")
		RespondError(w, http.StatusInternalServerError, "Failed to retrieve worksheet")
		return
	}

	page, err := h.renderer.Render(worksheet)
	if err != nil {
		log.Error().Err(err).Int64("worksheetID", id).Msg("Failed to render worksheet")
		RespondError(w, http.StatusInternalServerError, "Failed to render worksheet")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// Delete removes a stored worksheet.
func (h *WorksheetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := worksheetIDFromPath(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid worksheet ID")
		return
	}

	if err := h.generationService.DeleteWorksheet(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrWorksheetNotFound) {
			RespondError(w, http.StatusNotFound, "Worksheet not found")
			return
		}
		log.Error().Err(err).Int64("worksheetID", id).Msg("Failed to delete worksheet")
		RespondError(w, http.StatusInternalServerError, "Failed to delete worksheet")
		return
	}

	h.renderer.Invalidate(id)

	RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Worksheet deleted successfully",
	})
}
