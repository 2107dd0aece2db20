// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/edutask/edutask/internal/models"
	"github.com/edutask/edutask/internal/payment"
	"github.com/edutask/edutask/internal/services"
)

// maxReceiptSize bounds uploaded receipt files (images or PDFs).
const maxReceiptSize = 10 << 20 // 10MB

// PremiumHandler handles entitlement status and the premium upgrade flow
type PremiumHandler struct {
	generationService *services.GenerationService
	receipts          *payment.ReceiptStore
}

// NewPremiumHandler creates a new premium handler
func NewPremiumHandler(generationService *services.GenerationService, receipts *payment.ReceiptStore) *PremiumHandler {
	return &PremiumHandler{
		generationService: generationService,
		receipts:          receipts,
	}
}

// EntitlementResponse is the caller-facing view of the entitlement record.
type EntitlementResponse struct {
	IsPremium          bool       `json:"isPremium"`
	PremiumUntil       *time.Time `json:"premiumUntil,omitempty"`
	LastFreeGeneration *string    `json:"lastFreeGeneration,omitempty"`
}

func entitlementResponse(record models.EntitlementRecord) EntitlementResponse {
	return EntitlementResponse{
		IsPremium:          record.IsPremium,
		PremiumUntil:       record.PremiumUntil,
		LastFreeGeneration: record.LastFreeGeneration,
	}
}

// RegisterRoutes registers entitlement and premium routes
func (h *PremiumHandler) RegisterRoutes(r chi.Router) {
	r.Get("/entitlement", h.GetEntitlement)

	r.Route("/premium", func(r chi.Router) {
		r.Get("/pix", h.GetPixKey)
		r.Get("/qr", h.GetQRCode)
		r.Post("/receipt", h.SubmitReceipt)
	})
}

// GetEntitlement returns the current premium/quota status.
func (h *PremiumHandler) GetEntitlement(w http.ResponseWriter, r *http.Request) {
	record, err := h.generationService.Entitlement(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrCorruptEntitlement) {
			log.Error().Err(err).Msg("Entitlement state is corrupt")
			RespondError(w, http.StatusInternalServerError, "Stored entitlement state is corrupt")
			return
		}
		log.Error().Err(err).Msg("Failed to load entitlement")
		RespondError(w, http.StatusInternalServerError, "Failed to load entitlement")
		return
	}

	RespondJSON(w, http.StatusOK, entitlementResponse(record))
}

// GetPixKey returns the PIX payload for copy-paste display.
func (h *PremiumHandler) GetPixKey(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"pixKey": payment.PixKey(),
	})
}

// GetQRCode serves the PIX payload as a QR code PNG.
func (h *PremiumHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	size := 256
	if s := r.URL.Query().Get("size"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 64 || parsed > 1024 {
			RespondError(w, http.StatusBadRequest, "Size must be between 64 and 1024")
			return
		}
		size = parsed
	}

	png, err := payment.QRCodePNG(size)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render PIX QR code")
		RespondError(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// SubmitReceipt accepts an uploaded payment receipt and activates the 30-day
// premium grant. The receipt is stored for manual review; no automated
// verification happens here.
func (h *PremiumHandler) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid upload, receipt must be at most 10MB")
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Receipt file is required")
		return
	}
	defer file.Close()

	if _, err := h.receipts.Save(header.Filename, file); err != nil {
		log.Error().Err(err).Msg("Failed to store receipt")
		RespondError(w, http.StatusInternalServerError, "Failed to store receipt")
		return
	}

	record, err := h.generationService.ActivatePremium(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to activate premium")
		RespondError(w, http.StatusInternalServerError, "Failed to activate premium access")
		return
	}

	log.Info().
		Str("receipt", header.Filename).
		Time("premiumUntil", *record.PremiumUntil).
		Msg("Receipt received, premium access granted")

	RespondJSON(w, http.StatusOK, entitlementResponse(record))
}
