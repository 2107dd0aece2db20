// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edutask/edutask/internal/metrics"
	"github.com/edutask/edutask/internal/models"
	"github.com/edutask/edutask/internal/quota"
)

// ErrQuotaExceeded is returned when the free-tier daily limit is used up and
// no premium grant is active. Callers should present the upgrade path.
var ErrQuotaExceeded = errors.New("daily generation limit reached")

// ErrEmptyTopic is returned when the request topic is empty after trimming.
var ErrEmptyTopic = errors.New("topic must not be empty")

// GenerationError wraps a content-generator failure. The underlying cause is
// logged, not shown to callers, so collaborator detail does not leak.
type GenerationError struct {
	cause error
}

func (e *GenerationError) Error() string {
	return "failed to generate the worksheet, please try again"
}

func (e *GenerationError) Unwrap() error {
	return e.cause
}

// Generator produces a worksheet for a generation request. Implemented by
// gemini.Client; tests substitute their own.
type Generator interface {
	GenerateWorksheet(ctx context.Context, req models.GenerationRequest) (*models.Worksheet, error)
}

// GenerationService coordinates the quota check, the external generation
// call and the entitlement bookkeeping.
type GenerationService struct {
	entitlements *models.EntitlementStore
	worksheets   *models.WorksheetStore
	generator    Generator
	metrics      *metrics.Manager

	// mu serializes the load/decide/save sequence. The HTTP host runs
	// handlers concurrently, and without this two overlapping requests
	// could both pass the quota check and consume a single free use twice.
	mu sync.Mutex

	now func() time.Time
}

// NewGenerationService creates a new generation service. metricsManager may
// be nil when metrics are disabled.
func NewGenerationService(entitlements *models.EntitlementStore, worksheets *models.WorksheetStore, generator Generator, metricsManager *metrics.Manager) *GenerationService {
	return &GenerationService{
		entitlements: entitlements,
		worksheets:   worksheets,
		generator:    generator,
		metrics:      metricsManager,
		now:          time.Now,
	}
}

// Entitlement returns the current entitlement record, normalizing any lapsed
// premium grant as a side effect of the read.
func (s *GenerationService) Entitlement(ctx context.Context) (models.EntitlementRecord, error) {
	return s.entitlements.Load(ctx, s.now())
}

// RequestGeneration runs one generation attempt end to end.
//
// Quota is consumed if and only if a worksheet was actually produced: a
// failed generator call leaves the entitlement record untouched.
func (s *GenerationService) RequestGeneration(ctx context.Context, req models.GenerationRequest) (*models.Worksheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	record, err := s.entitlements.Load(ctx, now)
	if err != nil {
		return nil, err
	}

	if !quota.CanGenerate(record, now) {
		log.Debug().
			Str("subject", req.Subject).
			Msg("Generation blocked by daily limit")
		s.metrics.RecordGeneration(metrics.OutcomeBlocked)
		return nil, ErrQuotaExceeded
	}

	if req.TopicEmpty() {
		s.metrics.RecordGeneration(metrics.OutcomeInvalid)
		return nil, ErrEmptyTopic
	}

	start := time.Now()
	worksheet, err := s.generator.GenerateWorksheet(ctx, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("subject", req.Subject).
			Str("topic", req.Topic).
			Msg("Worksheet generation failed")
		s.metrics.RecordGeneration(metrics.OutcomeFailed)
		return nil, &GenerationError{cause: err}
	}
	s.metrics.ObserveGenerationDuration(time.Since(start))

	record = quota.RecordFreeUse(record, now)
	if err := s.entitlements.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record generation: %w", err)
	}

	if err := s.worksheets.Create(ctx, worksheet); err != nil {
		// The quota was consumed and the document exists; history is
		// best-effort on top of that.
		log.Error().Err(err).Msg("Failed to store generated worksheet")
	}

	s.metrics.RecordGeneration(metrics.OutcomeSuccess)

	log.Info().
		Str("title", worksheet.Title).
		Str("subject", worksheet.Subject).
		Str("grade", worksheet.Grade).
		Bool("premium", record.IsPremium).
		Msg("Worksheet generated")

	return worksheet, nil
}

// ActivatePremium issues an unconditional 30-day premium grant and persists
// it. No payment verification happens at this layer; the receipt flow is a
// trust-based manual-review arrangement.
func (s *GenerationService) ActivatePremium(ctx context.Context) (models.EntitlementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	record, err := s.entitlements.Load(ctx, now)
	if err != nil {
		return models.EntitlementRecord{}, err
	}

	record = quota.GrantPremium(record, now, quota.DefaultPremiumDays)
	if err := s.entitlements.Save(ctx, record); err != nil {
		return models.EntitlementRecord{}, err
	}

	s.metrics.RecordPremiumGrant()

	log.Info().
		Time("premiumUntil", *record.PremiumUntil).
		Msg("Premium access activated")

	return record, nil
}

// Worksheet returns a stored worksheet by ID.
func (s *GenerationService) Worksheet(ctx context.Context, id int64) (*models.Worksheet, error) {
	return s.worksheets.Get(ctx, id)
}

// ListWorksheets returns stored worksheets, newest first.
func (s *GenerationService) ListWorksheets(ctx context.Context) ([]*models.Worksheet, error) {
	return s.worksheets.List(ctx)
}

// DeleteWorksheet removes a stored worksheet.
func (s *GenerationService) DeleteWorksheet(ctx context.Context, id int64) error {
	return s.worksheets.Delete(ctx, id)
}
