// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package services

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutask/edutask/internal/database"
	"github.com/edutask/edutask/internal/models"
)

type stubGenerator struct {
	worksheet *models.Worksheet
	err       error
	calls     int
}

func (g *stubGenerator) GenerateWorksheet(ctx context.Context, req models.GenerationRequest) (*models.Worksheet, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}

	ws := *g.worksheet
	ws.Subject = req.Subject
	ws.Level = req.Level
	ws.Grade = req.Grade
	ws.Topic = req.Topic
	return &ws, nil
}

func validRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Subject: "Matemática",
		Level:   models.LevelFundamental,
		Grade:   "4º Ano",
		Topic:   "fractions",
	}
}

func newTestService(t *testing.T, gen *stubGenerator) (*GenerationService, *models.EntitlementStore) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	entitlements := models.NewEntitlementStore(db.Conn())
	worksheets := models.NewWorksheetStore(db.Conn())

	if gen.worksheet == nil && gen.err == nil {
		gen.worksheet = &models.Worksheet{
			Title:       "Aventura das Frações",
			Instruction: "Resolva com atenção.",
		}
	}

	return NewGenerationService(entitlements, worksheets, gen, nil), entitlements
}

func atTime(svc *GenerationService, t time.Time) {
	svc.now = func() time.Time { return t }
}

func recordJSON(t *testing.T, record models.EntitlementRecord) string {
	t.Helper()
	raw, err := json.Marshal(record)
	require.NoError(t, err)
	return string(raw)
}

func TestRequestGenerationFreshDevice(t *testing.T) {
	ctx := t.Context()
	gen := &stubGenerator{}
	svc, entitlements := newTestService(t, gen)
	atTime(svc, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	// Empty topic fails validation without calling the generator or
	// touching stored state
	req := validRequest()
	req.Topic = "   "
	_, err := svc.RequestGeneration(ctx, req)
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.Zero(t, gen.calls)

	record, err := entitlements.Load(ctx, svc.now())
	require.NoError(t, err)
	assert.Nil(t, record.LastFreeGeneration)

	// A real topic succeeds and consumes the day's free use
	ws, err := svc.RequestGeneration(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.NotZero(t, ws.ID)
	assert.Equal(t, "fractions", ws.Topic)

	record, err = entitlements.Load(ctx, svc.now())
	require.NoError(t, err)
	require.NotNil(t, record.LastFreeGeneration)
	assert.Equal(t, "2024-01-01", *record.LastFreeGeneration)
}

func TestRequestGenerationBlockedSameDay(t *testing.T) {
	ctx := t.Context()
	gen := &stubGenerator{}
	svc, _ := newTestService(t, gen)

	atTime(svc, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	_, err := svc.RequestGeneration(ctx, validRequest())
	require.NoError(t, err)

	// Second attempt the same evening is blocked before any generator call
	atTime(svc, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC))
	_, err = svc.RequestGeneration(ctx, validRequest())
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 1, gen.calls)

	// Just after midnight the calendar date changed, so it works again
	atTime(svc, time.Date(2024, 1, 2, 0, 1, 0, 0, time.UTC))
	_, err = svc.RequestGeneration(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestRequestGenerationQuotaCheckedBeforeValidation(t *testing.T) {
	ctx := t.Context()
	gen := &stubGenerator{}
	svc, _ := newTestService(t, gen)
	atTime(svc, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	_, err := svc.RequestGeneration(ctx, validRequest())
	require.NoError(t, err)

	// With the quota used up, even an invalid request reports Blocked
	req := validRequest()
	req.Topic = ""
	_, err = svc.RequestGeneration(ctx, req)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestRequestGenerationFailureDoesNotConsumeQuota(t *testing.T) {
	ctx := t.Context()
	gen := &stubGenerator{err: errors.New("upstream timeout")}
	svc, entitlements := newTestService(t, gen)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	atTime(svc, now)

	before, err := entitlements.Load(ctx, now)
	require.NoError(t, err)

	_, err = svc.RequestGeneration(ctx, validRequest())
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	// The caller-facing message is generic; the cause stays wrapped
	assert.NotContains(t, genErr.Error(), "upstream timeout")
	assert.ErrorContains(t, errors.Unwrap(genErr), "upstream timeout")

	after, err := entitlements.Load(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, recordJSON(t, before), recordJSON(t, after))

	// The failed attempt did not consume the free use
	gen.err = nil
	gen.worksheet = &models.Worksheet{Title: "t", Instruction: "i"}
	_, err = svc.RequestGeneration(ctx, validRequest())
	assert.NoError(t, err)
}

func TestRequestGenerationPremiumUnlimited(t *testing.T) {
	ctx := t.Context()
	gen := &stubGenerator{}
	svc, entitlements := newTestService(t, gen)
	atTime(svc, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	_, err := svc.ActivatePremium(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.RequestGeneration(ctx, validRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, gen.calls)

	// Premium generations never touch the free-quota field
	record, err := entitlements.Load(ctx, svc.now())
	require.NoError(t, err)
	assert.Nil(t, record.LastFreeGeneration)
}

func TestActivatePremiumGrantAndExpiry(t *testing.T) {
	ctx := t.Context()
	gen := &stubGenerator{}
	svc, entitlements := newTestService(t, gen)
	granted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	atTime(svc, granted)

	record, err := svc.ActivatePremium(ctx)
	require.NoError(t, err)
	assert.True(t, record.IsPremium)
	require.NotNil(t, record.PremiumUntil)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC).UnixMilli(), record.PremiumUntil.UnixMilli())

	// One second past the grant window the record reads as free tier
	expired, err := entitlements.Load(ctx, time.Date(2024, 1, 31, 0, 0, 1, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, expired.IsPremium)
	assert.Nil(t, expired.PremiumUntil)
}

func TestRequestGenerationStoresWorksheet(t *testing.T) {
	ctx := t.Context()
	gen := &stubGenerator{}
	svc, _ := newTestService(t, gen)
	atTime(svc, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))

	ws, err := svc.RequestGeneration(ctx, validRequest())
	require.NoError(t, err)

	stored, err := svc.Worksheet(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws.Title, stored.Title)

	list, err := svc.ListWorksheets(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
