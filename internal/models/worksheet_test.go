// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutask/edutask/internal/models"
)

func sampleWorksheet() *models.Worksheet {
	return &models.Worksheet{
		Title:       "Aventura das Frações",
		Instruction: "Resolva os exercícios abaixo com atenção.",
		Subject:     "Matemática",
		Level:       models.LevelFundamental,
		Grade:       "4º Ano",
		Topic:       "Frações",
		Exercises: []models.Exercise{
			{
				Type:     models.ExerciseMultipleChoice,
				Question: "Qual fração representa a metade?",
				Data: &models.ExerciseData{
					Options: []string{"1/2", "1/3", "2/3", "3/4"},
				},
			},
			{
				Type:     models.ExerciseOpenQuestion,
				Question: "Explique com suas palavras o que é uma fração.",
			},
		},
	}
}

func TestWorksheetValidate(t *testing.T) {
	tests := []struct {
		name      string
		worksheet models.Worksheet
		wantError bool
	}{
		{
			name:      "valid worksheet",
			worksheet: models.Worksheet{Title: "t", Instruction: "i"},
			wantError: false,
		},
		{
			name:      "empty exercise list is valid",
			worksheet: models.Worksheet{Title: "t", Instruction: "i", Exercises: []models.Exercise{}},
			wantError: false,
		},
		{
			name:      "missing title",
			worksheet: models.Worksheet{Instruction: "i"},
			wantError: true,
		},
		{
			name:      "missing instruction",
			worksheet: models.Worksheet{Title: "t"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.worksheet.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWorksheetStoreCreateGet(t *testing.T) {
	ctx := t.Context()
	db := newTestDB(t)
	store := models.NewWorksheetStore(db.Conn())

	ws := sampleWorksheet()
	require.NoError(t, store.Create(ctx, ws))
	assert.NotZero(t, ws.ID)
	assert.False(t, ws.CreatedAt.IsZero())

	loaded, err := store.Get(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws.Title, loaded.Title)
	assert.Equal(t, ws.Topic, loaded.Topic)
	require.Len(t, loaded.Exercises, 2)
	assert.Equal(t, models.ExerciseMultipleChoice, loaded.Exercises[0].Type)
	require.NotNil(t, loaded.Exercises[0].Data)
	assert.Equal(t, []string{"1/2", "1/3", "2/3", "3/4"}, loaded.Exercises[0].Data.Options)
	assert.Nil(t, loaded.Exercises[1].Data)
}

func TestWorksheetStoreGetNotFound(t *testing.T) {
	ctx := t.Context()
	db := newTestDB(t)
	store := models.NewWorksheetStore(db.Conn())

	_, err := store.Get(ctx, 42)
	assert.ErrorIs(t, err, models.ErrWorksheetNotFound)
}

func TestWorksheetStoreList(t *testing.T) {
	ctx := t.Context()
	db := newTestDB(t)
	store := models.NewWorksheetStore(db.Conn())

	first := sampleWorksheet()
	require.NoError(t, store.Create(ctx, first))

	second := sampleWorksheet()
	second.Title = "Cores e Formas"
	second.Topic = "Cores"
	require.NoError(t, store.Create(ctx, second))

	worksheets, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, worksheets, 2)
	// Newest first
	assert.Equal(t, second.ID, worksheets[0].ID)
	assert.Equal(t, first.ID, worksheets[1].ID)
}

func TestWorksheetStoreDelete(t *testing.T) {
	ctx := t.Context()
	db := newTestDB(t)
	store := models.NewWorksheetStore(db.Conn())

	ws := sampleWorksheet()
	require.NoError(t, store.Create(ctx, ws))

	require.NoError(t, store.Delete(ctx, ws.ID))

	_, err := store.Get(ctx, ws.ID)
	assert.ErrorIs(t, err, models.ErrWorksheetNotFound)

	assert.ErrorIs(t, store.Delete(ctx, ws.ID), models.ErrWorksheetNotFound)
}
