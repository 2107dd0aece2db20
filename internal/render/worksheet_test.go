// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutask/edutask/internal/models"
)

func testWorksheet() *models.Worksheet {
	return &models.Worksheet{
		Title:       "Aventura das Frações",
		Instruction: "Resolva os exercícios abaixo.",
		Subject:     "Matemática",
		Level:       models.LevelFundamental,
		Grade:       "4º Ano",
		Topic:       "Frações",
	}
}

func TestRenderBasicPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	ws := testWorksheet()
	ws.Exercises = []models.Exercise{
		{
			Type:     models.ExerciseMultipleChoice,
			Question: "Qual fração representa a metade?",
			Data:     &models.ExerciseData{Options: []string{"1/2", "1/3"}},
		},
		{
			Type:     models.ExerciseDrawingSpace,
			Question: "Desenhe uma pizza dividida em quatro partes.",
		},
	}

	page, err := r.Render(ws)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "Aventura das Frações")
	assert.Contains(t, html, "Resolva os exercícios abaixo.")
	assert.Contains(t, html, "1/2")
	assert.Contains(t, html, "Espaço para desenho")
	assert.Contains(t, html, "Escola:")
	// Questions are numbered from 1
	assert.Contains(t, html, "1)")
	assert.Contains(t, html, "2)")
}

func TestRenderFillInBlanks(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	ws := testWorksheet()
	ws.Exercises = []models.Exercise{
		{
			Type:     models.ExerciseFillInBlanks,
			Question: "Complete as frases.",
			Data:     &models.ExerciseData{Text: "Meio é o mesmo que ___ e um quarto é ___."},
		},
	}

	page, err := r.Render(ws)
	require.NoError(t, err)

	html := string(page)
	assert.Equal(t, 2, strings.Count(html, `<span class="blank"></span>`))
	assert.NotContains(t, html, "___")
}

func TestRenderFillInBlanksMissingData(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	ws := testWorksheet()
	ws.Exercises = []models.Exercise{
		{Type: models.ExerciseFillInBlanks, Question: "Complete as frases."},
	}

	page, err := r.Render(ws)
	require.NoError(t, err)
	assert.Contains(t, string(page), "não gerado corretamente")
}

func TestRenderColumnSort(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	ws := testWorksheet()
	ws.Exercises = []models.Exercise{
		{
			Type:     models.ExerciseColumnSort,
			Question: "Separe os animais.",
			Data: &models.ExerciseData{
				Items:   []string{"gato", "sardinha"},
				Columns: []string{"Terrestres", "Aquáticos"},
			},
		},
	}

	page, err := r.Render(ws)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "Banco de Palavras")
	assert.Contains(t, html, "gato")
	assert.Contains(t, html, "Terrestres")
}

func TestRenderEmptyExerciseList(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	// An empty worksheet body is valid and renders the page frame
	page, err := r.Render(testWorksheet())
	require.NoError(t, err)
	assert.Contains(t, string(page), "Aventura das Frações")
}

func TestRenderEscapesGeneratedContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	ws := testWorksheet()
	ws.Title = `<script>alert("x")</script>`

	page, err := r.Render(ws)
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>")
}
