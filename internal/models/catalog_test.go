// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutask/edutask/internal/models"
)

func TestMatchSubject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{
			name:     "exact match",
			input:    "Matemática",
			expected: "Matemática",
			found:    true,
		},
		{
			name:     "missing accents",
			input:    "matematica",
			expected: "Matemática",
			found:    true,
		},
		{
			name:     "case insensitive",
			input:    "história",
			expected: "História",
			found:    true,
		},
		{
			name:  "empty input",
			input: "",
			found: false,
		},
		{
			name:  "nothing close",
			input: "xyzzy",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, ok := models.MatchSubject(tt.input)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, subject)
			}
		})
	}
}

func TestValidLevelAndGrade(t *testing.T) {
	assert.True(t, models.ValidLevel(models.LevelFundamental))
	assert.False(t, models.ValidLevel("Pós-graduação"))

	assert.True(t, models.ValidGrade(models.LevelFundamental, "4º Ano"))
	assert.True(t, models.ValidGrade(models.LevelInfantil, "Maternal I"))
	assert.False(t, models.ValidGrade(models.LevelInfantil, "4º Ano"))
	assert.False(t, models.ValidGrade("Pós-graduação", "4º Ano"))
}

func TestGradesByLevelCoversAllLevels(t *testing.T) {
	for _, level := range models.EducationLevels {
		grades, ok := models.GradesByLevel[level]
		require.True(t, ok, level)
		assert.NotEmpty(t, grades, level)
	}
}
