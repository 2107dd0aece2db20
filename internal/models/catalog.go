// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package models

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Education levels as used by Brazilian schools (BNCC).
const (
	LevelInfantil    = "Educação Infantil"
	LevelFundamental = "Ensino Fundamental"
	LevelMedio       = "Ensino Médio"
)

// EducationLevels lists the supported levels in presentation order.
var EducationLevels = []string{LevelInfantil, LevelFundamental, LevelMedio}

// GradesByLevel maps each education level to its school years.
var GradesByLevel = map[string][]string{
	LevelInfantil: {
		"Berçário",
		"Maternal I",
		"Maternal II",
		"Pré-escola I",
		"Pré-escola II",
	},
	LevelFundamental: {
		"1º Ano",
		"2º Ano",
		"3º Ano",
		"4º Ano",
		"5º Ano",
		"6º Ano",
		"7º Ano",
		"8º Ano",
		"9º Ano",
	},
	LevelMedio: {
		"1º Ano (Ensino Médio)",
		"2º Ano (Ensino Médio)",
		"3º Ano (Ensino Médio)",
	},
}

// Subjects lists the supported school subjects.
var Subjects = []string{
	"Língua Portuguesa",
	"Matemática",
	"Ciências/Natureza",
	"História",
	"Geografia",
	"Artes",
	"Inglês",
	"Biologia",
	"Física",
	"Química",
	"Sociologia",
	"Filosofia",
	"Educação Física",
}

// ValidLevel reports whether level is one of the supported education levels.
func ValidLevel(level string) bool {
	_, ok := GradesByLevel[level]
	return ok
}

// ValidGrade reports whether grade belongs to the given education level.
func ValidGrade(level, grade string) bool {
	for _, g := range GradesByLevel[level] {
		if g == grade {
			return true
		}
	}
	return false
}

// MatchSubject resolves input to a canonical subject name. Exact matches win;
// otherwise the closest fuzzy match is returned so API callers don't have to
// reproduce accents exactly ("matematica" resolves to "Matemática").
// Returns false when nothing matches.
func MatchSubject(input string) (string, bool) {
	if input == "" {
		return "", false
	}

	for _, s := range Subjects {
		if s == input {
			return s, true
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(input, Subjects)
	if len(ranks) == 0 {
		return "", false
	}

	sort.Sort(ranks)
	return ranks[0].Target, true
}
