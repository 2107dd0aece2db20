// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

// ExerciseType discriminates the worksheet exercise variants.
type ExerciseType string

const (
	ExerciseFillInBlanks   ExerciseType = "fill_in_blanks"
	ExerciseColumnSort     ExerciseType = "column_sort"
	ExerciseOpenQuestion   ExerciseType = "open_question"
	ExerciseMultipleChoice ExerciseType = "multiple_choice"
	ExerciseDrawingSpace   ExerciseType = "drawing_space"
)

// ExerciseTypes lists every supported variant, in the order the generator
// schema declares them.
var ExerciseTypes = []ExerciseType{
	ExerciseFillInBlanks,
	ExerciseColumnSort,
	ExerciseOpenQuestion,
	ExerciseMultipleChoice,
	ExerciseDrawingSpace,
}

// ExerciseData carries the variant-specific payload. Which fields are set
// depends on the exercise type: column_sort uses Items and Columns,
// multiple_choice uses Options, fill_in_blanks uses Text with '___' marking
// each blank. Missing or malformed data is not an error here; the renderer
// degrades gracefully.
type ExerciseData struct {
	Items   []string `json:"items,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Options []string `json:"options,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Exercise is a single numbered entry on a worksheet.
type Exercise struct {
	Type     ExerciseType  `json:"type"`
	Question string        `json:"question"`
	Data     *ExerciseData `json:"data,omitempty"`
}

// Worksheet is the generated document returned by the content generator and
// consumed by the renderer.
type Worksheet struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Instruction string     `json:"instruction"`
	Subject     string     `json:"subject"`
	Level       string     `json:"level"`
	Grade       string     `json:"grade"`
	Topic       string     `json:"topic"`
	Exercises   []Exercise `json:"exercises"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
}

// Validate checks the minimal contract a generated worksheet must satisfy.
// An empty exercise list is valid and renders an empty worksheet body.
func (w *Worksheet) Validate() error {
	if w.Title == "" {
		return errors.New("worksheet has no title")
	}
	if w.Instruction == "" {
		return errors.New("worksheet has no instruction")
	}
	return nil
}

// WorksheetStore persists generated worksheets for history and reprinting.
type WorksheetStore struct {
	db *sql.DB
}

func NewWorksheetStore(db *sql.DB) *WorksheetStore {
	return &WorksheetStore{db: db}
}

// Create stores a worksheet and fills in its ID and creation time.
func (s *WorksheetStore) Create(ctx context.Context, ws *Worksheet) error {
	exercises, err := json.Marshal(ws.Exercises)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode exercises")
	}

	query := `
		INSERT INTO worksheets (title, instruction, subject, level, grade, topic, exercises)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		ws.Title,
		ws.Instruction,
		ws.Subject,
		ws.Level,
		ws.Grade,
		ws.Topic,
		string(exercises),
	).Scan(&ws.ID, &ws.CreatedAt)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to store worksheet")
	}

	return nil
}

// Get retrieves a single worksheet by ID.
func (s *WorksheetStore) Get(ctx context.Context, id int64) (*Worksheet, error) {
	query := `
		SELECT id, title, instruction, subject, level, grade, topic, exercises, created_at
		FROM worksheets
		WHERE id = ?
	`

	ws := &Worksheet{}
	var exercises string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ws.ID,
		&ws.Title,
		&ws.Instruction,
		&ws.Subject,
		&ws.Level,
		&ws.Grade,
		&ws.Topic,
		&exercises,
		&ws.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrWorksheetNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to get worksheet")
	}

	if err := json.Unmarshal([]byte(exercises), &ws.Exercises); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode exercises for worksheet %d", id)
	}

	return ws, nil
}

// List returns all worksheets, newest first.
func (s *WorksheetStore) List(ctx context.Context) ([]*Worksheet, error) {
	query := `
		SELECT id, title, instruction, subject, level, grade, topic, exercises, created_at
		FROM worksheets
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list worksheets")
	}
	defer rows.Close()

	var worksheets []*Worksheet
	for rows.Next() {
		ws := &Worksheet{}
		var exercises string
		err := rows.Scan(
			&ws.ID,
			&ws.Title,
			&ws.Instruction,
			&ws.Subject,
			&ws.Level,
			&ws.Grade,
			&ws.Topic,
			&exercises,
			&ws.CreatedAt,
		)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to scan worksheet")
		}

		if err := json.Unmarshal([]byte(exercises), &ws.Exercises); err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to decode exercises for worksheet %d", ws.ID)
		}

		worksheets = append(worksheets, ws)
	}

	return worksheets, rows.Err()
}

// Delete removes a worksheet from the store.
func (s *WorksheetStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM worksheets WHERE id = ?`, id)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to delete worksheet")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorksheetNotFound
	}

	return nil
}
