// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

// Package render turns generated worksheets into print-ready HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/edutask/edutask/internal/models"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer renders worksheets using the embedded print template. Rendered
// pages for persisted worksheets are cached; worksheets without an ID are
// rendered every time.
type Renderer struct {
	tmpl  *template.Template
	cache *ristretto.Cache
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"rows": func(n int) []struct{} {
			return make([]struct{}, n)
		},
		"fillBlanks": fillBlanks,
	}

	tmpl, err := template.New("worksheet.html.tmpl").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse worksheet template")
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     10 << 20, // 10MB of rendered pages
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create render cache")
	}

	return &Renderer{
		tmpl:  tmpl,
		cache: cache,
	}, nil
}

// Render produces the printable HTML page for a worksheet.
func (r *Renderer) Render(ws *models.Worksheet) ([]byte, error) {
	cacheKey := fmt.Sprintf("worksheet:%d", ws.ID)
	if ws.ID != 0 {
		if cached, ok := r.cache.Get(cacheKey); ok {
			if page, ok := cached.([]byte); ok {
				log.Trace().Int64("worksheetID", ws.ID).Msg("Rendered page served from cache")
				return page, nil
			}
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, ws); err != nil {
		return nil, errors.Wrapf(err, "failed to render worksheet %d", ws.ID)
	}

	page := buf.Bytes()
	if ws.ID != 0 {
		r.cache.Set(cacheKey, page, int64(len(page)))
	}

	return page, nil
}

// Invalidate drops a worksheet's cached page, for use after deletion.
func (r *Renderer) Invalidate(id int64) {
	r.cache.Del(fmt.Sprintf("worksheet:%d", id))
}

// fillBlanks escapes the exercise text and widens each '___' marker into an
// underlined blank for handwriting.
func fillBlanks(text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	return template.HTML(strings.ReplaceAll(escaped, "___", `<span class="blank"></span>`))
}
