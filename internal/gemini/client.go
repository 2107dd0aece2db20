// Copyright (c) 2025, the EduTask contributors.
// SPDX-License-Identifier: MIT

// Package gemini wraps the Google Gemini SDK for worksheet content
// generation.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/edutask/edutask/internal/models"
)

const DefaultModel = "gemini-2.5-flash"

// Client wraps the Gemini SDK for worksheet generation
type Client struct {
	genai  *genai.Client
	apiKey string
	model  string
}

// NewClient creates a new Gemini API client. An empty API key yields an
// unconfigured client; generation calls will fail gracefully.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	c := &Client{
		apiKey: apiKey,
		model:  model,
	}

	if apiKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c.genai = client
	return c, nil
}

// IsClientConfigured checks if the Gemini client is properly configured
func (c *Client) IsClientConfigured() bool {
	return c.apiKey != "" && c.genai != nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// worksheetSchema constrains the model response to the worksheet document
// shape. Subject, level, grade and topic are echoed by the caller, not asked
// from the model.
func worksheetSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "A fun, catchy title for the worksheet",
			},
			"instruction": {
				Type:        genai.TypeString,
				Description: "General instruction for the student",
			},
			"exercises": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type": {
							Type: genai.TypeString,
							Enum: []string{
								string(models.ExerciseFillInBlanks),
								string(models.ExerciseColumnSort),
								string(models.ExerciseOpenQuestion),
								string(models.ExerciseMultipleChoice),
								string(models.ExerciseDrawingSpace),
							},
							Description: "The type of exercise. 'column_sort' is best for categorization. 'drawing_space' is for drawing tasks.",
						},
						"question": {
							Type:        genai.TypeString,
							Description: "The text of the question or instruction for this specific exercise",
						},
						"data": {
							Type:        genai.TypeObject,
							Description: "Data required for the exercise. For 'column_sort', provide 'items' (array of strings) and 'columns' (array of category names). For 'multiple_choice', provide 'options' array. For 'fill_in_blanks', provide 'text' with '___' for each blank.",
							Properties: map[string]*genai.Schema{
								"items":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
								"columns": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
								"options": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
								"text":    {Type: genai.TypeString},
							},
						},
					},
					Required: []string{"type", "question"},
				},
			},
		},
		Required: []string{"title", "instruction", "exercises"},
	}
}

// buildPrompt renders the pedagogue prompt for one generation request.
func buildPrompt(req models.GenerationRequest) string {
	return fmt.Sprintf(`Você é um pedagogo especialista em educação no Brasil (BNCC).
Crie uma atividade escolar pronta para imprimir.

Nível de Ensino: %s
Disciplina: %s
Ano/Série: %s
Tópico: %s

Diretrizes:
1. A atividade deve ser adequada para a faixa etária e nível cognitivo selecionado.
2. Para Educação Infantil: Use linguagem simples, lúdica e foque em desenho ou identificação visual.
3. Para Ensino Médio: Use linguagem mais formal, questões mais complexas e conteudistas (vestibular/ENEM).
4. Para Ensino Fundamental: Equilibre o lúdico com o conteúdo.

Para exercícios do tipo 'column_sort' (separar em colunas), forneça uma lista de palavras misturadas em 'items' e os nomes das categorias em 'columns'.
Para exercícios de 'fill_in_blanks', use '___' para o espaço.`,
		req.Level, req.Subject, req.Grade, req.Topic)
}

// GenerateWorksheet asks the model for a worksheet and parses the structured
// response. The returned worksheet echoes the request's subject, level,
// grade and topic.
func (c *Client) GenerateWorksheet(ctx context.Context, req models.GenerationRequest) (*models.Worksheet, error) {
	if !c.IsClientConfigured() {
		return nil, fmt.Errorf("gemini client not configured")
	}

	log.Debug().
		Str("model", c.model).
		Str("subject", req.Subject).
		Str("grade", req.Grade).
		Msg("Requesting worksheet generation from Gemini")

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   worksheetSchema(),
		Temperature:      genai.Ptr[float32](0.7),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(buildPrompt(req)), config)
	if err != nil {
		log.Error().
			Err(err).
			Str("model", c.model).
			Msg("Gemini generation request failed")
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("no content generated")
	}

	var ws models.Worksheet
	if err := json.Unmarshal([]byte(text), &ws); err != nil {
		log.Error().
			Err(err).
			Str("model", c.model).
			Msg("Failed to parse Gemini response")
		return nil, fmt.Errorf("failed to parse generated content: %w", err)
	}

	ws.Subject = req.Subject
	ws.Level = req.Level
	ws.Grade = req.Grade
	ws.Topic = req.Topic

	if err := ws.Validate(); err != nil {
		return nil, fmt.Errorf("generated content incomplete: %w", err)
	}

	log.Info().
		Str("title", ws.Title).
		Int("exercises", len(ws.Exercises)).
		Msg("Worksheet generated successfully")

	return &ws, nil
}
