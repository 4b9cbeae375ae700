package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"recipe-assistant/internal/model"
)

// ErrEmptyPrompt is returned before any request is made when the dish
// description is blank.
var ErrEmptyPrompt = errors.New("dish prompt is empty")

// Sentinels used to classify a *GenerationError with errors.Is.
var (
	ErrInvalidResponse = errors.New("recipe service returned an invalid response")
	ErrServiceFailure  = errors.New("recipe service request failed")
)

// Kind tells the two generation failure modes apart.
type Kind int

const (
	KindServiceFailure Kind = iota + 1
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindServiceFailure:
		return "service_failure"
	case KindInvalidResponse:
		return "invalid_response"
	}
	return "unknown"
}

// GenerationError wraps the underlying cause of a failed generation.
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%v: %v", e.sentinel(), e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel for the error's kind.
func (e *GenerationError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *GenerationError) sentinel() error {
	if e.Kind == KindInvalidResponse {
		return ErrInvalidResponse
	}
	return ErrServiceFailure
}

func invalidResponse(err error) error {
	return &GenerationError{Kind: KindInvalidResponse, Err: err}
}

func serviceFailure(err error) error {
	return &GenerationError{Kind: KindServiceFailure, Err: err}
}

// Request is what a Backend receives: the rendered instruction and the schema
// the answer has to follow.
type Request struct {
	Prompt string
	Schema Schema
}

// Backend is the boundary to the text-generation service. Complete returns the
// raw text of the answer; an empty string is a valid (if useless) answer.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client turns a dish description into a validated Recipe.
// It makes exactly one request per call and never retries.
type Client struct {
	backend Backend
	prompt  *template.Template
	logger  *slog.Logger
}

// New creates a Client. A nil logger discards output.
func New(backend Backend, logger *slog.Logger) (*Client, error) {
	if backend == nil {
		return nil, errors.New("generator backend is nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tmpl, err := template.New("recipe-prompt").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &Client{backend: backend, prompt: tmpl, logger: logger}, nil
}

// Generate asks the backend for a recipe. The returned recipe never carries an
// image. Failures are *GenerationError values except for ErrEmptyPrompt.
func (c *Client) Generate(ctx context.Context, dish string, difficulty model.Difficulty, wishes string) (model.Recipe, error) {
	dish = strings.TrimSpace(dish)
	if dish == "" {
		return model.Recipe{}, ErrEmptyPrompt
	}

	prompt, err := c.renderPrompt(dish, difficulty, strings.TrimSpace(wishes))
	if err != nil {
		return model.Recipe{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	start := time.Now()
	raw, err := c.backend.Complete(ctx, Request{Prompt: prompt, Schema: RecipeSchema()})
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("Recipe generation failed", "dish", dish, "difficulty", difficulty, "duration", elapsed, "error", err)
		return model.Recipe{}, serviceFailure(err)
	}

	recipe, err := ParseRecipe(raw)
	if err != nil {
		c.logger.Warn("Recipe service answer rejected", "dish", dish, "difficulty", difficulty, "duration", elapsed, "error", err)
		return model.Recipe{}, err
	}

	c.logger.Info("Generated recipe", "dish", dish, "difficulty", difficulty, "name", recipe.Name, "duration", elapsed)
	return recipe, nil
}

type promptData struct {
	Dish       string
	Difficulty model.Difficulty
	Wishes     string
}

func (c *Client) renderPrompt(dish string, difficulty model.Difficulty, wishes string) (string, error) {
	if difficulty == "" {
		difficulty = model.DifficultyEasy
	}
	var buf bytes.Buffer
	if err := c.prompt.Execute(&buf, promptData{Dish: dish, Difficulty: difficulty, Wishes: wishes}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const promptTemplate = `Create a recipe for the following dish: {{.Dish}}.
The recipe should be {{.Difficulty}} to cook.
{{- if .Wishes}}
Take these additional wishes into account: {{.Wishes}}
{{- end}}

Answer with a single JSON object with exactly these fields:
"recipeName" (the name of the dish), "description" (one or two sentences),
"ingredients" (a list of ingredients with quantities, in the order they are used)
and "instructions" (a list of steps, in the order they are performed).
Do not add any other fields or any text outside the JSON object.`
