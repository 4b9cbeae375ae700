package generator

import (
	"context"
	"fmt"
	"strings"

	"recipe-assistant/internal/config"
)

// Backend names accepted by NewBackend.
const (
	BackendAnthropic = "anthropic"
	BackendStatic    = "static"
)

// StaticBackend answers every request with the same document. It is used for
// offline demos and tests.
type StaticBackend struct {
	Response string
	Err      error
}

// DemoRecipeJSON is the StaticBackend default answer.
const DemoRecipeJSON = `{"recipeName":"Tomato Pasta","description":"A quick weeknight pasta with a fresh tomato sauce.","ingredients":["200 g spaghetti","4 ripe tomatoes","2 cloves garlic","2 tbsp olive oil","Salt","Fresh basil"],"instructions":["Boil the pasta in salted water until al dente.","Chop the tomatoes and garlic.","Fry the garlic in olive oil, add the tomatoes and simmer for 10 minutes.","Toss the drained pasta with the sauce and top with basil."]}`

// NewStaticBackend returns a backend that always answers with response, or
// with DemoRecipeJSON when response is empty.
func NewStaticBackend(response string) *StaticBackend {
	if response == "" {
		response = DemoRecipeJSON
	}
	return &StaticBackend{Response: response}
}

func (s *StaticBackend) Complete(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}

// NewBackend builds the backend selected in cfg.
func NewBackend(cfg config.GeneratorConfig) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendAnthropic:
		return NewAnthropicBackend(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case BackendStatic:
		return NewStaticBackend(""), nil
	default:
		return nil, fmt.Errorf("unknown generator backend %q (want %s or %s)", cfg.Backend, BackendAnthropic, BackendStatic)
	}
}
