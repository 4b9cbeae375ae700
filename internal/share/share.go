// Package share renders recipes for sharing and moves recipe collections in
// and out of the store in several file formats.
package share

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"

	"recipe-assistant/internal/model"
)

// Text renders recipe as the markdown text handed to share targets:
// title, description, bulleted ingredients and numbered steps.
func Text(recipe model.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", recipe.Name)
	if recipe.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", recipe.Description)
	}
	if isRemoteImage(recipe.ImageURL) {
		fmt.Fprintf(&b, "![%s](%s)\n\n", recipe.Name, recipe.ImageURL)
	}

	b.WriteString("## Ingredients\n\n")
	for _, ing := range recipe.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}
	b.WriteString("\n## Instructions\n\n")
	for i, step := range recipe.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// Data URIs are left out of share text; they are too large to paste anywhere.
func isRemoteImage(u string) bool {
	return strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://")
}

// Renderer converts share markdown into sanitised HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Strikethrough),
			goldmark.WithRendererOptions(mdhtml.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// RenderHTML converts markdown to HTML and strips anything unsafe. Recipe
// text comes from a language model or a scraped page, so raw HTML in it is
// never trusted.
func (r *Renderer) RenderHTML(markdown string) (template.HTML, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Recipe is a shortcut for RenderHTML(Text(recipe)).
func (r *Renderer) Recipe(recipe model.Recipe) (template.HTML, error) {
	return r.RenderHTML(Text(recipe))
}
