package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"recipe-assistant/internal/model"
	"recipe-assistant/internal/share"
)

var (
	colorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMute = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorHead = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	passStyle    = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
	failStyle    = lipgloss.NewStyle().Foreground(colorFail)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMute)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorHead)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMute).
			Padding(0, 1)
)

const (
	iconPass = "✓"
	iconWarn = "⚠"
)

// renderRecipe formats a recipe for the terminal.
func renderRecipe(r model.Recipe) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Name))
	if r.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(72).Render(r.Description))
	}
	if r.HasImage() {
		image := r.ImageURL
		if strings.HasPrefix(image, "data:") {
			image = "(photo attached)"
		}
		b.WriteString("\n" + mutedStyle.Render(image))
	}

	b.WriteString("\n\n" + sectionStyle.Render("Ingredients") + "\n")
	for _, ing := range r.Ingredients {
		b.WriteString("  • " + ing + "\n")
	}
	b.WriteString("\n" + sectionStyle.Render("Instructions") + "\n")
	for i, step := range r.Instructions {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// renderList formats the saved recipe names with their ingredient counts.
func renderList(recipes []model.Recipe) string {
	if len(recipes) == 0 {
		return mutedStyle.Render("No saved recipes yet.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Saved recipes (%d)", len(recipes))))
	for _, r := range recipes {
		b.WriteString("\n  " + r.Name + " " + mutedStyle.Render(fmt.Sprintf("%d ingredients, %d steps", len(r.Ingredients), len(r.Instructions))))
	}
	return b.String()
}

func renderImportResult(res share.ImportResult) string {
	var b strings.Builder
	b.WriteString(passStyle.Render(fmt.Sprintf("%s Imported %d recipe(s)", iconPass, len(res.Added))))
	for _, name := range res.Added {
		b.WriteString("\n  " + name)
	}
	for _, s := range res.Skipped {
		b.WriteString("\n" + warnStyle.Render(fmt.Sprintf("%s Skipped %q: %s", iconWarn, s.Name, s.Reason)))
	}
	return b.String()
}
