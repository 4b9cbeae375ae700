// Package importer extracts a recipe from a web page. It prefers schema.org
// Recipe JSON-LD and falls back to the page's first heading and lists.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipe-assistant/internal/model"
)

// ErrNoRecipe is returned when a page yields no complete recipe.
var ErrNoRecipe = errors.New("no recipe found on page")

// maxPageSize caps how much of a page is read.
const maxPageSize = 5 << 20

// Importer fetches pages and parses recipes out of them.
type Importer struct {
	client *http.Client
	logger *slog.Logger
}

// New creates an Importer. A nil client gets NewClient(false), which only
// reaches public addresses.
func New(client *http.Client, logger *slog.Logger) *Importer {
	if client == nil {
		client = NewClient(false)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Importer{client: client, logger: logger}
}

// FetchURL downloads pageURL and parses the recipe on it. One request, no retries.
func (i *Importer) FetchURL(ctx context.Context, pageURL string) (model.Recipe, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.Recipe{}, fmt.Errorf("invalid page URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.Recipe{}, err
	}
	req.Header.Set("User-Agent", "recipe-assistant/1.0 (+importer)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := i.client.Do(req)
	if err != nil {
		return model.Recipe{}, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Recipe{}, fmt.Errorf("failed to fetch %s: bad status %s", u, resp.Status)
	}

	recipe, err := Parse(io.LimitReader(resp.Body, maxPageSize), resp.Request.URL)
	if err != nil {
		i.logger.Info("Import found no recipe", "url", u.String(), "error", err)
		return model.Recipe{}, err
	}
	i.logger.Info("Imported recipe", "url", u.String(), "name", recipe.Name)
	return recipe, nil
}

// Parse extracts a recipe from an HTML document. base resolves relative image
// links and may be nil.
func Parse(r io.Reader, base *url.URL) (model.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.Recipe{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	recipe, ok := fromJSONLD(doc)
	if !ok {
		recipe = fromMarkup(doc)
	}
	recipe.ImageURL = resolve(base, recipe.ImageURL)

	if err := recipe.Validate(); err != nil {
		return model.Recipe{}, fmt.Errorf("%w: %v", ErrNoRecipe, err)
	}
	return recipe, nil
}

func fromJSONLD(doc *goquery.Document) (model.Recipe, bool) {
	var found model.Recipe
	var ok bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true // skip broken blocks
		}
		if node := findRecipeNode(raw); node != nil {
			found, ok = recipeFromNode(node), true
			return false
		}
		return true
	})
	return found, ok
}

// findRecipeNode walks arrays and @graph containers looking for @type Recipe.
func findRecipeNode(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if n := findRecipeNode(item); n != nil {
				return n
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func recipeFromNode(n map[string]any) model.Recipe {
	return model.Recipe{
		Name:         condense(str(n["name"])),
		Description:  condense(str(n["description"])),
		Ingredients:  textList(n["recipeIngredient"]),
		Instructions: textList(n["recipeInstructions"]),
		ImageURL:     imageURL(n["image"]),
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// textList flattens the shapes schema.org allows for ingredient and
// instruction lists: a string, strings, HowToStep objects and HowToSections.
func textList(v any) []string {
	var out []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			for _, line := range model.SplitLines(t) {
				out = append(out, condense(line))
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		case map[string]any:
			if items, ok := t["itemListElement"]; ok {
				walk(items)
				return
			}
			if text := condense(str(t["text"])); text != "" {
				out = append(out, text)
			} else if name := condense(str(t["name"])); name != "" {
				out = append(out, name)
			}
		}
	}
	walk(v)
	if out == nil {
		out = []string{}
	}
	return out
}

func imageURL(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if u := imageURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		return str(t["url"])
	}
	return ""
}

func fromMarkup(doc *goquery.Document) model.Recipe {
	recipe := model.Recipe{
		Name:         first(doc.Find("h1")),
		Ingredients:  listItems(doc.Find("ul").First()),
		Instructions: listItems(doc.Find("ol").First()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		recipe.Description = condense(desc)
	}
	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		recipe.ImageURL = img
	}
	return recipe
}

func first(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return condense(sel.First().Text())
}

func listItems(list *goquery.Selection) []string {
	items := []string{}
	list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		if text := condense(li.Text()); text != "" {
			items = append(items, text)
		}
	})
	return items
}

// condense collapses runs of whitespace into single spaces.
func condense(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil || strings.HasPrefix(ref, "data:") {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(ru).String()
}
