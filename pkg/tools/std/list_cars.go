package std

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garage61-tools/garage61-mcp/pkg/catalog"
	"github.com/garage61-tools/garage61-mcp/pkg/config"
	"github.com/garage61-tools/garage61-mcp/pkg/tools"
)

const defaultListLimit = 50

// ListCarsTool — инструмент поиска по справочнику машин.
//
// Без search_term возвращает весь каталог (современные машины),
// с search_term — нечеткий поиск через catalog.Cache.
type ListCarsTool struct {
	cache       *catalog.Cache
	description string
	limit       int
}

// NewListCarsTool создает инструмент поиска машин.
func NewListCarsTool(cache *catalog.Cache, cfg config.ToolConfig) *ListCarsTool {
	description := cfg.Description
	if description == "" {
		description = "List iRacing cars known to Garage 61. Supports fuzzy search by partial or misspelled name. Legacy (superseded) cars are hidden unless include_legacy is set."
	}
	limit := cfg.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	return &ListCarsTool{cache: cache, description: description, limit: limit}
}

func (t *ListCarsTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "list_cars",
		Description: t.description,
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"search_term": map[string]interface{}{
					"type":        "string",
					"description": "Car name or part of it, typos tolerated (e.g. 'porshe 992'). Empty returns the full list.",
				},
				"include_legacy": map[string]interface{}{
					"type":        "boolean",
					"description": "Include superseded car generations in the results.",
				},
			},
			"required": []string{},
		},
	}
}

func (t *ListCarsTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		SearchTerm    string `json:"search_term"`
		IncludeLegacy bool   `json:"include_legacy"`
	}

	if argsJSON != "" && argsJSON != "{}" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}

	if err := ensureCatalog(ctx, t.cache, catalog.KindCar); err != nil {
		return "", err
	}

	matches := t.cache.Search(catalog.KindCar, args.SearchTerm, catalog.SearchOptions{
		IncludeLegacy: args.IncludeLegacy,
	})

	if args.SearchTerm == "" {
		return t.renderFullList(matches, args.IncludeLegacy), nil
	}
	if len(matches) == 0 {
		res := t.cache.ResolveExactOrSuggest(catalog.KindCar, args.SearchTerm)
		return renderNoMatches("cars", args.SearchTerm, res.Alternatives), nil
	}
	return t.renderSearch(args.SearchTerm, matches, args.IncludeLegacy), nil
}

// renderSearch — результаты поиска с пометками про приоритизацию
// и отфильтрованные legacy машины.
func (t *ListCarsTool) renderSearch(term string, matches []catalog.Match, includeLegacy bool) string {
	var b strings.Builder

	note := " (modern cars prioritized)"
	if includeLegacy {
		note = " (including legacy cars)"
	}
	fmt.Fprintf(&b, "**Cars matching '%s'%s:**\n\n", term, note)

	shown := matches
	if len(shown) > t.limit {
		shown = shown[:t.limit]
	}
	for _, m := range shown {
		fmt.Fprintf(&b, "• %s\n", m.Entry.Name)
	}
	if extra := len(matches) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "\n... and %d more cars\n", extra)
	}

	if !includeLegacy && t.legacyWereFiltered(term, len(matches)) {
		b.WriteString("\n*Note: Some legacy cars were filtered out. Use 'legacy' in the search term to see all versions.*\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderFullList — весь каталог с подсчетом скрытых legacy машин.
func (t *ListCarsTool) renderFullList(matches []catalog.Match, includeLegacy bool) string {
	if len(matches) == 0 {
		return "No cars available"
	}

	var b strings.Builder

	note := ", modern cars prioritized"
	if includeLegacy {
		note = ", including legacy cars"
	}
	fmt.Fprintf(&b, "**Available Cars (%d total%s):**\n\n", len(matches), note)

	shown := matches
	if len(shown) > t.limit {
		shown = shown[:t.limit]
	}
	for _, m := range shown {
		fmt.Fprintf(&b, "• %s\n", m.Entry.Name)
	}
	if extra := len(matches) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "\n... and %d more cars. Use a search term to filter.\n", extra)
	}

	if !includeLegacy {
		legacyCount := 0
		for _, e := range t.cache.Snapshot(catalog.KindCar) {
			if catalog.IsLegacyCar(e.Name) {
				legacyCount++
			}
		}
		if legacyCount > 0 {
			fmt.Fprintf(&b, "\n*Note: %d legacy cars filtered out. Add 'legacy' to the search to see all versions.*\n", legacyCount)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// legacyWereFiltered — поиск с include_legacy дал бы больше результатов.
func (t *ListCarsTool) legacyWereFiltered(term string, visible int) bool {
	all := t.cache.Search(catalog.KindCar, term, catalog.SearchOptions{IncludeLegacy: true})
	return len(all) > visible
}

// renderNoMatches — "did you mean" подсказки при пустой выдаче поиска.
func renderNoMatches(noun, term string, alternatives []catalog.Match) string {
	if len(alternatives) == 0 {
		return fmt.Sprintf("No %s found matching '%s'", noun, term)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**No exact matches for '%s'. Did you mean:**\n\n", term)
	for _, m := range alternatives {
		fmt.Fprintf(&b, "• %s\n", m.Entry.DisplayName())
	}
	return strings.TrimRight(b.String(), "\n")
}
