package std

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/garage61-tools/garage61-mcp/pkg/catalog"
	"github.com/garage61-tools/garage61-mcp/pkg/config"
	"github.com/garage61-tools/garage61-mcp/pkg/tools"
)

// ListTracksTool — инструмент поиска по справочнику трасс.
//
// Выдача variant-aware: конфигурации группируются под базовым именем
// трассы, внутри группы — по предпочтительности варианта. Жирные
// имена в выдаче — это точные имена для инструментов телеметрии.
type ListTracksTool struct {
	cache       *catalog.Cache
	description string
	limit       int
}

// NewListTracksTool создает инструмент поиска трасс.
func NewListTracksTool(cache *catalog.Cache, cfg config.ToolConfig) *ListTracksTool {
	description := cfg.Description
	if description == "" {
		description = "List iRacing tracks known to Garage 61, including layout variants. Supports fuzzy search; a variant keyword in the query ('spa endurance') selects that layout."
	}
	limit := cfg.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	return &ListTracksTool{cache: cache, description: description, limit: limit}
}

func (t *ListTracksTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "list_tracks",
		Description: t.description,
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"search_term": map[string]interface{}{
					"type":        "string",
					"description": "Track name or part of it, typos tolerated. Empty returns the full list.",
				},
			},
			"required": []string{},
		},
	}
}

func (t *ListTracksTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		SearchTerm string `json:"search_term"`
	}

	if argsJSON != "" && argsJSON != "{}" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}

	if err := ensureCatalog(ctx, t.cache, catalog.KindTrack); err != nil {
		return "", err
	}

	matches := t.cache.Search(catalog.KindTrack, args.SearchTerm, catalog.SearchOptions{})

	if args.SearchTerm == "" {
		return t.renderFullList(matches), nil
	}
	if len(matches) == 0 {
		res := t.cache.ResolveExactOrSuggest(catalog.KindTrack, args.SearchTerm)
		return renderNoMatches("tracks", args.SearchTerm, res.Alternatives), nil
	}
	return t.renderSearch(args.SearchTerm, matches), nil
}

// groupByBaseName группирует записи по базовому имени трассы.
// Внутри группы варианты сортируются по предпочтительности.
func groupByBaseName(matches []catalog.Match) ([]string, map[string][]catalog.Entry) {
	groups := make(map[string][]catalog.Entry)
	for _, m := range matches {
		groups[m.Entry.Name] = append(groups[m.Entry.Name], m.Entry)
	}

	names := make([]string, 0, len(groups))
	for name, variants := range groups {
		names = append(names, name)
		sort.SliceStable(variants, func(i, j int) bool {
			return catalog.TrackVariantScore(variants[i].Variant) > catalog.TrackVariantScore(variants[j].Variant)
		})
	}
	sort.Strings(names)
	return names, groups
}

// renderSearch — найденные трассы, сгруппированные по базовому имени,
// с preference скором каждого варианта.
func (t *ListTracksTool) renderSearch(term string, matches []catalog.Match) string {
	names, groups := groupByBaseName(matches)

	var b strings.Builder
	fmt.Fprintf(&b, "**Tracks matching '%s':**\n\n", term)

	shown := names
	if len(shown) > t.limit {
		shown = shown[:t.limit]
	}
	for _, name := range shown {
		fmt.Fprintf(&b, "**%s:**\n", name)
		for _, e := range groups[name] {
			fmt.Fprintf(&b, "  • **%s** (preference: %d)\n", e.DisplayName(), catalog.TrackVariantScore(e.Variant))
		}
		b.WriteString("\n")
	}
	if extra := len(names) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "... and %d more tracks. Use a more specific search term to filter.\n", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderFullList — весь каталог: одиночные трассы строкой, трассы
// с несколькими конфигурациями — группой с топ-3 вариантами.
func (t *ListTracksTool) renderFullList(matches []catalog.Match) string {
	if len(matches) == 0 {
		return "No tracks available"
	}

	names, groups := groupByBaseName(matches)

	var b strings.Builder
	fmt.Fprintf(&b, "**Available Tracks (%d unique tracks, %d total variants):**\n\n", len(names), len(matches))

	shown := names
	if len(shown) > t.limit {
		shown = shown[:t.limit]
	}
	for _, name := range shown {
		variants := groups[name]
		if len(variants) == 1 {
			fmt.Fprintf(&b, "• **%s**\n", variants[0].DisplayName())
			continue
		}
		fmt.Fprintf(&b, "**%s:**\n", name)
		top := variants
		if len(top) > 3 {
			top = top[:3]
		}
		for _, e := range top {
			fmt.Fprintf(&b, "  • **%s**\n", e.DisplayName())
		}
		if extra := len(variants) - len(top); extra > 0 {
			fmt.Fprintf(&b, "  • ... and %d more variants\n", extra)
		}
		b.WriteString("\n")
	}
	if extra := len(names) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "... and %d more tracks\n", extra)
	}

	b.WriteString("\n*Tip: Use the exact track names shown above (in bold) for telemetry tools. Search for specific tracks to see all variants.*")
	return b.String()
}
