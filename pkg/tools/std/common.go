// Package std содержит инструменты Garage 61 для MCP хоста.
//
// Инструменты принимают *catalog.Cache и *garage61.Client через
// конструкторы. Ошибки резолва имен ("машина не найдена") — это
// нормальный текстовый результат с подсказками, а не ошибка протокола:
// хост должен показать его пользователю как есть.
package std

import (
	"context"
	"fmt"
	"strings"

	"github.com/garage61-tools/garage61-mcp/pkg/catalog"
	"github.com/garage61-tools/garage61-mcp/pkg/utils"
)

// ensureCatalog следит, чтобы каталог был загружен перед поиском.
//
// Ошибка апстрима фатальна только для пустого кэша: если прежние
// данные есть, работаем по stale каталогу и просто пишем warning.
func ensureCatalog(ctx context.Context, cache *catalog.Cache, kind catalog.Kind) error {
	err := cache.EnsureLoaded(ctx, kind)
	if err == nil {
		return nil
	}
	if cache.Len(kind) == 0 {
		return err
	}
	utils.Warn("Serving stale catalog", "kind", kind, "error", err)
	return nil
}

// suggestionList форматирует альтернативы в строку "A, B, C".
func suggestionList(alts []catalog.Match, limit int) string {
	names := make([]string, 0, limit)
	for _, m := range alts {
		if len(names) == limit {
			break
		}
		names = append(names, m.Entry.DisplayName())
	}
	return strings.Join(names, ", ")
}

// notFoundText — текст для пользователя, когда имя не зарезолвилось.
func notFoundText(kind catalog.Kind, name string, res catalog.MatchResult) string {
	listTool := "list_cars"
	noun := "Car"
	if kind == catalog.KindTrack {
		listTool = "list_tracks"
		noun = "Track"
	}

	if suggestions := suggestionList(res.Alternatives, 3); suggestions != "" {
		return fmt.Sprintf("%s '%s' not found. Did you mean one of these? %s. Use the %s tool to see all available options.",
			noun, name, suggestions, listTool)
	}
	return fmt.Sprintf("%s '%s' not found. Use the %s tool to see all available options.", noun, name, listTool)
}

// resolveEntry резолвит имя через кэш. Второй результат — текст для
// пользователя при промахе (пустой при успехе).
func resolveEntry(ctx context.Context, cache *catalog.Cache, kind catalog.Kind, name string) (catalog.Entry, string, error) {
	if err := ensureCatalog(ctx, cache, kind); err != nil {
		return catalog.Entry{}, "", err
	}

	res := cache.ResolveExactOrSuggest(kind, name)
	if res.Matched == nil {
		utils.Info("Name did not resolve", "kind", kind, "name", name)
		return catalog.Entry{}, notFoundText(kind, name, res), nil
	}

	utils.Debug("Name resolved",
		"kind", kind, "query", name,
		"matched", res.Matched.DisplayName(),
		"confidence", res.Confidence, "exact", res.Exact)
	return *res.Matched, "", nil
}
