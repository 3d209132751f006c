package std

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garage61-tools/garage61-mcp/pkg/catalog"
	"github.com/garage61-tools/garage61-mcp/pkg/config"
	"github.com/garage61-tools/garage61-mcp/pkg/tools"
)

// staticFetcher — Fetcher с фиксированным каталогом для тестов.
type staticFetcher struct {
	entries map[catalog.Kind][]catalog.Entry
}

func (f *staticFetcher) FetchAll(ctx context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	return f.entries[kind], nil
}

func newTestCache() *catalog.Cache {
	fetcher := &staticFetcher{entries: map[catalog.Kind][]catalog.Entry{
		catalog.KindCar: {
			{ID: "1", Name: "BMW M4 GT3"},
			{ID: "2", Name: "Porsche 911 GT3 R (992)"},
			{ID: "3", Name: "Porsche 911 GT3 R (991)"},
		},
		catalog.KindTrack: {
			{ID: "10", Name: "Suzuka Circuit", Variant: "Grand Prix"},
			{ID: "11", Name: "Suzuka Circuit", Variant: "East"},
		},
	}}
	matcher := catalog.NewMatcher(catalog.OptionsFromConfig(config.MatcherConfig{}))
	return catalog.NewCache(fetcher, time.Hour, matcher)
}

// TestToolDefinitionsAreValid проверяет, что все инструменты проходят
// валидацию реестра.
func TestToolDefinitionsAreValid(t *testing.T) {
	cache := newTestCache()
	registry := tools.NewRegistry()

	all := []tools.Tool{
		NewListCarsTool(cache, config.ToolConfig{}),
		NewListTracksTool(cache, config.ToolConfig{}),
		NewMyFastestLapTool(nil, cache, config.ToolConfig{}),
		NewTeamFastestLapTool(nil, cache, config.ToolConfig{}),
		NewFastestLapTelemetryTool(nil, cache, config.ToolConfig{}),
	}
	for _, tool := range all {
		require.NoError(t, registry.Register(tool), tool.Definition().Name)
	}

	assert.Len(t, registry.GetDefinitions(), 5)
}

func TestListCarsFullList(t *testing.T) {
	tool := NewListCarsTool(newTestCache(), config.ToolConfig{})

	out, err := tool.Execute(context.Background(), "{}")
	require.NoError(t, err)

	assert.Contains(t, out, "**Available Cars (2 total, modern cars prioritized):**")
	assert.Contains(t, out, "• BMW M4 GT3")
	assert.Contains(t, out, "• Porsche 911 GT3 R (992)")
	// Legacy 991 скрыт, но упомянут в примечании
	assert.NotContains(t, out, "(991)")
	assert.Contains(t, out, "1 legacy cars filtered out")
}

func TestListCarsSearch(t *testing.T) {
	tool := NewListCarsTool(newTestCache(), config.ToolConfig{})

	out, err := tool.Execute(context.Background(), `{"search_term":"porsche 992"}`)
	require.NoError(t, err)

	assert.Contains(t, out, "**Cars matching 'porsche 992' (modern cars prioritized):**")
	assert.Contains(t, out, "• Porsche 911 GT3 R (992)")
	// Лучший кандидат первым в списке
	assert.Less(t,
		strings.Index(out, "• Porsche 911 GT3 R (992)"),
		strings.Index(out, "• BMW M4 GT3"))
	// 991 отфильтрован как legacy, с пометкой об этом
	assert.NotContains(t, out, "(991)")
	assert.Contains(t, out, "legacy cars were filtered out")
}

func TestListCarsIncludeLegacy(t *testing.T) {
	tool := NewListCarsTool(newTestCache(), config.ToolConfig{})

	out, err := tool.Execute(context.Background(), `{"include_legacy":true}`)
	require.NoError(t, err)

	assert.Contains(t, out, "**Available Cars (3 total, including legacy cars):**")
	assert.Contains(t, out, "• Porsche 911 GT3 R (991)")
	assert.NotContains(t, out, "filtered out")
}

// TestListCarsNoMatchesSuggests проверяет "did you mean" путь при
// пустой выдаче поиска.
func TestListCarsNoMatchesSuggests(t *testing.T) {
	tool := NewListCarsTool(newTestCache(), config.ToolConfig{})

	out, err := tool.Execute(context.Background(), `{"search_term":"qqqq"}`)
	require.NoError(t, err)

	assert.Contains(t, out, "**No exact matches for 'qqqq'. Did you mean:**")
	assert.Contains(t, out, "• BMW M4 GT3")
}

func TestListTracksSearchGroupsVariants(t *testing.T) {
	tool := NewListTracksTool(newTestCache(), config.ToolConfig{})

	out, err := tool.Execute(context.Background(), `{"search_term":"suzuka"}`)
	require.NoError(t, err)

	assert.Contains(t, out, "**Tracks matching 'suzuka':**")
	assert.Contains(t, out, "**Suzuka Circuit:**")
	assert.Contains(t, out, "**Suzuka Circuit - Grand Prix** (preference: 100)")
	assert.Contains(t, out, "**Suzuka Circuit - East** (preference: 50)")
	// Предпочтительный вариант выше в группе
	assert.Less(t,
		strings.Index(out, "Suzuka Circuit - Grand Prix"),
		strings.Index(out, "Suzuka Circuit - East"))
}

func TestListTracksFullList(t *testing.T) {
	tool := NewListTracksTool(newTestCache(), config.ToolConfig{})

	out, err := tool.Execute(context.Background(), "")
	require.NoError(t, err)

	assert.Contains(t, out, "**Available Tracks (1 unique tracks, 2 total variants):**")
	assert.Contains(t, out, "**Suzuka Circuit:**")
	assert.Contains(t, out, "**Suzuka Circuit - Grand Prix**")
	assert.Contains(t, out, "*Tip:")
}

// TestLapToolUnknownCar проверяет, что промах резолва — это текст
// с подсказками, а не ошибка.
func TestLapToolUnknownCar(t *testing.T) {
	tool := NewMyFastestLapTool(nil, newTestCache(), config.ToolConfig{})

	out, err := tool.Execute(context.Background(), `{"car":"qqqqqq","track":"suzuka"}`)
	require.NoError(t, err)

	assert.Contains(t, out, "Car 'qqqqqq' not found")
	assert.Contains(t, out, "Did you mean")
	assert.Contains(t, out, "list_cars")
}

func TestLapToolRequiresBothArgs(t *testing.T) {
	tool := NewMyFastestLapTool(nil, newTestCache(), config.ToolConfig{})

	_, err := tool.Execute(context.Background(), `{"car":"bmw m4 gt3"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestListToolLimitFromConfig(t *testing.T) {
	tool := NewListCarsTool(newTestCache(), config.ToolConfig{Limit: 1})

	out, err := tool.Execute(context.Background(), "")
	require.NoError(t, err)

	assert.Contains(t, out, "• BMW M4 GT3")
	assert.NotContains(t, out, "• Porsche 911 GT3 R (992)")
	assert.Contains(t, out, "... and 1 more cars")
}

func TestToolDescriptionOverride(t *testing.T) {
	tool := NewListCarsTool(newTestCache(), config.ToolConfig{Description: "custom"})
	assert.Equal(t, "custom", tool.Definition().Description)
}
