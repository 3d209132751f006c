// Package app собирает компоненты приложения из конфигурации.
//
// Слой wiring: API клиент, кэш каталогов и реестр инструментов
// создаются здесь и передаются явно — никаких глобалов.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/garage61-tools/garage61-mcp/pkg/catalog"
	"github.com/garage61-tools/garage61-mcp/pkg/config"
	"github.com/garage61-tools/garage61-mcp/pkg/garage61"
	"github.com/garage61-tools/garage61-mcp/pkg/tools"
	"github.com/garage61-tools/garage61-mcp/pkg/tools/std"
	"github.com/garage61-tools/garage61-mcp/pkg/utils"
)

// Components — собранные зависимости приложения.
type Components struct {
	Config   *config.AppConfig
	Client   *garage61.Client
	Cache    *catalog.Cache
	Registry *tools.Registry
}

// InitializeConfig загружает конфигурацию: YAML файл, если он есть,
// иначе fallback на переменные окружения (MCP хосты обычно передают
// только GARAGE61_TOKEN).
func InitializeConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return config.Load(path)
		}
	}
	return config.LoadFromEnv()
}

// apiFetcher адаптирует garage61.Client под catalog.Fetcher.
//
// SDK говорит типизированными Car/Track, кэш — нейтральными Entry;
// вся конвертация сосредоточена здесь.
type apiFetcher struct {
	client *garage61.Client
}

func (f *apiFetcher) FetchAll(ctx context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	switch kind {
	case catalog.KindCar:
		cars, err := f.client.ListCars(ctx)
		if err != nil {
			return nil, err
		}
		entries := make([]catalog.Entry, 0, len(cars))
		for _, c := range cars {
			entries = append(entries, catalog.Entry{ID: fmt.Sprint(c.ID), Name: c.Name})
		}
		return entries, nil

	case catalog.KindTrack:
		tracks, err := f.client.ListTracks(ctx)
		if err != nil {
			return nil, err
		}
		entries := make([]catalog.Entry, 0, len(tracks))
		for _, t := range tracks {
			entries = append(entries, catalog.Entry{ID: fmt.Sprint(t.ID), Name: t.Name, Variant: t.Variant})
		}
		return entries, nil
	}
	return nil, fmt.Errorf("unknown catalog kind: %q", kind)
}

// Build создает все компоненты и регистрирует инструменты.
func Build(cfg *config.AppConfig) (*Components, error) {
	client, err := garage61.NewFromConfig(cfg.Garage61)
	if err != nil {
		return nil, fmt.Errorf("garage61 client: %w", err)
	}

	matcher := catalog.NewMatcher(catalog.OptionsFromConfig(cfg.Matcher))
	cache := catalog.NewCache(&apiFetcher{client: client}, cfg.Cache.TTL(), matcher)

	registry := tools.NewRegistry()
	if err := registerTools(registry, cfg, client, cache); err != nil {
		return nil, err
	}

	return &Components{
		Config:   cfg,
		Client:   client,
		Cache:    cache,
		Registry: registry,
	}, nil
}

// registerTools регистрирует инструменты с учетом enabled флагов.
func registerTools(registry *tools.Registry, cfg *config.AppConfig, client *garage61.Client, cache *catalog.Cache) error {
	available := map[string]tools.Tool{
		"list_cars":                 std.NewListCarsTool(cache, cfg.GetTool("list_cars")),
		"list_tracks":               std.NewListTracksTool(cache, cfg.GetTool("list_tracks")),
		"get_my_fastest_lap":        std.NewMyFastestLapTool(client, cache, cfg.GetTool("get_my_fastest_lap")),
		"get_team_fastest_lap":      std.NewTeamFastestLapTool(client, cache, cfg.GetTool("get_team_fastest_lap")),
		"get_fastest_lap_telemetry": std.NewFastestLapTelemetryTool(client, cache, cfg.GetTool("get_fastest_lap_telemetry")),
	}

	for name, tool := range available {
		if !cfg.GetTool(name).IsEnabled() {
			utils.Debug("Tool disabled, skipping", "tool", name)
			continue
		}
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

// WarmCache предзагружает оба каталога при старте.
//
// Неудача не фатальна: сервер поднимается, резолв имен деградирует
// до первого успешного рефреша.
func (c *Components) WarmCache(ctx context.Context) {
	for _, kind := range []catalog.Kind{catalog.KindCar, catalog.KindTrack} {
		if err := c.Cache.EnsureLoaded(ctx, kind); err != nil {
			utils.Warn("Cache warm-up failed, name resolution degraded until next refresh",
				"kind", kind, "error", err)
		}
	}
}
