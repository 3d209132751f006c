// Garage 61 MCP Server
// Точка входа: конфиг, прогрев кэша, stdio сервер
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/garage61-tools/garage61-mcp/internal/server"
	"github.com/garage61-tools/garage61-mcp/pkg/app"
	"github.com/garage61-tools/garage61-mcp/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	// 0. Инициализируем логгер (stdout занят MCP транспортом)
	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	// 1. Конфигурация: YAML либо переменные окружения
	cfg, err := app.InitializeConfig(*configPath)
	if err != nil {
		utils.Error("Failed to load config", "error", err)
		return err
	}
	utils.SetDebug(cfg.App.Debug)
	utils.Info("Config loaded", "token", utils.MaskToken(cfg.Garage61.Token))

	// 2. Собираем компоненты: клиент, кэш, реестр инструментов
	components, err := app.Build(cfg)
	if err != nil {
		utils.Error("Component build failed", "error", err)
		return err
	}

	// 3. Прогреваем кэш справочников. Неудача не фатальна:
	// сервер стартует, резолв имен оживет при первом успешном рефреше
	components.WarmCache(context.Background())
	utils.Info("Cache warmed",
		"cars", components.Cache.Len("car"),
		"tracks", components.Cache.Len("track"))

	// 4. Поднимаем stdio MCP сервер
	s, err := server.New(components.Registry)
	if err != nil {
		utils.Error("Server setup failed", "error", err)
		return err
	}

	utils.Info("Serving MCP on stdio")
	if err := server.ServeStdio(s); err != nil {
		utils.Error("Server stopped with error", "error", err)
		return err
	}

	utils.Info("Server exited normally")
	return nil
}
