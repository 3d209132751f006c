// Утилита диагностики подключения к Garage 61 API.
//
// Проверяет токен и сеть: дергает /me и печатает аккаунт
// либо классифицированную ошибку с подсказкой.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garage61-tools/garage61-mcp/pkg/app"
	"github.com/garage61-tools/garage61-mcp/pkg/garage61"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := app.InitializeConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	client, err := garage61.NewFromConfig(cfg.Garage61)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Print("Pinging Garage 61 API... ")
	start := time.Now()
	acc, err := client.Me(ctx)
	if err != nil {
		fmt.Println("FAILED")
		errType := garage61.ClassifyError(err)
		fmt.Fprintf(os.Stderr, "[%s] %s\n", errType, errType.HumanMessage())
		fmt.Fprintf(os.Stderr, "Details: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK (%s)\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Authenticated as: %s %s (%s)\n", acc.FirstName, acc.LastName, acc.Slug)
}
