// Утилита отладки резолва имен.
//
//	g61-resolve car "porshe 992"
//	g61-resolve track "spa endurance"
//
// Загружает каталог один раз и печатает кандидатов с разбивкой скора.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garage61-tools/garage61-mcp/pkg/app"
	"github.com/garage61-tools/garage61-mcp/pkg/catalog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	includeLegacy := flag.Bool("legacy", false, "include legacy cars")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: g61-resolve [-legacy] <car|track> <name>")
		os.Exit(2)
	}
	kind := catalog.Kind(flag.Arg(0))
	if kind != catalog.KindCar && kind != catalog.KindTrack {
		fmt.Fprintf(os.Stderr, "unknown kind %q, want car or track\n", flag.Arg(0))
		os.Exit(2)
	}
	query := flag.Arg(1)

	cfg, err := app.InitializeConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	components, err := app.Build(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Build error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := components.Cache.EnsureLoaded(ctx, kind); err != nil {
		fmt.Fprintf(os.Stderr, "Catalog load failed: %v\n", err)
		os.Exit(1)
	}

	res := components.Cache.ResolveExactOrSuggest(kind, query)
	if res.Matched != nil {
		label := "fuzzy"
		if res.Exact {
			label = "exact"
		}
		fmt.Printf("Resolved (%s, confidence %.3f): [%s] %s\n\n",
			label, res.Confidence, res.Matched.ID, res.Matched.DisplayName())
	} else {
		fmt.Printf("No match above threshold for %q\n\n", query)
	}

	matches := components.Cache.Search(kind, query, catalog.SearchOptions{
		IncludeLegacy: *includeLegacy,
		Limit:         10,
	})
	if len(matches) == 0 {
		matches = res.Alternatives
	}

	fmt.Printf("%-8s %-45s %7s %7s %7s %7s\n", "ID", "NAME", "TEXT", "GEN", "VAR", "FINAL")
	for _, m := range matches {
		fmt.Printf("%-8s %-45s %7.3f %7.3f %7.3f %7.3f\n",
			m.Entry.ID, m.Entry.DisplayName(),
			m.Breakdown.Text, m.Breakdown.Generation, m.Breakdown.Variant, m.Breakdown.Final)
	}
}
