package std

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/garage61-tools/garage61-mcp/pkg/catalog"
	"github.com/garage61-tools/garage61-mcp/pkg/config"
	"github.com/garage61-tools/garage61-mcp/pkg/garage61"
	"github.com/garage61-tools/garage61-mcp/pkg/tools"
)

// lapScope определяет чьи круги ищем и что приложить к ответу.
type lapScope int

const (
	scopeMine      lapScope = iota // Только свои круги, телеметрия как CSV
	scopeTeam                      // Я + команды, телеметрия как CSV
	scopeTelemetry                 // Все доступные, телеметрия сводкой
)

// LapTool — семейство инструментов про быстрейшие круги.
//
// Все три инструмента (my/team/telemetry) отличаются только фильтром
// запроса и форматом телеметрии в ответе, поэтому живут в одном типе.
type LapTool struct {
	client      *garage61.Client
	cache       *catalog.Cache
	scope       lapScope
	name        string
	description string
}

// NewMyFastestLapTool — личный рекорд на связке машина+трасса.
func NewMyFastestLapTool(client *garage61.Client, cache *catalog.Cache, cfg config.ToolConfig) *LapTool {
	description := cfg.Description
	if description == "" {
		description = "Get your personal fastest lap for a car/track combination, with telemetry CSV when your Garage 61 plan allows it. Car and track names are fuzzy-matched."
	}
	return &LapTool{client: client, cache: cache, scope: scopeMine, name: "get_my_fastest_lap", description: description}
}

// NewTeamFastestLapTool — быстрейший круг среди всех доступных водителей.
func NewTeamFastestLapTool(client *garage61.Client, cache *catalog.Cache, cfg config.ToolConfig) *LapTool {
	description := cfg.Description
	if description == "" {
		description = "Get the overall fastest lap across you and your teammates for a car/track combination, with telemetry CSV when available."
	}
	return &LapTool{client: client, cache: cache, scope: scopeTeam, name: "get_team_fastest_lap", description: description}
}

// NewFastestLapTelemetryTool — быстрейший круг со сводкой телеметрии.
func NewFastestLapTelemetryTool(client *garage61.Client, cache *catalog.Cache, cfg config.ToolConfig) *LapTool {
	description := cfg.Description
	if description == "" {
		description = "Get the fastest accessible lap for a car/track combination with a telemetry summary (top speed, throttle, brake)."
	}
	return &LapTool{client: client, cache: cache, scope: scopeTelemetry, name: "get_fastest_lap_telemetry", description: description}
}

func (t *LapTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        t.name,
		Description: t.description,
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"car": map[string]interface{}{
					"type":        "string",
					"description": "Car name, fuzzy-matched against the Garage 61 catalog (e.g. 'porsche 992').",
				},
				"track": map[string]interface{}{
					"type":        "string",
					"description": "Track name, fuzzy-matched; add a variant keyword to pick a layout (e.g. 'spa endurance').",
				},
			},
			"required": []string{"car", "track"},
		},
	}
}

func (t *LapTool) filter(carID, trackID int) garage61.LapFilter {
	switch t.scope {
	case scopeMine:
		return garage61.LapFilter{
			Cars: []int{carID}, Tracks: []int{trackID},
			Drivers: []string{"me"}, Limit: 1, Group: "driver", SeeTelemetry: true,
		}
	case scopeTeam:
		return garage61.LapFilter{
			Cars: []int{carID}, Tracks: []int{trackID},
			Limit: 1000, Group: "none", SeeTelemetry: true,
		}
	default:
		return garage61.LapFilter{
			Cars: []int{carID}, Tracks: []int{trackID},
			Limit: 50, Group: "none", SeeTelemetry: true,
		}
	}
}

func (t *LapTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		Car   string `json:"car"`
		Track string `json:"track"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Car == "" || args.Track == "" {
		return "", fmt.Errorf("both 'car' and 'track' are required")
	}

	car, miss, err := resolveEntry(ctx, t.cache, catalog.KindCar, args.Car)
	if err != nil {
		return "", err
	}
	if miss != "" {
		return miss, nil
	}

	track, miss, err := resolveEntry(ctx, t.cache, catalog.KindTrack, args.Track)
	if err != nil {
		return "", err
	}
	if miss != "" {
		return miss, nil
	}

	carID, err := strconv.Atoi(car.ID)
	if err != nil {
		return "", fmt.Errorf("unexpected car id %q: %w", car.ID, err)
	}
	trackID, err := strconv.Atoi(track.ID)
	if err != nil {
		return "", fmt.Errorf("unexpected track id %q: %w", track.ID, err)
	}

	laps, err := t.client.ListLaps(ctx, t.filter(carID, trackID))
	if err != nil {
		return "", fmt.Errorf("fetch laps: %w", err)
	}
	if len(laps) == 0 {
		// Имена валидны (ID нашлись), просто нет данных по этой связке
		return fmt.Sprintf("No lap data found for '%s' at '%s'. No laps are available for this car/track combination in your accessible data.",
			car.DisplayName(), track.DisplayName()), nil
	}

	return t.formatLap(ctx, laps[0], car, track)
}

// formatLap собирает markdown ответ по быстрейшему кругу.
func (t *LapTool) formatLap(ctx context.Context, lap garage61.Lap, car, track catalog.Entry) (string, error) {
	var b strings.Builder

	title := "Fastest Lap"
	if t.scope == scopeMine {
		title = "Your Fastest Lap"
	}
	fmt.Fprintf(&b, "**%s: %s at %s**\n\n", title, car.DisplayName(), track.DisplayName())
	fmt.Fprintf(&b, "**Driver:** %s\n", lap.DriverName())
	fmt.Fprintf(&b, "**Lap Time:** %s (%.3f seconds)\n", garage61.FormatLapTime(lap.LapTime), lap.LapTime)
	fmt.Fprintf(&b, "**Lap ID:** %s\n", lap.ID)

	if !lap.CanViewTelemetry {
		return b.String(), nil
	}

	csvData, err := t.client.LapTelemetryCSV(ctx, lap.ID)
	switch {
	case errors.Is(err, garage61.ErrProPlanRequired):
		b.WriteString("\n**Note:** Detailed telemetry data requires a Garage 61 Pro plan. Upgrade at https://garage61.net to access telemetry analysis.\n")
		return b.String(), nil
	case errors.Is(err, garage61.ErrTelemetryNotFound):
		return b.String(), nil
	case err != nil:
		return "", fmt.Errorf("fetch telemetry: %w", err)
	}

	if t.scope == scopeTelemetry {
		summary, err := garage61.ParseTelemetryCSV(csvData)
		if err != nil {
			return "", fmt.Errorf("parse telemetry: %w", err)
		}
		fmt.Fprintf(&b, "\n**Top Speed:** %.1f km/h\n", summary.Speed.Max)
		fmt.Fprintf(&b, "**Max Throttle:** %.1f%%\n", summary.Throttle.Max)
		fmt.Fprintf(&b, "**Max Brake:** %.1f%%\n", summary.Brake.Max)
		return b.String(), nil
	}

	fmt.Fprintf(&b, "\n**Telemetry Data (CSV):**\n```csv\n%s\n```\n", strings.TrimSpace(csvData))
	return b.String(), nil
}
