// Package server поднимает stdio MCP сервер поверх реестра инструментов.
//
// Мост тонкий: определения из tools.Registry транслируются в MCP tools
// как есть (raw JSON schema), результаты Execute — в text content.
// Вся логика живет в pkg/tools/std и pkg/catalog.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/garage61-tools/garage61-mcp/pkg/tools"
	"github.com/garage61-tools/garage61-mcp/pkg/utils"
)

const (
	serverName    = "garage61-mcp"
	serverVersion = "0.2.0"
)

// New создает MCP сервер и регистрирует на нем все инструменты реестра.
func New(registry *tools.Registry) (*mcpserver.MCPServer, error) {
	s := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	for _, def := range registry.GetDefinitions() {
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: marshal schema: %w", def.Name, err)
		}

		tool, err := registry.Get(def.Name)
		if err != nil {
			return nil, err
		}

		s.AddTool(
			mcp.NewToolWithRawSchema(def.Name, def.Description, schema),
			makeHandler(def.Name, tool),
		)
	}

	return s, nil
}

// makeHandler оборачивает tools.Tool в MCP handler.
//
// Ошибка Execute отдается хосту как tool error result, а не как
// ошибка протокола: LLM должна видеть текст и реагировать на него.
func makeHandler(name string, tool tools.Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsJSON, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		utils.Info("Tool called", "tool", name, "args", string(argsJSON))

		result, err := tool.Execute(ctx, string(argsJSON))
		if err != nil {
			utils.Error("Tool failed", "tool", name, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
		}

		return mcp.NewToolResultText(result), nil
	}
}

// ServeStdio блокируется, обслуживая MCP протокол на stdin/stdout.
func ServeStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}
