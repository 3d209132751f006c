package tools

import (
	"context"
	"testing"
)

// stubTool — минимальный Tool для тестов реестра.
type stubTool struct {
	def ToolDefinition
}

func (s *stubTool) Definition() ToolDefinition { return s.def }

func (s *stubTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	return "ok", nil
}

func validDefinition(name string) ToolDefinition {
	return ToolDefinition{
		Name:        name,
		Description: "test tool",
		Parameters: JSONSchema{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string"},
			},
			"required": []string{"query"},
		},
	}
}

// TestRegistryRegisterAndGet тестирует регистрацию и поиск инструмента.
func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&stubTool{def: validDefinition("list_cars")}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tool, err := registry.Get("list_cars")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if tool.Definition().Name != "list_cars" {
		t.Errorf("unexpected tool name: %s", tool.Definition().Name)
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("expected error for unknown tool")
	}
}

// TestRegistryValidation тестирует валидацию определений.
func TestRegistryValidation(t *testing.T) {
	tests := []struct {
		name    string
		def     ToolDefinition
		wantErr bool
	}{
		{
			name:    "valid",
			def:     validDefinition("valid_tool"),
			wantErr: false,
		},
		{
			name:    "empty name",
			def:     ToolDefinition{Parameters: JSONSchema{"type": "object"}},
			wantErr: true,
		},
		{
			name:    "nil parameters",
			def:     ToolDefinition{Name: "x"},
			wantErr: true,
		},
		{
			name:    "missing type",
			def:     ToolDefinition{Name: "x", Parameters: JSONSchema{}},
			wantErr: true,
		},
		{
			name:    "wrong type",
			def:     ToolDefinition{Name: "x", Parameters: JSONSchema{"type": "array"}},
			wantErr: true,
		},
		{
			name: "required as []interface{} of strings",
			def: ToolDefinition{
				Name: "x",
				Parameters: JSONSchema{
					"type":     "object",
					"required": []interface{}{"a", "b"},
				},
			},
			wantErr: false,
		},
		{
			name: "required with non-string item",
			def: ToolDefinition{
				Name: "x",
				Parameters: JSONSchema{
					"type":     "object",
					"required": []interface{}{"a", 42},
				},
			},
			wantErr: true,
		},
		{
			name: "required not an array",
			def: ToolDefinition{
				Name: "x",
				Parameters: JSONSchema{
					"type":     "object",
					"required": "a",
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			err := registry.Register(&stubTool{def: tt.def})
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestRegistryDefinitionsSorted тестирует стабильный порядок определений.
func TestRegistryDefinitionsSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"list_tracks", "get_my_fastest_lap", "list_cars"} {
		if err := registry.Register(&stubTool{def: validDefinition(name)}); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	defs := registry.GetDefinitions()

	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}
	want := []string{"get_my_fastest_lap", "list_cars", "list_tracks"}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d] = %s, want %s", i, defs[i].Name, name)
		}
	}
}
