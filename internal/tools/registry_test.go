package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nikcli-go/nikcli/pkg/models"
)

func fileTool(name string) *stubTool {
	return &stubTool{
		def: models.ToolDefinition{Name: name, Category: models.ToolCategoryFile},
		execute: func(ctx context.Context, tc Context, input json.RawMessage) (*models.ToolResult, error) {
			return &models.ToolResult{}, nil
		},
	}
}

func TestRegistry_RegisterDuplicateNameFails(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(fileTool("read_file")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(fileTool("read_file")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistry_ListSortedByName(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(fileTool("write_file"))
	_ = r.Register(fileTool("read_file"))

	list := r.List()
	if len(list) != 2 || list[0].Name != "read_file" || list[1].Name != "write_file" {
		t.Fatalf("expected sorted list, got %+v", list)
	}
}

func TestRegistry_ListByCategoryFilters(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(fileTool("read_file"))
	_ = r.Register(&stubTool{def: models.ToolDefinition{Name: "grep", Category: models.ToolCategorySearch}})

	files := r.ListByCategory(models.ToolCategoryFile)
	if len(files) != 1 || files[0].Name != "read_file" {
		t.Fatalf("expected only read_file, got %+v", files)
	}
}

func TestRegistry_GetMissingReturnsFalse(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("nope"); ok {
		t.Fatal("expected miss for unregistered tool")
	}
}
