package builtin

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/internal/tools"
	"github.com/nikcli-go/nikcli/internal/tools/files"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const maxGrepMatches = 500

var grepSkipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// GrepTool implements grep: a recursive regular-expression search rooted
// at the working directory (or a narrower path within it).
type GrepTool struct{}

// NewGrepTool constructs a grep tool.
func NewGrepTool() *GrepTool {
	return &GrepTool{}
}

func (t *GrepTool) Definition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:        "grep",
		Description: "Recursively searches files under the working directory for a regular expression.",
		Category:    models.ToolCategorySearch,
		ParametersSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"pattern": {"type": "string"},
				"path": {"type": "string", "description": "Optional subdirectory or file to restrict the search to."}
			},
			"required": ["pattern"]
		}`),
	}
}

type grepParams struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

type grepMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

func (t *GrepTool) Execute(ctx context.Context, tc tools.Context, input json.RawMessage) (*models.ToolResult, error) {
	var params grepParams
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, corerr.Validation("invalid grep arguments: %v", err)
	}
	if params.Pattern == "" {
		return nil, corerr.Validation("pattern is required")
	}

	re, err := regexp.Compile(params.Pattern)
	if err != nil {
		return nil, corerr.Validation("invalid pattern: %v", err)
	}

	root := tc.WorkingDirectory
	if root == "" {
		root = "."
	}
	searchRoot := root
	if params.Path != "" {
		resolver := files.Resolver{Root: root}
		resolved, err := resolver.Resolve(params.Path)
		if err != nil {
			return nil, corerr.Validation("%v", err)
		}
		searchRoot = resolved
	}

	var matches []grepMatch
	walkErr := filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if grepSkipDirs[d.Name()] && path != searchRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) >= maxGrepMatches {
			return nil
		}
		found, grepErr := grepFile(path, re)
		if grepErr != nil {
			return nil
		}
		matches = append(matches, found...)
		return nil
	})
	if walkErr != nil {
		return nil, corerr.Io(walkErr)
	}

	truncated := len(matches) >= maxGrepMatches
	out, _ := json.Marshal(map[string]any{
		"matches":   matches,
		"truncated": truncated,
	})
	return &models.ToolResult{Content: string(out)}, nil
}

func grepFile(path string, re *regexp.Regexp) ([]grepMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []grepMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.ContainsRune(text, 0) {
			return nil, fmt.Errorf("binary file")
		}
		if re.MatchString(text) {
			matches = append(matches, grepMatch{Path: path, Line: line, Text: text})
			if len(matches) >= maxGrepMatches {
				break
			}
		}
	}
	return matches, scanner.Err()
}
