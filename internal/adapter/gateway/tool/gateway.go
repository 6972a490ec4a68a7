package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/YoshitsuguKoike/kaiwa/internal/application/port/output"
)

// Gateway exposes the built-in local tools over an afero filesystem.
// Tools run one at a time in the order the agent requested them.
type Gateway struct {
	fs afero.Fs
}

// NewGateway creates a tool gateway backed by the given filesystem
func NewGateway(fs afero.Fs) *Gateway {
	return &Gateway{fs: fs}
}

type pathInput struct {
	Path string `json:"path"`
}

type writeInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ListTools returns the specs of the built-in tools
func (g *Gateway) ListTools() []output.ToolSpec {
	return []output.ToolSpec{
		{
			Name:        "read_file",
			Description: "Read a text file and return its contents",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{"type": "string"},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "write_file",
			Description: "Write content to a file, creating parent directories",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    map[string]interface{}{"type": "string"},
					"content": map[string]interface{}{"type": "string"},
				},
				"required": []string{"path", "content"},
			},
		},
		{
			Name:        "list_dir",
			Description: "List the entries of a directory",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{"type": "string"},
				},
				"required": []string{"path"},
			},
		},
	}
}

// Invoke runs one tool with a raw JSON input
func (g *Gateway) Invoke(ctx context.Context, name string, input string) (string, error) {
	switch name {
	case "read_file":
		return g.readFile(input)
	case "write_file":
		return g.writeFile(input)
	case "list_dir":
		return g.listDir(input)
	default:
		return "", fmt.Errorf("tool execution failed: unknown tool %q", name)
	}
}

func (g *Gateway) readFile(input string) (string, error) {
	var in pathInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("read_file: invalid input: %w", err)
	}
	data, err := afero.ReadFile(g.fs, in.Path)
	if err != nil {
		return "", fmt.Errorf("read_file %s: %w", in.Path, err)
	}
	return string(data), nil
}

func (g *Gateway) writeFile(input string) (string, error) {
	var in writeInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("write_file: invalid input: %w", err)
	}
	if dir := filepath.Dir(in.Path); dir != "." && dir != "/" {
		if err := g.fs.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("write_file %s: %w", in.Path, err)
		}
	}
	if err := afero.WriteFile(g.fs, in.Path, []byte(in.Content), 0644); err != nil {
		return "", fmt.Errorf("write_file %s: %w", in.Path, err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(in.Content), in.Path), nil
}

func (g *Gateway) listDir(input string) (string, error) {
	var in pathInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("list_dir: invalid input: %w", err)
	}
	infos, err := afero.ReadDir(g.fs, in.Path)
	if err != nil {
		return "", fmt.Errorf("list_dir %s: %w", in.Path, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}
