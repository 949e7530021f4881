package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dusk-indust/codegraph/internal/graph"
)

// ArtifactDir is the directory under a repository root where graph
// artifacts are persisted.
const ArtifactDir = ".codegraph"

// GraphExport is the top-level JSON export structure. It wraps a graph
// snapshot with enough metadata to identify the export later.
type GraphExport struct {
	RepoPath   string           `json:"repoPath,omitempty"`
	ExportedAt string           `json:"exportedAt"`
	Stats      graph.GraphStats `json:"stats"`
	Graph      *graph.Snapshot  `json:"graph"`
}

// WriteGraph serializes the graph as indented JSON to w.
func WriteGraph(w io.Writer, g *graph.Graph, repoPath string) error {
	export := &GraphExport{
		RepoPath:   repoPath,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stats:      g.Stats(),
		Graph:      g.Snapshot(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadGraph deserializes a graph previously written by WriteGraph,
// re-validating it on the way in.
func ReadGraph(r io.Reader) (*graph.Graph, error) {
	var export GraphExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if export.Graph == nil {
		return nil, fmt.Errorf("decode graph: missing graph payload")
	}
	g, err := graph.FromSnapshot(export.Graph)
	if err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}
	return g, nil
}

// SaveGraphFile writes the JSON export under root/.codegraph/graph.json so
// a later process can load it without re-parsing the repository. Returns
// the path written.
func SaveGraphFile(root string, g *graph.Graph, repoPath string) (string, error) {
	dir := filepath.Join(root, ArtifactDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}
	path := filepath.Join(dir, "graph.json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	if err := WriteGraph(f, g, repoPath); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTree serializes a derived tree as indented JSON to w.
func WriteTree(w io.Writer, tree *graph.Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}
