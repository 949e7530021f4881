// Package status inspects the persisted graph artifacts of a repository.
package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/dusk-indust/codegraph/internal/export"
	"github.com/dusk-indust/codegraph/internal/graph"
	"github.com/dusk-indust/codegraph/internal/source"
)

// GraphStatus describes the persisted graph state of one repository.
type GraphStatus struct {
	RepoPath   string
	JSONPath   string // absolute path of the JSON export, empty when absent
	DBPath     string // absolute path of the graph database, empty when absent
	ExportedAt string // RFC3339 timestamp recorded in the export
	Stats      graph.GraphStats
	Stale      bool // a source file was modified after the export was written
}

// HasGraph reports whether any persisted artifact exists.
func (s GraphStatus) HasGraph() bool {
	return s.JSONPath != "" || s.DBPath != ""
}

// Inspect reads the persisted artifacts under root/.codegraph and reports
// what exists, when it was exported, and whether sources changed since.
// A repository with no artifacts yields a zero status, not an error.
func Inspect(root string) (GraphStatus, error) {
	st := GraphStatus{RepoPath: root}

	jsonPath := filepath.Join(root, export.ArtifactDir, "graph.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		var ex export.GraphExport
		if err := json.Unmarshal(data, &ex); err != nil {
			return st, err
		}
		st.JSONPath = jsonPath
		st.ExportedAt = ex.ExportedAt
		st.Stats = ex.Stats

		if info, err := os.Stat(jsonPath); err == nil {
			stale, err := sourcesNewerThan(root, info.ModTime())
			if err == nil {
				st.Stale = stale
			}
		}
	}

	dbPath := filepath.Join(root, export.ArtifactDir, "graph.kuzu")
	if _, err := os.Stat(dbPath); err == nil {
		st.DBPath = dbPath
	}

	return st, nil
}

// sourcesNewerThan reports whether any discoverable source file under root
// was modified after t.
func sourcesNewerThan(root string, t time.Time) (bool, error) {
	files, err := source.Discover(root, source.Options{})
	if err != nil {
		return false, err
	}
	for _, f := range files {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			continue
		}
		if info.ModTime().After(t) {
			return true, nil
		}
	}
	return false, nil
}
