//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/export"
	"github.com/dusk-indust/codegraph/internal/graph"
	"github.com/dusk-indust/codegraph/internal/source"
)

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

// buildFixture runs the whole pipeline over one fixture repository:
// discovery, extraction, resolution, freeze.
func buildFixture(t *testing.T, name string) *graph.Graph {
	t.Helper()

	files, err := source.Discover(fixturePath(name), source.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, files)

	parser := graph.NewTreeSitterParser()
	t.Cleanup(func() { parser.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	g, err := graph.Build(ctx, parser, files, graph.BuildOptions{
		Resolve: graph.ResolveOptions{
			Builtins: graph.DefaultBuiltins(),
			RepoRoot: fixturePath(name),
		},
	})
	require.NoError(t, err)
	return g
}

// TestPipeline_E2E_PyProject drives the full pipeline over the Python
// fixture and checks the graph, the query API, and both derivations.
func TestPipeline_E2E_PyProject(t *testing.T) {
	g := buildFixture(t, "py_project")

	// broken.py fails to parse and is excluded; the other six files index.
	stats := g.Stats()
	assert.Equal(t, 6, stats.FileCount)
	assert.Equal(t, 14, stats.EntityCount)
	assert.Equal(t, 1, graph.CountKind(g.Diagnostics(), graph.DiagParseFailure))

	// Cross-file resolution via import context.
	callers := g.Callers("bar")
	require.Len(t, callers, 1)
	assert.Equal(t, "app.py::foo", callers[0].ID)

	// Ambiguous call fans out to both candidates.
	callees := g.Callees("use_util")
	require.Len(t, callees, 2)
	assert.Equal(t, "extra.py::util", callees[0].ID)
	assert.Equal(t, "helpers.py::util", callees[1].ID)

	deps := g.DependencyTree(graph.DeriveOptions{})
	assert.False(t, deps.Truncated)
	assert.NotEmpty(t, deps.Nodes)

	classes := g.ClassHierarchy()
	assert.Equal(t, 1, graph.CountKind(classes.Diagnostics, graph.DiagCyclicInheritance))
}

// TestPipeline_E2E_GoProject checks the pipeline against the Go fixture.
func TestPipeline_E2E_GoProject(t *testing.T) {
	g := buildFixture(t, "go_project")

	assert.Greater(t, g.Stats().EntityCount, 0)
	for _, f := range g.Files() {
		assert.Equal(t, graph.LangGo, f.Language)
	}
}

// TestPipeline_E2E_ExportRoundTrip writes the built graph as JSON and reads
// it back into an identical graph.
func TestPipeline_E2E_ExportRoundTrip(t *testing.T) {
	g := buildFixture(t, "py_project")

	var buf bytes.Buffer
	require.NoError(t, export.WriteGraph(&buf, g, fixturePath("py_project")))

	loaded, err := export.ReadGraph(&buf)
	require.NoError(t, err)

	assert.Equal(t, g.Stats(), loaded.Stats())
	assert.Equal(t, g.Snapshot().Edges, loaded.Snapshot().Edges)

	// The reloaded graph answers queries identically.
	assert.Equal(t, g.Callers("util"), loaded.Callers("util"))
}

// TestPipeline_E2E_Deterministic builds the same fixture twice and expects
// byte-identical derivations.
func TestPipeline_E2E_Deterministic(t *testing.T) {
	first := buildFixture(t, "py_project")
	second := buildFixture(t, "py_project")

	assert.Equal(t, first.Snapshot(), second.Snapshot())
	assert.Equal(t,
		export.MermaidDependencyTree(first, first.DependencyTree(graph.DeriveOptions{})),
		export.MermaidDependencyTree(second, second.DependencyTree(graph.DeriveOptions{})),
	)
}
