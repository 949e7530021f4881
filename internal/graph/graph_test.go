package graph

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadPyFixture builds a graph over the Python fixture project, treating the
// fixture directory as the repository root.
func loadPyFixture(t *testing.T) *Graph {
	t.Helper()

	dir := "../../testdata/fixtures/py_project"
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var files []SourceFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".py" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		files = append(files, SourceFile{Path: e.Name(), Language: LangPython, Content: content})
	}

	p := NewTreeSitterParser()
	t.Cleanup(func() { p.Close() })

	g, err := Build(context.Background(), p, files, BuildOptions{
		Resolve: ResolveOptions{Builtins: DefaultBuiltins()},
	})
	require.NoError(t, err)
	return g
}

func edgeSet(g *Graph) map[Edge]bool {
	set := make(map[Edge]bool)
	for _, e := range g.Edges() {
		set[e] = true
	}
	return set
}

func TestBuild_PyProject(t *testing.T) {
	g := loadPyFixture(t)
	edges := edgeSet(g)

	t.Run("files", func(t *testing.T) {
		var paths []string
		for _, f := range g.Files() {
			paths = append(paths, f.Path)
		}
		assert.NotContains(t, paths, "broken.py", "unparseable files stay out of the graph")
		assert.Contains(t, paths, "app.py")
		assert.Equal(t, 1, CountKind(g.Diagnostics(), DiagParseFailure))
	})

	t.Run("cross-file call", func(t *testing.T) {
		assert.True(t, edges[Edge{FromID: "app.py::foo", ToID: "helpers.py::bar", Kind: EdgeKindCalls}],
			"foo should call bar across files")
	})

	t.Run("import context disambiguation", func(t *testing.T) {
		// util is declared in helpers.py and extra.py; app.py imports only
		// helpers, so its mention binds there with no ambiguity.
		assert.True(t, edges[Edge{FromID: "app.py::pick", ToID: "helpers.py::util", Kind: EdgeKindCalls}])
		assert.False(t, edges[Edge{FromID: "app.py::pick", ToID: "extra.py::util", Kind: EdgeKindCalls}])
	})

	t.Run("ambiguous fan-out", func(t *testing.T) {
		// consumer.py imports nothing, so its util mention fans out.
		assert.True(t, edges[Edge{FromID: "consumer.py::use_util", ToID: "extra.py::util", Kind: EdgeKindCalls}])
		assert.True(t, edges[Edge{FromID: "consumer.py::use_util", ToID: "helpers.py::util", Kind: EdgeKindCalls}])
		assert.Equal(t, 1, CountKind(g.Diagnostics(), DiagAmbiguousReference))
	})

	t.Run("inheritance", func(t *testing.T) {
		assert.True(t, edges[Edge{FromID: "models.py::Dog", ToID: "models.py::Animal", Kind: EdgeKindInherits}])
		// The cyclic pair keeps both raw edges; exclusion is a derivation
		// concern.
		assert.True(t, edges[Edge{FromID: "cycles.py::C1", ToID: "cycles.py::C2", Kind: EdgeKindInherits}])
		assert.True(t, edges[Edge{FromID: "cycles.py::C2", ToID: "cycles.py::C1", Kind: EdgeKindInherits}])
	})

	t.Run("method call", func(t *testing.T) {
		assert.True(t, edges[Edge{FromID: "models.py::Dog.speak", ToID: "models.py::Animal.describe", Kind: EdgeKindCalls}])
	})

	t.Run("imports edges", func(t *testing.T) {
		assert.True(t, edges[Edge{FromID: "app.py", ToID: "helpers.py", Kind: EdgeKindImports}])
		assert.True(t, edges[Edge{FromID: "app.py", ToID: "models.py", Kind: EdgeKindImports}])
	})

	t.Run("builtins produce no edges", func(t *testing.T) {
		for e := range edges {
			if e.Kind != EdgeKindCalls {
				continue
			}
			if target, ok := g.Entity(e.ToID); ok {
				assert.NotEqual(t, "print", target.Name)
				assert.NotEqual(t, "len", target.Name)
			}
		}
	})
}

func TestGraph_ListEntities(t *testing.T) {
	g := loadPyFixture(t)

	all := g.ListEntities("")
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		ordered := prev.FilePath < cur.FilePath ||
			(prev.FilePath == cur.FilePath && prev.StartLine <= cur.StartLine)
		assert.True(t, ordered, "entities must be ordered by file then line: %s before %s", prev.ID, cur.ID)
	}

	classes := g.ListEntities(EntityKindClass)
	for _, ent := range classes {
		assert.Equal(t, EntityKindClass, ent.Kind)
	}
	var classNames []string
	for _, ent := range classes {
		classNames = append(classNames, ent.Name)
	}
	assert.ElementsMatch(t, []string{"Animal", "Dog", "C1", "C2"}, classNames)
}

func TestGraph_FileEntities(t *testing.T) {
	g := loadPyFixture(t)

	var ids []string
	for _, ent := range g.FileEntities("models.py") {
		ids = append(ids, ent.ID)
	}
	assert.Equal(t, []string{
		"models.py::Animal",
		"models.py::Animal.__init__",
		"models.py::Animal.describe",
		"models.py::Dog",
		"models.py::Dog.speak",
	}, ids, "declaration order within the file")

	assert.Empty(t, g.FileEntities("missing.py"), "unknown path is a normal empty result")
}

func TestGraph_CallersCallees(t *testing.T) {
	g := loadPyFixture(t)

	callers := g.Callers("bar")
	require.Len(t, callers, 1)
	assert.Equal(t, "app.py::foo", callers[0].ID)

	// use_util fans out, so it shows up as a caller of util regardless of
	// which candidate is meant.
	utilCallers := g.Callers("util")
	var callerIDs []string
	for _, c := range utilCallers {
		callerIDs = append(callerIDs, c.ID)
	}
	assert.Contains(t, callerIDs, "app.py::pick")
	assert.Contains(t, callerIDs, "consumer.py::use_util")

	callees := g.Callees("speak")
	require.Len(t, callees, 1)
	assert.Equal(t, "models.py::Animal.describe", callees[0].ID)

	assert.Empty(t, g.Callers("no_such_name"))
	assert.Empty(t, g.Callees("no_such_name"))
}

// TestGraph_CallerCalleeInverse checks the two views agree edge by edge:
// for every calls edge between entities, the target's callers include the
// origin and the origin's callees include the target.
func TestGraph_CallerCalleeInverse(t *testing.T) {
	g := loadPyFixture(t)

	for _, e := range g.Edges() {
		if e.Kind != EdgeKindCalls {
			continue
		}
		from, okFrom := g.Entity(e.FromID)
		to, okTo := g.Entity(e.ToID)
		if !okFrom || !okTo {
			continue
		}

		foundCaller := false
		for _, c := range g.Callers(to.Name) {
			if c.ID == from.ID {
				foundCaller = true
			}
		}
		assert.True(t, foundCaller, "Callers(%s) should include %s", to.Name, from.ID)

		foundCallee := false
		for _, c := range g.Callees(from.Name) {
			if c.ID == to.ID {
				foundCallee = true
			}
		}
		assert.True(t, foundCallee, "Callees(%s) should include %s", from.Name, to.ID)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := loadPyFixture(t)
	b := loadPyFixture(t)

	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Error("two builds over the same input should produce identical graphs")
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := loadPyFixture(t)

	snap := g.Snapshot()
	restored, err := FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, snap, restored.Snapshot(), "snapshot -> graph -> snapshot must be lossless")
	assert.Equal(t, g.Stats(), restored.Stats())
}

func TestFromSnapshot_RejectsDanglingEdge(t *testing.T) {
	snap := &Snapshot{
		Files: []FileRecord{{Path: "a.py", Language: LangPython}},
		Edges: []Edge{{FromID: "a.py::ghost", ToID: External, Kind: EdgeKindCalls}},
	}
	_, err := FromSnapshot(snap)
	assert.Error(t, err, "edges must reference known IDs")
}
