package graph

import (
	"context"
	"fmt"
	"sort"
)

// Graph is the assembled, frozen snapshot of entities and edges for one
// analyzed repository. It is populated once by Build and read-only
// afterwards: queries and derivations may run concurrently from any number
// of goroutines with no synchronization. Rebuilding means building a fresh
// Graph, never mutating this one.
type Graph struct {
	files       []FileRecord
	entities    []Entity // ordered by file path, then start line
	edges       []Edge
	diagnostics []Diagnostic

	byID      map[string]Entity
	byFile    map[string][]Entity // file path -> entities in start-line order
	fileByKey map[string]FileRecord
}

// BuildOptions configures graph assembly.
type BuildOptions struct {
	Extract ExtractOptions
	Resolve ResolveOptions
}

// Build runs the full pipeline: parallel per-file extraction, the barrier,
// symbol-index construction, reference resolution, and assembly. The
// returned graph is frozen. Build fails only on whole-pipeline errors;
// per-file problems surface as diagnostics on the graph.
func Build(ctx context.Context, parser Parser, files []SourceFile, opts BuildOptions) (*Graph, error) {
	extracted, err := ExtractAll(ctx, parser, files, opts.Extract)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	// Barrier passed: every file's entities are visible, so the index is
	// complete and references can be resolved against the whole repository.
	idx := BuildSymbolIndex(extracted.Extractions)
	resolved := NewResolver(idx, extracted.Extractions, opts.Resolve).Resolve(extracted.Extractions)

	return assemble(extracted, resolved)
}

// assemble builds the frozen graph from extraction and resolution output,
// validating the no-dangling-ID invariant.
func assemble(extracted *ExtractResult, resolved *ResolveOutput) (*Graph, error) {
	g := &Graph{
		byID:      make(map[string]Entity),
		byFile:    make(map[string][]Entity),
		fileByKey: make(map[string]FileRecord),
	}

	for _, ext := range extracted.Extractions {
		g.files = append(g.files, ext.File)
		g.fileByKey[ext.File.Path] = ext.File
		for _, ent := range ext.Entities {
			g.entities = append(g.entities, ent)
			g.byID[ent.ID] = ent
			g.byFile[ent.FilePath] = append(g.byFile[ent.FilePath], ent)
		}
	}

	// Extractions arrive sorted by file path; entities within a file are in
	// declaration order. Sorting by start line fixes ordering for files
	// whose extractor interleaves nested declarations.
	for path := range g.byFile {
		ents := g.byFile[path]
		sort.SliceStable(ents, func(i, j int) bool { return ents[i].StartLine < ents[j].StartLine })
	}

	for _, e := range resolved.Edges {
		if err := g.checkEdge(e); err != nil {
			return nil, err
		}
		g.edges = append(g.edges, e)
	}

	g.diagnostics = append(g.diagnostics, extracted.Diagnostics...)
	g.diagnostics = append(g.diagnostics, resolved.Diagnostics...)

	return g, nil
}

// checkEdge enforces the edge invariant: FromID names a known entity
// (calls, inherits) or a known file (imports); ToID additionally allows the
// External sentinel. A dangling ID is a bug in resolution, not input data.
func (g *Graph) checkEdge(e Edge) error {
	known := func(id string) bool {
		if _, ok := g.byID[id]; ok {
			return true
		}
		_, ok := g.fileByKey[id]
		return ok
	}
	if !known(e.FromID) {
		return fmt.Errorf("edge %s: dangling from_id %q", e.Kind, e.FromID)
	}
	if e.ToID != External && !known(e.ToID) {
		return fmt.Errorf("edge %s: dangling to_id %q", e.Kind, e.ToID)
	}
	return nil
}

// --- Query API ---
// All answers are deterministic for a given graph and argument. An unknown
// name or path is a normal outcome and yields an empty result, never an
// error.

// Files returns the analyzed files ordered by path.
func (g *Graph) Files() []FileRecord {
	out := make([]FileRecord, len(g.files))
	copy(out, g.files)
	return out
}

// Entity returns the entity with the given ID and whether it exists.
func (g *Graph) Entity(id string) (Entity, bool) {
	ent, ok := g.byID[id]
	return ent, ok
}

// ListEntities returns all entities of the given kind, ordered by file path
// then start line. An empty kind returns every entity.
func (g *Graph) ListEntities(kind EntityKind) []Entity {
	var out []Entity
	for _, ent := range g.entities {
		if kind == "" || ent.Kind == kind {
			out = append(out, ent)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		return out[i].StartLine < out[j].StartLine
	})
	return out
}

// FileEntities returns the entities declared in the given file, ordered by
// start line.
func (g *Graph) FileEntities(path string) []Entity {
	ents := g.byFile[path]
	out := make([]Entity, len(ents))
	copy(out, ents)
	return out
}

// Callers returns the entities holding a calls edge whose target is named
// name, ordered by entity ID. Ambiguous-match fan-out means a caller of an
// ambiguous name appears as a caller of every candidate.
func (g *Graph) Callers(name string) []Entity {
	seen := make(map[string]bool)
	var out []Entity
	for _, e := range g.edges {
		if e.Kind != EdgeKindCalls {
			continue
		}
		target, ok := g.byID[e.ToID]
		if !ok || target.Name != name {
			continue
		}
		if caller, ok := g.byID[e.FromID]; ok && !seen[caller.ID] {
			seen[caller.ID] = true
			out = append(out, caller)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Callees returns the entities targeted by outgoing calls edges of entities
// named name, ordered by entity ID. Callers and Callees are two views over
// the same edge set: f is in Callees(e) exactly when e is in Callers(f).
func (g *Graph) Callees(name string) []Entity {
	seen := make(map[string]bool)
	var out []Entity
	for _, e := range g.edges {
		if e.Kind != EdgeKindCalls {
			continue
		}
		from, ok := g.byID[e.FromID]
		if !ok || from.Name != name {
			continue
		}
		if callee, ok := g.byID[e.ToID]; ok && !seen[callee.ID] {
			seen[callee.ID] = true
			out = append(out, callee)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns a copy of the raw edge list, including edges excluded from
// derived views (such as cyclic inherits edges).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Diagnostics returns the anomalies recorded during extraction and
// resolution. Derivation diagnostics live on the derived structures.
func (g *Graph) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(g.diagnostics))
	copy(out, g.diagnostics)
	return out
}

// Stats summarizes the graph.
func (g *Graph) Stats() GraphStats {
	external := 0
	for _, e := range g.edges {
		if e.ToID == External {
			external++
		}
	}
	return GraphStats{
		FileCount:     len(g.files),
		EntityCount:   len(g.entities),
		EdgeCount:     len(g.edges),
		ExternalCount: external,
	}
}
