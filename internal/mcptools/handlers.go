package mcptools

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/codegraph/internal/export"
	"github.com/dusk-indust/codegraph/internal/graph"
	"github.com/dusk-indust/codegraph/internal/source"
)

// CodeGraphService holds the parser and the current frozen graph used by
// MCP tool handlers. build_graph swaps the graph atomically; query tools
// read whichever graph was last built.
type CodeGraphService struct {
	parser graph.Parser

	mu          sync.RWMutex
	graph       *graph.Graph
	projectRoot string // used for persisting the graph to disk
}

// NewCodeGraphService creates a CodeGraphService with the given parser.
func NewCodeGraphService(parser graph.Parser) *CodeGraphService {
	return &CodeGraphService{parser: parser}
}

// SetProjectRoot sets the project root used for graph persistence.
func (s *CodeGraphService) SetProjectRoot(root string) {
	s.mu.Lock()
	s.projectRoot = root
	s.mu.Unlock()
}

// SetGraph installs a pre-built graph, e.g. one loaded from disk.
func (s *CodeGraphService) SetGraph(g *graph.Graph) {
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()
}

// current returns the active graph or an error if none has been built yet.
func (s *CodeGraphService) current() (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.graph == nil {
		return nil, fmt.Errorf("no graph available: run build_graph first")
	}
	return s.graph, nil
}

// BuildGraph discovers source files under a repository root, extracts
// entities, resolves references, and installs the resulting frozen graph.
// Returns graph statistics and any per-file diagnostics.
func (s *CodeGraphService) BuildGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildGraphInput,
) (*mcp.CallToolResult, BuildGraphOutput, error) {
	if input.RepoPath == "" {
		return nil, BuildGraphOutput{}, fmt.Errorf("repoPath is required")
	}

	var langs []graph.Language
	for _, l := range input.Languages {
		langs = append(langs, graph.Language(strings.ToLower(l)))
	}

	files, err := source.Discover(input.RepoPath, source.Options{
		Languages:      langs,
		ExcludeDirs:    input.ExcludeDirs,
		HonorGitignore: input.HonorGitignore,
	})
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("discover: %w", err)
	}

	g, err := graph.Build(ctx, s.parser, files, graph.BuildOptions{
		Extract: graph.ExtractOptions{Concurrency: input.Concurrency},
		Resolve: graph.ResolveOptions{
			Builtins: graph.DefaultBuiltins(),
			RepoRoot: input.RepoPath,
		},
	})
	if err != nil {
		return nil, BuildGraphOutput{}, fmt.Errorf("build graph: %w", err)
	}

	s.mu.Lock()
	s.graph = g
	root := s.projectRoot
	s.mu.Unlock()

	// Persist graph to disk so a later process can load it without
	// re-parsing the repository.
	if root != "" {
		if _, err := export.SaveGraphFile(root, g, input.RepoPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to persist graph: %v\n", err)
		}
	}

	return nil, BuildGraphOutput{
		Stats:       g.Stats(),
		Diagnostics: g.Diagnostics(),
	}, nil
}

// ListEntities returns every entity in the graph, optionally filtered by
// kind, in file-path-then-start-line order.
func (s *CodeGraphService) ListEntities(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListEntitiesInput,
) (*mcp.CallToolResult, ListEntitiesOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, ListEntitiesOutput{}, err
	}

	kind := graph.EntityKind(strings.ToLower(input.Kind))
	switch kind {
	case "", graph.EntityKindFunction, graph.EntityKindMethod, graph.EntityKindClass:
	default:
		return nil, ListEntitiesOutput{}, fmt.Errorf("unknown entity kind: %q", input.Kind)
	}

	ents := g.ListEntities(kind)
	return nil, ListEntitiesOutput{Entities: ents, Total: len(ents)}, nil
}

// FileEntities returns the entities declared in one file, in declaration
// order. An unknown path yields an empty list, not an error.
func (s *CodeGraphService) FileEntities(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FileEntitiesInput,
) (*mcp.CallToolResult, FileEntitiesOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, FileEntitiesOutput{}, err
	}
	if input.FilePath == "" {
		return nil, FileEntitiesOutput{}, fmt.Errorf("filePath is required")
	}
	return nil, FileEntitiesOutput{Entities: g.FileEntities(input.FilePath)}, nil
}

// Callers returns the entities with a resolved call edge to any entity of
// the given name.
func (s *CodeGraphService) Callers(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CallersInput,
) (*mcp.CallToolResult, CallersOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, CallersOutput{}, err
	}
	if input.Name == "" {
		return nil, CallersOutput{}, fmt.Errorf("name is required")
	}
	return nil, CallersOutput{Callers: g.Callers(input.Name)}, nil
}

// Callees returns the entities any entity of the given name has a resolved
// call edge to.
func (s *CodeGraphService) Callees(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input CalleesInput,
) (*mcp.CallToolResult, CalleesOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, CalleesOutput{}, err
	}
	if input.Name == "" {
		return nil, CalleesOutput{}, fmt.Errorf("name is required")
	}
	return nil, CalleesOutput{Callees: g.Callees(input.Name)}, nil
}

// DependencyTree derives a bounded dependency tree from the graph. Format
// "mermaid" additionally renders the tree as a Mermaid diagram.
func (s *CodeGraphService) DependencyTree(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DependencyTreeInput,
) (*mcp.CallToolResult, DependencyTreeOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, DependencyTreeOutput{}, err
	}

	tree := g.DependencyTree(graph.DeriveOptions{
		MaxDepth: input.MaxDepth,
		MaxNodes: input.MaxNodes,
		Roots:    input.Roots,
	})

	out := DependencyTreeOutput{Tree: tree}
	if strings.EqualFold(input.Format, "mermaid") {
		out.Mermaid = export.MermaidDependencyTree(g, tree)
	}
	return nil, out, nil
}

// ClassHierarchy derives the inheritance forest from the graph. Format
// "mermaid" additionally renders the forest as a Mermaid diagram.
func (s *CodeGraphService) ClassHierarchy(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ClassHierarchyInput,
) (*mcp.CallToolResult, ClassHierarchyOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, ClassHierarchyOutput{}, err
	}

	tree := g.ClassHierarchy()
	out := ClassHierarchyOutput{Tree: tree}
	if strings.EqualFold(input.Format, "mermaid") {
		out.Mermaid = export.MermaidClassHierarchy(tree)
	}
	return nil, out, nil
}

// GraphStats returns graph statistics and per-kind diagnostic counts.
func (s *CodeGraphService) GraphStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GraphStatsInput,
) (*mcp.CallToolResult, GraphStatsOutput, error) {
	g, err := s.current()
	if err != nil {
		return nil, GraphStatsOutput{}, err
	}

	counts := make(map[string]int)
	for _, d := range g.Diagnostics() {
		counts[string(d.Kind)]++
	}
	return nil, GraphStatsOutput{Stats: g.Stats(), Diagnostics: counts}, nil
}
