package mcptools

import "github.com/dusk-indust/codegraph/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildGraphInput is the input for the build_graph MCP tool.
type BuildGraphInput struct {
	RepoPath       string   `json:"repoPath" jsonschema:"the absolute path to the repository to index"`
	Languages      []string `json:"languages,omitempty" jsonschema:"languages to index (default: all supported). Values: go, python, typescript, rust"`
	ExcludeDirs    []string `json:"excludeDirs,omitempty" jsonschema:"directories to exclude from indexing (e.g. vendor, node_modules)"`
	HonorGitignore bool     `json:"honorGitignore,omitempty" jsonschema:"apply the repository's .gitignore during discovery"`
	Concurrency    int      `json:"concurrency,omitempty" jsonschema:"parallel file extraction limit (default: GOMAXPROCS)"`
}

// BuildGraphOutput is the result of the build_graph MCP tool.
type BuildGraphOutput struct {
	Stats       graph.GraphStats   `json:"stats"`
	Diagnostics []graph.Diagnostic `json:"diagnostics,omitempty"`
}

// ListEntitiesInput is the input for the list_entities MCP tool.
type ListEntitiesInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"filter by entity kind: function, method, class. Empty means all kinds"`
}

// ListEntitiesOutput is the result of the list_entities MCP tool.
type ListEntitiesOutput struct {
	Entities []graph.Entity `json:"entities"`
	Total    int            `json:"total"`
}

// FileEntitiesInput is the input for the get_file_entities MCP tool.
type FileEntitiesInput struct {
	FilePath string `json:"filePath" jsonschema:"repository-relative path of the file to inspect"`
}

// FileEntitiesOutput is the result of the get_file_entities MCP tool.
type FileEntitiesOutput struct {
	Entities []graph.Entity `json:"entities"`
}

// CallersInput is the input for the get_callers MCP tool.
type CallersInput struct {
	Name string `json:"name" jsonschema:"entity name to find callers of"`
}

// CallersOutput is the result of the get_callers MCP tool.
type CallersOutput struct {
	Callers []graph.Entity `json:"callers"`
}

// CalleesInput is the input for the get_callees MCP tool.
type CalleesInput struct {
	Name string `json:"name" jsonschema:"entity name to find callees of"`
}

// CalleesOutput is the result of the get_callees MCP tool.
type CalleesOutput struct {
	Callees []graph.Entity `json:"callees"`
}

// DependencyTreeInput is the input for the dependency_tree MCP tool.
type DependencyTreeInput struct {
	Roots    []string `json:"roots,omitempty" jsonschema:"file paths to use as traversal roots (default: files no other file imports)"`
	MaxDepth int      `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 10)"`
	MaxNodes int      `json:"maxNodes,omitempty" jsonschema:"maximum node count of the derived tree (default: 500)"`
	Format   string   `json:"format,omitempty" jsonschema:"output format: json (default) or mermaid"`
}

// DependencyTreeOutput is the result of the dependency_tree MCP tool.
type DependencyTreeOutput struct {
	Tree    *graph.Tree `json:"tree,omitempty"`
	Mermaid string      `json:"mermaid,omitempty"`
}

// ClassHierarchyInput is the input for the class_hierarchy MCP tool.
type ClassHierarchyInput struct {
	Format string `json:"format,omitempty" jsonschema:"output format: json (default) or mermaid"`
}

// ClassHierarchyOutput is the result of the class_hierarchy MCP tool.
type ClassHierarchyOutput struct {
	Tree    *graph.Tree `json:"tree,omitempty"`
	Mermaid string      `json:"mermaid,omitempty"`
}

// GraphStatsInput is the input for the graph_stats MCP tool.
type GraphStatsInput struct{}

// GraphStatsOutput is the result of the graph_stats MCP tool.
type GraphStatsOutput struct {
	Stats       graph.GraphStats `json:"stats"`
	Diagnostics map[string]int   `json:"diagnostics,omitempty"`
}
