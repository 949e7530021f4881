package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewCodeGraphMCPServer creates an MCP server with all 8 code graph tools
// registered.
func NewCodeGraphMCPServer(svc *CodeGraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codegraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Index a repository and build the code structure graph. Walks the file tree, parses source files using tree-sitter, extracts functions, methods and classes, and resolves call, inheritance and import relationships.",
	}, svc.BuildGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_entities",
		Description: "List every entity in the graph in deterministic order, optionally filtered by kind (function, method, class).",
	}, svc.ListEntities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_file_entities",
		Description: "List the entities declared in one file, in declaration order. Unknown paths return an empty list.",
	}, svc.FileEntities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_callers",
		Description: "Find the entities that call any entity with the given name.",
	}, svc.Callers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_callees",
		Description: "Find the entities called by any entity with the given name.",
	}, svc.Callees)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dependency_tree",
		Description: "Derive a bounded, cycle-safe dependency tree rooted at the repository's entry-point files (or explicit roots). Optionally rendered as a Mermaid diagram.",
	}, svc.DependencyTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "class_hierarchy",
		Description: "Derive the class inheritance forest, with cycles reported and excluded from the rendering. Optionally rendered as a Mermaid diagram.",
	}, svc.ClassHierarchy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Return graph statistics (file, entity and edge counts) and per-kind diagnostic counts.",
	}, svc.GraphStats)

	return server
}

// RunMCPServer starts an HTTP server exposing the code graph MCP tools.
func RunMCPServer(ctx context.Context, svc *CodeGraphService, addr string) error {
	server := NewCodeGraphMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *CodeGraphService) error {
	return NewCodeGraphMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
