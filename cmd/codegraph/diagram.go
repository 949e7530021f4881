package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dusk-indust/codegraph/internal/config"
	"github.com/dusk-indust/codegraph/internal/export"
	"github.com/dusk-indust/codegraph/internal/graph"
)

// graphForQuery reuses a persisted KuzuDB when the -db flag names an
// existing database; otherwise it runs a fresh build.
func graphForQuery(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig) (*graph.Graph, error) {
	if flags.DBPath != "" {
		if _, err := os.Stat(flags.DBPath); err == nil {
			if flags.Verbose {
				fmt.Fprintf(os.Stderr, "loading graph from %s\n", flags.DBPath)
			}
			return loadFromKuzu(flags.DBPath)
		}
	}
	return buildGraph(ctx, flags, cfg)
}

// runDeps derives the dependency tree and writes it to stdout in the
// requested format.
func runDeps(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig) error {
	g, err := graphForQuery(ctx, flags, cfg)
	if err != nil {
		return err
	}

	tree := g.DependencyTree(graph.DeriveOptions{
		MaxDepth: flags.MaxDepth,
		MaxNodes: flags.MaxNodes,
	})

	if strings.EqualFold(flags.Format, "mermaid") {
		fmt.Print(export.MermaidDependencyTree(g, tree))
		return nil
	}
	return export.WriteTree(os.Stdout, tree)
}

// runClasses derives the class hierarchy forest and writes it to stdout in
// the requested format.
func runClasses(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig) error {
	g, err := graphForQuery(ctx, flags, cfg)
	if err != nil {
		return err
	}

	tree := g.ClassHierarchy()
	if strings.EqualFold(flags.Format, "mermaid") {
		fmt.Print(export.MermaidClassHierarchy(tree))
		return nil
	}
	return export.WriteTree(os.Stdout, tree)
}
