package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/config"
	"github.com/dusk-indust/codegraph/internal/export"
	"github.com/dusk-indust/codegraph/internal/graph"
	"github.com/dusk-indust/codegraph/internal/source"
)

// buildGraph runs discovery and the full graph build for the repository
// named by the flags.
func buildGraph(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig) (*graph.Graph, error) {
	var langs []graph.Language
	for _, l := range splitList(flags.Languages) {
		langs = append(langs, graph.Language(strings.ToLower(l)))
	}

	files, err := source.Discover(flags.RepoPath, source.Options{
		Languages:      langs,
		ExcludeDirs:    splitList(flags.ExcludeDirs),
		HonorGitignore: flags.Gitignore,
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if flags.Verbose {
		fmt.Fprintf(os.Stderr, "discovered %d source files\n", len(files))
	}

	parser := graph.NewTreeSitterParser()
	defer parser.Close()

	g, err := graph.Build(ctx, parser, files, graph.BuildOptions{
		Extract: graph.ExtractOptions{Concurrency: flags.Concurrency},
		Resolve: graph.ResolveOptions{
			Builtins: graph.DefaultBuiltins(cfg.ExtraBuiltins...),
			RepoRoot: flags.RepoPath,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	if flags.Verbose {
		stats := g.Stats()
		fmt.Fprintf(os.Stderr, "graph: %d files, %d entities, %d edges (%d external)\n",
			stats.FileCount, stats.EntityCount, stats.EdgeCount, stats.ExternalCount)
		for _, d := range g.Diagnostics() {
			fmt.Fprintf(os.Stderr, "diagnostic: %s\n", d)
		}
	}

	if flags.DBPath != "" {
		if err := persistToKuzu(g, flags.DBPath); err != nil {
			return nil, fmt.Errorf("persist graph: %w", err)
		}
		if flags.Verbose {
			fmt.Fprintf(os.Stderr, "graph persisted to %s\n", flags.DBPath)
		}
	}

	return g, nil
}

// runAnalyze builds the graph, persists the export under the repository's
// .codegraph directory, and writes it to stdout.
func runAnalyze(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig) error {
	g, err := buildGraph(ctx, flags, cfg)
	if err != nil {
		return err
	}

	path, err := export.SaveGraphFile(flags.RepoPath, g, flags.RepoPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to persist graph: %v\n", err)
	} else if flags.Verbose {
		fmt.Fprintf(os.Stderr, "graph persisted to %s\n", path)
	}

	return export.WriteGraph(os.Stdout, g, flags.RepoPath)
}

// runStats builds the graph and prints summary statistics.
func runStats(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig) error {
	g, err := buildGraph(ctx, flags, cfg)
	if err != nil {
		return err
	}
	stats := g.Stats()
	fmt.Printf("files:     %d\n", stats.FileCount)
	fmt.Printf("entities:  %d\n", stats.EntityCount)
	fmt.Printf("edges:     %d\n", stats.EdgeCount)
	fmt.Printf("external:  %d\n", stats.ExternalCount)

	counts := make(map[string]int)
	var kinds []string
	for _, d := range g.Diagnostics() {
		if counts[string(d.Kind)] == 0 {
			kinds = append(kinds, string(d.Kind))
		}
		counts[string(d.Kind)]++
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("%s: %d\n", kind, counts[kind])
	}
	return nil
}
