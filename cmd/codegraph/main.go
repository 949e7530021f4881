package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dusk-indust/codegraph/internal/config"
	"github.com/dusk-indust/codegraph/internal/graph"
	"github.com/dusk-indust/codegraph/internal/mcptools"
)

// CLI flags parsed from command line.
type cliFlags struct {
	RepoPath    string
	Languages   string
	ExcludeDirs string
	Gitignore   bool
	MaxDepth    int
	MaxNodes    int
	Concurrency int
	Format      string
	DBPath      string
	HTTPAddr    string
	ServeMCP    bool
	Verbose     bool
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("codegraph", flag.ContinueOnError)
	fs.StringVar(&flags.RepoPath, "repo", ".", "path to the repository to index")
	fs.StringVar(&flags.Languages, "languages", "", "comma-separated languages to index (default: all supported)")
	fs.StringVar(&flags.ExcludeDirs, "exclude", "", "comma-separated directory names to skip")
	fs.BoolVar(&flags.Gitignore, "gitignore", false, "apply the repository's .gitignore during discovery")
	fs.IntVar(&flags.MaxDepth, "max-depth", 0, "derivation depth limit (default 10)")
	fs.IntVar(&flags.MaxNodes, "max-nodes", 0, "derivation node limit (default 500)")
	fs.IntVar(&flags.Concurrency, "concurrency", 0, "parallel file extraction limit (default: GOMAXPROCS)")
	fs.StringVar(&flags.Format, "format", "json", "diagram output format: json or mermaid")
	fs.StringVar(&flags.DBPath, "db", "", "KuzuDB path to persist or load the graph")
	fs.StringVar(&flags.HTTPAddr, "http", "", "serve MCP over HTTP on this address instead of stdio")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: codegraph [flags] [analyze|deps|classes|stats|status]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load(flags.RepoPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyConfig(&flags, cfg)

	ctx := context.Background()

	if flags.ServeMCP {
		return runServeMCP(ctx, flags)
	}

	cmd := "analyze"
	if fs.NArg() > 0 {
		cmd = fs.Arg(0)
	}

	switch cmd {
	case "analyze":
		return runAnalyze(ctx, flags, cfg)
	case "deps":
		return runDeps(ctx, flags, cfg)
	case "classes":
		return runClasses(ctx, flags, cfg)
	case "stats":
		return runStats(ctx, flags, cfg)
	case "status":
		return runStatus(flags)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// applyConfig fills flag zero values from the project config file. Flags
// given on the command line win.
func applyConfig(flags *cliFlags, cfg *config.ProjectConfig) {
	if flags.Languages == "" && len(cfg.Languages) > 0 {
		flags.Languages = strings.Join(cfg.Languages, ",")
	}
	if flags.ExcludeDirs == "" && len(cfg.ExcludeDirs) > 0 {
		flags.ExcludeDirs = strings.Join(cfg.ExcludeDirs, ",")
	}
	if !flags.Gitignore {
		flags.Gitignore = cfg.HonorGitignore
	}
	if flags.MaxDepth == 0 {
		flags.MaxDepth = cfg.MaxDepth
	}
	if flags.MaxNodes == 0 {
		flags.MaxNodes = cfg.MaxNodes
	}
	if flags.Concurrency == 0 {
		flags.Concurrency = cfg.Concurrency
	}
	if flags.DBPath == "" {
		flags.DBPath = cfg.GraphDBPath
	}
	if !flags.Verbose {
		flags.Verbose = cfg.Verbose
	}
}

// splitList splits a comma-separated flag value, ignoring empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runServeMCP(ctx context.Context, flags cliFlags) error {
	parser := graph.NewTreeSitterParser()
	defer parser.Close()

	svc := mcptools.NewCodeGraphService(parser)
	svc.SetProjectRoot(flags.RepoPath)

	if flags.HTTPAddr != "" {
		fmt.Fprintf(os.Stderr, "codegraph MCP server listening on %s\n", flags.HTTPAddr)
		return mcptools.RunMCPServer(ctx, svc, flags.HTTPAddr)
	}
	return mcptools.RunMCPServerStdio(ctx, svc)
}
