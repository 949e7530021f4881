package main

import (
	"fmt"

	"github.com/dusk-indust/codegraph/internal/status"
)

// runStatus reports the persisted graph artifacts of the repository.
func runStatus(flags cliFlags) error {
	st, err := status.Inspect(flags.RepoPath)
	if err != nil {
		return fmt.Errorf("inspect artifacts: %w", err)
	}

	if !st.HasGraph() {
		fmt.Printf("no graph built for %s (run: codegraph analyze)\n", flags.RepoPath)
		return nil
	}

	if st.JSONPath != "" {
		fmt.Printf("export:    %s\n", st.JSONPath)
		if st.ExportedAt != "" {
			fmt.Printf("exported:  %s\n", st.ExportedAt)
		}
		fmt.Printf("files:     %d\n", st.Stats.FileCount)
		fmt.Printf("entities:  %d\n", st.Stats.EntityCount)
		fmt.Printf("edges:     %d\n", st.Stats.EdgeCount)
		if st.Stale {
			fmt.Println("stale:     sources changed since export, rerun analyze")
		}
	}
	if st.DBPath != "" {
		fmt.Printf("database:  %s\n", st.DBPath)
	}
	return nil
}
