//go:build cgo

package main

import "github.com/dusk-indust/codegraph/internal/graph"

// persistToKuzu saves the graph into a file-based KuzuDB at dbPath.
func persistToKuzu(g *graph.Graph, dbPath string) error {
	store, err := graph.NewKuzuFileStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		return err
	}
	return store.SaveGraph(g)
}

// loadFromKuzu reconstructs a graph from a previously persisted KuzuDB.
func loadFromKuzu(dbPath string) (*graph.Graph, error) {
	store, err := graph.NewKuzuFileStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.LoadGraph()
}
