//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/codegraph/internal/graph"
)

// persistToKuzu requires the CGO build of codegraph; the KuzuDB driver
// wraps a C library.
func persistToKuzu(_ *graph.Graph, _ string) error {
	return fmt.Errorf("graph persistence requires a CGO-enabled build")
}

// loadFromKuzu requires the CGO build of codegraph.
func loadFromKuzu(_ string) (*graph.Graph, error) {
	return nil, fmt.Errorf("graph persistence requires a CGO-enabled build")
}
