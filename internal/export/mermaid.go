package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/codegraph/internal/graph"
)

// MermaidDependencyTree renders a derived dependency tree as a Mermaid
// graph TD. Entities are grouped into a subgraph per declaring file; file
// nodes sit outside the subgraphs. Tree edges become arrows and cross-links
// become dotted arrows, so cycles and diamond joins stay visible without
// duplicating nodes.
func MermaidDependencyTree(g *graph.Graph, tree *graph.Tree) string {
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	// Group entity nodes by declaring file, in tree order.
	byFile := make(map[string][]graph.TreeNode)
	var fileOrder []string
	var fileNodes []graph.TreeNode
	for _, n := range tree.Nodes {
		if n.Kind == "file" {
			fileNodes = append(fileNodes, n)
			continue
		}
		ent, ok := g.Entity(n.ID)
		if !ok {
			continue
		}
		if _, seen := byFile[ent.FilePath]; !seen {
			fileOrder = append(fileOrder, ent.FilePath)
		}
		byFile[ent.FilePath] = append(byFile[ent.FilePath], n)
	}
	sort.Strings(fileOrder)

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range fileNodes {
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(n.ID), escapeLabel(shortPath(n.Label))))
	}

	for _, fp := range fileOrder {
		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(fp+"#cluster"), shortPath(fp)))
		for _, n := range byFile[fp] {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(n.ID), escapeLabel(n.Label)))
		}
		sb.WriteString("  end\n")
	}

	writeTreeEdges(&sb, tree, getID)

	if tree.Truncated {
		sb.WriteString("  %% truncated\n")
	}
	return sb.String()
}

// MermaidClassHierarchy renders a derived inheritance forest as a Mermaid
// graph TD with parent-above-child arrows.
func MermaidClassHierarchy(tree *graph.Tree) string {
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(key string) string {
		if id, ok := nodeIDs[key]; ok {
			return id
		}
		id := fmt.Sprintf("C%d", nextID)
		nextID++
		nodeIDs[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, n := range tree.Nodes {
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(n.ID), escapeLabel(n.Label)))
	}
	writeTreeEdges(&sb, tree, getID)
	return sb.String()
}

// writeTreeEdges emits parent->child arrows and dotted cross-link arrows.
func writeTreeEdges(sb *strings.Builder, tree *graph.Tree, getID func(string) string) {
	for _, n := range tree.Nodes {
		if n.Parent != "" {
			sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(n.Parent), getID(n.ID)))
		}
	}
	for _, n := range tree.Nodes {
		for _, cl := range n.CrossLinks {
			sb.WriteString(fmt.Sprintf("  %s -.-> %s\n", getID(n.ID), getID(cl)))
		}
	}
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// escapeLabel makes a label safe inside a Mermaid quoted node label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
