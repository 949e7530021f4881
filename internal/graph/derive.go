package graph

import (
	"fmt"
	"sort"
)

// DeriveOptions bounds a derivation. It is passed explicitly per call so
// two derivations with different bounds can run concurrently over the same
// frozen graph.
type DeriveOptions struct {
	// MaxDepth limits how deep the traversal expands below a root.
	// Zero or negative means DefaultMaxDepth.
	MaxDepth int

	// MaxNodes limits the total node count of the derived structure.
	// Zero or negative means DefaultMaxNodes.
	MaxNodes int

	// Roots overrides entry-point detection for the dependency tree with an
	// explicit list of file paths.
	Roots []string
}

const (
	DefaultMaxDepth = 10
	DefaultMaxNodes = 500
)

// TreeNode is one rendered node of a derived structure. Parent is the node
// ID it was first reached from ("" for roots); CrossLinks point at nodes
// that were already rendered when this node linked to them: back-edges and
// diamond joins appear here instead of being re-expanded.
type TreeNode struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Kind       string   `json:"kind"` // "file" or an entity kind
	Parent     string   `json:"parent,omitempty"`
	Depth      int      `json:"depth"`
	CrossLinks []string `json:"crossLinks,omitempty"`
}

// Tree is a bounded, cycle-safe derived view ready for rendering.
type Tree struct {
	Nodes       []TreeNode   `json:"nodes"`
	Truncated   bool         `json:"truncated"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// --- Dependency tree ---

// DependencyTree derives a rooted traversal over imports and calls edges.
// Entry points are files with no incoming imports edge (or opts.Roots).
// A file expands into the entities it declares (methods under their class)
// and the files it imports; a function or method expands into its resolved
// callees. The traversal is an explicit iterative depth-first walk with a
// visited set keyed by node ID, so it terminates on cyclic graphs; depth
// and node bounds stop it early with a reported truncation.
func (g *Graph) DependencyTree(opts DeriveOptions) *Tree {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	roots := opts.Roots
	if len(roots) == 0 {
		roots = g.entryPoints()
	}

	tree := &Tree{}
	visited := make(map[string]bool)
	nodeIdx := make(map[string]int) // node ID -> index in tree.Nodes
	truncatedDepth := false

	type frame struct {
		id     string
		parent string
		depth  int
	}

	// Stack seeded in reverse so roots pop in sorted order.
	var stack []frame
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[f.id] {
			// Already rendered once: record a cross-link on the node that
			// reached it again instead of expanding it a second time.
			if f.parent != "" {
				if idx, ok := nodeIdx[f.parent]; ok {
					tree.Nodes[idx].CrossLinks = append(tree.Nodes[idx].CrossLinks, f.id)
				}
			}
			continue
		}

		if len(tree.Nodes) >= maxNodes {
			tree.Truncated = true
			tree.Diagnostics = append(tree.Diagnostics, Diagnostic{
				Kind:   DiagTruncation,
				Detail: fmt.Sprintf("node limit %d reached", maxNodes),
			})
			break
		}

		visited[f.id] = true
		nodeIdx[f.id] = len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, TreeNode{
			ID:     f.id,
			Label:  g.nodeLabel(f.id),
			Kind:   g.nodeKind(f.id),
			Parent: f.parent,
			Depth:  f.depth,
		})

		if f.depth >= maxDepth {
			if len(g.dependencyChildren(f.id)) > 0 {
				truncatedDepth = true
			}
			continue
		}

		children := g.dependencyChildren(f.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: children[i], parent: f.id, depth: f.depth + 1})
		}
	}

	if truncatedDepth {
		tree.Truncated = true
		tree.Diagnostics = append(tree.Diagnostics, Diagnostic{
			Kind:   DiagTruncation,
			Detail: fmt.Sprintf("depth limit %d reached", maxDepth),
		})
	}

	return tree
}

// entryPoints returns the files with no incoming imports edge, sorted.
// If every file is imported (one big import cycle), all files become
// entry points so the tree is never empty.
func (g *Graph) entryPoints() []string {
	imported := make(map[string]bool)
	for _, e := range g.edges {
		if e.Kind == EdgeKindImports && e.ToID != External {
			imported[e.ToID] = true
		}
	}
	var roots []string
	for _, f := range g.files {
		if !imported[f.Path] {
			roots = append(roots, f.Path)
		}
	}
	if len(roots) == 0 {
		for _, f := range g.files {
			roots = append(roots, f.Path)
		}
	}
	sort.Strings(roots)
	return roots
}

// dependencyChildren returns the sorted expansion of one node: for a file,
// its top-level entities then its imported files; for a class, its methods;
// for a function or method, its resolved callees.
func (g *Graph) dependencyChildren(id string) []string {
	if _, isFile := g.fileByKey[id]; isFile {
		var children []string
		for _, ent := range g.byFile[id] {
			if ent.Kind == EntityKindMethod && ent.ParentClass != "" {
				continue // reached through its class
			}
			children = append(children, ent.ID)
		}
		var imports []string
		for _, e := range g.edges {
			if e.Kind == EdgeKindImports && e.FromID == id && e.ToID != External {
				imports = append(imports, e.ToID)
			}
		}
		sort.Strings(imports)
		return append(children, imports...)
	}

	ent, ok := g.byID[id]
	if !ok {
		return nil
	}

	if ent.Kind == EntityKindClass {
		var methods []string
		for _, m := range g.byFile[ent.FilePath] {
			if m.ParentClass == id {
				methods = append(methods, m.ID)
			}
		}
		return methods
	}

	var callees []string
	for _, e := range g.edges {
		if e.Kind == EdgeKindCalls && e.FromID == id && e.ToID != External {
			callees = append(callees, e.ToID)
		}
	}
	sort.Strings(callees)
	return callees
}

func (g *Graph) nodeLabel(id string) string {
	if ent, ok := g.byID[id]; ok {
		return ent.Name
	}
	return id
}

func (g *Graph) nodeKind(id string) string {
	if ent, ok := g.byID[id]; ok {
		return string(ent.Kind)
	}
	return "file"
}

// --- Class hierarchy forest ---

// ClassHierarchy derives the inheritance forest from inherits edges.
// Inheritance cycles are a data anomaly: they are detected with the same
// visited-set technique, reported as diagnostics, and the closing edge is
// excluded from the forest. The raw graph keeps every inherits edge.
// Diamond inheritance renders the shared ancestor once, with the second
// parent link recorded as a cross-link.
func (g *Graph) ClassHierarchy() *Tree {
	// parents: class -> resolved parent classes, child -> parent direction.
	parents := make(map[string][]string)
	for _, e := range g.edges {
		if e.Kind != EdgeKindInherits || e.ToID == External {
			continue
		}
		parents[e.FromID] = append(parents[e.FromID], e.ToID)
	}
	for id := range parents {
		sort.Strings(parents[id])
	}

	tree := &Tree{}
	excluded := g.excludeInheritanceCycles(parents, tree)

	// children: parent -> child classes over the surviving edges.
	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	for child, ps := range parents {
		for _, p := range ps {
			if excluded[[2]string{child, p}] {
				continue
			}
			children[p] = append(children[p], child)
			hasParent[child] = true
		}
	}
	for id := range children {
		sort.Strings(children[id])
	}

	// Roots: classes without a surviving parent, sorted for determinism.
	var roots []string
	for _, ent := range g.entities {
		if ent.Kind == EntityKindClass && !hasParent[ent.ID] {
			roots = append(roots, ent.ID)
		}
	}
	sort.Strings(roots)

	type frame struct {
		id     string
		parent string
		depth  int
	}
	visited := make(map[string]bool)
	nodeIdx := make(map[string]int)

	var stack []frame
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[f.id] {
			if f.parent != "" {
				if idx, ok := nodeIdx[f.parent]; ok {
					tree.Nodes[idx].CrossLinks = append(tree.Nodes[idx].CrossLinks, f.id)
				}
			}
			continue
		}

		visited[f.id] = true
		nodeIdx[f.id] = len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, TreeNode{
			ID:     f.id,
			Label:  g.nodeLabel(f.id),
			Kind:   string(EntityKindClass),
			Parent: f.parent,
			Depth:  f.depth,
		})

		kids := children[f.id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], parent: f.id, depth: f.depth + 1})
		}
	}

	return tree
}

// excludeInheritanceCycles finds cycles in the child->parent relation using
// an iterative depth-first walk with three-state marking. For each cycle the
// closing edge (the one leading back onto the current path) is excluded and
// a diagnostic is recorded on the derived tree.
func (g *Graph) excludeInheritanceCycles(parents map[string][]string, tree *Tree) map[[2]string]bool {
	excluded := make(map[[2]string]bool)

	const (
		white = 0 // unvisited
		grey  = 1 // on the current path
		black = 2 // fully explored
	)
	color := make(map[string]int)

	starts := make([]string, 0, len(parents))
	for id := range parents {
		starts = append(starts, id)
	}
	sort.Strings(starts)

	type frame struct {
		id   string
		next int
	}

	for _, start := range starts {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = grey

		for len(stack) > 0 {
			top := len(stack) - 1
			id := stack[top].id
			ps := parents[id]

			if stack[top].next >= len(ps) {
				color[id] = black
				stack = stack[:top]
				continue
			}

			p := ps[stack[top].next]
			stack[top].next++

			switch color[p] {
			case grey:
				excluded[[2]string{id, p}] = true
				tree.Diagnostics = append(tree.Diagnostics, Diagnostic{
					Kind:    DiagCyclicInheritance,
					Subject: id,
					Detail:  fmt.Sprintf("inheritance cycle via %s, edge excluded from forest", p),
				})
			case white:
				color[p] = grey
				stack = append(stack, frame{id: p})
			}
		}
	}

	return excluded
}
