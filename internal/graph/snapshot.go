package graph

// Snapshot is the serializable form of a graph: the complete field set of
// every file, entity, edge, and diagnostic. A snapshot written and read
// back reconstructs an identical graph.
type Snapshot struct {
	Files       []FileRecord `json:"files"`
	Entities    []Entity     `json:"entities"`
	Edges       []Edge       `json:"edges"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Stats       GraphStats   `json:"stats"`
}

// Snapshot captures the graph's full state for persistence.
func (g *Graph) Snapshot() *Snapshot {
	return &Snapshot{
		Files:       g.Files(),
		Entities:    append([]Entity(nil), g.entities...),
		Edges:       g.Edges(),
		Diagnostics: g.Diagnostics(),
		Stats:       g.Stats(),
	}
}

// FromSnapshot reconstructs a frozen graph from a snapshot, rebuilding the
// lookup indexes and re-validating the edge invariant.
func FromSnapshot(s *Snapshot) (*Graph, error) {
	g := &Graph{
		byID:      make(map[string]Entity, len(s.Entities)),
		byFile:    make(map[string][]Entity),
		fileByKey: make(map[string]FileRecord, len(s.Files)),
	}
	for _, f := range s.Files {
		g.files = append(g.files, f)
		g.fileByKey[f.Path] = f
	}
	for _, ent := range s.Entities {
		g.entities = append(g.entities, ent)
		g.byID[ent.ID] = ent
		g.byFile[ent.FilePath] = append(g.byFile[ent.FilePath], ent)
	}
	for _, e := range s.Edges {
		if err := g.checkEdge(e); err != nil {
			return nil, err
		}
		g.edges = append(g.edges, e)
	}
	g.diagnostics = append(g.diagnostics, s.Diagnostics...)
	return g, nil
}
