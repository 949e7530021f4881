package graph

import "sort"

// SymbolIndex maps an unqualified entity name to the candidate entity IDs
// carrying that name anywhere in the repository. It is built once after the
// extraction barrier, consumed by the resolver, and discarded; it is not
// part of the assembled graph.
type SymbolIndex struct {
	byName map[string][]string
	byID   map[string]Entity
}

// BuildSymbolIndex indexes every entity from every extraction. Candidate
// lists are sorted so resolution output is deterministic.
func BuildSymbolIndex(extractions []FileExtraction) *SymbolIndex {
	idx := &SymbolIndex{
		byName: make(map[string][]string),
		byID:   make(map[string]Entity),
	}
	for _, ext := range extractions {
		for _, ent := range ext.Entities {
			idx.byName[ent.Name] = append(idx.byName[ent.Name], ent.ID)
			idx.byID[ent.ID] = ent
		}
	}
	for name := range idx.byName {
		sort.Strings(idx.byName[name])
	}
	return idx
}

// Candidates returns the sorted entity IDs declared with the given name,
// or nil if the name is unknown.
func (idx *SymbolIndex) Candidates(name string) []string {
	return idx.byName[name]
}

// Entity returns the entity for an ID and whether it exists.
func (idx *SymbolIndex) Entity(id string) (Entity, bool) {
	ent, ok := idx.byID[id]
	return ent, ok
}

// CandidatesInFile returns the subset of Candidates(name) declared in the
// given file, preserving sorted order.
func (idx *SymbolIndex) CandidatesInFile(name, filePath string) []string {
	var out []string
	for _, id := range idx.byName[name] {
		if idx.byID[id].FilePath == filePath {
			out = append(out, id)
		}
	}
	return out
}
