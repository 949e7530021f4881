package graph

import "context"

// FileExtraction holds everything extracted from a single source file:
// the file record, its entities in declaration order, the raw reference
// mentions (callee and superclass names attributed to their enclosing
// entity), and the raw import specifiers.
type FileExtraction struct {
	File     FileRecord  `json:"file"`
	Entities []Entity    `json:"entities"`
	Refs     []Reference `json:"refs"`
	Imports  []ImportRef `json:"imports"`
}

// Parser extracts structural information from source files.
// Implementations: TreeSitterParser (production), stub parsers in tests.
type Parser interface {
	// Parse extracts entities and raw references from a single source file.
	// source is the file content. lang determines which grammar to use.
	Parse(ctx context.Context, path string, source []byte, lang Language) (*FileExtraction, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources (tree-sitter C memory).
	Close() error
}
