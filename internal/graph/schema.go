package graph

// --- Enums ---

// EntityKind classifies named code units extracted from source files.
type EntityKind string

const (
	EntityKindFunction EntityKind = "function"
	EntityKindMethod   EntityKind = "method"
	EntityKindClass    EntityKind = "class"
)

// EdgeKind classifies directed relationships between entities and files.
type EdgeKind string

const (
	EdgeKindCalls    EdgeKind = "calls"
	EdgeKindInherits EdgeKind = "inherits"
	EdgeKindImports  EdgeKind = "imports"
)

// External is the sentinel edge target used when a reference cannot be
// resolved to any entity or file in the analyzed repository (builtins,
// third-party symbols, stdlib imports).
const External = "external"

// RefKind classifies a raw reference mention produced by an extractor.
type RefKind string

const (
	RefKindCall    RefKind = "call"
	RefKindInherit RefKind = "inherit"
)

// Language identifies a programming language for parsing.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// SupportedLanguages are the grammars registered with the tree-sitter parser.
var SupportedLanguages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// --- Models ---

// SourceFile is one input tuple handed in by the file-discovery layer:
// a repo-relative path, the detected language, and the raw content.
type SourceFile struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	Content  []byte   `json:"-"`
}

// FileRecord represents an analyzed source file in the graph.
type FileRecord struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	LOC      int      `json:"loc"`
}

// Entity represents a named code unit (function, method, or class).
// ID is "filePath::qualifiedName" where the qualified name of a method is
// "Class.method"; IDs are unique within a graph.
type Entity struct {
	ID          string     `json:"id"`
	Kind        EntityKind `json:"kind"`
	Name        string     `json:"name"`
	FilePath    string     `json:"filePath"`
	StartLine   int        `json:"startLine"`
	EndLine     int        `json:"endLine"`
	Language    Language   `json:"language"`
	ParentClass string     `json:"parentClass,omitempty"` // entity ID of the owning class, methods only
	Signature   string     `json:"signature,omitempty"`   // raw parameter/return text, best-effort
}

// Edge represents a directed relationship. FromID is always a known entity ID
// (calls, inherits) or a known file path (imports); ToID is a known entity ID,
// a known file path, or the External sentinel.
type Edge struct {
	FromID string   `json:"fromId"`
	ToID   string   `json:"toId"`
	Kind   EdgeKind `json:"kind"`
}

// Reference is a raw, unresolved mention recorded during extraction: a callee
// or superclass name together with the enclosing entity and the line of the
// mention. References are consumed by the resolver and not stored in the graph.
type Reference struct {
	FromID string  `json:"fromId"`
	Name   string  `json:"name"`
	Line   int     `json:"line"`
	Kind   RefKind `json:"kind"`
}

// ImportRef is a raw import specifier recorded during extraction, before
// resolution to a repository file.
type ImportRef struct {
	FromPath string `json:"fromPath"`
	Spec     string `json:"spec"`
	Line     int    `json:"line"`
}

// GraphStats summarizes an assembled graph.
type GraphStats struct {
	FileCount     int `json:"fileCount"`
	EntityCount   int `json:"entityCount"`
	EdgeCount     int `json:"edgeCount"`
	ExternalCount int `json:"externalCount"` // edges targeting the External sentinel
}

// EntityID builds the stable identifier for an entity. parentClass is the
// unqualified class name for methods and "" otherwise.
func EntityID(filePath, parentClass, name string) string {
	if parentClass != "" {
		return filePath + "::" + parentClass + "." + name
	}
	return filePath + "::" + name
}
