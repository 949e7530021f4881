package graph

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResolveOptions configures reference resolution.
type ResolveOptions struct {
	// Builtins are names that are never resolved: a call mention of a
	// builtin produces no edge and no diagnostic. Callers typically pass
	// DefaultBuiltins; empty means no filtering.
	Builtins map[string]bool

	// RepoRoot is consulted for module metadata (go.mod) when resolving
	// import specifiers. May be empty.
	RepoRoot string
}

// Resolver turns raw reference mentions and import specifiers into the edge
// list, applying a fixed policy per mention: same-file match, then
// import-context match, then unique-name match, then ambiguous fan-out,
// then the External sentinel. It is built once per graph assembly and holds
// no state that outlives resolution.
type Resolver struct {
	idx       *SymbolIndex
	fileSet   map[string]bool
	dirIndex  map[string][]string
	language  map[string]Language // file path -> language
	goModPath string
	opts      ResolveOptions
}

// ResolveOutput is the edge list plus the diagnostics accumulated while
// producing it.
type ResolveOutput struct {
	Edges       []Edge
	Diagnostics []Diagnostic
}

// NewResolver builds a Resolver over the extracted files and the global
// symbol index.
func NewResolver(idx *SymbolIndex, extractions []FileExtraction, opts ResolveOptions) *Resolver {
	r := &Resolver{
		idx:      idx,
		fileSet:  make(map[string]bool, len(extractions)),
		dirIndex: make(map[string][]string),
		language: make(map[string]Language, len(extractions)),
		opts:     opts,
	}
	for _, ext := range extractions {
		p := ext.File.Path
		r.fileSet[p] = true
		r.language[p] = ext.File.Language
		dir := filepath.Dir(p)
		r.dirIndex[dir] = append(r.dirIndex[dir], p)
	}
	r.scanGoMod()
	return r
}

// Resolve produces the full edge list for the graph: one imports edge per
// import specifier and one or more calls/inherits edges per reference
// mention. Identical edges are emitted once. Cycles are not detected here;
// mutually recursive calls and circular imports are valid edges.
func (r *Resolver) Resolve(extractions []FileExtraction) *ResolveOutput {
	out := &ResolveOutput{}
	seen := make(map[Edge]bool)

	add := func(e Edge) {
		if !seen[e] {
			seen[e] = true
			out.Edges = append(out.Edges, e)
		}
	}

	// fileImports feeds the import-context rule: which repo files does each
	// file pull in. Built during import-edge resolution, before any
	// reference is resolved.
	fileImports := make(map[string]map[string]bool)

	for _, ext := range extractions {
		for _, imp := range ext.Imports {
			target, ok := r.resolveImport(imp)
			if !ok {
				target = External
			} else {
				if fileImports[imp.FromPath] == nil {
					fileImports[imp.FromPath] = make(map[string]bool)
				}
				fileImports[imp.FromPath][target] = true
			}
			add(Edge{FromID: imp.FromPath, ToID: target, Kind: EdgeKindImports})
		}
	}

	for _, ext := range extractions {
		for _, ref := range ext.Refs {
			if r.opts.Builtins[ref.Name] {
				continue
			}
			from, ok := r.idx.Entity(ref.FromID)
			if !ok {
				// The enclosing entity was dropped (duplicate anomaly) or the
				// mention was attached to an undeclared receiver type.
				continue
			}

			kind := EdgeKindCalls
			if ref.Kind == RefKindInherit {
				kind = EdgeKindInherits
			}

			targets, diag := r.resolveName(ref, from, fileImports[from.FilePath])
			if diag != nil {
				out.Diagnostics = append(out.Diagnostics, *diag)
			}
			for _, t := range targets {
				if t == ref.FromID {
					// Direct recursion still counts as an edge; only drop
					// self-edges created by name shadowing of classes.
					if kind == EdgeKindInherits {
						continue
					}
				}
				add(Edge{FromID: ref.FromID, ToID: t, Kind: kind})
			}
		}
	}

	return out
}

// resolveName applies the resolution policy to one mention and returns the
// target IDs plus an optional diagnostic.
//
//  1. Same-file match: the enclosing entity's file declares the name. When
//     the file declares it more than once, every local candidate gets an
//     edge and the precision loss is reported.
//  2. Import-context match: exactly one candidate lives in a file the
//     referencing file imports.
//  3. Unique-name match: exactly one candidate repo-wide.
//  4. Ambiguous: every candidate, recorded as a precision-loss diagnostic.
//  5. No match: the External sentinel.
func (r *Resolver) resolveName(ref Reference, from Entity, imported map[string]bool) ([]string, *Diagnostic) {
	if local := r.idx.CandidatesInFile(ref.Name, from.FilePath); len(local) > 0 {
		if len(local) > 1 {
			return local, &Diagnostic{
				Kind:     DiagAmbiguousReference,
				FilePath: from.FilePath,
				Subject:  ref.Name,
				Detail:   "resolved to all candidates",
			}
		}
		return local, nil
	}

	candidates := r.idx.Candidates(ref.Name)
	if len(candidates) == 0 {
		return []string{External}, &Diagnostic{
			Kind:     DiagUnresolvedReference,
			FilePath: from.FilePath,
			Subject:  ref.Name,
		}
	}

	if len(imported) > 0 {
		var viaImport []string
		for _, id := range candidates {
			ent, _ := r.idx.Entity(id)
			if imported[ent.FilePath] {
				viaImport = append(viaImport, id)
			}
		}
		if len(viaImport) == 1 {
			return viaImport, nil
		}
	}

	if len(candidates) == 1 {
		return candidates, nil
	}

	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)
	return sorted, &Diagnostic{
		Kind:     DiagAmbiguousReference,
		FilePath: from.FilePath,
		Subject:  ref.Name,
		Detail:   "resolved to all candidates",
	}
}

// --- Import specifier resolution ---

// resolveImport maps a raw import specifier to a repo-relative file path.
// Unresolvable specifiers (stdlib, third-party) report ok=false and become
// imports edges to the External sentinel.
func (r *Resolver) resolveImport(imp ImportRef) (string, bool) {
	switch r.language[imp.FromPath] {
	case LangGo:
		return r.resolveGo(imp.Spec)
	case LangPython:
		return r.resolvePython(imp.Spec, imp.FromPath)
	case LangTypeScript:
		return r.resolveTS(imp.Spec, imp.FromPath)
	case LangRust:
		return r.resolveRust(imp.Spec, imp.FromPath)
	default:
		return "", false
	}
}

func (r *Resolver) resolveGo(importPath string) (string, bool) {
	if r.goModPath == "" || !strings.HasPrefix(importPath, r.goModPath) {
		return "", false // stdlib or external module
	}

	relDir := strings.TrimPrefix(importPath, r.goModPath)
	relDir = strings.TrimPrefix(relDir, "/")
	if relDir == "" {
		relDir = "."
	}

	files := r.dirIndex[relDir]
	if len(files) == 0 {
		return "", false
	}
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)
	for _, f := range sorted {
		if strings.HasSuffix(f, ".go") && !strings.HasSuffix(f, "_test.go") {
			return f, true
		}
	}
	return "", false
}

func (r *Resolver) resolvePython(importPath, sourceFile string) (string, bool) {
	if strings.HasPrefix(importPath, ".") {
		// Relative import: leading dots walk up from the source directory.
		dots := 0
		for _, c := range importPath {
			if c != '.' {
				break
			}
			dots++
		}
		baseDir := filepath.Dir(sourceFile)
		for i := 1; i < dots; i++ {
			baseDir = filepath.Dir(baseDir)
		}
		modulePart := importPath[dots:]
		if modulePart == "" {
			return r.probeFile(filepath.Join(baseDir, "__init__"), []string{".py"})
		}
		rel := strings.ReplaceAll(modulePart, ".", "/")
		return r.probeFile(filepath.Join(baseDir, rel), []string{".py", "/__init__.py"})
	}

	// Absolute import: resolvable only if the dotted path names a repo file
	// from the root (top-level package layout).
	rel := strings.ReplaceAll(importPath, ".", "/")
	return r.probeFile(rel, []string{".py", "/__init__.py"})
}

var tsExtensions = []string{".ts", ".tsx", ".js", ".jsx", "/index.ts", "/index.tsx", "/index.js"}

func (r *Resolver) resolveTS(importPath, sourceFile string) (string, bool) {
	if !strings.HasPrefix(importPath, "./") && !strings.HasPrefix(importPath, "../") {
		return "", false // bare specifier: external package
	}
	base := filepath.Clean(filepath.Join(filepath.Dir(sourceFile), importPath))
	return r.probeFile(base, tsExtensions)
}

func (r *Resolver) resolveRust(importPath, sourceFile string) (string, bool) {
	// Strip use-list braces: "crate::model::{Repository, User}" -> "crate::model".
	if idx := strings.Index(importPath, "::{"); idx != -1 {
		importPath = importPath[:idx]
	}

	probe := func(baseDir, modulePath string) (string, bool) {
		rel := strings.ReplaceAll(modulePath, "::", "/")
		return r.probeFile(filepath.Join(baseDir, rel), []string{".rs", "/mod.rs"})
	}

	switch {
	case strings.HasPrefix(importPath, "crate::"):
		modulePath := strings.TrimPrefix(importPath, "crate::")
		for _, baseDir := range []string{"src", ".", rsCrateRoot(sourceFile)} {
			if baseDir == "" {
				continue
			}
			if resolved, ok := probe(baseDir, modulePath); ok {
				return resolved, true
			}
		}
		return "", false
	case strings.HasPrefix(importPath, "self::"):
		return probe(filepath.Dir(sourceFile), strings.TrimPrefix(importPath, "self::"))
	case strings.HasPrefix(importPath, "super::"):
		return probe(filepath.Dir(filepath.Dir(sourceFile)), strings.TrimPrefix(importPath, "super::"))
	default:
		return "", false // external crate
	}
}

// rsCrateRoot walks up from a file path to the nearest "src" directory.
func rsCrateRoot(filePath string) string {
	dir := filepath.Dir(filePath)
	for dir != "." && dir != "/" && dir != "" {
		if filepath.Base(dir) == "src" {
			return dir
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// probeFile checks whether basePath (with any of the given extensions
// appended) names a known file. No filesystem I/O.
func (r *Resolver) probeFile(basePath string, extensions []string) (string, bool) {
	if r.fileSet[basePath] {
		return basePath, true
	}
	for _, ext := range extensions {
		if candidate := basePath + ext; r.fileSet[candidate] {
			return candidate, true
		}
	}
	return "", false
}

// scanGoMod reads the module path from go.mod at the repo root, if present.
func (r *Resolver) scanGoMod() {
	if r.opts.RepoRoot == "" {
		return
	}
	f, err := os.Open(filepath.Join(r.opts.RepoRoot, "go.mod"))
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			r.goModPath = strings.TrimSpace(strings.TrimPrefix(line, "module"))
			return
		}
	}
}
