// Package source discovers parseable source files under a repository root.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/codegraph/internal/graph"
)

// extToLanguage maps file extensions to graph.Language.
var extToLanguage = map[string]graph.Language{
	".go":  graph.LangGo,
	".py":  graph.LangPython,
	".ts":  graph.LangTypeScript,
	".tsx": graph.LangTypeScript,
	".rs":  graph.LangRust,
}

// defaultExcludeDirs are directory names skipped in every walk regardless of
// configuration. They hold build output or vendored code, never first-party
// sources.
var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	"dist":         true,
}

// Options controls a discovery walk.
type Options struct {
	// Languages restricts discovery to the given languages. Empty means all
	// supported languages.
	Languages []graph.Language

	// ExcludeDirs lists directory names to skip in addition to the defaults.
	ExcludeDirs []string

	// HonorGitignore applies the repository root's .gitignore, if present,
	// on top of the directory exclusions.
	HonorGitignore bool
}

// Discover walks root and returns the source files to index, with contents
// loaded and paths made relative to root (slash-separated). The result is
// sorted by path so downstream processing sees a stable order.
func Discover(root string, opts Options) ([]graph.SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("access root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	allowed := make(map[graph.Language]bool)
	if len(opts.Languages) == 0 {
		for _, l := range graph.SupportedLanguages {
			allowed[l] = true
		}
	} else {
		for _, l := range opts.Languages {
			allowed[graph.Language(strings.ToLower(string(l)))] = true
		}
	}

	excludeSet := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excludeSet[d] = true
	}

	var ignore *gitignore.GitIgnore
	if opts.HonorGitignore {
		ignorePath := filepath.Join(root, ".gitignore")
		if _, statErr := os.Stat(ignorePath); statErr == nil {
			ignore, err = gitignore.CompileIgnoreFile(ignorePath)
			if err != nil {
				return nil, fmt.Errorf("parse .gitignore: %w", err)
			}
		}
	}

	var files []graph.SourceFile

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			name := d.Name()
			if defaultExcludeDirs[name] || excludeSet[name] {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := extToLanguage[filepath.Ext(path)]
		if !ok || !allowed[lang] {
			return nil
		}
		if ignore != nil && ignore.MatchesPath(relPath) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil // skip unreadable files
		}

		files = append(files, graph.SourceFile{
			Path:     relPath,
			Language: lang,
			Content:  content,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk: %w", walkErr)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
