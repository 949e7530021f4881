package graph

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ExtractOptions controls the extraction fan-out.
type ExtractOptions struct {
	// Concurrency bounds the number of files parsed in parallel.
	// Zero means one worker per CPU.
	Concurrency int
}

// ExtractResult is the merged output of extracting a set of source files.
// Extractions are sorted by file path so entity ordering is reproducible
// regardless of which goroutine finished first.
type ExtractResult struct {
	Extractions []FileExtraction
	Diagnostics []Diagnostic
}

// ExtractAll parses every source file concurrently, one task per file.
// Files share no mutable state during extraction, so no locking is needed;
// each goroutine writes only its own result slot. A file that fails to
// parse (or whose context is canceled mid-parse) contributes nothing except
// a parse_failure diagnostic; extraction of the remaining files proceeds.
//
// ExtractAll returns only when every task has finished: the caller can
// build the symbol index immediately, since resolution must see all files.
func ExtractAll(ctx context.Context, parser Parser, files []SourceFile, opts ExtractOptions) (*ExtractResult, error) {
	ordered := make([]SourceFile, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Path < ordered[j].Path })

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	extractions := make([]*FileExtraction, len(ordered))
	parseErrs := make([]error, len(ordered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, f := range ordered {
		g.Go(func() error {
			out, err := parser.Parse(gctx, f.Path, f.Content, f.Language)
			if err != nil {
				parseErrs[i] = err
				return nil // non-fatal: recorded as a diagnostic after the barrier
			}
			extractions[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ExtractResult{}
	for i, f := range ordered {
		if parseErrs[i] != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Kind:     DiagParseFailure,
				FilePath: f.Path,
				Detail:   parseErrs[i].Error(),
			})
			continue
		}
		if extractions[i] == nil {
			continue
		}
		ext := dedupeEntities(*extractions[i], &result.Diagnostics)
		result.Extractions = append(result.Extractions, ext)
	}

	return result, nil
}

// dedupeEntities enforces ID uniqueness within one file's extraction. Two
// entities with the same qualified name in the same file are a parse
// anomaly: the later one is dropped and reported, never silently merged.
// Parent-class back-references that point at no surviving entity are
// cleared so the graph carries no dangling IDs.
func dedupeEntities(ext FileExtraction, diags *[]Diagnostic) FileExtraction {
	seen := make(map[string]bool, len(ext.Entities))
	kept := ext.Entities[:0]
	for _, ent := range ext.Entities {
		if seen[ent.ID] {
			*diags = append(*diags, Diagnostic{
				Kind:     DiagDuplicateEntity,
				FilePath: ext.File.Path,
				Subject:  ent.ID,
				Detail:   "duplicate qualified name, entity dropped",
			})
			continue
		}
		seen[ent.ID] = true
		kept = append(kept, ent)
	}
	ext.Entities = kept

	for i, ent := range ext.Entities {
		if ent.ParentClass != "" && !seen[ent.ParentClass] {
			ext.Entities[i].ParentClass = ""
		}
	}

	// References attributed to a dropped entity collapse onto the surviving
	// entity with the same ID, so no reference filtering is needed here.
	return ext
}
