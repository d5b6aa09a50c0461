// Package pdfmerge assembles the intermediate group documents into the final
// output. Structural merging goes through a pluggable engine so tests can
// inject failures; when the engine cannot combine the inputs the merger
// degrades to shipping the largest valid intermediate instead of failing the
// whole conversion.
package pdfmerge

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"pagebind/internal/fileutil"
	"pagebind/internal/logging"
	"pagebind/internal/render"
)

// ErrNoValidInput marks a merge attempt where none of the intermediate
// documents passed validation.
var ErrNoValidInput = errors.New("no valid documents to merge")

// Engine performs the structural document operations the merger depends on.
type Engine interface {
	// Merge combines the inputs, in order, into a new document at outPath.
	Merge(inputs []string, outPath string) error
	// PageCount reports the number of pages in the document at path.
	PageCount(path string) (int, error)
}

type pdfcpuEngine struct{}

func (pdfcpuEngine) Merge(inputs []string, outPath string) error {
	return api.MergeCreateFile(inputs, outPath, false, nil)
}

func (pdfcpuEngine) PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}

// Result summarizes a completed merge.
type Result struct {
	OutputPath string
	Pages      int
	// Degraded is set when the structural merge failed and the output is the
	// largest valid intermediate rather than the combined document.
	Degraded bool
	// Inputs counts the intermediate documents that contributed.
	Inputs int
}

// Merger combines rendered group artifacts into one document.
type Merger struct {
	engine Engine
	logger *slog.Logger
	// pageCounts memoizes per-file page counts; counting requires a full
	// structural parse, and the same intermediates are often inspected when
	// reporting and when validating.
	pageCounts *lru.Cache[string, int]
}

// Option adjusts merger construction.
type Option func(*Merger)

// WithEngine substitutes the structural document engine.
func WithEngine(engine Engine) Option {
	return func(m *Merger) {
		m.engine = engine
	}
}

// NewMerger constructs a merger with a bounded page-count cache.
func NewMerger(pageCacheSize int, logger *slog.Logger, opts ...Option) (*Merger, error) {
	if pageCacheSize <= 0 {
		pageCacheSize = 20
	}
	cache, err := lru.New[string, int](pageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create page count cache: %w", err)
	}
	merger := &Merger{
		engine:     pdfcpuEngine{},
		logger:     logging.WithComponent(logger, "merger"),
		pageCounts: cache,
	}
	for _, opt := range opts {
		opt(merger)
	}
	return merger, nil
}

// Merge validates the artifacts, combines them in group order, and writes the
// result to outputPath. Invalid intermediates are dropped with a warning; the
// merge fails only when nothing valid remains or the output itself does not
// validate.
func (m *Merger) Merge(artifacts []render.Artifact, outputPath string) (Result, error) {
	inputs := m.validInputs(artifacts)
	if len(inputs) == 0 {
		return Result{}, ErrNoValidInput
	}

	result := Result{OutputPath: outputPath, Inputs: len(inputs)}

	switch {
	case len(inputs) == 1:
		if err := fileutil.CopyFile(inputs[0], outputPath); err != nil {
			return Result{}, fmt.Errorf("copy single document: %w", err)
		}
	default:
		if err := m.engine.Merge(inputs, outputPath); err != nil {
			m.logger.Warn("structural merge failed, falling back to largest document",
				logging.Error(err))
			if fallbackErr := m.copyLargest(inputs, outputPath); fallbackErr != nil {
				return Result{}, fmt.Errorf("merge failed (%v) and fallback failed: %w", err, fallbackErr)
			}
			result.Degraded = true
		}
	}

	if err := render.ValidateDocument(outputPath); err != nil {
		_ = os.Remove(outputPath)
		return Result{}, fmt.Errorf("merged output rejected: %w", err)
	}

	if pages, err := m.countPages(outputPath); err != nil {
		m.logger.Warn("could not count output pages", logging.Error(err))
	} else {
		result.Pages = pages
	}

	m.logger.Info("merge complete",
		logging.String("output", outputPath),
		logging.Int("inputs", result.Inputs),
		logging.Int("pages", result.Pages),
		logging.Bool("degraded", result.Degraded))
	return result, nil
}

// validInputs returns the artifact paths that pass structural validation,
// ordered by group index with duplicates dropped.
func (m *Merger) validInputs(artifacts []render.Artifact) []string {
	ordered := make([]render.Artifact, len(artifacts))
	copy(ordered, artifacts)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].GroupIndex < ordered[j].GroupIndex
	})

	seen := make(map[string]struct{}, len(ordered))
	inputs := make([]string, 0, len(ordered))
	for _, artifact := range ordered {
		if _, dup := seen[artifact.Path]; dup {
			continue
		}
		seen[artifact.Path] = struct{}{}
		if err := render.ValidateDocument(artifact.Path); err != nil {
			m.logger.Warn("dropping invalid intermediate document",
				logging.String("path", artifact.Path),
				logging.Error(err))
			continue
		}
		inputs = append(inputs, artifact.Path)
	}
	return inputs
}

// copyLargest ships the biggest input as the output. The content is partial
// but readable, which beats losing the whole conversion.
func (m *Merger) copyLargest(inputs []string, outputPath string) error {
	var largest string
	var largestSize int64
	for _, path := range inputs {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.Size() > largestSize {
			largest = path
			largestSize = info.Size()
		}
	}
	if largest == "" {
		return errors.New("no readable document for fallback")
	}
	return fileutil.CopyFile(largest, outputPath)
}

func (m *Merger) countPages(path string) (int, error) {
	if pages, ok := m.pageCounts.Get(path); ok {
		return pages, nil
	}
	pages, err := m.engine.PageCount(path)
	if err != nil {
		return 0, err
	}
	m.pageCounts.Add(path, pages)
	return pages, nil
}
