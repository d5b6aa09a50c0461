// Package convert orchestrates a full archive-to-document conversion:
// extraction, grouping, parallel rendering, merge, cleanup, and journaling.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"pagebind/internal/archive"
	"pagebind/internal/config"
	"pagebind/internal/fileutil"
	"pagebind/internal/history"
	"pagebind/internal/logging"
	"pagebind/internal/pdfmerge"
	"pagebind/internal/render"
)

// Recorder receives journal entries for completed conversions. Recording is
// best-effort; failures are logged and never fail the conversion.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// Result reports the outcome of one conversion.
type Result struct {
	Success    bool
	Message    string
	SourcePath string
	OutputPath string
	Format     archive.Format
	Images     int
	Pages      int
	Degraded   bool
	Duration   time.Duration
}

// Converter runs conversions according to validated configuration.
type Converter struct {
	cfg         *config.Config
	logger      *slog.Logger
	recorder    Recorder
	archiveOpts []archive.UnarOption
	mergeOpts   []pdfmerge.Option
}

// Option adjusts converter construction.
type Option func(*Converter)

// WithRecorder attaches a conversion journal.
func WithRecorder(recorder Recorder) Option {
	return func(c *Converter) {
		c.recorder = recorder
	}
}

// WithArchiveOptions forwards options to the archive extractor.
func WithArchiveOptions(opts ...archive.UnarOption) Option {
	return func(c *Converter) {
		c.archiveOpts = append(c.archiveOpts, opts...)
	}
}

// WithMergeOptions forwards options to the document merger.
func WithMergeOptions(opts ...pdfmerge.Option) Option {
	return func(c *Converter) {
		c.mergeOpts = append(c.mergeOpts, opts...)
	}
}

// New constructs a converter.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Converter {
	converter := &Converter{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "convert"),
	}
	for _, opt := range opts {
		opt(converter)
	}
	return converter
}

// Convert turns the archive at sourcePath into a document. An empty
// outputPath selects the default location for the source. The returned
// Result always carries a human-readable Message, also on failure.
func (c *Converter) Convert(ctx context.Context, sourcePath, outputPath string) (Result, error) {
	started := time.Now()

	sourcePath, err := config.ExpandPath(sourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("resolve source path: %w", err)
	}
	result := Result{SourcePath: sourcePath, Format: archive.DetectFormat(sourcePath)}

	// Unsupported formats are rejected before any scratch space exists so a
	// refused conversion leaves the filesystem untouched.
	switch result.Format {
	case archive.FormatEPUB:
		err := fmt.Errorf("%w: epub reading is not implemented, use cbz or cbr", archive.ErrUnsupportedFormat)
		return c.fail(ctx, result, started, "epub reading is not implemented, use cbz or cbr", err)
	case archive.FormatUnknown:
		err := fmt.Errorf("%w: %s", archive.ErrUnsupportedFormat, filepath.Ext(sourcePath))
		return c.fail(ctx, result, started, "unrecognized archive format", err)
	}

	if !fileutil.NonEmptyFile(sourcePath) {
		return c.fail(ctx, result, started, "source archive missing or empty",
			fmt.Errorf("source archive missing or empty: %s", sourcePath))
	}

	renderOpts, err := render.OptionsFromConfig(c.cfg)
	if err != nil {
		return c.fail(ctx, result, started, "invalid conversion settings", err)
	}

	result.OutputPath, err = c.resolveOutputPath(sourcePath, outputPath)
	if err != nil {
		return c.fail(ctx, result, started, "could not resolve output path", err)
	}

	workdir, err := fileutil.UniqueDir(c.cfg.Paths.TempRoot, "convert")
	if err != nil {
		return c.fail(ctx, result, started, "could not create scratch directory", err)
	}
	defer c.cleanupWorkdir(workdir)

	c.logger.Info("conversion started",
		logging.String("source", sourcePath),
		logging.String("format", result.Format.String()),
		logging.String("output", result.OutputPath))

	extractor, err := archive.NewExtractor(workdir, c.cfg.Extraction.UnarBinary, c.cfg.ExtractionTimeout(), c.logger, c.archiveOpts...)
	if err != nil {
		return c.fail(ctx, result, started, "could not initialize extractor", err)
	}
	images, err := extractor.Extract(ctx, sourcePath)
	if err != nil {
		return c.fail(ctx, result, started, "extraction failed", err)
	}
	if len(images) == 0 {
		return c.fail(ctx, result, started, "no images extracted",
			fmt.Errorf("no images extracted from %s", sourcePath))
	}
	result.Images = len(images)

	groups := render.Plan(images, renderOpts)
	renderer, err := render.NewRenderer(workdir, c.cfg.Conversion.ImageCacheSize, c.logger)
	if err != nil {
		return c.fail(ctx, result, started, "could not initialize renderer", err)
	}
	artifacts, err := renderer.RenderAll(ctx, groups, renderOpts)
	if err != nil {
		message := "rendering failed"
		if errors.Is(err, render.ErrSuccessRate) {
			message = "insufficient group success rate"
		}
		return c.fail(ctx, result, started, message, err)
	}

	merger, err := pdfmerge.NewMerger(c.cfg.Conversion.PageCacheSize, c.logger, c.mergeOpts...)
	if err != nil {
		return c.fail(ctx, result, started, "could not initialize merger", err)
	}
	mergeResult, err := merger.Merge(artifacts, result.OutputPath)
	if err != nil {
		return c.fail(ctx, result, started, "merge produced no valid output", err)
	}
	result.Pages = mergeResult.Pages
	result.Degraded = mergeResult.Degraded

	result.Success = true
	result.Message = fmt.Sprintf("converted %d images", result.Images)
	if result.Degraded {
		result.Message = fmt.Sprintf("converted %d images (partial output, merge degraded)", result.Images)
	}
	result.Duration = time.Since(started)
	c.record(ctx, result)

	c.logger.Info("conversion finished",
		logging.String("output", result.OutputPath),
		logging.Int("images", result.Images),
		logging.Int("pages", result.Pages),
		logging.Duration("duration", result.Duration))
	return result, nil
}

// fail finalizes a result with the given message, journals it, and returns
// the underlying error.
func (c *Converter) fail(ctx context.Context, result Result, started time.Time, message string, err error) (Result, error) {
	result.Success = false
	result.Message = message
	result.Duration = time.Since(started)
	c.record(ctx, result)
	return result, err
}

func (c *Converter) record(ctx context.Context, result Result) {
	if c.recorder == nil {
		return
	}
	_, err := c.recorder.Record(ctx, history.Entry{
		SourcePath: result.SourcePath,
		OutputPath: result.OutputPath,
		Format:     result.Format.String(),
		Images:     result.Images,
		Pages:      result.Pages,
		Success:    result.Success,
		Message:    result.Message,
		Duration:   result.Duration,
	})
	if err != nil {
		c.logger.Warn("could not record conversion history", logging.Error(err))
	}
}

// cleanupWorkdir removes everything the conversion wrote under its scratch
// directory. Failures are logged by the cleanup pass and never surface.
func (c *Converter) cleanupWorkdir(workdir string) {
	var files []string
	var dirs []string
	_ = filepath.WalkDir(workdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		files = append(files, path)
		return nil
	})

	// Deepest directories first so parents empty out before their turn.
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	pdfmerge.Cleanup(files, dirs, c.logger)
}
