package archive

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"pagebind/internal/fileutil"
	"pagebind/internal/imaging"
	"pagebind/internal/logging"
)

// Extractor unpacks page images from source archives into unique
// subdirectories of the temp root.
type Extractor struct {
	tempRoot string
	unar     *UnarClient
	logger   *slog.Logger
}

// NewExtractor constructs an extractor. The unar client handles the external
// fast path for rar archives; pass the binary name from configuration.
func NewExtractor(tempRoot, unarBinary string, timeout time.Duration, logger *slog.Logger, opts ...UnarOption) (*Extractor, error) {
	client, err := NewUnarClient(unarBinary, timeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		tempRoot: tempRoot,
		unar:     client,
		logger:   logging.WithComponent(logger, "extractor"),
	}, nil
}

// Extract unpacks archivePath and returns the deduplicated page-image paths
// in the archive's enumeration order. Ordering policy is applied later by the
// renderer. An archive without images yields an empty slice and no error;
// recognized-but-unimplemented formats yield ErrUnsupportedFormat.
func (e *Extractor) Extract(ctx context.Context, archivePath string) ([]string, error) {
	format := DetectFormat(archivePath)
	switch format {
	case FormatCBR:
		return e.extractCBR(ctx, archivePath)
	case FormatCBZ:
		return e.extractCBZ(ctx, archivePath)
	case FormatEPUB:
		return nil, fmt.Errorf("%w: epub reading is not implemented, use cbz or cbr", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: unrecognized extension %q", ErrUnsupportedFormat, filepath.Ext(archivePath))
	}
}

func (e *Extractor) extractCBR(ctx context.Context, archivePath string) ([]string, error) {
	destDir, err := fileutil.UniqueDir(e.tempRoot, "cbr")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := e.unar.ExtractTo(ctx, archivePath, destDir); err == nil {
		paths, walkErr := collectImages(destDir)
		if walkErr == nil && len(paths) > 0 {
			e.logger.Info("external tool extraction complete",
				logging.Int("images", len(paths)),
				logging.Duration("elapsed", time.Since(start)))
			return dedupe(paths), nil
		}
		e.logger.Warn("external tool produced no images, using in-process reader")
	} else {
		e.logger.Warn("external tool extraction failed, using in-process reader", logging.Error(err))
	}

	paths, err := extractRar(ctx, archivePath, destDir, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Info("in-process rar extraction complete", logging.Int("images", len(paths)))
	return dedupe(paths), nil
}

func (e *Extractor) extractCBZ(ctx context.Context, archivePath string) ([]string, error) {
	destDir, err := fileutil.UniqueDir(e.tempRoot, "cbz")
	if err != nil {
		return nil, err
	}

	paths, err := extractZip(ctx, archivePath, destDir, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Info("zip extraction complete", logging.Int("images", len(paths)))
	return dedupe(paths), nil
}

// collectImages walks dir and returns every page-image file beneath it.
func collectImages(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && imaging.IsImageFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect extracted images: %w", err)
	}
	return paths, nil
}

// dedupe removes repeated paths while keeping first-seen order.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	unique := paths[:0]
	for _, path := range paths {
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		unique = append(unique, path)
	}
	return unique
}
