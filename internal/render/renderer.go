package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"pagebind/internal/fileutil"
	"pagebind/internal/imaging"
	"pagebind/internal/logging"
)

const jpegQuality = 85

// Renderer converts groups of page images into intermediate multipage
// documents inside the conversion's temp directory.
type Renderer struct {
	tempDir string
	logger  *slog.Logger
	// cache holds normalized source images keyed by path. It is shared by
	// every render worker; the LRU synchronizes internally so critical
	// sections stay within insert/evict.
	cache *lru.Cache[string, image.Image]
}

// NewRenderer constructs a renderer writing artifacts under tempDir.
func NewRenderer(tempDir string, imageCacheSize int, logger *slog.Logger) (*Renderer, error) {
	if imageCacheSize <= 0 {
		imageCacheSize = 50
	}
	cache, err := lru.New[string, image.Image](imageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	return &Renderer{
		tempDir: tempDir,
		logger:  logging.WithComponent(logger, "renderer"),
		cache:   cache,
	}, nil
}

// RenderGroup converts one group into a validated intermediate document.
// Individual images that are missing, empty, or undecodable are skipped; the
// group fails only when nothing renderable remains or the encode itself
// breaks.
func (r *Renderer) RenderGroup(ctx context.Context, group Group, opts Options) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if len(group.Paths) == 0 {
		return Artifact{}, errors.New("empty group")
	}

	pages := r.preparePages(group, opts)
	if len(pages) == 0 {
		return Artifact{}, fmt.Errorf("group %d: no renderable images", group.Index)
	}

	artifactPath := filepath.Join(r.tempDir, fmt.Sprintf("group_%d.pdf", group.Index))
	if err := encodeDocument(pages, artifactPath); err != nil {
		return Artifact{}, fmt.Errorf("group %d: %w", group.Index, err)
	}
	if err := ValidateDocument(artifactPath); err != nil {
		_ = os.Remove(artifactPath)
		return Artifact{}, fmt.Errorf("group %d: artifact rejected: %w", group.Index, err)
	}

	r.logger.Debug("group rendered",
		logging.Int("group", group.Index),
		logging.Int("pages", len(pages)))
	return Artifact{Path: artifactPath, GroupIndex: group.Index}, nil
}

// preparePages decodes, transforms, and re-encodes each usable image of the
// group, returning the page files in group order.
func (r *Renderer) preparePages(group Group, opts Options) []string {
	pages := make([]string, 0, len(group.Paths))
	for i, path := range group.Paths {
		if !fileutil.NonEmptyFile(path) {
			r.logger.Warn("skipping missing or empty image", logging.String("path", path))
			continue
		}

		img, err := r.loadNormalized(path, opts)
		if err != nil {
			r.logger.Warn("skipping undecodable image", logging.String("path", path), logging.Error(err))
			continue
		}

		pagePath := filepath.Join(r.tempDir, fmt.Sprintf("group_%d_page_%d.jpg", group.Index, i))
		if err := imaging.EncodeJPEG(img, pagePath, jpegQuality); err != nil {
			r.logger.Warn("skipping unencodable image", logging.String("path", path), logging.Error(err))
			continue
		}
		pages = append(pages, pagePath)
	}
	return pages
}

func (r *Renderer) loadNormalized(path string, opts Options) (image.Image, error) {
	if cached, ok := r.cache.Get(path); ok {
		return cached, nil
	}
	decoded, err := imaging.Decode(path)
	if err != nil {
		return nil, err
	}
	normalized := imaging.Normalize(decoded, opts.Grayscale, opts.Resize)
	r.cache.Add(path, normalized)
	return normalized, nil
}

// encodeDocument writes the page images as one multipage document. A single
// page is imported directly; multiple pages append sequentially onto the
// first so memory stays bounded for large groups.
func encodeDocument(pages []string, outPath string) error {
	if err := api.ImportImagesFile(pages[:1], outPath, nil, nil); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if len(pages) > 1 {
		if err := api.ImportImagesFile(pages[1:], outPath, nil, nil); err != nil {
			return fmt.Errorf("append document pages: %w", err)
		}
	}
	return nil
}
