package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pagebind/internal/imaging"
	"pagebind/internal/logging"
)

// extractZip unpacks the image entries of a zip-backed archive into destDir,
// preserving the archive's enumeration order. Entries that fail individually
// are logged and skipped.
func extractZip(ctx context.Context, archivePath, destDir string, logger *slog.Logger) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}
	defer reader.Close()

	var paths []string
	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		if entry.FileInfo().IsDir() || !imaging.IsImageFile(entry.Name) {
			continue
		}
		target, err := entryTarget(destDir, entry.Name)
		if err != nil {
			logger.Warn("skipping unsafe zip entry", logging.String("entry", entry.Name), logging.Error(err))
			continue
		}
		if err := extractZipEntry(entry, target); err != nil {
			logger.Warn("skipping zip entry", logging.String("entry", entry.Name), logging.Error(err))
			continue
		}
		paths = append(paths, target)
	}
	return paths, nil
}

func extractZipEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create entry directory: %w", err)
	}
	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create entry file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return out.Close()
}

// entryTarget joins an archive entry name onto destDir, rejecting names that
// would escape it.
func entryTarget(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("entry path %q escapes extraction directory", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
