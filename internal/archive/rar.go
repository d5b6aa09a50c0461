package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"

	"pagebind/internal/imaging"
	"pagebind/internal/logging"
)

// extractRar unpacks the image entries of a rar-backed archive into destDir
// using the in-process reader. This is the fallback path when the external
// tool is unavailable or fails.
func extractRar(ctx context.Context, archivePath, destDir string, logger *slog.Logger) ([]string, error) {
	reader, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open rar archive: %w", err)
	}
	defer reader.Close()

	var paths []string
	for {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return paths, fmt.Errorf("read rar entry: %w", err)
		}
		if header.IsDir || !imaging.IsImageFile(header.Name) {
			continue
		}
		target, err := entryTarget(destDir, header.Name)
		if err != nil {
			logger.Warn("skipping unsafe rar entry", logging.String("entry", header.Name), logging.Error(err))
			continue
		}
		if err := writeRarEntry(reader, target); err != nil {
			logger.Warn("skipping rar entry", logging.String("entry", header.Name), logging.Error(err))
			continue
		}
		paths = append(paths, target)
	}
	return paths, nil
}

func writeRarEntry(reader io.Reader, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create entry directory: %w", err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create entry file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return out.Close()
}
