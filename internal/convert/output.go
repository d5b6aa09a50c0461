package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pagebind/internal/config"
)

// libraryMarker identifies a directory whose archives should convert
// in place instead of into the configured library.
const libraryMarker = "mangas"

// resolveOutputPath decides where the finished document goes. An explicit
// path wins. Otherwise archives already living in a library directory stay
// next to their source, archives elsewhere land in the configured library
// when it exists, and everything else gets a sibling document.
func (c *Converter) resolveOutputPath(sourcePath, explicit string) (string, error) {
	if explicit != "" {
		expanded, err := config.ExpandPath(explicit)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return expanded, nil
	}

	base := documentName(sourcePath)
	sourceDir := filepath.Dir(sourcePath)

	if filepath.Base(sourceDir) == libraryMarker {
		return filepath.Join(sourceDir, base), nil
	}

	if library := c.cfg.Paths.LibraryDir; library != "" {
		if info, err := os.Stat(library); err == nil && info.IsDir() {
			return filepath.Join(library, base), nil
		}
	}

	return filepath.Join(sourceDir, base), nil
}

func documentName(sourcePath string) string {
	name := filepath.Base(sourcePath)
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".pdf"
}
