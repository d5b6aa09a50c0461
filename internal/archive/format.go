package archive

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat marks archives pagebind knows about but cannot read.
// Callers must surface it distinctly from "archive held no images".
var ErrUnsupportedFormat = errors.New("archive format not supported")

// Format tags the closed set of source container formats.
type Format int

const (
	FormatUnknown Format = iota
	// FormatCBR is a rar-backed comic archive.
	FormatCBR
	// FormatCBZ is a zip-backed comic archive.
	FormatCBZ
	// FormatEPUB is recognized but deliberately unimplemented.
	FormatEPUB
)

// String returns the display name for the format.
func (f Format) String() string {
	switch f {
	case FormatCBR:
		return "cbr"
	case FormatCBZ:
		return "cbz"
	case FormatEPUB:
		return "epub"
	default:
		return "unknown"
	}
}

// DetectFormat maps an archive path to its container format by extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cbr", ".rar":
		return FormatCBR
	case ".cbz", ".zip":
		return FormatCBZ
	case ".epub":
		return FormatEPUB
	default:
		return FormatUnknown
	}
}
