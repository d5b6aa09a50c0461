package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Artifact is one intermediate multipage document plus the group index that
// determines its position in the final merge.
type Artifact struct {
	Path       string
	GroupIndex int
}

const (
	// minDocumentSize rejects documents an encoder aborted partway through.
	minDocumentSize = 1024
	trailerWindow   = 50
)

var (
	documentHeader  = []byte("%PDF")
	documentTrailer = []byte("%%EOF")
)

// ValidateDocument performs the structural checks shared by intermediate
// artifacts and the final output: the file exists, clears the size floor,
// starts with the document magic, and carries the end-of-file marker within
// the final bytes.
func ValidateDocument(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat document: %w", err)
	}
	if info.Size() < minDocumentSize {
		return fmt.Errorf("document too small: %d bytes", info.Size())
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	header := make([]byte, len(documentHeader))
	if _, err := io.ReadFull(file, header); err != nil {
		return fmt.Errorf("read document header: %w", err)
	}
	if !bytes.Equal(header, documentHeader) {
		return fmt.Errorf("invalid document header %q", header)
	}

	tail := make([]byte, trailerWindow)
	if _, err := file.ReadAt(tail, info.Size()-trailerWindow); err != nil && err != io.EOF {
		return fmt.Errorf("read document trailer: %w", err)
	}
	if !bytes.Contains(tail, documentTrailer) {
		return fmt.Errorf("document missing %s marker", documentTrailer)
	}
	return nil
}

func removeQuiet(path string) {
	_ = os.Remove(path)
}
