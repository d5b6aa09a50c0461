// Package testsupport provides fixture builders shared by the pipeline tests:
// tiny page images, zip archives, and byte-crafted PDF shells that satisfy
// the merger's structural checks.
package testsupport

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// ZipEntry is one named member of a generated archive. Order is preserved.
type ZipEntry struct {
	Name string
	Data []byte
}

// PNGBytes renders a solid-color PNG of the given dimensions. A nil color
// falls back to mid-gray.
func PNGBytes(t testing.TB, width, height int, c color.Color) []byte {
	t.Helper()

	if c == nil {
		c = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteImage writes a solid-color PNG page to path.
func WriteImage(t testing.TB, path string, width, height int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := PNGBytes(t, width, height, nil)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteZip builds a zip archive at path containing the entries in order.
func WriteZip(t testing.TB, path string, entries []ZipEntry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	writer := zip.NewWriter(file)
	for _, entry := range entries {
		w, err := writer.Create(entry.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			t.Fatalf("write zip entry %s: %v", entry.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

// WritePDFShell writes bytes that pass the pipeline's structural artifact
// checks (size floor, %PDF header, trailing %%EOF) without being a PDF any
// reader could open. Useful for validation-only tests.
func WritePDFShell(t testing.TB, path string, size int) {
	t.Helper()

	const header = "%PDF-1.4\n"
	const trailer = "\n%%EOF\n"
	if size < len(header)+len(trailer) {
		size = len(header) + len(trailer)
	}
	body := make([]byte, 0, size)
	body = append(body, header...)
	for len(body) < size-len(trailer) {
		body = append(body, ' ')
	}
	body = append(body, trailer...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
