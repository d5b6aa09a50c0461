package pdfmerge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pagebind/internal/logging"
	"pagebind/internal/render"
	"pagebind/internal/testsupport"
)

// renderArtifacts produces real intermediate documents so merge tests
// exercise the actual structural engine.
func renderArtifacts(t *testing.T, count int) []render.Artifact {
	t.Helper()

	renderer, err := render.NewRenderer(t.TempDir(), 10, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	imgDir := t.TempDir()

	artifacts := make([]render.Artifact, 0, count)
	for g := 0; g < count; g++ {
		page := filepath.Join(imgDir, "g", "page.png")
		testsupport.WriteImage(t, page, 30+g, 40)
		artifact, err := renderer.RenderGroup(context.Background(), render.Group{Index: g, Paths: []string{page}}, render.Options{})
		if err != nil {
			t.Fatalf("render group %d: %v", g, err)
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts
}

func newTestMerger(t *testing.T, opts ...Option) *Merger {
	t.Helper()
	merger, err := NewMerger(10, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("NewMerger: %v", err)
	}
	return merger
}

type failingEngine struct{}

func (failingEngine) Merge(inputs []string, outPath string) error {
	return errors.New("engine broke")
}

func (failingEngine) PageCount(path string) (int, error) {
	return 0, errors.New("engine broke")
}

func TestMergeCombinesInGroupOrder(t *testing.T) {
	artifacts := renderArtifacts(t, 3)
	// Provide them out of order; the merger re-sorts by group index.
	shuffled := []render.Artifact{artifacts[2], artifacts[0], artifacts[1]}

	output := filepath.Join(t.TempDir(), "out.pdf")
	result, err := newTestMerger(t).Merge(shuffled, output)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if result.Degraded {
		t.Fatal("expected structural merge, got degraded result")
	}
	if result.Inputs != 3 {
		t.Fatalf("expected 3 inputs, got %d", result.Inputs)
	}
	if result.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", result.Pages)
	}
	if err := render.ValidateDocument(output); err != nil {
		t.Fatalf("output failed validation: %v", err)
	}
}

func TestMergeSingleInputCopies(t *testing.T) {
	artifacts := renderArtifacts(t, 1)

	output := filepath.Join(t.TempDir(), "out.pdf")
	result, err := newTestMerger(t).Merge(artifacts, output)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if result.Degraded {
		t.Fatal("single input should not be degraded")
	}
	if err := render.ValidateDocument(output); err != nil {
		t.Fatalf("output failed validation: %v", err)
	}
}

func TestMergeDropsInvalidIntermediates(t *testing.T) {
	artifacts := renderArtifacts(t, 2)

	dir := t.TempDir()
	bogus := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(bogus, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	artifacts = append(artifacts, render.Artifact{Path: bogus, GroupIndex: 2})

	output := filepath.Join(dir, "out.pdf")
	result, err := newTestMerger(t).Merge(artifacts, output)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if result.Inputs != 2 {
		t.Fatalf("expected broken intermediate to be dropped, inputs=%d", result.Inputs)
	}
	if result.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", result.Pages)
	}
}

func TestMergeFailsWithoutValidInput(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(bogus, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestMerger(t).Merge([]render.Artifact{{Path: bogus}}, filepath.Join(dir, "out.pdf"))
	if !errors.Is(err, ErrNoValidInput) {
		t.Fatalf("expected ErrNoValidInput, got %v", err)
	}
}

func TestMergeDegradesToLargestInput(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.pdf")
	large := filepath.Join(dir, "large.pdf")
	testsupport.WritePDFShell(t, small, 2048)
	testsupport.WritePDFShell(t, large, 8192)

	artifacts := []render.Artifact{
		{Path: small, GroupIndex: 0},
		{Path: large, GroupIndex: 1},
	}

	output := filepath.Join(dir, "out.pdf")
	result, err := newTestMerger(t, WithEngine(failingEngine{})).Merge(artifacts, output)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	info, err := os.Stat(output)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 8192 {
		t.Fatalf("expected largest input to be shipped, got %d bytes", info.Size())
	}
}

func TestCleanupRemovesFilesAndEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	scratch := filepath.Join(dir, "scratch")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		t.Fatal(err)
	}

	// More files than the parallel threshold to exercise the worker pool.
	files := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		path := filepath.Join(scratch, filepath.Base(t.Name())+string(rune('a'+i))+".tmp")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}
	// A path that never existed must not break cleanup.
	files = append(files, filepath.Join(scratch, "missing.tmp"))

	Cleanup(files, []string{scratch}, logging.NewNop())

	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Fatalf("expected scratch directory to be removed, stat err=%v", err)
	}
}

func TestCleanupKeepsNonEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	keeper := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(keeper, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	Cleanup(nil, []string{dir}, logging.NewNop())

	if _, err := os.Stat(keeper); err != nil {
		t.Fatalf("expected occupied directory to survive: %v", err)
	}
}
