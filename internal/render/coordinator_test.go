package render

import (
	"context"
	"errors"
	"testing"

	"pagebind/internal/testsupport"
)

func TestRenderAllPreservesGroupOrderAcrossWorkers(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := t.TempDir()

	groups := make([]Group, 0, 6)
	for g := 0; g < 6; g++ {
		groups = append(groups, Group{Index: g, Paths: writePages(t, dir, 2)})
	}

	artifacts, err := renderer.RenderAll(context.Background(), groups, Options{Workers: 4})
	if err != nil {
		t.Fatalf("RenderAll returned error: %v", err)
	}
	if len(artifacts) != len(groups) {
		t.Fatalf("expected %d artifacts, got %d", len(groups), len(artifacts))
	}
	for i, artifact := range artifacts {
		if artifact.GroupIndex != i {
			t.Fatalf("artifact %d carries group index %d", i, artifact.GroupIndex)
		}
		if err := ValidateDocument(artifact.Path); err != nil {
			t.Fatalf("artifact %d failed validation: %v", i, err)
		}
	}
}

func TestRenderAllFailsGateWhenAllGroupsBreak(t *testing.T) {
	renderer := newTestRenderer(t)

	groups := []Group{
		{Index: 0, Paths: []string{"/nope/a.png"}},
		{Index: 1, Paths: []string{"/nope/b.png"}},
		{Index: 2, Paths: []string{"/nope/c.png"}},
	}

	_, err := renderer.RenderAll(context.Background(), groups, Options{Workers: 2})
	if !errors.Is(err, ErrSuccessRate) {
		t.Fatalf("expected ErrSuccessRate, got %v", err)
	}
}

func TestRenderAllPassesGateWithOneSurvivorOfThree(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := t.TempDir()

	groups := []Group{
		{Index: 0, Paths: []string{"/nope/a.png"}},
		{Index: 1, Paths: writePages(t, dir, 2)},
		{Index: 2, Paths: []string{"/nope/c.png"}},
	}

	artifacts, err := renderer.RenderAll(context.Background(), groups, Options{})
	if err != nil {
		t.Fatalf("expected default 1/3 gate to pass: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].GroupIndex != 1 {
		t.Fatalf("expected the surviving group only, got %+v", artifacts)
	}
}

func TestRenderAllHonorsStricterRatio(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := t.TempDir()

	groups := []Group{
		{Index: 0, Paths: []string{"/nope/a.png"}},
		{Index: 1, Paths: writePages(t, dir, 1)},
		{Index: 2, Paths: []string{"/nope/c.png"}},
	}

	_, err := renderer.RenderAll(context.Background(), groups, Options{MinSuccessRatio: 1.0})
	if !errors.Is(err, ErrSuccessRate) {
		t.Fatalf("expected ErrSuccessRate under full-success gate, got %v", err)
	}
}

func TestRenderAllStopsQueueOnCancel(t *testing.T) {
	renderer := newTestRenderer(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	groups := []Group{{Index: 0, Paths: writePages(t, dir, 1)}}
	_, err := renderer.RenderAll(ctx, groups, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRequiredSuccesses(t *testing.T) {
	cases := []struct {
		total int
		ratio float64
		want  int
	}{
		{3, 1.0 / 3.0, 1},
		{6, 1.0 / 3.0, 2},
		{1, 1.0 / 3.0, 1},
		{4, 0.5, 2},
		{5, 1.0, 5},
		{10, 0, 1},
	}
	for _, tc := range cases {
		if got := requiredSuccesses(tc.total, tc.ratio); got != tc.want {
			t.Errorf("requiredSuccesses(%d, %v) = %d, want %d", tc.total, tc.ratio, got, tc.want)
		}
	}
}

func TestDiscardRemovesArtifacts(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/gone.pdf"
	testsupport.WritePDFShell(t, path, 2048)

	discard([]Artifact{{Path: path}})
	if err := ValidateDocument(path); err == nil {
		t.Fatal("expected artifact to be removed")
	}
}
