package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pagebind/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantTemp := filepath.Join(tempHome, ".local", "share", "pagebind", "temp")
	if cfg.Paths.TempRoot != wantTemp {
		t.Fatalf("unexpected temp root: got %q want %q", cfg.Paths.TempRoot, wantTemp)
	}
	if cfg.Conversion.Workers != 5 {
		t.Fatalf("unexpected default workers: %d", cfg.Conversion.Workers)
	}
	if cfg.Conversion.MergeOrder != "natural" {
		t.Fatalf("unexpected default merge order: %q", cfg.Conversion.MergeOrder)
	}
	if cfg.Conversion.Speed != "normal" {
		t.Fatalf("unexpected default speed: %q", cfg.Conversion.Speed)
	}
	if got := cfg.Conversion.MinSuccessRatio; got < 0.33 || got > 0.34 {
		t.Fatalf("unexpected default success ratio: %g", got)
	}
	if cfg.Extraction.UnarBinary != "unar" {
		t.Fatalf("unexpected unar binary: %q", cfg.Extraction.UnarBinary)
	}
	if cfg.ExtractionTimeout() != 60*time.Second {
		t.Fatalf("unexpected extraction timeout: %v", cfg.ExtractionTimeout())
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[conversion]
merge_order = "Reversed"
speed = "VERYFAST"
resize = "a4"
workers = 3

[extraction]
unar_binary = "  unar  "
timeout_seconds = 0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected existing config at %q", path)
	}
	if cfg.Conversion.MergeOrder != "reversed" {
		t.Fatalf("merge order not lowered: %q", cfg.Conversion.MergeOrder)
	}
	if cfg.Conversion.Speed != "veryfast" {
		t.Fatalf("speed not lowered: %q", cfg.Conversion.Speed)
	}
	if cfg.Conversion.Resize != "A4" {
		t.Fatalf("resize not uppercased: %q", cfg.Conversion.Resize)
	}
	if cfg.Extraction.UnarBinary != "unar" {
		t.Fatalf("unar binary not trimmed: %q", cfg.Extraction.UnarBinary)
	}
	if cfg.Extraction.TimeoutSeconds != 60 {
		t.Fatalf("zero timeout not defaulted: %d", cfg.Extraction.TimeoutSeconds)
	}
}

func TestLoadRejectsUnknownMergeOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[conversion]
merge_order = "custom"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for custom merge order")
	}
}

func TestLoadRejectsUnknownResize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[conversion]\nresize = \"B5\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for unsupported resize preset")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
