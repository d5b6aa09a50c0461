package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagebind/internal/testsupport"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	content := fmt.Sprintf(`[paths]
temp_root = %q
library_dir = %q
log_dir = %q

[history]
enabled = true
path = %q
`,
		filepath.Join(base, "temp"),
		filepath.Join(base, "library"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "history.db"),
	)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConvertCommandEndToEnd(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	source := filepath.Join(base, "volume_01.cbz")
	testsupport.WriteZip(t, source, []testsupport.ZipEntry{
		{Name: "page_1.png", Data: testsupport.PNGBytes(t, 40, 60, nil)},
		{Name: "page_2.png", Data: testsupport.PNGBytes(t, 40, 60, nil)},
	})

	out, _, err := runCLI(t, configPath, "convert", source)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "converted 2 images")

	if _, err := os.Stat(filepath.Join(base, "library", "volume_01.pdf")); err != nil {
		t.Fatalf("expected output in library: %v", err)
	}

	out, _, err = runCLI(t, configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "volume_01.cbz")
}

func TestConvertCommandReportsFailures(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	source := filepath.Join(base, "book.epub")
	if err := os.WriteFile(source, []byte("epub bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, configPath, "convert", source)
	if err == nil {
		t.Fatal("expected convert to fail for epub input")
	}
	requireContains(t, out, "epub reading is not implemented, use cbz or cbr")
}

func TestConvertCommandRejectsOutputWithMultipleArchives(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	_, _, err := runCLI(t, configPath, "convert", "--output", "/tmp/x.pdf", "a.cbz", "b.cbz")
	if err == nil {
		t.Fatal("expected --output with multiple archives to fail")
	}
}

func TestResultLabel(t *testing.T) {
	if got := resultLabel(true, false); got != "ok" {
		t.Fatalf("resultLabel(true,false) = %q", got)
	}
	if got := resultLabel(true, true); got != "partial" {
		t.Fatalf("resultLabel(true,true) = %q", got)
	}
	if got := resultLabel(false, false); got != "failed" {
		t.Fatalf("resultLabel(false,false) = %q", got)
	}
}

func TestRenderTableIncludesHeadersAndRows(t *testing.T) {
	out := renderTable(
		[]string{"Archive", "Images"},
		[][]string{{"vol.cbz", "12"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	requireContains(t, out, "Archive")
	requireContains(t, out, "vol.cbz")
	requireContains(t, out, "12")
}
