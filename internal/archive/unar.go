package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrToolTimeout marks an external extraction that exceeded its deadline.
var ErrToolTimeout = errors.New("extraction tool timed out")

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// UnarOption configures the client.
type UnarOption func(*UnarClient)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) UnarOption {
	return func(c *UnarClient) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// UnarClient wraps the external unar tool used as the fast extraction path
// for rar-backed archives.
type UnarClient struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// NewUnarClient constructs an external extractor client.
func NewUnarClient(binary string, timeout time.Duration, opts ...UnarOption) (*UnarClient, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("unar binary required")
	}
	client := &UnarClient{
		binary:  binary,
		timeout: timeout,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ExtractTo runs the tool against archivePath with destDir as the output
// directory. A run that exits cleanly but produces no files is an error:
// some unar builds report success on archives they cannot actually unpack.
func (c *UnarClient) ExtractTo(ctx context.Context, archivePath, destDir string) error {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-quiet", "-o", destDir, archivePath}
	if err := c.exec.Run(runCtx, c.binary, args); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrToolTimeout, c.binary)
		}
		return fmt.Errorf("run %s: %w", c.binary, err)
	}

	produced := false
	walkErr := filepath.WalkDir(destDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			produced = true
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("inspect extraction output: %w", walkErr)
	}
	if !produced {
		return fmt.Errorf("%s reported success but extracted nothing", c.binary)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}
