package pdfmerge

import (
	"log/slog"
	"os"
	"sync"

	"pagebind/internal/fileutil"
	"pagebind/internal/logging"
)

const (
	// parallelCleanupThreshold switches file deletion to a worker pool. Small
	// conversions delete sequentially; the pool only pays off for runs that
	// produced many intermediates.
	parallelCleanupThreshold = 10
	cleanupWorkers           = 4
)

// Cleanup removes intermediate files and then the now-empty scratch
// directories. Failures are logged and swallowed: cleanup never decides the
// outcome of a conversion.
func Cleanup(files []string, dirs []string, logger *slog.Logger) {
	logger = logging.WithComponent(logger, "cleanup")

	if len(files) > parallelCleanupThreshold {
		removeParallel(files, logger)
	} else {
		for _, path := range files {
			removeFile(path, logger)
		}
	}

	for _, dir := range dirs {
		if err := fileutil.RemoveIfEmpty(dir); err != nil {
			logger.Warn("could not remove scratch directory",
				logging.String("path", dir),
				logging.Error(err))
		}
	}
}

func removeParallel(files []string, logger *slog.Logger) {
	jobs := make(chan string)
	var wg sync.WaitGroup

	workers := cleanupWorkers
	if workers > len(files) {
		workers = len(files)
	}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				removeFile(path, logger)
			}
		}()
	}
	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
}

func removeFile(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not remove intermediate file",
			logging.String("path", path),
			logging.Error(err))
	}
}
