package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeExtraction()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempRoot) == "" {
		c.Paths.TempRoot = defaultTempRoot
	}
	if c.Paths.TempRoot, err = expandPath(c.Paths.TempRoot); err != nil {
		return fmt.Errorf("paths.temp_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
			return fmt.Errorf("paths.library_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Resize = strings.ToUpper(strings.TrimSpace(c.Conversion.Resize))
	c.Conversion.MergeOrder = strings.ToLower(strings.TrimSpace(c.Conversion.MergeOrder))
	if c.Conversion.MergeOrder == "" {
		c.Conversion.MergeOrder = defaultMergeOrder
	}
	c.Conversion.Speed = strings.ToLower(strings.TrimSpace(c.Conversion.Speed))
	if c.Conversion.Speed == "" {
		c.Conversion.Speed = defaultSpeed
	}
	if c.Conversion.Workers <= 0 {
		c.Conversion.Workers = defaultWorkers
	}
	if c.Conversion.MinSuccessRatio <= 0 {
		c.Conversion.MinSuccessRatio = defaultMinSuccessRatio
	}
	if c.Conversion.ImageCacheSize <= 0 {
		c.Conversion.ImageCacheSize = defaultImageCacheSize
	}
	if c.Conversion.PageCacheSize <= 0 {
		c.Conversion.PageCacheSize = defaultPageCacheSize
	}
}

func (c *Config) normalizeExtraction() {
	c.Extraction.UnarBinary = strings.TrimSpace(c.Extraction.UnarBinary)
	if c.Extraction.UnarBinary == "" {
		c.Extraction.UnarBinary = defaultUnarBinary
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = defaultUnarTimeout
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath()
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
