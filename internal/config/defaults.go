package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultTempRoot        = "~/.local/share/pagebind/temp"
	defaultLibraryDir      = "~/Documents/Livres/mangas"
	defaultLogDir          = "~/.local/share/pagebind/logs"
	defaultMergeOrder      = "natural"
	defaultSpeed           = "normal"
	defaultWorkers         = 5
	defaultMinSuccessRatio = 1.0 / 3.0
	defaultImageCacheSize  = 50
	defaultPageCacheSize   = 20
	defaultUnarBinary      = "unar"
	defaultUnarTimeout     = 60
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempRoot:   defaultTempRoot,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Conversion: Conversion{
			MergeOrder:      defaultMergeOrder,
			Speed:           defaultSpeed,
			Workers:         defaultWorkers,
			MinSuccessRatio: defaultMinSuccessRatio,
			ImageCacheSize:  defaultImageCacheSize,
			PageCacheSize:   defaultPageCacheSize,
		},
		Extraction: Extraction{
			UnarBinary:     defaultUnarBinary,
			TimeoutSeconds: defaultUnarTimeout,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultHistoryPath() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "pagebind", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/state/pagebind/history.db"
	}
	return filepath.Join(home, ".local", "state", "pagebind", "history.db")
}
