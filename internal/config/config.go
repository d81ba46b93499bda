package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the tunables for the undoctl demo binary. The undo engine
// itself (internal/undo) takes no config beyond what callers pass into
// New/Activate directly; this struct only covers the CLI wrapper. undoctl
// reads only DBPath; sqlitedb.Open sets the journal mode and busy timeout
// itself, so BusyTimeout, JournalMode and ConnectTimeout have no effect.
type Config struct {
	DBPath         string
	BusyTimeout    time.Duration
	JournalMode    string
	ConnectTimeout time.Duration
}

func Default() Config {
	return Config{
		DBPath:         defaultDBPath(),
		BusyTimeout:    5 * time.Second,
		JournalMode:    "WAL",
		ConnectTimeout: 3 * time.Second,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "undoctl.db"
	}
	return filepath.Join(home, ".local", "state", "undoctl", "notes.db")
}
