package persist

import (
	"log/slog"
	"os"
	"path/filepath"
)

// RawDir keeps a copy of every downloaded window for inspection. Write
// failures are logged and otherwise ignored.
type RawDir struct {
	directory string
}

// NewRawDir clears and recreates `dir`.
func NewRawDir(dir string) (RawDir, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return RawDir{}, err
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return RawDir{}, err
	}
	return RawDir{directory: dir}, nil
}

func (d RawDir) Write(name string, raw string) {
	err := os.WriteFile(filepath.Join(d.directory, name), []byte(raw), 0600)
	if err != nil {
		slog.Warn("failed to write raw export", "name", name, "err", err)
	}
}
