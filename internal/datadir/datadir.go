// Package datadir resolves the on-disk layout of the service: where the
// vector database, the per-article sidecars, and the usage database live.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default data directory name under $HOME.
	DefaultDirName = ".ragserver"

	// EnvVar is the environment variable that overrides the data directory.
	EnvVar = "RAGSERVER_DATA_DIR"

	articlesSubdir = "articles"
	databaseSubdir = "data"

	dbFileName    = "vectors.json"
	usageFileName = "usage.db"
)

// DataDir is the single source of truth for all data paths.
//
// Resolution priority:
//  1. RAGSERVER_DATA_DIR environment variable
//  2. configValue argument (from the config file's data_dir field)
//  3. ~/.ragserver/
type DataDir struct {
	root string
}

// New returns a DataDir rooted at the resolved data directory. It does not
// create anything; call EnsureDirs for that.
func New(configValue string) (*DataDir, error) {
	if env := os.Getenv(EnvVar); env != "" {
		return &DataDir{root: env}, nil
	}
	if configValue != "" {
		return &DataDir{root: configValue}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("datadir: resolve home directory: %w", err)
	}
	return &DataDir{root: filepath.Join(home, DefaultDirName)}, nil
}

// Root returns the base data directory path.
func (d *DataDir) Root() string { return d.root }

// ArticlesDir returns {root}/articles/, where sidecar documents live.
func (d *DataDir) ArticlesDir() string { return filepath.Join(d.root, articlesSubdir) }

// DatabaseDir returns {root}/data/.
func (d *DataDir) DatabaseDir() string { return filepath.Join(d.root, databaseSubdir) }

// DBPath returns the vector database file path.
func (d *DataDir) DBPath() string { return filepath.Join(d.DatabaseDir(), dbFileName) }

// UsageDBPath returns the usage accounting database file path.
func (d *DataDir) UsageDBPath() string { return filepath.Join(d.DatabaseDir(), usageFileName) }

// EnsureDirs creates the directory tree with owner-only permissions.
func (d *DataDir) EnsureDirs() error {
	for _, dir := range []string{d.root, d.ArticlesDir(), d.DatabaseDir()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("datadir: create %s: %w", dir, err)
		}
	}
	return nil
}
