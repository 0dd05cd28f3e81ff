package expert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abelbrown/eses/internal/dataset"
	"github.com/abelbrown/eses/internal/store"
)

// IsDatabase reports whether path names a SQLite dataset.
func IsDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// LoadTable loads the dataset named by path. Empty means the built-in
// knowledge base, a database extension goes through the store, anything
// else is read as a delimited file.
func LoadTable(path string) (*dataset.Table, error) {
	if path == "" {
		return dataset.Builtin()
	}
	if !IsDatabase(path) {
		return dataset.LoadFile(path)
	}

	// Opening a missing database would create it.
	if _, err := os.Stat(path); err != nil {
		return nil, &dataset.LoadError{Source: path, Err: err}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer st.Close()

	return st.LoadTable()
}
