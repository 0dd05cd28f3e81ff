package e2e

import (
	"os"
	"path/filepath"

	"github.com/abelbrown/eses/internal/dataset"
	"github.com/abelbrown/eses/internal/store"
)

// seedFixtureDB imports the built-in knowledge base into a SQLite file
// under homeDir and returns its path.
func seedFixtureDB(homeDir string) (string, error) {
	dataDir := filepath.Join(homeDir, ".eses")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	dbPath := filepath.Join(dataDir, "fixture.db")

	tbl, err := dataset.Builtin()
	if err != nil {
		return "", err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	if _, err := st.ReplaceSpecies("fixture", tbl.Records()); err != nil {
		return "", err
	}
	return dbPath, nil
}
