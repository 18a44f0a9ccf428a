package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// EncounterManager bridges configuration settings with local file organization.
// It handles directory creation and path resolution for encounter data,
// independent of the snapshot storage mechanism.
type EncounterManager struct {
	DataDir string
}

// NewEncounterManager returns a manager localized to the specified workspace
// setting directory.
func NewEncounterManager(dataDir string) *EncounterManager {
	return &EncounterManager{DataDir: dataDir}
}

// GetEncounterPath produces safe joined absolute dir paths.
func (e *EncounterManager) GetEncounterPath(name string) string {
	return filepath.Join(e.DataDir, "encounters", name)
}

// GetJournalPath returns the path to the event journal file for an encounter.
func (e *EncounterManager) GetJournalPath(name string) string {
	return filepath.Join(e.GetEncounterPath(name), "log.jsonl")
}

// GetDatabasePath returns the shared snapshot database path.
func (e *EncounterManager) GetDatabasePath() string {
	return filepath.Join(e.DataDir, "encounters.db")
}

// Create generates the standard directory structure for an initialized
// encounter. Returns the journal file path (caller is responsible for opening
// it with the appropriate store).
func (e *EncounterManager) Create(name string) (string, error) {
	path := e.GetEncounterPath(name)

	dirs := []string{
		path,
		filepath.Join(e.DataDir, "rosters"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return e.GetJournalPath(name), nil
}

// Load verifies the encounter directory exists and returns the journal path.
func (e *EncounterManager) Load(name string) (string, error) {
	path := e.GetEncounterPath(name)
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return "", fmt.Errorf("encounter target folder not properly found: %s", path)
	}

	return e.GetJournalPath(name), nil
}
