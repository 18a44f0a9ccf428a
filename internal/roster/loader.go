package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles reading and instantiating rosters from the read-only data layer
type Loader struct {
	dataDirs []string
}

// NewLoader initializes a new roster Loader with the given data directory fallback hierarchy
func NewLoader(dataDirs []string) *Loader {
	return &Loader{
		dataDirs: dataDirs,
	}
}

// LoadRoster constructs a typed Roster object by searching through the data directories sequentially
func (l *Loader) LoadRoster(name string) (*Roster, error) {
	var r Roster
	dashName := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	ref := filepath.Join("rosters", fmt.Sprintf("%s.yaml", dashName))
	if err := l.load(ref, &r); err != nil {
		return nil, err
	}
	if r.Name == "" {
		r.Name = name
	}
	return &r, nil
}

func (l *Loader) load(ref string, target interface{}) error {
	for _, dir := range l.dataDirs {
		path := filepath.Join(dir, ref)
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			decoder := yaml.NewDecoder(f)
			if err := decoder.Decode(target); err != nil {
				return fmt.Errorf("failed to decode yaml reference %s: %w", ref, err)
			}
			return nil
		}
	}
	return fmt.Errorf("could not find or open reference %s in any available data directory", ref)
}
