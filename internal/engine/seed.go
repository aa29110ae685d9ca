package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk layout of a seed or export file.
type SeedFile struct {
	Records []schema.Record `yaml:"records"`
}

// DefaultSeed returns the demo records the store starts with when no seed file is configured.
func DefaultSeed() []schema.Record {
	return []schema.Record{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Role: "Admin"},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Role: "User"},
	}
}

// LoadSeed reads records from a YAML seed file.
func LoadSeed(path string) ([]schema.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var sf SeedFile
	if err := yaml.Unmarshal(content, &sf); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, r := range sf.Records {
		if err := (schema.NewRecord{Name: r.Name, Email: r.Email, Role: r.Role}).Validate(); err != nil {
			return nil, fmt.Errorf("seed file %s: record %d: %w", path, i, err)
		}
	}
	return sf.Records, nil
}

// WriteSeed writes records to path as YAML atomically.
// The file is written to a temporary sibling first and renamed over the target, so a reader
// sees either the old file or the new one, never a partial write.
func WriteSeed(path string, records []schema.Record) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	bytes, err := yaml.Marshal(SeedFile{Records: records})
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}
