package etl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefinitionExt is the file extension of query definitions.
const DefinitionExt = ".sql"

// DefaultDefinitionsDir is where query definitions are looked up when no
// directory is configured.
const DefaultDefinitionsDir = "sql/"

// DiscoverDefinitions lists the query definitions in dir, without reading
// them. Subdirectories are not descended into. The order is the order of the
// directory listing; collections are independent so it carries no meaning.
func DiscoverDefinitions(dir string) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list definitions in %s: %w", dir, err)
	}

	var defs []Definition
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) != DefinitionExt {
			continue
		}
		stem := strings.TrimSuffix(name, DefinitionExt)
		if stem == "" {
			continue
		}
		defs = append(defs, Definition{
			Name: stem,
			Path: filepath.Join(dir, name),
		})
	}
	return defs, nil
}

// Load reads the definition body from disk.
func (d *Definition) Load() error {
	b, err := os.ReadFile(d.Path)
	if err != nil {
		return fmt.Errorf("read %s: %w", d.Path, err)
	}
	d.Query = string(b)
	return nil
}
