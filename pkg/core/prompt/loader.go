package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// libraryFile is the on-disk shape of the prompt library.
type libraryFile struct {
	Prompts []*Template `yaml:"prompts"`
}

// LoadLibrary loads prompt templates from a YAML file into the global
// registry. The library is optional; callers treat a missing file as an
// empty library.
func LoadLibrary(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read prompt library: %w", err)
	}

	var lib libraryFile
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return fmt.Errorf("failed to parse prompt library: %w", err)
	}

	registry := Get()
	for _, pt := range lib.Prompts {
		if err := registry.Register(pt); err != nil {
			return fmt.Errorf("failed to register %q: %w", pt.Name, err)
		}
	}
	return nil
}
