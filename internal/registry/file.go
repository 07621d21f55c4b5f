package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk layout of a repositories file.
type fileFormat struct {
	Repositories []Repository `yaml:"repositories"`
}

// LoadFile reads repository mappings from a YAML file.
func LoadFile(path string) ([]Repository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return f.Repositories, nil
}
