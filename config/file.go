package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a flat parameter file. The format is chosen by extension:
// .yaml/.yml or .toml. Values must be scalars; they are kept as strings so
// that they resolve exactly like command-line parameters.
func LoadFile(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, err
	}

	raw := make(map[string]any)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	default:
		return Parameters{}, fmt.Errorf("unsupported parameter file type %q", ext)
	}
	if err != nil {
		return Parameters{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	p := NewParameters(nil)
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
			p.Set(name, "")
		case map[string]any, []any:
			return Parameters{}, fmt.Errorf("parameter %q in %s: nested values are not supported", name, path)
		default:
			p.Set(name, fmt.Sprint(v))
		}
	}
	return p, nil
}
