package settings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a settings document and validates it against the default
// schema. The document format is selected by extension: .yaml/.yml or .toml.
func LoadFile(path string) (Settings, error) {
	slog.Info("loading settings", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	user := Settings{}
	switch documentFormat(path) {
	case "yaml":
		if err := yaml.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	case "toml":
		if err := toml.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("settings %s: unsupported document format %q", path, filepath.Ext(path))
	}

	return Validate(user)
}

// WriteFile writes a settings mapping as a document in the format implied by
// the path extension. Tensors and pairs are written as nested lists so the
// document stays loosely typed.
func WriteFile(s Settings, path string) error {
	doc := make(map[string]any, len(s))
	for key, value := range s {
		doc[key] = documentValue(value)
	}

	var raw []byte
	var err error
	switch documentFormat(path) {
	case "yaml":
		raw, err = yaml.Marshal(doc)
	case "toml":
		// TOML has no null; unset keys are simply omitted.
		for key, value := range doc {
			if value == nil {
				delete(doc, key)
			}
		}
		raw, err = toml.Marshal(doc)
	default:
		return fmt.Errorf("settings %s: unsupported document format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func documentFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}

// documentValue lowers canonical typed values to plain nested lists for
// document encoders.
func documentValue(value any) any {
	switch v := value.(type) {
	case Tensor:
		rows := make([][]float64, 3)
		for i := range v {
			rows[i] = append([]float64(nil), v[i][:]...)
		}
		return rows
	case ElasticTensor:
		outer := make([]any, 3)
		for i := range v {
			inner := make([]any, 3)
			for j := range v[i] {
				rows := make([][]float64, 3)
				for k := range v[i][j] {
					rows[k] = append([]float64(nil), v[i][j][k][:]...)
				}
				inner[j] = rows
			}
			outer[i] = inner
		}
		return outer
	case [2]float64:
		return []float64{v[0], v[1]}
	default:
		return value
	}
}
