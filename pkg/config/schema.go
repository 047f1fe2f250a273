package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/vitedocs-config.schema.json
var configSchema []byte

// Schema returns the embedded JSON Schema for vitedocs configuration files
func Schema() []byte {
	return append([]byte(nil), configSchema...)
}

// ValidateFile decodes a configuration file by extension and validates it
// against the embedded schema.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected config file
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
	}
	doc, err := decodeDocument(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	if err := ValidateDocument(doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidateDocument validates an already decoded configuration document
func ValidateDocument(doc interface{}) error {
	if doc == nil {
		return nil
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(configSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: schema validation error: %v", ErrInvalid, err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("%w: configuration validation failed:\n%s", ErrInvalid, strings.Join(errs, "\n"))
	}
	return nil
}

func decodeDocument(data []byte, ext string) (interface{}, error) {
	switch ext {
	case ".toml":
		var doc map[string]interface{}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	case ".yaml", ".yml", ".json", "":
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported config file type %q", ext)
	}
}
