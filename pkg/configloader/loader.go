// Package configloader reads configuration documents from YAML and TOML,
// loads runtime settings from the environment, and reloads documents into a
// config.Storage when their file changes.
//
// Documents are decoded without key folding, so the case sensitive section
// names (Formatter, Outstream, Logger) and definition keys survive as written.
package configloader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyp3rd/ewrap"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyp3rd/lndl/internal/utils"
	"github.com/hyp3rd/lndl/pkg/config"
)

// ErrUnsupportedFormat is returned for a document file whose extension is
// neither YAML nor TOML.
var ErrUnsupportedFormat = ewrap.New("unsupported configuration format")

// FromYAML parses a YAML document.
func FromYAML(data []byte) (config.Document, error) {
	raw := map[string]any{}

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return config.Document{}, ewrap.Wrap(err, "failed to read YAML configuration")
	}

	return config.DocumentFromMap(raw)
}

// FromTOML parses a TOML document.
func FromTOML(data []byte) (config.Document, error) {
	raw := map[string]any{}

	decoder := toml.NewDecoder(bytes.NewReader(data))

	err := decoder.Decode(&raw)
	if err != nil {
		return config.Document{}, ewrap.Wrap(err, "failed to read TOML configuration")
	}

	return config.DocumentFromMap(raw)
}

// FromFile reads a document, choosing the parser by extension: .yaml, .yml
// or .toml.
func FromFile(path string) (config.Document, error) {
	cleanPath, err := utils.CleanPath(path)
	if err != nil {
		return config.Document{}, ewrap.Wrap(err, "invalid configuration path")
	}

	var parse func([]byte) (config.Document, error)

	switch strings.ToLower(filepath.Ext(cleanPath)) {
	case ".yaml", ".yml":
		parse = FromYAML
	case ".toml":
		parse = FromTOML
	default:
		return config.Document{}, ewrap.Wrap(ErrUnsupportedFormat, "reading configuration file").
			WithMetadata("path", cleanPath)
	}

	//nolint:gosec // G304: the path is cleaned by utils.CleanPath.
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return config.Document{}, ewrap.Wrap(err, "failed to read configuration file").
			WithMetadata("path", cleanPath)
	}

	doc, err := parse(data)
	if err != nil {
		return config.Document{}, ewrap.Wrap(err, "failed to parse configuration file").
			WithMetadata("path", cleanPath)
	}

	return doc, nil
}

// Load reads the document at path into storage.
func Load(storage *config.Storage, path string) (config.Report, error) {
	doc, err := FromFile(path)
	if err != nil {
		return config.Report{}, err
	}

	return storage.ReadConfig(doc), nil
}
