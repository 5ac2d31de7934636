package catalog

import (
	_ "embed"
	"fmt"

	"go.uber.org/zap"
)

//go:embed builtin/catalog.yaml
var builtinYAML []byte

// Builtin returns the catalog shipped with the binary.
func Builtin(logger *zap.Logger) (*Catalog, error) {
	res, err := NewLoader(logger).Parse(builtinYAML, FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("builtin catalog: %w", err)
	}
	return res.Catalog, nil
}

// Load returns the catalog at path, or the builtin catalog when path is empty.
func Load(path string, logger *zap.Logger) (*Result, error) {
	loader := NewLoader(logger)
	if path == "" {
		return loader.Parse(builtinYAML, FormatYAML)
	}
	return loader.LoadFile(path)
}
