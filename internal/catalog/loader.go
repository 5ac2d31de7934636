package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Format is a supported catalog file encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
)

// FormatFromPath picks a Format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q (want .yaml, .yml, .json or .jsonc)", filepath.Ext(path))
	}
}

// document is the on-disk catalog layout. Tools are normally nested under
// their category; a flat tools list with explicit categories is also accepted.
type document struct {
	Categories []categoryEntry `json:"categories" yaml:"categories"`
	Tools      []ToolRecord    `json:"tools" yaml:"tools"`
}

type categoryEntry struct {
	Category `yaml:",inline"`
	Tools    []ToolRecord `json:"tools" yaml:"tools"`
}

// Result is a loaded catalog plus what was skipped on the way.
type Result struct {
	Catalog *Catalog
	Report  ValidationReport
}

// Loader turns catalog documents into validated catalogs.
type Loader struct {
	logger *zap.Logger
}

// NewLoader returns a Loader that logs skipped records to logger.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("catalog")}
}

// LoadFile reads and parses the catalog at path.
func (l *Loader) LoadFile(path string) (*Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	res, err := l.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Parse decodes a catalog document, enriches its records and validates them.
func (l *Loader) Parse(data []byte, format Format) (*Result, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml catalog: %w", err)
		}
	case FormatJSON, FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("parsing json catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}

	records, categories := doc.flatten()
	clean, report := Validate(records)
	report.Log(l.logger)

	l.logger.Debug("catalog loaded",
		zap.Int("records", report.Accepted),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("categories", len(categories)))

	return &Result{Catalog: New(clean, categories), Report: report}, nil
}

// flatten returns enriched records in declaration order: nested tools first,
// category by category, then the flat tools list.
func (d document) flatten() ([]ToolRecord, []Category) {
	categories := make([]Category, 0, len(d.Categories))
	byID := make(map[string]Category, len(d.Categories))
	var records []ToolRecord

	for _, entry := range d.Categories {
		categories = append(categories, entry.Category)
		byID[entry.ID] = entry.Category
		for _, t := range entry.Tools {
			if t.Category != "" && t.Category != entry.ID {
				// explicit category wins over nesting
				records = append(records, enrich(t, byID[t.Category]))
				continue
			}
			records = append(records, enrich(t, entry.Category))
		}
	}

	for _, t := range d.Tools {
		cat, ok := byID[t.Category]
		if !ok {
			cat = Category{ID: t.Category}
		}
		records = append(records, enrich(t, cat))
	}

	return records, categories
}
