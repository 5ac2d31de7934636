/*
Package catalog supplies the static list of Toolora tools that the search
index is built from.

A catalog is loaded once at startup, either from the embedded builtin
definition or from a YAML/JSON/JSONC file, enriched with derived display
names, descriptions and keywords, validated, and then treated as read-only.
Reloading a catalog produces a brand new value; records are never mutated.
*/
package catalog

// ToolRecord describes one tool offered by the site.
type ToolRecord struct {
	// ID is the unique slug (e.g. "pdf-merge"). It is also the URL path segment.
	ID string `json:"id" yaml:"id"`

	// DisplayName is the human-readable name (e.g. "PDF Merge").
	DisplayName string `json:"displayName" yaml:"displayName"`

	// Category is the category slug (e.g. "pdf").
	Category string `json:"category" yaml:"category"`

	// CategoryDisplayName is the category's human-readable name (e.g. "PDF Toolkit").
	CategoryDisplayName string `json:"categoryDisplayName" yaml:"categoryDisplayName"`

	// Description is free text shown under the tool name.
	Description string `json:"description" yaml:"description"`

	// Keywords are extra search terms, in declaration order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Icon is a lucide icon name. Not searched.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Color is a tailwind color family. Not searched.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`

	// Popular marks tools featured on the homepage before any usage is recorded.
	Popular bool `json:"popular,omitempty" yaml:"popular,omitempty"`
}

// URL returns the site path of the tool page.
func (r ToolRecord) URL() string {
	return "/tools/" + r.ID
}

// Category groups tools under a shared name, icon and color.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Icon        string `json:"icon" yaml:"icon"`
	Color       string `json:"color" yaml:"color"`
	Description string `json:"description" yaml:"description"`
}

// Catalog is an ordered, read-only collection of tool records.
// Record order is the catalog order used to break ranking ties.
type Catalog struct {
	records    []ToolRecord
	byID       map[string]int
	categories []Category
}

// New builds a catalog from already validated records. Records whose ID
// was already seen are dropped; use Validate first to get a report.
func New(records []ToolRecord, categories []Category) *Catalog {
	c := &Catalog{
		records:    make([]ToolRecord, 0, len(records)),
		byID:       make(map[string]int, len(records)),
		categories: append([]Category(nil), categories...),
	}
	for _, r := range records {
		if _, dup := c.byID[r.ID]; dup {
			continue
		}
		c.byID[r.ID] = len(c.records)
		c.records = append(c.records, r)
	}
	return c
}

// Records returns a copy of the records in catalog order.
func (c *Catalog) Records() []ToolRecord {
	out := make([]ToolRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Get returns the record with the given ID.
func (c *Catalog) Get(id string) (ToolRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return ToolRecord{}, false
	}
	return c.records[i], true
}

// Categories returns the declared categories in declaration order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// ByCategory returns the records of one category in catalog order.
func (c *Catalog) ByCategory(category string) []ToolRecord {
	var out []ToolRecord
	for _, r := range c.records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Popular returns the records flagged as popular, in catalog order.
func (c *Catalog) Popular() []ToolRecord {
	var out []ToolRecord
	for _, r := range c.records {
		if r.Popular {
			out = append(out, r)
		}
	}
	return out
}

// CategoryCounts returns the number of tools per category slug.
func (c *Catalog) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range c.records {
		counts[r.Category]++
	}
	return counts
}
