package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// RecordError explains why a single catalog entry was skipped.
type RecordError struct {
	// Index is the entry position in the source list.
	Index  int
	ID     string
	Reason string
}

func (e *RecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("record #%d (%s): %s", e.Index, e.ID, e.Reason)
}

// ValidationReport summarizes a Validate pass.
type ValidationReport struct {
	Total    int
	Accepted int
	Skipped  []*RecordError
}

// OK reports whether every entry was accepted.
func (r ValidationReport) OK() bool {
	return len(r.Skipped) == 0
}

// Log writes one warning per skipped entry.
func (r ValidationReport) Log(logger *zap.Logger) {
	if logger == nil {
		return
	}
	for _, e := range r.Skipped {
		logger.Warn("skipping malformed catalog record",
			zap.Int("index", e.Index),
			zap.String("id", e.ID),
			zap.String("reason", e.Reason))
	}
}

// Validate filters records down to the well-formed ones. A record needs a
// non-blank ID, display name and category. When an ID repeats, the first
// occurrence wins. Validation never fails as a whole.
func Validate(records []ToolRecord) ([]ToolRecord, ValidationReport) {
	report := ValidationReport{Total: len(records)}
	clean := make([]ToolRecord, 0, len(records))
	seen := make(map[string]bool, len(records))

	for i, r := range records {
		if reason := checkRecord(r); reason != "" {
			report.Skipped = append(report.Skipped, &RecordError{Index: i, ID: r.ID, Reason: reason})
			continue
		}
		if seen[r.ID] {
			report.Skipped = append(report.Skipped, &RecordError{Index: i, ID: r.ID, Reason: "duplicate id"})
			continue
		}
		seen[r.ID] = true
		clean = append(clean, r)
	}

	report.Accepted = len(clean)
	return clean, report
}

// IsWellFormed reports whether r carries every required field.
func IsWellFormed(r ToolRecord) bool {
	return checkRecord(r) == ""
}

func checkRecord(r ToolRecord) string {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return "missing id"
	case strings.TrimSpace(r.DisplayName) == "":
		return "missing displayName"
	case strings.TrimSpace(r.Category) == "":
		return "missing category"
	}
	return ""
}
