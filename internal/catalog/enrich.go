package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// acronyms are slug words rendered fully upper-cased in display names.
var acronyms = map[string]bool{
	"ai": true, "bmi": true, "emi": true, "faq": true, "gst": true,
	"jpg": true, "mcq": true, "mp3": true, "ocr": true, "pan": true,
	"pdf": true, "qr": true, "url": true,
}

// lowerWords stay lower-case unless they start the name.
var lowerWords = map[string]bool{
	"to": true, "and": true, "with": true, "of": true, "for": true,
}

// categorySynonyms adds related search terms to every tool whose category
// or slug mentions the key.
var categorySynonyms = map[string][]string{
	"pdf":     {"document", "file", "portable", "adobe"},
	"image":   {"photo", "picture", "graphic", "visual"},
	"video":   {"movie", "clip", "recording", "media"},
	"ai":      {"artificial", "intelligence", "smart", "auto"},
	"govt":    {"government", "official", "document", "indian"},
	"student": {"education", "study", "learning", "academic"},
	"finance": {"money", "calculation", "financial", "economy"},
	"utility": {"tool", "helper", "general", "misc"},
}

// synonymOrder fixes iteration order over categorySynonyms.
var synonymOrder = []string{"pdf", "image", "video", "ai", "govt", "student", "finance", "utility"}

// DisplayNameFromSlug turns "pdf-to-word" into "PDF to Word".
func DisplayNameFromSlug(slug string) string {
	parts := splitSlug(slug)
	for i, p := range parts {
		switch {
		case acronyms[p]:
			parts[i] = strings.ToUpper(p)
		case i > 0 && lowerWords[p]:
			// keep as is
		default:
			parts[i] = upperFirst(p)
		}
	}
	return strings.Join(parts, " ")
}

// DefaultDescription is used when a catalog entry has no description.
func DefaultDescription(slug string) string {
	return "Professional " + strings.Join(splitSlug(slug), " ") + " tool for your needs"
}

// GenerateKeywords derives search keywords for a tool from its slug and
// category. The result is de-duplicated and keeps first-seen order.
func GenerateKeywords(slug, categoryID, categoryName string) []string {
	slugParts := splitSlug(slug)
	nameWords := strings.Fields(strings.ToLower(categoryName))

	keywords := []string{
		strings.ToLower(slug),
		strings.Join(slugParts, " "),
	}
	if categoryName != "" {
		keywords = append(keywords, strings.ToLower(categoryName))
	}
	keywords = append(keywords, slugParts...)
	keywords = append(keywords, nameWords...)

	for _, key := range synonymOrder {
		if key == categoryID || contains(slugParts, key) || contains(nameWords, key) {
			keywords = append(keywords, categorySynonyms[key]...)
		}
	}

	return dedupe(keywords)
}

// enrich fills derived fields on a record that the catalog file left empty.
func enrich(r ToolRecord, cat Category) ToolRecord {
	if r.Category == "" {
		r.Category = cat.ID
	}
	if r.CategoryDisplayName == "" {
		r.CategoryDisplayName = cat.Name
	}
	if r.DisplayName == "" && r.ID != "" {
		r.DisplayName = DisplayNameFromSlug(r.ID)
	}
	if r.Description == "" && r.ID != "" {
		r.Description = DefaultDescription(r.ID)
	}
	if len(r.Keywords) == 0 && r.ID != "" {
		r.Keywords = GenerateKeywords(r.ID, r.Category, r.CategoryDisplayName)
	}
	r.Icon = ResolveIcon(r.Icon, cat.Icon)
	r.Color = ResolveColor(r.Color, cat.Color)
	return r
}

func splitSlug(slug string) []string {
	fields := strings.FieldsFunc(strings.ToLower(slug), func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	return fields
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
