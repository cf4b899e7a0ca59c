package domain

import "strings"

// tagCategories maps a tag to the single category it belongs to.
// Tags without an entry fall into CategoryGeneral.
var tagCategories = map[string]string{
	"golang":       "programming",
	"javascript":   "programming",
	"python":       "programming",
	"rust":         "programming",
	"webdev":       "programming",
	"devops":       "engineering",
	"databases":    "engineering",
	"security":     "engineering",
	"design":       "creative",
	"writing":      "creative",
	"photography":  "creative",
	"music":        "creative",
	"startups":     "business",
	"marketing":    "business",
	"career":       "business",
	"productivity": "lifestyle",
	"travel":       "lifestyle",
	"health":       "lifestyle",
}

// CategoryGeneral is the category of tags without a dedicated mapping.
const CategoryGeneral = "general"

// CategoryForTag returns the category a tag belongs to.
func CategoryForTag(tag string) string {
	if category, ok := tagCategories[NormalizeTag(tag)]; ok {
		return category
	}
	return CategoryGeneral
}

// NormalizeTag lowercases a tag and trims surrounding whitespace.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes all tags and drops empties and duplicates,
// preserving first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = NormalizeTag(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
