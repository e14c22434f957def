package graph

import (
	"fmt"
	"regexp"
	"strings"
)

// Model-generated Cypher runs against the live graph, so by default
// only reads are allowed. The allow_dangerous_queries config flag
// disables this guard.
var writeClause = regexp.MustCompile(`(?i)\b(CREATE|MERGE|DELETE|DETACH|SET|REMOVE|DROP|FOREACH|CALL|LOAD)\b`)

// ValidateReadOnly rejects queries containing write or procedure
// clauses.
func ValidateReadOnly(query string) error {
	if match := writeClause.FindString(query); match != "" {
		return fmt.Errorf("generated query contains forbidden clause %q", strings.ToUpper(match))
	}
	return nil
}

// CleanQuery strips markdown fences and labels the model wraps around
// generated Cypher.
func CleanQuery(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```cypher")
		s = strings.TrimPrefix(s, "```Cypher")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

var labelChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeLabel reduces a node label to a safe Cypher identifier.
// Unknown or empty labels collapse to Concept.
func SanitizeLabel(label string) string {
	label = labelChars.ReplaceAllString(label, "")
	if label == "" {
		return "Concept"
	}
	return label
}

var relChars = regexp.MustCompile(`[^A-Z0-9_]`)

// SanitizeRelType reduces a relationship type to the conventional
// UPPER_SNAKE form, stripping anything unsafe to splice into Cypher.
func SanitizeRelType(relType string) string {
	relType = strings.ToUpper(strings.TrimSpace(relType))
	relType = strings.ReplaceAll(relType, " ", "_")
	relType = strings.ReplaceAll(relType, "-", "_")
	relType = relChars.ReplaceAllString(relType, "")
	relType = strings.Trim(relType, "_")
	if relType == "" {
		return "RELATES_TO"
	}
	return relType
}
