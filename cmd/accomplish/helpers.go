package main

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"accomplish/internal/api"
)

var identifierPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var upperCaser = cases.Upper(language.Und)
var titleCaser = cases.Title(language.English)

// splitCSV splits a comma separated flag value, trimming whitespace and
// dropping empty items.
func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// normalizeIdentifier upper-cases a project identifier the way the backend
// stores it.
func normalizeIdentifier(identifier string) string {
	return upperCaser.String(strings.TrimSpace(identifier))
}

func validateIdentifier(identifier string) error {
	if !identifierPattern.MatchString(identifier) {
		return fmt.Errorf("project identifier must be exactly three letters, got %q", identifier)
	}
	return nil
}

// findProject matches a project by identifier, case-insensitively.
func findProject(projects []api.Project, identifier string) (api.Project, bool) {
	for _, project := range projects {
		if strings.EqualFold(project.Identifier, identifier) {
			return project, true
		}
	}
	return api.Project{}, false
}

// truncate shortens s for table cells, appending an ellipsis when trimmed.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
