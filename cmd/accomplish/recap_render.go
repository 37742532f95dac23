package main

import (
	"fmt"
	"io"
	"strings"

	"accomplish/internal/api"
	"accomplish/internal/history"
)

// buildFilterDescription summarizes the active filters in one human-readable
// clause, leading space included.
func buildFilterDescription(fromISO, toISO, since string, tags, excludeTags, projects []string) string {
	var parts []string

	switch {
	case since != "":
		parts = append(parts, fmt.Sprintf("from last %s", since))
	case fromISO != "" && toISO != "":
		from := datePart(fromISO)
		to := datePart(toISO)
		if from == to {
			parts = append(parts, fmt.Sprintf("for %s", from))
		} else {
			parts = append(parts, fmt.Sprintf("from %s to %s", from, to))
		}
	case fromISO != "":
		parts = append(parts, fmt.Sprintf("from %s", datePart(fromISO)))
	case toISO != "":
		parts = append(parts, fmt.Sprintf("until %s", datePart(toISO)))
	}

	if len(projects) > 0 {
		upper := make([]string, 0, len(projects))
		for _, project := range projects {
			upper = append(upper, normalizeIdentifier(project))
		}
		parts = append(parts, fmt.Sprintf("for project %s", strings.Join(upper, ", ")))
	}
	if len(tags) > 0 {
		parts = append(parts, fmt.Sprintf("tagged with %s", strings.Join(tags, ", ")))
	}
	if len(excludeTags) > 0 {
		parts = append(parts, fmt.Sprintf("excluding tags %s", strings.Join(excludeTags, ", ")))
	}

	if len(parts) == 0 {
		return " for today"
	}
	return " " + strings.Join(parts, ", ")
}

// printRecapResult renders a completed recap: the content first, then the
// metadata trailer.
func printRecapResult(w io.Writer, status *api.RecapStatus) {
	if status.Content != nil {
		fmt.Fprintln(w, *status.Content)
	}
	fmt.Fprintln(w)

	if meta := status.Metadata; meta != nil {
		fmt.Fprintf(w, "Processed %d worklog entries\n", meta.EntryCount)
		if len(meta.Projects) > 0 {
			fmt.Fprintf(w, "Projects: %s\n", strings.Join(meta.Projects, ", "))
		}
		if len(meta.Tags) > 0 {
			fmt.Fprintf(w, "Tags: %s\n", strings.Join(meta.Tags, ", "))
		}
		if filters := status.Filters; filters != nil {
			var parts []string
			if len(filters.ProjectIDs) > 0 {
				parts = append(parts, fmt.Sprintf("projects: %s", strings.Join(filters.ProjectIDs, ", ")))
			}
			if len(filters.Tags) > 0 {
				parts = append(parts, fmt.Sprintf("tags: %s", strings.Join(filters.Tags, ", ")))
			}
			if len(parts) > 0 {
				fmt.Fprintf(w, "Filtered by: %s\n", strings.Join(parts, ", "))
			}
		}
	}

	fmt.Fprintln(w, "Recap complete!")
}

func renderHistoryTable(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.RequestedAt.Format("2006-01-02 15:04"),
			fmt.Sprintf("%s to %s", datePart(entry.From), datePart(entry.To)),
			fmt.Sprintf("%d", entry.EntryCount),
			truncate(entry.Content, 60),
		})
	}
	return renderTable(
		[]column{
			{title: "Requested"},
			{title: "Range"},
			{title: "Entries", numeric: true},
			{title: "Recap"},
		},
		rows,
	)
}
