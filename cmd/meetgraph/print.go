package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/siherrmann/meetgraph/model"
)

const previewLength = 200

func printQueryResult(w io.Writer, query string, result *model.QueryResult) {
	fmt.Fprintf(w, "\nQuery: %s\n", query)
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "\nResponse:\n%s\n", result.Response)

	if result.Error == "" {
		fmt.Fprintln(w, "\nSources:")
		fmt.Fprintln(w, "\nVector Store Results:")
		for _, v := range result.VectorResults {
			fmt.Fprintf(w, "- Score: %.4f\n", v.Score)
			fmt.Fprintf(w, "  File: %s\n", v.File)
			fmt.Fprintf(w, "  Content: %s...\n", preview(v.Content))
		}

		fmt.Fprintln(w, "\nGraph Database Results:")
		for _, g := range result.GraphResults {
			fmt.Fprintf(w, "- Meeting: %s\n", g.MeetingTitle)
			fmt.Fprintf(w, "  Topics: %s\n", joinOrNone(g.Topics))
			fmt.Fprintf(w, "  People: %s\n", joinOrNone(g.People))
		}
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}

func printTimeline(w io.Writer, entries []*model.TimelineEntry) {
	for _, entry := range entries {
		line := fmt.Sprintf("[%s] %s", valueOr(entry.Timestamp, "-"), entry.Content)
		if entry.Speaker != nil {
			line += " (" + *entry.Speaker + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func printActivities(w io.Writer, activities []*model.PersonActivity) {
	for _, a := range activities {
		fmt.Fprintf(w, "%s | %s (%s) [%s] %s\n",
			a.Relationship,
			a.MeetingTitle,
			valueOr(a.MeetingDate, "no date"),
			valueOr(a.Timestamp, "-"),
			a.Content,
		)
	}
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) > previewLength {
		return string(runes[:previewLength])
	}
	return content
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

func valueOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
