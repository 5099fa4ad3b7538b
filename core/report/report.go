// Package report writes question and answer analyses of the meeting graph.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/siherrmann/meetgraph/helper"
)

const (
	FilePrefix     = "meeting_analysis_"
	FileTimeLayout = "20060102_150405"
	DateLayout     = "2006-01-02 15:04:05"
)

var ErrNoAnalysisFiles = errors.New("no analysis files found")

// Generator answers questions and lists action items.
type Generator interface {
	GenerateResponse(ctx context.Context, question string) (string, error)
	ActionItems(ctx context.Context) (string, error)
}

// Section is one numbered part of the analysis. Sections without a
// question list the action items.
type Section struct {
	Title    string
	Question string
}

// Sections are written in order and numbered from 1.
var Sections = []Section{
	{Title: "Integration Framework Analysis", Question: "What are the phases of the integration framework that were discussed?"},
	{Title: "System Design Analysis", Question: "What was discussed about the system design and who is responsible for it?"},
	{Title: "Action Items from the Meeting"},
	{Title: "Project Management Analysis", Question: "Who is the project manager and what are their responsibilities?"},
	{Title: "Technical Implementation Details", Question: "What were the key technical decisions and implementation details discussed about Neo4j integration?"},
	{Title: "Team Member Contributions", Question: "What were the main contributions and responsibilities discussed for each team member?"},
	{Title: "Timeline and Milestones", Question: "What are the key milestones and timeline expectations discussed in the meeting?"},
	{Title: "Challenges and Solutions", Question: "What challenges were identified during the meeting and what solutions were proposed?"},
}

// FileName returns the analysis file name for now.
func FileName(now time.Time) string {
	return FilePrefix + now.Format(FileTimeLayout) + ".txt"
}

// WriteAnalysis answers all sections and writes the analysis to dir, which
// is created when missing. A failed answer is written as its error message;
// file errors and a done context abort the analysis.
func WriteAnalysis(ctx context.Context, dir string, generator Generator, now time.Time) (string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", helper.NewError("create output directory", err)
	}

	var b strings.Builder
	b.WriteString("Meeting Notes Analysis\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", now.Format(DateLayout))

	for i, section := range Sections {
		if err := ctx.Err(); err != nil {
			return "", helper.NewError("write analysis", err)
		}

		fmt.Fprintf(&b, "\n%d. %s\n", i+1, section.Title)
		b.WriteString(strings.Repeat("-", 30) + "\n")

		if section.Question == "" {
			items, err := generator.ActionItems(ctx)
			if err != nil {
				items = "Error: " + err.Error()
			}
			b.WriteString(items + "\n")
			continue
		}

		fmt.Fprintf(&b, "Q: %s\n", section.Question)
		answer, err := generator.GenerateResponse(ctx, section.Question)
		if err != nil {
			answer = "Error: " + err.Error()
		}
		fmt.Fprintf(&b, "A: %s\n", answer)
	}

	b.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	b.WriteString("End of Analysis\n")

	path := filepath.Join(dir, FileName(now))
	err = os.WriteFile(path, []byte(b.String()), 0o644)
	if err != nil {
		return "", helper.NewError("write analysis file", err)
	}
	return path, nil
}

// LatestFile returns the most recently modified .txt file in dir.
func LatestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoAnalysisFiles
		}
		return "", helper.NewError("read output directory", err)
	}

	var latest string
	var latestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", helper.NewError("stat analysis file", err)
		}
		if latest == "" || info.ModTime().After(latestTime) {
			latest = filepath.Join(dir, entry.Name())
			latestTime = info.ModTime()
		}
	}

	if latest == "" {
		return "", ErrNoAnalysisFiles
	}
	return latest, nil
}
