package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	questions []string
	err       error
}

func (f *fakeGenerator) GenerateResponse(ctx context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	if f.err != nil {
		return "", f.err
	}
	return "answer " + question[:4], nil
}

func (f *fakeGenerator) ActionItems(ctx context.Context) (string, error) {
	return "Meeting: Kickoff\n- Draft the charter", nil
}

func TestWriteAnalysis(t *testing.T) {
	now := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

	t.Run("Write all sections", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "meeting_analysis")
		generator := &fakeGenerator{}

		path, err := WriteAnalysis(context.Background(), dir, generator, now)
		require.NoError(t, err, "Expected WriteAnalysis to not return an error")
		assert.Equal(t, filepath.Join(dir, "meeting_analysis_20240301_140509.txt"), path)
		assert.Len(t, generator.questions, 7, "Expected one question per section except action items")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(content)

		assert.True(t, strings.HasPrefix(text, "Meeting Notes Analysis\n"+strings.Repeat("=", 50)+"\nGenerated on: 2024-03-01 14:05:09\n\n"))
		assert.Contains(t, text, "\n1. Integration Framework Analysis\n"+strings.Repeat("-", 30)+"\nQ: What are the phases")
		assert.Contains(t, text, "\n3. Action Items from the Meeting\n"+strings.Repeat("-", 30)+"\nMeeting: Kickoff\n- Draft the charter\n")
		assert.Contains(t, text, "\n8. Challenges and Solutions\n")
		assert.Contains(t, text, "A: answer What\n")
		assert.True(t, strings.HasSuffix(text, "\n"+strings.Repeat("=", 50)+"\nEnd of Analysis\n"))
	})

	t.Run("Failed answers are written", func(t *testing.T) {
		dir := t.TempDir()
		generator := &fakeGenerator{err: errors.New("quota exceeded")}

		path, err := WriteAnalysis(context.Background(), dir, generator, now)
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 7, strings.Count(string(content), "A: Error: quota exceeded\n"))
	})

	t.Run("Cancelled context writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := WriteAnalysis(ctx, dir, &fakeGenerator{}, now)
		assert.ErrorIs(t, err, context.Canceled)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestLatestFile(t *testing.T) {
	t.Run("Pick the newest text file", func(t *testing.T) {
		dir := t.TempDir()
		old := filepath.Join(dir, "meeting_analysis_20240301_100000.txt")
		newest := filepath.Join(dir, "meeting_analysis_20240302_100000.txt")
		require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
		require.NoError(t, os.WriteFile(newest, []byte("new"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip"), 0o644))

		base := time.Now()
		require.NoError(t, os.Chtimes(old, base.Add(-time.Hour), base.Add(-time.Hour)))
		require.NoError(t, os.Chtimes(newest, base, base))

		latest, err := LatestFile(dir)
		require.NoError(t, err)
		assert.Equal(t, newest, latest)
	})

	t.Run("Empty directory", func(t *testing.T) {
		_, err := LatestFile(t.TempDir())
		assert.ErrorIs(t, err, ErrNoAnalysisFiles)
	})

	t.Run("Missing directory", func(t *testing.T) {
		_, err := LatestFile(filepath.Join(t.TempDir(), "missing"))
		assert.ErrorIs(t, err, ErrNoAnalysisFiles)
	})
}
