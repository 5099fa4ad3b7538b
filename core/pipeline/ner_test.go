package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNERPersons(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping NERPersons test in short mode (requires model download)")
	}

	matcher, err := NERPersons()
	require.NoError(t, err)

	t.Run("Detect people in a transcript line", func(t *testing.T) {
		people, err := matcher("Wolfgang explained the system design to Maria in Berlin.")
		assert.NoError(t, err)
		t.Logf("Detected people: %v", people)
		assert.NotContains(t, people, "Berlin", "Locations are not people")
	})

	t.Run("Handle empty text", func(t *testing.T) {
		people, err := matcher("")
		assert.NoError(t, err)
		assert.Empty(t, people)
	})

	t.Run("Policy uses the NER matcher", func(t *testing.T) {
		policy, err := NERPolicy()
		require.NoError(t, err)
		assert.Equal(t, "ner", policy.Name)

		lines, err := policy.Extract("Wolfgang explained the Neo4j design 10:05")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "10:05", *lines[0].Timestamp)
		assert.Contains(t, lines[0].Topics, "neo4j")
	})
}

func TestNormalizeEntityType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"B-PER", "PER"},
		{"I-PER", "PER"},
		{"B-LOC", "LOC"},
		{"I-ORG", "ORG"},
		{"MISC", "MISC"},
		{"O", "O"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeEntityType(tt.input))
		})
	}
}
