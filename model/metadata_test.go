package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValueScan(t *testing.T) {
	t.Run("Nil metadata is stored as empty object", func(t *testing.T) {
		var m Metadata
		value, err := m.Value()
		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), value)
	})

	t.Run("Scan accepts bytes and strings", func(t *testing.T) {
		var fromBytes Metadata
		require.NoError(t, fromBytes.Scan([]byte(`{"file_name":"a.txt"}`)))
		assert.Equal(t, "a.txt", fromBytes["file_name"])

		var fromString Metadata
		require.NoError(t, fromString.Scan(`{"chunk_index":2}`))
		assert.Equal(t, float64(2), fromString["chunk_index"])
	})

	t.Run("Scan nil gives empty metadata", func(t *testing.T) {
		m := Metadata{"stale": true}
		require.NoError(t, m.Scan(nil))
		assert.Empty(t, m)
	})

	t.Run("Scan rejects other types", func(t *testing.T) {
		var m Metadata
		assert.Error(t, m.Scan(42), "Expected error for integer value")
	})
}

func TestVectorMetadata(t *testing.T) {
	createdAt := time.Date(2024, 12, 8, 10, 30, 0, 0, time.UTC)

	t.Run("Content is truncated to the limit", func(t *testing.T) {
		content := ""
		for i := 0; i < 120; i++ {
			content += "0123456789"
		}

		m := NewVectorMetadata("analysis.txt", createdAt, 0, 2, content, 1000)
		assert.Len(t, m.Content, 1000, "Expected content to be truncated to 1000 characters")
		assert.Equal(t, "2024-12-08T10:30:00Z", m.CreationTime, "Expected RFC 3339 creation time")
	})

	t.Run("Metadata survives the generic map with JSON numbers", func(t *testing.T) {
		m := NewVectorMetadata("analysis.txt", createdAt, 3, 7, "phase two", 1000)

		stored := m.ToMetadata()
		value, err := stored.Value()
		require.NoError(t, err)

		var scanned Metadata
		require.NoError(t, scanned.Scan(value))

		assert.Equal(t, m, VectorMetadataFromMap(scanned), "Expected metadata to be read back")
	})

	t.Run("Payload integers are accepted", func(t *testing.T) {
		m := VectorMetadataFromMap(map[string]interface{}{"chunk_index": int64(4), "total_chunks": int64(9)})
		assert.Equal(t, 4, m.ChunkIndex)
		assert.Equal(t, 9, m.TotalChunks)
	})

	t.Run("Chunk identifier joins file name and index", func(t *testing.T) {
		assert.Equal(t, "meeting_analysis_20241208_103000.txt_0", ChunkID("meeting_analysis_20241208_103000.txt", 0))
	})
}
