package model

import (
	"fmt"
	"time"
)

// VectorMetadata is stored next to every embedded chunk.
type VectorMetadata struct {
	FileName     string `json:"file_name"`
	CreationTime string `json:"creation_time"`
	ChunkIndex   int    `json:"chunk_index"`
	TotalChunks  int    `json:"total_chunks"`
	Content      string `json:"content"`
}

// NewVectorMetadata truncates content to maxContent characters when maxContent > 0.
func NewVectorMetadata(fileName string, createdAt time.Time, chunkIndex, totalChunks int, content string, maxContent int) VectorMetadata {
	runes := []rune(content)
	if maxContent > 0 && len(runes) > maxContent {
		content = string(runes[:maxContent])
	}

	return VectorMetadata{
		FileName:     fileName,
		CreationTime: createdAt.UTC().Format(time.RFC3339),
		ChunkIndex:   chunkIndex,
		TotalChunks:  totalChunks,
		Content:      content,
	}
}

// ToMetadata converts the metadata into a generic map for JSON storage.
func (m VectorMetadata) ToMetadata() Metadata {
	return Metadata{
		"file_name":     m.FileName,
		"creation_time": m.CreationTime,
		"chunk_index":   m.ChunkIndex,
		"total_chunks":  m.TotalChunks,
		"content":       m.Content,
	}
}

// VectorMetadataFromMap reads metadata back from a generic map. Numbers may
// arrive as float64 (JSON) or int64 (payload stores).
func VectorMetadataFromMap(m map[string]interface{}) VectorMetadata {
	return VectorMetadata{
		FileName:     stringValue(m["file_name"]),
		CreationTime: stringValue(m["creation_time"]),
		ChunkIndex:   intValue(m["chunk_index"]),
		TotalChunks:  intValue(m["total_chunks"]),
		Content:      stringValue(m["content"]),
	}
}

// VectorRecord is one chunk ready for upsert. ID is "<file name>_<chunk index>".
type VectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata VectorMetadata `json:"metadata"`
}

// ChunkID builds the identifier of the chunk at index of fileName.
func ChunkID(fileName string, index int) string {
	return fmt.Sprintf("%s_%d", fileName, index)
}

// VectorMatch is one similarity search hit.
type VectorMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata VectorMetadata `json:"metadata"`
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
