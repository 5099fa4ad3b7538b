package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/meetgraph/model"
)

// WordChunker creates a chunker that accumulates whitespace separated words
// until their length plus one separator each reaches maxChars. The last
// partial chunk is always kept and words are never split.
func WordChunker(maxChars int) ChunkFunc {
	return func(text string, basePath string) ([]ChunkWithPath, error) {
		if maxChars <= 0 {
			return nil, fmt.Errorf("max chunk size must be positive, got %d", maxChars)
		}

		var chunks []ChunkWithPath
		var current []string
		size := 0

		emit := func() {
			index := len(chunks)
			chunks = append(chunks, ChunkWithPath{
				Content:    strings.Join(current, " "),
				Path:       model.ChunkID(basePath, index),
				ChunkIndex: index,
			})
			current = nil
			size = 0
		}

		for _, word := range strings.Fields(text) {
			current = append(current, word)
			size += utf8.RuneCountInString(word) + 1
			if size >= maxChars {
				emit()
			}
		}
		if len(current) > 0 {
			emit()
		}

		return chunks, nil
	}
}
