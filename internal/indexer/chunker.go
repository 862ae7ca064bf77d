package indexer

import (
	"fmt"

	"docqa-ai/internal/extractor"
	"docqa-ai/internal/service"
)

// ChunkPages splits extracted page text into overlapping fixed-size windows.
// Sizes are measured in runes so multi-byte text chunks predictably. For each
// page, windows of size runes advance by size-overlap; the final window is
// truncated to the remaining text and may be shorter. Adjacent windows of one
// page share exactly overlap runes. Empty pages yield no chunks.
func ChunkPages(pages []extractor.PageText, source string, size, overlap int) ([]Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", service.ErrConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", service.ErrConfig, overlap, size)
	}

	step := size - overlap
	var chunks []Chunk

	for _, page := range pages {
		runes := []rune(page.Text)
		if len(runes) == 0 {
			continue
		}

		index := 0
		for start := 0; ; start += step {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, Chunk{
				Source: source,
				Page:   page.Page,
				Index:  index,
				Text:   string(runes[start:end]),
			})
			index++
			if end == len(runes) {
				break
			}
		}
	}

	return chunks, nil
}
