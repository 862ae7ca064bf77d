package extractor

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_extractor.go -package=mocks docqa-ai/internal/extractor Extractor

import "context"

// PageText is the extracted text of a single document page.
type PageText struct {
	Page int    // 1-based page number
	Text string
}

// Extractor turns raw document bytes into per-page text.
type Extractor interface {
	// ExtractPages extracts text page by page. Pages with no extractable
	// text are returned with empty Text so page numbering stays intact.
	ExtractPages(ctx context.Context, data []byte) ([]PageText, error)
}
