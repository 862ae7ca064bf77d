package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docqa-ai/internal/contextutil"
)

// PDFExtractor implements Extractor for PDF documents using pdfcpu.
// pdfcpu operates on files, so each extraction round-trips through a
// per-call temp directory that is removed before returning.
type PDFExtractor struct {
	conf *model.Configuration
}

// NewPDFExtractor creates a new PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		conf: model.NewDefaultConfiguration(),
	}
}

// ExtractPages extracts text content page by page from PDF bytes.
func (e *PDFExtractor) ExtractPages(ctx context.Context, data []byte) ([]PageText, error) {
	logger := contextutil.LoggerFromContext(ctx)

	workDir, err := os.MkdirTemp("", "docqa-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	pdfPath := filepath.Join(workDir, "upload.pdf")
	if err := os.WriteFile(pdfPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	outDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	if err := api.ExtractContentFile(pdfPath, outDir, nil, e.conf); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	// pdfcpu writes one Content_page_N file per page.
	pageTexts := make(map[int]string)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(entry.Name(), "Content_page_%d", &pageNum); err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			logger.WarnContext(ctx, "failed to read extracted page", "page", pageNum, "error", err)
			continue
		}
		pageTexts[pageNum] = strings.TrimSpace(string(content))
	}

	pages := make([]PageText, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, PageText{
			Page: pageNum,
			Text: pageTexts[pageNum],
		})
	}

	logger.DebugContext(ctx, "extracted PDF", "pages", pageCount, "bytes", len(data))
	return pages, nil
}
