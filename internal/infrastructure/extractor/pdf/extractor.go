// Package pdf extracts PDF text layers and falls back to OCR for scanned documents.
package pdf

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/normalize"
)

// MinDirectTextLength is the character count below which a PDF is treated as scanned.
const MinDirectTextLength = 200

// OCR recognizes the text of every page of a PDF, pages joined in order.
type OCR interface {
	Recognize(ctx context.Context, path string) (string, error)
}

type Extractor struct {
	layer  TextLayer
	ocr    OCR
	logger *slog.Logger
}

// NewExtractor accepts a nil ocr when recognition is unavailable in this environment.
func NewExtractor(layer TextLayer, ocr OCR, logger *slog.Logger) *Extractor {
	if layer == nil {
		layer = NewPlainTextLayer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{layer: layer, ocr: ocr, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedDocument{}, err
	}

	pages, err := e.layer.Pages(file.Path)
	if err != nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrUnreadablePdf, "read pdf", err)
	}

	doc := domain.ExtractedDocument{
		Text:   normalize.Text(strings.Join(pages, "\n")),
		Parser: domain.ParserPDF,
		Pages:  len(pages),
	}
	if normalize.Len(doc.Text) >= MinDirectTextLength {
		return doc, nil
	}

	return e.withOCR(ctx, file, doc), nil
}

// withOCR keeps the direct text unless recognition yields strictly more characters.
func (e *Extractor) withOCR(ctx context.Context, file domain.SourceFile, direct domain.ExtractedDocument) domain.ExtractedDocument {
	if e.ocr == nil {
		e.logger.Debug("ocr unavailable, keeping direct text", "file", file.Name, "chars", normalize.Len(direct.Text))
		return direct
	}

	raw, err := e.ocr.Recognize(ctx, file.Path)
	if err != nil {
		e.logger.Debug("ocr failed, keeping direct text", "file", file.Name, "error", err)
		return direct
	}

	recognized := normalize.Text(raw)
	if normalize.Len(recognized) <= normalize.Len(direct.Text) {
		e.logger.Debug("ocr not longer than direct text", "file", file.Name,
			"ocr_chars", normalize.Len(recognized), "direct_chars", normalize.Len(direct.Text))
		return direct
	}

	out := direct
	out.Text = recognized
	out.OCRUsed = true
	return out
}
