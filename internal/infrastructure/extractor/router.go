// Package extractor dispatches source files to the format extractor for their parser kind.
package extractor

import (
	"context"
	"fmt"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/kirillkom/knowledge-ingest/internal/core/ports"
)

// Router holds exactly one extractor per ParserKind.
type Router struct {
	Docx        ports.TextExtractor
	XLS         ports.TextExtractor
	XLSX        ports.TextExtractor
	PDF         ports.TextExtractor
	MaxFileSize int64
}

func (r *Router) Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedDocument, error) {
	kind, err := domain.ParserForExt(file.Ext)
	if err != nil {
		return domain.ExtractedDocument{}, err
	}
	if r.MaxFileSize > 0 && file.Size > r.MaxFileSize {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrFileTooLarge, "extract",
			fmt.Errorf("%d bytes (max %d)", file.Size, r.MaxFileSize))
	}

	handler, err := r.handler(kind)
	if err != nil {
		return domain.ExtractedDocument{}, err
	}
	return handler.Extract(ctx, file)
}

func (r *Router) handler(kind domain.ParserKind) (ports.TextExtractor, error) {
	var h ports.TextExtractor
	switch kind {
	case domain.ParserDocx:
		h = r.Docx
	case domain.ParserXLS:
		h = r.XLS
	case domain.ParserXLSX:
		h = r.XLSX
	case domain.ParserPDF:
		h = r.PDF
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "route extractor", fmt.Errorf("parser %q", kind))
	}
	if h == nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "route extractor", fmt.Errorf("no extractor for %s", kind))
	}
	return h, nil
}
