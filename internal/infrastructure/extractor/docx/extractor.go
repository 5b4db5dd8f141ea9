// Package docx extracts paragraph text from Office Open XML word documents.
package docx

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/normalize"
)

const documentPart = "word/document.xml"

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
)

var errMissingPart = errors.New(documentPart + " not found in archive")

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedDocument{}, err
	}

	markup, err := readDocumentPart(file.Path)
	if err != nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrCorruptContainer, "read docx", err)
	}

	return domain.ExtractedDocument{
		Text:   MarkupToText(markup),
		Parser: domain.ParserDocx,
	}, nil
}

// MarkupToText turns WordprocessingML into normalized text with one line per paragraph.
func MarkupToText(markup string) string {
	text := paragraphEnd.ReplaceAllString(markup, "\n")
	text = anyTag.ReplaceAllString(text, "")
	return normalize.Text(text)
}

func readDocumentPart(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}
	defer archive.Close()

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", errMissingPart
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", documentPart, err)
	}
	return string(raw), nil
}
