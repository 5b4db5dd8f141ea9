package spreadsheet

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

// XLSXExtractor reads Office Open XML workbooks.
type XLSXExtractor struct{}

func NewXLSXExtractor() *XLSXExtractor {
	return &XLSXExtractor{}
}

func (e *XLSXExtractor) Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedDocument{}, err
	}

	sheets, err := readXLSX(file.Path)
	if err != nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrUnreadableWorkbook, "read xlsx", err)
	}
	return domain.ExtractedDocument{
		Text:   Render(sheets),
		Parser: domain.ParserXLSX,
	}, nil
}

func readXLSX(path string) ([]Sheet, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	names := book.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		// GetRows returns formatted display values unless RawCellValue is set.
		rows, err := book.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}
