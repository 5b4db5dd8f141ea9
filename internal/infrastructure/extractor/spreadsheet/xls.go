package spreadsheet

import (
	"context"
	"fmt"

	"github.com/extrame/xls"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

// LegacyWorkbookReader reads BIFF (.xls) workbooks. It is optional at runtime.
type LegacyWorkbookReader interface {
	ReadSheets(path string) ([]Sheet, error)
}

// XLSExtractor reads legacy binary workbooks through an optional reader.
type XLSExtractor struct {
	reader LegacyWorkbookReader
}

// NewXLSExtractor accepts a nil reader; extraction then reports the capability as unavailable.
func NewXLSExtractor(reader LegacyWorkbookReader) *XLSExtractor {
	return &XLSExtractor{reader: reader}
}

func (e *XLSExtractor) Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedDocument{}, err
	}
	if e.reader == nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrCapabilityUnavailable, "read xls", fmt.Errorf("no legacy workbook reader configured"))
	}

	sheets, err := e.reader.ReadSheets(file.Path)
	if err != nil {
		return domain.ExtractedDocument{}, domain.WrapError(domain.ErrUnreadableWorkbook, "read xls", err)
	}
	return domain.ExtractedDocument{
		Text:   Render(sheets),
		Parser: domain.ParserXLS,
	}, nil
}

// BIFFReader is the LegacyWorkbookReader backed by github.com/extrame/xls.
type BIFFReader struct {
	Charset string
}

func NewBIFFReader() *BIFFReader {
	return &BIFFReader{Charset: "utf-8"}
}

func (r *BIFFReader) ReadSheets(path string) (sheets []Sheet, err error) {
	// The BIFF decoder panics on some truncated streams.
	defer func() {
		if rec := recover(); rec != nil {
			sheets = nil
			err = fmt.Errorf("decode workbook: %v", rec)
		}
	}()

	book, err := xls.Open(path, r.Charset)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		sheet := Sheet{Name: ws.Name}
		for rowIdx := 0; rowIdx <= int(ws.MaxRow); rowIdx++ {
			row := ws.Row(rowIdx)
			if row == nil {
				continue
			}
			width := row.LastCol() - row.FirstCol()
			if width < 0 {
				width = 0
			}
			cells := make([]string, 0, width)
			for col := row.FirstCol(); col < row.LastCol(); col++ {
				cells = append(cells, row.Col(col))
			}
			sheet.Rows = append(sheet.Rows, cells)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}
