package pdf

import (
	"fmt"
	"os"

	ledongthuc "github.com/ledongthuc/pdf"
)

// TextLayer reads the embedded text of every page, in page order.
type TextLayer interface {
	Pages(path string) ([]string, error)
}

// PlainTextLayer is the TextLayer backed by github.com/ledongthuc/pdf.
type PlainTextLayer struct{}

func NewPlainTextLayer() *PlainTextLayer {
	return &PlainTextLayer{}
}

func (l *PlainTextLayer) Pages(path string) ([]string, error) {
	f, reader, err := openPDF(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pages = append(pages, pageText(reader, i))
	}
	return pages, nil
}

func openPDF(path string) (file *os.File, reader *ledongthuc.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	file, reader, err = ledongthuc.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}
	return file, reader, nil
}

// pageText yields "" for null pages and pages whose fonts cannot be decoded.
func pageText(reader *ledongthuc.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
