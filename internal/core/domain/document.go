package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParserKind is the closed set of supported source formats.
type ParserKind string

const (
	ParserDocx ParserKind = "docx"
	ParserXLS  ParserKind = "xls"
	ParserXLSX ParserKind = "xlsx"
	ParserPDF  ParserKind = "pdf"
)

// ParserKinds lists every supported kind in dispatch order.
var ParserKinds = []ParserKind{ParserDocx, ParserXLS, ParserXLSX, ParserPDF}

// ParserForExt maps a file extension (with or without the leading dot) to its parser.
func ParserForExt(ext string) (ParserKind, error) {
	normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	for _, kind := range ParserKinds {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", WrapError(ErrUnsupportedFormat, "detect parser", fmt.Errorf("extension %q", ext))
}

// LockFilePrefix marks office lock files that are never ingested.
const LockFilePrefix = "~$"

type SourceFile struct {
	Path string `json:"path"`
	Ext  string `json:"ext"`
	Size int64  `json:"size"`
	Name string `json:"name"`
}

func NewSourceFile(path string, size int64) SourceFile {
	name := filepath.Base(path)
	return SourceFile{
		Path: path,
		Ext:  strings.ToLower(filepath.Ext(name)),
		Size: size,
		Name: name,
	}
}

// Title is the base name without its extension.
func (f SourceFile) Title() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

type ExtractedDocument struct {
	Text    string     `json:"text"`
	Parser  ParserKind `json:"parser"`
	OCRUsed bool       `json:"ocr_used,omitempty"`
	Pages   int        `json:"pages,omitempty"`
}
