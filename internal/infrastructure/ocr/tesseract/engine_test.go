package tesseract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

type call struct {
	name string
	args []string
}

func fakeEngine(pages int, recognize func(page string) (string, error)) (*Engine, *[]call) {
	var calls []call
	e := &Engine{
		opts: Options{RasterizerBin: "pdftoppm", RecognizerBin: "tesseract"}.withDefaults(),
		countPages: func(string) (int, error) {
			return pages, nil
		},
	}
	e.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, call{name: name, args: args})
		if name != "tesseract" {
			return nil, nil
		}
		image := filepath.Base(args[0])
		text, err := recognize(image)
		return []byte(text), err
	}
	return e, &calls
}

func TestRecognizeJoinsPagesInOrder(t *testing.T) {
	e, calls := fakeEngine(3, func(image string) (string, error) {
		return "text of " + strings.TrimSuffix(image, ".png"), nil
	})

	got, err := e.Recognize(context.Background(), "/data/scan.pdf")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	want := "text of page-0001\ntext of page-0002\ntext of page-0003"
	if got != want {
		t.Fatalf("Recognize() = %q, want %q", got, want)
	}
	if len(*calls) != 6 {
		t.Fatalf("expected 6 commands, got %d", len(*calls))
	}

	raster := (*calls)[0]
	if raster.name != "pdftoppm" || !containsPair(raster.args, "-r", "200") || !containsPair(raster.args, "-f", "1") {
		t.Fatalf("unexpected rasterize call %+v", raster)
	}
	recognize := (*calls)[1]
	if recognize.name != "tesseract" || !containsPair(recognize.args, "-l", DefaultLanguage) {
		t.Fatalf("unexpected recognize call %+v", recognize)
	}
}

func TestRecognizeFailsOnPageError(t *testing.T) {
	e, _ := fakeEngine(2, func(image string) (string, error) {
		if image == "page-0002.png" {
			return "", errors.New("tessdata missing")
		}
		return "ok", nil
	})

	_, err := e.Recognize(context.Background(), "/data/scan.pdf")
	if err == nil || !strings.Contains(err.Error(), "page 2") {
		t.Fatalf("expected page 2 error, got %v", err)
	}
}

func TestRecognizeRemovesWorkDir(t *testing.T) {
	root := t.TempDir()
	e, _ := fakeEngine(1, func(string) (string, error) { return "x", nil })
	e.opts.WorkDir = root

	if _, err := e.Recognize(context.Background(), "/data/scan.pdf"); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected work dir cleanup, found %d entries", len(entries))
	}
}

func TestProbeMissingBinary(t *testing.T) {
	_, err := Probe(Options{RasterizerBin: "definitely-not-installed-rasterizer"})
	if !domain.IsKind(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
