package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

func touch(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListWalksRecursivelyAndFilters(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.docx"), "b")
	touch(t, filepath.Join(root, "~$b.docx"), "lock")
	touch(t, filepath.Join(root, "notes.txt"), "skip")
	touch(t, filepath.Join(root, "sub", "a.PDF"), "pdf")
	touch(t, filepath.Join(root, "sub", "deep", "plan.xlsx"), "xlsx")
	touch(t, filepath.Join(root, "sub", "old.xls"), "xls")

	files, err := NewLister().List(context.Background(), root)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "b.docx"),
		filepath.Join(root, "sub", "a.PDF"),
		filepath.Join(root, "sub", "deep", "plan.xlsx"),
		filepath.Join(root, "sub", "old.xls"),
	}
	if len(files) != len(want) {
		t.Fatalf("List() returned %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, f := range files {
		if f.Path != want[i] {
			t.Fatalf("files[%d] = %s, want %s", i, f.Path, want[i])
		}
	}
	if files[0].Size != 1 || files[1].Ext != ".pdf" {
		t.Fatalf("unexpected file attributes %+v %+v", files[0], files[1])
	}
}

func TestListMissingRoot(t *testing.T) {
	_, err := NewLister().List(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !domain.IsKind(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestListRootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.pdf")
	touch(t, path, "x")
	_, err := NewLister().List(context.Background(), path)
	if !domain.IsKind(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestAccepts(t *testing.T) {
	cases := map[string]bool{
		"a.docx":     true,
		"A.XLSX":     true,
		"~$a.docx":   false,
		"a.doc":      false,
		"a.pdf.bak":  false,
		"relatorio":  false,
		"scan.pdf":   true,
		"legado.xls": true,
	}
	for name, want := range cases {
		if got := Accepts(name); got != want {
			t.Fatalf("Accepts(%q) = %v, want %v", name, got, want)
		}
	}
}
