package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

type extractorFake struct {
	texts  map[string]string
	errs   map[string]error
	called []string
}

func (f *extractorFake) Extract(_ context.Context, file domain.SourceFile) (domain.ExtractedDocument, error) {
	f.called = append(f.called, file.Path)
	if err, ok := f.errs[file.Path]; ok {
		return domain.ExtractedDocument{}, err
	}
	parser, err := domain.ParserForExt(file.Ext)
	if err != nil {
		return domain.ExtractedDocument{}, err
	}
	return domain.ExtractedDocument{Text: f.texts[file.Path], Parser: parser}, nil
}

type classifierFake struct{}

func (classifierFake) Classify(filename string) domain.Classification {
	if strings.Contains(strings.ToLower(filename), "checklist") {
		return domain.Classification{Domain: domain.DomainOperationalChecklist, Tags: []string{"checklist", "operations"}}
	}
	return domain.Classification{Domain: domain.DomainGeneral, Tags: []string{}}
}

type uploaderFake struct {
	records []domain.UploadRecord
	errs    map[string]error
}

func (f *uploaderFake) Upload(_ context.Context, record domain.UploadRecord) (domain.UploadResult, error) {
	if err, ok := f.errs[record.Source]; ok {
		return domain.UploadResult{}, err
	}
	f.records = append(f.records, record)
	return domain.UploadResult{StatusCode: 201, Body: `{"ok":true}`}, nil
}

type publisherFake struct {
	sources []string
	err     error
}

func (f *publisherFake) PublishDocumentUploaded(_ context.Context, record domain.UploadRecord, _ domain.UploadResult) error {
	f.sources = append(f.sources, record.Source)
	return f.err
}

type observerFake struct {
	outcomes []domain.Outcome
}

func (f *observerFake) ObserveFile(_ domain.ParserKind, outcome domain.Outcome, _ float64) {
	f.outcomes = append(f.outcomes, outcome)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const longText = "Plano de abertura da loja com todas as etapas revisadas."

func batchFiles() []domain.SourceFile {
	return []domain.SourceFile{
		domain.NewSourceFile("/data/5-resumo.pdf", 50),
		domain.NewSourceFile("/data/1-checklist.docx", 10),
		domain.NewSourceFile("/data/3-quebrado.docx", 30),
		domain.NewSourceFile("/data/2-planilha.xlsx", 20),
		domain.NewSourceFile("/data/4-legado.xls", 40),
	}
}

func TestRunIsolatesCorruptFile(t *testing.T) {
	extractor := &extractorFake{
		texts: map[string]string{
			"/data/1-checklist.docx": longText,
			"/data/2-planilha.xlsx":  longText,
			"/data/4-legado.xls":     longText,
			"/data/5-resumo.pdf":     longText,
		},
		errs: map[string]error{
			"/data/3-quebrado.docx": domain.WrapError(domain.ErrCorruptContainer, "open docx", errors.New("zip: not a valid zip file")),
		},
	}
	uploader := &uploaderFake{}
	publisher := &publisherFake{}
	observer := &observerFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{
		RunID:     "run-1",
		Publisher: publisher,
		Observer:  observer,
		Logger:    quietLogger(),
	})

	report := uc.Run(context.Background(), batchFiles())

	if report.Total != 5 || report.Counts[domain.OutcomeUploaded] != 4 || report.Counts[domain.OutcomeExtractFailed] != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].Path != "/data/3-quebrado.docx" {
		t.Fatalf("expected exactly one failure for the corrupt file, got %+v", report.Failures)
	}
	if !strings.Contains(report.Failures[0].Error, "corrupt container") {
		t.Fatalf("failure should carry the cause, got %q", report.Failures[0].Error)
	}

	wantOrder := []string{"/data/1-checklist.docx", "/data/2-planilha.xlsx", "/data/4-legado.xls", "/data/5-resumo.pdf"}
	if len(uploader.records) != len(wantOrder) {
		t.Fatalf("uploaded %d records, want %d", len(uploader.records), len(wantOrder))
	}
	for i, rec := range uploader.records {
		if rec.Source != wantOrder[i] {
			t.Fatalf("upload[%d] = %s, want %s", i, rec.Source, wantOrder[i])
		}
	}
	if len(extractor.called) != 5 || extractor.called[2] != "/data/3-quebrado.docx" {
		t.Fatalf("files must be extracted in path order, got %v", extractor.called)
	}
	if len(publisher.sources) != 4 {
		t.Fatalf("expected 4 events, got %v", publisher.sources)
	}
	if len(observer.outcomes) != 5 || observer.outcomes[2] != domain.OutcomeExtractFailed {
		t.Fatalf("unexpected observed outcomes %v", observer.outcomes)
	}
}

func TestRunBuildsUploadRecord(t *testing.T) {
	file := domain.NewSourceFile("/data/Checklist Abertura.DOCX", 1234)
	extractor := &extractorFake{texts: map[string]string{file.Path: longText}}
	uploader := &uploaderFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{RunID: "run-7", Logger: quietLogger()})

	uc.Run(context.Background(), []domain.SourceFile{file})

	if len(uploader.records) != 1 {
		t.Fatalf("expected one upload, got %d", len(uploader.records))
	}
	rec := uploader.records[0]
	if rec.Title != "Checklist Abertura" || rec.Version != domain.SchemaVersion || rec.Priority != domain.DefaultPriority {
		t.Fatalf("unexpected record header %+v", rec)
	}
	if rec.Domain != domain.DomainOperationalChecklist || len(rec.Tags) != 2 {
		t.Fatalf("unexpected classification %+v", rec)
	}
	if rec.Metadata["parser"] != "docx" || rec.Metadata["extension"] != ".docx" || rec.Metadata["run_id"] != "run-7" {
		t.Fatalf("unexpected metadata %+v", rec.Metadata)
	}
	if rec.Metadata["size_bytes"] != int64(1234) {
		t.Fatalf("size_bytes = %#v, want 1234", rec.Metadata["size_bytes"])
	}
}

func TestRunNeverUploadsShortText(t *testing.T) {
	file := domain.NewSourceFile("/data/curto.pdf", 5)
	extractor := &extractorFake{texts: map[string]string{file.Path: "só isso"}}
	uploader := &uploaderFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{MinTextLength: 20, Logger: quietLogger()})

	report := uc.Run(context.Background(), []domain.SourceFile{file})

	if len(uploader.records) != 0 {
		t.Fatalf("short text must not be uploaded: %+v", uploader.records)
	}
	if report.Counts[domain.OutcomeTooShort] != 1 || len(report.Failures) != 0 {
		t.Fatalf("too short is not a failure, got %+v", report)
	}
}

func TestRunCountsRunesForGate(t *testing.T) {
	file := domain.NewSourceFile("/data/acentos.docx", 5)
	// 10 runes, 19 bytes.
	extractor := &extractorFake{texts: map[string]string{file.Path: "ééééééééé."}}
	uploader := &uploaderFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{MinTextLength: 11, Logger: quietLogger()})

	report := uc.Run(context.Background(), []domain.SourceFile{file})
	if report.Counts[domain.OutcomeTooShort] != 1 {
		t.Fatalf("expected rune-based gate to reject, got %+v", report)
	}
}

func TestRunRecordsUploadFailureAndContinues(t *testing.T) {
	files := []domain.SourceFile{
		domain.NewSourceFile("/data/a.docx", 1),
		domain.NewSourceFile("/data/b.docx", 1),
	}
	extractor := &extractorFake{texts: map[string]string{"/data/a.docx": longText, "/data/b.docx": longText}}
	uploader := &uploaderFake{errs: map[string]error{
		"/data/a.docx": domain.WrapError(domain.ErrUploadRejected, "knowledge upload", errors.New("400 Bad Request")),
	}}
	publisher := &publisherFake{err: errors.New("nats down")}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{Publisher: publisher, Logger: quietLogger()})

	report := uc.Run(context.Background(), files)

	if report.Counts[domain.OutcomeUploadFailed] != 1 || report.Counts[domain.OutcomeUploaded] != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(publisher.sources) != 1 || publisher.sources[0] != "/data/b.docx" {
		t.Fatalf("publish failure must not change outcome, events=%v", publisher.sources)
	}
}

func TestRunSkipsUnsupportedFormat(t *testing.T) {
	files := []domain.SourceFile{
		domain.NewSourceFile("/data/notas.txt", 1),
		domain.NewSourceFile("/data/plano.docx", 1),
	}
	extractor := &extractorFake{texts: map[string]string{"/data/plano.docx": longText}}
	uploader := &uploaderFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{Logger: quietLogger()})

	report := uc.Run(context.Background(), files)

	if report.Counts[domain.OutcomeSkipped] != 1 || report.Counts[domain.OutcomeUploaded] != 1 || len(report.Failures) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRunDryRunDoesNotUpload(t *testing.T) {
	file := domain.NewSourceFile("/data/plano.docx", 1)
	extractor := &extractorFake{texts: map[string]string{file.Path: longText}}
	uploader := &uploaderFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{DryRun: true, Logger: quietLogger()})

	report := uc.Run(context.Background(), []domain.SourceFile{file})

	if len(uploader.records) != 0 || report.Counts[domain.OutcomeClassified] != 1 {
		t.Fatalf("dry run must classify without uploading, report=%+v uploads=%d", report, len(uploader.records))
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	extractor := &extractorFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, &uploaderFake{}, IngestOptions{Logger: quietLogger()})

	report := uc.Run(ctx, batchFiles())

	if report.Total != 0 || len(extractor.called) != 0 {
		t.Fatalf("cancelled run must not start files, report=%+v called=%v", report, extractor.called)
	}
}

type panickingExtractor struct {
	extractorFake
	panicOn string
}

func (f *panickingExtractor) Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedDocument, error) {
	if file.Path == f.panicOn {
		f.called = append(f.called, file.Path)
		panic("index out of range")
	}
	return f.extractorFake.Extract(ctx, file)
}

func TestRunContainsPanickingAdapter(t *testing.T) {
	files := []domain.SourceFile{
		domain.NewSourceFile("/data/a.docx", 1),
		domain.NewSourceFile("/data/b.xlsx", 1),
		domain.NewSourceFile("/data/c.pdf", 1),
	}
	extractor := &panickingExtractor{
		extractorFake: extractorFake{texts: map[string]string{
			"/data/a.docx": longText,
			"/data/c.pdf":  longText,
		}},
		panicOn: "/data/b.xlsx",
	}
	uploader := &uploaderFake{}
	observer := &observerFake{}
	uc := NewIngestUseCase(extractor, classifierFake{}, uploader, IngestOptions{Observer: observer, Logger: quietLogger()})

	report := uc.Run(context.Background(), files)

	if report.Total != 3 || report.Counts[domain.OutcomeUploaded] != 2 || report.Counts[domain.OutcomeExtractFailed] != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].Path != "/data/b.xlsx" {
		t.Fatalf("expected the panicking file as the only failure, got %+v", report.Failures)
	}
	if !strings.Contains(report.Failures[0].Error, "index out of range") {
		t.Fatalf("failure should carry the panic value, got %q", report.Failures[0].Error)
	}
	if len(uploader.records) != 2 || uploader.records[1].Source != "/data/c.pdf" {
		t.Fatalf("files after the panic must still be uploaded, got %+v", uploader.records)
	}
	if len(observer.outcomes) != 3 || observer.outcomes[1] != domain.OutcomeExtractFailed {
		t.Fatalf("unexpected observed outcomes %v", observer.outcomes)
	}
}
