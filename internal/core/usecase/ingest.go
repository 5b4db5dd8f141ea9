package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/kirillkom/knowledge-ingest/internal/core/ports"
)

const DefaultMinTextLength = 20

type IngestOptions struct {
	RunID         string
	MinTextLength int
	DryRun        bool
	Publisher     ports.EventPublisher
	Observer      ports.IngestObserver
	Logger        *slog.Logger
}

type IngestUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.FilenameClassifier
	uploader   ports.KnowledgeUploader

	runID         string
	minTextLength int
	dryRun        bool
	publisher     ports.EventPublisher
	observer      ports.IngestObserver
	logger        *slog.Logger
	now           func() time.Time
}

func NewIngestUseCase(
	extractor ports.TextExtractor,
	classifier ports.FilenameClassifier,
	uploader ports.KnowledgeUploader,
	opts IngestOptions,
) *IngestUseCase {
	minLen := opts.MinTextLength
	if minLen <= 0 {
		minLen = DefaultMinTextLength
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		extractor:     extractor,
		classifier:    classifier,
		uploader:      uploader,
		runID:         opts.RunID,
		minTextLength: minLen,
		dryRun:        opts.DryRun,
		publisher:     opts.Publisher,
		observer:      opts.Observer,
		logger:        logger.With("run_id", opts.RunID),
		now:           time.Now,
	}
}

// Run processes files one at a time in path order. A failing file is recorded
// and the batch moves on; cancellation stops before the next file starts.
func (uc *IngestUseCase) Run(ctx context.Context, files []domain.SourceFile) *domain.BatchReport {
	ordered := make([]domain.SourceFile, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Path < ordered[j].Path })

	report := domain.NewBatchReport(uc.runID)
	for _, file := range ordered {
		if err := ctx.Err(); err != nil {
			uc.logger.Warn("ingest_cancelled", "remaining", len(ordered)-report.Total, "error", err)
			break
		}

		started := uc.now()
		parser, outcome, err := uc.processIsolated(ctx, file)
		report.Record(file.Path, outcome, errorForReport(outcome, err))
		if uc.observer != nil {
			uc.observer.ObserveFile(parser, outcome, uc.now().Sub(started).Seconds())
		}
	}

	uc.logger.Info("ingest_finished",
		"total", report.Total,
		"uploaded", report.Counts[domain.OutcomeUploaded],
		"classified", report.Counts[domain.OutcomeClassified],
		"too_short", report.Counts[domain.OutcomeTooShort],
		"extract_failed", report.Counts[domain.OutcomeExtractFailed],
		"upload_failed", report.Counts[domain.OutcomeUploadFailed],
		"skipped", report.Counts[domain.OutcomeSkipped],
	)
	return report
}

// processIsolated turns a panic inside any adapter into an extraction failure for that file.
func (uc *IngestUseCase) processIsolated(ctx context.Context, file domain.SourceFile) (parser domain.ParserKind, outcome domain.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			parser, _ = domain.ParserForExt(file.Ext)
			outcome = domain.OutcomeExtractFailed
			err = fmt.Errorf("panic while processing %s: %v", file.Name, rec)
			uc.logger.Error("extract_failed", "file", file.Name, "outcome", outcome, "path", file.Path, "error", err)
		}
	}()
	return uc.processFile(ctx, file)
}

func (uc *IngestUseCase) processFile(ctx context.Context, file domain.SourceFile) (domain.ParserKind, domain.Outcome, error) {
	log := uc.logger.With("file", file.Name)
	parser, _ := domain.ParserForExt(file.Ext)

	doc, err := uc.extractor.Extract(ctx, file)
	if err != nil {
		if domain.IsKind(err, domain.ErrUnsupportedFormat) {
			log.Info("file_skipped", "outcome", domain.OutcomeSkipped, "reason", err.Error())
			return "", domain.OutcomeSkipped, err
		}
		log.Error("extract_failed", "outcome", domain.OutcomeExtractFailed, "path", file.Path, "error", err)
		return parser, domain.OutcomeExtractFailed, err
	}

	length := utf8.RuneCountInString(doc.Text)
	if length < uc.minTextLength {
		log.Info("text_too_short", "outcome", domain.OutcomeTooShort, "length", length, "min_length", uc.minTextLength)
		return doc.Parser, domain.OutcomeTooShort, nil
	}

	classification := uc.classifier.Classify(file.Name)
	meta := domain.ClassificationMetadata{
		Domain:    classification.Domain,
		Tags:      classification.Tags,
		Priority:  domain.DefaultPriority,
		Parser:    doc.Parser,
		Ext:       file.Ext,
		Filename:  file.Name,
		SizeBytes: file.Size,
	}
	record := domain.NewUploadRecord(file, doc, meta, uc.runID)

	if uc.dryRun {
		log.Info("file_classified",
			"outcome", domain.OutcomeClassified,
			"parser", doc.Parser,
			"domain", meta.Domain,
			"tags", meta.Tags,
			"length", length,
			"ocr_used", doc.OCRUsed,
		)
		return doc.Parser, domain.OutcomeClassified, nil
	}

	result, err := uc.uploader.Upload(ctx, record)
	if err != nil {
		log.Error("upload_failed",
			"outcome", domain.OutcomeUploadFailed,
			"path", file.Path,
			"temporary", domain.IsKind(err, domain.ErrTemporary),
			"error", err,
		)
		return doc.Parser, domain.OutcomeUploadFailed, err
	}

	log.Info("file_uploaded",
		"outcome", domain.OutcomeUploaded,
		"parser", doc.Parser,
		"domain", meta.Domain,
		"tags", meta.Tags,
		"length", length,
		"ocr_used", doc.OCRUsed,
		"status", result.StatusCode,
		"response", result.Body,
	)

	if uc.publisher != nil {
		if err := uc.publisher.PublishDocumentUploaded(ctx, record, result); err != nil {
			log.Warn("publish_uploaded_event_failed", "error", err)
		}
	}
	return doc.Parser, domain.OutcomeUploaded, nil
}

// Skipped files are counted but not listed as failures.
func errorForReport(outcome domain.Outcome, err error) error {
	if outcome == domain.OutcomeSkipped {
		return nil
	}
	return err
}
