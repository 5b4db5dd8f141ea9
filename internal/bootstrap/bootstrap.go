package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/knowledge-ingest/internal/config"
	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/kirillkom/knowledge-ingest/internal/core/ports"
	"github.com/kirillkom/knowledge-ingest/internal/core/usecase"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/classifier/keyword"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/extractor"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/extractor/spreadsheet"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/ocr/tesseract"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/queue/nats"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/resilience"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/source/localfs"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/uploader/knowledge"
	"github.com/kirillkom/knowledge-ingest/internal/observability/metrics"
)

const serviceName = "knowledge-ingest"

type App struct {
	Config  config.Config
	RunID   string
	Logger  *slog.Logger
	Metrics *metrics.IngestMetrics

	Lister   ports.SourceLister
	IngestUC ports.BatchIngestor

	closeFn func()
}

// New wires one ingestion run. Optional capabilities are resolved here, once.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	rules := keyword.DefaultRules()
	if cfg.ClassifierRulesFile != "" {
		loaded, err := keyword.LoadRules(cfg.ClassifierRulesFile)
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidConfig, "load classifier rules", err)
		}
		rules = loaded
	}
	classifier := keyword.NewClassifier(rules)

	router := &extractor.Router{
		Docx:        docx.NewExtractor(),
		XLSX:        spreadsheet.NewXLSXExtractor(),
		XLS:         spreadsheet.NewXLSExtractor(legacyReader(cfg, logger)),
		PDF:         pdf.NewExtractor(pdf.NewPlainTextLayer(), ocrEngine(cfg, logger), logger),
		MaxFileSize: cfg.MaxFileSize,
	}

	uploadGuard := breakerConfig(cfg)
	uploadGuard.RatePerSecond = cfg.UploadRatePerSec
	uploadGuard.RateBurst = cfg.UploadRateBurst
	uploadExecutor := resilience.NewExecutor(uploadGuard)
	uploader := knowledge.NewWithOptions(cfg.APIBase, cfg.AdminToken, knowledge.Options{
		Timeout:            cfg.UploadTimeout(),
		ResilienceExecutor: uploadExecutor,
	})

	closers := []func(){}
	var publisher ports.EventPublisher
	if cfg.NATSURL != "" {
		p, err := nats.Connect(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			Logger:             logger,
			ResilienceExecutor: resilience.NewExecutor(breakerConfig(cfg)),
		})
		if err != nil {
			logger.Warn("event_publisher_disabled", "error", err)
		} else {
			publisher = p
			closers = append(closers, p.Close)
		}
	}

	ingestMetrics := metrics.NewIngestMetrics(serviceName)
	ingestUC := usecase.NewIngestUseCase(router, classifier, uploader, usecase.IngestOptions{
		RunID:         runID,
		MinTextLength: cfg.MinTextLength,
		DryRun:        cfg.DryRun,
		Publisher:     publisher,
		Observer:      ingestMetrics,
		Logger:        logger,
	})

	return &App{
		Config:   cfg,
		RunID:    runID,
		Logger:   logger,
		Metrics:  ingestMetrics,
		Lister:   localfs.NewLister(),
		IngestUC: ingestUC,
		closeFn: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

// Run discovers the configured folder and ingests everything found.
func (a *App) Run(ctx context.Context) (*domain.BatchReport, error) {
	started := time.Now()
	files, err := a.Lister.List(ctx, a.Config.Folder)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	a.Logger.Info("ingest_started", "folder", a.Config.Folder, "files", len(files), "dry_run", a.Config.DryRun)

	report := a.IngestUC.Run(ctx, files)
	a.Metrics.FinishRun(time.Since(started), time.Now())

	if a.Config.MetricsTextfile != "" {
		if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
			a.Logger.Warn("metrics_textfile_failed", "path", a.Config.MetricsTextfile, "error", err)
		}
	}
	return report, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// breakerConfig carries the breaker settings shared by the upload and event paths; pacing applies to uploads only.
func breakerConfig(cfg config.Config) resilience.Config {
	return resilience.Config{
		BreakerEnabled:          cfg.BreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.BreakerFailureRatio,
		BreakerOpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutSec) * time.Second,
		BreakerHalfOpenMaxCalls: uint32(max(cfg.BreakerHalfOpenMaxCalls, 0)),
	}
}

func ocrEngine(cfg config.Config, logger *slog.Logger) pdf.OCR {
	if !cfg.OCREnabled {
		logger.Info("ocr_disabled")
		return nil
	}
	engine, err := tesseract.Probe(tesseract.Options{
		RasterizerBin: cfg.OCRRasterizerBin,
		RecognizerBin: cfg.OCRRecognizerBin,
		DPI:           cfg.OCRDPI,
		Language:      cfg.OCRLanguage,
	})
	if err != nil {
		logger.Info("ocr_unavailable", "error", err)
		return nil
	}
	return engine
}

func legacyReader(cfg config.Config, logger *slog.Logger) spreadsheet.LegacyWorkbookReader {
	if !cfg.XLSEnabled {
		logger.Info("legacy_xls_disabled")
		return nil
	}
	return spreadsheet.NewBIFFReader()
}
