package ports

import (
	"context"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

// BatchIngestor is the inbound contract for one ingestion run over discovered files.
type BatchIngestor interface {
	Run(ctx context.Context, files []domain.SourceFile) *domain.BatchReport
}
