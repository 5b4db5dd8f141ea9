package ports

import (
	"context"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

// SourceLister discovers candidate files under a root folder.
type SourceLister interface {
	List(ctx context.Context, root string) ([]domain.SourceFile, error)
}

// TextExtractor turns one source file into normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedDocument, error)
}

// FilenameClassifier derives domain and tags from a filename.
type FilenameClassifier interface {
	Classify(filename string) domain.Classification
}

// KnowledgeUploader delivers one record to the knowledge endpoint.
type KnowledgeUploader interface {
	Upload(ctx context.Context, record domain.UploadRecord) (domain.UploadResult, error)
}

// EventPublisher announces successfully uploaded documents.
type EventPublisher interface {
	PublishDocumentUploaded(ctx context.Context, record domain.UploadRecord, result domain.UploadResult) error
}

// IngestObserver receives per-file outcomes for metrics.
type IngestObserver interface {
	ObserveFile(parser domain.ParserKind, outcome domain.Outcome, seconds float64)
}
