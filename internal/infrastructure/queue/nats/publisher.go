package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
	"github.com/kirillkom/knowledge-ingest/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "knowledge.ingested"

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// DocumentUploadedEvent is the payload published after a successful upload.
type DocumentUploadedEvent struct {
	RunID      string    `json:"run_id"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Domain     string    `json:"domain"`
	Tags       []string  `json:"tags"`
	Version    string    `json:"version"`
	Parser     string    `json:"parser"`
	StatusCode int       `json:"status_code"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Publisher struct {
	conn     Conn
	subject  string
	executor *resilience.Executor
	now      func() time.Time
}

type Options struct {
	ConnectTimeout     time.Duration
	ReconnectWait      time.Duration
	MaxReconnects      int
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

func Connect(url, subject string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 5
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("knowledge-ingest"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "connect nats", err)
	}
	return NewPublisher(conn, subject, options.ResilienceExecutor), nil
}

func NewPublisher(conn Conn, subject string, executor *resilience.Executor) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{
		conn:     conn,
		subject:  subject,
		executor: executor,
		now:      time.Now,
	}
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	_ = p.conn.FlushTimeout(5 * time.Second)
	p.conn.Close()
}

func (p *Publisher) PublishDocumentUploaded(ctx context.Context, record domain.UploadRecord, result domain.UploadResult) error {
	payload, err := json.Marshal(newEvent(record, result, p.now()))
	if err != nil {
		return fmt.Errorf("marshal uploaded event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if p.executor != nil {
		err = p.executor.Execute(ctx, "nats.publish", call, recordsBreakerFailure)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

func newEvent(record domain.UploadRecord, result domain.UploadResult, at time.Time) DocumentUploadedEvent {
	event := DocumentUploadedEvent{
		Title:      record.Title,
		Source:     record.Source,
		Domain:     record.Domain,
		Tags:       append([]string(nil), record.Tags...),
		Version:    record.Version,
		StatusCode: result.StatusCode,
		UploadedAt: at.UTC(),
	}
	if runID, ok := record.Metadata["run_id"].(string); ok {
		event.RunID = runID
	}
	if parser, ok := record.Metadata["parser"].(string); ok {
		event.Parser = parser
	}
	return event
}
