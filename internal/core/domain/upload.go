package domain

const (
	SchemaVersion   = "v2"
	DefaultPriority = 3
)

// UploadRecord is the payload accepted by the knowledge upload endpoint.
type UploadRecord struct {
	Title    string         `json:"title"`
	Source   string         `json:"source"`
	Text     string         `json:"text"`
	Version  string         `json:"version"`
	Domain   string         `json:"domain"`
	Tags     []string       `json:"tags"`
	Priority int            `json:"priority"`
	Metadata map[string]any `json:"metadata"`
}

// NewUploadRecord assembles the payload from a source file, its extraction and classification.
func NewUploadRecord(file SourceFile, doc ExtractedDocument, meta ClassificationMetadata, runID string) UploadRecord {
	tags := make([]string, len(meta.Tags))
	copy(tags, meta.Tags)

	metadata := map[string]any{
		"parser":     string(meta.Parser),
		"extension":  meta.Ext,
		"filename":   meta.Filename,
		"size_bytes": meta.SizeBytes,
		"ocr_used":   doc.OCRUsed,
	}
	if runID != "" {
		metadata["run_id"] = runID
	}

	return UploadRecord{
		Title:    file.Title(),
		Source:   file.Path,
		Text:     doc.Text,
		Version:  SchemaVersion,
		Domain:   meta.Domain,
		Tags:     tags,
		Priority: meta.Priority,
		Metadata: metadata,
	}
}

type UploadResult struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

type Outcome string

const (
	OutcomeUploaded      Outcome = "uploaded"
	OutcomeClassified    Outcome = "classified"
	OutcomeTooShort      Outcome = "too_short"
	OutcomeExtractFailed Outcome = "extract_failed"
	OutcomeUploadFailed  Outcome = "upload_failed"
	OutcomeSkipped       Outcome = "skipped"
)

type FileFailure struct {
	Path    string  `json:"path"`
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error"`
}

type BatchReport struct {
	RunID    string          `json:"run_id"`
	Total    int             `json:"total"`
	Counts   map[Outcome]int `json:"counts"`
	Failures []FileFailure   `json:"failures,omitempty"`
}

func NewBatchReport(runID string) *BatchReport {
	return &BatchReport{RunID: runID, Counts: make(map[Outcome]int)}
}

func (r *BatchReport) Record(path string, outcome Outcome, err error) {
	r.Total++
	r.Counts[outcome]++
	if err != nil {
		r.Failures = append(r.Failures, FileFailure{Path: path, Outcome: outcome, Error: err.Error()})
	}
}
