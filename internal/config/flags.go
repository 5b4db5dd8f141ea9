package config

import (
	"flag"
	"io"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

// ApplyFlags overrides env-derived values with command-line flags.
func ApplyFlags(cfg Config, name string, args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	fs.StringVar(&cfg.Folder, "folder", cfg.Folder, "root folder to ingest (INGEST_FOLDER)")
	fs.StringVar(&cfg.APIBase, "api-base", cfg.APIBase, "knowledge API base url (APP_BASE_URL)")
	fs.StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "admin bearer token (ADMIN_API_TOKEN)")
	fs.IntVar(&cfg.MinTextLength, "min-length", cfg.MinTextLength, "minimum normalized text length in characters (MIN_TEXT_LENGTH)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (LOG_LEVEL)")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "extract and classify without uploading")

	if err := fs.Parse(args); err != nil {
		return cfg, domain.WrapError(domain.ErrInvalidConfig, "parse flags", err)
	}
	return cfg, nil
}
