// Package tesseract rasterizes PDF pages with pdftoppm and recognizes them with tesseract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

const (
	DefaultDPI      = 200
	DefaultLanguage = "por"
)

type Options struct {
	RasterizerBin string
	RecognizerBin string
	DPI           int
	Language      string
	WorkDir       string
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

type pageCountFunc func(path string) (int, error)

type Engine struct {
	opts       Options
	run        runFunc
	countPages pageCountFunc
}

// Probe resolves both executables once. A missing one reports ErrCapabilityUnavailable.
func Probe(opts Options) (*Engine, error) {
	opts = opts.withDefaults()

	rasterizer, err := exec.LookPath(opts.RasterizerBin)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "probe rasterizer", err)
	}
	recognizer, err := exec.LookPath(opts.RecognizerBin)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCapabilityUnavailable, "probe recognizer", err)
	}
	opts.RasterizerBin = rasterizer
	opts.RecognizerBin = recognizer

	return &Engine{opts: opts, run: runCommand, countPages: countPDFPages}, nil
}

func (o Options) withDefaults() Options {
	out := o
	if out.RasterizerBin == "" {
		out.RasterizerBin = "pdftoppm"
	}
	if out.RecognizerBin == "" {
		out.RecognizerBin = "tesseract"
	}
	if out.DPI <= 0 {
		out.DPI = DefaultDPI
	}
	if strings.TrimSpace(out.Language) == "" {
		out.Language = DefaultLanguage
	}
	return out
}

// Recognize rasterizes and recognizes each page independently, joining results in page order.
func (e *Engine) Recognize(ctx context.Context, path string) (string, error) {
	pageCount, err := e.countPages(path)
	if err != nil {
		return "", fmt.Errorf("count pages: %w", err)
	}

	workDir, err := os.MkdirTemp(e.opts.WorkDir, "ocr-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pages := make([]string, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.recognizePage(ctx, path, workDir, page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

func (e *Engine) recognizePage(ctx context.Context, path, workDir string, page int) (string, error) {
	prefix := filepath.Join(workDir, fmt.Sprintf("page-%04d", page))
	pageArg := strconv.Itoa(page)

	if _, err := e.run(ctx, e.opts.RasterizerBin,
		"-f", pageArg,
		"-l", pageArg,
		"-r", strconv.Itoa(e.opts.DPI),
		"-png",
		"-singlefile",
		path,
		prefix,
	); err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}

	out, err := e.run(ctx, e.opts.RecognizerBin, prefix+".png", "stdout", "-l", e.opts.Language)
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return string(out), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
		}
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
	}
	return stdout.Bytes(), nil
}

func countPDFPages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}
