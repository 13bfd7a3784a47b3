package docconv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diliima/markdown-to-pdf-api/internal/block"
	"github.com/diliima/markdown-to-pdf-api/internal/docxread"
	"github.com/diliima/markdown-to-pdf-api/internal/docxrender"
	"github.com/diliima/markdown-to-pdf-api/internal/mdparse"
	"github.com/diliima/markdown-to-pdf-api/internal/pdfrender"
	"github.com/diliima/markdown-to-pdf-api/internal/xlsxrender"
	"github.com/diliima/markdown-to-pdf-api/pkg/logger"
)

// Pipeline stage interfaces. Each conversion is exactly one parser
// feeding exactly one renderer over the shared block sequence.
type markdownParser interface {
	Parse(ctx context.Context, markdown string) ([]block.Block, error)
}

type docxReader interface {
	Read(ctx context.Context, data []byte) ([]block.Block, error)
}

type blockRenderer interface {
	Render(ctx context.Context, blocks []block.Block) ([]byte, error)
}

type recordRenderer interface {
	Render(ctx context.Context, records []map[string]any, columns []string, opts xlsxrender.Options) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ markdownParser = (*mdparse.Parser)(nil)
	_ docxReader     = (*docxread.Reader)(nil)
	_ blockRenderer  = (*pdfrender.Renderer)(nil)
	_ blockRenderer  = (*docxrender.Renderer)(nil)
	_ recordRenderer = (*xlsxrender.Renderer)(nil)
)

// serviceConfig holds knobs shared by all conversions.
type serviceConfig struct {
	sheetName       string
	docxPlaceholder bool
}

// Option customizes a Service.
type Option func(*Service)

// WithDefaultSheetName sets the worksheet name used when a request
// does not name one.
func WithDefaultSheetName(name string) Option {
	return func(s *Service) {
		s.cfg.sheetName = name
	}
}

// WithoutEmptyDocxPlaceholder makes DocxToPDF render an empty page for
// an empty document instead of the stub paragraph.
func WithoutEmptyDocxPlaceholder() Option {
	return func(s *Service) {
		s.cfg.docxPlaceholder = false
	}
}

// Service orchestrates the document conversion pipelines.
type Service struct {
	cfg        serviceConfig
	mdParser   markdownParser
	docxReader docxReader
	pdf        blockRenderer
	docx       blockRenderer
	xlsx       recordRenderer
}

// New creates a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			sheetName:       xlsxrender.DefaultOptions().SheetName,
			docxPlaceholder: true,
		},
		mdParser: mdparse.New(),
		pdf:      pdfrender.New(),
		docx:     docxrender.New(),
		xlsx:     xlsxrender.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Create the reader last so options can flip the placeholder.
	if s.docxReader == nil {
		var readerOpts []docxread.Option
		if !s.cfg.docxPlaceholder {
			readerOpts = append(readerOpts, docxread.WithoutEmptyPlaceholder())
		}
		s.docxReader = docxread.New(readerOpts...)
	}
	return s
}

// MarkdownToPDF converts markdown text to a PDF document.
func (s *Service) MarkdownToPDF(ctx context.Context, markdown string) (result *Result, err error) {
	defer recoverConversion("markdown-to-pdf", &err)

	blocks, err := s.parseMarkdown(ctx, markdown)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(ctx, blocks)
	if err != nil {
		return nil, renderErr(err)
	}
	return &Result{Data: data}, nil
}

// MarkdownToDOCX converts markdown text to a Word document.
func (s *Service) MarkdownToDOCX(ctx context.Context, markdown string) (result *Result, err error) {
	defer recoverConversion("markdown-to-docx", &err)

	blocks, err := s.parseMarkdown(ctx, markdown)
	if err != nil {
		return nil, err
	}
	data, err := s.docx.Render(ctx, blocks)
	if err != nil {
		return nil, renderErr(err)
	}
	return &Result{Data: data}, nil
}

// DocxToPDF reads a Word document and renders it as PDF. The input is
// rejected before parsing when it lacks the ZIP container signature.
func (s *Service) DocxToPDF(ctx context.Context, data []byte) (result *Result, err error) {
	defer recoverConversion("docx-to-pdf", &err)

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrValidation)
	}
	blocks, err := s.docxReader.Read(ctx, data)
	if err != nil {
		switch {
		case errors.Is(err, docxread.ErrNotWordDocument):
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		case errors.Is(err, docxread.ErrMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		default:
			return nil, err
		}
	}
	pdfData, err := s.pdf.Render(ctx, blocks)
	if err != nil {
		return nil, renderErr(err)
	}
	return &Result{Data: pdfData}, nil
}

// RecordsToExcel converts a JSON array of flat records into a
// single-sheet Excel workbook.
func (s *Service) RecordsToExcel(ctx context.Context, raw []byte, opts SheetOptions) (result *Result, err error) {
	defer recoverConversion("json-to-excel", &err)

	records, columns, err := xlsxrender.ParseRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := xlsxrender.Validate(records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	sheet := strings.TrimSpace(opts.SheetName)
	if sheet == "" {
		sheet = s.cfg.sheetName
	}
	data, err := s.xlsx.Render(ctx, records, columns, xlsxrender.Options{
		SheetName:       sheet,
		ApplyFormatting: !opts.DisableFormatting,
	})
	if err != nil {
		return nil, renderErr(err)
	}
	return &Result{Data: data, Records: records, Columns: columns}, nil
}

// parseMarkdown parses markdown input. Empty input is fine: it parses
// to zero blocks and the renderers produce a minimal empty document.
func (s *Service) parseMarkdown(ctx context.Context, markdown string) ([]block.Block, error) {
	blocks, err := s.mdParser.Parse(ctx, markdown)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown: %w", err)
	}
	return blocks, nil
}

// renderErr maps renderer failures to the render category unless the
// error is a context cancellation, which callers match directly.
func renderErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRender, err)
}

// recoverConversion converts a renderer panic into an error so one bad
// document cannot take down the process.
func recoverConversion(op string, err *error) {
	if r := recover(); r != nil {
		logger.Error("conversion panic", logger.F("op", op), logger.F("panic", r))
		*err = fmt.Errorf("%w: internal failure in %s", ErrRender, op)
	}
}
