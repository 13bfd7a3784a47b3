package docconv

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/diliima/markdown-to-pdf-api/internal/block"
)

// Mock implementations for testing.

type mockParser struct {
	called bool
	input  string
	blocks []block.Block
	err    error
}

func (m *mockParser) Parse(ctx context.Context, markdown string) ([]block.Block, error) {
	m.called = true
	m.input = markdown
	return m.blocks, m.err
}

type mockRenderer struct {
	called bool
	blocks []block.Block
	output []byte
	err    error
	panics bool
}

func (m *mockRenderer) Render(ctx context.Context, blocks []block.Block) ([]byte, error) {
	m.called = true
	m.blocks = blocks
	if m.panics {
		panic("renderer exploded")
	}
	return m.output, m.err
}

func TestMarkdownToPDF_PipesParserIntoRenderer(t *testing.T) {
	parser := &mockParser{blocks: []block.Block{block.Title("T")}}
	renderer := &mockRenderer{output: []byte("%PDF fake")}
	svc := New()
	svc.mdParser = parser
	svc.pdf = renderer

	result, err := svc.MarkdownToPDF(context.Background(), "# T")
	if err != nil {
		t.Fatalf("MarkdownToPDF() error = %v", err)
	}
	if !parser.called || !renderer.called {
		t.Error("pipeline stage not invoked")
	}
	if parser.input != "# T" {
		t.Errorf("parser input = %q", parser.input)
	}
	if len(renderer.blocks) != 1 || renderer.blocks[0].Kind != block.KindTitle {
		t.Errorf("renderer received %v", renderer.blocks)
	}
	if string(result.Data) != "%PDF fake" {
		t.Errorf("result.Data = %q", result.Data)
	}
}

func TestMarkdown_EmptyInputProducesMinimalDocument(t *testing.T) {
	svc := New()
	for _, input := range []string{"", "   ", "\n\t\n"} {
		pdfResult, err := svc.MarkdownToPDF(context.Background(), input)
		if err != nil {
			t.Fatalf("MarkdownToPDF(%q) error = %v", input, err)
		}
		if !bytes.HasPrefix(pdfResult.Data, []byte("%PDF")) {
			t.Errorf("MarkdownToPDF(%q) did not produce a PDF", input)
		}
		docxResult, err := svc.MarkdownToDOCX(context.Background(), input)
		if err != nil {
			t.Fatalf("MarkdownToDOCX(%q) error = %v", input, err)
		}
		if !bytes.HasPrefix(docxResult.Data, []byte("PK")) {
			t.Errorf("MarkdownToDOCX(%q) did not produce a DOCX package", input)
		}
	}
}

func TestMarkdownToDOCX_EndToEnd(t *testing.T) {
	svc := New()
	result, err := svc.MarkdownToDOCX(context.Background(), "# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("MarkdownToDOCX() error = %v", err)
	}
	if !bytes.HasPrefix(result.Data, []byte("PK")) {
		t.Error("DOCX output missing zip magic")
	}
}

func TestMarkdownToPDF_EndToEnd(t *testing.T) {
	svc := New()
	result, err := svc.MarkdownToPDF(context.Background(), "# Title\n\n- item\n\n> quoted")
	if err != nil {
		t.Fatalf("MarkdownToPDF() error = %v", err)
	}
	if !bytes.HasPrefix(result.Data, []byte("%PDF")) {
		t.Error("PDF output missing magic")
	}
}

func TestDocxToPDF_InputClassification(t *testing.T) {
	svc := New()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty input", nil, ErrValidation},
		{"not a zip", []byte("plain text pretending to be a document"), ErrValidation},
		{"pdf bytes", []byte("%PDF-1.7 etc"), ErrValidation},
		{"corrupt archive", []byte("PK\x03\x04 but then garbage"), ErrMalformedDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DocxToPDF(context.Background(), tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DocxToPDF() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDocxToPDF_EndToEnd(t *testing.T) {
	svc := New()

	md, err := svc.MarkdownToDOCX(context.Background(), "# Memo\n\nPlease review the figures.")
	if err != nil {
		t.Fatalf("MarkdownToDOCX() error = %v", err)
	}

	result, err := svc.DocxToPDF(context.Background(), md.Data)
	if err != nil {
		t.Fatalf("DocxToPDF() error = %v", err)
	}
	if !bytes.HasPrefix(result.Data, []byte("%PDF")) {
		t.Error("PDF output missing magic")
	}
}

func TestRecordsToExcel_EndToEnd(t *testing.T) {
	svc := New()
	raw := []byte(`[{"city":"Lyon","pop":522000},{"city":"Nice","pop":342000}]`)

	result, err := svc.RecordsToExcel(context.Background(), raw, SheetOptions{})
	if err != nil {
		t.Fatalf("RecordsToExcel() error = %v", err)
	}
	if !bytes.HasPrefix(result.Data, []byte("PK")) {
		t.Error("XLSX output missing zip magic")
	}
	if len(result.Records) != 2 {
		t.Errorf("Records = %d, want 2", len(result.Records))
	}
	if len(result.Columns) != 2 || result.Columns[0] != "city" {
		t.Errorf("Columns = %v, want [city pop]", result.Columns)
	}
}

func TestRecordsToExcel_Validation(t *testing.T) {
	svc := New()

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `[{"a":`},
		{"not an array", `{"a":1}`},
		{"empty array", `[]`},
		{"scalar elements", `[1,2,3]`},
		{"incompatible keys", `[{"a":1},{"x":2,"y":3}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordsToExcel(context.Background(), []byte(tt.raw), SheetOptions{})
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRendererFailureMapsToErrRender(t *testing.T) {
	svc := New()
	svc.pdf = &mockRenderer{err: errors.New("engine broke")}

	_, err := svc.MarkdownToPDF(context.Background(), "# x")
	if !errors.Is(err, ErrRender) {
		t.Errorf("error = %v, want ErrRender", err)
	}
}

func TestRendererPanicIsRecovered(t *testing.T) {
	svc := New()
	svc.pdf = &mockRenderer{panics: true}

	_, err := svc.MarkdownToPDF(context.Background(), "# x")
	if !errors.Is(err, ErrRender) {
		t.Errorf("error = %v, want ErrRender", err)
	}
}

func TestContextCancellationPassesThrough(t *testing.T) {
	svc := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.MarkdownToPDF(ctx, "# x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrRender) {
		t.Error("cancellation must not be wrapped as a render failure")
	}
}

func TestWithDefaultSheetName(t *testing.T) {
	svc := New(WithDefaultSheetName("Custom"))
	if svc.cfg.sheetName != "Custom" {
		t.Errorf("sheetName = %q, want Custom", svc.cfg.sheetName)
	}
}

func TestWithoutEmptyDocxPlaceholder(t *testing.T) {
	svc := New(WithoutEmptyDocxPlaceholder())
	if svc.cfg.docxPlaceholder {
		t.Error("placeholder still enabled")
	}
}

func TestSheetOptionsForwarded(t *testing.T) {
	svc := New()
	raw := []byte(`[{"a":1}]`)

	result, err := svc.RecordsToExcel(context.Background(), raw, SheetOptions{
		SheetName:         "Named",
		DisableFormatting: true,
	})
	if err != nil {
		t.Fatalf("RecordsToExcel() error = %v", err)
	}
	if len(result.Data) == 0 {
		t.Error("empty workbook bytes")
	}
}
