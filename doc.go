// Package docconv converts documents between Markdown, PDF, DOCX and
// Excel through a shared intermediate block model.
//
// # Quick Start
//
// Create a service and run a conversion:
//
//	svc := docconv.New()
//
//	result, err := svc.MarkdownToPDF(ctx, "# Hello\n\nWorld")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", result.Data, 0644)
//
// # Conversion Pipeline
//
// Every conversion runs one parser and one renderer over the same
// intermediate representation:
//
//  1. Parse the input (Markdown via Goldmark, DOCX via go-docx) into
//     an ordered block sequence: title, headings, paragraphs, list
//     items, code, quotes, tables.
//  2. Render the sequence with the target engine (PDF via fpdf, DOCX
//     via a WordprocessingML writer, XLSX via excelize).
//
// The block sequence preserves source order and visible text; styling
// is reinterpreted per output format, never carried across.
//
// # Error Handling
//
// Failures wrap one of three category sentinels:
//
//	errors.Is(err, docconv.ErrValidation)        // bad input
//	errors.Is(err, docconv.ErrMalformedDocument) // unparseable document
//	errors.Is(err, docconv.ErrRender)            // output failure
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := docconv.New(
//	    docconv.WithDefaultSheetName("Export"),
//	    docconv.WithoutEmptyDocxPlaceholder(),
//	)
package docconv
