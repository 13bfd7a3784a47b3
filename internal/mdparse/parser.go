// Package mdparse converts Markdown text into the block model. The
// conversion goes through an intermediate HTML form produced by
// Goldmark, then a line-oriented scan that folds HTML elements into
// typed blocks. Parsing never fails on arbitrary input: in the worst
// case everything becomes plain paragraphs.
package mdparse

import (
	"bytes"
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/diliima/markdown-to-pdf-api/internal/block"
	"github.com/diliima/markdown-to-pdf-api/internal/inline"
)

// Precompiled patterns for tag handling.
var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Structural wrappers removed before inline-format splitting.
	structuralTags = regexp.MustCompile(`</?(?:p|li|ul|ol|h[1-6]|blockquote|del|thead|tbody|tr)(?:\s[^>]*)?>`)

	anyTag        = regexp.MustCompile(`<[^>]+>`)
	codeOpenTag   = regexp.MustCompile(`^<pre><code(?:\s[^>]*)?>`)
	headingOpen   = regexp.MustCompile(`^<h([1-6])(?:\s[^>]*)?>`)
	cellOpenClose = regexp.MustCompile(`^<t[hd](?:\s[^>]*)?>(.*)</t[hd]>$`)
)

// Parser converts Markdown into an ordered block sequence.
type Parser struct {
	md goldmark.Markdown
}

// New creates a Parser with GFM extensions enabled (tables,
// strikethrough, task lists, fenced code blocks).
func New() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithXHTML()),
		),
	}
}

// Parse converts Markdown text into the block model. It returns an
// error only on context cancellation; malformed input degrades to
// paragraph blocks instead of failing.
func (p *Parser) Parse(ctx context.Context, markdown string) ([]block.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markdown = crlfOrCR.ReplaceAllString(markdown, "\n")
	if strings.TrimSpace(markdown) == "" {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := p.md.Convert([]byte(markdown), &buf); err != nil {
		// Goldmark accepts any byte sequence in practice; if it ever
		// refuses, degrade to plain paragraphs.
		return plainParagraphs(markdown), nil
	}

	return scan(buf.String()), nil
}

// scan walks the intermediate HTML line by line, folding multi-line
// constructs (code, blockquote, list, table) and coalescing loose text
// into a pending paragraph buffer.
func scan(htmlText string) []block.Block {
	lines := strings.Split(htmlText, "\n")

	var blocks []block.Block
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		if b, ok := paragraph(strings.Join(current, " ")); ok {
			blocks = append(blocks, b)
		}
		current = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		var heading []string
		if m := headingOpen.FindStringSubmatch(line); m != nil && strings.HasSuffix(line, "</h"+m[1]+">") {
			heading = m
		}

		switch {
		case line == "":
			flush()

		case heading != nil:
			flush()
			text := cleanAll(line)
			if text == "" {
				continue
			}
			level, _ := strconv.Atoi(heading[1])
			if level == 1 {
				blocks = append(blocks, block.Title(text))
			} else {
				blocks = append(blocks, block.Heading(level, text))
			}

		case codeOpenTag.MatchString(line):
			flush()
			rest := codeOpenTag.ReplaceAllString(line, "")
			var code []string
			if strings.HasSuffix(rest, "</code></pre>") {
				code = append(code, strings.TrimSuffix(rest, "</code></pre>"))
			} else {
				if rest != "" {
					code = append(code, rest)
				}
				for i++; i < len(lines); i++ {
					l := lines[i]
					if strings.HasSuffix(strings.TrimSpace(l), "</code></pre>") {
						if tail := strings.TrimSuffix(strings.TrimSpace(l), "</code></pre>"); tail != "" {
							code = append(code, tail)
						}
						break
					}
					code = append(code, l)
				}
				// An unterminated fence is closed implicitly at EOF.
			}
			blocks = append(blocks, block.Code(html.UnescapeString(strings.Join(code, "\n"))))

		case strings.HasPrefix(line, "<blockquote>"):
			flush()
			var quote []string
			if inner := cleanAll(line); inner != "" {
				quote = append(quote, inner)
			}
			if !strings.HasSuffix(line, "</blockquote>") {
				for i++; i < len(lines); i++ {
					l := strings.TrimSpace(lines[i])
					done := strings.HasSuffix(l, "</blockquote>")
					if inner := cleanAll(l); inner != "" {
						quote = append(quote, inner)
					}
					if done {
						break
					}
				}
			}
			blocks = append(blocks, block.Quote(strings.Join(quote, " ")))

		case strings.HasPrefix(line, "<ul>") || strings.HasPrefix(line, "<ol>"):
			flush()
			ordered := strings.HasPrefix(line, "<ol>")
			n := 0
			for i++; i < len(lines); i++ {
				l := strings.TrimSpace(lines[i])
				if l == "</ul>" || l == "</ol>" {
					break
				}
				if !strings.HasPrefix(l, "<li") {
					continue
				}
				item := cleanAll(l)
				if item == "" {
					continue
				}
				ordinal := 0
				if ordered {
					n++
					ordinal = n
				}
				blocks = append(blocks, block.ListItem(item, ordinal))
			}

		case strings.HasPrefix(line, "<table>"):
			flush()
			if tbl, ok := scanTable(lines, &i); ok {
				blocks = append(blocks, tbl)
			}

		case strings.HasPrefix(line, "<p>") && strings.HasSuffix(line, "</p>"):
			flush()
			if b, ok := paragraph(line); ok {
				blocks = append(blocks, b)
			}

		default:
			if cleaned := structuralTags.ReplaceAllString(line, ""); strings.TrimSpace(cleaned) != "" {
				current = append(current, cleaned)
			}
		}
	}
	flush()

	return blocks
}

// scanTable consumes lines from <table> up to </table>, producing one
// row per <tr> and one cell per <th>/<td> line. The index is advanced
// past the closing tag (or to EOF if the table is unterminated).
func scanTable(lines []string, i *int) (block.Block, bool) {
	var rows [][]string
	var row []string
	inRow := false

	for *i++; *i < len(lines); *i++ {
		l := strings.TrimSpace(lines[*i])
		switch {
		case l == "</table>":
			if inRow && len(row) > 0 {
				rows = append(rows, row)
			}
			if len(rows) == 0 {
				return block.Block{}, false
			}
			return block.Table(rows), true
		case strings.HasPrefix(l, "<tr"):
			inRow = true
			row = nil
		case l == "</tr>":
			if len(row) > 0 {
				rows = append(rows, row)
			}
			inRow = false
		case inRow && (strings.HasPrefix(l, "<th") || strings.HasPrefix(l, "<td")):
			if m := cellOpenClose.FindStringSubmatch(l); m != nil {
				row = append(row, html.UnescapeString(anyTag.ReplaceAllString(m[1], "")))
			} else {
				row = append(row, cleanAll(l))
			}
		}
	}
	if inRow && len(row) > 0 {
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return block.Block{}, false
	}
	return block.Table(rows), true
}

// paragraph builds a paragraph block from a line that may still carry
// inline formatting tags. Returns false when nothing visible remains.
func paragraph(line string) (block.Block, bool) {
	spans := inline.SplitFormatted(structuralTags.ReplaceAllString(line, ""))
	if strings.TrimSpace(inline.Concat(spans)) == "" {
		return block.Block{}, false
	}
	return block.Paragraph(spans), true
}

// cleanAll strips every tag and decodes entities.
func cleanAll(s string) string {
	return strings.TrimSpace(html.UnescapeString(anyTag.ReplaceAllString(s, "")))
}

// plainParagraphs is the degraded path: blank-line separated chunks of
// the raw Markdown become plain paragraphs with no formatting.
func plainParagraphs(markdown string) []block.Block {
	var blocks []block.Block
	for _, chunk := range strings.Split(markdown, "\n\n") {
		text := strings.TrimSpace(chunk)
		if text == "" {
			continue
		}
		blocks = append(blocks, block.ParagraphText(text))
	}
	return blocks
}
