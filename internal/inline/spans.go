// Package inline splits formatting-tagged text into runs of uniformly
// formatted spans. It is deliberately small and pure: the same split is
// used when building the block model and when reconstructing renderer
// runs, so both sides agree on span boundaries.
package inline

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

// Span is a run of text sharing one formatting combination.
// Code selects a fixed-width font family; it does not imply weight or
// slant, so Bold/Italic remain combinable with it.
type Span struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Code      bool
}

// Precompiled formatting patterns. Order does not matter here; matches
// are sorted by position before assembly.
var formatPatterns = []struct {
	re   *regexp.Regexp
	bold bool
	ital bool
	code bool
}{
	{regexp.MustCompile(`<strong>(.*?)</strong>`), true, false, false},
	{regexp.MustCompile(`<b>(.*?)</b>`), true, false, false},
	{regexp.MustCompile(`<em>(.*?)</em>`), false, true, false},
	{regexp.MustCompile(`<i>(.*?)</i>`), false, true, false},
	{regexp.MustCompile(`<code>(.*?)</code>`), false, false, true},
}

// anyTag strips leftover markup from plain gaps between matches.
var anyTag = regexp.MustCompile(`<[^>]+>`)

type match struct {
	start, end int
	text       string
	bold       bool
	ital       bool
	code       bool
}

// SplitFormatted splits text containing <strong>/<b>/<em>/<i>/<code>
// markers into ordered spans. Gaps between matches become plain spans
// with any unrecognized tags stripped. Matches are consumed in ascending
// position order; a match that starts inside an already consumed region
// (overlapping or nested markers) is skipped, so the concatenated span
// text never duplicates source text.
func SplitFormatted(text string) []Span {
	var matches []match
	for _, p := range formatPatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			matches = append(matches, match{
				start: idx[0],
				end:   idx[1],
				text:  text[idx[2]:idx[3]],
				bold:  p.bold,
				ital:  p.ital,
				code:  p.code,
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})

	var spans []Span
	pos := 0
	for _, m := range matches {
		if m.start < pos {
			continue
		}
		if m.start > pos {
			if plain := plainText(text[pos:m.start]); plain != "" {
				spans = append(spans, Span{Text: plain})
			}
		}
		// Inner markers of a nested match are stripped rather than
		// re-split; the outer formatting wins.
		if inner := plainText(m.text); inner != "" {
			spans = append(spans, Span{
				Text:   inner,
				Bold:   m.bold,
				Italic: m.ital,
				Code:   m.code,
			})
		}
		pos = m.end
	}
	if pos < len(text) {
		if plain := plainText(text[pos:]); plain != "" {
			spans = append(spans, Span{Text: plain})
		}
	}
	return spans
}

// Concat joins span texts in order. Used by tests and by the plain-text
// preservation law on paragraphs.
func Concat(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// plainText strips residual tags and decodes HTML entities.
func plainText(s string) string {
	return html.UnescapeString(anyTag.ReplaceAllString(s, ""))
}
