package block

import (
	"testing"

	"github.com/diliima/markdown-to-pdf-api/internal/inline"
)

func TestHeadingLevelClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{6, 3},
		{-2, 1},
	}
	for _, tt := range tests {
		if got := Heading(tt.in, "h").Level; got != tt.want {
			t.Errorf("Heading(%d).Level = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    Block
		want string
	}{
		{
			name: "title",
			b:    Title("Report"),
			want: "Report",
		},
		{
			name: "paragraph concatenates spans in order",
			b: Paragraph([]inline.Span{
				{Text: "Hello "},
				{Text: "world", Bold: true},
				{Text: "!"},
			}),
			want: "Hello world!",
		},
		{
			name: "table joins cells",
			b:    Table([][]string{{"a", "b"}, {"1", "2"}}),
			want: "a b 1 2",
		},
		{
			name: "code keeps raw text",
			b:    Code("x := 1\ny := 2"),
			want: "x := 1\ny := 2",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.b.PlainText(); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainTextSequence(t *testing.T) {
	t.Parallel()

	blocks := []Block{
		Title("T"),
		ParagraphText("p one"),
		ListItem("item", 0),
	}
	if got, want := PlainText(blocks), "T p one item"; got != want {
		t.Errorf("PlainText(seq) = %q, want %q", got, want)
	}

	if got := PlainText(nil); got != "" {
		t.Errorf("PlainText(nil) = %q, want empty", got)
	}
}
