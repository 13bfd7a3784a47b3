package pdfrender

import (
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/diliima/markdown-to-pdf-api/pkg/logger"
)

// fontSet names the families registered on a document. When no TTF
// files are found on the host the set falls back to the built-in core
// fonts, which only cover Latin-1; text is then squeezed through a
// cp1252 translator instead of being rendered as UTF-8.
type fontSet struct {
	body    string
	mono    string
	unicode bool
}

var fontDirs = []string{
	"/usr/share/fonts/truetype/dejavu",
	"/usr/share/fonts/truetype/liberation",
	"/usr/share/fonts/truetype/noto",
	"/usr/share/fonts/TTF",
	"/usr/local/share/fonts",
	"/Library/Fonts",
	"/System/Library/Fonts/Supplemental",
	`C:\Windows\Fonts`,
}

// bodyFonts lists candidate families in preference order. Each entry
// maps the fpdf style key to a file name; missing variants degrade to
// the regular face.
var bodyFonts = []map[string]string{
	{
		"":   "DejaVuSans.ttf",
		"B":  "DejaVuSans-Bold.ttf",
		"I":  "DejaVuSans-Oblique.ttf",
		"BI": "DejaVuSans-BoldOblique.ttf",
	},
	{
		"":   "LiberationSans-Regular.ttf",
		"B":  "LiberationSans-Bold.ttf",
		"I":  "LiberationSans-Italic.ttf",
		"BI": "LiberationSans-BoldItalic.ttf",
	},
	{
		"":   "NotoSans-Regular.ttf",
		"B":  "NotoSans-Bold.ttf",
		"I":  "NotoSans-Italic.ttf",
		"BI": "NotoSans-BoldItalic.ttf",
	},
	{
		"":  "Arial.ttf",
		"B": "Arial Bold.ttf",
		"I": "Arial Italic.ttf",
	},
}

var monoFonts = []map[string]string{
	{
		"":  "DejaVuSansMono.ttf",
		"B": "DejaVuSansMono-Bold.ttf",
	},
	{
		"":  "LiberationMono-Regular.ttf",
		"B": "LiberationMono-Bold.ttf",
	},
	{"": "NotoSansMono-Regular.ttf"},
	{"": "Courier New.ttf"},
}

// loadFonts registers a UTF-8 capable family pair on the document if
// one can be found, otherwise returns the core-font fallback set.
func loadFonts(pdf *fpdf.Fpdf) fontSet {
	body := registerFamily(pdf, "docbody", bodyFonts)
	mono := registerFamily(pdf, "docmono", monoFonts)

	if body == "" {
		logger.Warn("no unicode font found, falling back to core fonts",
			logger.F("coverage", "latin-1 only"))
		return fontSet{body: "Helvetica", mono: "Courier", unicode: false}
	}
	if mono == "" {
		mono = body
	}
	return fontSet{body: body, mono: mono, unicode: true}
}

// registerFamily tries each candidate family and registers the first
// whose regular face exists on disk. Missing bold/italic variants are
// aliased to the regular file so style switches never fail.
func registerFamily(pdf *fpdf.Fpdf, family string, candidates []map[string]string) string {
	for _, variants := range candidates {
		regular := findFont(variants[""])
		if regular == "" {
			continue
		}
		for _, styleKey := range []string{"", "B", "I", "BI"} {
			path := findFont(variants[styleKey])
			if path == "" {
				path = regular
			}
			pdf.AddUTF8Font(family, styleKey, path)
		}
		if pdf.Err() {
			return ""
		}
		return family
	}
	return ""
}

func findFont(name string) string {
	if name == "" {
		return ""
	}
	for _, dir := range fontDirs {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
