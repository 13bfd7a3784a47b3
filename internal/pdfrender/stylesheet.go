package pdfrender

// RGB is a 24-bit color.
type RGB struct {
	R, G, B int
}

var (
	colorText      = RGB{0, 0, 0}
	colorTitle     = RGB{0x2C, 0x3E, 0x50}
	colorHeading   = RGB{0x34, 0x49, 0x5E}
	colorQuote     = RGB{0x5D, 0x6D, 0x7E}
	colorAccent    = RGB{0x34, 0x98, 0xDB}
	colorCodeFill  = RGB{0xF8, 0xF9, 0xFA}
	colorHeaderRow = RGB{0x44, 0x72, 0xC4}
	colorAltRow    = RGB{0xF2, 0xF2, 0xF2}
	colorGrid      = RGB{0x7F, 0x7F, 0x7F}
)

// Style holds the text attributes of one block role.
type Style struct {
	Size       float64
	LineHeight float64
	Bold       bool
	Italic     bool
	Color      RGB
	SpaceAfter float64
}

// StyleSheet maps block roles to their visual styles. It is fixed at
// renderer construction and never mutated afterwards.
type StyleSheet struct {
	Title    Style
	Heading2 Style
	Heading3 Style
	Normal   Style
	Code     Style
	Quote    Style
}

// defaultStyles returns the document style sheet.
func defaultStyles() StyleSheet {
	return StyleSheet{
		Title:    Style{Size: 24, LineHeight: 28, Bold: true, Color: colorTitle, SpaceAfter: 12},
		Heading2: Style{Size: 18, LineHeight: 22, Bold: true, Color: colorHeading, SpaceAfter: 8},
		Heading3: Style{Size: 14, LineHeight: 18, Bold: true, Color: colorHeading, SpaceAfter: 6},
		Normal:   Style{Size: 11, LineHeight: 14, Color: colorText, SpaceAfter: 6},
		Code:     Style{Size: 9, LineHeight: 12, Color: colorText, SpaceAfter: 12},
		Quote:    Style{Size: 11, LineHeight: 14, Italic: true, Color: colorQuote, SpaceAfter: 12},
	}
}

// styleFor picks the heading style for a level; level 1 shares the
// title style so a promoted heading still reads as a document head.
func (s StyleSheet) headingStyle(level int) Style {
	switch level {
	case 1:
		return s.Title
	case 3:
		return s.Heading3
	default:
		return s.Heading2
	}
}
