package docconv

// SheetOptions configures a JSON-to-Excel conversion.
type SheetOptions struct {
	// SheetName names the single worksheet. Empty means the service
	// default; names longer than 31 characters are truncated to the
	// workbook format's limit.
	SheetName string

	// DisableFormatting skips the header fill, banded rows and cell
	// borders, leaving raw values only.
	DisableFormatting bool
}

// Result holds the output of one conversion.
type Result struct {
	// Data is the rendered document: PDF, DOCX or XLSX bytes.
	Data []byte

	// Records and Columns are set by RecordsToExcel only: the decoded
	// rows and the column order actually written to the sheet.
	Records []map[string]any
	Columns []string
}
