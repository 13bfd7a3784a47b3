// Package api exposes the conversion service over HTTP. Every
// conversion has two routes: the bare route streams the document as a
// download, the /base64 variant wraps it in a JSON envelope for
// clients that cannot handle binary responses.
package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	docconv "github.com/diliima/markdown-to-pdf-api"
	"github.com/diliima/markdown-to-pdf-api/pkg/logger"
)

// Content types of the produced documents.
const (
	contentTypePDF  = "application/pdf"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler routes conversion requests to the service.
type Handler struct {
	svc *docconv.Service
}

// NewHandler builds a Handler around the given service.
func NewHandler(svc *docconv.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the conversion endpoints onto the router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Post("/convert/markdown/pdf", h.MarkdownToPDF)
	router.Post("/convert/markdown/pdf/base64", h.MarkdownToPDFBase64)
	router.Post("/convert/markdown/docx", h.MarkdownToDOCX)
	router.Post("/convert/markdown/docx/base64", h.MarkdownToDOCXBase64)
	router.Post("/convert/json/excel", h.JSONToExcel)
	router.Post("/convert/json/excel/base64", h.JSONToExcelBase64)
	router.Post("/convert/docx/pdf", h.DocxToPDF)
	router.Post("/convert/docx/pdf/base64", h.DocxToPDFBase64)
}

type markdownRequest struct {
	Markdown string `json:"markdown"`
	Filename string `json:"filename"`
}

type excelRequest struct {
	Records         json.RawMessage `json:"records"`
	SheetName       string          `json:"sheet_name"`
	ApplyFormatting *bool           `json:"apply_formatting"`
	Filename        string          `json:"filename"`
}

// MarkdownToPDF converts markdown and streams the PDF back.
func (h *Handler) MarkdownToPDF(c *fiber.Ctx) error {
	return h.markdownConversion(c, "pdf", false)
}

// MarkdownToPDFBase64 converts markdown and returns a JSON envelope.
func (h *Handler) MarkdownToPDFBase64(c *fiber.Ctx) error {
	return h.markdownConversion(c, "pdf", true)
}

// MarkdownToDOCX converts markdown and streams the DOCX back.
func (h *Handler) MarkdownToDOCX(c *fiber.Ctx) error {
	return h.markdownConversion(c, "docx", false)
}

// MarkdownToDOCXBase64 converts markdown and returns a JSON envelope.
func (h *Handler) MarkdownToDOCXBase64(c *fiber.Ctx) error {
	return h.markdownConversion(c, "docx", true)
}

func (h *Handler) markdownConversion(c *fiber.Ctx, format string, asBase64 bool) error {
	var req markdownRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "request body must be JSON with a markdown field")
	}
	if strings.TrimSpace(req.Markdown) == "" {
		return badRequest(c, "markdown field is required")
	}

	var (
		result      *docconv.Result
		err         error
		contentType string
	)
	if format == "pdf" {
		result, err = h.svc.MarkdownToPDF(c.Context(), req.Markdown)
		contentType = contentTypePDF
	} else {
		result, err = h.svc.MarkdownToDOCX(c.Context(), req.Markdown)
		contentType = contentTypeDOCX
	}
	if err != nil {
		return conversionError(c, err)
	}

	filename := outputFilename(req.Filename, format)
	if asBase64 {
		return envelope(c, filename, contentType, result.Data)
	}
	return download(c, filename, contentType, result.Data)
}

// JSONToExcel converts a JSON record array and streams the workbook.
func (h *Handler) JSONToExcel(c *fiber.Ctx) error {
	return h.excelConversion(c, false)
}

// JSONToExcelBase64 converts a JSON record array into a JSON envelope.
func (h *Handler) JSONToExcelBase64(c *fiber.Ctx) error {
	return h.excelConversion(c, true)
}

func (h *Handler) excelConversion(c *fiber.Ctx, asBase64 bool) error {
	var req excelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "request body must be JSON with a records array")
	}
	if len(req.Records) == 0 {
		return badRequest(c, "records field is required")
	}

	opts := docconv.SheetOptions{SheetName: req.SheetName}
	if req.ApplyFormatting != nil {
		opts.DisableFormatting = !*req.ApplyFormatting
	}

	result, err := h.svc.RecordsToExcel(c.Context(), req.Records, opts)
	if err != nil {
		return conversionError(c, err)
	}

	filename := outputFilename(req.Filename, "xlsx")
	if asBase64 {
		return c.JSON(fiber.Map{
			"filename":       filename,
			"content_type":   contentTypeXLSX,
			"size":           len(result.Data),
			"records":        len(result.Records),
			"content_base64": base64.StdEncoding.EncodeToString(result.Data),
		})
	}
	return download(c, filename, contentTypeXLSX, result.Data)
}

// DocxToPDF accepts a Word document and streams the rendered PDF.
// The document arrives either as a multipart file field named "file"
// or as the raw request body.
func (h *Handler) DocxToPDF(c *fiber.Ctx) error {
	return h.docxConversion(c, false)
}

// DocxToPDFBase64 accepts a Word document and returns a JSON envelope.
func (h *Handler) DocxToPDFBase64(c *fiber.Ctx) error {
	return h.docxConversion(c, true)
}

func (h *Handler) docxConversion(c *fiber.Ctx, asBase64 bool) error {
	data, sourceName, err := docxPayload(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.svc.DocxToPDF(c.Context(), data)
	if err != nil {
		return conversionError(c, err)
	}

	filename := outputFilename(strings.TrimSuffix(sourceName, ".docx"), "pdf")
	if asBase64 {
		return envelope(c, filename, contentTypePDF, result.Data)
	}
	return download(c, filename, contentTypePDF, result.Data)
}

// docxPayload extracts the document bytes from the request.
func docxPayload(c *fiber.Ctx) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		// Not multipart; fall back to the raw body.
		if len(c.Body()) == 0 {
			return nil, "", errors.New("send the document as multipart field \"file\" or as the request body")
		}
		return c.Body(), "", nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening uploaded file: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("reading uploaded file: %v", err)
	}
	return data, fileHeader.Filename, nil
}

// outputFilename applies the requested base name or generates one, and
// forces the extension to match the produced format.
func outputFilename(requested, ext string) string {
	name := strings.TrimSpace(requested)
	name = strings.TrimSuffix(name, "."+ext)
	if name == "" {
		name = "document-" + uuid.NewString()
	}
	return name + "." + ext
}

func download(c *fiber.Ctx, filename, contentType string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

func envelope(c *fiber.Ctx, filename, contentType string, data []byte) error {
	return c.JSON(fiber.Map{
		"filename":       filename,
		"content_type":   contentType,
		"size":           len(data),
		"content_base64": base64.StdEncoding.EncodeToString(data),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// conversionError maps service error categories onto HTTP statuses.
// Validation and malformed-document failures are the client's fault;
// anything else is ours.
func conversionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, docconv.ErrValidation), errors.Is(err, docconv.ErrMalformedDocument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.Error("conversion failed", logger.F("path", c.Path()), logger.F("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "conversion failed"})
	}
}
