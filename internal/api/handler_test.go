package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docconv "github.com/diliima/markdown-to-pdf-api"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	NewHandler(docconv.New()).RegisterRoutes(app)
	return app
}

func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

func TestMarkdownToPDF_Download(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := jsonRequest(t, "/convert/markdown/pdf", fiber.Map{
		"markdown": "# Hello\n\nBody text.",
		"filename": "greeting",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="greeting.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.True(t, bytes.HasPrefix(readBody(t, resp), []byte("%PDF")))
}

func TestMarkdownToPDF_Base64Envelope(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := jsonRequest(t, "/convert/markdown/pdf/base64", fiber.Map{"markdown": "# Hi"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Filename      string `json:"filename"`
		ContentType   string `json:"content_type"`
		Size          int    `json:"size"`
		ContentBase64 string `json:"content_base64"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &env))

	assert.True(t, strings.HasPrefix(env.Filename, "document-"), "default name is generated")
	assert.True(t, strings.HasSuffix(env.Filename, ".pdf"))
	assert.Equal(t, "application/pdf", env.ContentType)

	decoded, err := base64.StdEncoding.DecodeString(env.ContentBase64)
	require.NoError(t, err)
	assert.Len(t, decoded, env.Size)
	assert.True(t, bytes.HasPrefix(decoded, []byte("%PDF")))
}

func TestMarkdownToDOCX_Download(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := jsonRequest(t, "/convert/markdown/docx", fiber.Map{
		"markdown": "# Doc\n\n- a\n- b",
		"filename": "notes.docx",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="notes.docx"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.True(t, bytes.HasPrefix(readBody(t, resp), []byte("PK")))
}

func TestMarkdown_EmptyInputIs400(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	for _, path := range []string{"/convert/markdown/pdf", "/convert/markdown/docx"} {
		req := jsonRequest(t, path, fiber.Map{"markdown": "   "})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
		assert.NotEmpty(t, body["error"], path)
	}
}

func TestMarkdown_NonJSONBodyIs400(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/convert/markdown/pdf", strings.NewReader("# not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJSONToExcel_Download(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := jsonRequest(t, "/convert/json/excel", fiber.Map{
		"records":    []fiber.Map{{"name": "Ada", "age": 36}, {"name": "Grace", "age": 85}},
		"sheet_name": "People",
		"filename":   "people",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, contentTypeXLSX, resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="people.xlsx"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.True(t, bytes.HasPrefix(readBody(t, resp), []byte("PK")))
}

func TestJSONToExcel_Base64Envelope(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := jsonRequest(t, "/convert/json/excel/base64", fiber.Map{
		"records":  []fiber.Map{{"city": "Oslo"}, {"city": "Lima"}, {"city": "Kyiv"}},
		"filename": "cities",
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env struct {
		Filename      string `json:"filename"`
		ContentType   string `json:"content_type"`
		Size          int    `json:"size"`
		Records       int    `json:"records"`
		ContentBase64 string `json:"content_base64"`
	}
	require.NoError(t, json.Unmarshal(readBody(t, resp), &env))

	assert.Equal(t, "cities.xlsx", env.Filename)
	assert.Equal(t, contentTypeXLSX, env.ContentType)
	assert.Equal(t, 3, env.Records)

	decoded, err := base64.StdEncoding.DecodeString(env.ContentBase64)
	require.NoError(t, err)
	assert.Len(t, decoded, env.Size)
	assert.True(t, bytes.HasPrefix(decoded, []byte("PK")))
}

func TestJSONToExcel_Validation(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"missing records", fiber.Map{"sheet_name": "x"}},
		{"records not an array", fiber.Map{"records": fiber.Map{"a": 1}}},
		{"empty array", fiber.Map{"records": []fiber.Map{}}},
		{"incompatible keys", fiber.Map{"records": []fiber.Map{{"a": 1}, {"x": 2, "y": 3}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, err := app.Test(jsonRequest(t, "/convert/json/excel", tt.body), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestDocxToPDF_MultipartUpload(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	// Produce a real document to upload.
	source, err := docconv.New().MarkdownToDOCX(context.Background(), "# Memo\n\nHello.")
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "memo.docx")
	require.NoError(t, err)
	_, err = fw.Write(source.Data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert/docx/pdf", &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="memo.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.True(t, bytes.HasPrefix(readBody(t, resp), []byte("%PDF")))
}

func TestDocxToPDF_RawBodyFallback(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	source, err := docconv.New().MarkdownToDOCX(context.Background(), "plain paragraph")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/convert/docx/pdf/base64", bytes.NewReader(source.Data))
	req.Header.Set(fiber.HeaderContentType, contentTypeDOCX)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDocxToPDF_Rejections(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/convert/docx/pdf", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not a word document", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/convert/docx/pdf", strings.NewReader("just text"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOutputFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		requested string
		ext       string
		want      string
	}{
		{"report", "pdf", "report.pdf"},
		{"report.pdf", "pdf", "report.pdf"},
		{"  spaced  ", "docx", "spaced.docx"},
	}
	for _, tt := range tests {
		got := outputFilename(tt.requested, tt.ext)
		assert.Equal(t, tt.want, got)
	}

	generated := outputFilename("", "xlsx")
	assert.True(t, strings.HasPrefix(generated, "document-"))
	assert.True(t, strings.HasSuffix(generated, ".xlsx"))
}
