package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"
)

// readPDF extracts plain text from a PDF.
func readPDF(fs afero.Fs, path string) Result {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Result{Method: "pdf", Err: err}
	}
	text, err := pdfPlainText(data)
	if err != nil {
		return Result{Method: "pdf", Err: err}
	}
	return Result{Excerpt: text, Method: "pdf"}
}

// pdfPlainText decodes the PDF and concatenates its text content.
// The pdf package panics on some malformed files; that is converted to an
// error here so a corrupt scan never takes down a batch.
func pdfPlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
