package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/autoform/internal/ocr"
)

// Format identifies a supported document type.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

var (
	// ErrUnrecognizedFormat rejects documents that are not text, PDF or DOCX.
	ErrUnrecognizedFormat = errors.New("unrecognized document format")
	// ErrNoExtractableText reports a document that yields no text, even
	// after OCR.
	ErrNoExtractableText = errors.New("no extractable text")
)

// Detect picks the format from the file extension, falling back to content
// sniffing when the extension is missing or unknown.
func Detect(filename string, content []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return FormatText, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	}
	switch {
	case bytes.HasPrefix(content, []byte("%PDF-")):
		return FormatPDF, nil
	case bytes.HasPrefix(content, []byte("PK\x03\x04")) && isDOCX(content):
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnrecognizedFormat, filepath.Base(filename))
}

// Reader converts documents to text. OCR is used for PDFs without a text
// layer and may be nil.
type Reader struct {
	OCR ocr.Recognizer
}

// Text returns the NFKC-normalized text of the document.
func (r *Reader) Text(ctx context.Context, filename string, content []byte) (string, error) {
	format, err := Detect(filename, content)
	if err != nil {
		return "", err
	}
	var text string
	switch format {
	case FormatText:
		text, err = plainText(content)
	case FormatPDF:
		text, err = pdfText(content)
		if err == nil && strings.TrimSpace(text) == "" {
			text = r.recognize(ctx, content)
		}
	case FormatDOCX:
		text, err = docxText(content)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", format, err)
	}
	text = strings.TrimSpace(norm.NFKC.String(text))
	if text == "" {
		return "", ErrNoExtractableText
	}
	log.Debug().Str("stage", "document").Str("format", string(format)).Int("chars", len(text)).Msg("document text extracted")
	return text, nil
}

func (r *Reader) recognize(ctx context.Context, content []byte) string {
	if r == nil || r.OCR == nil {
		return ""
	}
	text, err := r.OCR.Recognize(ctx, content)
	if err != nil {
		log.Warn().Err(err).Str("stage", "ocr").Msg("ocr failed")
		return ""
	}
	return text
}

// plainText decodes UTF-8, honoring UTF-8 and UTF-16 byte order marks.
func plainText(content []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, content)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(out), "�"), nil
}
