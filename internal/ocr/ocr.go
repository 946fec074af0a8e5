package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/autoform/internal/llm"
)

// Recognizer turns a scanned PDF into text.
type Recognizer interface {
	Recognize(ctx context.Context, pdf []byte) (string, error)
}

// ErrNoImages reports a PDF without embedded page images.
var ErrNoImages = errors.New("no page images found")

const prompt = "Transcribe all text visible in this scanned resume page. Return plain text only, preserving line breaks."

// Page is one embedded page image.
type Page struct {
	Number   int
	MIMEType string
	Data     []byte
}

// Vision recognizes text by sending each embedded page image to a
// vision-capable chat model.
type Vision struct {
	Client llm.Client
	Model  string
	// MaxPages caps how many images are sent. Zero means 10.
	MaxPages int
	// Timeout bounds each page request. Zero means no extra deadline.
	Timeout time.Duration

	extract func([]byte) ([]Page, error)
}

// Recognize extracts the page images of pdf and concatenates the
// recognized text of each page with newlines.
func (v *Vision) Recognize(ctx context.Context, pdf []byte) (string, error) {
	if v == nil || v.Client == nil || strings.TrimSpace(v.Model) == "" {
		return "", errors.New("ocr not configured")
	}
	extract := v.extract
	if extract == nil {
		extract = Images
	}
	pages, err := extract(pdf)
	if err != nil {
		return "", err
	}
	max := v.MaxPages
	if max <= 0 {
		max = 10
	}
	if len(pages) > max {
		pages = pages[:max]
	}
	var parts []string
	for _, p := range pages {
		text, err := v.page(ctx, p)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", p.Number, err)
		}
		if t := strings.TrimSpace(text); t != "" {
			parts = append(parts, t)
		}
	}
	log.Debug().Str("stage", "ocr").Int("pages", len(pages)).Msg("ocr complete")
	return strings.Join(parts, "\n"), nil
}

func (v *Vision) page(ctx context.Context, p Page) (string, error) {
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}
	dataURL := "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
	resp, err := v.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh}},
			},
		}},
		N: 1,
	})
	if err != nil {
		return "", err
	}
	return llm.FirstContent(resp)
}

// Images returns the embedded images of pdf ordered by page.
func Images(pdf []byte) ([]Page, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	perPage, err := api.ExtractImagesRaw(bytes.NewReader(pdf), nil, conf)
	if err != nil {
		return nil, fmt.Errorf("extract images: %w", err)
	}
	var pages []Page
	for _, imgs := range perPage {
		// map order is random; keep object order within a page
		nrs := make([]int, 0, len(imgs))
		for nr := range imgs {
			nrs = append(nrs, nr)
		}
		sort.Ints(nrs)
		for _, nr := range nrs {
			img := imgs[nr]
			if img.Reader == nil {
				continue
			}
			b, err := io.ReadAll(img.Reader)
			if err != nil || len(b) == 0 {
				continue
			}
			pages = append(pages, Page{Number: img.PageNr, MIMEType: mimeType(img.FileType), Data: b})
		}
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	if len(pages) == 0 {
		return nil, ErrNoImages
	}
	return pages, nil
}

func mimeType(fileType string) string {
	switch strings.ToLower(fileType) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "tif", "tiff":
		return "image/tiff"
	case "jpx", "jp2":
		return "image/jp2"
	}
	return "application/octet-stream"
}
