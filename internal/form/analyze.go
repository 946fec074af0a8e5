package form

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/autoform/internal/scrape"
)

// LiteralName is the script variable holding the form definition.
const LiteralName = "FB_PUBLIC_LOAD_DATA_"

// Fetcher retrieves an HTML page.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Schema is the recovered description of a form.
type Schema struct {
	FormID  string  `json:"form_id"`
	Title   string  `json:"title"`
	Entries []Entry `json:"fields"`
}

// Analyzer fetches a form page and recovers its entries.
type Analyzer struct {
	Fetcher Fetcher
}

// Analyze fetches formURL and flattens its embedded definition. A page
// without a usable definition or without entries yields
// ErrSchemaNotRecognized.
func (a *Analyzer) Analyze(ctx context.Context, formURL string) (Schema, error) {
	body, _, err := a.Fetcher.Get(ctx, formURL)
	if err != nil {
		return Schema{}, fmt.Errorf("fetch form: %w", err)
	}
	doc := string(body)
	literal, ok := scrape.Literal(doc, LiteralName)
	if !ok {
		log.Debug().Str("stage", "analyze").Str("url", formURL).Msg("form literal not found")
		return Schema{}, ErrSchemaNotRecognized
	}
	entries, err := Flatten(literal)
	if err != nil {
		return Schema{}, err
	}
	if len(entries) == 0 {
		return Schema{}, ErrSchemaNotRecognized
	}
	log.Debug().Str("stage", "analyze").Int("entries", len(entries)).Msg("form analyzed")
	return Schema{FormID: ID(formURL), Title: scrape.Title(doc), Entries: entries}, nil
}
