package scrape

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// bodyTextCap bounds the whole-document fallback so junk pages cannot
// flood downstream prompts.
const bodyTextCap = 5000

// Page is the parsed input handed to each extraction strategy.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
	Raw []byte
}

// Strategy extracts body text from a page; an empty result means the
// strategy does not apply and the next one is tried.
type Strategy interface {
	Name() string
	Extract(page Page) string
}

// DefaultStrategies returns the extraction chain in evaluation order.
// The capped whole-document fallback stays last so it only fires when
// nothing structured was found.
func DefaultStrategies() []Strategy {
	return []Strategy{
		articleElements{},
		mainRegion{},
		readable{},
		documentText{},
	}
}

// articleElements concatenates the text of all <article> elements.
type articleElements struct{}

func (articleElements) Name() string { return "article-elements" }

func (articleElements) Extract(page Page) string {
	var parts []string
	page.Doc.Find("article").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// mainRegion takes the text of the first <main> element.
type mainRegion struct{}

func (mainRegion) Name() string { return "main-region" }

func (mainRegion) Extract(page Page) string {
	return strings.TrimSpace(page.Doc.Find("main").First().Text())
}

// readable runs go-shiori readability over the raw document.
type readable struct{}

func (readable) Name() string { return "readability" }

func (readable) Extract(page Page) string {
	article, err := readability.FromReader(bytes.NewReader(page.Raw), page.URL)
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

// documentText is the last resort: whole-document text, capped.
type documentText struct{}

func (documentText) Name() string { return "document-text" }

func (documentText) Extract(page Page) string {
	return truncate(strings.TrimSpace(page.Doc.Find("body").Text()), bodyTextCap)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
