package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/poiesic/labelmap/core"
)

// textSeparator joins the text nodes of one rendered block.
const textSeparator = ". "

// ExtractHTML pulls section text out of a rendered label page, where each
// section is a div carrying a data-sectioncode attribute. Every nested div
// becomes one fragment (or the section div itself when it has none).
// Fragments that echo the section title are dropped. It returns nil when
// the section is absent.
func (e *Extractor) ExtractHTML(doc []byte, kind core.SectionKind) core.ExtractedText {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		e.logger.Warn("failed to parse label page", "kind", kind,
			"err", fmt.Errorf("%w: %w", core.ErrParseFailure, err))
		return nil
	}

	section := d.Find(fmt.Sprintf("div[data-sectioncode=%q]", kind.Code())).First()
	if section.Length() == 0 {
		e.logger.Debug("section not found in label page", "kind", kind)
		return nil
	}

	blocks := section.Find("div")
	if blocks.Length() == 0 {
		blocks = section
	}

	title := kind.Title()
	var fragments []string
	blocks.Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			text := joinTextNodes(n)
			if text == "" || strings.Contains(strings.ToLower(text), title) {
				continue
			}
			fragments = append(fragments, text)
		}
	})

	out := core.Dedup(fragments)
	if out.Empty() {
		return nil
	}
	return out
}

// joinTextNodes joins the trimmed, non-empty text nodes under n.
func joinTextNodes(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, textSeparator)
}
