package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/labelmap/core"
)

// Title keywords used when a section carries no matching code.
var (
	IndicationKeywords = []string{
		"Indications",
		"Indication",
		"Use",
		"Uses",
		"Usage",
		"INDICATIONS AND USAGE",
		"INDICATIONS & USAGE",
		"INDICATIONS &amp; USAGE",
	}

	DirectionKeywords = []string{
		"Directions",
		"Direction",
		"Administration",
		"DOSAGE AND ADMINISTRATION",
		"DOSAGE & ADMINISTRATION",
		"How to use",
		"Method of Administration",
	}
)

// BulletPrefix marks list items in directions output.
const BulletPrefix = "• "

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// Extractor pulls section text out of label documents. It holds no
// per-document state and is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "section-extractor")
	return e
}

// Sections parses an SPL XML document into classified sections.
// Malformed markup returns an error wrapping core.ErrParseFailure.
func (e *Extractor) Sections(doc []byte) ([]Section, error) {
	root, err := parseDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParseFailure, err)
	}
	return sectionsOf(root), nil
}

// Extract returns the unique text fragments of every section of the given
// kind, in document order. It returns nil when nothing matches or the
// document cannot be parsed; parse failures are logged, never returned.
func (e *Extractor) Extract(doc []byte, kind core.SectionKind) core.ExtractedText {
	sections, err := e.Sections(doc)
	if err != nil {
		e.logger.Warn("failed to parse label document", "kind", kind, "err", err)
		return nil
	}

	var fragments []string
	for _, sec := range sections {
		if !sectionMatches(sec, kind) {
			continue
		}
		fragments = collect(fragments, sec.body(), kind)
	}

	out := core.Dedup(fragments)
	if out.Empty() {
		e.logger.Debug("section not found", "kind", kind, "sections", len(sections))
		return nil
	}
	return out
}

// Indications returns the indication fragments of an SPL document.
func (e *Extractor) Indications(doc []byte) core.ExtractedText {
	return e.Extract(doc, core.SectionIndications)
}

// Directions returns the directions of an SPL document as one
// newline-separated string, or "" when none are found.
func (e *Extractor) Directions(doc []byte) string {
	return e.Extract(doc, core.SectionDirections).Joined()
}

// sectionMatches reports whether sec belongs to kind. A section carrying
// the kind's code matches without its title being considered.
func sectionMatches(sec Section, kind core.SectionKind) bool {
	switch s := sec.(type) {
	case CodeSection:
		if s.HasCode(kind.Code()) {
			return true
		}
		return titleMatches(s.Title, kind)
	case TitledSection:
		return titleMatches(s.Title, kind)
	case UntitledSection:
		return false
	}
	return false
}

// titleMatches tests a title against the kind's keywords. Indication
// titles must equal a keyword; direction titles need only contain one.
func titleMatches(title string, kind core.SectionKind) bool {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return false
	}

	switch kind {
	case core.SectionIndications:
		for _, k := range IndicationKeywords {
			if strings.ToLower(k) == title {
				return true
			}
		}
	case core.SectionDirections:
		for _, k := range DirectionKeywords {
			if strings.Contains(title, strings.ToLower(k)) {
				return true
			}
		}
	}
	return false
}

// collect appends the fragments of one section body: paragraphs, list
// items, table rows, then any remaining direct text if not yet seen.
func collect(fragments []string, text *node, kind core.SectionKind) []string {
	if text == nil {
		return fragments
	}

	for _, p := range text.findAll("paragraph") {
		if s := textContent(p); s != "" {
			fragments = append(fragments, s)
		}
	}

	for _, list := range text.findAll("list") {
		for _, item := range list.findAll("item") {
			s := textContent(item)
			if s == "" {
				continue
			}
			if kind == core.SectionDirections {
				s = BulletPrefix + s
			}
			fragments = append(fragments, s)
		}
	}

	for _, table := range text.findAll("table") {
		fragments = append(fragments, tableRows(table)...)
	}

	if s := residualText(text); s != "" && !contains(fragments, s) {
		fragments = append(fragments, s)
	}
	return fragments
}

// tableRows serializes each row as its non-empty cells joined by " - ".
func tableRows(table *node) []string {
	var rows []string
	for _, tr := range table.findAll("tr") {
		var cells []string
		tr.walk(func(n *node) {
			if n.name != "td" && n.name != "th" {
				return
			}
			if s := textContent(n); s != "" {
				cells = append(cells, s)
			}
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " - "))
		}
	}
	return rows
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
