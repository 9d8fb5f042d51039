package extract

import "strings"

// Section is one section of a label document. It is one of CodeSection,
// TitledSection or UntitledSection.
type Section interface {
	body() *node
}

// CodeSection carries one or more controlled section codes. Title is empty
// when the section has no title.
type CodeSection struct {
	Codes []string
	Title string
	text  *node
}

// TitledSection has a title but no controlled code.
type TitledSection struct {
	Title string
	text  *node
}

// UntitledSection has neither a code nor a title and is never extracted.
type UntitledSection struct {
	text *node
}

func (s CodeSection) body() *node     { return s.text }
func (s TitledSection) body() *node   { return s.text }
func (s UntitledSection) body() *node { return s.text }

// HasCode reports whether the section carries code.
func (s CodeSection) HasCode(code string) bool {
	for _, c := range s.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// sectionsOf classifies every section element under root, nested sections
// included, in document order.
func sectionsOf(root *node) []Section {
	elems := root.findAll("section")
	out := make([]Section, 0, len(elems))
	for _, el := range elems {
		out = append(out, classify(el))
	}
	return out
}

func classify(el *node) Section {
	var codes []string
	for _, c := range el.findAll("code") {
		if v := strings.TrimSpace(c.attrs["code"]); v != "" {
			codes = append(codes, v)
		}
	}

	title := textContent(el.find("title"))
	text := el.find("text")

	switch {
	case len(codes) > 0:
		return CodeSection{Codes: codes, Title: title, text: text}
	case title != "":
		return TitledSection{Title: title, text: text}
	default:
		return UntitledSection{text: text}
	}
}
