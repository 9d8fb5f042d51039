package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var errNoRootElement = errors.New("document has no root element")

// node is an element or character data in a parsed SPL document.
// Element names are namespace-local.
type node struct {
	name     string
	attrs    map[string]string
	children []*node
	text     string
	isText   bool
}

// parseDocument decodes an XML document into a node tree rooted at a
// synthetic container node.
func parseDocument(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	root := &node{}
	stack := []*node{root}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		parent := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			parent.children = append(parent.children, &node{text: string(t), isText: true})
		}
	}

	for _, c := range root.children {
		if !c.isText {
			return root, nil
		}
	}
	return nil, errNoRootElement
}

// findAll returns every descendant element named name, in document order.
func (n *node) findAll(name string) []*node {
	var out []*node
	n.walk(func(d *node) {
		if d.name == name {
			out = append(out, d)
		}
	})
	return out
}

// find returns the first descendant element named name, or nil.
func (n *node) find(name string) *node {
	for _, c := range n.children {
		if c.isText {
			continue
		}
		if c.name == name {
			return c
		}
		if d := c.find(name); d != nil {
			return d
		}
	}
	return nil
}

// walk visits every descendant element depth first, in document order.
func (n *node) walk(fn func(*node)) {
	for _, c := range n.children {
		if c.isText {
			continue
		}
		fn(c)
		c.walk(fn)
	}
}

// strings returns every descendant text run, in document order.
func (n *node) strings() []string {
	var out []string
	for _, c := range n.children {
		if c.isText {
			out = append(out, c.text)
			continue
		}
		out = append(out, c.strings()...)
	}
	return out
}

// singleString returns the node's text when it holds exactly one string,
// directly or through a chain of single children.
func (n *node) singleString() (string, bool) {
	if n.isText {
		return n.text, true
	}
	if len(n.children) != 1 {
		return "", false
	}
	return n.children[0].singleString()
}

// textContent returns the text of an element's direct children. A content
// child contributes all of its text; any other child contributes only when
// it holds a single string. Pieces are joined with single spaces.
func textContent(n *node) string {
	return childText(n, nil)
}

// blockElements are extracted on their own and left out of residual text.
var blockElements = map[string]bool{"paragraph": true, "list": true, "table": true}

// residualText is textContent without the children that are extracted as
// paragraphs, lists or tables.
func residualText(n *node) string {
	return childText(n, blockElements)
}

func childText(n *node, skip map[string]bool) string {
	if n == nil {
		return ""
	}
	var pieces []string
	for _, c := range n.children {
		if !c.isText && skip[c.name] {
			continue
		}
		if !c.isText && c.name == "content" {
			pieces = append(pieces, c.strings()...)
			continue
		}
		if s, ok := c.singleString(); ok {
			pieces = append(pieces, s)
		}
	}
	return collapseSpace(strings.Join(pieces, " "))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
