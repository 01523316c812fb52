package xml

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
)

// This package turns CFDI XML into the attribute-tagged raw tree the schema
// layer consumes: attributes keyed as "@Name", child elements keyed by their
// full tag, repeated tags collected into sequences, and text-only elements
// collapsed to strings. Elements that carry both attributes and text keep the
// text under "#text".

// ReadInvoice parses CFDI XML bytes into a typed document.
func ReadInvoice(data []byte) (cfdi.Document, error) {
	raw, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return cfdi.Parse(cfdi.Normalize(raw))
}

// ReadInvoiceFrom parses CFDI XML from a stream.
func ReadInvoiceFrom(r io.Reader) (cfdi.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read XML: %w", err)
	}
	return ReadInvoice(data)
}

// Decode builds the raw tree from XML bytes without normalizing or
// validating it.
func Decode(data []byte) (cfdi.Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty XML document")
	}
	return cfdi.Node{root.FullTag(): elementValue(root)}, nil
}

func elementValue(elem *etree.Element) interface{} {
	children := elem.ChildElements()
	text := strings.TrimSpace(elem.Text())

	if len(elem.Attr) == 0 && len(children) == 0 {
		return text
	}

	node := make(cfdi.Node, len(elem.Attr)+len(children))
	for _, a := range elem.Attr {
		node["@"+a.FullKey()] = a.Value
	}
	for _, child := range children {
		key := child.FullTag()
		value := elementValue(child)
		switch existing := node[key].(type) {
		case nil:
			node[key] = value
		case []interface{}:
			node[key] = append(existing, value)
		default:
			// second occurrence of a repeated tag
			node[key] = []interface{}{existing, value}
		}
	}
	if text != "" {
		node["#text"] = text
	}
	return node
}
