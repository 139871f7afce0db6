// Package parser reads XML byte streams into vellum documents. It wraps the
// standard library's namespace-resolving decoder, translating its tokens
// into the construction events the tree builder consumes. Input encodings
// other than UTF-8 are decoded by their declared or detected charset.
package parser

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"encoding/xml"

	"golang.org/x/net/html/charset"

	"github.com/chrisuehlinger/vellum/tree"
)

// Options adjust what ends up in the parsed document. The zero value keeps
// everything the input contains.
type Options struct {
	// ReduceWhitespace normalizes insignificant whitespace in the parsed
	// document, see tree.Document.ReduceWhitespace.
	ReduceWhitespace bool

	// RemoveComments drops all comments.
	RemoveComments bool

	// RemoveProcessingInstructions drops all processing instructions.
	RemoveProcessingInstructions bool
}

// Parse reads one complete XML document from r. Malformed input is reported
// as a *tree.ParsingError; a failed parse never returns partial structure.
func Parse(r io.Reader, opts *Options) (*tree.Document, error) {
	if opts == nil {
		opts = &Options{}
	}
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	builder := tree.NewBuilder()
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, tree.ErrParsing("%s", err)
		}
		event, ok := translateToken(token, opts)
		if !ok {
			continue
		}
		if err := builder.Feed(event); err != nil {
			return nil, err
		}
	}

	document, err := builder.Finish()
	if err != nil {
		return nil, err
	}
	if opts.ReduceWhitespace {
		document.ReduceWhitespace()
	}
	return document, nil
}

// ParseString parses a document held in a string.
func ParseString(document string, opts *Options) (*tree.Document, error) {
	return Parse(strings.NewReader(document), opts)
}

// ParseBytes parses a document held in a byte slice.
func ParseBytes(document []byte, opts *Options) (*tree.Document, error) {
	return Parse(bytes.NewReader(document), opts)
}

// translateToken maps one decoder token to a construction event. The second
// return value is false for tokens that produce none: the XML declaration,
// doctype directives and anything the options exclude.
func translateToken(token xml.Token, opts *Options) (tree.Event, bool) {
	switch t := token.(type) {
	case xml.StartElement:
		return startTagEvent(t), true
	case xml.EndElement:
		return tree.Event{
			Type: tree.EndTagEvent,
			Name: tree.NameNS(t.Name.Space, t.Name.Local),
		}, true
	case xml.CharData:
		return tree.Event{Type: tree.TextEvent, Data: string(t)}, true
	case xml.Comment:
		if opts.RemoveComments {
			return tree.Event{}, false
		}
		return tree.Event{Type: tree.CommentEvent, Data: string(t)}, true
	case xml.ProcInst:
		// The XML declaration surfaces as a processing instruction with the
		// reserved target.
		if t.Target == "xml" || opts.RemoveProcessingInstructions {
			return tree.Event{}, false
		}
		return tree.Event{
			Type: tree.ProcessingInstructionEvent,
			Name: tree.Name(t.Target),
			Data: string(t.Inst),
		}, true
	}
	return tree.Event{}, false
}

// startTagEvent splits a start element's attribute list into namespace
// declarations and ordinary attributes. The decoder has already resolved
// prefixes of tag and attribute names into namespace URIs.
func startTagEvent(t xml.StartElement) tree.Event {
	event := tree.Event{
		Type: tree.StartTagEvent,
		Name: tree.NameNS(t.Name.Space, t.Name.Local),
	}
	for _, attr := range t.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			if event.Declarations == nil {
				event.Declarations = tree.Namespaces{}
			}
			event.Declarations[attr.Name.Local] = attr.Value
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			if event.Declarations == nil {
				event.Declarations = tree.Namespaces{}
			}
			event.Declarations[""] = attr.Value
		default:
			event.Attr = append(event.Attr, tree.EventAttr{
				Name:  tree.NameNS(attr.Name.Space, attr.Name.Local),
				Value: attr.Value,
			})
		}
	}
	return event
}
