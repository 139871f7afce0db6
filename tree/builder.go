package tree

import "strings"

// EventType discriminates construction events.
type EventType uint8

const (
	StartTagEvent EventType = iota + 1
	EndTagEvent
	TextEvent
	CommentEvent
	ProcessingInstructionEvent
)

// EventAttr is one attribute reported with a start tag event, or one
// attribute of a tag definition.
type EventAttr struct {
	Name  QName
	Value string
}

// Event is one abstract construction event as produced by a tokenizer. Tag
// name and processing instruction target travel in Name, character data,
// comment and instruction content in Data. Namespace declarations made on a
// start tag are reported separately from its ordinary attributes.
type Event struct {
	Type         EventType
	Name         QName
	Attr         []EventAttr
	Declarations Namespaces
	Data         string
}

// Builder assembles a document from an ordered sequence of construction
// events. It maintains the stack of open tags and reproduces the text
// adjacency invariant while data streams in, so consecutive text events
// become a single merged text node.
type Builder struct {
	document *Document
	stack    []*Node
}

// NewBuilder returns a builder awaiting its first event.
func NewBuilder() *Builder {
	return &Builder{document: &Document{}}
}

// Feed processes one construction event. A returned error is fatal for the
// whole build.
func (b *Builder) Feed(event Event) error {
	switch event.Type {
	case StartTagEvent:
		return b.startTag(event)
	case EndTagEvent:
		return b.endTag(event)
	case TextEvent:
		return b.text(event)
	case CommentEvent:
		return b.envelopeOrChild(NewCommentNode(event.Data).AsNode())
	case ProcessingInstructionEvent:
		return b.envelopeOrChild(
			NewProcessingInstructionNode(event.Name.Local, event.Data).AsNode())
	default:
		return ErrParsing("unknown construction event type %d", event.Type)
	}
}

// Finish validates that the event stream ended in a consistent state and
// returns the assembled document.
func (b *Builder) Finish() (*Document, error) {
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		return nil, ErrParsing("tag %q was left unclosed", top.name.String())
	}
	if b.document.root == nil {
		return nil, ErrParsing("the stream contained no root node")
	}
	return b.document, nil
}

func (b *Builder) startTag(event Event) error {
	if len(b.stack) == 0 && b.document.root != nil {
		return ErrParsing("a document can only have one root node, got a second %q",
			event.Name.String())
	}
	tag := NewTagNodeNS(event.Name.Namespace, event.Name.Local)
	for _, attr := range event.Attr {
		tag.Attributes().SetName(attr.Name, attr.Value)
	}
	if len(event.Declarations) > 0 {
		tag.declarations = make(Namespaces, len(event.Declarations))
		for prefix, uri := range event.Declarations {
			tag.declarations[prefix] = uri
		}
	}
	node := tag.AsNode()
	if len(b.stack) == 0 {
		node.document = b.document
		b.document.root = node
	} else {
		top := b.stack[len(b.stack)-1]
		insertNodes(top, top.lastChild, nil, []*Node{node})
	}
	b.stack = append(b.stack, node)
	return nil
}

func (b *Builder) endTag(event Event) error {
	if len(b.stack) == 0 {
		return ErrParsing("unexpected end of tag %q", event.Name.String())
	}
	top := b.stack[len(b.stack)-1]
	if event.Name != (QName{}) && event.Name != top.name {
		return ErrParsing("end of tag %q does not match the open tag %q",
			event.Name.String(), top.name.String())
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *Builder) text(event Event) error {
	if len(b.stack) == 0 {
		if strings.Trim(event.Data, " \t\r\n") == "" {
			return nil
		}
		return ErrParsing("character data is not allowed outside of the root node")
	}
	top := b.stack[len(b.stack)-1]
	insertNodes(top, top.lastChild, nil, []*Node{NewTextNode(event.Data).AsNode()})
	return nil
}

func (b *Builder) envelopeOrChild(node *Node) error {
	if len(b.stack) == 0 {
		b.document.appendEnvelopeNode(node, b.document.root == nil)
		return nil
	}
	top := b.stack[len(b.stack)-1]
	insertNodes(top, top.lastChild, nil, []*Node{node})
	return nil
}

// TagDefinition describes a tag to be created once its insertion context is
// known. Definitions are accepted wherever node sources are, a tag without
// an explicit namespace inherits the namespace of the nearest tag it is
// inserted into or next to.
type TagDefinition struct {
	name       string
	attributes []EventAttr
	children   []any
}

// Define describes a tag declaratively. The name may be given in Clark
// notation; parts may be attributes created with Attr, plus any node sources
// that become children:
//
//	tree.Define("entry", tree.Attr("n", "1"),
//		tree.Define("term", "lemma"))
func Define(name string, parts ...any) TagDefinition {
	def := TagDefinition{name: name}
	for _, part := range parts {
		if attr, ok := part.(EventAttr); ok {
			def.attributes = append(def.attributes, attr)
			continue
		}
		def.children = append(def.children, part)
	}
	return def
}

// Attr declares an attribute for Define. The name may be given in Clark
// notation.
func Attr(name, value string) EventAttr {
	return EventAttr{Name: ParseClarkName(name), Value: value}
}

// instantiate materializes the definition in the namespace context of the
// anchor node it is being attached to.
func (td TagDefinition) instantiate(anchor *Node) (*Node, error) {
	name := ParseClarkName(td.name)
	if name.Local == "" {
		return nil, ErrInvalidOperation("a tag definition requires a local name")
	}
	if name.Namespace == "" {
		for a := anchor; a != nil; a = a.parent {
			if a.nodeType == TagNode {
				name.Namespace = a.name.Namespace
				break
			}
		}
	}
	tag := NewTagNodeNS(name.Namespace, name.Local)
	for _, attr := range td.attributes {
		tag.Attributes().SetName(attr.Name, attr.Value)
	}
	node := tag.AsNode()
	for _, child := range td.children {
		prepared, err := coerceNodeSource(node, child)
		if err != nil {
			return nil, err
		}
		insertNodes(node, node.lastChild, nil, []*Node{prepared})
	}
	return node, nil
}
