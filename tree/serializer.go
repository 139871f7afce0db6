package tree

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// SerializationOptions control how trees are rendered. The zero value
// produces a raw dump: document order, no inserted whitespace, UTF-8.
type SerializationOptions struct {
	// Encoding names the target character encoding of WriteTo and Save,
	// defaulting to UTF-8. Characters the encoding cannot represent are
	// emitted as numeric character references. String-producing
	// serializations ignore it.
	Encoding string

	// Indentation enables indented output when non-empty. It must consist
	// of whitespace only. Tags with text content are kept on one line so
	// that no whitespace is introduced into character data.
	Indentation string

	// TextWidth enables width-constrained wrapping when positive: text and
	// inline content is flowed greedily into lines of at most this many
	// code points, excluding the indentation.
	TextWidth int

	// Newline is the line separator for indented and wrapped output, "\n"
	// unless set. It must be one of "\n", "\r" or "\r\n".
	Newline string

	// AlignAttributes renders each attribute on its own line with the
	// equality signs vertically aligned.
	AlignAttributes bool

	// Namespaces maps preferred prefixes to namespaces. These take
	// precedence over declarations found in the tree when the serializer
	// consolidates declarations onto the outermost serialized tag.
	Namespaces Namespaces
}

func (o SerializationOptions) validate() error {
	if strings.Trim(o.Indentation, " \t") != "" {
		return ErrInvalidOperation("indentation must only contain spaces or tabs")
	}
	switch o.Newline {
	case "", "\n", "\r", "\r\n":
	default:
		return ErrInvalidOperation("newline must be one of \\n, \\r or \\r\\n")
	}
	if o.TextWidth < 0 {
		return ErrInvalidOperation("the text width must not be negative")
	}
	return nil
}

func (o SerializationOptions) newline() string {
	if o.Newline == "" {
		return "\n"
	}
	return o.Newline
}

func (o SerializationOptions) encodingLabel() string {
	if o.Encoding == "" {
		return "UTF-8"
	}
	return o.Encoding
}

// String returns the serialized document without an XML declaration.
func (d *Document) String() string {
	s, _ := newSerializer(d.root, SerializationOptions{})
	s.writeEnvelope(d, false)
	return s.b.String()
}

// Serialize returns the serialized document: the XML declaration, prologue,
// root subtree and epilogue, in that order. The result is a Go string and
// therefore UTF-8; Encoding only affects the declaration's label here, use
// WriteTo or Save for encoded output.
func (d *Document) Serialize(opts SerializationOptions) (string, error) {
	s, err := newSerializer(d.root, opts)
	if err != nil {
		return "", err
	}
	s.writeEnvelope(d, true)
	return s.b.String(), nil
}

// WriteTo serializes the document to w in the configured encoding, starting
// with an XML declaration.
func (d *Document) WriteTo(w io.Writer, opts SerializationOptions) error {
	result, err := d.Serialize(opts)
	if err != nil {
		return err
	}
	return encodeTo(w, result, opts.Encoding)
}

// Save serializes the document into a file. See WriteTo.
func (d *Document) Save(filename string, opts SerializationOptions) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := d.WriteTo(f, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Serialize returns the serialized subtree of the tag, without an XML
// declaration.
func (t *Tag) Serialize(opts SerializationOptions) (string, error) {
	s, err := newSerializer(t.AsNode(), opts)
	if err != nil {
		return "", err
	}
	s.writeTop(t.AsNode())
	return s.b.String(), nil
}

// String returns the node's subtree serialized as markup; text nodes render
// as their escaped content.
func (n *Node) String() string {
	s, _ := newSerializer(n, SerializationOptions{})
	s.writeTop(n)
	return s.b.String()
}

func (t *Tag) String() string  { return t.AsNode().String() }
func (x *Text) String() string { return x.AsNode().String() }
func (c *Comment) String() string {
	return c.AsNode().String()
}
func (p *ProcessingInstruction) String() string {
	return p.AsNode().String()
}

// encodeTo writes s into w transformed to the named encoding. Unsupported
// characters become numeric character references.
func encodeTo(w io.Writer, s, encodingName string) error {
	if encodingName == "" || strings.EqualFold(encodingName, "utf-8") {
		_, err := io.WriteString(w, s)
		return err
	}
	enc, err := ianaindex.IANA.Encoding(encodingName)
	if err != nil || enc == nil {
		return ErrInvalidOperation("unknown encoding %q", encodingName)
	}
	tw := transform.NewWriter(w, encoding.HTMLEscapeUnsupported(enc.NewEncoder()))
	if _, err := io.WriteString(tw, s); err != nil {
		return err
	}
	return tw.Close()
}

// serializer renders one tree. Namespace declarations are consolidated: the
// namespaces used anywhere in the subtree get their prefixes assigned once
// and declared on the outermost serialized tag.
type serializer struct {
	b    strings.Builder
	opts SerializationOptions
	nl   string

	// prefixes maps a namespace to its assigned prefix; attrPrefixes holds
	// the non-empty prefixes required for qualified attributes.
	prefixes     map[string]string
	attrPrefixes map[string]string
	declarations [][2]string
}

func newSerializer(top *Node, opts SerializationOptions) (*serializer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s := &serializer{opts: opts, nl: opts.newline()}
	s.consolidateNamespaces(top)
	return s, nil
}

// writeEnvelope renders a whole document.
func (s *serializer) writeEnvelope(d *Document, withDeclaration bool) {
	pretty := s.opts.Indentation != "" || s.opts.TextWidth > 0
	if withDeclaration {
		s.b.WriteString(`<?xml version="1.0" encoding="` + s.opts.encodingLabel() + `"?>`)
		s.b.WriteString(s.nl)
	}
	for _, node := range d.prologue {
		s.writeInline(node)
		s.b.WriteString(s.nl)
	}
	s.writeTop(d.root)
	for _, node := range d.epilogue {
		if !pretty {
			s.b.WriteString(s.nl)
		}
		s.writeInline(node)
		if pretty {
			s.b.WriteString(s.nl)
		}
	}
}

// writeTop renders the outermost node of a serialization, dispatching on the
// configured formatting mode.
func (s *serializer) writeTop(n *Node) {
	if n.nodeType != TagNode {
		s.writeInline(n)
		return
	}
	switch {
	case s.opts.TextWidth > 0:
		s.writeWrapped(n, 0)
	case s.opts.Indentation != "":
		s.writePretty(n, 0)
	default:
		s.writeTag(n, true)
	}
}

// Raw rendering

// writeInline renders a node and its subtree without inserting whitespace.
func (s *serializer) writeInline(n *Node) {
	switch n.nodeType {
	case TagNode:
		s.writeTag(n, false)
	case TextNode:
		s.b.WriteString(escapeText(n.data))
	case CommentNode:
		s.b.WriteString("<!--" + n.data + "-->")
	case ProcessingInstructionNode:
		s.writeProcessingInstruction(n)
	}
}

func (s *serializer) writeProcessingInstruction(n *Node) {
	s.b.WriteString("<?" + n.name.Local)
	if n.data != "" {
		s.b.WriteString(" " + n.data)
	}
	s.b.WriteString("?>")
}

func (s *serializer) writeTag(n *Node, withDeclarations bool) {
	if n.firstChild == nil {
		s.writeOpenTag(n, withDeclarations, true, -1)
		return
	}
	s.writeOpenTag(n, withDeclarations, false, -1)
	for child := n.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == TagNode {
			s.writeTag(child, false)
		} else {
			s.writeInline(child)
		}
	}
	s.writeCloseTag(n)
}

// writeOpenTag renders an opening tag with its attributes and, on the
// outermost tag, the consolidated namespace declarations. A non-negative
// level activates attribute alignment at that indentation depth.
func (s *serializer) writeOpenTag(n *Node, withDeclarations, selfClosing bool, level int) {
	type pair struct{ key, value string }
	var pairs []pair
	if withDeclarations {
		for _, decl := range s.declarations {
			key := "xmlns"
			if decl[0] != "" {
				key = "xmlns:" + decl[0]
			}
			pairs = append(pairs, pair{key, decl[1]})
		}
	}
	if n.attributes != nil {
		for _, attr := range n.attributes.entries {
			pairs = append(pairs, pair{s.attributeName(attr.name), attr.value})
		}
	}

	s.b.WriteString("<" + s.tagName(n))
	if s.opts.AlignAttributes && level >= 0 && len(pairs) > 1 {
		keyWidth := 0
		for _, p := range pairs {
			if w := utf8.RuneCountInString(p.key); w > keyWidth {
				keyWidth = w
			}
		}
		lead := strings.Repeat(s.opts.Indentation, level) + " " + s.opts.Indentation
		for _, p := range pairs {
			s.b.WriteString(s.nl + lead)
			s.b.WriteString(strings.Repeat(" ", keyWidth-utf8.RuneCountInString(p.key)))
			s.b.WriteString(p.key + `="` + escapeAttribute(p.value) + `"`)
		}
	} else {
		for _, p := range pairs {
			s.b.WriteString(" " + p.key + `="` + escapeAttribute(p.value) + `"`)
		}
	}
	if selfClosing {
		s.b.WriteString("/>")
	} else {
		s.b.WriteString(">")
	}
}

func (s *serializer) writeCloseTag(n *Node) {
	s.b.WriteString("</" + s.tagName(n) + ">")
}

// Indented rendering

// writePretty renders a tag in block layout. Tags with text content and
// subtrees under xml:space="preserve" render inline so that character data
// is never altered.
func (s *serializer) writePretty(n *Node, level int) {
	indent := strings.Repeat(s.opts.Indentation, level)
	declare := level == 0
	if s.renderWholeTagInline(n) {
		s.b.WriteString(indent)
		s.writeTag(n, declare)
		s.b.WriteString(s.nl)
		return
	}
	if n.firstChild == nil {
		s.b.WriteString(indent)
		s.writeOpenTag(n, declare, true, level)
		s.b.WriteString(s.nl)
		return
	}
	s.b.WriteString(indent)
	s.writeOpenTag(n, declare, false, level)
	s.b.WriteString(s.nl)
	for child := n.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == TagNode {
			s.writePretty(child, level+1)
		} else {
			s.b.WriteString(indent + s.opts.Indentation)
			s.writeInline(child)
			s.b.WriteString(s.nl)
		}
	}
	s.b.WriteString(indent)
	s.writeCloseTag(n)
	s.b.WriteString(s.nl)
}

func (s *serializer) renderWholeTagInline(n *Node) bool {
	if (*Tag)(n).normalizeSpaceDirective(false) {
		return true
	}
	for child := n.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == TextNode {
			return true
		}
	}
	return false
}

// Width-constrained rendering

// writeWrapped renders a tag in block layout, flowing mixed content
// greedily into lines of at most TextWidth code points.
func (s *serializer) writeWrapped(n *Node, level int) {
	indent := strings.Repeat(s.opts.Indentation, level)
	declare := level == 0
	if (*Tag)(n).normalizeSpaceDirective(false) {
		s.b.WriteString(indent)
		s.writeTag(n, declare)
		s.b.WriteString(s.nl)
		return
	}
	if n.firstChild == nil {
		s.b.WriteString(indent)
		s.writeOpenTag(n, declare, true, level)
		s.b.WriteString(s.nl)
		return
	}
	hasText := false
	for child := n.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == TextNode {
			hasText = true
			break
		}
	}
	s.b.WriteString(indent)
	s.writeOpenTag(n, declare, false, level)
	s.b.WriteString(s.nl)
	if hasText {
		s.flowChildren(n, level+1)
	} else {
		for child := n.firstChild; child != nil; child = child.nextSibling {
			if child.nodeType == TagNode {
				s.writeWrapped(child, level+1)
			} else {
				s.b.WriteString(indent + s.opts.Indentation)
				s.writeInline(child)
				s.b.WriteString(s.nl)
			}
		}
	}
	s.b.WriteString(indent)
	s.writeCloseTag(n)
	s.b.WriteString(s.nl)
}

// flowChildren lays out mixed content as a greedy word flow. Tokens are
// words of collapsed text and inline renderings of non-text children; runs
// that are not separated by whitespace are never broken apart.
func (s *serializer) flowChildren(n *Node, level int) {
	var tokens []string
	glued := false
	addToken := func(text string, glue bool) {
		if glue && glued && len(tokens) > 0 {
			tokens[len(tokens)-1] += text
			return
		}
		tokens = append(tokens, text)
	}
	for child := n.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType != TextNode {
			sub := serializer{opts: s.opts, nl: s.nl,
				prefixes: s.prefixes, attrPrefixes: s.attrPrefixes}
			sub.writeInline(child)
			addToken(sub.b.String(), true)
			glued = true
			continue
		}
		collapsed := crunchWhitespace(child.data)
		words := strings.Fields(collapsed)
		for i, word := range words {
			addToken(escapeText(word), i == 0 && !strings.HasPrefix(collapsed, " "))
		}
		glued = len(words) > 0 && !strings.HasSuffix(collapsed, " ")
	}

	indent := strings.Repeat(s.opts.Indentation, level)
	lineLen := 0
	for _, token := range tokens {
		width := utf8.RuneCountInString(token)
		switch {
		case lineLen == 0:
			s.b.WriteString(indent + token)
			lineLen = width
		case lineLen+1+width <= s.opts.TextWidth:
			s.b.WriteString(" " + token)
			lineLen += 1 + width
		default:
			s.b.WriteString(s.nl + indent + token)
			lineLen = width
		}
	}
	if lineLen > 0 {
		s.b.WriteString(s.nl)
	}
}

// Namespace consolidation

// consolidateNamespaces assigns a prefix to every namespace used by tags and
// attributes in the subtree of top. Prefixes are taken from the options'
// overrides first, then from declarations in scope and below, and finally
// generated. The resulting declarations all land on the outermost tag.
func (s *serializer) consolidateNamespaces(top *Node) {
	s.prefixes = map[string]string{}
	s.attrPrefixes = map[string]string{}
	if top == nil || top.nodeType != TagNode {
		return
	}

	usedByTags := map[string]bool{}
	usedByAttrs := map[string]bool{}
	var candidates [][2]string
	collect := func(n *Node) {
		if n.nodeType != TagNode {
			return
		}
		usedByTags[n.name.Namespace] = true
		if n.attributes != nil {
			for _, attr := range n.attributes.entries {
				if ns := attr.name.Namespace; ns != "" && ns != XMLNamespace {
					usedByAttrs[ns] = true
				}
			}
		}
		for _, prefix := range sortedKeys(n.declarations) {
			candidates = append(candidates, [2]string{prefix, n.declarations[prefix]})
		}
	}
	for node := top; node != nil; node = node.parent {
		// in-scope declarations of ancestors count as candidates too, the
		// nearest declaration wins
		if node != top {
			for _, prefix := range sortedKeys(node.declarations) {
				candidates = append(candidates, [2]string{prefix, node.declarations[prefix]})
			}
			continue
		}
		collect(node)
	}
	top.walkSubtree(collect)

	taken := map[string]bool{"xml": true, "xmlns": true}
	assign := func(prefix, uri string) {
		if uri == "" || uri == XMLNamespace || uri == XMLNSNamespace {
			return
		}
		if !usedByTags[uri] && !usedByAttrs[uri] {
			return
		}
		if taken[prefix] {
			return
		}
		if _, done := s.prefixes[uri]; done {
			return
		}
		if prefix == "" && usedByTags[""] {
			// a default declaration would capture unqualified tags
			return
		}
		s.prefixes[uri] = prefix
		taken[prefix] = true
		s.declarations = append(s.declarations, [2]string{prefix, uri})
	}

	for _, prefix := range sortedKeys(s.opts.Namespaces) {
		assign(prefix, s.opts.Namespaces[prefix])
	}
	for _, candidate := range candidates {
		assign(candidate[0], candidate[1])
	}

	generated := 0
	nextPrefix := func() string {
		for {
			prefix := "ns" + strconv.Itoa(generated)
			generated++
			if !taken[prefix] {
				return prefix
			}
		}
	}
	if _, ok := s.prefixes[top.name.Namespace]; !ok && top.name.Namespace != "" &&
		top.name.Namespace != XMLNamespace {
		assign("", top.name.Namespace)
	}
	for _, uri := range sortedBoolKeys(usedByTags) {
		if uri == "" || uri == XMLNamespace {
			continue
		}
		if _, ok := s.prefixes[uri]; !ok {
			assign(nextPrefix(), uri)
		}
	}
	for _, uri := range sortedBoolKeys(usedByAttrs) {
		if prefix, ok := s.prefixes[uri]; ok && prefix != "" {
			s.attrPrefixes[uri] = prefix
			continue
		}
		prefix := nextPrefix()
		s.attrPrefixes[uri] = prefix
		taken[prefix] = true
		s.declarations = append(s.declarations, [2]string{prefix, uri})
	}

	sort.Slice(s.declarations, func(i, j int) bool {
		return s.declarations[i][0] < s.declarations[j][0]
	})
}

func (s *serializer) tagName(n *Node) string {
	ns := n.name.Namespace
	if ns == "" {
		return n.name.Local
	}
	if ns == XMLNamespace {
		return "xml:" + n.name.Local
	}
	if prefix, ok := s.prefixes[ns]; ok && prefix != "" {
		return prefix + ":" + n.name.Local
	}
	return n.name.Local
}

func (s *serializer) attributeName(name QName) string {
	switch name.Namespace {
	case "":
		return name.Local
	case XMLNamespace:
		return "xml:" + name.Local
	}
	if prefix, ok := s.attrPrefixes[name.Namespace]; ok {
		return prefix + ":" + name.Local
	}
	return name.Local
}

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttribute(s string) string {
	return attributeEscaper.Replace(s)
}

var (
	textEscaper      = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attributeEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
