package tree

import "strings"

// ReduceWhitespace reduces insignificant whitespace in the document per the
// TEI community's recommendations: runs of whitespace collapse to a single
// space, spaces at element boundaries are retained only where they separate
// content. Subtrees below a tag with xml:space="preserve" are left untouched
// until a descendant declares xml:space="default" again.
func (d *Document) ReduceWhitespace() {
	d.Root().ReduceWhitespace()
}

// ReduceWhitespace reduces insignificant whitespace in the tag's subtree.
// See Document.ReduceWhitespace.
func (t *Tag) ReduceWhitespace() {
	t.reduceDescendantWhitespace(false)
}

func (t *Tag) reduceDescendantWhitespace(preserve bool) {
	var children []*Node
	for child := t.firstChild; child != nil; child = child.nextSibling {
		children = append(children, child)
	}
	if len(children) == 0 {
		return
	}

	kept := children[:0]
	for _, child := range children {
		if child.nodeType == TextNode && child.data == "" {
			child.unlink()
			continue
		}
		kept = append(kept, child)
	}
	if len(kept) == 0 {
		return
	}

	preserve = t.normalizeSpaceDirective(preserve)
	for _, child := range kept {
		if child.nodeType == TagNode {
			(*Tag)(child).reduceDescendantWhitespace(preserve)
		}
	}
	if preserve {
		return
	}

	first, last := kept[0], kept[len(kept)-1]
	for _, child := range kept {
		if child.nodeType != TextNode {
			continue
		}
		if reduced := reduceWhitespaceContent(child.data, child == first, child == last); reduced != "" {
			child.data = reduced
		} else {
			child.unlink()
		}
	}
}

// normalizeSpaceDirective resolves the tag's xml:space attribute against the
// inherited directive. Values other than "default" and "preserve" are
// ignored.
func (t *Tag) normalizeSpaceDirective(inherited bool) bool {
	attr := t.Attributes().GetName(xmlSpaceName)
	if attr == nil {
		return inherited
	}
	switch attr.value {
	case "preserve":
		return true
	case "default":
		return false
	}
	return inherited
}

// reduceWhitespaceContent collapses whitespace runs in a text node's content
// and decides which boundary spaces survive, depending on the node's
// position among its siblings.
func reduceWhitespaceContent(content string, isFirst, isLast bool) string {
	collapsed := crunchWhitespace(content)
	stripped := strings.Trim(collapsed, " ")
	hasContent := stripped != ""
	trailingSpace := strings.HasSuffix(collapsed, " ")

	result := stripped
	// Retain one leading space if the node isn't first, has non-space
	// content and had leading space.
	if !isFirst && hasContent && strings.HasPrefix(collapsed, " ") {
		result = " " + stripped
	}

	// Retain one trailing space
	// … if the node is neither first nor last and had trailing space,
	// … if the node is first but not last, had trailing space and has
	//   non-space content,
	// … if the node is an only child and consists of space only.
	switch {
	case !isLast && !isFirst && trailingSpace:
		result += " "
	case !isLast && isFirst && trailingSpace && hasContent:
		result += " "
	case isFirst && isLast && !hasContent:
		result += " "
	}
	return result
}

// crunchWhitespace collapses every run of XML whitespace characters into a
// single space.
func crunchWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n':
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
		default:
			b.WriteRune(r)
			inRun = false
		}
	}
	return b.String()
}
