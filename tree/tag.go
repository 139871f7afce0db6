package tree

import "strconv"

// Tag is the view of a node that represents an element. It shares its
// storage with the underlying Node.
type Tag Node

// AsNode returns the underlying node.
func (t *Tag) AsNode() *Node { return (*Node)(t) }

// Name returns the tag's qualified name.
func (t *Tag) Name() QName { return t.name }

// LocalName returns the tag's local name.
func (t *Tag) LocalName() string { return t.name.Local }

// SetLocalName changes the tag's local name.
func (t *Tag) SetLocalName(local string) { t.name.Local = local }

// Namespace returns the tag's namespace, the empty string for tags that are
// in no namespace.
func (t *Tag) Namespace() string { return t.name.Namespace }

// SetNamespace changes the tag's namespace.
func (t *Tag) SetNamespace(namespace string) { t.name.Namespace = namespace }

// UniversalName returns the tag's name in Clark notation.
func (t *Tag) UniversalName() string { return t.name.String() }

// Prefix returns the prefix the tag's namespace is bound to in its scope.
// The second return value is false when the namespace is undeclared.
func (t *Tag) Prefix() (string, bool) {
	if t.name.Namespace == "" {
		return "", true
	}
	for node := t.AsNode(); node != nil; node = node.parent {
		for prefix, uri := range node.declarations {
			if uri == t.name.Namespace {
				return prefix, true
			}
		}
	}
	switch t.name.Namespace {
	case XMLNamespace:
		return "xml", true
	case XMLNSNamespace:
		return "xmlns", true
	}
	return "", false
}

// Attributes returns the tag's attribute collection.
func (t *Tag) Attributes() *Attributes {
	if t.attributes == nil {
		t.attributes = &Attributes{owner: t.AsNode()}
	}
	return t.attributes
}

// ID returns the value of the tag's xml:id attribute, or the empty string.
func (t *Tag) ID() string {
	if attr := t.Attributes().GetName(xmlIDName); attr != nil {
		return attr.value
	}
	return ""
}

// SetID sets the tag's xml:id attribute. An empty value removes the
// attribute. Setting an identifier that is already used elsewhere in the
// tag's tree is an invalid operation.
func (t *Tag) SetID(value string) error {
	if value == "" {
		t.Attributes().DeleteName(xmlIDName)
		return nil
	}
	root := t.AsNode()
	for root.parent != nil {
		root = root.parent
	}
	conflict := false
	check := func(node *Node) {
		if node == t.AsNode() || node.nodeType != TagNode {
			return
		}
		if attr := (*Tag)(node).Attributes().GetName(xmlIDName); attr != nil && attr.value == value {
			conflict = true
		}
	}
	check(root)
	root.walkSubtree(check)
	if conflict {
		return ErrInvalidOperation("the id %q is already used in the tree", value)
	}
	t.Attributes().SetName(xmlIDName, value)
	return nil
}

// Declarations returns the namespace declarations made on this tag itself.
// The result may be nil; in-scope lookups should use Namespaces.
func (t *Tag) Declarations() Namespaces { return t.declarations }

// Declare binds a prefix to a namespace on this tag. The empty prefix
// declares the default namespace.
func (t *Tag) Declare(prefix, namespace string) {
	if t.declarations == nil {
		t.declarations = Namespaces{}
	}
	t.declarations[prefix] = namespace
}

// Namespaces returns all namespace declarations that are in scope for this
// tag. Declarations on nearer ancestors shadow farther ones.
func (t *Tag) Namespaces() Namespaces {
	result := Namespaces{}
	var collect func(node *Node)
	collect = func(node *Node) {
		if node == nil {
			return
		}
		collect(node.parent)
		for prefix, uri := range node.declarations {
			result[prefix] = uri
		}
	}
	collect(t.AsNode())
	return result
}

// CountChildren returns the number of children that pass the default filters
// and all given filters.
func (t *Tag) CountChildren(filters ...Filter) int {
	count := 0
	for child := t.firstChild; child != nil; child = child.nextSibling {
		if child.passes(filters) {
			count++
		}
	}
	return count
}

// Child returns the child at the given position, counting only children that
// pass the default filters and all given filters. It returns nil when the
// position is out of range.
func (t *Tag) Child(index int, filters ...Filter) *Node {
	if index < 0 {
		return nil
	}
	for child := t.firstChild; child != nil; child = child.nextSibling {
		if !child.passes(filters) {
			continue
		}
		if index == 0 {
			return child
		}
		index--
	}
	return nil
}

// InsertChildren inserts nodes at the given position among the children that
// pass the default filters. Positions outside [0, CountChildren()] are an
// invalid operation; on failure the tree is unmodified.
func (t *Tag) InsertChildren(index int, nodes ...any) error {
	if index < 0 {
		return ErrInvalidOperation("child index must not be negative")
	}
	count := t.CountChildren()
	if index > count {
		return ErrInvalidOperation("child index %d is out of range", index)
	}
	if index == count {
		return t.AppendChildren(nodes...)
	}
	return t.Child(index).AddPrecedingSiblings(nodes...)
}

// AppendChildren adds nodes after the last child that passes the default
// filters.
func (t *Tag) AppendChildren(nodes ...any) error {
	if len(nodes) == 0 {
		return nil
	}
	n := t.AsNode()
	if last := n.LastChild(); last != nil {
		return last.AddFollowingSiblings(nodes...)
	}
	prepared, err := n.prepareNodeSources(nodes)
	if err != nil {
		return err
	}
	insertNodes(n, nil, n.firstChild, prepared)
	return nil
}

// PrependChildren inserts nodes before the first child that passes the
// default filters.
func (t *Tag) PrependChildren(nodes ...any) error {
	return t.InsertChildren(0, nodes...)
}

// NewTagNode creates a detached tag node that shares this tag's namespace.
func (t *Tag) NewTagNode(localName string) *Tag {
	return NewTagNodeNS(t.name.Namespace, localName)
}

// FullText returns the concatenated content of all text nodes below the tag,
// regardless of any active filters.
func (t *Tag) FullText() string { return t.AsNode().FullText() }

// MergeTextNodes merges adjacent text nodes and drops empty ones throughout
// the tag's subtree. The mutation operations maintain the text adjacency
// invariant on their own; this repairs trees that were manipulated through
// lower-level means.
func (t *Tag) MergeTextNodes() {
	child := t.firstChild
	for child != nil {
		if child.nodeType == TagNode {
			(*Tag)(child).MergeTextNodes()
			child = child.nextSibling
			continue
		}
		if child.nodeType != TextNode {
			child = child.nextSibling
			continue
		}
		if child.data == "" {
			next := child.nextSibling
			child.unlink()
			child = next
			continue
		}
		if next := child.nextSibling; next != nil && next.nodeType == TextNode {
			child.data += next.data
			next.unlink()
			continue
		}
		child = child.nextSibling
	}
}

// LocationPath returns an unambiguous XPath location path that addresses
// this tag from its tree's root, e.g. "/*/*[3]". The steps use wildcard name
// tests so the path stays valid regardless of namespace declarations.
func (t *Tag) LocationPath() string {
	var steps []string
	node := t.AsNode()
	for node.parent != nil {
		index := 1
		for sibling := node.prevSibling; sibling != nil; sibling = sibling.prevSibling {
			if sibling.nodeType == TagNode {
				index++
			}
		}
		steps = append(steps, "/*["+strconv.Itoa(index)+"]")
		node = node.parent
	}
	path := "/*"
	for i := len(steps) - 1; i >= 0; i-- {
		path += steps[i]
	}
	return path
}
