package tree

// Node is the fundamental unit of a document tree. Its variant is reported
// by NodeType; the typed views Tag, Text, Comment and ProcessingInstruction
// are defined types over Node and share its storage.
//
// Nodes are exclusively owned by their parent. A node participates in at
// most one tree at a time; detached nodes are roots of their own subtree.
// Trees are not safe for concurrent mutation, callers serialize access.
type Node struct {
	nodeType NodeType

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// name holds a tag's qualified name; for processing instructions the
	// target is kept in name.Local.
	name         QName
	attributes   *Attributes
	declarations Namespaces
	data         string

	// document is set on a document's root tag and on nodes held in a
	// document's prologue or epilogue.
	document *Document
}

// NodeType returns the variant of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// Tag returns the node as a Tag view, or nil if it is not a tag node.
func (n *Node) Tag() *Tag {
	if n == nil || n.nodeType != TagNode {
		return nil
	}
	return (*Tag)(n)
}

// Text returns the node as a Text view, or nil if it is not a text node.
func (n *Node) Text() *Text {
	if n == nil || n.nodeType != TextNode {
		return nil
	}
	return (*Text)(n)
}

// Comment returns the node as a Comment view, or nil if it is not a comment.
func (n *Node) Comment() *Comment {
	if n == nil || n.nodeType != CommentNode {
		return nil
	}
	return (*Comment)(n)
}

// ProcessingInstruction returns the node as a ProcessingInstruction view, or
// nil if it is not a processing instruction.
func (n *Node) ProcessingInstruction() *ProcessingInstruction {
	if n == nil || n.nodeType != ProcessingInstructionNode {
		return nil
	}
	return (*ProcessingInstruction)(n)
}

// Node constructors. All nodes start out detached.

// NewTagNode creates a detached tag node without a namespace.
func NewTagNode(localName string) *Tag {
	return NewTagNodeNS("", localName)
}

// NewTagNodeNS creates a detached tag node in the given namespace.
func NewTagNodeNS(namespace, localName string) *Tag {
	n := &Node{
		nodeType: TagNode,
		name:     QName{Namespace: namespace, Local: localName},
	}
	n.attributes = &Attributes{owner: n}
	return (*Tag)(n)
}

// NewTextNode creates a detached text node.
func NewTextNode(content string) *Text {
	return (*Text)(&Node{nodeType: TextNode, data: content})
}

// NewCommentNode creates a detached comment node.
func NewCommentNode(content string) *Comment {
	return (*Comment)(&Node{nodeType: CommentNode, data: content})
}

// NewProcessingInstructionNode creates a detached processing instruction
// node with the given target.
func NewProcessingInstructionNode(target, content string) *ProcessingInstruction {
	return (*ProcessingInstruction)(&Node{
		nodeType: ProcessingInstructionNode,
		name:     QName{Local: target},
		data:     content,
	})
}

// Navigation

// Parent returns the node's parent tag, or nil for roots, detached nodes and
// nodes held in a document's prologue or epilogue.
func (n *Node) Parent() *Tag {
	if n.parent == nil {
		return nil
	}
	return (*Tag)(n.parent)
}

// Document returns the document the node belongs to, or nil.
func (n *Node) Document() *Document {
	top := n
	for top.parent != nil {
		top = top.parent
	}
	return top.document
}

// FirstChild returns the first child that passes the default filters and all
// given filters, or nil.
func (n *Node) FirstChild(filters ...Filter) *Node {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		if child.passes(filters) {
			return child
		}
	}
	return nil
}

// LastChild returns the last child that passes the default filters and all
// given filters, or nil.
func (n *Node) LastChild(filters ...Filter) *Node {
	for child := n.lastChild; child != nil; child = child.prevSibling {
		if child.passes(filters) {
			return child
		}
	}
	return nil
}

// NextSibling returns the nearest following sibling that passes the default
// filters and all given filters, or nil.
func (n *Node) NextSibling(filters ...Filter) *Node {
	for sibling := n.nextSibling; sibling != nil; sibling = sibling.nextSibling {
		if sibling.passes(filters) {
			return sibling
		}
	}
	return nil
}

// PreviousSibling returns the nearest preceding sibling that passes the
// default filters and all given filters, or nil.
func (n *Node) PreviousSibling(filters ...Filter) *Node {
	for sibling := n.prevSibling; sibling != nil; sibling = sibling.prevSibling {
		if sibling.passes(filters) {
			return sibling
		}
	}
	return nil
}

// Index returns the node's position among its parent's children, counting
// only siblings that pass the default filters and all given filters. It
// returns -1 for nodes without a parent.
func (n *Node) Index(filters ...Filter) int {
	if n.parent == nil {
		return -1
	}
	index := 0
	for sibling := n.parent.firstChild; sibling != nil; sibling = sibling.nextSibling {
		if sibling == n {
			return index
		}
		if sibling.passes(filters) {
			index++
		}
	}
	return -1
}

// Depth returns the number of ancestors of the node.
func (n *Node) Depth() int {
	depth := 0
	for anc := n.parent; anc != nil; anc = anc.parent {
		depth++
	}
	return depth
}

// LastDescendant returns the deepest last child in the subtree that passes
// the default filters and all given filters, or nil.
func (n *Node) LastDescendant(filters ...Filter) *Node {
	node := n.LastChild(filters...)
	for node != nil {
		candidate := node.LastChild(filters...)
		if candidate == nil {
			break
		}
		node = candidate
	}
	return node
}

// FullText returns the concatenated content of all text nodes in the
// subtree, regardless of any active filters.
func (n *Node) FullText() string {
	var result []byte
	n.walkSubtree(func(node *Node) {
		if node.nodeType == TextNode {
			result = append(result, node.data...)
		}
	})
	return string(result)
}

// walkSubtree visits the node's descendants in document order, ignoring
// filters entirely.
func (n *Node) walkSubtree(visit func(*Node)) {
	for child := n.firstChild; child != nil; child = child.nextSibling {
		visit(child)
		child.walkSubtree(visit)
	}
}

// Mutation

// Detach removes the node from its tree and returns it. The former siblings
// are re-merged when the removal would leave two adjacent text nodes.
// Detaching a document's root is an invalid operation; detaching an already
// detached node is a no-op.
func (n *Node) Detach() (*Node, error) {
	if n.document != nil {
		if n.nodeType == TagNode {
			return nil, ErrInvalidOperation("the root node of a document cannot be detached")
		}
		n.document.removeEnvelopeNode(n)
		return n, nil
	}
	if n.parent == nil {
		return n, nil
	}

	prev, next := n.prevSibling, n.nextSibling
	n.unlink()
	mergeAdjacentText(prev, next)
	return n, nil
}

// DetachRetainingChildren removes the node from its tree after splicing its
// children into its former position, preserving their relative order. Text
// nodes are re-merged at both splice boundaries.
func (n *Node) DetachRetainingChildren() (*Node, error) {
	if n.document != nil && n.nodeType == TagNode {
		return nil, ErrInvalidOperation("the root node of a document cannot be detached")
	}
	if n.firstChild == nil {
		return n.Detach()
	}
	if n.parent == nil {
		return nil, ErrInvalidOperation("child nodes cannot be retained when the node to detach has no parent")
	}

	parent, prev, next := n.parent, n.prevSibling, n.nextSibling
	first, last := n.firstChild, n.lastChild
	n.firstChild, n.lastChild = nil, nil
	n.unlink()

	for child := first; child != nil; child = child.nextSibling {
		child.parent = parent
	}
	spliceBetween(parent, prev, next, first, last)
	mergeRange(parent, prev, next)
	return n, nil
}

// ReplaceWith exchanges the node for the given nodes. It fails on root and
// detached nodes; on failure the tree is unmodified. The node is unlinked
// before the replacements are spliced in, so replacing a text node never
// folds its content into a neighboring text node.
func (n *Node) ReplaceWith(nodes ...any) error {
	if n.parent == nil {
		return ErrInvalidOperation("an unbound node cannot be replaced")
	}
	prepared, err := n.prepareNodeSources(nodes)
	if err != nil {
		return err
	}
	parent, prev, next := n.parent, n.prevSibling, n.nextSibling
	n.unlink()
	insertNodes(parent, prev, next, prepared)
	// When every replacement was an elided empty text node the former
	// neighbors are adjacent now and may need merging themselves.
	if prev != nil && prev.nextSibling == next {
		mergeAdjacentText(prev, next)
	}
	return nil
}

// AddFollowingSiblings inserts nodes after this one, in the given order.
// Node sources may be *Node, one of the typed views, a string (becoming a
// text node) or a TagDefinition. On a document's root only comments and
// processing instructions are accepted; they become epilogue nodes.
func (n *Node) AddFollowingSiblings(nodes ...any) error {
	if len(nodes) == 0 {
		return nil
	}
	prepared, err := n.prepareNodeSources(nodes)
	if err != nil {
		return err
	}
	if n.parent == nil {
		return n.addSiblingsViaEnvelope(prepared, false)
	}
	insertNodes(n.parent, n, n.nextSibling, prepared)
	return nil
}

// AddPrecedingSiblings inserts nodes before this one; the given order is
// kept, the last given node ends up as the nearest preceding sibling. On a
// document's root only comments and processing instructions are accepted;
// they become prologue nodes.
func (n *Node) AddPrecedingSiblings(nodes ...any) error {
	if len(nodes) == 0 {
		return nil
	}
	prepared, err := n.prepareNodeSources(nodes)
	if err != nil {
		return err
	}
	if n.parent == nil {
		return n.addSiblingsViaEnvelope(prepared, true)
	}
	insertNodes(n.parent, n.prevSibling, n, prepared)
	return nil
}

// addSiblingsViaEnvelope handles sibling insertion on parentless nodes. The
// only legal case is extending a document's prologue or epilogue.
func (n *Node) addSiblingsViaEnvelope(nodes []*Node, preceding bool) error {
	doc := n.document
	if doc == nil {
		return ErrInvalidOperation("a node without a parent cannot have siblings added")
	}
	for _, node := range nodes {
		if node.nodeType != CommentNode && node.nodeType != ProcessingInstructionNode {
			return ErrInvalidOperation("only comments and processing instructions can be siblings of a root node")
		}
	}
	if n.nodeType == TagNode {
		if preceding {
			doc.prologue = append(doc.prologue, nodes...)
		} else {
			doc.epilogue = append(append([]*Node{}, nodes...), doc.epilogue...)
		}
	} else {
		doc.insertEnvelopeSiblings(n, nodes, preceding)
	}
	for _, node := range nodes {
		node.document = doc
	}
	return nil
}

// Clone returns a copy of the node with new identities throughout. A deep
// clone copies the whole subtree; a shallow clone of a tag yields an empty
// child sequence. Attribute values and payloads are copied by value.
func (n *Node) Clone(deep bool) *Node {
	clone := &Node{
		nodeType: n.nodeType,
		name:     n.name,
		data:     n.data,
	}
	if n.attributes != nil {
		clone.attributes = n.attributes.cloneFor(clone)
	}
	if n.declarations != nil {
		clone.declarations = make(Namespaces, len(n.declarations))
		for prefix, uri := range n.declarations {
			clone.declarations[prefix] = uri
		}
	}
	if deep {
		for child := n.firstChild; child != nil; child = child.nextSibling {
			appendRaw(clone, child.Clone(deep))
		}
	}
	return clone
}

// prepareNodeSources coerces and validates the variadic node sources of the
// mutation methods. No source is linked anywhere until all of them have been
// validated, so a returned error implies an unmodified tree.
func (n *Node) prepareNodeSources(sources []any) ([]*Node, error) {
	prepared := make([]*Node, 0, len(sources))
	for _, source := range sources {
		node, err := coerceNodeSource(n, source)
		if err != nil {
			return nil, err
		}
		if node.parent != nil || node.prevSibling != nil || node.nextSibling != nil || node.document != nil {
			return nil, ErrInvalidOperation(
				"a node that shall be added to a tree must have neither a parent nor any sibling node")
		}
		prepared = append(prepared, node)
	}
	return prepared, nil
}

// coerceNodeSource turns a node source into a concrete node. Tag definitions
// are instantiated against the anchor's namespace.
func coerceNodeSource(anchor *Node, source any) (*Node, error) {
	switch s := source.(type) {
	case *Node:
		return s, nil
	case *Tag:
		return s.AsNode(), nil
	case *Text:
		return s.AsNode(), nil
	case *Comment:
		return s.AsNode(), nil
	case *ProcessingInstruction:
		return s.AsNode(), nil
	case string:
		return NewTextNode(s).AsNode(), nil
	case TagDefinition:
		return s.instantiate(anchor)
	default:
		return nil, ErrInvalidOperation("cannot derive a node from a %T value", source)
	}
}

// Linking primitives. These maintain the raw sibling chain; text merging is
// layered on top by insertNodes and the detach operations.

func (n *Node) unlink() {
	if n.parent != nil {
		if n.parent.firstChild == n {
			n.parent.firstChild = n.nextSibling
		}
		if n.parent.lastChild == n {
			n.parent.lastChild = n.prevSibling
		}
	}
	if n.prevSibling != nil {
		n.prevSibling.nextSibling = n.nextSibling
	}
	if n.nextSibling != nil {
		n.nextSibling.prevSibling = n.prevSibling
	}
	n.parent, n.prevSibling, n.nextSibling = nil, nil, nil
}

// spliceBetween links the prepared chain first..last between prev and next
// under parent. prev and next may be nil for the respective boundaries.
func spliceBetween(parent, prev, next, first, last *Node) {
	first.prevSibling = prev
	last.nextSibling = next
	if prev != nil {
		prev.nextSibling = first
	} else {
		parent.firstChild = first
	}
	if next != nil {
		next.prevSibling = last
	} else {
		parent.lastChild = last
	}
}

func appendRaw(parent, child *Node) {
	child.parent = parent
	child.prevSibling = parent.lastChild
	if parent.lastChild != nil {
		parent.lastChild.nextSibling = child
	} else {
		parent.firstChild = child
	}
	parent.lastChild = child
}

// insertNodes links the prepared nodes between prev and next and re-applies
// the text adjacency invariant over the affected range. Empty text nodes are
// elided. This is the single choke point through which all insertion flows.
func insertNodes(parent *Node, prev, next *Node, nodes []*Node) {
	var first, last *Node
	for _, node := range nodes {
		if node.nodeType == TextNode && node.data == "" {
			continue
		}
		node.parent = parent
		if last == nil {
			first, last = node, node
			continue
		}
		last.nextSibling = node
		node.prevSibling = last
		last = node
	}
	if first == nil {
		return
	}
	spliceBetween(parent, prev, next, first, last)
	mergeRange(parent, prev, next)
}

// mergeRange merges adjacent text nodes between prev and next (exclusive
// bounds, nil meaning the child list's ends). Content always flows into the
// earlier node; the later one is unlinked and keeps its own payload.
func mergeRange(parent, prev, next *Node) {
	start := prev
	if start == nil {
		start = parent.firstChild
	}
	for node := start; node != nil && node != next; {
		following := node.nextSibling
		if node.nodeType == TextNode && following != nil && following.nodeType == TextNode {
			node.data += following.data
			following.unlink()
			if following == next {
				return
			}
			continue
		}
		node = following
	}
}

// mergeAdjacentText merges a and b when both are text nodes that became
// adjacent after a removal.
func mergeAdjacentText(a, b *Node) {
	if a == nil || b == nil {
		return
	}
	if a.nodeType == TextNode && b.nodeType == TextNode {
		a.data += b.data
		b.unlink()
	}
}

// passes reports whether the node satisfies the current default filters and
// all additionally given ones.
func (n *Node) passes(filters []Filter) bool {
	for _, f := range currentDefaultFilters() {
		if !f(n) {
			return false
		}
	}
	for _, f := range filters {
		if !f(n) {
			return false
		}
	}
	return true
}
