package tree

import "slices"

// Document is the envelope around a tree: exactly one root tag plus any
// comments and processing instructions that precede or follow it in stream
// order. The prologue and epilogue nodes are owned by the document itself,
// they are not siblings of the root.
type Document struct {
	// SourceURL names where the document was loaded from, if anywhere.
	SourceURL string

	root     *Node
	prologue []*Node
	epilogue []*Node
}

// NewDocument wraps a detached tag as the root of a new document.
func NewDocument(root *Tag) (*Document, error) {
	d := &Document{}
	if err := d.adoptRoot(root); err != nil {
		return nil, err
	}
	return d, nil
}

// Root returns the document's root tag.
func (d *Document) Root() *Tag {
	return (*Tag)(d.root)
}

// SetRoot replaces the document's root with a detached tag and returns the
// previous root, which afterwards stands alone as the root of its own tree.
func (d *Document) SetRoot(root *Tag) (*Tag, error) {
	previous := d.root
	if err := d.adoptRoot(root); err != nil {
		return nil, err
	}
	if previous != nil {
		previous.document = nil
	}
	return (*Tag)(previous), nil
}

func (d *Document) adoptRoot(root *Tag) error {
	if root == nil {
		return ErrInvalidOperation("a document requires a root node")
	}
	n := root.AsNode()
	if n.parent != nil || n.prevSibling != nil || n.nextSibling != nil || n.document != nil {
		return ErrInvalidOperation(
			"a node that shall be added to a tree must have neither a parent nor any sibling node")
	}
	n.document = d
	d.root = n
	return nil
}

// Prologue returns the comments and processing instructions that precede the
// root, in stream order. The slice is a copy.
func (d *Document) Prologue() []*Node {
	return slices.Clone(d.prologue)
}

// Epilogue returns the comments and processing instructions that follow the
// root, in stream order. The slice is a copy.
func (d *Document) Epilogue() []*Node {
	return slices.Clone(d.epilogue)
}

// AppendPrologue adds comments or processing instructions to the end of the
// document's prologue. Like the node mutation methods it accepts *Node and
// the typed views as sources; all sources must be detached.
func (d *Document) AppendPrologue(nodes ...any) error {
	return d.extendEnvelope(&d.prologue, len(d.prologue), nodes)
}

// InsertPrologue inserts comments or processing instructions at the given
// position of the document's prologue.
func (d *Document) InsertPrologue(index int, nodes ...any) error {
	return d.extendEnvelope(&d.prologue, index, nodes)
}

// RemovePrologue detaches and returns the prologue node at the given
// position.
func (d *Document) RemovePrologue(index int) (*Node, error) {
	return d.shrinkEnvelope(&d.prologue, index)
}

// AppendEpilogue adds comments or processing instructions to the end of the
// document's epilogue.
func (d *Document) AppendEpilogue(nodes ...any) error {
	return d.extendEnvelope(&d.epilogue, len(d.epilogue), nodes)
}

// InsertEpilogue inserts comments or processing instructions at the given
// position of the document's epilogue.
func (d *Document) InsertEpilogue(index int, nodes ...any) error {
	return d.extendEnvelope(&d.epilogue, index, nodes)
}

// RemoveEpilogue detaches and returns the epilogue node at the given
// position.
func (d *Document) RemoveEpilogue(index int) (*Node, error) {
	return d.shrinkEnvelope(&d.epilogue, index)
}

func (d *Document) extendEnvelope(list *[]*Node, index int, sources []any) error {
	if index < 0 || index > len(*list) {
		return ErrInvalidOperation("envelope index %d is out of range", index)
	}
	prepared, err := d.root.prepareNodeSources(sources)
	if err != nil {
		return err
	}
	for _, node := range prepared {
		if node.nodeType != CommentNode && node.nodeType != ProcessingInstructionNode {
			return ErrInvalidOperation(
				"only comments and processing instructions can appear in a document's prologue or epilogue")
		}
	}
	for _, node := range prepared {
		node.document = d
	}
	*list = slices.Insert(*list, index, prepared...)
	return nil
}

func (d *Document) shrinkEnvelope(list *[]*Node, index int) (*Node, error) {
	if index < 0 || index >= len(*list) {
		return nil, ErrInvalidOperation("envelope index %d is out of range", index)
	}
	node := (*list)[index]
	*list = slices.Delete(*list, index, index+1)
	node.document = nil
	return node, nil
}

// MergeTextNodes merges adjacent text nodes and drops empty ones below the
// document's root. See Tag.MergeTextNodes.
func (d *Document) MergeTextNodes() {
	d.Root().MergeTextNodes()
}

// Clone returns a deep copy of the document with new node identities
// throughout.
func (d *Document) Clone() *Document {
	clone := &Document{SourceURL: d.SourceURL}
	root := d.root.Clone(true)
	root.document = clone
	clone.root = root
	for _, node := range d.prologue {
		c := node.Clone(true)
		c.document = clone
		clone.prologue = append(clone.prologue, c)
	}
	for _, node := range d.epilogue {
		c := node.Clone(true)
		c.document = clone
		clone.epilogue = append(clone.epilogue, c)
	}
	return clone
}

// FullText returns the concatenated content of all text nodes below the
// document's root.
func (d *Document) FullText() string {
	return d.root.FullText()
}

// appendEnvelopeNode is the builder's path for prologue and epilogue
// assembly.
func (d *Document) appendEnvelopeNode(n *Node, prologue bool) {
	n.document = d
	if prologue {
		d.prologue = append(d.prologue, n)
	} else {
		d.epilogue = append(d.epilogue, n)
	}
}

// removeEnvelopeNode detaches a prologue or epilogue node.
func (d *Document) removeEnvelopeNode(n *Node) {
	if i := slices.Index(d.prologue, n); i >= 0 {
		d.prologue = slices.Delete(d.prologue, i, i+1)
	}
	if i := slices.Index(d.epilogue, n); i >= 0 {
		d.epilogue = slices.Delete(d.epilogue, i, i+1)
	}
	n.document = nil
}

// insertEnvelopeSiblings places nodes immediately before or after an anchor
// that lives in the prologue or epilogue.
func (d *Document) insertEnvelopeSiblings(anchor *Node, nodes []*Node, preceding bool) {
	if i := slices.Index(d.prologue, anchor); i >= 0 {
		if !preceding {
			i++
		}
		d.prologue = slices.Insert(d.prologue, i, nodes...)
		return
	}
	if i := slices.Index(d.epilogue, anchor); i >= 0 {
		if !preceding {
			i++
		}
		d.epilogue = slices.Insert(d.epilogue, i, nodes...)
	}
}
