package tree

import "iter"

// The traversal sequences are lazy and restartable: ranging over one walks
// the live tree, ranging again starts over. Mutating the traversed region
// between steps is not memory-unsafe but leaves the set and order of
// further yielded nodes unspecified; use Snapshot when mutating.

// Ancestors yields the node's ancestors from the innermost to the tree's
// root, subject to the default filters and all given filters.
func (n *Node) Ancestors(filters ...Filter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for anc := n.parent; anc != nil; anc = anc.parent {
			if anc.passes(filters) && !yield(anc) {
				return
			}
		}
	}
}

// Children yields the node's children in document order, subject to the
// default filters and all given filters. Non-tag nodes yield nothing.
func (n *Node) Children(filters ...Filter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for child := n.firstChild; child != nil; child = child.nextSibling {
			if child.passes(filters) && !yield(child) {
				return
			}
		}
	}
}

// Descendants yields the node's descendants in document order, subject to
// the default filters and all given filters. Filters gate what is yielded,
// they never prune the walk into a rejected node's subtree.
func (n *Node) Descendants(filters ...Filter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for node := n.firstChild; node != nil; node = nextWithin(n, node) {
			if node.passes(filters) && !yield(node) {
				return
			}
		}
	}
}

// FollowingSiblings yields the siblings after the node in document order,
// subject to the default filters and all given filters.
func (n *Node) FollowingSiblings(filters ...Filter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for sibling := n.nextSibling; sibling != nil; sibling = sibling.nextSibling {
			if sibling.passes(filters) && !yield(sibling) {
				return
			}
		}
	}
}

// PrecedingSiblings yields the siblings before the node, nearest first,
// subject to the default filters and all given filters.
func (n *Node) PrecedingSiblings(filters ...Filter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for sibling := n.prevSibling; sibling != nil; sibling = sibling.prevSibling {
			if sibling.passes(filters) && !yield(sibling) {
				return
			}
		}
	}
}

// Following yields all nodes after this one in document order, beginning
// with its own descendants, subject to the default filters and all given
// filters.
func (n *Node) Following(filters ...Filter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for node := nextInStream(n); node != nil; node = nextInStream(node) {
			if node.passes(filters) && !yield(node) {
				return
			}
		}
	}
}

// Preceding yields all nodes before this one in reverse document order,
// including its ancestors, subject to the default filters and all given
// filters.
func (n *Node) Preceding(filters ...Filter) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for node := prevInStream(n); node != nil; node = prevInStream(node) {
			if node.passes(filters) && !yield(node) {
				return
			}
		}
	}
}

// Snapshot materializes a traversal before any of it is consumed, allowing
// the tree to be mutated while iterating over the result.
func Snapshot(seq iter.Seq[*Node]) []*Node {
	var nodes []*Node
	for node := range seq {
		nodes = append(nodes, node)
	}
	return nodes
}

// nextWithin returns the document-order successor of node within the
// subtree rooted at root, or nil when the subtree is exhausted.
func nextWithin(root, node *Node) *Node {
	if node.firstChild != nil {
		return node.firstChild
	}
	for cur := node; cur != root; cur = cur.parent {
		if cur.nextSibling != nil {
			return cur.nextSibling
		}
	}
	return nil
}

// nextInStream returns the document-order successor of node across the
// whole tree, or nil at the tree's end.
func nextInStream(node *Node) *Node {
	if node.firstChild != nil {
		return node.firstChild
	}
	for cur := node; cur != nil; cur = cur.parent {
		if cur.nextSibling != nil {
			return cur.nextSibling
		}
	}
	return nil
}

// prevInStream returns the document-order predecessor of node, or nil at
// the tree's start.
func prevInStream(node *Node) *Node {
	if node.prevSibling == nil {
		return node.parent
	}
	prev := node.prevSibling
	for prev.lastChild != nil {
		prev = prev.lastChild
	}
	return prev
}

// CompareDocumentOrder reports the relative document order of two nodes of
// the same tree: -1 when a precedes b, 1 when it follows it, and 0 when both
// are the same node. An ancestor precedes its descendants. Nodes of distinct
// trees compare as 0.
func CompareDocumentOrder(a, b *Node) int {
	if a == b {
		return 0
	}
	pathA, pathB := pathFromRoot(a), pathFromRoot(b)
	if pathA[0] != pathB[0] {
		return 0
	}
	i := 1
	for i < len(pathA) && i < len(pathB) && pathA[i] == pathB[i] {
		i++
	}
	if i == len(pathA) {
		return -1
	}
	if i == len(pathB) {
		return 1
	}
	for sibling := pathA[i].nextSibling; sibling != nil; sibling = sibling.nextSibling {
		if sibling == pathB[i] {
			return -1
		}
	}
	return 1
}

func pathFromRoot(n *Node) []*Node {
	var path []*Node
	for node := n; node != nil; node = node.parent {
		path = append(path, node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
