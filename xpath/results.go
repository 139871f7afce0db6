package xpath

import (
	"slices"

	"github.com/chrisuehlinger/vellum/tree"
)

// QueryResults holds the outcome of a query in document order, without
// duplicates. Nodes and attributes are kept apart; only expressions whose
// final step uses the attribute axis produce attributes.
type QueryResults struct {
	nodes      []*tree.Node
	attributes []*tree.Attribute
}

// Size counts the contained nodes and attributes.
func (r *QueryResults) Size() int {
	return len(r.nodes) + len(r.attributes)
}

// First returns the first matched node or nil.
func (r *QueryResults) First() *tree.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// Last returns the last matched node or nil.
func (r *QueryResults) Last() *tree.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[len(r.nodes)-1]
}

// All returns the matched nodes as a new slice.
func (r *QueryResults) All() []*tree.Node {
	return slices.Clone(r.nodes)
}

// Attributes returns the matched attributes as a new slice.
func (r *QueryResults) Attributes() []*tree.Attribute {
	return slices.Clone(r.attributes)
}

// FilteredBy narrows the contained nodes to those passing all filters.
// Attributes are carried over unchanged.
func (r *QueryResults) FilteredBy(filters ...tree.Filter) *QueryResults {
	var nodes []*tree.Node
next:
	for _, n := range r.nodes {
		for _, filter := range filters {
			if !filter(n) {
				continue next
			}
		}
		nodes = append(nodes, n)
	}
	return &QueryResults{nodes: nodes, attributes: slices.Clone(r.attributes)}
}

// InDocumentOrder returns results sorted in document order. Query results
// already are, so this only matters for instances assembled otherwise.
func (r *QueryResults) InDocumentOrder() *QueryResults {
	nodes := slices.Clone(r.nodes)
	attributes := slices.Clone(r.attributes)
	sortNodesInDocumentOrder(nodes)
	sortAttributesInDocumentOrder(attributes)
	return &QueryResults{nodes: nodes, attributes: attributes}
}

func sortNodesInDocumentOrder(nodes []*tree.Node) {
	slices.SortStableFunc(nodes, tree.CompareDocumentOrder)
}

func sortAttributesInDocumentOrder(attributes []*tree.Attribute) {
	slices.SortStableFunc(attributes, func(a, b *tree.Attribute) int {
		if c := tree.CompareDocumentOrder(a.Owner().AsNode(), b.Owner().AsNode()); c != 0 {
			return c
		}
		return attributeIndex(a) - attributeIndex(b)
	})
}

func attributeIndex(a *tree.Attribute) int {
	for i, other := range a.Owner().Attributes().All() {
		if other == a {
			return i
		}
	}
	return -1
}
