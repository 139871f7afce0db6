// Package xpath queries vellum trees with a subset of XPath 1.0: location
// paths with the named axes, name and node type tests, predicates with
// attribute references, comparisons and a handful of functions, and unions
// of such paths. As an extension beyond path evaluation, a final location
// step on the attribute axis selects attributes.
//
// Default filters do not constrain evaluations; every node of the tree is
// considered.
//
// The following and preceding axes follow the tree's stream traversals and
// therefore include the context node's own descendants, where XPath 1.0
// excludes them.
package xpath

import (
	"github.com/chrisuehlinger/vellum/tree"
)

// Evaluate queries the tree with node as the initial context node. Provided
// namespace declarations are consulted first, the declarations in scope of
// the context node serve as fallback. Results come deduplicated and in
// document order.
//
// Syntax issues are reported as *ParseError, issues of applying a valid
// expression as *EvaluationError.
func Evaluate(node *tree.Node, expression string, declarations tree.Namespaces) (*QueryResults, error) {
	parsed, err := parse(expression)
	if err != nil {
		return nil, err
	}

	restore := tree.AlterDefaultFilters()
	defer restore()

	nodes, attributes, err := parsed.evaluate(node, effectiveNamespaces(node, declarations))
	if err != nil {
		return nil, err
	}
	sortNodesInDocumentOrder(nodes)
	sortAttributesInDocumentOrder(attributes)
	return &QueryResults{nodes: nodes, attributes: attributes}, nil
}

// FetchOrCreate returns the single tag that the expression locates below
// anchor, building the missing part of the branch if necessary. When several
// tags match, the first in document order is returned.
//
// Expressions must determine one distinct branch: a relative path of child
// steps with name tests, where predicates may only compare attributes
// against string literals, joined by and or stacked in several brackets.
// Anything else fails with an *tree.InvalidOperationError.
func FetchOrCreate(anchor *tree.Tag, expression string, declarations tree.Namespaces) (*tree.Tag, error) {
	parsed, err := parse(expression)
	if err != nil {
		return nil, err
	}
	steps, err := locatableSteps(parsed)
	if err != nil {
		return nil, err
	}

	results, err := Evaluate(anchor.AsNode(), expression, declarations)
	if err != nil {
		return nil, err
	}
	if first := results.First(); first != nil {
		return first.Tag(), nil
	}

	restore := tree.AlterDefaultFilters()
	defer restore()

	ns := effectiveNamespaces(anchor.AsNode(), declarations)
	node := anchor.AsNode()
	for _, step := range steps {
		candidates, err := step.step.filterCandidates(step.step.axis.collect(node), ns)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			node = candidates[0]
			continue
		}
		node, err = createStepNode(node, step, ns)
		if err != nil {
			return nil, err
		}
	}
	return node.Tag(), nil
}

// effectiveNamespaces overlays the given declarations over those in scope
// of the context node.
func effectiveNamespaces(node *tree.Node, declarations tree.Namespaces) tree.Namespaces {
	var inScope tree.Namespaces
	if tag := node.Tag(); tag != nil {
		inScope = tag.Namespaces()
	} else if parent := node.Parent(); parent != nil {
		inScope = parent.Namespaces()
	}

	if len(declarations) == 0 {
		if inScope == nil {
			return tree.Namespaces{}
		}
		return inScope
	}
	effective := make(tree.Namespaces, len(inScope)+len(declarations))
	for prefix, uri := range inScope {
		effective[prefix] = uri
	}
	for prefix, uri := range declarations {
		effective[prefix] = uri
	}
	return effective
}

type attributeAssignment struct {
	prefix    string
	hasPrefix bool
	local     string
	value     string
}

type creationStep struct {
	step  *locationStep
	attrs []attributeAssignment
}

func errNotLocatable() error {
	return tree.ErrInvalidOperation("the expression does not determine a distinct branch")
}

// locatableSteps validates the shape rules of FetchOrCreate and derives the
// attributes each created tag will carry. A leading self step, as produced
// by the ./ abbreviation, is permitted.
func locatableSteps(e *expression) ([]creationStep, error) {
	if len(e.paths) != 1 {
		return nil, errNotLocatable()
	}
	path := e.paths[0]
	if path.absolute {
		return nil, errNotLocatable()
	}

	steps := make([]creationStep, 0, len(path.steps))
	for i, step := range path.steps {
		if i == 0 && step.axis == axisSelf {
			if t, ok := step.test.(nodeTypeTest); ok && t.nodeType == 0 && len(step.predicates) == 0 {
				steps = append(steps, creationStep{step: step})
				continue
			}
			return nil, errNotLocatable()
		}
		if step.axis != axisChild {
			return nil, errNotLocatable()
		}
		if _, ok := step.test.(nameMatchTest); !ok {
			return nil, errNotLocatable()
		}
		var attrs []attributeAssignment
		for _, predicate := range step.predicates {
			if !collectAttributeComparisons(predicate, &attrs) {
				return nil, errNotLocatable()
			}
		}
		steps = append(steps, creationStep{step: step, attrs: attrs})
	}
	return steps, nil
}

func collectAttributeComparisons(node evaluationNode, attrs *[]attributeAssignment) bool {
	op, ok := node.(booleanOperator)
	if !ok {
		return false
	}
	switch op.op {
	case "and":
		return collectAttributeComparisons(op.left, attrs) &&
			collectAttributeComparisons(op.right, attrs)
	case "=":
		ref, ok := op.left.(attributeValue)
		if !ok {
			return false
		}
		literal, ok := op.right.(anyValue)
		if !ok {
			return false
		}
		value, ok := literal.value.(string)
		if !ok {
			return false
		}
		*attrs = append(*attrs, attributeAssignment{
			prefix:    ref.prefix,
			hasPrefix: ref.hasPrefix,
			local:     ref.local,
			value:     value,
		})
		return true
	}
	return false
}

func createStepNode(parent *tree.Node, step creationStep, ns tree.Namespaces) (*tree.Node, error) {
	test := step.step.test.(nameMatchTest)

	namespace, err := resolveTagNamespace(test.prefix, test.hasPrefix, ns)
	if err != nil {
		return nil, err
	}
	tag := tree.NewTagNodeNS(namespace, test.local)

	for _, attr := range step.attrs {
		uri, err := resolveAttributeNamespace(attr.prefix, attr.hasPrefix, ns)
		if err != nil {
			return nil, err
		}
		if uri == "" {
			tag.Attributes().Set(attr.local, attr.value)
		} else {
			tag.Attributes().SetNS(uri, attr.local, attr.value)
		}
	}

	parentTag := parent.Tag()
	if parentTag == nil {
		return nil, tree.ErrInvalidOperation("cannot create children below a %s node", parent.NodeType())
	}
	if err := parentTag.AppendChildren(tag); err != nil {
		return nil, err
	}
	return tag.AsNode(), nil
}
