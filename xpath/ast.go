package xpath

import (
	"fmt"
	"strings"

	"github.com/chrisuehlinger/vellum/tree"
)

// Evaluation values are one of: nil, bool, int or string. An absent
// attribute yields nil, which compares unequal to any string.

// EvaluationContext carries the state a predicate or function is evaluated
// in. Position and Size refer to the candidate list of the enclosing
// location step and are 1-based respectively counted in full.
type EvaluationContext struct {
	Node       *tree.Node
	Position   int
	Size       int
	Namespaces tree.Namespaces
}

type evaluationNode interface {
	evaluate(ctx EvaluationContext) (any, error)
}

type nodeTest interface {
	matches(n *tree.Node, ns tree.Namespaces) (bool, error)
}

// axes

type axis uint8

const (
	axisChild axis = iota + 1
	axisDescendant
	axisDescendantOrSelf
	axisSelf
	axisParent
	axisAncestor
	axisAncestorOrSelf
	axisFollowing
	axisFollowingSibling
	axisPreceding
	axisPrecedingSibling
	axisAttribute
)

var axesByName = map[string]axis{
	"ancestor":           axisAncestor,
	"ancestor-or-self":   axisAncestorOrSelf,
	"attribute":          axisAttribute,
	"child":              axisChild,
	"descendant":         axisDescendant,
	"descendant-or-self": axisDescendantOrSelf,
	"following":          axisFollowing,
	"following-sibling":  axisFollowingSibling,
	"parent":             axisParent,
	"preceding":          axisPreceding,
	"preceding-sibling":  axisPrecedingSibling,
	"self":               axisSelf,
}

// collect materializes the axis of one context node. Default filters are
// suspended for the whole evaluation, so the tree iterators yield every
// node here. The following and preceding axes share the semantics of the
// tree's stream traversals.
func (a axis) collect(n *tree.Node) []*tree.Node {
	switch a {
	case axisChild:
		return tree.Snapshot(n.Children())
	case axisDescendant:
		return tree.Snapshot(n.Descendants())
	case axisDescendantOrSelf:
		return append([]*tree.Node{n}, tree.Snapshot(n.Descendants())...)
	case axisSelf:
		return []*tree.Node{n}
	case axisParent:
		if p := n.Parent(); p != nil {
			return []*tree.Node{p.AsNode()}
		}
	case axisAncestor:
		return tree.Snapshot(n.Ancestors())
	case axisAncestorOrSelf:
		return append([]*tree.Node{n}, tree.Snapshot(n.Ancestors())...)
	case axisFollowing:
		return tree.Snapshot(n.Following())
	case axisFollowingSibling:
		return tree.Snapshot(n.FollowingSiblings())
	case axisPreceding:
		return tree.Snapshot(n.Preceding())
	case axisPrecedingSibling:
		return tree.Snapshot(n.PrecedingSiblings())
	}
	return nil
}

// documentPool enumerates what the first step of an absolute path sees. The
// document itself is not part of the node model, so its child axis yields
// the top-level nodes and the descendant axes expand their subtrees. For a
// node outside of any document the top of its tree stands in.
func documentPool(ctx *tree.Node, a axis) []*tree.Node {
	var tops []*tree.Node
	if doc := ctx.Document(); doc != nil {
		tops = append(tops, doc.Prologue()...)
		if root := doc.Root(); root != nil {
			tops = append(tops, root.AsNode())
		}
		tops = append(tops, doc.Epilogue()...)
	} else {
		top := ctx
		for top.Parent() != nil {
			top = top.Parent().AsNode()
		}
		tops = []*tree.Node{top}
	}

	switch a {
	case axisChild:
		return tops
	case axisDescendant, axisDescendantOrSelf:
		var pool []*tree.Node
		for _, top := range tops {
			pool = append(pool, top)
			pool = append(pool, tree.Snapshot(top.Descendants())...)
		}
		return pool
	}
	return nil
}

// node tests

type nameMatchTest struct {
	prefix    string
	hasPrefix bool
	local     string
}

func (t nameMatchTest) matches(n *tree.Node, ns tree.Namespaces) (bool, error) {
	uri, err := resolveTagNamespace(t.prefix, t.hasPrefix, ns)
	if err != nil {
		return false, err
	}
	tag := n.Tag()
	if tag == nil {
		return false, nil
	}
	if (t.hasPrefix || ns.HasDefault()) && tag.Namespace() != uri {
		return false, nil
	}
	return tag.LocalName() == t.local, nil
}

type nameStartTest struct {
	prefix    string
	hasPrefix bool
	start     string
}

func (t nameStartTest) matches(n *tree.Node, ns tree.Namespaces) (bool, error) {
	uri, err := resolveTagNamespace(t.prefix, t.hasPrefix, ns)
	if err != nil {
		return false, err
	}
	tag := n.Tag()
	if tag == nil {
		return false, nil
	}
	if (t.hasPrefix || ns.HasDefault()) && tag.Namespace() != uri {
		return false, nil
	}
	return strings.HasPrefix(tag.LocalName(), t.start), nil
}

// nodeTypeTest matches nodes by variant. The zero nodeType matches any
// variant, which is what node() parses to.
type nodeTypeTest struct {
	nodeType tree.NodeType
}

func (t nodeTypeTest) matches(n *tree.Node, _ tree.Namespaces) (bool, error) {
	return t.nodeType == 0 || n.NodeType() == t.nodeType, nil
}

func resolveTagNamespace(prefix string, hasPrefix bool, ns tree.Namespaces) (string, error) {
	if hasPrefix {
		uri, ok := ns.Resolve(prefix)
		if !ok {
			return "", errEvaluation("the namespace prefix %q is unknown in the evaluation context", prefix)
		}
		return uri, nil
	}
	return ns[""], nil
}

// Unprefixed attribute names address the default namespace when one is
// declared, mirroring the addressing rule for unprefixed tag names.
func resolveAttributeNamespace(prefix string, hasPrefix bool, ns tree.Namespaces) (string, error) {
	return resolveTagNamespace(prefix, hasPrefix, ns)
}

// location paths

type expression struct {
	paths []*locationPath
}

func (e *expression) evaluate(start *tree.Node, ns tree.Namespaces) ([]*tree.Node, []*tree.Attribute, error) {
	seenNodes := make(map[*tree.Node]bool)
	seenAttrs := make(map[*tree.Attribute]bool)
	var nodes []*tree.Node
	var attrs []*tree.Attribute
	for _, path := range e.paths {
		pathNodes, pathAttrs, err := path.evaluate(start, ns)
		if err != nil {
			return nil, nil, err
		}
		for _, n := range pathNodes {
			if !seenNodes[n] {
				seenNodes[n] = true
				nodes = append(nodes, n)
			}
		}
		for _, a := range pathAttrs {
			if !seenAttrs[a] {
				seenAttrs[a] = true
				attrs = append(attrs, a)
			}
		}
	}
	return nodes, attrs, nil
}

type locationPath struct {
	absolute bool
	steps    []*locationStep
}

func (p *locationPath) evaluate(start *tree.Node, ns tree.Namespaces) ([]*tree.Node, []*tree.Attribute, error) {
	current := []*tree.Node{start}
	for i, step := range p.steps {
		if step.axis == axisAttribute {
			if i != len(p.steps)-1 {
				return nil, nil, errEvaluation("the attribute axis can only be used in the last location step")
			}
			attrs, err := step.evaluateAttributes(current, ns)
			return nil, attrs, err
		}

		var next []*tree.Node
		for _, ctx := range current {
			var pool []*tree.Node
			if i == 0 && p.absolute {
				pool = documentPool(ctx, step.axis)
			} else {
				pool = step.axis.collect(ctx)
			}
			matched, err := step.filterCandidates(pool, ns)
			if err != nil {
				return nil, nil, err
			}
			next = append(next, matched...)
		}
		current = next
	}
	return current, nil, nil
}

type locationStep struct {
	axis       axis
	test       nodeTest
	predicates []evaluationNode
}

// filterCandidates reduces an axis pool with the node test and then each
// predicate in turn. Positions are recounted per predicate stage.
func (s *locationStep) filterCandidates(pool []*tree.Node, ns tree.Namespaces) ([]*tree.Node, error) {
	var candidates []*tree.Node
	for _, n := range pool {
		ok, err := s.test.matches(n, ns)
		if err != nil {
			return nil, err
		}
		if ok {
			candidates = append(candidates, n)
		}
	}

	for _, predicate := range s.predicates {
		size := len(candidates)
		kept := candidates[:0]
		for i, n := range candidates {
			ctx := EvaluationContext{Node: n, Position: i + 1, Size: size, Namespaces: ns}
			v, err := predicate.evaluate(ctx)
			if err != nil {
				return nil, err
			}
			// A numeric predicate value is a position test, so last()
			// keeps the last candidate rather than all of them.
			if position, ok := v.(int); ok {
				if position == ctx.Position {
					kept = append(kept, n)
				}
				continue
			}
			if truthy(v) {
				kept = append(kept, n)
			}
		}
		candidates = kept
	}
	return candidates, nil
}

func (s *locationStep) evaluateAttributes(current []*tree.Node, ns tree.Namespaces) ([]*tree.Attribute, error) {
	if len(s.predicates) > 0 {
		return nil, errEvaluation("predicates are not supported on the attribute axis")
	}
	var result []*tree.Attribute
	for _, n := range current {
		tag := n.Tag()
		if tag == nil {
			continue
		}
		for _, attr := range tag.Attributes().All() {
			ok, err := s.attributeMatches(attr, ns)
			if err != nil {
				return nil, err
			}
			if ok {
				result = append(result, attr)
			}
		}
	}
	return result, nil
}

func (s *locationStep) attributeMatches(attr *tree.Attribute, ns tree.Namespaces) (bool, error) {
	switch t := s.test.(type) {
	case nameMatchTest:
		uri, err := resolveAttributeNamespace(t.prefix, t.hasPrefix, ns)
		if err != nil {
			return false, err
		}
		return attr.Namespace() == uri && attr.LocalName() == t.local, nil
	case nameStartTest:
		if !t.hasPrefix && t.start == "" {
			return true, nil
		}
		uri, err := resolveAttributeNamespace(t.prefix, t.hasPrefix, ns)
		if err != nil {
			return false, err
		}
		return attr.Namespace() == uri && strings.HasPrefix(attr.LocalName(), t.start), nil
	case nodeTypeTest:
		return t.nodeType == 0, nil
	}
	return false, nil
}

// evaluation nodes

type anyValue struct {
	value any
}

func (v anyValue) evaluate(EvaluationContext) (any, error) {
	return v.value, nil
}

type attributeValue struct {
	prefix    string
	hasPrefix bool
	local     string
}

func (a attributeValue) evaluate(ctx EvaluationContext) (any, error) {
	uri, err := resolveAttributeNamespace(a.prefix, a.hasPrefix, ctx.Namespaces)
	if err != nil {
		return nil, err
	}
	tag := ctx.Node.Tag()
	if tag == nil {
		return nil, nil
	}
	attr := tag.Attributes().GetNS(uri, a.local)
	if attr == nil {
		return nil, nil
	}
	return attr.Value(), nil
}

type hasAttribute struct {
	prefix    string
	hasPrefix bool
	local     string
}

func (h hasAttribute) evaluate(ctx EvaluationContext) (any, error) {
	uri, err := resolveAttributeNamespace(h.prefix, h.hasPrefix, ctx.Namespaces)
	if err != nil {
		return nil, err
	}
	tag := ctx.Node.Tag()
	if tag == nil {
		return false, nil
	}
	return tag.Attributes().GetNS(uri, h.local) != nil, nil
}

type booleanOperator struct {
	op    string
	left  evaluationNode
	right evaluationNode
}

func (b booleanOperator) evaluate(ctx EvaluationContext) (any, error) {
	left, err := b.left.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	right, err := b.right.evaluate(ctx)
	if err != nil {
		return nil, err
	}

	switch b.op {
	case "or":
		return truthy(left) || truthy(right), nil
	case "and":
		return truthy(left) && truthy(right), nil
	case "=":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	}

	cmp, err := compareValues(left, right)
	if err != nil {
		return nil, err
	}
	switch b.op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, errEvaluation("unknown operator %q", b.op)
}

type functionCall struct {
	name string
	fn   Function
	args []evaluationNode
}

func (f functionCall) evaluate(ctx EvaluationContext) (any, error) {
	args := make([]any, len(f.args))
	for i, arg := range f.args {
		v, err := arg.evaluate(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return f.fn(ctx, args)
}

// value helpers

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int:
		return t != 0
	case string:
		return t != ""
	}
	return true
}

func valuesEqual(l, r any) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	return l == r
}

func compareValues(l, r any) (int, error) {
	switch lv := l.(type) {
	case int:
		if rv, ok := r.(int); ok {
			return lv - rv, nil
		}
	case string:
		if rv, ok := r.(string); ok {
			return strings.Compare(lv, rv), nil
		}
	}
	return 0, errEvaluation("cannot compare %s with %s", valueKind(l), valueKind(r))
}

func valueKind(v any) string {
	switch v.(type) {
	case nil:
		return "an empty value"
	case bool:
		return "a boolean"
	case int:
		return "a number"
	case string:
		return "a string"
	}
	return fmt.Sprintf("a %T value", v)
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", t)
	case string:
		return t
	}
	return fmt.Sprint(v)
}
