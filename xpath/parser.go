package xpath

import (
	"strconv"

	"github.com/chrisuehlinger/vellum/tree"
)

// item is either a single token or a nested sequence that was enclosed in
// brackets or parentheses. Grouping happens once, before parsing proper.
type item struct {
	tok   token
	group []item
}

func (it item) isGroup() bool { return it.group != nil }

func (it item) is(t tokenType) bool { return !it.isGroup() && it.tok.typ == t }

func itemPos(it item) int {
	if it.isGroup() {
		return itemPos(it.group[0])
	}
	return it.tok.position
}

// match reports whether items starts with the given pattern. A zero entry
// matches any single item, which is how grouped contents are addressed.
func match(items []item, pattern ...tokenType) bool {
	if len(items) < len(pattern) {
		return false
	}
	return matchesPattern(items, pattern)
}

func matchExact(items []item, pattern ...tokenType) bool {
	if len(items) != len(pattern) {
		return false
	}
	return matchesPattern(items, pattern)
}

func matchesPattern(items []item, pattern []tokenType) bool {
	for i, p := range pattern {
		if p == 0 {
			continue
		}
		if !items[i].is(p) {
			return false
		}
	}
	return true
}

// groupBrackets nests the contents of balanced brackets and parentheses.
// The enclosing tokens stay in place, so a predicate appears as the items
// [ ( … ) ] respectively [ [ … ] ].
func groupBrackets(tokens []token) ([]item, error) {
	var result []item
	depth := 0
	var openTok token
	openIdx := -1

	for i, tok := range tokens {
		switch tok.typ {
		case tokenOpenBracket, tokenOpenParens:
			if depth == 0 {
				openTok, openIdx = tok, i
			}
			depth++
		case tokenCloseBracket, tokenCloseParens:
			if depth == 0 {
				return nil, errParse(tok.position, "unbalanced %q", tok.text)
			}
			depth--
			if depth == 0 {
				if !complementing(openTok.typ, tok.typ) {
					return nil, errParse(tok.position, "%q does not close %q", tok.text, openTok.text)
				}
				contents, err := groupBrackets(tokens[openIdx+1 : i])
				if err != nil {
					return nil, err
				}
				result = append(result, item{tok: openTok})
				if len(contents) > 0 {
					result = append(result, item{group: contents})
				}
				result = append(result, item{tok: tok})
			}
		default:
			if depth == 0 {
				result = append(result, item{tok: tok})
			}
		}
	}
	if depth != 0 {
		return nil, errParse(openTok.position, "unclosed %q", openTok.text)
	}
	return result, nil
}

func complementing(opening, closing tokenType) bool {
	switch opening {
	case tokenOpenBracket:
		return closing == tokenCloseBracket
	case tokenOpenParens:
		return closing == tokenCloseParens
	}
	return false
}

// expandAxes rewrites the abbreviations //, . and .. into their verbose
// forms so that the step parser only deals with one shape.
func expandAxes(items []item) []item {
	var result []item
	for _, it := range items {
		if !it.isGroup() {
			pos := it.tok.position
			switch it.tok.typ {
			case tokenSlashSlash:
				result = append(result,
					tokenItem(pos, "/", tokenSlash),
					tokenItem(pos, "descendant-or-self", tokenName),
					tokenItem(pos, "::", tokenAxisSeparator),
					tokenItem(pos, "node", tokenName),
					tokenItem(pos, "(", tokenOpenParens),
					tokenItem(pos, ")", tokenCloseParens),
					tokenItem(pos, "/", tokenSlash),
				)
				continue
			case tokenDot:
				result = append(result,
					tokenItem(pos, "self", tokenName),
					tokenItem(pos, "::", tokenAxisSeparator),
					tokenItem(pos, "node", tokenName),
					tokenItem(pos, "(", tokenOpenParens),
					tokenItem(pos, ")", tokenCloseParens),
				)
				continue
			case tokenDotDot:
				result = append(result,
					tokenItem(pos, "parent", tokenName),
					tokenItem(pos, "::", tokenAxisSeparator),
					tokenItem(pos, "node", tokenName),
					tokenItem(pos, "(", tokenOpenParens),
					tokenItem(pos, ")", tokenCloseParens),
				)
				continue
			}
		}
		result = append(result, it)
	}
	return result
}

func tokenItem(pos int, text string, typ tokenType) item {
	return item{tok: token{position: pos, text: text, typ: typ}}
}

// splitItems partitions on a separator type. Empty partitions are kept so
// that callers can reject them with a useful message.
func splitItems(items []item, sep tokenType) [][]item {
	parts := [][]item{nil}
	for _, it := range items {
		if it.is(sep) {
			parts = append(parts, nil)
		} else {
			parts[len(parts)-1] = append(parts[len(parts)-1], it)
		}
	}
	return parts
}

func parse(expressionText string) (*expression, error) {
	tokens, err := tokenize(expressionText)
	if err != nil {
		return nil, err
	}
	items, err := groupBrackets(tokens)
	if err != nil {
		return nil, err
	}

	var paths []*locationPath
	for _, part := range splitItems(items, tokenPaseq) {
		if len(part) == 0 {
			return nil, errParse(0, "empty location path")
		}
		path, err := parseLocationPath(part)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return &expression{paths: paths}, nil
}

func parseLocationPath(items []item) (*locationPath, error) {
	items = expandAxes(items)
	pos := itemPos(items[0])
	absolute := items[0].is(tokenSlash)

	parts := splitItems(items, tokenSlash)
	if absolute {
		parts = parts[1:]
	}

	steps := make([]*locationStep, 0, len(parts))
	for _, part := range parts {
		if len(part) == 0 {
			return nil, errParse(pos, "a location path must not contain empty steps")
		}
		step, err := parseLocationStep(part)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return &locationPath{absolute: absolute, steps: steps}, nil
}

func parseLocationStep(items []item) (*locationStep, error) {
	pos := itemPos(items[0])
	ax := axisChild

	if match(items, tokenName, tokenAxisSeparator) {
		name := items[0].tok.text
		a, ok := axesByName[name]
		if !ok {
			return nil, errParse(items[0].tok.position, "unknown axis %q", name)
		}
		ax = a
		items = items[2:]
	} else if match(items, tokenStrudel) {
		ax = axisAttribute
		items = items[1:]
	}

	hasPrefix := false
	prefix := ""
	if match(items, tokenName, tokenColon, tokenName) {
		prefix = items[0].tok.text
		hasPrefix = true
		items = items[2:]
	}

	var test nodeTest
	switch {
	case match(items, tokenName, tokenOpenParens, tokenCloseParens):
		if hasPrefix {
			return nil, errParse(items[0].tok.position, "a node type test does not take a prefix")
		}
		t, err := nodeTypeByName(items[0].tok)
		if err != nil {
			return nil, err
		}
		test = t
		items = items[3:]
	case match(items, tokenName, tokenAsterisk):
		test = nameStartTest{prefix: prefix, hasPrefix: hasPrefix, start: items[0].tok.text}
		items = items[2:]
	case match(items, tokenAsterisk):
		test = nameStartTest{prefix: prefix, hasPrefix: hasPrefix}
		items = items[1:]
	case match(items, tokenName):
		test = nameMatchTest{prefix: prefix, hasPrefix: hasPrefix, local: items[0].tok.text}
		items = items[1:]
	default:
		return nil, errParse(pos, "missing or invalid node test")
	}

	var predicates []evaluationNode
	for match(items, tokenOpenBracket) {
		if match(items, tokenOpenBracket, tokenCloseBracket) {
			return nil, errParse(items[0].tok.position, "empty predicate")
		}
		if !match(items, tokenOpenBracket, 0, tokenCloseBracket) || !items[1].isGroup() {
			return nil, errParse(items[0].tok.position, "malformed predicate")
		}
		predicate, err := parseEvaluationExpression(items[1].group)
		if err != nil {
			return nil, err
		}
		// A bare number selects by position.
		if av, ok := predicate.(anyValue); ok {
			if _, ok := av.value.(int); ok {
				predicate = booleanOperator{
					op:    "=",
					left:  functionCall{name: "position", fn: xpathFunctions["position"]},
					right: av,
				}
			}
		}
		predicates = append(predicates, predicate)
		items = items[3:]
	}

	if len(items) != 0 {
		return nil, errParse(itemPos(items[0]), "unexpected content in location step")
	}
	return &locationStep{axis: ax, test: test, predicates: predicates}, nil
}

func nodeTypeByName(tok token) (nodeTest, error) {
	switch tok.text {
	case "node":
		return nodeTypeTest{}, nil
	case "text":
		return nodeTypeTest{nodeType: tree.TextNode}, nil
	case "comment":
		return nodeTypeTest{nodeType: tree.CommentNode}, nil
	case "processing-instruction":
		return nodeTypeTest{nodeType: tree.ProcessingInstructionNode}, nil
	}
	return nil, errParse(tok.position, "unknown node type test %q", tok.text)
}

var binaryOperators = []struct {
	typ  tokenType
	text string
}{
	{tokenName, "or"},
	{tokenName, "and"},
	{tokenOtherOp, "="},
	{tokenOtherOp, "!="},
	{tokenOtherOp, "<="},
	{tokenOtherOp, "<"},
	{tokenOtherOp, ">="},
	{tokenOtherOp, ">"},
}

func parseEvaluationExpression(items []item) (evaluationNode, error) {
	if len(items) == 0 {
		return nil, errParse(0, "empty expression")
	}
	pos := itemPos(items[0])

	if matchExact(items, tokenNumber) {
		n, err := strconv.Atoi(items[0].tok.text)
		if err != nil {
			return nil, errParse(pos, "invalid number %q", items[0].tok.text)
		}
		return anyValue{value: n}, nil
	}

	if matchExact(items, tokenString) {
		text := items[0].tok.text
		return anyValue{value: text[1 : len(text)-1]}, nil
	}

	if matchExact(items, tokenStrudel, tokenName) {
		return hasAttribute{local: items[1].tok.text}, nil
	}

	if matchExact(items, tokenStrudel, tokenName, tokenColon, tokenName) {
		return hasAttribute{prefix: items[1].tok.text, hasPrefix: true, local: items[3].tok.text}, nil
	}

	if matchExact(items, tokenName, tokenOpenParens, tokenCloseParens) {
		return makeFunctionCall(items[0].tok, nil)
	}

	if matchExact(items, tokenName, tokenOpenParens, 0, tokenCloseParens) && items[2].isGroup() {
		return makeFunctionCall(items[0].tok, items[2].group)
	}

	if matchExact(items, tokenOpenParens, 0, tokenCloseParens) && items[1].isGroup() {
		return parseEvaluationExpression(items[1].group)
	}

	// Binary operators are bound by scanning for the first occurrence in
	// ascending precedence, so that the last-bound operator sits highest in
	// the resulting evaluation order.
	for _, op := range binaryOperators {
		for i, it := range items {
			if it.isGroup() || it.tok.typ != op.typ || it.tok.text != op.text {
				continue
			}
			left, err := parseEvaluationExpression(items[:i])
			if err != nil {
				return nil, err
			}
			right, err := parseEvaluationExpression(items[i+1:])
			if err != nil {
				return nil, err
			}
			if op.text != "and" && op.text != "or" {
				left = coerceAttributeReference(left)
				right = coerceAttributeReference(right)
			}
			return booleanOperator{op: op.text, left: left, right: right}, nil
		}
	}

	return nil, errParse(pos, "unparsable expression")
}

func makeFunctionCall(nameTok token, argItems []item) (evaluationNode, error) {
	fn, ok := xpathFunctions[nameTok.text]
	if !ok {
		return nil, errParse(nameTok.position, "unknown function %q", nameTok.text)
	}
	var args []evaluationNode
	if argItems != nil {
		for _, part := range splitItems(argItems, tokenComma) {
			if len(part) == 0 {
				return nil, errParse(nameTok.position, "empty argument in call to %s()", nameTok.text)
			}
			arg, err := parseEvaluationExpression(part)
			if err != nil {
				return nil, err
			}
			args = append(args, coerceAttributeReference(arg))
		}
	}
	return functionCall{name: nameTok.text, fn: fn, args: args}, nil
}

// In comparisons and function arguments an attribute reference stands for
// its value rather than for its presence.
func coerceAttributeReference(node evaluationNode) evaluationNode {
	if ha, ok := node.(hasAttribute); ok {
		return attributeValue{prefix: ha.prefix, hasPrefix: ha.hasPrefix, local: ha.local}
	}
	return node
}
