package css

import (
	"strings"

	"github.com/chrisuehlinger/vellum/tree"
	"github.com/chrisuehlinger/vellum/xpath"
)

// Translate compiles a selector into an XPath expression that is relative
// to the evaluation's context node, matching anywhere in its subtree.
// Selector groups become unions.
func Translate(selector string) (string, error) {
	tokens, err := tokenize(selector)
	if err != nil {
		return "", err
	}
	parser := &selectorParser{tokens: tokens}
	groups, err := parser.parseGroups()
	if err != nil {
		return "", err
	}

	paths := make([]string, 0, len(groups))
	for _, compounds := range groups {
		path, err := translateComplex(compounds)
		if err != nil {
			return "", err
		}
		paths = append(paths, path)
	}
	return strings.Join(paths, " | "), nil
}

// Evaluate translates the selector and queries the tree with node as the
// context node. See the xpath package for the result and namespace
// semantics.
func Evaluate(node *tree.Node, selector string, namespaces tree.Namespaces) (*xpath.QueryResults, error) {
	expression, err := Translate(selector)
	if err != nil {
		return nil, err
	}
	return xpath.Evaluate(node, expression, namespaces)
}

type combinatorType int

const (
	combinatorNone combinatorType = iota
	combinatorDescendant
	combinatorChild
	combinatorNextSibling
	combinatorSubsequentSibling
)

// compound is a sequence of simple selectors applying to one tag, plus the
// combinator that connects it to the following compound.
type compound struct {
	position   int
	prefix     string
	hasPrefix  bool
	name       string // empty for the universal selector
	predicates []string
	combinator combinatorType
}

type selectorParser struct {
	tokens []token
	pos    int
}

func (p *selectorParser) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *selectorParser) peek(offset int) token {
	pos := p.pos + offset
	if pos >= len(p.tokens) || pos < 0 {
		return token{typ: tokenEOF}
	}
	return p.tokens[pos]
}

func (p *selectorParser) consume() token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *selectorParser) skipWhitespace() bool {
	skipped := false
	for p.current().typ == tokenWhitespace {
		p.consume()
		skipped = true
	}
	return skipped
}

// parseGroups parses a comma separated selector list into chains of
// compound selectors.
func (p *selectorParser) parseGroups() ([][]*compound, error) {
	var groups [][]*compound
	p.skipWhitespace()
	for {
		complexSel, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		groups = append(groups, complexSel)

		p.skipWhitespace()
		if p.current().typ == tokenComma {
			p.consume()
			p.skipWhitespace()
			continue
		}
		break
	}
	if tok := p.current(); tok.typ != tokenEOF {
		return nil, errParse(tok.position, "unexpected %s", tok)
	}
	return groups, nil
}

func (p *selectorParser) parseComplex() ([]*compound, error) {
	var compounds []*compound
	for {
		c, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, c)

		hadWhitespace := p.skipWhitespace()
		tok := p.current()
		if tok.typ == tokenDelim {
			switch tok.delim {
			case '>':
				p.consume()
				p.skipWhitespace()
				c.combinator = combinatorChild
				continue
			case '+':
				p.consume()
				p.skipWhitespace()
				c.combinator = combinatorNextSibling
				continue
			case '~':
				p.consume()
				p.skipWhitespace()
				c.combinator = combinatorSubsequentSibling
				continue
			}
		}
		if hadWhitespace && startsCompound(tok) {
			c.combinator = combinatorDescendant
			continue
		}
		return compounds, nil
	}
}

func startsCompound(tok token) bool {
	switch tok.typ {
	case tokenIdent, tokenHash, tokenOpenBracket:
		return true
	case tokenDelim:
		return tok.delim == '*' || tok.delim == '.' || tok.delim == '|'
	}
	return false
}

func (p *selectorParser) parseCompound() (*compound, error) {
	c := &compound{position: p.current().position}
	if !startsCompound(p.current()) {
		return nil, errParse(c.position, "expected a selector, got %s", p.current())
	}

	// A leading type or universal selector, optionally with a ns| prefix.
	if err := p.parseTypeSelector(c); err != nil {
		return nil, err
	}

	for {
		tok := p.current()
		switch {
		case tok.typ == tokenHash:
			p.consume()
			literal, err := xpathLiteral(tok.value, tok.position)
			if err != nil {
				return nil, err
			}
			c.predicates = append(c.predicates, "[@id="+literal+"]")
		case tok.typ == tokenDelim && tok.delim == '.':
			p.consume()
			name := p.current()
			if name.typ != tokenIdent {
				return nil, errParse(name.position, "expected a class name")
			}
			p.consume()
			literal, err := xpathLiteral(" "+name.value+" ", name.position)
			if err != nil {
				return nil, err
			}
			c.predicates = append(c.predicates,
				`[contains(concat(" ", @class, " "), `+literal+")]")
		case tok.typ == tokenOpenBracket:
			predicate, err := p.parseAttributeMatcher()
			if err != nil {
				return nil, err
			}
			c.predicates = append(c.predicates, predicate)
		case tok.typ == tokenDelim && tok.delim == ':':
			return nil, errParse(tok.position, "pseudo-classes are not supported")
		default:
			return c, nil
		}
	}
}

// parseTypeSelector consumes a leading type or universal selector when one
// is present. Compounds like ".note" leave the name empty, standing for any
// tag.
func (p *selectorParser) parseTypeSelector(c *compound) error {
	tok := p.current()
	universal := tok.typ == tokenDelim && tok.delim == '*'
	if tok.typ != tokenIdent && !universal {
		return nil
	}
	p.consume()

	if p.current().typ == tokenDelim && p.current().delim == '|' &&
		(p.peek(1).typ == tokenIdent || (p.peek(1).typ == tokenDelim && p.peek(1).delim == '*')) {
		p.consume()
		if !universal {
			c.prefix = tok.value
			c.hasPrefix = true
		}
		name := p.consume()
		if name.typ == tokenIdent {
			c.name = name.value
		}
		return nil
	}

	if !universal {
		c.name = tok.value
	}
	return nil
}

// parseAttributeMatcher consumes one bracketed attribute selector and
// returns the equivalent XPath predicate.
func (p *selectorParser) parseAttributeMatcher() (string, error) {
	open := p.consume()
	p.skipWhitespace()
	name := p.current()
	if name.typ != tokenIdent {
		return "", errParse(name.position, "expected an attribute name")
	}
	p.consume()
	reference := "@" + name.value
	if p.current().typ == tokenDelim && p.current().delim == '|' && p.peek(1).typ == tokenIdent {
		p.consume()
		reference = "@" + name.value + ":" + p.consume().value
	}
	p.skipWhitespace()

	tok := p.current()
	if tok.typ == tokenCloseBracket {
		p.consume()
		return "[" + reference + "]", nil
	}
	if tok.typ != tokenDelim {
		return "", errParse(tok.position, "expected an attribute operator or ]")
	}

	operator := string(tok.delim)
	p.consume()
	if operator != "=" {
		eq := p.current()
		if eq.typ != tokenDelim || eq.delim != '=' {
			return "", errParse(eq.position, "expected = after %q", operator)
		}
		p.consume()
		operator += "="
	}
	p.skipWhitespace()

	value := p.current()
	if value.typ != tokenString && value.typ != tokenIdent {
		return "", errParse(value.position, "expected an attribute value")
	}
	p.consume()
	p.skipWhitespace()
	if closing := p.consume(); closing.typ != tokenCloseBracket {
		return "", errParse(closing.position, "unclosed attribute selector")
	}

	switch operator {
	case "=":
		literal, err := xpathLiteral(value.value, value.position)
		if err != nil {
			return "", err
		}
		return "[" + reference + "=" + literal + "]", nil
	case "^=":
		literal, err := xpathLiteral(value.value, value.position)
		if err != nil {
			return "", err
		}
		return "[starts-with(" + reference + ", " + literal + ")]", nil
	case "*=":
		literal, err := xpathLiteral(value.value, value.position)
		if err != nil {
			return "", err
		}
		return "[contains(" + reference + ", " + literal + ")]", nil
	case "~=":
		literal, err := xpathLiteral(" "+value.value+" ", value.position)
		if err != nil {
			return "", err
		}
		return `[contains(concat(" ", ` + reference + `, " "), ` + literal + ")]", nil
	}
	return "", errParse(open.position, "the attribute operator %q is not supported", operator)
}

// translateComplex renders one chain of compounds into a relative location
// path starting at the context node.
func translateComplex(compounds []*compound) (string, error) {
	path := ".//" + compounds[0].step()
	for i := 1; i < len(compounds); i++ {
		c := compounds[i]
		switch compounds[i-1].combinator {
		case combinatorDescendant:
			path += "//" + c.step()
		case combinatorChild:
			path += "/" + c.step()
		case combinatorSubsequentSibling:
			path += "/following-sibling::" + c.step()
		case combinatorNextSibling:
			path += "/following-sibling::" + c.immediateStep()
		default:
			return "", errParse(c.position, "missing combinator")
		}
	}
	return path, nil
}

func (c *compound) nodeTest() string {
	switch {
	case c.name == "":
		return "*"
	case c.hasPrefix:
		return c.prefix + ":" + c.name
	}
	return c.name
}

func (c *compound) step() string {
	return c.nodeTest() + strings.Join(c.predicates, "")
}

// immediateStep renders the compound as the first tag among the following
// siblings, which is what the next-sibling combinator selects. The name is
// checked inside the positional predicate so that intervening tags with
// other names don't match.
func (c *compound) immediateStep() string {
	predicate := "[position()=1]"
	if c.name != "" {
		predicate = `[name()="` + c.name + `" and position()=1]`
	}
	return "*" + predicate + strings.Join(c.predicates, "")
}

// xpathLiteral quotes a string for use in an XPath expression. The
// expression grammar has no escaping, so values containing both quote kinds
// cannot be represented.
func xpathLiteral(s string, position int) (string, error) {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`, nil
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'", nil
	}
	return "", errParse(position, "a value must not contain both quote characters")
}
