// Package css translates CSS selectors into equivalent XPath expressions
// over vellum trees. The supported subset covers type and universal
// selectors with optional ns| prefixes, id, class and attribute selectors,
// the descendant, child, next-sibling and subsequent-sibling combinators and
// selector groups.
package css

import "fmt"

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenString
	tokenHash
	tokenDelim
	tokenWhitespace
	tokenComma
	tokenOpenBracket
	tokenCloseBracket
)

type token struct {
	typ      tokenType
	value    string
	delim    rune
	position int
}

func (t token) String() string {
	switch t.typ {
	case tokenEOF:
		return "<EOF>"
	case tokenIdent:
		return fmt.Sprintf("<IDENT %q>", t.value)
	case tokenString:
		return fmt.Sprintf("<STRING %q>", t.value)
	case tokenHash:
		return fmt.Sprintf("<HASH %q>", t.value)
	case tokenDelim:
		return fmt.Sprintf("<DELIM %q>", string(t.delim))
	case tokenWhitespace:
		return "<WHITESPACE>"
	case tokenComma:
		return "<COMMA>"
	case tokenOpenBracket:
		return "<[>"
	case tokenCloseBracket:
		return "<]>"
	}
	return "<UNKNOWN>"
}

// tokenize scans a selector. Whitespace runs collapse into one token since
// they can act as the descendant combinator.
func tokenize(input string) ([]token, error) {
	var result []token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		start := i
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f':
			for i < len(runes) && isWhitespaceRune(runes[i]) {
				i++
			}
			result = append(result, token{typ: tokenWhitespace, position: start})
		case r == '"' || r == '\'':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == r {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, errParse(start, "unterminated string")
			}
			result = append(result, token{
				typ: tokenString, value: string(runes[i+1 : end]), position: start})
			i = end + 1
		case r == '#':
			j := i + 1
			for j < len(runes) && isIdentRune(runes[j]) {
				j++
			}
			if j == i+1 {
				return nil, errParse(start, "expected an identifier after #")
			}
			result = append(result, token{
				typ: tokenHash, value: string(runes[i+1 : j]), position: start})
			i = j
		case isIdentStartRune(r):
			j := i
			for j < len(runes) && isIdentRune(runes[j]) {
				j++
			}
			result = append(result, token{
				typ: tokenIdent, value: string(runes[i:j]), position: start})
			i = j
		case r == ',':
			result = append(result, token{typ: tokenComma, position: start})
			i++
		case r == '[':
			result = append(result, token{typ: tokenOpenBracket, position: start})
			i++
		case r == ']':
			result = append(result, token{typ: tokenCloseBracket, position: start})
			i++
		default:
			result = append(result, token{typ: tokenDelim, delim: r, position: start})
			i++
		}
	}
	result = append(result, token{typ: tokenEOF, position: len(runes)})
	return result, nil
}

func isWhitespaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func isIdentStartRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x80
}

func isIdentRune(r rune) bool {
	return isIdentStartRune(r) || r == '-' || (r >= '0' && r <= '9')
}
