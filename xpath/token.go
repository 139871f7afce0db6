package xpath

import "strings"

type tokenType uint8

const (
	tokenString tokenType = iota + 1
	tokenNumber
	tokenName
	tokenSlashSlash
	tokenSlash
	tokenAsterisk
	tokenAxisSeparator
	tokenColon
	tokenDotDot
	tokenDot
	tokenOpenBracket
	tokenCloseBracket
	tokenStrudel
	tokenOpenParens
	tokenCloseParens
	tokenComma
	tokenPaseq
	tokenOtherOp
)

type token struct {
	position int
	text     string
	typ      tokenType
}

// tokenize scans an expression into tokens, dropping whitespace. Quoted
// strings keep their delimiters; the parser strips them.
func tokenize(expression string) ([]token, error) {
	var result []token
	runes := []rune(expression)
	i := 0
	for i < len(runes) {
		start := i
		r := runes[i]
		switch {
		case r == ' ' || r == '\n' || r == '\t':
			i++
			continue
		case r == '"' || r == '\'':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == r {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, &ParseError{Position: start, Message: "unterminated string literal"}
			}
			result = append(result, token{start, string(runes[i : end+1]), tokenString})
			i = end + 1
		case r >= '0' && r <= '9':
			j := i
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				j++
			}
			result = append(result, token{start, string(runes[i:j]), tokenNumber})
			i = j
		case isNameStartRune(r):
			j := i
			for j < len(runes) && isNameRune(runes[j]) {
				j++
			}
			result = append(result, token{start, string(runes[i:j]), tokenName})
			i = j
		case r == '/':
			if i+1 < len(runes) && runes[i+1] == '/' {
				result = append(result, token{start, "//", tokenSlashSlash})
				i += 2
			} else {
				result = append(result, token{start, "/", tokenSlash})
				i++
			}
		case r == '*':
			result = append(result, token{start, "*", tokenAsterisk})
			i++
		case r == ':':
			if i+1 < len(runes) && runes[i+1] == ':' {
				result = append(result, token{start, "::", tokenAxisSeparator})
				i += 2
			} else {
				result = append(result, token{start, ":", tokenColon})
				i++
			}
		case r == '.':
			if i+1 < len(runes) && runes[i+1] == '.' {
				result = append(result, token{start, "..", tokenDotDot})
				i += 2
			} else {
				result = append(result, token{start, ".", tokenDot})
				i++
			}
		case r == '[':
			result = append(result, token{start, "[", tokenOpenBracket})
			i++
		case r == ']':
			result = append(result, token{start, "]", tokenCloseBracket})
			i++
		case r == '@':
			result = append(result, token{start, "@", tokenStrudel})
			i++
		case r == '(':
			result = append(result, token{start, "(", tokenOpenParens})
			i++
		case r == ')':
			result = append(result, token{start, ")", tokenCloseParens})
			i++
		case r == ',':
			result = append(result, token{start, ",", tokenComma})
			i++
		case r == '|':
			result = append(result, token{start, "|", tokenPaseq})
			i++
		case strings.ContainsRune("+-!<>=", r):
			if (r == '!' || r == '<' || r == '>') && i+1 < len(runes) && runes[i+1] == '=' {
				result = append(result, token{start, string(runes[i : i+2]), tokenOtherOp})
				i += 2
			} else if r == '!' {
				return nil, &ParseError{Position: start, Message: "unrecognized token"}
			} else {
				result = append(result, token{start, string(r), tokenOtherOp})
				i++
			}
		default:
			return nil, &ParseError{Position: start, Message: "unrecognized token"}
		}
	}
	return result, nil
}

// Name characters per the XML specification's NCName production.
func isNameStartRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r == '_', r >= 'a' && r <= 'z':
		return true
	case r >= 0x00C0 && r <= 0x00D6, r >= 0x00D8 && r <= 0x00F6,
		r >= 0x00F8 && r <= 0x02FF, r >= 0x0370 && r <= 0x037D,
		r >= 0x037F && r <= 0x1FFF,
		r >= 0x200C && r <= 0x200D, r >= 0x2070 && r <= 0x218F,
		r >= 0x2C00 && r <= 0x2FEF, r >= 0x3001 && r <= 0xD7FF,
		r >= 0xF900 && r <= 0xFDCF, r >= 0xFDF0 && r <= 0xFFFD,
		r >= 0x10000 && r <= 0xEFFFF:
		return true
	}
	return false
}

func isNameRune(r rune) bool {
	if isNameStartRune(r) {
		return true
	}
	switch {
	case r == '-', r == '.', r >= '0' && r <= '9', r == 0x00B7,
		r >= 0x0300 && r <= 0x036F, r >= 0x203F && r <= 0x2040:
		return true
	}
	return false
}
