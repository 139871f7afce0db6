package css

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/vellum/parser"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		selector string
		expected string
	}{
		{"div", ".//div"},
		{"*", ".//*"},
		{"ns|div", ".//ns:div"},
		{"ns|*", ".//*"},
		{"#main", `.//*[@id="main"]`},
		{"div#main", `.//div[@id="main"]`},
		{".note", `.//*[contains(concat(" ", @class, " "), " note ")]`},
		{"p.note.draft", `.//p[contains(concat(" ", @class, " "), " note ")]` +
			`[contains(concat(" ", @class, " "), " draft ")]`},
		{"[lang]", ".//*[@lang]"},
		{"[n|lang]", ".//*[@n:lang]"},
		{`[lang="de"]`, `.//*[@lang="de"]`},
		{"[lang=de]", `.//*[@lang="de"]`},
		{`[href^="http"]`, `.//*[starts-with(@href, "http")]`},
		{`[href*="example"]`, `.//*[contains(@href, "example")]`},
		{`[rel~="next"]`, `.//*[contains(concat(" ", @rel, " "), " next ")]`},
		{"div p", ".//div//p"},
		{"div > p", ".//div/p"},
		{"div>p", ".//div/p"},
		{"h1 ~ p", ".//h1/following-sibling::p"},
		{"h1 + p", `.//h1/following-sibling::*[name()="p" and position()=1]`},
		{"h1 + *", ".//h1/following-sibling::*[position()=1]"},
		{"h1, h2", ".//h1 | .//h2"},
		{"div p.note, #toc > li",
			`.//div//p[contains(concat(" ", @class, " "), " note ")]` +
				` | .//*[@id="toc"]/li`},
		{`p[class~="x"][lang]`, `.//p[contains(concat(" ", @class, " "), " x ")][@lang]`},
	}
	for _, c := range cases {
		got, err := Translate(c.selector)
		require.NoError(t, err, "selector %q", c.selector)
		require.Equal(t, c.expected, got, "selector %q", c.selector)
	}
}

func TestTranslateErrors(t *testing.T) {
	for _, selector := range []string{
		"", ",", "div,", "div >", "p:first-child", "[=x]", "[a!=b]",
		`[a="unterminated]`, "[a=]", "[a", ".", ".#x", "#", "div &",
	} {
		_, err := Translate(selector)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "selector %q", selector)
	}
}

func TestEvaluate(t *testing.T) {
	doc, err := parser.ParseString(
		`<sec><h1/><p class="note">one</p><p>two</p><ul id="toc"><li>x</li></ul></sec>`, nil)
	require.NoError(t, err)
	root := doc.Root()

	results, err := Evaluate(root.AsNode(), "p.note", nil)
	require.NoError(t, err)
	require.Equal(t, 1, results.Size())
	require.Equal(t, "one", results.First().FullText())

	results, err = Evaluate(root.AsNode(), "h1 + p", nil)
	require.NoError(t, err)
	require.Equal(t, 1, results.Size())
	require.Equal(t, "one", results.First().FullText())

	results, err = Evaluate(root.AsNode(), "#toc > li, h1", nil)
	require.NoError(t, err)
	require.Equal(t, 2, results.Size())
	require.Equal(t, "h1", results.First().Tag().LocalName())
	require.Equal(t, "li", results.Last().Tag().LocalName())

	_, err = Evaluate(root.AsNode(), "p:last-child", nil)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestEvaluateWithNamespaces(t *testing.T) {
	doc, err := parser.ParseString(`<root xmlns:n="http://n"><n:x/><y/></root>`, nil)
	require.NoError(t, err)
	root := doc.Root()

	results, err := Evaluate(root.AsNode(), "n|x", nil)
	require.NoError(t, err)
	require.Equal(t, 1, results.Size())
	require.Equal(t, "x", results.First().Tag().LocalName())
}
