package xpath

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/vellum/parser"
	"github.com/chrisuehlinger/vellum/tree"
)

const sample = `<root><a id="1">first</a><b id="2">second<c/></b><a id="3">third</a><!--note--><?pi data?></root>`

func parseFixture(t *testing.T, document string) *tree.Tag {
	t.Helper()
	doc, err := parser.ParseString(document, nil)
	require.NoError(t, err)
	return doc.Root()
}

func localNames(t *testing.T, results *QueryResults) []string {
	t.Helper()
	var names []string
	for _, n := range results.All() {
		require.NotNil(t, n.Tag())
		names = append(names, n.Tag().LocalName())
	}
	return names
}

func evaluate(t *testing.T, context *tree.Tag, expression string) *QueryResults {
	t.Helper()
	results, err := Evaluate(context.AsNode(), expression, nil)
	require.NoError(t, err)
	return results
}

func TestChildAxis(t *testing.T) {
	root := parseFixture(t, sample)
	results := evaluate(t, root, "a")
	require.Equal(t, []string{"a", "a"}, localNames(t, results))
	require.Equal(t, "1", results.First().Tag().Attributes().Get("id").Value())
	require.Equal(t, "3", results.Last().Tag().Attributes().Get("id").Value())
}

func TestAbbreviatedSteps(t *testing.T) {
	root := parseFixture(t, sample)

	self := evaluate(t, root, ".")
	require.Equal(t, 1, self.Size())
	require.Same(t, root.AsNode(), self.First())

	require.Equal(t, 0, evaluate(t, root, "..").Size())

	b := evaluate(t, root, "b").First().Tag()
	parent := evaluate(t, b, "..")
	require.Same(t, root.AsNode(), parent.First())

	require.Equal(t, []string{"a", "a"}, localNames(t, evaluate(t, root, "./a")))
	require.Equal(t, []string{"c"}, localNames(t, evaluate(t, root, "//c")))
}

func TestAbsolutePaths(t *testing.T) {
	root := parseFixture(t, sample)
	c := evaluate(t, root, "b/c").First().Tag()

	require.Equal(t, []string{"a", "a"}, localNames(t, evaluate(t, c, "/root/a")))
	require.Equal(t, []string{"root"}, localNames(t, evaluate(t, c, "/root")))
	require.Equal(t, 0, evaluate(t, c, "/nosuch").Size())
}

func TestVerboseAxes(t *testing.T) {
	root := parseFixture(t, sample)
	b := evaluate(t, root, "b").First().Tag()

	require.Equal(t, []string{"a", "b", "c", "a"},
		localNames(t, evaluate(t, root, "descendant::*")))
	require.Equal(t, []string{"a"},
		localNames(t, evaluate(t, b, "following-sibling::a")))
	require.Equal(t, []string{"a"},
		localNames(t, evaluate(t, b, "preceding-sibling::*")))
	require.Equal(t, []string{"root"},
		localNames(t, evaluate(t, b, "ancestor::*")))
	require.Equal(t, []string{"root", "b"},
		localNames(t, evaluate(t, b, "ancestor-or-self::*")))
	require.Equal(t, []string{"b"},
		localNames(t, evaluate(t, b, "self::*")))
	require.Equal(t, []string{"a"},
		localNames(t, evaluate(t, b, "following::a")))
	require.Equal(t, []string{"root"},
		localNames(t, evaluate(t, b, "parent::root")))
}

func TestNodeTypeTests(t *testing.T) {
	root := parseFixture(t, sample)

	texts := evaluate(t, root, "*/text()")
	require.Equal(t, 3, texts.Size())
	require.Equal(t, "first", texts.First().Text().Content())

	comments := evaluate(t, root, "comment()")
	require.Equal(t, 1, comments.Size())
	require.Equal(t, "note", comments.First().Comment().Content())

	instructions := evaluate(t, root, "processing-instruction()")
	require.Equal(t, 1, instructions.Size())
	require.Equal(t, "pi", instructions.First().ProcessingInstruction().Target())

	// node() takes everything: 3 tags, a comment and an instruction.
	require.Equal(t, 5, evaluate(t, root, "node()").Size())
}

func TestNameTests(t *testing.T) {
	root := parseFixture(t, sample)

	require.Equal(t, []string{"a", "b", "a"}, localNames(t, evaluate(t, root, "*")))
	require.Equal(t, []string{"a", "a"}, localNames(t, evaluate(t, root, "a*")))
	require.Equal(t, 0, evaluate(t, root, "x*").Size())
}

func TestPredicates(t *testing.T) {
	root := parseFixture(t, sample)

	byValue := evaluate(t, root, `a[@id="3"]`)
	require.Equal(t, 1, byValue.Size())
	require.Equal(t, "third", byValue.First().FullText())

	require.Equal(t, "3",
		evaluate(t, root, "a[2]").First().Tag().Attributes().Get("id").Value())
	require.Equal(t, "3",
		evaluate(t, root, "a[last()]").First().Tag().Attributes().Get("id").Value())
	require.Equal(t, []string{"a"},
		localNames(t, evaluate(t, root, "*[last()]")))
	require.Equal(t, []string{"b", "a"},
		localNames(t, evaluate(t, root, "*[position()>1]")))

	require.Equal(t, 2, evaluate(t, root, "a[@id]").Size())
	require.Equal(t, 0, evaluate(t, root, "a[not(@id)]").Size())
	require.Nil(t, evaluate(t, root, "a[not(@id)]").First())

	require.Equal(t, []string{"b"},
		localNames(t, evaluate(t, root, `b[contains(text(), "econ")]`)))
	require.Equal(t, []string{"a"},
		localNames(t, evaluate(t, root, `*[starts-with(@id, "1")]`)))
	require.Equal(t, []string{"b"},
		localNames(t, evaluate(t, root, `*[name() = "b"]`)))
	require.Equal(t, 2, evaluate(t, root, `a[@id="1" or @id="3"]`).Size())
	require.Equal(t, 1, evaluate(t, root, `a[@id > "1"]`).Size())
	require.Equal(t, 3,
		evaluate(t, root, `*[boolean(@id) and not(contains(name(), "x"))]`).Size())
	require.Equal(t, 1,
		evaluate(t, root, `*[concat(name(), @id) = "b2"]`).Size())
}

func TestStackedPredicatesRecountPositions(t *testing.T) {
	root := parseFixture(t, sample)

	// The first bracket narrows to both a tags, the second one counts
	// positions among those.
	results := evaluate(t, root, `*[@id != "2"][2]`)
	require.Equal(t, 1, results.Size())
	require.Equal(t, "3", results.First().Tag().Attributes().Get("id").Value())
}

func TestUnions(t *testing.T) {
	root := parseFixture(t, sample)

	require.Equal(t, []string{"a", "b", "a"}, localNames(t, evaluate(t, root, "a|b")))
	// Overlapping paths must not duplicate results.
	require.Equal(t, []string{"a", "b", "a"}, localNames(t, evaluate(t, root, "a|*")))
}

func TestAttributeAxis(t *testing.T) {
	root := parseFixture(t, sample)

	ids := evaluate(t, root, "*/@id")
	require.Equal(t, 3, ids.Size())
	require.Empty(t, ids.All())
	var values []string
	for _, attr := range ids.Attributes() {
		values = append(values, attr.Value())
	}
	require.Equal(t, []string{"1", "2", "3"}, values)

	require.Equal(t, 0, evaluate(t, root, "@*").Size())
	b := evaluate(t, root, "b").First().Tag()
	require.Equal(t, 1, evaluate(t, b, "@id").Size())
	require.Equal(t, 1, evaluate(t, b, "@i*").Size())
	require.Equal(t, 0, evaluate(t, b, "@nosuch").Size())
}

func TestAttributeAxisRestrictions(t *testing.T) {
	root := parseFixture(t, sample)
	var evaluation *EvaluationError

	_, err := Evaluate(root.AsNode(), "@id/a", nil)
	require.ErrorAs(t, err, &evaluation)

	_, err = Evaluate(root.AsNode(), "@id[1]", nil)
	require.ErrorAs(t, err, &evaluation)
}

func TestNamespacePrefixes(t *testing.T) {
	root := parseFixture(t, `<root xmlns:n="http://n"><n:x/><y/></root>`)

	// declarations in scope of the context node
	require.Equal(t, []string{"x"}, localNames(t, evaluate(t, root, "n:x")))

	// caller-provided declarations take precedence
	results, err := Evaluate(root.AsNode(), "m:x", tree.Namespaces{"m": "http://n"})
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, localNames(t, results))

	var evaluation *EvaluationError
	_, err = Evaluate(root.AsNode(), "z:x", nil)
	require.ErrorAs(t, err, &evaluation)
}

func TestDefaultNamespace(t *testing.T) {
	root := parseFixture(t, `<root xmlns="http://d"><x/></root>`)

	require.Equal(t, []string{"x"}, localNames(t, evaluate(t, root, "x")))

	// overriding the default namespace makes unprefixed names miss
	results, err := Evaluate(root.AsNode(), "x", tree.Namespaces{"": "http://other"})
	require.NoError(t, err)
	require.Equal(t, 0, results.Size())
}

func TestParseErrors(t *testing.T) {
	root := parseFixture(t, sample)

	for _, expression := range []string{
		"a[", ")", "a[]", "a[@id=]", "child::", "sideways::a", "a[unknownfn()]",
		`a[@id="unterminated]`, "a//", "!", "a%b",
	} {
		_, err := Evaluate(root.AsNode(), expression, nil)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, "expression %q", expression)
		require.GreaterOrEqual(t, parseErr.Position, 0)
	}
}

func TestResultsFiltering(t *testing.T) {
	root := parseFixture(t, sample)

	all := evaluate(t, root, "*")
	filtered := all.FilteredBy(func(n *tree.Node) bool {
		return n.Tag().LocalName() == "a"
	})
	require.Equal(t, []string{"a", "a"}, localNames(t, filtered))
	require.Equal(t, []string{"a", "b", "a"}, localNames(t, all.InDocumentOrder()))
}

func TestFetchOrCreateBuildsMissingBranches(t *testing.T) {
	root := parseFixture(t, "<root/>")

	c, err := FetchOrCreate(root, "a/b/c", nil)
	require.NoError(t, err)
	require.Equal(t, "c", c.LocalName())
	require.Equal(t, "<root><a><b><c/></b></a></root>", root.String())

	again, err := FetchOrCreate(root, "a/b/c", nil)
	require.NoError(t, err)
	require.Same(t, c, again)
}

func TestFetchOrCreateExtendsPartialBranches(t *testing.T) {
	root := parseFixture(t, "<root><a><b/></a></root>")

	_, err := FetchOrCreate(root, "a/c", nil)
	require.NoError(t, err)
	require.Equal(t, "<root><a><b/><c/></a></root>", root.String())
}

func TestFetchOrCreateSetsPredicatedAttributes(t *testing.T) {
	root := parseFixture(t, "<root/>")

	entry, err := FetchOrCreate(root, `entry[@kind="x" and @n="1"][@extra="y"]`, nil)
	require.NoError(t, err)
	require.Equal(t, "x", entry.Attributes().Get("kind").Value())
	require.Equal(t, "1", entry.Attributes().Get("n").Value())
	require.Equal(t, "y", entry.Attributes().Get("extra").Value())

	matched, err := FetchOrCreate(root, `entry[@kind="x" and @n="1"][@extra="y"]`, nil)
	require.NoError(t, err)
	require.Same(t, entry, matched)
}

func TestFetchOrCreatePicksFirstMatch(t *testing.T) {
	root := parseFixture(t, `<root><a id="1"/><a id="2"/></root>`)

	first, err := FetchOrCreate(root, "a", nil)
	require.NoError(t, err)
	require.Equal(t, "1", first.Attributes().Get("id").Value())

	// with no complete match, the branch walk also follows the first
	// candidate of each step
	_, err = FetchOrCreate(root, "a/sub", nil)
	require.NoError(t, err)
	require.Equal(t, `<root><a id="1"><sub/></a><a id="2"/></root>`, root.String())
}

func TestFetchOrCreateResolvesPrefixes(t *testing.T) {
	root := parseFixture(t, "<root/>")

	tag, err := FetchOrCreate(root, "n:item", tree.Namespaces{"n": "http://n"})
	require.NoError(t, err)
	require.Equal(t, "http://n", tag.Namespace())
	require.Equal(t, "item", tag.LocalName())
}

func TestFetchOrCreateRejectsAmbiguousExpressions(t *testing.T) {
	root := parseFixture(t, sample)

	for _, expression := range []string{
		"/a", "a|b", "descendant::a", "//a", "a[1]", "a[text()]",
		`a[@id="1" or @id="2"]`, "..", "comment()",
	} {
		_, err := FetchOrCreate(root, expression, nil)
		var invalid *tree.InvalidOperationError
		require.ErrorAs(t, err, &invalid, "expression %q", expression)
	}
}

func TestFetchOrCreateAllowsLeadingSelfStep(t *testing.T) {
	root := parseFixture(t, "<root/>")

	a, err := FetchOrCreate(root, "./a", nil)
	require.NoError(t, err)
	require.Equal(t, "a", a.LocalName())
	require.Same(t, root.AsNode(), a.AsNode().Parent().AsNode())
}
