package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/vellum/tree"
)

func TestParseAssemblesDocument(t *testing.T) {
	f, err := os.Open("testdata/simple.xml")
	require.NoError(t, err)
	defer f.Close()

	doc, err := Parse(f, nil)
	require.NoError(t, err)

	require.Len(t, doc.Prologue(), 1)
	require.Equal(t, "header", doc.Prologue()[0].Comment().Content())
	require.Len(t, doc.Epilogue(), 1)
	require.Equal(t, "proc", doc.Epilogue()[0].ProcessingInstruction().Target())

	root := doc.Root()
	require.Equal(t, "catalog", root.LocalName())
	entries := tree.Snapshot(root.AsNode().Children(tree.IsTag))
	require.Len(t, entries, 2)
	require.Equal(t, "alpha", entries[0].FullText())
	require.Equal(t, "2", entries[1].Tag().Attributes().Get("n").Value())
}

func TestParseNamespaces(t *testing.T) {
	raw, err := os.ReadFile("testdata/namespaces.xml")
	require.NoError(t, err)

	doc, err := ParseBytes(raw, nil)
	require.NoError(t, err)
	root := doc.Root()
	require.Equal(t, "http://d", root.Namespace())

	uri, ok := root.Namespaces().Resolve("n")
	require.True(t, ok)
	require.Equal(t, "http://n", uri)

	item := tree.Snapshot(root.AsNode().Children(tree.IsTag))[0].Tag()
	require.Equal(t, "http://n", item.Namespace())
	require.Equal(t, "item", item.LocalName())
	attr := item.Attributes().GetNS("http://n", "kind")
	require.NotNil(t, attr)
	require.Equal(t, "x", attr.Value())

	// recorded declarations keep their prefixes through serialization
	serialized := root.String()
	require.Contains(t, serialized, `xmlns:n="http://n"`)
	require.Contains(t, serialized, "<n:item")
}

func TestParseMergesCharacterData(t *testing.T) {
	raw, err := os.ReadFile("testdata/cdata.xml")
	require.NoError(t, err)

	doc, err := ParseBytes(raw, nil)
	require.NoError(t, err)
	first := doc.Root().AsNode().FirstChild()
	require.NotNil(t, first.Text())
	require.Equal(t, "before<raw & stuff>after", first.Text().Content())
	require.Nil(t, first.NextSibling())
}

func TestParseDeclaredEncoding(t *testing.T) {
	raw, err := os.ReadFile("testdata/latin1.xml")
	require.NoError(t, err)

	doc, err := ParseBytes(raw, nil)
	require.NoError(t, err)
	require.Equal(t, "café", doc.Root().FullText())
}

func TestParseMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"<root>",
		"<root></other>",
		"<a/><b/>",
		"junk<root/>",
		"<root/>trailing",
		"<root attr></root>",
		"<ro ot/>",
	} {
		_, err := ParseString(input, nil)
		var parsing *tree.ParsingError
		require.ErrorAs(t, err, &parsing, "input %q", input)
	}
}

func TestParseOptions(t *testing.T) {
	const input = `<!--pre--><r>a<!--x-->b<?p d?></r>`

	doc, err := ParseString(input, &Options{RemoveComments: true})
	require.NoError(t, err)
	require.Empty(t, doc.Prologue())
	// with the comment gone the two runs of character data merge
	first := doc.Root().AsNode().FirstChild()
	require.Equal(t, "ab", first.Text().Content())

	doc, err = ParseString(input, &Options{RemoveProcessingInstructions: true})
	require.NoError(t, err)
	require.Equal(t, "<r>a<!--x-->b</r>", doc.Root().String())
}

func TestParseReduceWhitespace(t *testing.T) {
	doc, err := ParseString("<r>\n  <p>a   b</p>\n</r>", &Options{ReduceWhitespace: true})
	require.NoError(t, err)
	require.Equal(t, "<r><p>a b</p></r>", doc.Root().String())
}

func TestParseRoundTrip(t *testing.T) {
	files, err := filepath.Glob("testdata/*.xml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		raw, err := os.ReadFile(file)
		require.NoError(t, err)

		doc, err := ParseBytes(raw, nil)
		require.NoError(t, err, "file %s", file)
		first, err := doc.Serialize(tree.SerializationOptions{})
		require.NoError(t, err)

		reparsed, err := ParseString(first, nil)
		require.NoError(t, err, "file %s", file)
		second, err := reparsed.Serialize(tree.SerializationOptions{})
		require.NoError(t, err)

		require.Equal(t, first, second, "file %s", file)
	}
}
