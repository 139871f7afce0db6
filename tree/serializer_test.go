package tree

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func mustDocument(t *testing.T, root *Tag) *Document {
	t.Helper()
	doc, err := NewDocument(root)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestSerializeRaw(t *testing.T) {
	root := NewTagNode("root")
	if err := root.AppendChildren("text", NewTagNode("empty")); err != nil {
		t.Fatal(err)
	}
	doc := mustDocument(t, root)

	got, err := doc.Serialize(SerializationOptions{})
	if err != nil {
		t.Fatal(err)
	}
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root>text<empty/></root>"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	if got := doc.String(); got != "<root>text<empty/></root>" {
		t.Errorf("String must omit the declaration, got %q", got)
	}
}

func TestSerializeEnvelopeOrder(t *testing.T) {
	doc := mustDocument(t, NewTagNode("root"))
	if err := doc.AppendPrologue(NewCommentNode("c")); err != nil {
		t.Fatal(err)
	}
	if err := doc.AppendEpilogue(NewProcessingInstructionNode("pi", "d")); err != nil {
		t.Fatal(err)
	}

	got, err := doc.Serialize(SerializationOptions{})
	if err != nil {
		t.Fatal(err)
	}
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!--c-->\n<root/>\n<?pi d?>"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeEscaping(t *testing.T) {
	root := NewTagNode("root")
	root.Attributes().Set("attr", `a"b<c`)
	if err := root.AppendChildren("1 < 2 & 3 > 2"); err != nil {
		t.Fatal(err)
	}

	got := root.String()
	expected := `<root attr="a&quot;b&lt;c">1 &lt; 2 &amp; 3 &gt; 2</root>`
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeIndented(t *testing.T) {
	root := NewTagNode("root")
	a := NewTagNode("a")
	if err := a.AppendChildren("text"); err != nil {
		t.Fatal(err)
	}
	if err := root.AppendChildren(a, NewTagNode("b")); err != nil {
		t.Fatal(err)
	}
	doc := mustDocument(t, root)

	got, err := doc.Serialize(SerializationOptions{Indentation: "  "})
	if err != nil {
		t.Fatal(err)
	}
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<root>\n  <a>text</a>\n  <b/>\n</root>\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeIndentedKeepsMixedContentInline(t *testing.T) {
	root := NewTagNode("root")
	p := NewTagNode("p")
	hi := NewTagNode("hi")
	if err := hi.AppendChildren("B"); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendChildren("A ", hi, " C"); err != nil {
		t.Fatal(err)
	}
	if err := root.AppendChildren(p); err != nil {
		t.Fatal(err)
	}
	doc := mustDocument(t, root)

	got, err := doc.Serialize(SerializationOptions{Indentation: "  "})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "  <p>A <hi>B</hi> C</p>\n") {
		t.Errorf("text-bearing tags must render on one line, got %q", got)
	}
}

func TestSerializeIndentedHonorsXMLSpace(t *testing.T) {
	root := NewTagNode("root")
	pre := NewTagNode("pre")
	pre.Attributes().SetNS(XMLNamespace, "space", "preserve")
	inner := NewTagNode("inner")
	if err := pre.AppendChildren(inner); err != nil {
		t.Fatal(err)
	}
	if err := root.AppendChildren(pre); err != nil {
		t.Fatal(err)
	}
	doc := mustDocument(t, root)

	got, err := doc.Serialize(SerializationOptions{Indentation: "  "})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `<pre xml:space="preserve"><inner/></pre>`) {
		t.Errorf("xml:space=preserve subtrees must render inline, got %q", got)
	}
}

func TestSerializeWrapped(t *testing.T) {
	p := NewTagNode("p")
	b := NewTagNode("b")
	if err := b.AppendChildren("jumps"); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendChildren("The quick brown fox ", b, " over the lazy dog"); err != nil {
		t.Fatal(err)
	}
	doc := mustDocument(t, p)

	got, err := doc.Serialize(SerializationOptions{Indentation: "  ", TextWidth: 16})
	if err != nil {
		t.Fatal(err)
	}
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<p>\n" +
		"  The quick brown\n" +
		"  fox <b>jumps</b>\n" +
		"  over the lazy\n" +
		"  dog\n" +
		"</p>\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeWrappedKeepsGluedRunsTogether(t *testing.T) {
	p := NewTagNode("p")
	b := NewTagNode("b")
	if err := b.AppendChildren("x"); err != nil {
		t.Fatal(err)
	}
	if err := p.AppendChildren("foo", b, "bar baz"); err != nil {
		t.Fatal(err)
	}
	doc := mustDocument(t, p)

	got, err := doc.Serialize(SerializationOptions{Indentation: "  ", TextWidth: 5})
	if err != nil {
		t.Fatal(err)
	}
	// foo, the tag and bar are not separated by whitespace and must stay on
	// one line even though it exceeds the width budget.
	if !strings.Contains(got, "foo<b>x</b>bar\n") {
		t.Errorf("glued runs were broken apart: %q", got)
	}
}

func TestSerializeAlignedAttributes(t *testing.T) {
	root := NewTagNode("root")
	root.Attributes().Set("x", "1")
	root.Attributes().Set("label", "2")
	doc := mustDocument(t, root)

	got, err := doc.Serialize(SerializationOptions{Indentation: "  ", AlignAttributes: true})
	if err != nil {
		t.Fatal(err)
	}
	expected := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<root\n" +
		"       x=\"1\"\n" +
		"   label=\"2\"/>\n"
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeConsolidatesNamespaces(t *testing.T) {
	root := NewTagNodeNS("http://u", "root")
	child := NewTagNodeNS("http://u", "child")
	other := NewTagNodeNS("http://v", "other")
	if err := root.AppendChildren(child, other); err != nil {
		t.Fatal(err)
	}

	got, err := root.Serialize(SerializationOptions{})
	if err != nil {
		t.Fatal(err)
	}
	expected := `<root xmlns="http://u" xmlns:ns0="http://v"><child/><ns0:other/></root>`
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeHonorsSourceDeclarations(t *testing.T) {
	root := NewTagNodeNS("http://u", "root")
	root.Declare("pre", "http://u")
	if err := root.AppendChildren(NewTagNodeNS("http://u", "child")); err != nil {
		t.Fatal(err)
	}

	got, err := root.Serialize(SerializationOptions{})
	if err != nil {
		t.Fatal(err)
	}
	expected := `<pre:root xmlns:pre="http://u"><pre:child/></pre:root>`
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeHonorsNamespaceOverrides(t *testing.T) {
	root := NewTagNodeNS("http://u", "root")

	got, err := root.Serialize(SerializationOptions{
		Namespaces: Namespaces{"u": "http://u"},
	})
	if err != nil {
		t.Fatal(err)
	}
	expected := `<u:root xmlns:u="http://u"/>`
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeQualifiedAttributes(t *testing.T) {
	root := NewTagNode("root")
	root.Attributes().SetNS("http://w", "attr", "v")
	root.Attributes().SetNS(XMLNamespace, "id", "i1")

	got, err := root.Serialize(SerializationOptions{})
	if err != nil {
		t.Fatal(err)
	}
	expected := `<root xmlns:ns0="http://w" ns0:attr="v" xml:id="i1"/>`
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestSerializeNonUTF8Encoding(t *testing.T) {
	root := NewTagNode("root")
	if err := root.AppendChildren("café ☺"); err != nil {
		t.Fatal(err)
	}
	doc := mustDocument(t, root)

	var buf bytes.Buffer
	if err := doc.WriteTo(&buf, SerializationOptions{Encoding: "ISO-8859-1"}); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()
	if !bytes.Contains(out, []byte(`encoding="ISO-8859-1"`)) {
		t.Error("the declaration must name the configured encoding")
	}
	if !bytes.Contains(out, []byte{0xE9}) {
		t.Error("é must be emitted literally in the target encoding")
	}
	if !bytes.Contains(out, []byte("&#9786;")) {
		t.Error("unsupported characters must become character references")
	}
}

func TestSerializeOptionValidation(t *testing.T) {
	doc := mustDocument(t, NewTagNode("root"))
	var invalid *InvalidOperationError

	if _, err := doc.Serialize(SerializationOptions{Indentation: "xx"}); !errors.As(err, &invalid) {
		t.Errorf("expected an InvalidOperationError for non-space indentation, got %v", err)
	}
	if _, err := doc.Serialize(SerializationOptions{Newline: "|"}); !errors.As(err, &invalid) {
		t.Errorf("expected an InvalidOperationError for a strange newline, got %v", err)
	}
	if _, err := doc.Serialize(SerializationOptions{TextWidth: -1}); !errors.As(err, &invalid) {
		t.Errorf("expected an InvalidOperationError for a negative width, got %v", err)
	}
	if err := doc.WriteTo(&bytes.Buffer{}, SerializationOptions{Encoding: "no-such-encoding"}); !errors.As(err, &invalid) {
		t.Errorf("expected an InvalidOperationError for an unknown encoding, got %v", err)
	}
}

func TestNodeStringRendering(t *testing.T) {
	if got := NewCommentNode("c").String(); got != "<!--c-->" {
		t.Errorf("unexpected comment rendering %q", got)
	}
	if got := NewProcessingInstructionNode("t", "d").String(); got != "<?t d?>" {
		t.Errorf("unexpected instruction rendering %q", got)
	}
	if got := NewProcessingInstructionNode("t", "").String(); got != "<?t?>" {
		t.Errorf("unexpected empty instruction rendering %q", got)
	}
	if got := NewTextNode("a < b").String(); got != "a &lt; b" {
		t.Errorf("unexpected text rendering %q", got)
	}
}
