package tree

import "testing"

func TestAttributeOrderIsPreserved(t *testing.T) {
	tag := NewTagNode("tag")
	tag.Attributes().Set("x", "1")
	tag.Attributes().Set("y", "2")
	tag.Attributes().Set("x", "9")

	if got := tag.String(); got != `<tag x="9" y="2"/>` {
		t.Errorf("updating a value must not change its position, got %s", got)
	}
}

func TestAttributeDeleteAndReAdd(t *testing.T) {
	tag := NewTagNode("tag")
	tag.Attributes().Set("x", "1")
	tag.Attributes().Set("y", "2")
	if !tag.Attributes().Delete("x") {
		t.Fatal("expected the attribute to be deleted")
	}
	tag.Attributes().Set("x", "1")

	if got := tag.String(); got != `<tag y="2" x="1"/>` {
		t.Errorf("delete and re-add must move the attribute to the end, got %s", got)
	}
	if tag.Attributes().Delete("missing") {
		t.Error("deleting an absent attribute must report false")
	}
}

func TestAttributeAccess(t *testing.T) {
	tag := NewTagNode("tag")
	tag.Attributes().Set("plain", "a")
	tag.Attributes().SetNS("http://example.com/ns", "scoped", "b")

	if got := tag.Attributes().Len(); got != 2 {
		t.Fatalf("expected 2 attributes, got %d", got)
	}
	if !tag.Attributes().Has("plain") {
		t.Error("Has misses an existing attribute")
	}
	if tag.Attributes().Get("missing") != nil {
		t.Error("Get must return nil for absent attributes")
	}
	scoped := tag.Attributes().Get("{http://example.com/ns}scoped")
	if scoped == nil || scoped.Value() != "b" {
		t.Fatalf("Clark notation lookup failed, got %v", scoped)
	}
	if scoped.UniversalName() != "{http://example.com/ns}scoped" {
		t.Errorf("unexpected universal name %q", scoped.UniversalName())
	}
	if scoped.Owner() != tag {
		t.Error("the attribute does not know its owner")
	}

	scoped.SetValue("changed")
	if tag.Attributes().GetNS("http://example.com/ns", "scoped").Value() != "changed" {
		t.Error("attribute views must be live")
	}
}

func TestAttributesAreClonedByValue(t *testing.T) {
	tag := NewTagNode("tag")
	tag.Attributes().Set("x", "1")

	clone := tag.AsNode().Clone(false).Tag()
	clone.Attributes().Set("x", "2")
	if tag.Attributes().Get("x").Value() != "1" {
		t.Error("mutating a clone's attribute altered the original")
	}
}

func TestParseClarkName(t *testing.T) {
	if got := ParseClarkName("{http://x}local"); got != (QName{Namespace: "http://x", Local: "local"}) {
		t.Errorf("unexpected name %v", got)
	}
	if got := ParseClarkName("plain"); got != (QName{Local: "plain"}) {
		t.Errorf("unexpected name %v", got)
	}
	if got := (QName{Namespace: "http://x", Local: "l"}).String(); got != "{http://x}l" {
		t.Errorf("unexpected rendering %q", got)
	}
}

func TestNamespacesResolve(t *testing.T) {
	ns := Namespaces{"tei": "http://www.tei-c.org/ns/1.0"}
	if uri, ok := ns.Resolve("tei"); !ok || uri != "http://www.tei-c.org/ns/1.0" {
		t.Errorf("unexpected resolution %q %v", uri, ok)
	}
	if uri, ok := ns.Resolve("xml"); !ok || uri != XMLNamespace {
		t.Errorf("the xml prefix must always resolve, got %q %v", uri, ok)
	}
	if uri, ok := ns.Resolve("xmlns"); !ok || uri != XMLNSNamespace {
		t.Errorf("the xmlns prefix must always resolve, got %q %v", uri, ok)
	}
	if _, ok := ns.Resolve("unknown"); ok {
		t.Error("an undeclared prefix must not resolve")
	}
}

func TestTagNamespaceScoping(t *testing.T) {
	outer := NewTagNodeNS("http://outer", "outer")
	outer.Declare("o", "http://outer")
	inner := NewTagNodeNS("http://inner", "inner")
	inner.Declare("i", "http://inner")
	if err := outer.AppendChildren(inner); err != nil {
		t.Fatal(err)
	}

	inScope := inner.Namespaces()
	if inScope["o"] != "http://outer" || inScope["i"] != "http://inner" {
		t.Errorf("unexpected in-scope declarations %v", inScope)
	}
	if prefix, ok := inner.Prefix(); !ok || prefix != "i" {
		t.Errorf("unexpected prefix %q %v", prefix, ok)
	}
}
