package xmlnode

import "testing"

const sample = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/><w:jc val="center"/></w:pPr>
      <w:r><w:t xml:space="preserve"> Hello </w:t></w:r>
      <w:r><w:t>World</w:t></w:r>
    </w:p>
    <w:tbl/>
  </w:body>
</w:document>`

func TestParse(t *testing.T) {
	root, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root.Name() != "document" {
		t.Errorf("Name() = %q, want document", root.Name())
	}
	if root.Prefix() != "w" {
		t.Errorf("Prefix() = %q, want w", root.Prefix())
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("<w:document><w:body x=1></w:body></w:document>")); err == nil {
		t.Error("expected error for malformed XML")
	}
	if _, err := Parse(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestNode_Accessors(t *testing.T) {
	root := MustParse(sample)
	body := root.Child("body")
	if body == nil {
		t.Fatal("body not found")
	}

	elems := body.Elements()
	if len(elems) != 2 {
		t.Fatalf("Elements() = %d, want 2", len(elems))
	}
	if elems[0].Name() != "p" || elems[1].Name() != "tbl" {
		t.Errorf("unexpected order: %s, %s", elems[0].Name(), elems[1].Name())
	}

	p := body.Child("w:p")
	runs := p.Children("r")
	if len(runs) != 2 {
		t.Fatalf("Children(r) = %d, want 2", len(runs))
	}
	if got := runs[0].Child("t").Text(); got != " Hello " {
		t.Errorf("Text() = %q, want %q", got, " Hello ")
	}

	t.Run("prefixed attribute", func(t *testing.T) {
		v, ok := p.Child("pPr").Child("pStyle").Attr("val")
		if !ok || v != "Heading1" {
			t.Errorf("Attr(val) = %q, %v", v, ok)
		}
	})

	t.Run("bare attribute queried with prefix", func(t *testing.T) {
		v, ok := p.Child("pPr").Child("jc").Attr("w:val")
		if !ok || v != "center" {
			t.Errorf("Attr(w:val) = %q, %v", v, ok)
		}
	})

	if got := p.Path(); got != "document/body/p" {
		t.Errorf("Path() = %q", got)
	}
}

func TestNode_NilSafety(t *testing.T) {
	var n *Node

	if n.Name() != "" {
		t.Error("Name() on nil should be empty")
	}
	if n.Child("x") != nil {
		t.Error("Child() on nil should be nil")
	}
	if n.Children("x") != nil {
		t.Error("Children() on nil should be nil")
	}
	if n.Elements() != nil {
		t.Error("Elements() on nil should be nil")
	}
	if _, ok := n.Attr("val"); ok {
		t.Error("Attr() on nil should report absence")
	}
	if n.AttrOr("val", "def") != "def" {
		t.Error("AttrOr() on nil should return default")
	}
	if n.Text() != "" {
		t.Error("Text() on nil should be empty")
	}
	if n.HasChild("x") {
		t.Error("HasChild() on nil should be false")
	}

	// Chained lookups through missing elements.
	root := MustParse(sample)
	if _, ok := root.Child("missing").Child("deeper").Attr("val"); ok {
		t.Error("chained lookup through missing elements should report absence")
	}
}
