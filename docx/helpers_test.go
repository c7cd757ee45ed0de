package docx

import (
	"testing"

	"github.com/tsawler/wordml/xmlnode"
)

const nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// element parses a WordprocessingML fragment and returns its first element.
func element(t *testing.T, fragment string) *xmlnode.Node {
	t.Helper()
	root, err := xmlnode.Parse([]byte(`<w:root xmlns:w="` + nsW + `">` + fragment + `</w:root>`))
	if err != nil {
		t.Fatalf("parsing fragment: %v", err)
	}
	els := root.Elements()
	if len(els) == 0 {
		t.Fatal("fragment has no element")
	}
	return els[0]
}

// part parses a complete part whose root carries the w namespace.
func part(t *testing.T, name, inner string) *xmlnode.Node {
	t.Helper()
	root, err := xmlnode.Parse([]byte(`<w:` + name + ` xmlns:w="` + nsW + `">` + inner + `</w:` + name + `>`))
	if err != nil {
		t.Fatalf("parsing %s: %v", name, err)
	}
	return root
}

func hasWarning(ws []Warning, kind WarningKind) bool {
	for _, w := range ws {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func floatOpt(t *testing.T, name string, got interface{ Get() (float64, bool) }, want float64) {
	t.Helper()
	v, ok := got.Get()
	if !ok {
		t.Errorf("%s unset, want %v", name, want)
		return
	}
	if v != want {
		t.Errorf("%s = %v, want %v", name, v, want)
	}
}
