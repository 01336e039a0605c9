package cache

import (
	"testing"
)

func TestNormalizeStripsVolatileAttributes(t *testing.T) {
	a := `<mxfile modified="2024-05-01T12:00:00Z" host="archlens"><diagram/></mxfile>`
	b := `<mxfile modified="2024-06-02T08:30:00Z" host="archlens"><diagram/></mxfile>`

	if Changed(a, b) {
		t.Error("documents differing only in modified attribute reported as changed")
	}
}

func TestNormalizeCollapsesWhitespaceAndLineEndings(t *testing.T) {
	a := "<root>\r\n  <cell/>\r\n</root>"
	b := "<root><cell/></root>"

	if Changed(a, b) {
		t.Error("whitespace-only difference reported as changed")
	}
}

func TestChangedDetectsRealDifference(t *testing.T) {
	a := `<root><cell id="x"/></root>`
	b := `<root><cell id="y"/></root>`

	if !Changed(a, b) {
		t.Error("structural difference not detected")
	}
}

func TestStoreAndLoad(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	if got := c.Load(); got != "" {
		t.Errorf("Load on empty cache = %q, want empty", got)
	}
	if err := c.Store("<doc/>"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if got := c.Load(); got != "<doc/>" {
		t.Errorf("Load = %q, want stored document", got)
	}
}
