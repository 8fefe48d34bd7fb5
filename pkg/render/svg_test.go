package render

import (
	"bytes"
	"context"
	"testing"
)

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44">`
	if !bytes.Contains(out, []byte(want)) {
		t.Errorf("normalizeViewBox() = %s, want root tag %s", out, want)
	}
}

func TestNormalizeViewBoxUntouched(t *testing.T) {
	tests := [][]byte{
		[]byte(`<svg width="1" height="1"></svg>`),
		[]byte(`<svg viewBox="0 0 0 10"></svg>`),
	}
	for _, in := range tests {
		if out := normalizeViewBox(in); !bytes.Equal(out, in) {
			t.Errorf("normalizeViewBox(%s) = %s, want unchanged", in, out)
		}
	}
}

func TestRenderDOT(t *testing.T) {
	dot := "digraph G { a -> b; }\n"
	out, err := Render(context.Background(), dot, FormatDOT, 1)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != dot {
		t.Errorf("Render(dot) = %q, want source", out)
	}
}

func TestRenderUnsupported(t *testing.T) {
	if _, err := Render(context.Background(), "digraph G { a; }", "gif", 1); err == nil {
		t.Error("Render(gif) should fail")
	}
}

func TestSVG(t *testing.T) {
	svg, err := SVG(context.Background(), "digraph G { a -> b; }")
	if err != nil {
		t.Fatalf("SVG() error = %v", err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("SVG() output lacks a normalized viewBox:\n%s", svg)
	}
}
