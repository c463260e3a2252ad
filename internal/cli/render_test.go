package cli

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderTable_RowsAndAlignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Year", "Balance"},
		Rows: [][]string{
			{"Year 0", "€110,000"},
			{"Year 1", "€139,700"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// top border, header, separator, 2 rows, bottom border
	if len(lines) != 6 {
		t.Fatalf("RenderTable produced %d lines, want 6:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "€139,700") {
		t.Fatalf("rendered table is missing a cell:\n%s", out)
	}

	width := utf8.RuneCountInString(stripANSI(lines[0]))
	for i, l := range lines {
		if w := utf8.RuneCountInString(stripANSI(l)); w != width {
			t.Errorf("line %d width = %d, want %d: %q", i, w, width, stripANSI(l))
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Fatalf("RenderSparkline(nil) = %q, want empty", got)
	}
	got := []rune(RenderSparkline([]float64{100, 101, 102}))
	if len(got) != 3 {
		t.Fatalf("sparkline length = %d, want 3", len(got))
	}
	if got[0] != '▁' || got[2] != '█' {
		t.Fatalf("sparkline = %q, want lowest first and highest last", string(got))
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
