package highlight

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRenderEmptyQueryReturnsSingleSegment(t *testing.T) {
	texts := []string{"", "short", strings.Repeat("lorem ipsum ", 50)}
	for _, text := range texts {
		for _, n := range []int{0, 5, 300} {
			segs := Render(text, "", n)
			if len(segs) != 1 {
				t.Fatalf("Render(%q, \"\", %d) = %d segments, want 1", text, n, len(segs))
			}
			if segs[0].Emphasized {
				t.Errorf("Render(%q, \"\", %d) segment emphasized", text, n)
			}
			if segs[0].Text != Truncate(text, n) {
				t.Errorf("Render(%q, \"\", %d) = %q, want %q", text, n, segs[0].Text, Truncate(text, n))
			}
		}
	}
}

func TestRenderShortTokensIgnored(t *testing.T) {
	segs := Render("to be or not to be", "to be", 300)
	if len(segs) != 1 || segs[0].Emphasized {
		t.Errorf("expected single plain segment, got %+v", segs)
	}
}

func TestRenderMarksMatchesCaseInsensitive(t *testing.T) {
	segs := Render("Cats chase other cats.", "CAT", 300)

	want := []Segment{
		{Text: "Cat", Emphasized: true},
		{Text: "s chase other "},
		{Text: "cat", Emphasized: true},
		{Text: "s."},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments, want %d: %+v", len(segs), len(want), segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestRenderMatchesNonASCIIQuery(t *testing.T) {
	tests := []struct {
		text, query, want string
	}{
		{"Flights to İstanbul today", "İstanbul", "İstanbul"},
		{"Flights to İSTANBUL today", "İstanbul", "İSTANBUL"},
		{"Über alles", "über", "Über"},
		{"a KELVIN scale", "Kelvin", "KELVIN"},
	}
	for _, tt := range tests {
		var got []string
		for _, s := range Render(tt.text, tt.query, 300) {
			if s.Emphasized {
				got = append(got, s.Text)
			}
		}
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("Render(%q, %q) emphasized %q, want [%q]", tt.text, tt.query, got, tt.want)
		}
	}
}

func TestRenderEscapesMetacharacters(t *testing.T) {
	segs := Render("price is $1.00 (approx) or c++ maybe", "c++ (approx)", 300)

	var emphasized []string
	for _, s := range segs {
		if s.Emphasized {
			emphasized = append(emphasized, s.Text)
		}
	}
	if len(emphasized) != 2 || emphasized[0] != "(approx)" || emphasized[1] != "c++" {
		t.Errorf("emphasized = %v, want [(approx) c++]", emphasized)
	}
}

func TestRenderPrefersLongerToken(t *testing.T) {
	segs := Render("searching", "search searching", 300)
	if len(segs) != 1 || !segs[0].Emphasized || segs[0].Text != "searching" {
		t.Errorf("got %+v, want one emphasized \"searching\"", segs)
	}
}

func TestRenderTruncatesBeforeHighlight(t *testing.T) {
	text := "alpha beta gamma delta"
	segs := Render(text, "gamma", 14)

	if got := Plain(segs); got != "alpha beta gam…" {
		t.Errorf("plain = %q, want %q", got, "alpha beta gam…")
	}
	for _, s := range segs {
		if s.Emphasized {
			t.Errorf("split match should not be emphasized, got %+v", s)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 5, "hello…"},
		{"trailing space trimmed", "hello world", 6, "hello…"},
		{"leading space trimmed", "  hello world", 7, "hello…"},
		{"disabled", "hello world", 0, "hello world"},
		{"runes", "日本語のテキスト", 3, "日本語…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncateNeverExceedsLimit(t *testing.T) {
	text := strings.Repeat("ab ", 200)
	got := Truncate(text, 300)
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, Ellipsis)); n > 300 {
		t.Errorf("truncated body has %d runes, want <= 300", n)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("  The quick  the FOX is ok  ")
	want := []string{"The", "quick", "FOX"}
	if len(got) != len(want) {
		t.Fatalf("Tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
