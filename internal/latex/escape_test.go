package latex

import (
	"strings"
	"testing"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Built Go services", "Built Go services"},
		{"ampersand", "R&D team", `R\&D team`},
		{"percent", "cut latency 30%", `cut latency 30\%`},
		{"dollar", "saved $5k", `saved \$5k`},
		{"hash", "issue #42", `issue \#42`},
		{"underscore", "snake_case", `snake\_case`},
		{"braces", "map{k}", `map\{k\}`},
		{"tilde", "~/bin", `\textasciitilde{}/bin`},
		{"caret", "x^2", `x\textasciicircum{}2`},
		{"backslash", `C:\temp`, `C:\textbackslash{}temp`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.in); got != tt.want {
				t.Fatalf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeSinglePass(t *testing.T) {
	// The backslash introduced by escaping & must not itself be escaped.
	got := Escape(`\&`)
	want := `\textbackslash{}\&`
	if got != want {
		t.Fatalf("Escape(`\\&`) = %q, want %q", got, want)
	}
}

func TestEscapeAllSpecialsCompileSafe(t *testing.T) {
	in := `100% of R&D spent $0 on #tags and under_scores`
	got := Escape(in)

	// Every structural character must be preceded by a backslash.
	for i, r := range got {
		switch r {
		case '%', '&', '$', '#', '_':
			if i == 0 || got[i-1] != '\\' {
				t.Fatalf("unescaped %q at %d in %q", r, i, got)
			}
		}
	}
	if !strings.Contains(got, `100\% of R\&D`) {
		t.Fatalf("unexpected escape output: %q", got)
	}
}
