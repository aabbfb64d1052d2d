package latex

import "strings"

// latexReplacer neutralizes every character with structural meaning in
// LaTeX. strings.Replacer works in a single left-to-right pass, so
// replacement text is never rescanned and a backslash inserted by one rule
// cannot be mangled by another.
var latexReplacer = strings.NewReplacer(
	"\\", `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// Escape neutralizes LaTeX structural characters in text. It is total and
// pure. It is NOT idempotent: escaping already-escaped text escapes the
// introduced backslashes again, so callers escape exactly once, at the
// document-building boundary.
func Escape(text string) string {
	return latexReplacer.Replace(text)
}

func escapeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Escape(s)
	}
	return out
}
