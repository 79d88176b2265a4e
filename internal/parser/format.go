package parser

import (
	"strconv"
	"strings"

	"github.com/tangramlang/tangram/internal/ast"
)

// parseFormatText parses a minimal printf-style width/precision/base/case
// specifier, e.g. "5", "05.2", "x", "08X" (spec.md §3 "Format
// specification"). Unrecognized trailing characters are kept verbatim
// in Raw for the evaluator to fall back on if needed.
func parseFormatText(raw string) *ast.FormatSpec {
	spec := &ast.FormatSpec{Raw: raw, Base: 10}
	s := raw
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	s = s[i:]

	digits := func(in string) (string, string) {
		j := 0
		for j < len(in) && in[j] >= '0' && in[j] <= '9' {
			j++
		}
		return in[:j], in[j:]
	}

	widthStr, rest := digits(s)
	if widthStr != "" {
		if w, err := strconv.Atoi(widthStr); err == nil {
			spec.Width = w
			spec.HasWidth = true
		}
	}
	if strings.HasPrefix(rest, ".") {
		rest = rest[1:]
		precStr, rest2 := digits(rest)
		if precStr != "" {
			if p, err := strconv.Atoi(precStr); err == nil {
				spec.Precision = p
				spec.HasPrec = true
			}
		}
		rest = rest2
	}
	for _, c := range rest {
		switch c {
		case 'x':
			spec.Base = 16
			spec.Lower = true
		case 'X':
			spec.Base = 16
		case 'o':
			spec.Base = 8
		case 'b':
			spec.Base = 2
		}
	}
	return spec
}
