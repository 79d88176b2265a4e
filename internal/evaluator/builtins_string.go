package evaluator

import (
	"fmt"
	"strings"
	"unicode"
)

// stringMethod implements the stringMethods table of
// internal/builtins/signatures.go against a KString receiver.
func stringMethod(recv Value, name string, args []Value) (Value, error) {
	s := recv.Str
	switch name {
	case "empty":
		return Bool(s == ""), nil
	case "append":
		return Str(s + args[0].Str), nil
	case "lower":
		return Str(strings.ToLower(s)), nil
	case "upper":
		return Str(strings.ToUpper(s)), nil
	case "title":
		return Str(titleCase(s)), nil
	case "trim":
		return Str(strings.TrimSpace(s)), nil
	case "trim_left":
		return Str(strings.TrimLeft(s, " \t\r\n")), nil
	case "trim_right":
		return Str(strings.TrimRight(s, " \t\r\n")), nil
	case "starts_with":
		return Bool(strings.HasPrefix(s, args[0].Str)), nil
	case "substr":
		return Str(substr(s, int(args[0].AsInt()), args)), nil
	case "find":
		return Int(int64(strings.Index(s, args[0].Str))), nil
	case "escape":
		return Str(escapeString(s)), nil
	case "camel_case":
		return Str(toCamelCase(s, false)), nil
	case "pascal_case":
		return Str(toCamelCase(s, true)), nil
	case "snake_case":
		return Str(toDelimitedCase(s, '_', false)), nil
	case "macro_case":
		return Str(toDelimitedCase(s, '_', true)), nil
	case "kebab_case":
		return Str(toDelimitedCase(s, '-', false)), nil
	case "split":
		parts := strings.Split(s, args[0].Str)
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = Str(p)
		}
		return Array(elems), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unknown string method %q", name)
}

func stringProperty(recv Value, name string) (Value, error) {
	if name == "size" {
		return Int(int64(len(recv.Str))), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unknown string property %q", name)
}

// substr returns s[start:start+length], or to the end of s when no
// length argument was supplied, clamped to s's bounds.
func substr(s string, start int, args []Value) string {
	if start < 0 {
		start = 0
	}
	if start > len(s) {
		return ""
	}
	end := len(s)
	if len(args) > 1 {
		if l := int(args[1].AsInt()); start+l < end {
			end = start + l
		}
	}
	return s[start:end]
}

func titleCase(s string) string {
	return strings.Title(strings.ToLower(s))
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitWords breaks s into case/delimiter-bounded words, the shared
// first step of every *_case conversion.
func splitWords(s string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]),
			unicode.IsUpper(r) && i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

func toCamelCase(s string, pascal bool) string {
	words := splitWords(s)
	var b strings.Builder
	for i, w := range words {
		lw := strings.ToLower(w)
		if i == 0 && !pascal {
			b.WriteString(lw)
			continue
		}
		b.WriteString(strings.ToUpper(lw[:1]) + lw[1:])
	}
	return b.String()
}

func toDelimitedCase(s string, sep byte, upper bool) string {
	words := splitWords(s)
	for i, w := range words {
		if upper {
			words[i] = strings.ToUpper(w)
		} else {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, string(sep))
}
