package engine

import "strings"

// preprocessSource rewrites probe source into plain zygomys syntax:
//
//	:radius 2        ->  "__kw_radius" 2   keyword arguments become tagged strings
//	(support-area …) ->  (support_area …)  builtin names may be kebab-case
//	; note           ->  // note           Lisp line comments
//
// Keywords keep their hyphens. String literals pass through untouched,
// and a hyphen only becomes an underscore between a name character and a
// letter, so (- 10 5) and (vec3 1 -2 3) keep their minus signs.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"':
			j := stringEnd(source, i)
			out.WriteString(source[i:j])
			i = j
		case c == ';':
			j := lineEnd(source, i)
			out.WriteString("//")
			out.WriteString(strings.TrimLeft(source[i:j], ";"))
			i = j
		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKeywordChar(source[j]) {
				j++
			}
			out.WriteString(`"` + kwPrefix + source[i+1:j] + `"`)
			i = j
		case c == '-' && i > 0 && i+1 < len(source) && isNameChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// stringEnd returns the index just past the string literal opening at i.
// An unterminated literal runs to the end of the source.
func stringEnd(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

func lineEnd(s string, i int) int {
	if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(s)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKeywordChar(c byte) bool {
	return isNameChar(c) || c == '-'
}
