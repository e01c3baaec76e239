package ics

import (
	"strconv"
	"strings"
)

// parseInt coerces a signed 32 bit decimal INT value. A missing value
// fails the same way non-numeric text does.
func parseInt(property string, p Property) (int32, error) {
	n, err := strconv.ParseInt(p.Value, 10, 32)
	if err != nil {
		return 0, &InvalidPropertyValueError{
			Property: property,
			Found:    p.Value,
			Expected: "INT",
		}
	}
	return int32(n), nil
}

// unescapeText reverses TEXT escaping (RFC 5545 §3.3.11) in a single
// left-to-right pass: \n and \N become a line break, \; \, and \\
// become the bare character. An unrecognized escape passes through
// verbatim, and produced characters are never re-scanned, so input like
// `\\;` unescapes to `\;` and stops there.
func unescapeText(s string) string {
	i := strings.IndexByte(s, '\\')
	if i < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:i])
	for ; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 'n', 'N':
			b.WriteByte('\n')
			i++
		case ';', ',', '\\':
			b.WriteByte(s[i+1])
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
