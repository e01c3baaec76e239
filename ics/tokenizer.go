package ics

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TokenizeError reports a content line that could not be split into a
// property. The reader surfaces it as one item of its output sequence
// and keeps going.
type TokenizeError struct {
	Line   int
	Text   string
	Reason string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Tokenizer splits a calendar byte stream into properties. Folded lines
// (CRLF followed by a space or tab, RFC 5545 §3.1) are joined back into
// one logical line before splitting. Bare LF line endings are accepted.
type Tokenizer struct {
	r    *bufio.Reader
	line int
	err  error // terminal read failure, surfaced once
	done bool
}

// NewTokenizer returns a tokenizer reading content lines from r.
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(r)}
}

// Next returns the next property in the stream, io.EOF at its end, or a
// *TokenizeError for a malformed line. After a *TokenizeError the
// tokenizer has already consumed the bad line and can keep producing. A
// read failure of the underlying stream is different: it is returned
// once and ends the sequence, every later call returns io.EOF.
func (t *Tokenizer) Next() (Property, error) {
	if t.done {
		return Property{}, io.EOF
	}
	for {
		text, line, err := t.logicalLine()
		if err != nil {
			if t.err != nil {
				t.done = true
				return Property{}, t.err
			}
			return Property{}, err
		}
		if text == "" {
			continue
		}
		p, perr := splitContentLine(text)
		if perr != "" {
			return Property{}, &TokenizeError{Line: line, Text: text, Reason: perr}
		}
		return p, nil
	}
}

// logicalLine reads one unfolded line. It returns io.EOF only when no
// data remains; a final line without a trailing newline is still
// returned.
func (t *Tokenizer) logicalLine() (string, int, error) {
	text, err := t.physicalLine()
	if err != nil {
		return "", t.line, err
	}
	start := t.line
	for {
		next, err := t.r.Peek(1)
		if err != nil || (next[0] != ' ' && next[0] != '\t') {
			break
		}
		t.r.Discard(1)
		cont, err := t.physicalLine()
		if err != nil {
			break
		}
		text += cont
	}
	return text, start, nil
}

// physicalLine reads one raw line. A read failure other than io.EOF is
// stashed and reported as io.EOF here; Next turns the stash into the
// final item of the sequence, so a broken stream still ends.
func (t *Tokenizer) physicalLine() (string, error) {
	raw, err := t.r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.err = err
		return "", io.EOF
	}
	if raw == "" {
		return "", io.EOF
	}
	t.line++
	raw = strings.TrimRight(raw, "\r\n")
	return raw, nil
}

// splitContentLine parses NAME(;PARAM=value(,value)*)*:VALUE. Parameter
// values may be double-quoted to carry ':', ';' or ',' literally. The
// returned reason is empty on success.
func splitContentLine(text string) (Property, string) {
	var p Property

	name, rest, found := cutToken(text)
	if name == "" {
		return p, "missing property name"
	}
	if !found {
		return p, "missing value separator"
	}
	p.Name = name

	for strings.HasPrefix(rest, ";") {
		var par Param
		var reason string
		par, rest, reason = splitParam(rest[1:])
		if reason != "" {
			return Property{}, reason
		}
		p.Params = append(p.Params, par)
	}

	if !strings.HasPrefix(rest, ":") {
		return Property{}, "missing value separator"
	}
	p.Value = rest[1:]
	return p, ""
}

// cutToken cuts the leading name token, stopping at the first ';' or
// ':'. found is false when neither separator exists.
func cutToken(s string) (token, rest string, found bool) {
	if i := strings.IndexAny(s, ";:"); i >= 0 {
		return s[:i], s[i:], true
	}
	return s, "", false
}

func splitParam(s string) (Param, string, string) {
	var par Param

	eq := strings.IndexByte(s, '=')
	sep := strings.IndexAny(s, ";:")
	if eq < 0 || (sep >= 0 && sep < eq) {
		return par, s, "malformed parameter"
	}
	par.Name = s[:eq]
	if par.Name == "" {
		return par, s, "malformed parameter"
	}
	s = s[eq+1:]

	for {
		var value string
		var reason string
		value, s, reason = paramValue(s)
		if reason != "" {
			return par, s, reason
		}
		par.Values = append(par.Values, value)
		if !strings.HasPrefix(s, ",") {
			break
		}
		s = s[1:]
	}
	return par, s, ""
}

// paramValue consumes one (possibly quoted) parameter value, leaving
// the ',' or ';' or ':' separator in place.
func paramValue(s string) (string, string, string) {
	if strings.HasPrefix(s, `"`) {
		end := strings.IndexByte(s[1:], '"')
		if end < 0 {
			return "", s, "unterminated quoted parameter value"
		}
		return s[1 : end+1], s[end+2:], ""
	}
	if i := strings.IndexAny(s, ",;:"); i >= 0 {
		return s[:i], s[i:], ""
	}
	return "", s, "missing value separator"
}
