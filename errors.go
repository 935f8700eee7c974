// errors.go: typed diagnostics and caret-snippet rendering for the syntax
// engine.
//
// What this file does
// --------------------
// Mirrors the teacher's approach to turning low-level lexer/parser failures
// into a readable, Python-style snippet with a caret under the offending
// column. The two fatal conditions this engine names (lexer stall,
// unknown configuration pack) are returned as errors rather than raised
// as panics so callers can decide how to surface them;
// pattern mismatch and expander "no match" are normal flow (see match.go,
// macro.go) and never allocate an error at all.
package synmacro

import (
	"fmt"
	"strings"
)

// LexError reports a lexical failure at a specific source position.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// StallError reports the lexer's termination-invariant check failing: an
// iteration of the scan loop did not advance the cursor. This should never
// happen on any input and indicates an engine bug, not a malformed source.
type StallError struct {
	Line int
	Col  int
}

func (e *StallError) Error() string {
	return fmt.Sprintf("lexer stalled at %d:%d without advancing", e.Line, e.Col)
}

// ParseError reports a parser failure, such as a group opened but never
// closed.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ConfigError reports an unrecognized configuration pack name passed to
// Engine.Configure.
type ConfigError struct {
	Name string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unknown configuration pack: %q", e.Name)
}

// WrapErrorWithSource augments a *LexError, *StallError or *ParseError with
// a caret-annotated snippet of src. Any other error is returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", prettySnippet(src, "LEXICAL ERROR", e.Line, e.Col, e.Msg))
	case *StallError:
		return fmt.Errorf("%s", prettySnippet(src, "LEXER STALL", e.Line, e.Col, "no character was consumed"))
	case *ParseError:
		return fmt.Errorf("%s", prettySnippet(src, "PARSE ERROR", e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// prettySnippet builds a snippet with up to one line of context on each
// side of the offending line and a caret under the (1-based) column.
func prettySnippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", maxInt(col-1, 0)))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
