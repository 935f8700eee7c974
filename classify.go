// classify.go — static token classification tables (§3).
//
// Every table here is a hashed set or map, each remembering its longest key
// so membership tests can short-circuit on over-length candidates before
// ever touching the map — the O(1) optimization the spec calls out as
// "preserved in any implementation". The tables are read-only after
// package init and shared by the lexer (operator longest-match, regex/
// division disambiguation) and the parser (fold-role dispatch, precedence
// ordering).
package synmacro

// tokenSet is a hashed set of token strings that remembers its longest
// member, so a caller can reject any candidate longer than that before
// doing the map lookup.
type tokenSet struct {
	members map[string]bool
	longest int
}

func newTokenSet(words ...string) tokenSet {
	ts := tokenSet{members: make(map[string]bool, len(words))}
	for _, w := range words {
		ts.members[w] = true
		if len(w) > ts.longest {
			ts.longest = len(w)
		}
	}
	return ts
}

func (ts tokenSet) Contains(s string) bool {
	if len(s) > ts.longest {
		return false
	}
	return ts.members[s]
}

// operatorSet: every token the lexer can emit that is not an identifier,
// literal, or bare grouping punctuation. Used to disambiguate "not an
// operator" in the invocation/dereference reclassification rule (§4.4).
var operatorSet = newTokenSet(
	"+", "-", "*", "/", "%",
	"u+", "u-", "u!", "u~", "u++", "u--", "++", "--",
	"=", "==", "!=", "<", "<=", ">", ">=",
	"&&", "||", "!", "~",
	",", ";", ".", "?", ":", "->",
	"new", "typeof", "return", "throw", "break", "continue", "var", "const",
)

// precedenceGroups lists token sets from highest to lowest fold priority;
// a token's position in this slice is its reduce index, consumed by
// parser.go's Pass A. "()" and "[]" stand for the post-reclassification
// invocation/dereference node, reduced via the same pass as "." (member
// access lowers to a "[]" dereference node too — see parser.go).
var precedenceGroups = [][]string{
	{"()", "[]", "."},                     // member access, call, index
	{"++", "--"},                          // postfix
	{"u+", "u-", "u!", "u~", "u++", "u--", "new", "typeof"}, // prefix unary
	{"*", "/", "%"},
	{"+", "-"},
	{"<", "<=", ">", ">="},
	{"==", "!="},
	{"&&"},
	{"||"},
	{"?"}, // ternary (paired with ":" as its group closer during lexing)
	{"="},
	{"->"}, // dfn pack's infix lambda sugar; see macro.go
	{","},
	{"function", "if", "else", "for", "while", "do", "try", "catch", "with"}, // grab-until-block
	{"return", "throw", "break", "continue"},                                // optional right-fold
	{";"},
}

var groupIndexOf = func() map[string]int {
	m := make(map[string]int)
	for i, group := range precedenceGroups {
		for _, tok := range group {
			m[tok] = i
		}
	}
	return m
}()

// groupOf returns the precedence-group index for data, if it participates
// in folding at all.
func groupOf(data string) (int, bool) {
	i, ok := groupIndexOf[data]
	return i, ok
}

// rightAssociative: folded from high ribbon-index to low within their
// group (Pass A), and consulted by Node.Flatten to know which side a
// binary chain grows from.
var rightAssociative = map[string]bool{
	"u+": true, "u-": true, "u!": true, "u~": true, "u++": true, "u--": true,
	"new": true, "typeof": true,
	"?": true, "=": true, "->": true,
	"return": true, "throw": true, "break": true, "continue": true,
}

// Fold-role sets (§4.4).
var (
	binaryRole = newTokenSet(
		"+", "-", "*", "/", "%", ",", ";", ".", "=", "->",
		"<", "<=", ">", ">=", "==", "!=", "&&", "||",
	)
	prefixUnaryRole = newTokenSet(
		"u+", "u-", "u!", "u~", "u++", "u--", "new", "typeof",
	)
	postfixUnaryRole = newTokenSet("++", "--")
	ternaryRole      = newTokenSet("?")
	grabUntilBlockRole = newTokenSet(
		"function", "if", "else", "for", "while", "do", "try", "catch", "with",
	)
	optionalRightFoldRole = newTokenSet("return", "throw", "break", "continue", "else")
	bracketRole            = newTokenSet("(", "[")
)

// valueDisallowing: keywords that cannot themselves be a call/index target,
// so a following "(" or "[" never reclassifies as invocation/dereference
// (§4.4).
var valueDisallowing = newTokenSet("function", "if", "for", "while", "catch")

// groupCloser maps an opener to its matching closer (§3).
var groupCloser = map[string]string{
	"(": ")",
	"[": "]",
	"{": "}",
	"?": ":",
}

// blockContinuation maps a grab-until-block construct to the keyword that,
// if it immediately follows the construct's consumed block, is absorbed as
// its continuation (§3, §4.4).
var blockContinuation = map[string]string{
	"if":    "else",
	"do":    "while",
	"try":   "catch",
	"catch": "finally",
}

// grabMax is the maximum number of right siblings a grab-until-block
// construct folds before it must see a block opener ("{" or ";"). function
// takes up to two: an optional name, then its parameter list.
var grabMax = map[string]int{
	"function": 2,
	"if":       1,
	"else":     0,
	"for":      1,
	"while":    1,
	"do":       0,
	"try":      0,
	"catch":    1,
	"with":     1,
}
