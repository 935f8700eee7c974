// match.go — structural pattern matching over syntax trees (§4.5).
//
// A pattern is itself a *Node; the leaf data "_" is a wildcard that matches
// any single subtree. Matching never backtracks: at each node it compares
// Data (unless the pattern side is "_") then recurses pairwise over
// Children, failing as soon as arity or any subtree disagrees.
package synmacro

// Match reports whether pattern matches subject (§4.5). "_" in the
// pattern matches any subject node, including one with children.
func Match(pattern, subject *Node) bool {
	if pattern == nil || subject == nil {
		return pattern == subject
	}
	if pattern.Data == "_" && len(pattern.Children) == 0 {
		return true
	}
	if pattern.Data != subject.Data {
		return false
	}
	if len(pattern.Children) != len(subject.Children) {
		return false
	}
	for i := range pattern.Children {
		if !Match(pattern.Children[i], subject.Children[i]) {
			return false
		}
	}
	return true
}

// Captures collects the subtrees a wildcard-bearing pattern matched
// against, keyed by the wildcard's position in a pre-order walk of the
// pattern — a convenience beyond the bare match/no-match primitive,
// letting macro bodies (macro.go) refer to "the Nth wildcard" when a
// bundled pack needs the matched pieces rather than just a boolean.
func Captures(pattern, subject *Node) ([]*Node, bool) {
	var caps []*Node
	var walk func(pat, sub *Node) bool
	walk = func(pat, sub *Node) bool {
		if pat == nil || sub == nil {
			return pat == sub
		}
		if pat.Data == "_" && len(pat.Children) == 0 {
			caps = append(caps, sub)
			return true
		}
		if pat.Data != sub.Data || len(pat.Children) != len(sub.Children) {
			return false
		}
		for i := range pat.Children {
			if !walk(pat.Children[i], sub.Children[i]) {
				return false
			}
		}
		return true
	}
	if !walk(pattern, subject) {
		return nil, false
	}
	return caps, true
}
