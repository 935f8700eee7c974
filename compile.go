// compile.go — environment-capturing source assembly (§4.7).
//
// compile() does not do lexical-scope analysis (§1's explicit limit on
// scope analysis): it has no notion of shadowing, block scope, or
// parameter binding. It only knows the flat set of names the caller
// declares as "free" — names that must be resolved against a captured
// environment rather than the host's own runtime scope — and rewrites
// every leaf whose Data matches one of those names into a dereference of
// a single fresh parameter. A host interpreter that evaluates the
// assembled source is expected to bind that one parameter to a record
// carrying the actual captured values; see host.go.
package synmacro

// Compile rewrites every free-variable leaf in tree (one whose Data is a
// key of env) into `(<binder>.<name>)`, where binder is a fresh symbol
// from sym. It returns the rewritten tree, the binder name, and the
// assembled source text. env is not returned: it stays the caller's own
// map, unchanged, for the caller to hand to a host interpreter together
// with binder.
func Compile(tree *Node, env map[string]*Node, sym *Symbols) (rewritten *Node, binder string, source string) {
	binder = sym.Fresh()
	rewritten = tree.Rmap(func(n *Node) *Node {
		if len(n.Children) != 0 {
			return nil
		}
		if _, free := env[n.Data]; !free {
			return nil
		}
		return &Node{Data: "[]", Children: []*Node{Leaf(binder), Leaf(n.Data)}}
	})
	source = Serialize(rewritten)
	return rewritten, binder, source
}
