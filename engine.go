// engine.go — the front door bundling the symbol generator, macro
// registry, and the package's free functions (Parse, Serialize, Match,
// Compile) into the single stateful object
// a caller constructs once (§6's external interface table).
package synmacro

// Engine is the toolkit's entry point: one Engine owns one symbol
// generator (so fresh names it hands out never collide with another
// Engine's) and one macro registry (so configure() activations are
// scoped to this Engine alone).
type Engine struct {
	Symbols *Symbols
	Macros  *MacroRegistry
}

// NewEngine returns a ready-to-use Engine with an empty macro registry.
func NewEngine() *Engine {
	return &Engine{
		Symbols: NewSymbols("g$"),
		Macros:  NewMacroRegistry(),
	}
}

// Parse lexes and folds src into a tree (§4.3, §4.4).
func (e *Engine) Parse(src string) (*Node, error) {
	return Parse(src)
}

// Serialize renders tree back to source text (§4.8).
func (e *Engine) Serialize(tree *Node) string {
	return Serialize(tree)
}

// Match reports whether pattern matches subject (§4.5).
func (e *Engine) Match(pattern, subject *Node) bool {
	return Match(pattern, subject)
}

// Macro registers a new macro (§4.6).
func (e *Engine) Macro(name string, fn MacroExpander) {
	e.Macros.Macro(name, fn)
}

// RMacro registers a recursive macro whose output is expanded again to a
// fixed point (§4.6).
func (e *Engine) RMacro(name string, fn MacroExpander) {
	e.Macros.RMacro(name, fn)
}

// MacroExpand runs one expansion pass over tree (§4.6).
func (e *Engine) MacroExpand(tree *Node) *Node {
	return e.Macros.Expand(tree)
}

// Compile assembles an environment-capturing rewrite of tree (§4.7).
func (e *Engine) Compile(tree *Node, env map[string]*Node) (rewritten *Node, binder, source string) {
	return Compile(tree, env, e.Symbols)
}

// Configure activates bundled macro packs by name (§6).
func (e *Engine) Configure(names ...string) error {
	return e.Macros.Configure(e.Symbols, names...)
}

// Clone is the spec's clone() operation (§6): it returns a new Engine
// with the same macro registrations visible at the moment of cloning, but
// isolated afterward (§6's "shallow" clone attribute — each engine may
// append without affecting the other; §8 property 8). The symbol
// generator is shared by reference ("ref": both engines see the same
// object) so fresh symbols handed out by either one never collide.
func (e *Engine) Clone() *Engine {
	return &Engine{
		Symbols: e.Symbols,
		Macros:  e.Macros.Clone(),
	}
}

// CloneTree duplicates a tree under one of three node-level policies
// (§4.2's ref/shallow attribute behaviors, generalized with a third
// "deep" mode): "ref" returns tree itself, "shallow" copies the node and
// its direct Children slice only, "deep" recursively clones every
// descendant. This is a tree-level convenience distinct from the
// engine-level Clone above.
func (e *Engine) CloneTree(tree *Node, mode string) *Node {
	return tree.Clone(mode)
}

// Clone is Node's own implementation of CloneTree's policies, so callers
// that only have a *Node (no Engine) can still use it.
func (n *Node) Clone(mode string) *Node {
	switch mode {
	case "ref":
		return n
	case "shallow":
		children := make([]*Node, len(n.Children))
		copy(children, n.Children)
		return &Node{Data: n.Data, Children: children}
	case "deep":
		children := make([]*Node, len(n.Children))
		for i, c := range n.Children {
			children[i] = c.Clone(mode)
		}
		return &Node{Data: n.Data, Children: children}
	default:
		panic("synmacro: unknown clone mode " + mode)
	}
}
