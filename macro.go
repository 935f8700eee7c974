// macro.go — the macro registry and rmap-based expander (§4.6).
//
// Expansion is a single Rmap pass (node.go), not a fixed point: a node a
// plain Macro/Shape rewrites is never re-descended into, so a macro whose
// own expansion happens to look like another (or its own) trigger form is
// left alone rather than looping or re-expanding. Only RMacro/RShape
// registrations have their output expanded again (see Expand). This "cutoff" semantics
// is what lets the "qs" pack build quasiquoted templates without its
// literal structure being mistaken for further macro calls.
//
// Macros are recognized two ways: by the callee name of an invocation
// node (`qs(...)`, `fn(...)`, ...), or by the bare Data of any node
// shape (used by the "dfn" pack to rewrite "->" nodes, which the core
// grammar folds as an ordinary binary operator — see classify.go).
package synmacro

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// MacroExpander rewrites a matched node into its expansion, or returns
// nil to leave the node (and its subtree) untouched.
type MacroExpander func(*Node) *Node

// MacroRegistry holds the macros active for one Engine.
type MacroRegistry struct {
	byName    map[string]MacroExpander
	byShape   map[string]MacroExpander
	recursive map[string]bool // names/shapes registered via RMacro/RShape (§4.6, §8 property 7)

	// literalTriggers are tried, in registration order, on every node
	// Expand visits that byName/byShape left untouched. Unlike byShape they
	// are not keyed by a single Data value: the "string" pack's #{...}
	// interpolation has to trigger on any string leaf whose content
	// happens to contain "#{", which no single map key can express.
	literalTriggers []MacroExpander
}

// NewMacroRegistry returns an empty registry.
func NewMacroRegistry() *MacroRegistry {
	return &MacroRegistry{
		byName:    make(map[string]MacroExpander),
		byShape:   make(map[string]MacroExpander),
		recursive: make(map[string]bool),
	}
}

// Macro registers a non-recursive macro triggered by an invocation whose
// callee is the bare identifier name (the spec's macro(name, fn)
// operation): its expansion is installed as-is and is not itself
// re-expanded.
func (r *MacroRegistry) Macro(name string, fn MacroExpander) {
	r.byName[name] = fn
	delete(r.recursive, "name:"+name)
}

// RMacro registers a recursive macro (the spec's rmacro(name, fn)
// operation): whatever fn returns is expanded again, to a fixed point,
// before the enclosing Expand pass considers the result final (§8
// property 7). Unlike the old behavior of silently replacing an existing
// non-recursive registration, this is a distinct registration mode.
func (r *MacroRegistry) RMacro(name string, fn MacroExpander) {
	r.byName[name] = fn
	r.recursive["name:"+name] = true
}

// Shape registers a non-recursive macro triggered by any node whose Data
// equals key, independent of whether it is an invocation.
func (r *MacroRegistry) Shape(key string, fn MacroExpander) {
	r.byShape[key] = fn
	delete(r.recursive, "shape:"+key)
}

// RShape is Shape's recursive counterpart, mirroring RMacro.
func (r *MacroRegistry) RShape(key string, fn MacroExpander) {
	r.byShape[key] = fn
	r.recursive["shape:"+key] = true
}

// addLiteralTrigger registers fn to be tried on every node Expand visits,
// independent of invocation-callee name or Data shape. Used internally by
// the "string" pack's #{...} interpolation; not part of the spec's named
// registration operations, so it stays unexported.
func (r *MacroRegistry) addLiteralTrigger(fn MacroExpander) {
	r.literalTriggers = append(r.literalTriggers, fn)
}

// Clone returns a new registry whose byName/byShape/recursive maps and
// literalTriggers slice are shallow copies of r's: a macro registered on
// the clone afterward is invisible to r, and vice versa, but everything
// registered before the clone is shared (§6's "shallow" clone attribute,
// §8 property 8).
func (r *MacroRegistry) Clone() *MacroRegistry {
	clone := &MacroRegistry{
		byName:    make(map[string]MacroExpander, len(r.byName)),
		byShape:   make(map[string]MacroExpander, len(r.byShape)),
		recursive: make(map[string]bool, len(r.recursive)),
	}
	for k, v := range r.byName {
		clone.byName[k] = v
	}
	for k, v := range r.byShape {
		clone.byShape[k] = v
	}
	for k, v := range r.recursive {
		clone.recursive[k] = v
	}
	clone.literalTriggers = append(clone.literalTriggers, r.literalTriggers...)
	return clone
}

// Expand runs one rmap pass over tree, rewriting every node a registered
// macro matches (the spec's macroexpand(tree) operation). A match against
// a name/shape registered through RMacro/RShape is re-expanded in full,
// repeatedly, until the result stops changing, before Rmap's cutoff takes
// over and skips back into it — giving a recursive macro fixed-point
// semantics per call site without ever re-visiting a plain macro's output.
func (r *MacroRegistry) Expand(tree *Node) *Node {
	return tree.Rmap(func(n *Node) *Node {
		if n.IsInvocation() && len(n.Children) == 2 {
			callee := n.Children[0]
			if len(callee.Children) == 0 && callee.Data != "" {
				if fn, ok := r.byName[callee.Data]; ok {
					if result := fn(n); result != nil {
						return r.toFixedPoint(result, r.recursive["name:"+callee.Data])
					}
				}
			}
		}
		if fn, ok := r.byShape[n.Data]; ok {
			if result := fn(n); result != nil {
				return r.toFixedPoint(result, r.recursive["shape:"+n.Data])
			}
		}
		for _, fn := range r.literalTriggers {
			if result := fn(n); result != nil {
				return result
			}
		}
		return nil
	})
}

// toFixedPoint re-runs Expand over result, over and over, until a pass
// produces no further change, when recursive is set; a non-recursive
// macro's result is returned as-is (one pass only).
func (r *MacroRegistry) toFixedPoint(result *Node, recursive bool) *Node {
	if !recursive {
		return result
	}
	for {
		next := r.Expand(result)
		if nodesEqual(next, result) {
			return next
		}
		result = next
	}
}

// nodesEqual is a structural equality check used only to detect the
// fixed point in toFixedPoint; it is not exposed as a general API.
func nodesEqual(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Data != b.Data || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !nodesEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------
// Bundled configuration packs (§6's configure(name...)).
// ---------------------------------------------------------------------

// invocationArgs returns call's flattened argument list as a slice,
// treating a bare single argument (not a "," node) as a one-element list.
func invocationArgs(call *Node) []*Node {
	args := call.Children[1]
	flat := args.Flatten()
	if flat.Data == "," {
		return flat.Children
	}
	return []*Node{flat}
}

// identNames extracts the bare identifier Data from a (possibly
// comma-flattened) parameter list node.
func identNames(params *Node) []string {
	flat := params.Flatten()
	var names []string
	if flat.Data == "," {
		for _, c := range flat.Children {
			names = append(names, c.Data)
		}
		return names
	}
	return []string{flat.Data}
}

// registerQS installs "qs": a quasiquote guard. Its argument is returned
// as a literal template, except that any nested `qu(x)` invocation is
// replaced by x re-expanded through the same registry — the one place a
// quoted template can still splice in live macro output.
func registerQS(r *MacroRegistry) {
	r.Macro("qs", func(call *Node) *Node {
		args := call.Children[1]
		return args.Rmap(func(cur *Node) *Node {
			if cur.IsInvocation() && len(cur.Children) == 2 &&
				cur.Children[0].Data == "qu" && len(cur.Children[0].Children) == 0 {
				return r.Expand(cur.Children[1])
			}
			return nil
		})
	})
}

// registerQG installs "qg": a grouping guard that forces its argument to
// be a single "{" block, so substituting it into a macro template can
// never silently splice multiple statements into the surrounding ribbon.
func registerQG(r *MacroRegistry) {
	r.Macro("qg", func(call *Node) *Node {
		args := call.Children[1]
		if args.IsBlock() {
			return args
		}
		return &Node{Data: "{", Children: []*Node{args}}
	})
}

// registerFN installs "fn" and its companion shorthands (§6): `fn(params,
// body)` builds a two-child "function" node from its two arguments as
// given. The params are not wrapped in a "(" group and the body is wrapped
// neither in a "{" block nor in a "return", so the node does not have the
// shape the parser gives a `function` literal and does not serialize back
// to one. `fn_(body)` is the zero-parameter special case; `let_(bindings, body)`,
// `where_(expr, bindings)`, `when_(expr, cond)` and `unless_(expr, cond)`
// are the remaining members of the spec's `fn` pack, expressed as
// ordinary invocation macros for the reason recorded in DESIGN.md (the
// host grammar has no bracket-chain `fn[params][body]` construct of its
// own — `[...]` is exclusively the dereference shape).
func registerFN(r *MacroRegistry) {
	r.Macro("fn", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 2 {
			return nil
		}
		return &Node{Data: "function", Children: []*Node{argv[0], argv[1]}}
	})
	r.Macro("fn_", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 1 {
			return nil
		}
		return &Node{Data: "function", Children: []*Node{{Data: ","}, argv[0]}}
	})
	// let_(bindings, body): bindings is a "=" chain (flattened by "," when
	// there is more than one) binding a param name to an initial value;
	// lowers to an immediately-invoked function so each name is a true
	// local rather than a substitution into body's text.
	r.Macro("let_", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 2 {
			return nil
		}
		return immediatelyInvokedLet(argv[0], argv[1])
	})
	// where_(expr, bindings) is let_ with expr and bindings swapped, the
	// postfix-clause reading `e, where[b]` calls for in §6.
	r.Macro("where_", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 2 {
			return nil
		}
		return immediatelyInvokedLet(argv[1], argv[0])
	})
	// when_(expr, cond) and unless_(expr, cond) lower to a ternary whose
	// untaken branch is the literal "null" — the host grammar has no
	// "undefined" literal of its own, and this engine performs no
	// evaluation (§1) so it never needs more than a structurally valid
	// placeholder node.
	r.Macro("when_", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 2 {
			return nil
		}
		return &Node{Data: "?", Children: []*Node{argv[1], argv[0], {Data: "null"}}}
	})
	r.Macro("unless_", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 2 {
			return nil
		}
		return &Node{Data: "?", Children: []*Node{argv[1], {Data: "null"}, argv[0]}}
	})
}

// immediatelyInvokedLet builds `(function(names...){return body})(values...)`
// from a "=" (or "," chain of "=") bindings node, giving let_/where_ true
// local-variable semantics rather than a textual substitution.
func immediatelyInvokedLet(bindings, body *Node) *Node {
	flat := bindings.Flatten()
	var pairs []*Node
	if flat.Data == "," {
		pairs = flat.Children
	} else {
		pairs = []*Node{flat}
	}
	var names, values []*Node
	for _, pair := range pairs {
		if pair.Data != "=" || len(pair.Children) != 2 {
			continue
		}
		names = append(names, pair.Children[0])
		values = append(values, pair.Children[1])
	}
	params := &Node{Data: "(", Children: []*Node{{Data: ",", Children: names}}}
	args := &Node{Data: ",", Children: values}
	fn := &Node{Data: "function", Children: []*Node{
		params,
		{Data: "{", Children: []*Node{{Data: "return", Children: []*Node{body}}}},
	}}
	// Wrapped in an explicit "(" group so serialize.go renders the callee
	// as "(function(...){...})" rather than a bare function literal
	// immediately followed by a call's parens, which the host grammar
	// would not parse back the same way.
	grouped := &Node{Data: "(", Children: []*Node{fn}}
	return &Node{Data: "()", Children: []*Node{grouped, args}}
}

// registerDFN installs "dfn": rewrites the core grammar's `params -> body`
// infix node (classify.go registers "->" as an ordinary right-associative
// binary operator) into the same "function" shape "fn" produces.
func registerDFN(r *MacroRegistry) {
	r.Shape("->", func(n *Node) *Node {
		if len(n.Children) != 2 {
			return nil
		}
		return &Node{Data: "function", Children: []*Node{n.Children[0], n.Children[1]}}
	})
}

// registerDefmacro installs "defmacro": `defmacro(name, params, body)`
// defines a brand new named macro at expansion time, substituting each
// parameter's matching argument into body on every later call. This is
// the one pack that mutates the registry itself while expanding, so its
// handler closes over r. It also installs "with_gensyms": `with_gensyms
// (vars, body)` substitutes each named variable in body with a symbol
// fresh from sym, one per name, so a macro's own expansion template can
// introduce temporaries that cannot capture or be captured by the call
// site's names.
func registerDefmacro(r *MacroRegistry, sym *Symbols) {
	r.Macro("defmacro", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 3 {
			return nil
		}
		name := argv[0].Data
		paramNames := identNames(argv[1])
		body := argv[2]
		r.Macro(name, func(innerCall *Node) *Node {
			callArgs := invocationArgs(innerCall)
			result := body
			for i, pname := range paramNames {
				if i >= len(callArgs) {
					break
				}
				result = result.Substitute(pname, callArgs[i])
			}
			return result
		})
		return &Node{Data: "noop"}
	})
	r.Macro("with_gensyms", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) < 2 {
			return nil
		}
		names := identNames(argv[0])
		body := argv[1]
		for _, name := range names {
			body = body.Substitute(name, Leaf(sym.Fresh()))
		}
		return body
	})
}

// registerString installs "string": `string(a, b, c, ...)` left-folds its
// arguments into a "+" chain, the host grammar's existing concatenation
// operator, plus the spec's actual `#{expr}` literal-string interpolation
// (§6, §8): any string leaf whose content contains a "#{...}" run is
// rewritten into the same kind of "+" chain, alternating literal-text
// leaves with the parsed tree of each embedded expression.
func registerString(r *MacroRegistry) {
	r.Macro("string", func(call *Node) *Node {
		argv := invocationArgs(call)
		if len(argv) == 0 {
			return nil
		}
		result := argv[0]
		for _, part := range argv[1:] {
			result = &Node{Data: "+", Children: []*Node{result, part}}
		}
		return result
	})
	r.addLiteralTrigger(func(n *Node) *Node {
		if !n.IsString() {
			return nil
		}
		parts, found := splitInterpolatedString(n.Data)
		if !found {
			return nil
		}
		nodes := make([]*Node, len(parts))
		for i, part := range parts {
			if part.isExpr {
				nodes[i] = r.Expand(part.node)
			} else {
				nodes[i] = part.node
			}
		}
		result := nodes[0]
		for _, nd := range nodes[1:] {
			result = &Node{Data: "+", Children: []*Node{result, nd}}
		}
		return result
	})
}

// interpPart is one piece of a string literal split by
// splitInterpolatedString: either a literal-text leaf (isExpr false) or the
// parsed tree of an embedded "#{...}" expression (isExpr true).
type interpPart struct {
	node   *Node
	isExpr bool
}

// splitInterpolatedString scans raw (a string leaf's Data, delimiters
// included) for "#{...}" runs, brace-balanced so a nested object literal
// or block inside the embedded expression does not end the run early.
// found is false (and parts nil) if raw contains no interpolation, so
// callers can leave an ordinary string literal untouched. Escaped
// characters (a backslash followed by any byte) are copied verbatim and
// never interpreted as the start of a "#{" run.
func splitInterpolatedString(raw string) (parts []interpPart, found bool) {
	if len(raw) < 2 {
		return nil, false
	}
	delim := raw[0]
	body := raw[1 : len(raw)-1]
	litStart := 0
	i := 0
	for i < len(body) {
		if body[i] == '\\' && i+1 < len(body) {
			i += 2
			continue
		}
		if body[i] == '#' && i+1 < len(body) && body[i+1] == '{' {
			depth := 1
			j := i + 2
			for j < len(body) && depth > 0 {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					j++
				}
			}
			if j >= len(body) {
				// Unterminated "#{": treat the "#" as an ordinary character.
				i++
				continue
			}
			if i > litStart {
				parts = append(parts, interpPart{node: Leaf(string(delim) + body[litStart:i] + string(delim))})
			}
			if exprTree, err := Parse(body[i+2 : j]); err == nil {
				parts = append(parts, interpPart{node: exprTree, isExpr: true})
				found = true
			}
			i = j + 1
			litStart = i
			continue
		}
		i++
	}
	if !found {
		return nil, false
	}
	if litStart < len(body) {
		parts = append(parts, interpPart{node: Leaf(string(delim) + body[litStart:] + string(delim))})
	}
	return parts, true
}

// configPacks maps a configure() name to its installer. Every installer
// takes the owning Engine's symbol generator as well as the registry,
// since "defmacro"'s with_gensyms sub-feature needs fresh names. "std"
// bundles all the others, the spec's named union pack.
var configPacks = map[string]func(*MacroRegistry, *Symbols){
	"qs":       func(r *MacroRegistry, sym *Symbols) { registerQS(r) },
	"qg":       func(r *MacroRegistry, sym *Symbols) { registerQG(r) },
	"fn":       func(r *MacroRegistry, sym *Symbols) { registerFN(r) },
	"dfn":      func(r *MacroRegistry, sym *Symbols) { registerDFN(r) },
	"defmacro": registerDefmacro,
	"string":   func(r *MacroRegistry, sym *Symbols) { registerString(r) },
	"std": func(r *MacroRegistry, sym *Symbols) {
		registerQS(r)
		registerQG(r)
		registerFN(r)
		registerDFN(r)
		registerDefmacro(r, sym)
		registerString(r)
	},
}

// Configure activates the named bundled packs on r, returning a
// *ConfigError for any name not in configPacks (§7). sym supplies the
// fresh-symbol source any pack that needs one (currently only
// "defmacro"'s with_gensyms) draws from.
func (r *MacroRegistry) Configure(sym *Symbols, names ...string) error {
	for _, name := range names {
		install, ok := configPacks[name]
		if !ok {
			log.Error(fmt.Sprintf("unknown configuration pack requested: %q", name))
			return &ConfigError{Name: name}
		}
		install(r, sym)
	}
	return nil
}
