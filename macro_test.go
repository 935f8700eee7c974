package synmacro

import (
	"strconv"
	"strings"
	"testing"
)

func TestMacroExpandReplacesNamedInvocation(t *testing.T) {
	tree := mustParse(t, "double(21)")
	reg := NewMacroRegistry()
	reg.Macro("double", func(call *Node) *Node {
		args := invocationArgs(call)
		return &Node{Data: "*", Children: []*Node{args[0], Leaf("2")}}
	})
	out := reg.Expand(tree)
	if out.Data != "*" || out.Children[1].Data != "2" {
		t.Fatalf("Expand = %+v, want \"*\" node multiplying by 2", out)
	}
}

// TestMacroexpandCutoff is §8 property 6: an expander that returns a
// distinct node stops descent into it, even though that node's own
// structure would match the same macro again and loop forever if the
// cutoff were violated.
func TestMacroexpandCutoff(t *testing.T) {
	reg := NewMacroRegistry()
	calls := 0
	reg.Macro("wrap", func(call *Node) *Node {
		calls++
		args := invocationArgs(call)
		// Expands to another "wrap(...)" invocation — if Expand ever
		// re-descended into its own output this would recurse forever.
		return &Node{Data: "()", Children: []*Node{
			Leaf("wrap"),
			&Node{Data: ",", Children: []*Node{args[0]}},
		}}
	})
	tree := mustParse(t, "wrap(1)")
	out := reg.Expand(tree)
	if calls != 1 {
		t.Fatalf("macro fired %d times, want exactly 1 (cutoff must stop re-descent)", calls)
	}
	if !out.IsInvocation() {
		t.Fatalf("out = %+v, want the one-shot wrap(1) expansion, untouched further", out)
	}
}

// TestRMacroFixedPoint is §8 property 7: rmacro's output is itself
// expanded to a fixed point before the enclosing pass considers it final.
func TestRMacroFixedPoint(t *testing.T) {
	reg := NewMacroRegistry()
	// inc(n) expands to inc(n+1) if n < 3, else the literal n — so inc(0)
	// should fully unwind to the literal "3" in one Expand call when
	// registered as a recursive macro, since each step's output is itself
	// re-expanded.
	reg.RMacro("inc", func(call *Node) *Node {
		args := invocationArgs(call)
		n, ok := args[0].AsNumber()
		if !ok || n >= 3 {
			return args[0]
		}
		next := &Node{Data: ",", Children: []*Node{Leaf(strconv.Itoa(int(n) + 1))}}
		return &Node{Data: "()", Children: []*Node{Leaf("inc"), next}}
	})
	tree := mustParse(t, "inc(0)")
	out := reg.Expand(tree)
	if out.Data != "3" {
		t.Fatalf("rmacro fixed point = %+v, want literal \"3\"", out)
	}
}

// TestMacroNonRecursiveStopsAtOnePass shows the contrast: a plain Macro
// registration (not RMacro) only ever applies once.
func TestMacroNonRecursiveStopsAtOnePass(t *testing.T) {
	reg := NewMacroRegistry()
	reg.Macro("inc", func(call *Node) *Node {
		args := invocationArgs(call)
		n, _ := args[0].AsNumber()
		next := &Node{Data: ",", Children: []*Node{Leaf(strconv.Itoa(int(n) + 1))}}
		return &Node{Data: "()", Children: []*Node{Leaf("inc"), next}}
	})
	tree := mustParse(t, "inc(0)")
	out := reg.Expand(tree)
	if !out.IsInvocation() || invocationArgs(out)[0].Data != "1" {
		t.Fatalf("non-recursive macro = %+v, want one unexpanded inc(1) call", out)
	}
}

// TestCloneIsolation is §8 property 8.
func TestCloneIsolation(t *testing.T) {
	eng := NewEngine()
	eng.Macro("before", func(n *Node) *Node { return Leaf("before-hit") })
	clone := eng.Clone()

	clone.Macro("after", func(n *Node) *Node { return Leaf("after-hit") })

	if _, ok := clone.Macros.byName["before"]; !ok {
		t.Fatalf("clone must see macros registered on the parent before cloning")
	}
	if _, ok := eng.Macros.byName["after"]; ok {
		t.Fatalf("a macro registered on a clone must not be visible to its parent")
	}
	if _, ok := clone.Macros.byName["after"]; !ok {
		t.Fatalf("clone must see its own later registrations")
	}
}

func TestConfigureUnknownPack(t *testing.T) {
	eng := NewEngine()
	err := eng.Configure("not-a-real-pack")
	if err == nil {
		t.Fatalf("expected a *ConfigError for an unregistered pack name")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("err = %T, want *ConfigError", err)
	}
}

func TestFnPackBuildsFunctionLiteral(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("fn"); err != nil {
		t.Fatalf("Configure(fn): %v", err)
	}
	tree := mustParse(t, "fn(x, x)")
	out := eng.MacroExpand(tree)
	if out.Data != "function" || len(out.Children) != 2 {
		t.Fatalf("fn(x, x) expansion = %+v, want a 2-child function node", out)
	}
}

func TestStringPackConcatenation(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("string"); err != nil {
		t.Fatalf("Configure(string): %v", err)
	}
	tree := mustParse(t, `string("hello ", name)`)
	out := eng.MacroExpand(tree)
	if out.Data != "+" {
		t.Fatalf("string(...) expansion = %+v, want a \"+\" concatenation", out)
	}
	if out.Children[1].Data != "name" {
		t.Fatalf("string(...) second operand = %+v, want the parsed identifier \"name\"", out.Children[1])
	}
}

// TestQsPackQuotesExpression covers the "qs" pack (§6, §8): the argument
// to qs(...) is returned as a literal template, with any nested qu(...)
// spliced back in via the registry's own Expand rather than left as a
// literal "qu" invocation node.
func TestQsPackQuotesExpression(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("qs"); err != nil {
		t.Fatalf("Configure(qs): %v", err)
	}
	tree := mustParse(t, "qs(x + 1)")
	out := eng.MacroExpand(tree)
	if out.Data != "+" || out.Children[0].Data != "x" {
		t.Fatalf("qs(x + 1) = %+v, want the untouched literal template \"x + 1\"", out)
	}
}

func TestQsPackSplicesQu(t *testing.T) {
	eng := NewEngine()
	eng.Macro("two", func(call *Node) *Node { return Leaf("2") })
	if err := eng.Configure("qs"); err != nil {
		t.Fatalf("Configure(qs): %v", err)
	}
	tree := mustParse(t, "qs(x + qu(two()))")
	out := eng.MacroExpand(tree)
	if out.Data != "+" || out.Children[1].Data != "2" {
		t.Fatalf("qs(x + qu(two())) = %+v, want qu(...) spliced to the literal \"2\"", out)
	}
}

// TestQgPackWrapsInBlock covers the "qg" pack (§6): an argument that is
// not already a "{" block gets wrapped in one, so grafting it into a
// macro template can never splice multiple statements loose.
func TestQgPackWrapsInBlock(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("qg"); err != nil {
		t.Fatalf("Configure(qg): %v", err)
	}
	tree := mustParse(t, "qg(x + 1)")
	out := eng.MacroExpand(tree)
	if !out.IsBlock() || len(out.Children) != 1 || out.Children[0].Data != "+" {
		t.Fatalf("qg(x + 1) = %+v, want a single-statement \"{\" block", out)
	}
}

func TestQgPackLeavesBlockAlone(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("qg"); err != nil {
		t.Fatalf("Configure(qg): %v", err)
	}
	tree := mustParse(t, "qg({ x; y; })")
	out := eng.MacroExpand(tree)
	if !out.IsBlock() || len(out.Children) != 2 {
		t.Fatalf("qg({ x; y; }) = %+v, want the existing block passed through unwrapped", out)
	}
}

// TestDfnPackRewritesArrow covers the "dfn" pack (§6, §8): the core
// grammar's "->" binary-operator node is rewritten into the same
// "function" shape "fn" produces.
func TestDfnPackRewritesArrow(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("dfn"); err != nil {
		t.Fatalf("Configure(dfn): %v", err)
	}
	tree := mustParse(t, "x -> x + 1")
	out := eng.MacroExpand(tree)
	if out.Data != "function" || len(out.Children) != 2 {
		t.Fatalf("x -> x + 1 expansion = %+v, want a 2-child \"function\" node", out)
	}
	if out.Children[0].Data != "x" {
		t.Fatalf("function params = %+v, want bare identifier \"x\"", out.Children[0])
	}
	if out.Children[1].Data != "+" {
		t.Fatalf("function body = %+v, want the \"+\" expression", out.Children[1])
	}
}

// TestDefmacroRegistersAndUsesNewMacro covers the "defmacro" pack (§6,
// §8): defmacro(name, params, body) installs a brand new named macro on
// the registry, substituting each call's arguments for body's
// parameters on every later expansion.
func TestDefmacroRegistersAndUsesNewMacro(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("defmacro"); err != nil {
		t.Fatalf("Configure(defmacro): %v", err)
	}
	def := mustParse(t, "defmacro(double, x, x * 2)")
	if out := eng.MacroExpand(def); out.Data != "noop" {
		t.Fatalf("defmacro(...) expansion = %+v, want the \"noop\" placeholder", out)
	}

	call := mustParse(t, "double(5)")
	out := eng.MacroExpand(call)
	if out.Data != "*" {
		t.Fatalf("double(5) = %+v, want the substituted \"5 * 2\" tree", out)
	}
	if out.Children[0].Data != "5" || out.Children[1].Data != "2" {
		t.Fatalf("double(5) = %+v, want children \"5\" and \"2\"", out)
	}
}

// TestWithGensymsSubstitution covers the "with_gensyms" half of the
// "defmacro" pack (§6, §8): every occurrence of a named variable in body
// is replaced by the same fresh symbol, avoiding capture between a
// macro's own expansion template and its call site.
func TestWithGensymsSubstitution(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("defmacro"); err != nil {
		t.Fatalf("Configure(defmacro): %v", err)
	}
	tree := mustParse(t, "with_gensyms(tmp, tmp + tmp)")
	out := eng.MacroExpand(tree)
	if out.Data != "+" {
		t.Fatalf("with_gensyms(tmp, tmp + tmp) = %+v, want the \"+\" body", out)
	}
	left, right := out.Children[0].Data, out.Children[1].Data
	if left != right {
		t.Fatalf("with_gensyms substituted two different symbols (%q, %q), want the same fresh name both places", left, right)
	}
	if !strings.HasPrefix(left, "g$") {
		t.Fatalf("fresh symbol %q does not carry the engine's default prefix %q", left, "g$")
	}
}

// TestStringPackInterpolatesEmbeddedExpressions covers the "#{expr}"
// literal-string interpolation half of the "string" pack (§6, §8): a
// string leaf containing a "#{...}" run is rewritten into a "+" chain
// whose middle element is the parsed (and macro-expanded) embedded
// expression, not a literal copy of its source text.
func TestStringPackInterpolatesEmbeddedExpressions(t *testing.T) {
	eng := NewEngine()
	if err := eng.Configure("string"); err != nil {
		t.Fatalf("Configure(string): %v", err)
	}
	tree := mustParse(t, `"hello #{name}"`)
	out := eng.MacroExpand(tree)
	if out.Data != "+" {
		t.Fatalf("\"hello #{name}\" expansion = %+v, want a \"+\" concatenation", out)
	}
	if !out.Children[0].IsString() || !strings.Contains(out.Children[0].Data, "hello ") {
		t.Fatalf("first operand = %+v, want the literal text \"hello \"", out.Children[0])
	}
	if out.Children[1].Data != "name" {
		t.Fatalf("second operand = %+v, want the parsed identifier \"name\"", out.Children[1])
	}
}

