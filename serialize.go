// serialize.go — renders a syntax tree back to host-language source
// (§4.8).
//
// Serialize is the structural inverse of Parse for every shape the parser
// produces, including the two nodes that never appear in source text
// literally: "i;" (an inferred statement separator, printed as the
// separator it stands for, not its internal name) and the post-cleanup
// "()"/"[]" invocation/dereference shape.
package synmacro

import "strings"

// Serialize renders tree as host-language source text.
func Serialize(n *Node) string {
	if n == nil {
		return ""
	}

	switch {
	case n.Data == "noop":
		return ""

	case n.Data == "i;":
		return serializeStatementChain(n)

	case n.IsInvocation():
		return Serialize(n.Children[0]) + "(" + serializeArgList(n.Children[1]) + ")"

	case n.IsDereference():
		return Serialize(n.Children[0]) + "[" + Serialize(n.Children[1]) + "]"

	case n.Data == "?":
		if len(n.Children) != 3 {
			return debugStrayRender(n)
		}
		return Serialize(n.Children[0]) + " ? " + Serialize(n.Children[1]) + " : " + Serialize(n.Children[2])

	case n.Data == "(":
		return "(" + serializeArgList(n) + ")"

	case n.Data == "[":
		return "[" + serializeArgList(n) + "]"

	case n.Data == "{":
		if len(n.Children) == 0 {
			return "{}"
		}
		return "{\n" + indent(Serialize(n.Children[0])+";") + "\n}"

	case n.Data == "finally":
		if len(n.Children) == 0 {
			return "finally" + serializeBody(nil)
		}
		return "finally" + serializeBody(n.Children[0])

	case grabUntilBlockRole.Contains(n.Data):
		return serializeGrab(n)

	case n.Data == ",":
		return serializeArgList(n)

	case prefixUnaryRole.Contains(n.Data):
		op := strings.TrimPrefix(n.Data, "u")
		if len(n.Children) == 0 {
			return op
		}
		if isAlpha(op[0]) {
			// "new", "typeof": keep the operand a separate word.
			return op + " " + Serialize(n.Children[0])
		}
		return op + Serialize(n.Children[0])

	case postfixUnaryRole.Contains(n.Data):
		if len(n.Children) == 0 {
			return n.Data
		}
		return Serialize(n.Children[0]) + n.Data

	case n.Data == "return" || n.Data == "throw" || n.Data == "break" || n.Data == "continue":
		if len(n.Children) == 0 {
			return n.Data
		}
		return n.Data + " " + Serialize(n.Children[0])

	case binaryRole.Contains(n.Data):
		if len(n.Children) == 2 {
			return Serialize(n.Children[0]) + " " + n.Data + " " + Serialize(n.Children[1])
		}
		// A Flatten()-ed variadic chain (node.go) collapses a left- or
		// right-associative run of the same operator into one node; render
		// it as the same infix chain it came from.
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = Serialize(c)
		}
		return strings.Join(parts, " "+n.Data+" ")

	case len(n.Children) == 0:
		return n.Data

	default:
		return debugStrayRender(n)
	}
}

// serializeStatementChain renders the right-nested "i;" tree passB builds
// for inferred semicolons as a flat, explicitly separated statement
// sequence.
func serializeStatementChain(n *Node) string {
	var stmts []string
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Data == "i;" && len(cur.Children) == 2 {
			walk(cur.Children[0])
			walk(cur.Children[1])
			return
		}
		stmts = append(stmts, Serialize(cur))
	}
	walk(n)
	return strings.Join(stmts, ";\n")
}

// serializeArgList renders a "," node's children (or, for a group node
// like "(", its single child) as a comma-separated list.
func serializeArgList(n *Node) string {
	if n.Data == "," {
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = Serialize(c)
		}
		return strings.Join(parts, ", ")
	}
	if len(n.Children) == 0 {
		return ""
	}
	return Serialize(n.Children[0])
}

// serializeBody renders a grab-until-block construct's body, inserting an
// explicit ";" when the body is a single statement rather than an
// explicit "{...}" block — the tree keeps no separator after such a body
// (an explicit one is dropped by parser.go's skipStrayTerminator), so one
// is written out now that it is being serialized back into standalone
// text.
func serializeBody(b *Node) string {
	if b == nil {
		return " {}"
	}
	if b.IsBlock() {
		return " " + Serialize(b)
	}
	return " " + Serialize(b) + ";"
}

func serializeGrab(n *Node) string {
	switch n.Data {
	case "if":
		out := "if " + parenOf(n, 0) + serializeBody(childAt(n, 1))
		if len(n.Children) >= 3 {
			out += " else " + serializeElseBody(n.Children[2])
		}
		return out
	case "else":
		if len(n.Children) == 0 {
			return "else"
		}
		return "else " + serializeElseBody(n.Children[0])
	case "while":
		if len(n.Children) == 1 {
			// do's "while" continuation: a condition with no body of its own.
			return "while " + parenOf(n, 0)
		}
		return "while " + parenOf(n, 0) + serializeBody(childAt(n, 1))
	case "with":
		return "with " + parenOf(n, 0) + serializeBody(childAt(n, 1))
	case "for":
		return "for " + parenOf(n, 0) + serializeBody(childAt(n, 1))
	case "do":
		out := "do" + serializeBody(childAt(n, 0))
		if len(n.Children) >= 2 {
			out += " " + Serialize(n.Children[1]) + ";"
		}
		return out
	case "try":
		out := "try" + serializeBody(childAt(n, 0))
		if len(n.Children) >= 2 {
			out += " " + Serialize(n.Children[1])
		}
		return out
	case "catch":
		out := "catch"
		if len(n.Children) >= 2 {
			out += " " + parenOf(n, 0) + serializeBody(childAt(n, 1))
		} else {
			out += serializeBody(childAt(n, 0))
		}
		return out
	case "function":
		switch len(n.Children) {
		case 3:
			return "function " + Serialize(n.Children[0]) + " " + Serialize(n.Children[1]) + serializeBody(n.Children[2])
		case 2:
			return "function " + Serialize(n.Children[0]) + serializeBody(n.Children[1])
		default:
			return "function" + serializeBody(childAt(n, 0))
		}
	}
	return debugStrayRender(n)
}

// serializeElseBody avoids the ";" an ordinary single-statement body
// would get when that body is itself another "if" (an else-if chain).
func serializeElseBody(b *Node) string {
	if grabUntilBlockRole.Contains(b.Data) {
		return Serialize(b)
	}
	if b.IsBlock() {
		return Serialize(b)
	}
	return Serialize(b) + ";"
}

func childAt(n *Node, i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func parenOf(n *Node, i int) string {
	c := childAt(n, i)
	if c == nil {
		return "()"
	}
	return Serialize(c)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

// debugStrayRender renders a node shape the serializer does not
// recognize as an inline comment rather than panicking, mirroring how a
// debugger might show an unresolved ribbon pointer.
func debugStrayRender(n *Node) string {
	return "/* -> " + n.Data + " */"
}
