// parser.go — folds a lexer ribbon into an immutable tree in three ordered
// passes (§4.4).
//
// Pass A (operator folding) walks precedenceGroups from highest to lowest
// and, within each group, left-to-right or right-to-left per
// classify.go's rightAssociative table, dispatching each still-live fold
// candidate by role. Pass B (inferred semicolons) restores a single root
// per group by wrapping any statement that still has a right sibling in a
// synthetic "i;" node. Pass C (invocation cleanup) collapses the
// redundant one-child group a reclassified "()"/"[]" node absorbed in
// Pass A down to the argument/index expression it actually holds.
package synmacro

import "fmt"

// Parse lexes src and folds the result into a single rooted tree, the
// operation the spec's external interface calls parse(text) (§6).
func Parse(src string) (*Node, error) {
	lr, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	return parseRibbon(lr)
}

func parseRibbon(lr *LexResult) (*Node, error) {
	p := &parser{lr: lr}
	p.passA()
	p.passB()
	p.finalizeAllGroups()
	p.passC()

	root := lr.root
	switch len(root.Children) {
	case 0:
		return &Node{Data: "noop"}, nil
	case 1:
		return root.Children[0], nil
	default:
		return nil, fmt.Errorf("synmacro: parser left %d unreduced top-level nodes", len(root.Children))
	}
}

type parser struct {
	lr                    *LexResult
	invocationCleanupList []*Node
}

// ---------------------------------------------------------------------
// Pass A — operator folding.
// ---------------------------------------------------------------------

func (p *parser) passA() {
	for idx, group := range precedenceGroups {
		nodes := p.lr.FoldIndex[idx]
		if groupIsRightAssociative(group) {
			for i := len(nodes) - 1; i >= 0; i-- {
				p.dispatch(nodes[i])
			}
		} else {
			for i := 0; i < len(nodes); i++ {
				p.dispatch(nodes[i])
			}
		}
	}
}

// groupIsRightAssociative reports a group's associativity from any one of
// its member tokens — membership in classify.go's rightAssociative map is
// uniform within a group by construction.
func groupIsRightAssociative(group []string) bool {
	for _, tok := range group {
		if rightAssociative[tok] {
			return true
		}
	}
	return false
}

func (p *parser) dispatch(n *Node) {
	if n.consumed {
		return
	}
	switch {
	case bracketRole.Contains(n.Data):
		p.reclassifyInvocation(n)
	case n.Data == ".":
		if n.prev != nil {
			n.foldLeft()
		}
		if n.next != nil {
			n.foldRight()
		}
		n.Data = "[]"
	case ternaryRole.Contains(n.Data):
		p.foldTernary(n)
	case prefixUnaryRole.Contains(n.Data):
		if n.next != nil {
			n.foldRight()
		}
	case postfixUnaryRole.Contains(n.Data):
		if n.prev != nil {
			n.foldLeft()
		}
	case grabUntilBlockRole.Contains(n.Data):
		p.processGrab(n)
	case optionalRightFoldRole.Contains(n.Data):
		if n.next != nil && n.next.Data != ";" {
			n.foldRight()
		}
	case n.Data == ";":
		// An explicit separator between two statements folds them together
		// like any other binary operator. One with nothing to its right is
		// a bare terminator (the common trailing-";" case, and the one
		// skipStrayTerminator leaves behind after a grab-until-block body)
		// and must vanish rather than wrap its left operand in a pointless
		// one-child node.
		if n.next != nil {
			if n.prev != nil {
				n.foldLeft()
			}
			n.foldRight()
		} else if n.prev != nil {
			n.unlink()
			n.consumed = true
		}
	case binaryRole.Contains(n.Data):
		if n.prev != nil {
			n.foldLeft()
		}
		if n.next != nil {
			n.foldRight()
		}
	}
}

// foldTernary implements the `cond ? consequent : alt` shape. By the time
// group index 9 ("?") is processed, every higher-precedence group
// (including whatever operators appear inside the consequent) has already
// been folded, so n's own inner ribbon — collected by finalizeFromRibbon —
// is already a single node: the consequent. fold_left then attaches the
// condition, fold_right the alternative, and a final swap restores
// [cond, consequent, alt] source order.
func (p *parser) foldTernary(n *Node) {
	finalizeFromRibbon(n)
	if n.prev != nil {
		n.foldLeft()
	}
	if n.next != nil {
		n.foldRight()
	}
	if len(n.Children) >= 2 {
		n.Children[0], n.Children[1] = n.Children[1], n.Children[0]
	}
}

// reclassifyInvocation absorbs a tight "(" or "[" opener, together with
// the callee to its left, into a single "()"/"[]" node whose first child
// is the callee and whose second child is (for now) the still-unfolded
// group node — Pass C later collapses that to the argument/index
// expression itself.
func (p *parser) reclassifyInvocation(n *Node) {
	callee := n.prev
	if callee == nil {
		return
	}
	wrapperData := "()"
	if n.Data == "[" {
		wrapperData = "[]"
	}
	wrapper := &Node{Data: wrapperData}
	wrapper.prev = callee.prev
	wrapper.next = n.next
	wrapper.parent = n.parent
	if n.parent != nil && n.parent.ribbonHead == callee {
		n.parent.ribbonHead = wrapper
	}
	if wrapper.prev != nil {
		wrapper.prev.next = wrapper
	}
	if wrapper.next != nil {
		wrapper.next.prev = wrapper
	}
	callee.prev, callee.next = nil, nil
	callee.parent = wrapper
	callee.consumed = true
	n.prev, n.next = nil, nil
	n.parent = wrapper
	n.consumed = true
	wrapper.Children = []*Node{callee, n}
	p.invocationCleanupList = append(p.invocationCleanupList, wrapper)
}

// processGrab implements grab-until-block for function/if/for/while/do/
// try/catch/with, and the simpler optional-right-fold variant for their
// "else"/"while"/"catch"/"finally" continuations (§3, §4.4).
func (p *parser) processGrab(n *Node) {
	if n.next != nil && n.next.Data == ":" {
		// An object-literal key spelled like a keyword: do not fold at all.
		return
	}
	if n.Data == "else" {
		p.foldContinuationBody(n)
		return
	}

	max := grabMax[n.Data]
	for count := 0; count < max; count++ {
		if n.next == nil || n.next.Data == "{" || n.next.Data == ";" {
			break
		}
		n.foldRight()
	}
	if n.next != nil {
		n.foldRight() // the block itself, or an inferred single-statement body
	}
	p.skipStrayTerminator(n)

	if cont, ok := blockContinuation[n.Data]; ok && n.next != nil && n.next.Data == cont && !n.next.consumed {
		contNode := n.next
		switch {
		case n.Data == "do" && cont == "while":
			// do's "while" continuation restates the loop condition; unlike
			// every other continuation it has no body of its own to grab.
			p.processGrabCondOnly(contNode)
			n.foldRight()
		case n.Data == "if" && cont == "else":
			// Unwrap: n's third child is the else-branch's own content (a
			// body, or a nested "if" starting an else-if chain), not an
			// "else"-tagged wrapper node — serialize.go's "if" case expects
			// exactly that shape.
			p.foldContinuationBody(contNode)
			contNode.unlink()
			contNode.consumed = true
			if len(contNode.Children) > 0 {
				n.Children = append(n.Children, contNode.Children[0])
			} else {
				n.Children = append(n.Children, &Node{Data: "noop"})
			}
		default:
			p.processGrab(contNode)
			n.foldRight()
		}
	}
}

// skipStrayTerminator discards a single explicit ";" immediately following
// the body n just grabbed: that semicolon only terminates the single
// statement serving as the body (serializeBody re-synthesizes it on
// output) and must not block the adjacency check for a following
// continuation keyword (else/while/catch/finally).
func (p *parser) skipStrayTerminator(n *Node) {
	if n.next != nil && n.next.Data == ";" {
		stray := n.next
		stray.unlink()
		stray.consumed = true
	}
}

// processGrabCondOnly grabs exactly one operand (a condition group) and
// nothing else — the shape of do's "while" continuation.
func (p *parser) processGrabCondOnly(n *Node) {
	if n.next != nil && n.next.Data != "{" && n.next.Data != ";" {
		n.foldRight()
	}
}

// foldContinuationBody implements the "else" (and, recursively, any
// chained else-if) rule: fold the right sibling only if it isn't ";",
// first letting a further grab-until-block construct (an "if" starting
// an else-if chain) absorb its own cond/body/continuation.
func (p *parser) foldContinuationBody(n *Node) {
	if n.next == nil || n.next.Data == ";" {
		return
	}
	if grabUntilBlockRole.Contains(n.next.Data) && !n.next.consumed {
		p.processGrab(n.next)
	}
	n.foldRight()
}

// ---------------------------------------------------------------------
// Pass B — inferred semicolons.
// ---------------------------------------------------------------------

// passB restores a single root per group: within each group's own ribbon,
// walk from the tail back to the head and wrap any node that still has a
// right sibling in a synthetic "i;" node absorbing that sibling. The walk
// starts at the tail frozen at group close, or at the live tail when that
// frozen node has itself been folded into another node during Pass A.
// Processing each group's ribbon tail-to-head, independently of every
// other group, resolves §9's inferred-semicolon-ordering open question:
// the literal "reverse creation order" reading is ambiguous across
// nesting levels, but since no fold ever reaches across a group boundary,
// per-group tail-to-head order is sufficient and the relative order
// between groups is immaterial (see DESIGN.md).
func (p *parser) passB() {
	for _, g := range p.lr.groups {
		foldStraySiblings(g)
	}
}

func foldStraySiblings(g *Node) {
	cur := g.ribbonTailAtClose
	if cur != nil && cur.consumed {
		// The frozen tail has since been folded into another node (e.g. the
		// "(" of a trailing call, absorbed by its "()" wrapper) and no longer
		// sits in the ribbon: find the live tail from the head instead.
		cur = g.ribbonHead
		for cur != nil && cur.next != nil {
			cur = cur.next
		}
	}
	for cur != nil {
		prev := cur.prev
		if cur.next != nil {
			outer := &Node{Data: "i;"}
			cur.wrap(outer)
			outer.foldRight()
		}
		cur = prev
	}
}

// ---------------------------------------------------------------------
// Finalize — convert every group's remaining ribbon into Children.
// ---------------------------------------------------------------------

// finalizeFromRibbon converts n's current ribbon (starting at
// n.ribbonHead) into n.Children, in source order. It is a no-op if the
// ribbon was already finalized (or never existed).
func finalizeFromRibbon(n *Node) {
	if n.ribbonHead == nil {
		return
	}
	for cur := n.ribbonHead; cur != nil; {
		next := cur.next
		n.Children = append(n.Children, cur)
		cur.parent = n
		cur.prev, cur.next = nil, nil
		cur = next
	}
	n.ribbonHead = nil
}

func (p *parser) finalizeAllGroups() {
	for _, g := range p.lr.groups {
		finalizeFromRibbon(g)
	}
}

// ---------------------------------------------------------------------
// Pass C — invocation cleanup.
// ---------------------------------------------------------------------

// passC collapses each reclassified "()"/"[]" node's second child from
// the group node Pass A left in place down to that group's own sole
// child — the argument/index expression itself — or an empty "," node
// for a bare `()`/`[]`.
func (p *parser) passC() {
	for _, wrapper := range p.invocationCleanupList {
		group := wrapper.Children[1]
		switch len(group.Children) {
		case 0:
			wrapper.Children[1] = &Node{Data: ","}
		case 1:
			wrapper.Children[1] = group.Children[0]
		default:
			wrapper.Children[1] = &Node{Data: ",", Children: group.Children}
		}
	}
}
