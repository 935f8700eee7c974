package synmacro

import (
	"strings"
	"testing"
)

func TestSymbolsFreshAreUnique(t *testing.T) {
	s := NewSymbols("g$")
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		name := s.Fresh()
		if seen[name] {
			t.Fatalf("duplicate fresh symbol %q at iteration %d", name, i)
		}
		seen[name] = true
		if !strings.HasPrefix(name, "g$") {
			t.Fatalf("fresh symbol %q does not carry prefix %q", name, "g$")
		}
	}
}

func TestSymbolsDifferentInstancesDoNotCollide(t *testing.T) {
	a := NewSymbols("g$")
	b := NewSymbols("g$")
	if a.Fresh() == b.Fresh() {
		t.Fatalf("two independently constructed generators produced the same symbol")
	}
}

func TestSymbolsPrefixIsPreserved(t *testing.T) {
	s := NewSymbols("tmp$")
	name := s.Fresh()
	if !strings.HasPrefix(name, "tmp$") {
		t.Fatalf("fresh symbol %q does not start with prefix %q", name, "tmp$")
	}
}
