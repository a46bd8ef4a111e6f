package precedence

import (
	"testing"

	"nilanc/symtab"
	"nilanc/token"
)

func TestLevelOrdering(t *testing.T) {
	if Level(token.LT) >= Level(token.PLUS) {
		t.Fatal("comparison operators must bind looser than additive operators")
	}
	if Level(token.PLUS) >= Level(token.STAR) {
		t.Fatal("additive operators must bind looser than multiplicative operators")
	}
}

func TestPushPopTop(t *testing.T) {
	var s Stack
	s.Push(token.PLUS, token.Position{}, symtab.Int, 0)

	top, ok := s.Top()
	if !ok || top.Kind != token.PLUS {
		t.Fatalf("Top() = %+v, %v", top, ok)
	}

	popped, ok := s.Pop()
	if !ok || popped.Kind != token.PLUS {
		t.Fatalf("Pop() = %+v, %v", popped, ok)
	}
	if _, ok := s.Top(); ok {
		t.Fatal("Top() found an entry after the only one was popped")
	}
}

func TestMarkerBoundsDrain(t *testing.T) {
	var s Stack
	s.Push(token.PLUS, token.Position{}, symtab.Int, 0)
	s.PushMarker()
	s.Push(token.STAR, token.Position{}, symtab.Int, 1)

	top, ok := s.Top()
	if !ok || top.Kind != token.STAR {
		t.Fatalf("Top() before marker pop = %+v", top)
	}
	s.Pop()

	top, ok = s.Top()
	if !ok || !top.IsMarker {
		t.Fatal("expected the marker to surface once the entry above it was popped")
	}
	s.PopMarker()

	top, ok = s.Top()
	if !ok || top.Kind != token.PLUS {
		t.Fatalf("Top() after PopMarker = %+v, want PLUS", top)
	}
}

func TestShiftFromAdjustsPendingEntries(t *testing.T) {
	var s Stack
	s.Push(token.LE, token.Position{}, symtab.Int, 5)
	s.Push(token.EQ, token.Position{}, symtab.Int, 10)

	s.ShiftFrom(7, 1)

	entries := s.entries
	if entries[0].LeftStart != 5 {
		t.Fatalf("entry before the splice point shifted: LeftStart = %d, want 5", entries[0].LeftStart)
	}
	if entries[1].LeftStart != 11 {
		t.Fatalf("entry at or after the splice point did not shift: LeftStart = %d, want 11", entries[1].LeftStart)
	}
}
