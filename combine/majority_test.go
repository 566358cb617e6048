package combine

import "testing"

func TestMajorityEmpty(t *testing.T) {
	if _, ok := Majority(nil); ok {
		t.Fatal("expected ok=false for empty input")
	}
}

func TestMajorityPicksMostFrequent(t *testing.T) {
	v, ok := Majority([]string{"a", "b", "a", "c", "a"})
	if !ok || v != "a" {
		t.Fatalf("got %q, %v; want a, true", v, ok)
	}
}

func TestMajorityBreaksTiesLexicographically(t *testing.T) {
	v, ok := Majority([]string{"zeta", "alpha", "zeta", "alpha"})
	if !ok || v != "alpha" {
		t.Fatalf("got %q, %v; want alpha, true", v, ok)
	}
}

func TestTallyReturnsAllWinners(t *testing.T) {
	winners, count := Tally([]string{"x", "y", "x", "y", "z"})
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if len(winners) != 2 || winners[0] != "x" || winners[1] != "y" {
		t.Fatalf("winners = %v, want [x y]", winners)
	}
}

func TestTallyEmpty(t *testing.T) {
	winners, count := Tally(nil)
	if winners != nil || count != 0 {
		t.Fatalf("got %v, %d; want nil, 0", winners, count)
	}
}
