package domain

import "testing"

func TestNormalizeExactRepeatExpands(t *testing.T) {
	bricks := []Brick{{Strings: strSet("ab"), Min: 3, Max: 3}}
	got := NormalizeBricks(bricks)
	if len(got) != 1 || !got[0].isSingleExact() {
		t.Fatalf("normalized = %v, want a single (S,1,1) brick", got)
	}
	if _, ok := got[0].Strings["ababab"]; !ok {
		t.Errorf("expected \"ababab\" in %v", got[0].Strings)
	}
}

// TestNormalizeMergesIdenticalAdjacent: rule 3 merges the two x-bricks into
// (x,3,5), which rule 4 then splits into (xxx,1,1)(x,0,2).
func TestNormalizeMergesIdenticalAdjacent(t *testing.T) {
	bricks := []Brick{
		{Strings: strSet("x"), Min: 1, Max: 1},
		{Strings: strSet("x"), Min: 2, Max: 4},
	}
	got := NormalizeBricks(bricks)
	if len(got) != 2 {
		t.Fatalf("normalized = %v, want the merged brick split into two", got)
	}
	if _, ok := got[0].Strings["xxx"]; !ok || !got[0].isSingleExact() {
		t.Errorf("first brick = %v, want exact (\"xxx\",1,1)", got[0])
	}
	if got[1].Min != 0 || got[1].Max != 2 {
		t.Errorf("second brick = (%d,%d), want (0,2)", got[1].Min, got[1].Max)
	}
}

func TestNormalizeSplitsNonExactRepeat(t *testing.T) {
	bricks := []Brick{{Strings: strSet("z"), Min: 2, Max: 5}}
	got := NormalizeBricks(bricks)
	if len(got) != 2 {
		t.Fatalf("normalized = %v, want two bricks", got)
	}
	if !got[0].isSingleExact() {
		t.Errorf("first brick should be exact, got %v", got[0])
	}
	if got[1].Min != 0 || got[1].Max != 3 {
		t.Errorf("second brick = (%d,%d), want (0,3)", got[1].Min, got[1].Max)
	}
}

func TestNormalizeMergesAdjacentExact(t *testing.T) {
	bricks := []Brick{
		{Strings: strSet("foo"), Min: 1, Max: 1},
		{Strings: strSet("bar"), Min: 1, Max: 1},
	}
	got := NormalizeBricks(bricks)
	if len(got) != 1 {
		t.Fatalf("normalized = %v, want a single concatenated brick", got)
	}
	if _, ok := got[0].Strings["foobar"]; !ok {
		t.Errorf("expected \"foobar\" in %v", got[0].Strings)
	}
}

func TestBricksConcat(t *testing.T) {
	a := BricksFromString("foo")
	b := BricksFromString("bar")
	c := Concat(a, b)
	if len(c.Bricks) != 1 {
		t.Fatalf("concat normalized = %v, want a single brick", c.Bricks)
	}
	if _, ok := c.Bricks[0].Strings["foobar"]; !ok {
		t.Errorf("expected \"foobar\", got %v", c.Bricks[0].Strings)
	}
}

func TestBricksWideningCollapsesListLength(t *testing.T) {
	bricks := make([]Brick, MaxListLength+3)
	for i := range bricks {
		letter := "a"
		if i%2 == 1 {
			letter = "b"
		}
		bricks[i] = Brick{Strings: strSet(letter), Min: 0, Max: 1}
	}
	v := BricksValue{Bricks: bricks}
	got := v.Widen(v)
	if !got.IsTop() {
		t.Errorf("widening should collapse to top once list length exceeds MaxListLength, got %v", got)
	}
}

func TestBricksSubstringExactMatch(t *testing.T) {
	v := BricksFromString("hello")
	got := Substring(v, 1, 3)
	if len(got.Bricks) != 1 {
		t.Fatalf("substring = %v, want a single brick", got.Bricks)
	}
	if _, ok := got.Bricks[0].Strings["el"]; !ok {
		t.Errorf("expected \"el\", got %v", got.Bricks[0].Strings)
	}
}

func TestBricksSubstringNonExactFallsBackToTop(t *testing.T) {
	v := BricksTop()
	got := Substring(v, 0, 1)
	if !got.IsTop() {
		t.Errorf("substring of a non-exact brick should fall back to top, got %v", got)
	}
}

func TestBricksContains(t *testing.T) {
	v := BricksFromString("hello world")
	if Contains(v, "world") != True {
		t.Errorf("Contains(\"world\") = %v, want True", Contains(v, "world"))
	}
	if Contains(v, "xyz") != False {
		t.Errorf("Contains(\"xyz\") = %v, want False", Contains(v, "xyz"))
	}
}

func TestBricksJoinAlignsLists(t *testing.T) {
	a := BricksFromString("ab")
	b := BricksValue{Bricks: []Brick{
		{Strings: strSet("a"), Min: 1, Max: 1},
		{Strings: strSet("b"), Min: 1, Max: 1},
	}}
	joined := a.Join(b)
	if joined.IsBottom() {
		t.Fatal("join of two non-bottom values should not be bottom")
	}
}
