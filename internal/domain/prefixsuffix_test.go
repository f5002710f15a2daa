package domain

import (
	"reflect"
	"testing"
)

func TestPrefixSuffixFromString(t *testing.T) {
	v := PSFromString("hello")
	if v.MinLen != 5 || v.MaxLen != 5 {
		t.Fatalf("length = [%d,%d], want [5,5]", v.MinLen, v.MaxLen)
	}
	if _, ok := v.Prefixes["hel"]; !ok {
		t.Errorf("prefix set %v should contain truncated prefix \"hel\"", v.Prefixes)
	}
	if _, ok := v.Suffixes["llo"]; !ok {
		t.Errorf("suffix set %v should contain truncated suffix \"llo\"", v.Suffixes)
	}
}

func TestPrefixSuffixJoinWidensLength(t *testing.T) {
	a := PSFromString("cat")
	b := PSFromString("dog")
	j := a.Join(b)
	if j.MinLen != 3 || j.MaxLen != 3 {
		t.Errorf("join length = [%d,%d], want [3,3]", j.MinLen, j.MaxLen)
	}
	if _, ok := j.Prefixes[""]; !ok {
		t.Errorf("disjoint prefixes should join to {\"\"}, got %v", j.Prefixes)
	}
}

func TestPrefixSuffixJoinCommonPrefix(t *testing.T) {
	a := PSFromString("catfish")
	b := PSFromString("catnip")
	j := a.Join(b)
	if _, ok := j.Prefixes["cat"]; !ok {
		t.Errorf("shared prefix should survive join, got %v", j.Prefixes)
	}
}

func TestPrefixSuffixWidenTerminates(t *testing.T) {
	cur := PSFromString("a")
	for i := 0; i < 50; i++ {
		next := cur.Concat(PSFromString("a"))
		widened := cur.Widen(next)
		cur = widened
	}
	if cur.MaxLen > MaxStringLength {
		t.Errorf("widening should never exceed MaxStringLength, got maxLen=%d", cur.MaxLen)
	}
}

func TestPrefixSuffixStartsWith(t *testing.T) {
	v := PSFromString("hello")
	if v.StartsWith("he") != True {
		t.Errorf("StartsWith(\"he\") = %v, want True", v.StartsWith("he"))
	}
	if v.StartsWith("xy") != False {
		t.Errorf("StartsWith(\"xy\") = %v, want False", v.StartsWith("xy"))
	}
	if v.StartsWith("hello-world") != False {
		t.Errorf("StartsWith of a too-long literal should be False, got %v", v.StartsWith("hello-world"))
	}
	if PSTop().StartsWith("x") != Unknown {
		t.Errorf("StartsWith on top should be Unknown")
	}
}

func TestPrefixSuffixConcatLength(t *testing.T) {
	a := PSFromString("foo")
	b := PSFromString("bar")
	c := a.Concat(b)
	if c.MinLen != 6 || c.MaxLen != 6 {
		t.Errorf("concat length = [%d,%d], want [6,6]", c.MinLen, c.MaxLen)
	}
	if _, ok := c.Prefixes["foo"]; !ok {
		t.Errorf("concat prefix should be \"foo\", got %v", c.Prefixes)
	}
}

func TestPrefixSuffixSubstringNoOpRange(t *testing.T) {
	v := PSFromString("hello")
	if got := v.Substring(0, 0, false); !reflect.DeepEqual(got, v) {
		t.Errorf("Substring(0, unset) should be a no-op, got %v", got)
	}
}

func TestPrefixSuffixIsEmpty(t *testing.T) {
	if PSFromString("").IsEmpty() != True {
		t.Error("empty string literal should report definitely empty")
	}
	if PSFromString("x").IsEmpty() != False {
		t.Error("non-empty string literal should report definitely not empty")
	}
}
