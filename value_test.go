package scritch

import "testing"

func TestNumberCoercion(t *testing.T) {
	cases := []struct {
		in   Value
		want float64
	}{
		{NumberOf(3.5), 3.5},
		{TextOf("42"), 42},
		{TextOf("  -7.25 "), -7.25},
		{TextOf("banana"), 0},
		{TextOf(""), 0},
		{BoolOf(true), 1},
		{BoolOf(false), 0},
	}
	for _, c := range cases {
		if got := c.in.Num(); got != c.want {
			t.Errorf("Num(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTextCoercion(t *testing.T) {
	cases := []struct {
		in   Value
		want string
	}{
		{NumberOf(240), "240"},
		{NumberOf(0.5), "0.5"},
		{NumberOf(-3), "-3"},
		{NumberOf(2.50), "2.5"},
		{TextOf("hi"), "hi"},
		{BoolOf(true), "true"},
		{BoolOf(false), "false"},
	}
	for _, c := range cases {
		if got := c.in.Text(); got != c.want {
			t.Errorf("Text(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBoolCoercion(t *testing.T) {
	cases := []struct {
		in   Value
		want bool
	}{
		{NumberOf(0), false},
		{NumberOf(0.1), true},
		{TextOf(""), false},
		{TextOf("0"), false},
		{TextOf("1"), true},
		{TextOf("hello"), true},
		{BoolOf(true), true},
	}
	for _, c := range cases {
		if got := c.in.Bool(); got != c.want {
			t.Errorf("Bool(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCoercionIdempotence(t *testing.T) {
	// to_text(to_number(to_text(v))) == to_text(v) for numeric v
	for _, n := range []float64{0, 1, -1, 3.25, 240, -179.5, 1e6} {
		v := NumberOf(n)
		round := NumberOf(TextOf(v.Text()).Num())
		if round.Text() != v.Text() {
			t.Errorf("round trip of %v: got %q, want %q", n, round.Text(), v.Text())
		}
	}
	if got := TextOf("not a number").Num(); got != 0 {
		t.Errorf("non-numeric text coerced to %v, want exactly 0", got)
	}
}

func TestEqualityNumericPath(t *testing.T) {
	if !NumberOf(1).Equal(TextOf("1")) {
		t.Error("1 should equal \"1\" numerically")
	}
	if !TextOf("1.0").Equal(TextOf("1")) {
		t.Error("\"1.0\" should equal \"1\" numerically")
	}
	if !NumberOf(0.1 + 0.2).Equal(NumberOf(0.3)) {
		t.Error("equality tolerance should absorb float error")
	}
	if NumberOf(1).Equal(NumberOf(1.001)) {
		t.Error("1 should not equal 1.001")
	}
}

func TestEqualityTextPath(t *testing.T) {
	if !TextOf("apple").Equal(TextOf("apple")) {
		t.Error("identical text should be equal")
	}
	if TextOf("apple").Equal(TextOf("Apple")) {
		t.Error("text comparison is case sensitive")
	}
}

func TestComparisons(t *testing.T) {
	if !NumberOf(2).Less(TextOf("10")) {
		t.Error("2 < \"10\" should compare numerically")
	}
	if !TextOf("b").Greater(TextOf("a")) {
		t.Error("\"b\" > \"a\" should compare textually")
	}
	if TextOf("2").Greater(TextOf("10")) {
		t.Error("\"2\" > \"10\" should be false on the numeric path")
	}
}
