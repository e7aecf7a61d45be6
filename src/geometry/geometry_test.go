package geometry

import (
	"image"
	"math"
	"testing"

	"pgregory.net/rapid"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) <= eps*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestNormalize(t *testing.T) {
	tl, br := Normalize(Pt(50, 10), Pt(10, 40))
	if tl != Pt(10, 10) || br != Pt(50, 40) {
		t.Fatalf("Normalize = %v %v, want (10,10) (50,40)", tl, br)
	}
}

func TestNormalizeOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := Pt(rapid.Float64Range(-1e4, 1e4).Draw(t, "ax"), rapid.Float64Range(-1e4, 1e4).Draw(t, "ay"))
		b := Pt(rapid.Float64Range(-1e4, 1e4).Draw(t, "bx"), rapid.Float64Range(-1e4, 1e4).Draw(t, "by"))

		tl1, br1 := Normalize(a, b)
		tl2, br2 := Normalize(b, a)
		if tl1 != tl2 || br1 != br2 {
			t.Fatalf("Normalize not symmetric: %v %v vs %v %v", tl1, br1, tl2, br2)
		}
		if tl1.X > br1.X || tl1.Y > br1.Y {
			t.Fatalf("corners not ordered: %v %v", tl1, br1)
		}
	})
}

func TestArrowWingsShortArrow(t *testing.T) {
	// length 20 -> wing length 10
	right, left := ArrowWings(Pt(0, 0), Pt(20, 0))
	for _, w := range []Point{right, left} {
		if d := w.Distance(Pt(20, 0)); !near(d, 10) {
			t.Fatalf("wing length = %v, want 10", d)
		}
	}
	if !near(right.Y, -left.Y) {
		t.Fatalf("wings not mirrored across the shaft: %v %v", right, left)
	}
	if right.X >= 20 || left.X >= 20 {
		t.Fatalf("wings should point back along the shaft: %v %v", right, left)
	}
}

func TestArrowWingsSaturate(t *testing.T) {
	right, left := ArrowWings(Pt(0, 0), Pt(0, 500))
	if d := right.Distance(Pt(0, 500)); !near(d, MaxArrowHead) {
		t.Fatalf("right wing length = %v, want %v", d, MaxArrowHead)
	}
	if d := left.Distance(Pt(0, 500)); !near(d, MaxArrowHead) {
		t.Fatalf("left wing length = %v, want %v", d, MaxArrowHead)
	}
}

func TestArrowWingsDegenerate(t *testing.T) {
	right, left := ArrowWings(Pt(7, 7), Pt(7, 7))
	if right != Pt(7, 7) || left != Pt(7, 7) {
		t.Fatalf("degenerate arrow wings = %v %v, want the end point", right, left)
	}
}

func TestRectContainsInclusive(t *testing.T) {
	r := RectFromPoints(Pt(10, 10), Pt(0, 0))
	for _, p := range []Point{Pt(0, 0), Pt(10, 10), Pt(5, 10)} {
		if !r.Contains(p) {
			t.Errorf("expected %v inside %v", p, r)
		}
	}
	if r.Contains(Pt(10.5, 3)) {
		t.Error("expected point right of the box to be outside")
	}
}

func TestRectImageRounds(t *testing.T) {
	r := Rect{Min: Pt(1.4, 1.6), Max: Pt(10.5, 20.2)}
	if got, want := r.Image(), image.Rect(1, 2, 11, 20); got != want {
		t.Fatalf("Image() = %v, want %v", got, want)
	}
}
