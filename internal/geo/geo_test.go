package geo

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

type spot struct {
	name string
	p    Point
}

func (s spot) Location() Point { return s.p }

func TestHaversineSymmetric(t *testing.T) {
	a := NewPoint(38.6881, -0.1072)
	b := NewPoint(40.4168, -3.7038)

	ab := Haversine(a, b)
	ba := Haversine(b, a)
	if !almostEqual(ab, ba, 1e-9) {
		t.Fatalf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestHaversineZeroSelfDistance(t *testing.T) {
	a := NewPoint(38.6881, -0.1072)
	if d := Haversine(a, a); d != 0 {
		t.Fatalf("self distance = %f, want 0", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	a := NewPoint(38.6881, -0.1072)
	b := NewPoint(38.7000, -0.1000)

	d := Haversine(a, b)
	if !almostEqual(d, 1.4, 0.1) {
		t.Fatalf("distance = %f km, want ~1.4", d)
	}
	if got := FormatDistance(d); got != "1.4 km" {
		t.Fatalf("FormatDistance = %q, want \"1.4 km\"", got)
	}
}

func TestFormatDistanceThresholds(t *testing.T) {
	cases := []struct {
		km   float64
		want string
	}{
		{0.35, "350 m"},
		{0.999, "999 m"},
		{1.0, "1.0 km"},
		{1.46, "1.4 km"},
		{2.99, "2.9 km"},
		{9.95, "9.9 km"},
		{10.0, "10 km"},
		{123.4, "123 km"},
	}
	for _, c := range cases {
		if got := FormatDistance(c.km); got != c.want {
			t.Errorf("FormatDistance(%f) = %q, want %q", c.km, got, c.want)
		}
	}
}

func TestNearestOrderingAndFiltering(t *testing.T) {
	origin := NewPoint(38.6881, -0.1072)
	spots := []spot{
		{name: "far", p: NewPoint(40.4168, -3.7038)},
		{name: "no-coords", p: Point{}},
		{name: "near", p: NewPoint(38.7000, -0.1000)},
		{name: "half", p: Point{Lat: origin.Lat}},
		{name: "self", p: NewPoint(38.6881, -0.1072)},
	}

	got := Nearest(origin, spots, 10)
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3 (missing coords excluded)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].DistanceKm < got[i-1].DistanceKm {
			t.Fatalf("result not sorted ascending at index %d", i)
		}
	}
	if got[0].Item.name != "self" || got[1].Item.name != "near" {
		t.Fatalf("unexpected order: %s, %s", got[0].Item.name, got[1].Item.name)
	}
}

func TestNearestCapsResults(t *testing.T) {
	origin := NewPoint(0, 0)
	var spots []spot
	for i := 0; i < 25; i++ {
		spots = append(spots, spot{p: NewPoint(float64(i)*0.01, 0)})
	}

	got := Nearest(origin, spots, 10)
	if len(got) != 10 {
		t.Fatalf("got %d results, want 10", len(got))
	}
}

func TestNearestInvalidOrigin(t *testing.T) {
	if got := Nearest(Point{}, []spot{{p: NewPoint(1, 1)}}, 10); got != nil {
		t.Fatalf("expected nil for invalid origin, got %d results", len(got))
	}
}
