package geo

import (
	"fmt"
	"math"
	"sort"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate. Either field may be nil when the source
// row has no usable location.
type Point struct {
	Lat *float64
	Lng *float64
}

func NewPoint(lat, lng float64) Point {
	return Point{Lat: &lat, Lng: &lng}
}

// Valid reports whether both coordinates are present.
func (p Point) Valid() bool {
	return p.Lat != nil && p.Lng != nil
}

// Haversine returns the great-circle distance between a and b in
// kilometers. Both points must be valid.
func Haversine(a, b Point) float64 {
	lat1 := *a.Lat * math.Pi / 180
	lat2 := *b.Lat * math.Pi / 180
	dLat := (*b.Lat - *a.Lat) * math.Pi / 180
	dLng := (*b.Lng - *a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FormatDistance renders a distance for display: meters below 1 km, one
// truncated decimal below 10 km, whole kilometers above. The middle
// branch truncates rather than rounds, so 1.46 km shows as "1.4 km".
func FormatDistance(km float64) string {
	switch {
	case km < 1:
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	case km < 10:
		return fmt.Sprintf("%.1f km", math.Floor(km*10)/10)
	default:
		return fmt.Sprintf("%d km", int(math.Round(km)))
	}
}

// Locatable is anything with a coordinate, distance-ranked by Nearest.
type Locatable interface {
	Location() Point
}

// Ranked pairs an item with its computed distance from the origin.
type Ranked[T Locatable] struct {
	Item       T
	DistanceKm float64
}

// Nearest returns the n items closest to origin, ascending by haversine
// distance. Items without both coordinates are excluded.
func Nearest[T Locatable](origin Point, items []T, n int) []Ranked[T] {
	if !origin.Valid() {
		return nil
	}

	ranked := make([]Ranked[T], 0, len(items))
	for _, it := range items {
		p := it.Location()
		if !p.Valid() {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: it, DistanceKm: Haversine(origin, p)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
