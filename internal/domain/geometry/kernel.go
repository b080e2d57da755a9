// Package geometry содержит измерительный конвейер: примитивы на плоскости,
// упрощение трасс, построение периметра и классификацию трещин.
// Все функции чистые и не возвращают ошибок на вырожденных входных данных.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"oring-bot/internal/domain/entity"
)

func toOrb(p entity.Point2D) orb.Point {
	return orb.Point{p.X, p.Y}
}

func fromOrb(p orb.Point) entity.Point2D {
	return entity.Point2D{X: p.X(), Y: p.Y()}
}

func toLineString(points []entity.Point2D) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = toOrb(p)
	}
	return ls
}

func fromLineString(ls orb.LineString) []entity.Point2D {
	out := make([]entity.Point2D, len(ls))
	for i, p := range ls {
		out[i] = fromOrb(p)
	}
	return out
}

// PerpDistance расстояние от p до отрезка a–b. При a == b это расстояние до точки.
func PerpDistance(p, a, b entity.Point2D) float64 {
	return planar.DistanceFromSegment(toOrb(a), toOrb(b), toOrb(p))
}

// PointInPolygon проверка чётности пересечений лучом.
// Пока многоугольник не задан (меньше трёх точек), ограничения нет и ответ true.
func PointInPolygon(p entity.Point2D, polygon []entity.Point2D) bool {
	if len(polygon) < 3 {
		return true
	}

	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y+1e-12)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Snap притягивает p к ближайшей вершине многоугольника, если она не дальше threshold.
func Snap(p entity.Point2D, polygon []entity.Point2D, threshold float64) entity.Point2D {
	if len(polygon) < 3 {
		return p
	}

	best := p
	bestDist := threshold
	found := false
	for _, v := range polygon {
		if d := p.Distance(v); d <= bestDist {
			best, bestDist, found = v, d, true
		}
	}
	if !found {
		return p
	}
	return best
}

// DistanceToClosedPolyline минимальное расстояние от p до замкнутой ломаной
// (последняя точка соединяется с первой). Для ломаной короче двух точек +Inf.
func DistanceToClosedPolyline(p entity.Point2D, polyline []entity.Point2D) float64 {
	if len(polyline) < 2 {
		return math.Inf(1)
	}

	best := math.Inf(1)
	for i := range polyline {
		a := polyline[i]
		b := polyline[(i+1)%len(polyline)]
		if d := PerpDistance(p, a, b); d < best {
			best = d
		}
	}
	return best
}
