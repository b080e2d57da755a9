package entity

import "math"

// Point2D точка в пиксельной сетке исходного фото
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt сокращённый конструктор точки
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance возвращает евклидово расстояние до другой точки
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// ClonePoints возвращает независимую копию среза точек.
func ClonePoints(points []Point2D) []Point2D {
	if points == nil {
		return nil
	}
	out := make([]Point2D, len(points))
	copy(out, points)
	return out
}

// Finite сообщает, что обе координаты конечны.
func (p Point2D) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// AllFinite сообщает, что все точки имеют конечные координаты.
func AllFinite(points []Point2D) bool {
	for _, p := range points {
		if !p.Finite() {
			return false
		}
	}
	return true
}
