package geometry

import (
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"oring-bot/internal/domain/entity"
)

// Simplify упрощает ломаную алгоритмом Дугласа–Пекера.
// Точка сохраняется, если её расстояние до хорды строго больше epsilon;
// при равенстве расстояний выигрывает первая точка. Концы всегда сохраняются.
// epsilon задаёт вызывающий код под текущее разрешение. При отрицательном
// epsilon любая точка дальше хорды, поэтому ломаная возвращается целиком.
func Simplify(points []entity.Point2D, epsilon float64) []entity.Point2D {
	if len(points) <= 2 || epsilon < 0 {
		return entity.ClonePoints(points)
	}

	// orb упрощает на месте, поэтому работаем с копией.
	ls := toLineString(points)
	return fromLineString(simplify.DouglasPeucker(epsilon).LineString(ls))
}

// PolylineLength сумма длин отрезков ломаной.
func PolylineLength(points []entity.Point2D) float64 {
	if len(points) < 2 {
		return 0
	}
	return planar.Length(toLineString(points))
}

// SmoothOnce сглаживает трассу скользящим средним по трём точкам, концы не трогает.
func SmoothOnce(points []entity.Point2D) []entity.Point2D {
	if len(points) < 3 {
		return entity.ClonePoints(points)
	}

	out := make([]entity.Point2D, len(points))
	out[0] = points[0]
	for i := 1; i < len(points)-1; i++ {
		out[i] = entity.Point2D{
			X: (points[i-1].X + points[i].X + points[i+1].X) / 3,
			Y: (points[i-1].Y + points[i].Y + points[i+1].Y) / 3,
		}
	}
	out[len(points)-1] = points[len(points)-1]
	return out
}
