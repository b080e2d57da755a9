package geometry

import (
	"errors"
	"fmt"

	"oring-bot/internal/domain/entity"
)

var (
	// ErrShortTrace трасса трещины короче трёх точек
	ErrShortTrace = errors.New("crack trace needs at least 3 points")
	// ErrTraceOutsidePerimeter трасса начинается вне периметра
	ErrTraceOutsidePerimeter = errors.New("crack trace starts outside the perimeter")
)

const (
	// DefaultProximity расстояние, на котором конец трещины считается лежащим на периметре
	DefaultProximity = 3.0
	// DefaultSnapRadius радиус притяжения концов трещины к вершинам периметра
	DefaultSnapRadius = 5.0
	// MinTracePoints минимальная длина трассы
	MinTracePoints = 3
)

// Classify определяет тип трещины по близости её концов к кривой периметра.
// Без периметра трещина всегда Internal.
func Classify(points []entity.Point2D, perimeter *entity.Perimeter, epsilon float64) entity.CrackType {
	if !perimeter.Defined() || len(points) == 0 {
		return entity.CrackInternal
	}

	near := 0
	for _, end := range []entity.Point2D{points[0], points[len(points)-1]} {
		if DistanceToClosedPolyline(end, perimeter.CurvePoints) <= epsilon {
			near++
		}
	}

	switch near {
	case 0:
		return entity.CrackInternal
	case 1:
		return entity.CrackExternal
	default:
		return entity.CrackSplit
	}
}

// Measure длина ломаной в процентах от CSD.
func Measure(points []entity.Point2D, csd float64) float64 {
	if csd <= 0 {
		csd = entity.DefaultCSD
	}
	return PolylineLength(points) / csd * 100
}

// Evaluate пересчитывает тип и длину трещины по одному и тому же набору точек.
func Evaluate(c entity.Crack, perimeter *entity.Perimeter, epsilon float64) entity.Crack {
	pts := c.MeasurePoints()
	c.Type = Classify(pts, perimeter, epsilon)
	c.LengthPct = Measure(pts, perimeter.NormalizationLength())
	return c
}

// ReclassifyAll возвращает новый список трещин с типами и длинами,
// пересчитанными относительно perimeter. Повторный вызов даёт тот же результат.
func ReclassifyAll(cracks []entity.Crack, perimeter *entity.Perimeter, epsilon float64) []entity.Crack {
	out := make([]entity.Crack, len(cracks))
	for i, c := range cracks {
		out[i] = Evaluate(c, perimeter, epsilon)
	}
	return out
}

// Resimplify заново упрощает исходные трассы с новым допуском. Сглаживание
// применяется только при вводе трассы, здесь упрощаются сырые точки.
// Типы и длины после этого нужно пересчитать через ReclassifyAll.
func Resimplify(cracks []entity.Crack, epsilon float64) []entity.Crack {
	out := make([]entity.Crack, len(cracks))
	for i, c := range cracks {
		c.SimplifiedPoints = Simplify(c.RawPoints, epsilon)
		c.Epsilon = epsilon
		out[i] = c
	}
	return out
}

// PrepareTrace применяет правила завершения трассы: начало должно лежать
// внутри периметра, концы притягиваются к вершинам кривой, конец за пределами
// периметра заменяется предыдущей точкой.
func PrepareTrace(points []entity.Point2D, perimeter *entity.Perimeter, snapRadius float64) ([]entity.Point2D, error) {
	if len(points) < MinTracePoints {
		return nil, fmt.Errorf("%w: got %d", ErrShortTrace, len(points))
	}

	curve := perimeter.Curve()
	out := entity.ClonePoints(points)

	out[0] = Snap(out[0], curve, snapRadius)
	if !withinPerimeter(out[0], curve, snapRadius) {
		return nil, ErrTraceOutsidePerimeter
	}

	last := len(out) - 1
	out[last] = Snap(out[last], curve, snapRadius)
	if !withinPerimeter(out[last], curve, snapRadius) {
		out[last] = out[last-1]
	}
	return out, nil
}

// withinPerimeter точка внутри кривой или на ней с допуском tolerance.
// Притянутые к вершинам концы лежат ровно на границе, где луч неоднозначен.
func withinPerimeter(p entity.Point2D, curve []entity.Point2D, tolerance float64) bool {
	return PointInPolygon(p, curve) || DistanceToClosedPolyline(p, curve) <= tolerance
}

// NewCrack строит трещину из подготовленной трассы.
func NewCrack(id string, raw []entity.Point2D, perimeter *entity.Perimeter, simplifyEps, proximityEps float64) entity.Crack {
	c := entity.Crack{
		ID:               id,
		RawPoints:        entity.ClonePoints(raw),
		SimplifiedPoints: Simplify(SmoothOnce(raw), simplifyEps),
		Epsilon:          simplifyEps,
	}
	return Evaluate(c, perimeter, proximityEps)
}
