package geometry

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"oring-bot/internal/domain/entity"
)

// ErrInsufficientPoints для периметра нужно не меньше трёх различных точек
var ErrInsufficientPoints = errors.New("insufficient perimeter points")

const (
	// DefaultCurveSamples число отсчётов сплайна периметра
	DefaultCurveSamples = 1000
	// dedupDistance точки ближе этого расстояния к предыдущей отбрасываются
	dedupDistance = 1.0
	// closureTolerance совпадение первой и последней точки
	closureTolerance = 1e-6
)

// OrderClockwise сортирует точки по полярному углу вокруг центроида.
// На сетке изображения (ось Y вниз) возрастание atan2 идёт по часовой стрелке.
// Результат не зависит от порядка входных точек.
func OrderClockwise(points []entity.Point2D) []entity.Point2D {
	ordered := entity.ClonePoints(points)
	if len(ordered) == 0 {
		return ordered
	}

	// Канонический порядок перед суммированием, чтобы центроид не зависел от перестановки.
	slices.SortFunc(ordered, comparePoints)

	var cx, cy float64
	for _, p := range ordered {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(ordered))
	cy /= float64(len(ordered))
	center := entity.Pt(cx, cy)

	slices.SortStableFunc(ordered, func(a, b entity.Point2D) int {
		if c := cmp.Compare(math.Atan2(a.Y-cy, a.X-cx), math.Atan2(b.Y-cy, b.X-cx)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Distance(center), b.Distance(center)); c != 0 {
			return c
		}
		return comparePoints(a, b)
	})
	return ordered
}

func comparePoints(a, b entity.Point2D) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

// dedupe отбрасывает точки ближе dedupDistance к предыдущей оставленной
// и дубль первой точки в конце.
func dedupe(ordered []entity.Point2D) []entity.Point2D {
	out := make([]entity.Point2D, 0, len(ordered))
	for _, p := range ordered {
		if len(out) == 0 || p.Distance(out[len(out)-1]) >= dedupDistance {
			out = append(out, p)
		}
	}
	if len(out) > 1 && out[0].Distance(out[len(out)-1]) < closureTolerance {
		out = out[:len(out)-1]
	}
	return out
}

// BuildPerimeter строит замкнутый периметр по неупорядоченным опорным точкам.
// Если сплайн не строится, кривой становится многоугольник опорных точек.
func BuildPerimeter(points []entity.Point2D, samples int) (*entity.Perimeter, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientPoints, len(points))
	}

	control := dedupe(OrderClockwise(points))
	if len(control) < 3 {
		return nil, fmt.Errorf("%w: %d left after removing duplicates", ErrInsufficientPoints, len(control))
	}

	perimeter := &entity.Perimeter{ControlPoints: control}

	curve, err := FitClosedCurve(control, samples)
	if err != nil {
		curve = entity.ClonePoints(control)
		perimeter.Fallback = true
	}
	perimeter.CurvePoints = curve

	perimeter.Length = ClosedLength(curve)
	perimeter.CSD = entity.DefaultCSD
	if perimeter.Length > 0 {
		perimeter.CSD = perimeter.Length / math.Pi
	}
	return perimeter, nil
}

// RemoveNearestPoint удаляет ближайшую к p точку в пределах threshold.
// Возвращает новый срез и признак удаления.
func RemoveNearestPoint(points []entity.Point2D, p entity.Point2D, threshold float64) ([]entity.Point2D, bool) {
	best := -1
	bestDist := threshold
	for i, q := range points {
		if d := q.Distance(p); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return entity.ClonePoints(points), false
	}

	out := make([]entity.Point2D, 0, len(points)-1)
	out = append(out, points[:best]...)
	out = append(out, points[best+1:]...)
	return out, true
}
