package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"oring-bot/internal/domain/entity"
)

// ErrCurveFit сплайн через опорные точки построить не удалось
var ErrCurveFit = errors.New("closed curve fit failed")

// MinCurveSamples минимальное число отсчётов замкнутой кривой
const MinCurveSamples = 200

// FitClosedCurve строит периодический кубический сплайн через упорядоченные
// точки (параметризация по длине хорд) и возвращает samples равномерных по
// параметру отсчётов. Последний отсчёт не дублирует первый.
func FitClosedCurve(points []entity.Point2D, samples int) ([]entity.Point2D, error) {
	n := len(points)
	if n < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points, got %d", ErrCurveFit, n)
	}
	if samples < MinCurveSamples {
		samples = MinCurveSamples
	}

	// Узлы параметра: t[i+1] = t[i] + |P[i+1] - P[i]|, последний интервал замыкает контур.
	h := make([]float64, n)
	knots := make([]float64, n+1)
	for i := 0; i < n; i++ {
		h[i] = points[i].Distance(points[(i+1)%n])
		if h[i] <= 0 || math.IsNaN(h[i]) {
			return nil, fmt.Errorf("%w: zero chord at point %d", ErrCurveFit, i)
		}
		knots[i+1] = knots[i] + h[i]
	}

	// Циклическая трёхдиагональная система на вторые производные M:
	// h[i-1]*M[i-1] + 2(h[i-1]+h[i])*M[i] + h[i]*M[i+1] = 6*(Δ[i]/h[i] - Δ[i-1]/h[i-1])
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		next := (i + 1) % n
		a.Set(i, prev, a.At(i, prev)+h[prev])
		a.Set(i, i, a.At(i, i)+2*(h[prev]+h[i]))
		a.Set(i, next, a.At(i, next)+h[i])
	}

	var lu mat.LU
	lu.Factorize(a)

	solve := func(coord func(entity.Point2D) float64) (*mat.VecDense, error) {
		rhs := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			prev := (i - 1 + n) % n
			next := (i + 1) % n
			slopeNext := (coord(points[next]) - coord(points[i])) / h[i]
			slopePrev := (coord(points[i]) - coord(points[prev])) / h[prev]
			rhs.SetVec(i, 6*(slopeNext-slopePrev))
		}
		var m mat.VecDense
		if err := lu.SolveVecTo(&m, false, rhs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCurveFit, err)
		}
		return &m, nil
	}

	mx, err := solve(func(p entity.Point2D) float64 { return p.X })
	if err != nil {
		return nil, err
	}
	my, err := solve(func(p entity.Point2D) float64 { return p.Y })
	if err != nil {
		return nil, err
	}

	total := knots[n]
	out := make([]entity.Point2D, samples)
	seg := 0
	for s := 0; s < samples; s++ {
		t := total * float64(s) / float64(samples)
		for seg < n-1 && t >= knots[seg+1] {
			seg++
		}
		next := (seg + 1) % n
		p := entity.Point2D{
			X: evalSegment(t, knots[seg], h[seg], points[seg].X, points[next].X, mx.AtVec(seg), mx.AtVec(next)),
			Y: evalSegment(t, knots[seg], h[seg], points[seg].Y, points[next].Y, my.AtVec(seg), my.AtVec(next)),
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, fmt.Errorf("%w: non-finite sample %d", ErrCurveFit, s)
		}
		out[s] = p
	}
	return out, nil
}

// evalSegment значение кубического сплайна на отрезке [t0, t0+h].
func evalSegment(t, t0, h, y0, y1, m0, m1 float64) float64 {
	l := t - t0
	r := h - l
	return m0*r*r*r/(6*h) + m1*l*l*l/(6*h) +
		(y0/h-m0*h/6)*r + (y1/h-m1*h/6)*l
}

// ClosedLength длина замкнутой ломаной: сумма отрезков плюс замыкающий.
func ClosedLength(points []entity.Point2D) float64 {
	if len(points) < 2 {
		return 0
	}
	return PolylineLength(points) + points[len(points)-1].Distance(points[0])
}
