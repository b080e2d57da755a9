package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"oring-bot/internal/domain/entity"
)

// squarePerimeter периметр 100x100 без сплайна, CSD = 400/π.
func squarePerimeter() *entity.Perimeter {
	curve := []entity.Point2D{entity.Pt(0, 0), entity.Pt(100, 0), entity.Pt(100, 100), entity.Pt(0, 100)}
	return &entity.Perimeter{ControlPoints: curve, CurvePoints: curve, Length: 400, CSD: 400 / 3.141592653589793}
}

func TestClassify(t *testing.T) {
	p := squarePerimeter()
	cases := []struct {
		name string
		pts  []entity.Point2D
		want entity.CrackType
	}{
		{"internal", []entity.Point2D{entity.Pt(20, 20), entity.Pt(30, 40), entity.Pt(50, 50)}, entity.CrackInternal},
		{"external start", []entity.Point2D{entity.Pt(0, 50), entity.Pt(20, 50), entity.Pt(40, 50)}, entity.CrackExternal},
		{"external end within eps", []entity.Point2D{entity.Pt(50, 50), entity.Pt(70, 50), entity.Pt(97, 50)}, entity.CrackExternal},
		{"split", []entity.Point2D{entity.Pt(0, 50), entity.Pt(50, 52), entity.Pt(100, 50)}, entity.CrackSplit},
		{"empty", nil, entity.CrackInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.pts, p, DefaultProximity))
		})
	}
}

func TestClassify_NoPerimeterIsInternal(t *testing.T) {
	pts := []entity.Point2D{entity.Pt(0, 50), entity.Pt(50, 50), entity.Pt(100, 50)}
	require.Equal(t, entity.CrackInternal, Classify(pts, nil, DefaultProximity))
	require.Equal(t, entity.CrackInternal, Classify(pts, &entity.Perimeter{CurvePoints: pts[:2]}, DefaultProximity))
}

func TestMeasure(t *testing.T) {
	pts := []entity.Point2D{entity.Pt(0, 0), entity.Pt(10, 0)}
	require.InDelta(t, 50.0, Measure(pts, 20), 1e-9)
	// Нулевой CSD заменяется значением по умолчанию.
	require.InDelta(t, 1000.0, Measure(pts, 0), 1e-9)
}

func TestReclassifyAll_Idempotent(t *testing.T) {
	p := squarePerimeter()
	cracks := []entity.Crack{
		NewCrack("a", []entity.Point2D{entity.Pt(0, 50), entity.Pt(20, 50), entity.Pt(40, 50)}, nil, 1, DefaultProximity),
		NewCrack("b", []entity.Point2D{entity.Pt(20, 20), entity.Pt(25, 30), entity.Pt(30, 20)}, nil, 1, DefaultProximity),
	}
	// Без периметра все трещины внутренние.
	require.Equal(t, entity.CrackInternal, cracks[0].Type)

	once := ReclassifyAll(cracks, p, DefaultProximity)
	twice := ReclassifyAll(once, p, DefaultProximity)
	require.Equal(t, once, twice)
	require.Equal(t, entity.CrackExternal, once[0].Type)
	require.InDelta(t, 40/p.CSD*100, once[0].LengthPct, 1e-9)

	// Исходный срез не меняется.
	require.Equal(t, entity.CrackInternal, cracks[0].Type)

	cleared := ReclassifyAll(once, nil, DefaultProximity)
	require.Equal(t, entity.CrackInternal, cleared[0].Type)
	require.InDelta(t, 40*100.0, cleared[0].LengthPct, 1e-9)
}

func TestResimplify(t *testing.T) {
	raw := []entity.Point2D{entity.Pt(10, 10), entity.Pt(20, 13), entity.Pt(30, 10), entity.Pt(40, 13), entity.Pt(50, 10)}
	c := NewCrack("a", raw, nil, 0.1, DefaultProximity)
	fine := len(c.SimplifiedPoints)
	require.Greater(t, fine, 2)

	out := Resimplify([]entity.Crack{c}, 10)
	require.Len(t, out[0].SimplifiedPoints, 2)
	require.Equal(t, 10.0, out[0].Epsilon)
	require.Equal(t, raw, out[0].RawPoints)
	require.Len(t, c.SimplifiedPoints, fine)

	// повторное упрощение идёт по сырым точкам без сглаживания
	again := Resimplify([]entity.Crack{c}, 0.1)
	require.Equal(t, raw, again[0].SimplifiedPoints)
}

func TestPrepareTrace(t *testing.T) {
	p := squarePerimeter()

	_, err := PrepareTrace([]entity.Point2D{entity.Pt(1, 1), entity.Pt(2, 2)}, p, DefaultSnapRadius)
	require.ErrorIs(t, err, ErrShortTrace)

	_, err = PrepareTrace([]entity.Point2D{entity.Pt(150, 50), entity.Pt(60, 50), entity.Pt(50, 50)}, p, DefaultSnapRadius)
	require.ErrorIs(t, err, ErrTraceOutsidePerimeter)

	// Начало притягивается к вершине, конец за периметром заменяется предыдущей точкой.
	out, err := PrepareTrace([]entity.Point2D{entity.Pt(2, 3), entity.Pt(30, 30), entity.Pt(60, 60), entity.Pt(160, 60)}, p, DefaultSnapRadius)
	require.NoError(t, err)
	require.Equal(t, entity.Pt(0, 0), out[0])
	require.Equal(t, entity.Pt(60, 60), out[3])

	// Без периметра ограничений нет.
	out, err = PrepareTrace([]entity.Point2D{entity.Pt(500, 500), entity.Pt(510, 500), entity.Pt(520, 500)}, nil, DefaultSnapRadius)
	require.NoError(t, err)
	require.Equal(t, entity.Pt(520, 500), out[2])
}
