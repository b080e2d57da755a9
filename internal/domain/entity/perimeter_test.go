package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPerimeter_NormalizationLength(t *testing.T) {
	var none *Perimeter
	require.False(t, none.Defined())
	require.Equal(t, DefaultCSD, none.NormalizationLength())

	p := &Perimeter{CurvePoints: []Point2D{Pt(0, 0), Pt(1, 0), Pt(0, 1)}, Length: 6, CSD: 2}
	require.True(t, p.Defined())
	require.False(t, p.Degenerate())
	require.Equal(t, 2.0, p.NormalizationLength())

	zero := &Perimeter{CurvePoints: []Point2D{Pt(0, 0), Pt(0, 0), Pt(0, 0)}, CSD: DefaultCSD}
	require.True(t, zero.Degenerate())
}

func TestNewRating_Verdict(t *testing.T) {
	for v := 0; v <= 3; v++ {
		require.Equal(t, VerdictPass, NewRating(v).Verdict)
	}
	require.Equal(t, VerdictFail, NewRating(4).Verdict)
	require.Equal(t, "Rating: 5 - Fail", NewRating(5).String())
}

func TestPoint_Finite(t *testing.T) {
	require.True(t, Pt(1, -2).Finite())
	require.False(t, Pt(math.NaN(), 0).Finite())
	require.False(t, Pt(0, math.Inf(-1)).Finite())
	require.True(t, AllFinite(nil))
	require.False(t, AllFinite([]Point2D{Pt(0, 0), Pt(math.Inf(1), 1)}))
}
