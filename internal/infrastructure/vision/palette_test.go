package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"oring-bot/internal/domain/entity"
)

func TestFitScale(t *testing.T) {
	require.Equal(t, 1.0, fitScale(800, 600, 1024))
	require.Equal(t, 0.5, fitScale(2048, 1000, 1024))
	require.Equal(t, 0.5, fitScale(1000, 2048, 1024))
	require.Equal(t, 1.0, fitScale(4000, 3000, 0))
}

func TestToImagePoints(t *testing.T) {
	pts := []entity.Point2D{entity.Pt(10.4, 20.6), entity.Pt(101, 51)}
	require.Equal(t, []image.Point{image.Pt(10, 21), image.Pt(101, 51)}, toImagePoints(pts, 1))
	require.Equal(t, []image.Point{image.Pt(5, 10), image.Pt(51, 26)}, toImagePoints(pts, 0.5))
}

func TestCrackColor(t *testing.T) {
	require.NotEqual(t, crackColor(entity.CrackInternal), crackColor(entity.CrackExternal))
	require.NotEqual(t, crackColor(entity.CrackExternal), crackColor(entity.CrackSplit))
	require.Equal(t, uint8(255), crackColor(entity.CrackType(42)).A)
}
