package vision

import (
	"image"
	"image/color"
	"math"

	"oring-bot/internal/domain/entity"
)

var (
	perimeterColor = color.RGBA{R: 255, A: 255}
	controlColor   = color.RGBA{R: 255, G: 255, A: 255}
	crackColors    = map[entity.CrackType]color.RGBA{
		entity.CrackInternal: {B: 255, A: 255},
		entity.CrackExternal: {R: 255, G: 128, A: 255},
		entity.CrackSplit:    {G: 200, A: 255},
	}
)

// crackColor цвет трещины по типу
func crackColor(t entity.CrackType) color.RGBA {
	if c, ok := crackColors[t]; ok {
		return c
	}
	return color.RGBA{A: 255}
}

// toImagePoints переводит точки в пиксели уменьшенного изображения.
func toImagePoints(points []entity.Point2D, scale float64) []image.Point {
	out := make([]image.Point, len(points))
	for i, p := range points {
		out[i] = image.Pt(int(math.Round(p.X*scale)), int(math.Round(p.Y*scale)))
	}
	return out
}

// fitScale коэффициент уменьшения, чтобы большая сторона не превышала maxSide.
func fitScale(width, height, maxSide int) float64 {
	side := max(width, height)
	if maxSide <= 0 || side <= maxSide {
		return 1
	}
	return float64(maxSide) / float64(side)
}
