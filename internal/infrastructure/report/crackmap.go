// Package report готовит материалы для отправки пользователю: схему трещин
// в PNG и CSV-отчёт.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
)

// ErrNothingToDraw нет ни периметра, ни трещин
var ErrNothingToDraw = errors.New("nothing to draw")

var (
	perimeterColor = color.RGBA{R: 220, A: 255}
	controlColor   = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	crackColors    = map[entity.CrackType]color.Color{
		entity.CrackInternal: color.RGBA{B: 255, A: 255},
		entity.CrackExternal: color.RGBA{R: 230, G: 140, A: 255},
		entity.CrackSplit:    color.RGBA{G: 160, A: 255},
	}
)

// CrackMapRenderer рисует схему периметра и трещин в координатах фото
type CrackMapRenderer struct {
	Size vg.Length // сторона большей оси картинки
}

// NewCrackMapRenderer создаёт рендерер схемы трещин
func NewCrackMapRenderer() *CrackMapRenderer {
	return &CrackMapRenderer{Size: 6 * vg.Inch}
}

// Render возвращает PNG со схемой. Ось Y направлена вниз, как на фото.
func (r *CrackMapRenderer) Render(ctx context.Context, inspection *entity.Inspection) ([]byte, error) {
	_ = ctx
	if !inspection.Perimeter.Defined() && len(inspection.Cracks) == 0 {
		return nil, ErrNothingToDraw
	}

	p := plot.New()
	p.Title.Text = inspection.ImageName
	p.X.Label.Text = "x, px"
	p.Y.Label.Text = "y, px"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	bounds := newBounds()

	if perim := inspection.Perimeter; perim.Defined() {
		loop := append(entity.ClonePoints(perim.CurvePoints), perim.CurvePoints[0])
		line, err := plotter.NewLine(toXYs(loop))
		if err != nil {
			return nil, fmt.Errorf("perimeter line: %w", err)
		}
		line.Color = perimeterColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("Perimeter (CSD %.1f px)", perim.CSD), line)
		bounds.extend(perim.CurvePoints)

		ctrl, err := plotter.NewScatter(toXYs(perim.ControlPoints))
		if err != nil {
			return nil, fmt.Errorf("control points: %w", err)
		}
		ctrl.GlyphStyle.Color = controlColor
		p.Add(ctrl)
	}

	seen := make(map[entity.CrackType]bool)
	for i, c := range inspection.Cracks {
		pts := c.MeasurePoints()
		if len(pts) < 2 {
			continue
		}
		line, err := plotter.NewLine(toXYs(pts))
		if err != nil {
			return nil, fmt.Errorf("crack %d line: %w", i+1, err)
		}
		line.Color = crackColors[c.Type]
		line.Width = vg.Points(2)
		p.Add(line)
		if !seen[c.Type] {
			p.Legend.Add(c.Type.String(), line)
			seen[c.Type] = true
		}
		bounds.extend(pts)
	}

	w, h := bounds.canvas(r.Size)
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("render crack map: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode crack map: %w", err)
	}
	return buf.Bytes(), nil
}

func toXYs(points []entity.Point2D) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return xys
}

type bounds struct {
	minX, minY, maxX, maxY float64
}

func newBounds() *bounds {
	return &bounds{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
}

func (b *bounds) extend(points []entity.Point2D) {
	for _, pt := range points {
		b.minX = math.Min(b.minX, pt.X)
		b.minY = math.Min(b.minY, pt.Y)
		b.maxX = math.Max(b.maxX, pt.X)
		b.maxY = math.Max(b.maxY, pt.Y)
	}
}

// canvas размер картинки с сохранением пропорций данных.
func (b *bounds) canvas(size vg.Length) (vg.Length, vg.Length) {
	dx := b.maxX - b.minX
	dy := b.maxY - b.minY
	if dx <= 0 || dy <= 0 || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return size, size
	}
	if dx >= dy {
		return size, vg.Length(math.Max(dy/dx, 0.4)) * size
	}
	return vg.Length(math.Max(dx/dy, 0.4)) * size, size
}

var _ port.InspectionRenderer = (*CrackMapRenderer)(nil)
