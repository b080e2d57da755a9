//go:build gocv
// +build gocv

// Package vision рисует разметку инспекции поверх фото и проверяет качество снимка.
package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"gocv.io/x/gocv"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
)

// OverlayRenderer рисует периметр и трещины поверх фото уплотнения
type OverlayRenderer struct {
	MaxSide   int
	Thickness int
}

// NewOverlayRenderer создаёт рендерер разметки на OpenCV.
func NewOverlayRenderer() *OverlayRenderer {
	return &OverlayRenderer{MaxSide: 1600, Thickness: 2}
}

// Render возвращает PNG с разметкой.
func (r *OverlayRenderer) Render(ctx context.Context, inspection *entity.Inspection) ([]byte, error) {
	_ = ctx
	mat, err := decodeToMat(inspection.Image)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	scale := fitScale(mat.Cols(), mat.Rows(), r.MaxSide)
	if scale < 1 {
		resized := gocv.NewMat()
		newW := int(float64(mat.Cols()) * scale)
		newH := int(float64(mat.Rows()) * scale)
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	if perim := inspection.Perimeter; perim.Defined() {
		r.polyline(&mat, perim.CurvePoints, scale, true, perimeterColor)
	}
	for _, p := range toImagePoints(inspection.ControlPoints, scale) {
		gocv.Circle(&mat, p, 4, controlColor, -1)
	}

	for i, c := range inspection.Cracks {
		pts := c.MeasurePoints()
		if len(pts) < 2 {
			continue
		}
		col := crackColor(c.Type)
		r.polyline(&mat, pts, scale, false, col)
		label := toImagePoints(pts[:1], scale)[0].Add(image.Pt(6, -6))
		gocv.PutText(&mat, strconv.Itoa(i+1), label, gocv.FontHersheySimplex, 0.7, col, r.Thickness)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert overlay: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *OverlayRenderer) polyline(mat *gocv.Mat, points []entity.Point2D, scale float64, closed bool, col color.RGBA) {
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{toImagePoints(points, scale)})
	defer pv.Close()
	gocv.Polylines(mat, pv, closed, col, r.Thickness)
}

// PhotoChecker отсекает снимки, на которых периметр и трещины не разметить
type PhotoChecker struct {
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
}

// NewPhotoChecker создаёт проверку качества фото.
func NewPhotoChecker() *PhotoChecker {
	return &PhotoChecker{
		MinImageSide:          400,
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
	}
}

// Check возвращает ошибку, если фото слишком мелкое, размытое или пересвеченное.
func (c *PhotoChecker) Check(ctx context.Context, photo []byte) error {
	_ = ctx
	mat, err := decodeToMat(photo)
	if err != nil {
		return err
	}
	defer mat.Close()

	if mat.Cols() < c.MinImageSide || mat.Rows() < c.MinImageSide {
		return fmt.Errorf("%w: image is too small (%dx%d)", port.ErrPhotoQuality, mat.Cols(), mat.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	if ratio := ratioOfMask(edges); ratio < c.MinSharpnessEdgeRatio {
		return fmt.Errorf("%w: image is blurry (edge_ratio=%.4f)", port.ErrPhotoQuality, ratio)
	}

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	if ratio := ratioOfMask(bright); ratio > c.MaxOverexposedRatio {
		return fmt.Errorf("%w: overexposed image (ratio=%.4f)", port.ErrPhotoQuality, ratio)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	if ratio := ratioOfMask(dark); ratio > c.MaxUnderexposedRatio {
		return fmt.Errorf("%w: underexposed image (ratio=%.4f)", port.ErrPhotoQuality, ratio)
	}

	return nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

var (
	_ port.InspectionRenderer = (*OverlayRenderer)(nil)
	_ port.PhotoChecker       = (*PhotoChecker)(nil)
)

// Available сообщает, собран ли пакет с OpenCV.
func Available() bool {
	return true
}
