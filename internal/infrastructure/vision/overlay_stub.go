//go:build !gocv
// +build !gocv

// Package vision рисует разметку инспекции поверх фото и проверяет качество снимка.
package vision

import (
	"context"
	"errors"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
)

// ErrNoOpenCV сборка без тега gocv
var ErrNoOpenCV = errors.New("gocv build tag is not enabled")

type OverlayRenderer struct {
	MaxSide   int
	Thickness int
}

// NewOverlayRenderer создаёт рендерер-заглушку (без OpenCV).
func NewOverlayRenderer() *OverlayRenderer {
	return &OverlayRenderer{MaxSide: 1600, Thickness: 2}
}

// Render возвращает ошибку, если сборка без тега gocv.
func (r *OverlayRenderer) Render(ctx context.Context, inspection *entity.Inspection) ([]byte, error) {
	_ = ctx
	_ = inspection
	return nil, ErrNoOpenCV
}

type PhotoChecker struct{}

// NewPhotoChecker создаёт проверку-заглушку, пропускающую любое фото.
func NewPhotoChecker() *PhotoChecker {
	return &PhotoChecker{}
}

// Check без OpenCV качество не проверяется.
func (c *PhotoChecker) Check(ctx context.Context, photo []byte) error {
	_ = ctx
	_ = photo
	return nil
}

// Available сообщает, собран ли пакет с OpenCV.
func Available() bool {
	return false
}

var (
	_ port.InspectionRenderer = (*OverlayRenderer)(nil)
	_ port.PhotoChecker       = (*PhotoChecker)(nil)
)
