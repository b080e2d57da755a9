package report

import (
	"context"
	"log"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
)

// FallbackRenderer пробует рендереры по порядку и возвращает первый успешный результат
type FallbackRenderer struct {
	renderers []port.InspectionRenderer
}

// NewFallbackRenderer создаёт цепочку рендереров
func NewFallbackRenderer(renderers ...port.InspectionRenderer) *FallbackRenderer {
	return &FallbackRenderer{renderers: renderers}
}

// Render возвращает ошибку последнего рендерера, если не сработал ни один.
func (r *FallbackRenderer) Render(ctx context.Context, inspection *entity.Inspection) ([]byte, error) {
	err := ErrNothingToDraw
	for _, renderer := range r.renderers {
		var out []byte
		out, err = renderer.Render(ctx, inspection)
		if err == nil {
			return out, nil
		}
		log.Printf("renderer %T failed: %v", renderer, err)
	}
	return nil, err
}

var _ port.InspectionRenderer = (*FallbackRenderer)(nil)
