package port

import (
	"context"

	"oring-bot/internal/domain/entity"
)

// InspectionRenderer интерфейс отрисовки разметки инспекции
type InspectionRenderer interface {
	// Render рисует периметр и трещины и возвращает картинку
	Render(ctx context.Context, inspection *entity.Inspection) ([]byte, error)
}
