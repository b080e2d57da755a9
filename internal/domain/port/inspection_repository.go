package port

import (
	"context"

	"oring-bot/internal/domain/entity"
)

// InspectionRepository интерфейс хранилища текущих инспекций пользователей
type InspectionRepository interface {
	// Get возвращает текущую инспекцию пользователя или nil, если её нет
	Get(ctx context.Context, userID int64) (*entity.Inspection, error)

	// Save заменяет текущую инспекцию пользователя
	Save(ctx context.Context, inspection *entity.Inspection) error

	// Delete удаляет текущую инспекцию пользователя
	Delete(ctx context.Context, userID int64) error
}
