package port

import (
	"context"
	"errors"

	"oring-bot/internal/domain/entity"
)

// ErrAnalysisNotFound анализ с таким ID у пользователя не найден
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisRepository интерфейс хранилища завершённых анализов
type AnalysisRepository interface {
	// Save сохраняет анализ
	Save(ctx context.Context, analysis entity.Analysis) error

	// Get возвращает анализ пользователя по ID. Чужой анализ не находится.
	Get(ctx context.Context, userID int64, id string) (entity.Analysis, error)

	// List возвращает анализы пользователя в порядке завершения
	List(ctx context.Context, userID int64) ([]entity.Analysis, error)
}
