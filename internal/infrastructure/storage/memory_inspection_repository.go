package storage

import (
	"context"
	"sync"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
)

// MemoryInspectionRepository in-memory хранилище текущих инспекций.
// Инспекции неизменяемы, поэтому хранятся указатели без копирования.
type MemoryInspectionRepository struct {
	mu          sync.RWMutex
	inspections map[int64]*entity.Inspection
}

// NewMemoryInspectionRepository создаёт новое in-memory хранилище инспекций
func NewMemoryInspectionRepository() *MemoryInspectionRepository {
	return &MemoryInspectionRepository{
		inspections: make(map[int64]*entity.Inspection),
	}
}

// Get возвращает текущую инспекцию пользователя или nil
func (r *MemoryInspectionRepository) Get(ctx context.Context, userID int64) (*entity.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.inspections[userID], nil
}

// Save заменяет текущую инспекцию пользователя
func (r *MemoryInspectionRepository) Save(ctx context.Context, inspection *entity.Inspection) error {
	r.mu.Lock()
	r.inspections[inspection.UserID] = inspection
	r.mu.Unlock()

	return nil
}

// Delete удаляет текущую инспекцию пользователя
func (r *MemoryInspectionRepository) Delete(ctx context.Context, userID int64) error {
	r.mu.Lock()
	delete(r.inspections, userID)
	r.mu.Unlock()

	return nil
}

var _ port.InspectionRepository = (*MemoryInspectionRepository)(nil)
