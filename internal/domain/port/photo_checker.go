package port

import (
	"context"
	"errors"
)

// ErrPhotoQuality фото непригодно для разметки
var ErrPhotoQuality = errors.New("photo quality check failed")

// PhotoChecker интерфейс проверки качества фото
type PhotoChecker interface {
	// Check возвращает ErrPhotoQuality, если фото непригодно
	Check(ctx context.Context, photo []byte) error
}
