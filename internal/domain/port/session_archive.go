package port

import (
	"io"

	"oring-bot/internal/domain/entity"
)

// SessionArchive интерфейс упаковки сессии в архив
type SessionArchive interface {
	// Write записывает сессию в архив
	Write(w io.Writer, session entity.Session) error

	// Read читает сессию из архива
	Read(r io.ReaderAt, size int64) (entity.Session, error)
}
