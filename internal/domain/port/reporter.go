package port

import (
	"io"

	"oring-bot/internal/domain/entity"
)

// ReportWriter интерфейс выгрузки отчёта по анализу
type ReportWriter interface {
	// WriteReport пишет таблицу оценки и список трещин
	WriteReport(w io.Writer, analysis entity.Analysis) error
}
