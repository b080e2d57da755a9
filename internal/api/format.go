package telegram

import (
	"errors"
	"fmt"
	"strings"

	app "oring-bot/internal/application"
	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/geometry"
	"oring-bot/internal/domain/port"
	"oring-bot/internal/domain/rating"
	"oring-bot/internal/infrastructure/archive"
)

// formatTable таблица результатов: метрика, значение и итоговая оценка.
func formatTable(m rating.Metrics, r entity.Rating, degenerate bool) string {
	var sb strings.Builder
	values := rating.TableValues(m)
	for i, row := range rating.TableRows {
		fmt.Fprintf(&sb, "• %s: %s\n", row.Metric, values[i])
	}
	sb.WriteString("\n")
	if degenerate {
		sb.WriteString("⚠️ Длина периметра нулевая, проценты не имеют смысла.\n")
	}
	fmt.Fprintf(&sb, "🏁 %s", r)
	return sb.String()
}

// formatCracks список трещин с номерами для /delcrack.
func formatCracks(cracks []entity.Crack) string {
	if len(cracks) == 0 {
		return "Трещин нет."
	}
	var sb strings.Builder
	for i, c := range cracks {
		fmt.Fprintf(&sb, "%d. %s, %.2f%% CSD\n", i+1, c.Type, c.LengthPct)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatPerimeter(p *entity.Perimeter) string {
	text := fmt.Sprintf("⭕ Периметр построен: %d опорных точек, длина %.1f px, CSD %.1f px.",
		len(p.ControlPoints), p.Length, p.CSD)
	if p.Fallback {
		text += "\n⚠️ Сплайн не построился, периметр проведён по опорным точкам."
	}
	if p.Degenerate() {
		text += "\n⚠️ Длина периметра нулевая, проценты не имеют смысла."
	}
	return text
}

func formatHistory(list []entity.Analysis) string {
	if len(list) == 0 {
		return "История пуста. Завершите анализ командой /done."
	}
	var sb strings.Builder
	for _, a := range list {
		fmt.Fprintf(&sb, "%d. %s (%s): %d трещин, %s\n   /replay %s\n",
			a.Index, a.ImageName, a.CompletedAt.Format("2006-01-02 15:04"), a.CrackCount(), a.Rating, a.ID)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// errorText сообщение пользователю по ошибке сервиса.
func errorText(err error) string {
	switch {
	case errors.Is(err, app.ErrNoPhoto):
		return "📸 Сначала отправьте фото уплотнения (/check)."
	case errors.Is(err, app.ErrNoPerimeter):
		return "⭕ Сначала постройте периметр: /point x,y ... и /perimeter."
	case errors.Is(err, app.ErrCrackIndex):
		return "❓ Нет трещины с таким номером."
	case errors.Is(err, app.ErrInvalidEpsilon):
		return "❓ Допуск должен быть неотрицательным числом."
	case errors.Is(err, geometry.ErrInsufficientPoints):
		return "⭕ Для периметра нужно минимум 3 различные точки."
	case errors.Is(err, geometry.ErrShortTrace):
		return "〰️ Трасса трещины должна содержать минимум 3 точки."
	case errors.Is(err, geometry.ErrTraceOutsidePerimeter):
		return "〰️ Трещина должна начинаться внутри периметра."
	case errors.Is(err, ErrBadPoint), errors.Is(err, app.ErrInvalidPoint):
		return "❓ Не удалось разобрать координаты. Формат: x,y x,y ..."
	case errors.Is(err, app.ErrReportFormat):
		return "❓ Формат отчёта: xlsx или csv."
	case errors.Is(err, port.ErrAnalysisNotFound):
		return "❓ Анализ не найден. Список: /history."
	case errors.Is(err, archive.ErrSessionVersion):
		return "⚠️ Архив создан более новой версией и не может быть загружен."
	case errors.Is(err, archive.ErrSessionFile):
		return "⚠️ Не удалось прочитать архив сессии."
	default:
		return "⚠️ Что-то пошло не так. Попробуйте ещё раз."
	}
}
