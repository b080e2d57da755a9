package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	app "oring-bot/internal/application"
	"oring-bot/internal/domain/entity"
)

// ErrBadPoint координаты не разобраны
var ErrBadPoint = errors.New("bad point")

// ErrBadArgs аргументы команды не разобраны
var ErrBadArgs = errors.New("bad command arguments")

// ParsePoint разбирает точку вида "x,y".
func ParsePoint(s string) (entity.Point2D, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return entity.Point2D{}, fmt.Errorf("%w: %q", ErrBadPoint, s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return entity.Point2D{}, fmt.Errorf("%w: %q", ErrBadPoint, s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return entity.Point2D{}, fmt.Errorf("%w: %q", ErrBadPoint, s)
	}
	p := entity.Pt(x, y)
	if !p.Finite() {
		return entity.Point2D{}, fmt.Errorf("%w: non-finite coordinate %q", ErrBadPoint, s)
	}
	return p, nil
}

// ParsePoints разбирает список точек "x,y x,y ...", разделитель пробел или ';'.
func ParsePoints(s string) ([]entity.Point2D, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ';' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrBadPoint)
	}
	points := make([]entity.Point2D, 0, len(fields))
	for _, f := range fields {
		p, err := ParsePoint(f)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// parseReportArgs разбирает "ID [xlsx|csv]", формат по умолчанию xlsx.
func parseReportArgs(args string) (string, app.ReportFormat, error) {
	fields := strings.Fields(args)
	switch len(fields) {
	case 1:
		return fields[0], app.ReportXLSX, nil
	case 2:
		return fields[0], app.ReportFormat(strings.ToLower(fields[1])), nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrBadArgs, args)
	}
}
