package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownCrackType возвращается при разборе неизвестного типа трещины
var ErrUnknownCrackType = errors.New("unknown crack type")

// CrackType тип трещины относительно периметра уплотнения
type CrackType int

const (
	CrackInternal CrackType = iota // ни один конец не лежит на периметре
	CrackExternal                  // ровно один конец на периметре
	CrackSplit                     // оба конца на периметре, сквозной разрыв сечения
)

// String возвращает каноничное имя типа
func (t CrackType) String() string {
	switch t {
	case CrackInternal:
		return "Internal"
	case CrackExternal:
		return "External"
	case CrackSplit:
		return "Split"
	default:
		return fmt.Sprintf("CrackType(%d)", int(t))
	}
}

// ParseCrackType разбирает каноничное имя типа трещины.
func ParseCrackType(s string) (CrackType, error) {
	switch s {
	case "Internal":
		return CrackInternal, nil
	case "External":
		return CrackExternal, nil
	case "Split":
		return CrackSplit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCrackType, s)
	}
}

func (t CrackType) MarshalText() ([]byte, error) {
	if t < CrackInternal || t > CrackSplit {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCrackType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *CrackType) UnmarshalText(text []byte) error {
	parsed, err := ParseCrackType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Crack трещина, прорисованная пользователем
type Crack struct {
	ID               string    // идентификатор для удаления
	RawPoints        []Point2D // исходная трасса
	SimplifiedPoints []Point2D // результат упрощения Дугласа–Пекера
	Epsilon          float64   // допуск упрощения, с которым получены SimplifiedPoints
	Type             CrackType // тип относительно текущего периметра
	LengthPct        float64   // длина в % от CSD
}

// MeasurePoints возвращает точки, по которым считаются тип и длина:
// упрощённые, а если их нет, исходные.
func (c Crack) MeasurePoints() []Point2D {
	if len(c.SimplifiedPoints) > 0 {
		return c.SimplifiedPoints
	}
	return c.RawPoints
}

// Record возвращает пару (тип, длина), которая уходит в рейтинг и в архив.
func (c Crack) Record() CrackRecord {
	return CrackRecord{Type: c.Type, LengthPct: c.LengthPct}
}

// CrackRecord сохраняемая пара (тип, % CSD). В JSON это массив ["Internal", 20.0].
type CrackRecord struct {
	Type      CrackType
	LengthPct float64
}

func (r CrackRecord) MarshalJSON() ([]byte, error) {
	name, err := r.Type.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal([]any{string(name), r.LengthPct})
}

func (r *CrackRecord) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("crack record: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("crack record: expected 2 elements, got %d", len(pair))
	}

	var name string
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return fmt.Errorf("crack record type: %w", err)
	}
	t, err := ParseCrackType(name)
	if err != nil {
		return err
	}

	var pct float64
	if err := json.Unmarshal(pair[1], &pct); err != nil {
		return fmt.Errorf("crack record length: %w", err)
	}

	r.Type = t
	r.LengthPct = pct
	return nil
}

// Records собирает пары для рейтинга из списка трещин.
func Records(cracks []Crack) []CrackRecord {
	out := make([]CrackRecord, len(cracks))
	for i, c := range cracks {
		out[i] = c.Record()
	}
	return out
}
