// Package rating присваивает оценку повреждения 0–5 по списку пар
// (тип трещины, длина в % CSD). Геометрия здесь не используется, поэтому
// оценку можно пересчитать по сохранённым парам из архива.
package rating

import "oring-bot/internal/domain/entity"

// Metrics агрегаты по списку трещин, используемые правилами и таблицей результатов
type Metrics struct {
	NumCracks   int
	TotalPct    float64 // сумма длин внутренних и наружных трещин
	InternalPct []float64
	ExternalPct []float64
	HasSplit    bool

	NumLT25    int
	NumLT50    int
	AllExtLT10 bool
	AllExtLT25 bool
	AllExtLT50 bool

	Internal50To80Count  int // внутренние в диапазоне [50, 80] включительно
	InternalAbove80      int
	InternalAbove50      int
	ThreeInternalAbove50 bool
}

// ComputeMetrics считает агрегаты по парам (тип, %).
func ComputeMetrics(cracks []entity.CrackRecord) Metrics {
	m := Metrics{
		NumCracks:  len(cracks),
		AllExtLT10: true,
		AllExtLT25: true,
		AllExtLT50: true,
	}

	var all []float64
	for _, c := range cracks {
		switch c.Type {
		case entity.CrackInternal:
			m.InternalPct = append(m.InternalPct, c.LengthPct)
			all = append(all, c.LengthPct)
		case entity.CrackExternal:
			m.ExternalPct = append(m.ExternalPct, c.LengthPct)
			all = append(all, c.LengthPct)
		case entity.CrackSplit:
			m.HasSplit = true
		}
	}

	for _, p := range all {
		m.TotalPct += p
		if p < 25 {
			m.NumLT25++
		}
		if p < 50 {
			m.NumLT50++
		}
	}

	for _, p := range m.ExternalPct {
		if p >= 10 {
			m.AllExtLT10 = false
		}
		if p >= 25 {
			m.AllExtLT25 = false
		}
		if p >= 50 {
			m.AllExtLT50 = false
		}
	}

	for _, p := range m.InternalPct {
		if p >= 50 && p <= 80 {
			m.Internal50To80Count++
		}
		if p > 80 {
			m.InternalAbove80++
		}
		if p > 50 {
			m.InternalAbove50++
		}
	}
	m.ThreeInternalAbove50 = m.InternalAbove50 >= 3

	return m
}

// FromMetrics каскад правил. Порядок шагов важен и не должен меняться:
// триггеры оценки 4 проверяются после оценки 1, но до оценок 2 и 3.
func FromMetrics(m Metrics) entity.Rating {
	if m.NumCracks == 0 {
		return entity.NewRating(0)
	}
	if m.HasSplit {
		return entity.NewRating(5)
	}

	if m.TotalPct <= 100 && m.NumLT25 == m.NumCracks && m.AllExtLT10 {
		return entity.NewRating(1)
	}

	if m.TotalPct > 300 ||
		m.InternalAbove80 >= 1 ||
		m.ThreeInternalAbove50 ||
		!m.AllExtLT50 {
		return entity.NewRating(4)
	}

	if m.TotalPct <= 200 && m.NumLT50 == m.NumCracks && m.AllExtLT25 {
		return entity.NewRating(2)
	}

	if m.TotalPct <= 300 && m.Internal50To80Count <= 2 && m.AllExtLT50 {
		return entity.NewRating(3)
	}

	return entity.NewRating(4)
}

// Assign оценка по списку пар (тип, % CSD).
func Assign(cracks []entity.CrackRecord) entity.Rating {
	return FromMetrics(ComputeMetrics(cracks))
}
