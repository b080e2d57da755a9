package entity

// DefaultCSD используется, когда периметра нет или его длина нулевая,
// чтобы не делить на ноль.
const DefaultCSD = 1.0

// Perimeter замкнутый контур уплотнения
type Perimeter struct {
	ControlPoints []Point2D // упорядоченные по часовой стрелке опорные точки без дублей
	CurvePoints   []Point2D // плотная аппроксимация замкнутой кривой
	Length        float64   // длина замкнутой кривой в пикселях
	CSD           float64   // Length / π, либо DefaultCSD
	Fallback      bool      // сплайн не построился, кривая = многоугольник опорных точек
}

// Defined сообщает, задан ли периметр (не меньше трёх точек кривой).
func (p *Perimeter) Defined() bool {
	return p != nil && len(p.CurvePoints) >= 3
}

// Degenerate сообщает, что длина кривой нулевая и проценты не имеют смысла.
func (p *Perimeter) Degenerate() bool {
	return p.Defined() && p.Length == 0
}

// NormalizationLength возвращает CSD либо значение по умолчанию.
func (p *Perimeter) NormalizationLength() float64 {
	if !p.Defined() || p.CSD <= 0 {
		return DefaultCSD
	}
	return p.CSD
}

// Curve возвращает точки кривой или nil, если периметра нет.
func (p *Perimeter) Curve() []Point2D {
	if p == nil {
		return nil
	}
	return p.CurvePoints
}
