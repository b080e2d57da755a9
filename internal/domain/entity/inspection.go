package entity

import "time"

// Inspection рабочий набор данных пользователя по одному фото уплотнения.
// Методы With* возвращают новую копию и не меняют исходную.
type Inspection struct {
	UserID        int64
	ImageName     string     // имя файла фото
	Image         []byte     // исходное фото
	ControlPoints []Point2D  // опорные точки, введённые до построения периметра
	Perimeter     *Perimeter // nil, если периметр не построен
	Cracks        []Crack    // трещины в порядке ввода
	Epsilon       float64    // допуск упрощения трасс
	StartedAt     time.Time
}

// NewInspection создаёт пустую инспекцию для фото.
func NewInspection(userID int64, imageName string, image []byte, epsilon float64) *Inspection {
	return &Inspection{
		UserID:    userID,
		ImageName: imageName,
		Image:     image,
		Epsilon:   epsilon,
		StartedAt: time.Now(),
	}
}

func (i *Inspection) clone() *Inspection {
	out := *i
	out.ControlPoints = ClonePoints(i.ControlPoints)
	out.Cracks = append([]Crack(nil), i.Cracks...)
	return &out
}

// WithControlPoints возвращает копию с заменённым списком опорных точек.
func (i *Inspection) WithControlPoints(points []Point2D) *Inspection {
	out := i.clone()
	out.ControlPoints = ClonePoints(points)
	return out
}

// WithPerimeter возвращает копию с новым периметром и пересчитанными трещинами.
// perimeter == nil означает сброс периметра.
func (i *Inspection) WithPerimeter(perimeter *Perimeter, cracks []Crack) *Inspection {
	out := i.clone()
	out.Perimeter = perimeter
	out.Cracks = append([]Crack(nil), cracks...)
	return out
}

// WithCracks возвращает копию с заменённым списком трещин.
func (i *Inspection) WithCracks(cracks []Crack) *Inspection {
	out := i.clone()
	out.Cracks = append([]Crack(nil), cracks...)
	return out
}

// WithEpsilon возвращает копию с новым допуском и пересчитанными трещинами.
func (i *Inspection) WithEpsilon(epsilon float64, cracks []Crack) *Inspection {
	out := i.clone()
	out.Epsilon = epsilon
	out.Cracks = append([]Crack(nil), cracks...)
	return out
}

// CSD возвращает длину нормировки для текущего периметра.
func (i *Inspection) CSD() float64 {
	return i.Perimeter.NormalizationLength()
}

// Records возвращает пары (тип, % CSD) для движка рейтинга.
func (i *Inspection) Records() []CrackRecord {
	return Records(i.Cracks)
}
