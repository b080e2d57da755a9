package entity

import "fmt"

// Verdict итог проверки
type Verdict string

const (
	VerdictPass Verdict = "Pass"
	VerdictFail Verdict = "Fail"
)

// Rating оценка повреждения 0–5
type Rating struct {
	Value   int
	Verdict Verdict
}

// NewRating создаёт оценку, выводя вердикт из значения: 0–3 Pass, 4–5 Fail.
func NewRating(value int) Rating {
	verdict := VerdictPass
	if value >= 4 {
		verdict = VerdictFail
	}
	return Rating{Value: value, Verdict: verdict}
}

func (r Rating) String() string {
	return fmt.Sprintf("Rating: %d - %s", r.Value, r.Verdict)
}
