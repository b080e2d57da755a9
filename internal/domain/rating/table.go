package rating

import (
	"fmt"
	"strconv"
)

// TableRow строка таблицы результатов: метрика и пороги для оценок 1–5
type TableRow struct {
	Metric     string
	Thresholds [5]string
}

// TableRows строки таблицы результатов в порядке TableValues.
var TableRows = []TableRow{
	{"Total crack length (% of CSD)", [5]string{"≤100% CSD", "≤200% CSD", "≤300% CSD", "> 300% CSD", "-"}},
	{"# cracks that are <25% CSD", [5]string{"Any number", "-", "-", "-", "-"}},
	{"All ext. cracks that are <10% CSD", [5]string{"All <10%", "-", "-", "-", "-"}},
	{"# cracks that are <50% CSD", [5]string{"-", "Any number", "-", "-", "-"}},
	{"All ext. cracks that are <25% CSD", [5]string{"-", "All <25%", "-", "-", "-"}},
	{"Are there 2 or fewer cracks between 50-80% CSD", [5]string{"-", "-", "≤2 cracks", "-", "-"}},
	{"All ext. cracks are <50% CSD", [5]string{"-", "-", "All <50%", "Any >50%", "-"}},
	{"One or more int. cracks that are >80% CSD", [5]string{"-", "-", "-", "≥1 crack >80%", "-"}},
	{"Three or more int. cracks that are >50% CSD", [5]string{"-", "-", "-", "≥3 cracks >50%", "-"}},
	{"Any splits present", [5]string{"-", "-", "-", "-", "Yes"}},
}

// TableValues значения колонки Value для строк TableRows.
func TableValues(m Metrics) []string {
	return []string{
		fmt.Sprintf("%.2f%%", m.TotalPct),
		strconv.Itoa(m.NumLT25),
		yesNo(m.AllExtLT10),
		strconv.Itoa(m.NumLT50),
		yesNo(m.AllExtLT25),
		strconv.Itoa(m.Internal50To80Count),
		yesNo(m.AllExtLT50),
		yesNo(m.InternalAbove80 >= 1),
		yesNo(m.ThreeInternalAbove50),
		yesNo(m.HasSplit),
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
