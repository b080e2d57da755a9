package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
	"oring-bot/internal/domain/rating"
)

// CSVReportWriter выгружает таблицу оценки и список трещин в CSV
type CSVReportWriter struct{}

// NewCSVReportWriter создаёт CSV-выгрузку отчёта
func NewCSVReportWriter() *CSVReportWriter {
	return &CSVReportWriter{}
}

// WriteReport пишет таблицу оценки, пустую строку и список трещин.
func (CSVReportWriter) WriteReport(w io.Writer, analysis entity.Analysis) error {
	cw := csv.NewWriter(w)

	m := rating.ComputeMetrics(analysis.Cracks)
	values := rating.TableValues(m)

	records := [][]string{
		{"Image", analysis.ImageName},
		{"Metric", "Value", "Rating 1", "Rating 2", "Rating 3", "Rating 4", "Rating 5"},
	}
	for i, row := range rating.TableRows {
		rec := []string{row.Metric, values[i]}
		rec = append(rec, row.Thresholds[:]...)
		records = append(records, rec)
	}
	records = append(records,
		[]string{"OVERALL RATING", analysis.Rating.String(), "Pass", "Pass", "Pass", "Fail", "Fail"},
		[]string{},
		[]string{"Crack #", "Type", "Length (% of CSD)"},
	)
	for i, c := range analysis.Cracks {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			c.Type.String(),
			fmt.Sprintf("%.2f%%", c.LengthPct),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	return nil
}

var _ port.ReportWriter = (*CSVReportWriter)(nil)
