package report

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/xuri/excelize/v2"

	"oring-bot/internal/domain/entity"
	"oring-bot/internal/domain/port"
	"oring-bot/internal/domain/rating"
)

const (
	ResultsSheet   = "Results"
	CrackListSheet = "Crack List"

	// колонка таблицы оценки справа от картинки
	tableColumn  = 12
	snapshotCell = "B2"
)

// XLSXReportWriter выгружает отчёт книгой Excel: лист с разметкой и таблицей
// оценки и отдельный лист со списком трещин
type XLSXReportWriter struct{}

// NewXLSXReportWriter создаёт Excel-выгрузку отчёта
func NewXLSXReportWriter() *XLSXReportWriter {
	return &XLSXReportWriter{}
}

// WriteReport пишет книгу. Битая картинка разметки не мешает выгрузке таблиц.
func (XLSXReportWriter) WriteReport(w io.Writer, analysis entity.Analysis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetCellValue(ResultsSheet, "A1",
		fmt.Sprintf("%s (%s)", analysis.ImageName, analysis.CompletedAt.Format("2006-01-02 15:04"))); err != nil {
		return fmt.Errorf("write title: %w", err)
	}

	if len(analysis.Snapshot) > 0 {
		err := f.AddPictureFromBytes(ResultsSheet, snapshotCell, &excelize.Picture{
			Extension: ".png",
			File:      analysis.Snapshot,
			Format:    &excelize.GraphicOptions{AltText: "markup", ScaleX: 0.5, ScaleY: 0.5},
		})
		if err != nil {
			log.Printf("xlsx report %s: snapshot skipped: %v", analysis.ID, err)
			if err := f.SetCellValue(ResultsSheet, snapshotCell, "snapshot unavailable"); err != nil {
				return fmt.Errorf("write snapshot note: %w", err)
			}
		}
	}

	if err := writeRatingTable(f, analysis); err != nil {
		return err
	}
	if err := writeCrackList(f, analysis.Cracks); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx report: %w", err)
	}
	return nil
}

func writeRatingTable(f *excelize.File, analysis entity.Analysis) error {
	values := rating.TableValues(rating.ComputeMetrics(analysis.Cracks))

	rows := [][]any{{"Metric", "Value", "Rating 1", "Rating 2", "Rating 3", "Rating 4", "Rating 5"}}
	for i, row := range rating.TableRows {
		r := []any{row.Metric, values[i]}
		for _, th := range row.Thresholds {
			r = append(r, th)
		}
		rows = append(rows, r)
	}
	rows = append(rows, []any{"OVERALL RATING", analysis.Rating.String(), "Pass", "Pass", "Pass", "Fail", "Fail"})

	for i, r := range rows {
		if err := setRow(f, ResultsSheet, tableColumn, i+2, r); err != nil {
			return err
		}
	}

	col, err := excelize.ColumnNumberToName(tableColumn)
	if err != nil {
		return err
	}
	return f.SetColWidth(ResultsSheet, col, col, 48)
}

func writeCrackList(f *excelize.File, cracks []entity.CrackRecord) error {
	if _, err := f.NewSheet(CrackListSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := setRow(f, CrackListSheet, 1, 1, []any{"Crack #", "Type", "Length (% of CSD)"}); err != nil {
		return err
	}
	for i, c := range cracks {
		row := []any{i + 1, c.Type.String(), math.Round(c.LengthPct*100) / 100}
		if err := setRow(f, CrackListSheet, 1, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, col, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

var _ port.ReportWriter = (*XLSXReportWriter)(nil)
