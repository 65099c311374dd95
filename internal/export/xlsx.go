// Package export writes graded results to gradebook files.
package export

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/humphrjk-utsa/ai-homework-grader-sub000/internal/model"
)

var gradebookHeader = []string{
	"Student", "Assignment", "Final Score", "Percent", "Max Points",
	"Technical", "Analysis", "Communication", "Bonus",
	"Output Match %", "Validation", "Graded At", "Error",
}

// WriteGradebook writes one row per grade record to an XLSX file. Records
// are sorted by student then timestamp so regrades read in order.
func WriteGradebook(path string, records []model.GradeRecord) error {
	if len(records) == 0 {
		return eris.New("export: no records to write")
	}

	sorted := make([]model.GradeRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StudentID != sorted[j].StudentID {
			return sorted[i].StudentID < sorted[j].StudentID
		}
		return sorted[i].GradingTimestamp.Before(sorted[j].GradingTimestamp)
	})

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Grades")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range gradebookHeader {
		header.AddCell().SetString(h)
	}

	for _, rec := range sorted {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.StudentID)
		row.AddCell().SetString(rec.AssignmentName)
		row.AddCell().SetFloat(round2(rec.FinalScore))
		row.AddCell().SetFloat(round2(rec.FinalScorePercentage))
		row.AddCell().SetFloat(rec.MaxPoints)
		row.AddCell().SetFloat(round2(rec.ComponentScores.Technical))
		row.AddCell().SetFloat(round2(rec.ComponentScores.Analysis))
		row.AddCell().SetFloat(round2(rec.ComponentScores.Communication))
		row.AddCell().SetFloat(round2(rec.ComponentScores.Bonus))
		if rec.Validation != nil && rec.Validation.OutputMatch != nil {
			row.AddCell().SetFloat(round2(*rec.Validation.OutputMatch))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(rec.ValidationState)
		row.AddCell().SetString(rec.GradingTimestamp.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(rec.Error)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// SummaryLine formats a one-line console summary for a record.
func SummaryLine(rec model.GradeRecord) string {
	if rec.Error != "" {
		return fmt.Sprintf("%-30s ERROR: %s", rec.StudentID, rec.Error)
	}
	return fmt.Sprintf("%-30s %6.2f/%.1f (%5.1f%%) [%s]",
		rec.StudentID, rec.FinalScore, rec.MaxPoints, rec.FinalScorePercentage, rec.ValidationState)
}
