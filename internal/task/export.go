package task

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/p-n-ai/pai-classroom/internal/problem"
)

const summarySheet = "Summary"

// ExportXLSX writes t as a workbook: a summary sheet listing every student,
// then one sheet per student with the problem, worked steps and answer of
// each problem. t must have been loaded with problems.
func ExportXLSX(w io.Writer, t *Task) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	title := cases.Title(language.English).String(t.Name)
	f.SetCellValue(summarySheet, "A1", title)
	f.SetCellStyle(summarySheet, "A1", "A1", bold)
	f.SetCellValue(summarySheet, "A2", t.Description)
	f.SetSheetRow(summarySheet, "A4", &[]any{"Student", "Problems", "Graded"})
	f.SetCellStyle(summarySheet, "A4", "C4", bold)
	f.SetColWidth(summarySheet, "A", "A", 14)

	for i, ut := range t.UserTasks {
		var problems []problem.Problem
		if len(ut.Problems) > 0 {
			if err := json.Unmarshal(ut.Problems, &problems); err != nil {
				return fmt.Errorf("decoding problems for student %d: %w", ut.StudentNumber, err)
			}
		}

		row := fmt.Sprintf("A%d", i+5)
		if err := f.SetSheetRow(summarySheet, row, &[]any{ut.StudentNumber, len(problems), ut.Graded}); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}

		if err := writeStudentSheet(f, bold, title, ut.StudentNumber, problems); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeStudentSheet(f *excelize.File, bold int, title string, studentNumber int, problems []problem.Problem) error {
	sheet := "Student " + strconv.Itoa(studentNumber)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}
	f.SetCellValue(sheet, "A1", title)
	f.SetCellStyle(sheet, "A1", "A1", bold)
	f.SetSheetRow(sheet, "A3", &[]any{"#", "Problem", "Steps", "Answer"})
	f.SetCellStyle(sheet, "A3", "D3", bold)
	f.SetColWidth(sheet, "B", "D", 48)

	for i, p := range problems {
		row := fmt.Sprintf("A%d", i+4)
		values := []any{i + 1, blocksText(p.Problem), blocksText(p.Steps), solutionsText(p.Solution)}
		if err := f.SetSheetRow(sheet, row, &values); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func blocksText(blocks []problem.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case problem.BlockOptions:
			choices := make([]string, len(b.Choices))
			for i, c := range b.Choices {
				choices[i] = fmt.Sprintf("%c) %s", 'A'+i, c.Value)
			}
			parts = append(parts, strings.Join(choices, "  "))
		case problem.BlockGraph:
			parts = append(parts, "[graph]")
		default:
			parts = append(parts, b.Value)
		}
	}
	return strings.Join(parts, "\n")
}

func solutionsText(solutions []problem.Solution) string {
	parts := make([]string, 0, len(solutions))
	for _, s := range solutions {
		var v string
		switch s.Type {
		case problem.SolutionNumeric:
			switch {
			case s.Fraction != nil:
				v = s.Fraction.String()
			case s.Decimal != nil:
				v = strconv.FormatFloat(*s.Decimal, 'f', -1, 64)
			}
		case problem.SolutionChoice:
			if s.Choice != nil {
				v = string(rune('A' + *s.Choice))
			}
		default:
			v = s.Value
		}
		if s.Label != "" {
			v = s.Label + " = " + v
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "; ")
}
