package analysis

import (
	"strings"

	"github.com/vinodismyname/sheetaudit/internal/workbooks"
)

// ScanComments lists every commented cell, sheet by sheet in row-major order.
// Sheets without comments are omitted.
func ScanComments(filename string, wb *workbooks.Workbook) *CommentsReport {
	out := &CommentsReport{Filename: filename, Worksheets: []SheetComments{}}
	for _, sh := range wb.Sheets {
		var found []CommentFinding
		for _, c := range sh.Cells() {
			if c.Comment == nil || c.Comment.Text == "" {
				continue
			}
			found = append(found, CommentFinding{
				Cell:    c.Coordinate(),
				Value:   c.Value,
				Comment: c.Comment.Text,
				Author:  c.Comment.Author,
			})
		}
		if len(found) == 0 {
			continue
		}
		out.Worksheets = append(out.Worksheets, SheetComments{Sheet: sh.Name, CommentCount: len(found), Comments: found})
		out.TotalComments += len(found)
	}
	return out
}

// ScanQuestions lists every cell whose value contains '?' together with the
// value of the cell one column to the right.
func ScanQuestions(filename string, wb *workbooks.Workbook) *QuestionsReport {
	out := &QuestionsReport{Filename: filename, Worksheets: []SheetQuestions{}}
	for _, sh := range wb.Sheets {
		var found []QuestionFinding
		for _, c := range sh.Cells() {
			if !strings.Contains(c.Value, "?") {
				continue
			}
			found = append(found, QuestionFinding{
				Cell:       c.Coordinate(),
				Question:   c.Value,
				AnswerCell: workbooks.Coordinate(c.Row, c.Col+1),
				Answer:     sh.Value(c.Row, c.Col+1),
			})
		}
		if len(found) == 0 {
			continue
		}
		out.Worksheets = append(out.Worksheets, SheetQuestions{Sheet: sh.Name, QuestionCount: len(found), Questions: found})
		out.TotalQuestions += len(found)
	}
	return out
}

// ScanHidden reports hidden rows (1..MaxRow), hidden columns (1..MaxCol) and
// the tab state of every sheet. Listed ids stop at maxListed per sheet; counts
// stay exact. maxListed <= 0 uses DefaultMaxListedHidden.
func ScanHidden(filename string, wb *workbooks.Workbook, maxListed int) *HiddenContentReport {
	if maxListed <= 0 {
		maxListed = DefaultMaxListedHidden
	}
	out := &HiddenContentReport{Filename: filename, Worksheets: make([]SheetHidden, 0, len(wb.Sheets))}
	for _, sh := range wb.Sheets {
		entry := SheetHidden{
			Sheet:         sh.Name,
			Hidden:        sh.Hidden(),
			State:         string(sh.State),
			RowCount:      sh.MaxRow,
			ColumnCount:   sh.MaxCol,
			HiddenRows:    []int{},
			HiddenColumns: []string{},
		}
		for row := 1; row <= sh.MaxRow; row++ {
			if !sh.RowHidden(row) {
				continue
			}
			entry.HiddenRowCount++
			if len(entry.HiddenRows) < maxListed {
				entry.HiddenRows = append(entry.HiddenRows, row)
			}
		}
		for col := 1; col <= sh.MaxCol; col++ {
			if !sh.ColumnHidden(col) {
				continue
			}
			entry.HiddenColumnCount++
			if len(entry.HiddenColumns) < maxListed {
				entry.HiddenColumns = append(entry.HiddenColumns, workbooks.ColumnLetter(col))
			}
		}
		out.TotalHiddenRows += entry.HiddenRowCount
		out.TotalHiddenColumns += entry.HiddenColumnCount
		out.Worksheets = append(out.Worksheets, entry)
	}
	return out
}

// ScanFormulas lists every formula cell with its formula text.
func ScanFormulas(filename string, wb *workbooks.Workbook) *FormulasReport {
	out := &FormulasReport{Filename: filename, Worksheets: []SheetFormulas{}}
	for _, sh := range wb.Sheets {
		var found []FormulaFinding
		for _, c := range sh.Cells() {
			if c.Formula == "" {
				continue
			}
			found = append(found, FormulaFinding{Cell: c.Coordinate(), Formula: c.Formula})
		}
		if len(found) == 0 {
			continue
		}
		out.Worksheets = append(out.Worksheets, SheetFormulas{Sheet: sh.Name, FormulaCount: len(found), Formulas: found})
		out.TotalFormulas += len(found)
	}
	return out
}

// Compose builds the comprehensive report from the three underlying reports.
// It reads their totals and does no scanning of its own.
func Compose(filename string, c *CommentsReport, q *QuestionsReport, h *HiddenContentReport) *ComprehensiveReport {
	return &ComprehensiveReport{
		Filename: filename,
		Summary: Summary{
			TotalComments:      c.TotalComments,
			TotalQuestions:     q.TotalQuestions,
			TotalHiddenRows:    h.TotalHiddenRows,
			TotalHiddenColumns: h.TotalHiddenColumns,
			WorksheetCount:     len(h.Worksheets),
		},
		Comments:      c,
		Questions:     q,
		HiddenContent: h,
	}
}
