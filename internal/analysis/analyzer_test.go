package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/sheetaudit/internal/workbooks"
	"github.com/xuri/excelize/v2"
)

func build(t *testing.T, fill func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	fill(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func newAnalyzer() *Analyzer {
	return New(nil, 0, zerolog.Nop())
}

func mixedWorkbook(t *testing.T) []byte {
	return build(t, func(f *excelize.File) {
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]string{"Is this done?", "Yes"}))
		require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]string{"Owner?", ""}))
		require.NoError(t, f.SetCellValue("Sheet1", "A4", 12))
		require.NoError(t, f.SetCellFormula("Sheet1", "B4", "A4*2"))
		require.NoError(t, f.AddComment("Sheet1", excelize.Comment{Cell: "A1", Author: "Ann", Text: "confirm with finance"}))
		require.NoError(t, f.AddComment("Sheet1", excelize.Comment{Cell: "C6", Author: "Bob", Text: "empty cell note"}))
		require.NoError(t, f.SetRowVisible("Sheet1", 3, false))

		_, err := f.NewSheet("Plain")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Plain", "A1", "no findings here"))

		_, err = f.NewSheet("Notes")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Notes", "B2", &[]string{"Approved by?", "CFO", "Due when?"}))
		require.NoError(t, f.AddComment("Notes", excelize.Comment{Cell: "B2", Author: "Ann", Text: "see email"}))
		require.NoError(t, f.SetColVisible("Notes", "C", false))
		require.NoError(t, f.SetSheetVisible("Notes", false))
	})
}

func TestExtractQuestions_AnswerToTheRight(t *testing.T) {
	data := build(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Is this done?"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "Yes"))
	})

	rep, err := newAnalyzer().ExtractQuestions(context.Background(), Input{Filename: "status.xlsx", Content: data})
	require.NoError(t, err)
	require.Equal(t, "status.xlsx", rep.Filename)
	require.Equal(t, 1, rep.TotalQuestions)
	require.Len(t, rep.Worksheets, 1)
	require.Equal(t, "Sheet1", rep.Worksheets[0].Sheet)
	require.Equal(t, 1, rep.Worksheets[0].QuestionCount)
	require.Equal(t, []QuestionFinding{{Cell: "A1", Question: "Is this done?", AnswerCell: "B1", Answer: "Yes"}}, rep.Worksheets[0].Questions)
}

func TestExtractQuestions_EmptyAnswerKeepsCoordinate(t *testing.T) {
	rep, err := newAnalyzer().ExtractQuestions(context.Background(), Input{Filename: "mixed.xlsx", Content: mixedWorkbook(t)})
	require.NoError(t, err)
	require.Equal(t, 4, rep.TotalQuestions)
	require.Len(t, rep.Worksheets, 2)

	first := rep.Worksheets[0]
	require.Equal(t, "Sheet1", first.Sheet)
	require.Equal(t, QuestionFinding{Cell: "A2", Question: "Owner?", AnswerCell: "B2", Answer: ""}, first.Questions[1])

	notes := rep.Worksheets[1]
	require.Equal(t, "Notes", notes.Sheet)
	require.Equal(t, []QuestionFinding{
		{Cell: "B2", Question: "Approved by?", AnswerCell: "C2", Answer: "CFO"},
		{Cell: "D2", Question: "Due when?", AnswerCell: "E2", Answer: ""},
	}, notes.Questions)
}

func TestExtractComments(t *testing.T) {
	rep, err := newAnalyzer().ExtractComments(context.Background(), Input{Filename: "mixed.xlsx", Content: mixedWorkbook(t)})
	require.NoError(t, err)
	require.Equal(t, 3, rep.TotalComments)
	require.Len(t, rep.Worksheets, 2, "sheets without comments are omitted")

	require.Equal(t, []CommentFinding{
		{Cell: "A1", Value: "Is this done?", Comment: "confirm with finance", Author: "Ann"},
		{Cell: "C6", Value: "", Comment: "empty cell note", Author: "Bob"},
	}, rep.Worksheets[0].Comments)
	require.Equal(t, "Notes", rep.Worksheets[1].Sheet)
	require.Equal(t, "Approved by?", rep.Worksheets[1].Comments[0].Value)

	for _, ws := range rep.Worksheets {
		require.Equal(t, len(ws.Comments), ws.CommentCount)
		seen := map[string]int{}
		for _, c := range ws.Comments {
			seen[c.Cell]++
		}
		for cell, n := range seen {
			require.Equal(t, 1, n, "cell %s listed more than once", cell)
		}
	}
}

func TestDetectHiddenContent_HiddenRowFive(t *testing.T) {
	data := build(t, func(f *excelize.File) {
		for row := 1; row <= 8; row++ {
			require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), row))
		}
		require.NoError(t, f.SetRowVisible("Sheet1", 5, false))
	})

	rep, err := newAnalyzer().DetectHiddenContent(context.Background(), Input{Filename: "rows.xlsx", Content: data})
	require.NoError(t, err)
	require.Equal(t, 1, rep.TotalHiddenRows)
	require.Equal(t, 0, rep.TotalHiddenColumns)
	require.Len(t, rep.Worksheets, 1)

	ws := rep.Worksheets[0]
	require.False(t, ws.Hidden)
	require.Equal(t, "visible", ws.State)
	require.Equal(t, 8, ws.RowCount)
	require.Equal(t, 1, ws.ColumnCount)
	require.Equal(t, []int{5}, ws.HiddenRows)
	require.Equal(t, 1, ws.HiddenRowCount)
	require.Equal(t, []string{}, ws.HiddenColumns)
	require.Equal(t, 0, ws.HiddenColumnCount)

	raw, err := json.Marshal(ws)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"hidden_columns":[]`)
}

func TestDetectHiddenContent_ListsAreCapped(t *testing.T) {
	data := build(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "BZ70", "far corner"))
		for row := 1; row <= 60; row++ {
			require.NoError(t, f.SetRowVisible("Sheet1", row, false))
		}
		require.NoError(t, f.SetColVisible("Sheet1", "A:BH", false))
	})

	rep, err := newAnalyzer().DetectHiddenContent(context.Background(), Input{Filename: "wide.xlsx", Content: data})
	require.NoError(t, err)
	ws := rep.Worksheets[0]
	require.Equal(t, 60, ws.HiddenRowCount)
	require.Len(t, ws.HiddenRows, DefaultMaxListedHidden)
	require.Equal(t, 1, ws.HiddenRows[0])
	require.Equal(t, 50, ws.HiddenRows[49])
	require.Equal(t, 60, ws.HiddenColumnCount)
	require.Len(t, ws.HiddenColumns, DefaultMaxListedHidden)
	require.Equal(t, "A", ws.HiddenColumns[0])
	require.Equal(t, "AX", ws.HiddenColumns[49])
	require.Equal(t, 60, rep.TotalHiddenRows)

	capped := New(nil, 5, zerolog.Nop())
	rep, err = capped.DetectHiddenContent(context.Background(), Input{Filename: "wide.xlsx", Content: data})
	require.NoError(t, err)
	require.Len(t, rep.Worksheets[0].HiddenRows, 5)
	require.Equal(t, 60, rep.Worksheets[0].HiddenRowCount)
}

func TestDetectHiddenContent_SheetStates(t *testing.T) {
	rep, err := newAnalyzer().DetectHiddenContent(context.Background(), Input{Filename: "mixed.xlsx", Content: mixedWorkbook(t)})
	require.NoError(t, err)
	require.Len(t, rep.Worksheets, 3, "every worksheet is listed")

	byName := map[string]SheetHidden{}
	for _, ws := range rep.Worksheets {
		byName[ws.Sheet] = ws
	}
	require.Equal(t, []int{3}, byName["Sheet1"].HiddenRows)
	require.False(t, byName["Plain"].Hidden)
	require.Equal(t, 0, byName["Plain"].HiddenRowCount)
	require.True(t, byName["Notes"].Hidden)
	require.Equal(t, "hidden", byName["Notes"].State)
	require.Equal(t, []string{"C"}, byName["Notes"].HiddenColumns)
}

func TestDetectHiddenContent_VeryHiddenSheet(t *testing.T) {
	data := build(t, func(f *excelize.File) {
		_, err := f.NewSheet("Vault")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetVisible("Vault", false, true))
	})

	rep, err := newAnalyzer().DetectHiddenContent(context.Background(), Input{Filename: "vault.xlsx", Content: data})
	require.NoError(t, err)
	require.Len(t, rep.Worksheets, 2)
	vault := rep.Worksheets[1]
	require.Equal(t, "Vault", vault.Sheet)
	require.Equal(t, "veryHidden", vault.State)
	require.False(t, vault.Hidden, "hidden mirrors the plain hidden state only")
}

func TestComprehensiveAnalysis_MatchesDirectPasses(t *testing.T) {
	a := newAnalyzer()
	in := Input{Filename: "mixed.xlsx", Content: mixedWorkbook(t)}
	ctx := context.Background()

	full, err := a.ComprehensiveAnalysis(ctx, in)
	require.NoError(t, err)
	comments, err := a.ExtractComments(ctx, in)
	require.NoError(t, err)
	questions, err := a.ExtractQuestions(ctx, in)
	require.NoError(t, err)
	hidden, err := a.DetectHiddenContent(ctx, in)
	require.NoError(t, err)

	require.Equal(t, comments.TotalComments, full.Summary.TotalComments)
	require.Equal(t, questions.TotalQuestions, full.Summary.TotalQuestions)
	require.Equal(t, hidden.TotalHiddenRows, full.Summary.TotalHiddenRows)
	require.Equal(t, hidden.TotalHiddenColumns, full.Summary.TotalHiddenColumns)
	require.Equal(t, 3, full.Summary.WorksheetCount)
	require.Equal(t, comments, full.Comments)
	require.Equal(t, questions, full.Questions)
	require.Equal(t, hidden, full.HiddenContent)
}

func TestExtractFormulas(t *testing.T) {
	rep, err := newAnalyzer().ExtractFormulas(context.Background(), Input{Filename: "mixed.xlsx", Content: mixedWorkbook(t)})
	require.NoError(t, err)
	require.Equal(t, 1, rep.TotalFormulas)
	require.Equal(t, []FormulaFinding{{Cell: "B4", Formula: "=A4*2"}}, rep.Worksheets[0].Formulas)
}

func TestLoadFailuresPropagate(t *testing.T) {
	a := newAnalyzer()
	ctx := context.Background()

	_, err := a.ComprehensiveAnalysis(ctx, Input{Filename: "broken.xlsx", Content: []byte("PK not really")})
	require.True(t, workbooks.IsCorrupt(err))

	_, err = a.ExtractComments(ctx, Input{Filename: "missing.xlsx"})
	require.True(t, workbooks.IsNotFound(err))
}

func TestEmptyReportsSerializeEmptyLists(t *testing.T) {
	data := build(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "plain"))
	})
	rep, err := newAnalyzer().ExtractComments(context.Background(), Input{Filename: "plain.xlsx", Content: data})
	require.NoError(t, err)
	raw, err := json.Marshal(rep)
	require.NoError(t, err)
	require.JSONEq(t, `{"filename":"plain.xlsx","total_comments":0,"worksheets":[]}`, string(raw))
}
