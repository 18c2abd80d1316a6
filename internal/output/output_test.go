package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/sheetaudit/internal/analysis"
	"github.com/vinodismyname/sheetaudit/internal/registry"
)

func questions() *analysis.QuestionsReport {
	return &analysis.QuestionsReport{
		Filename:       "book.xlsx",
		TotalQuestions: 1,
		Worksheets: []analysis.SheetQuestions{{
			Sheet:         "Sheet1",
			QuestionCount: 1,
			Questions: []analysis.QuestionFinding{
				{Cell: "A1", Question: "Is this done?", AnswerCell: "B1", Answer: "Yes"},
			},
		}},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":      FormatJSON,
		"JSON":  FormatJSON,
		"toon":  FormatTOON,
		"table": FormatTable,
		"text":  FormatTable,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFormat("yaml")
	require.Error(t, err)
}

func TestWriteJSONMatchesRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, questions(), false))
	want, err := registry.Render(questions())
	require.NoError(t, err)
	require.Equal(t, want+"\n", buf.String())
}

func TestWriteTOON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTOON, questions(), false))
	out := buf.String()
	require.Contains(t, out, "book.xlsx")
	require.Contains(t, out, "total_questions")
	require.Contains(t, out, "Is this done?")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, questions(), false))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Questions in book.xlsx (1)\n"))
	require.Contains(t, out, "Is this done?")
	require.Contains(t, out, "B1")
}

func TestWriteTableComprehensive(t *testing.T) {
	hidden := &analysis.HiddenContentReport{
		Filename:        "book.xlsx",
		TotalHiddenRows: 3,
		Worksheets: []analysis.SheetHidden{{
			Sheet: "Sheet1", State: "visible", RowCount: 9, ColumnCount: 2,
			HiddenRowCount: 3, HiddenRows: []int{4, 5}, HiddenColumns: []string{},
		}},
	}
	rep := &analysis.ComprehensiveReport{
		Filename:      "book.xlsx",
		Summary:       analysis.Summary{TotalQuestions: 1, TotalHiddenRows: 3, WorksheetCount: 1},
		Comments:      &analysis.CommentsReport{Filename: "book.xlsx", Worksheets: []analysis.SheetComments{}},
		Questions:     questions(),
		HiddenContent: hidden,
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, rep, false))
	out := buf.String()
	require.Contains(t, out, "Summary of book.xlsx")
	require.Contains(t, out, "Comments in book.xlsx (0)\n=========================\n(none)")
	require.Contains(t, out, "4,5 (+1 more)")
}

func TestWriteTableUnknownReport(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, FormatTable, map[string]int{}, false))
}

func TestListed(t *testing.T) {
	require.Equal(t, "A,B", listed([]string{"A", "B"}, 2))
	require.Equal(t, "A (+4 more)", listed([]string{"A"}, 5))
	require.Equal(t, "", listed(nil, 0))
}
