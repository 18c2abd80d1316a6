package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
	"github.com/vinodismyname/sheetaudit/internal/analysis"
	"github.com/vinodismyname/sheetaudit/internal/registry"
)

// Format represents an output format for the analyze command.
type Format string

const (
	FormatJSON  Format = "json"
	FormatTOON  Format = "toon"
	FormatTable Format = "table"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "toon":
		return FormatTOON, nil
	case "table", "text":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, toon or table)", s)
	}
}

// Write renders report to w. JSON output is byte-identical to a tools/call
// content string.
func Write(w io.Writer, format Format, report any, colored bool) error {
	switch format {
	case FormatTOON:
		return writeTOON(w, report)
	case FormatTable:
		return writeTables(w, report, colored)
	default:
		text, err := registry.Render(report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err
	}
}

// writeTOON goes through the JSON form so field names match the wire reports.
func writeTOON(w io.Writer, report any) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}
	out, err := toon.Marshal(data, toon.WithIndent(2))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

type table struct {
	title   string
	headers []string
	rows    [][]string
}

func writeTables(w io.Writer, report any, colored bool) error {
	var tables []table
	switch r := report.(type) {
	case *analysis.CommentsReport:
		tables = append(tables, commentsTable(r))
	case *analysis.QuestionsReport:
		tables = append(tables, questionsTable(r))
	case *analysis.HiddenContentReport:
		tables = append(tables, hiddenTable(r))
	case *analysis.FormulasReport:
		tables = append(tables, formulasTable(r))
	case *analysis.ComprehensiveReport:
		tables = append(tables, summaryTable(r))
		if r.Comments != nil {
			tables = append(tables, commentsTable(r.Comments))
		}
		if r.Questions != nil {
			tables = append(tables, questionsTable(r.Questions))
		}
		if r.HiddenContent != nil {
			tables = append(tables, hiddenTable(r.HiddenContent))
		}
	default:
		return fmt.Errorf("no table layout for %T", report)
	}

	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderTable(w, t, colored)
	}
	return nil
}

func renderTable(w io.Writer, t table, colored bool) {
	if colored {
		color.New(color.Bold).Fprintln(w, t.title)
	} else {
		fmt.Fprintln(w, t.title)
	}
	fmt.Fprintln(w, strings.Repeat("=", len(t.title)))
	if len(t.rows) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}

	tbl := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)
	tbl.Header(t.headers)
	for _, row := range t.rows {
		tbl.Append(row)
	}
	tbl.Render()
}

func commentsTable(r *analysis.CommentsReport) table {
	t := table{
		title:   fmt.Sprintf("Comments in %s (%d)", r.Filename, r.TotalComments),
		headers: []string{"Sheet", "Cell", "Author", "Comment", "Value"},
	}
	for _, ws := range r.Worksheets {
		for _, c := range ws.Comments {
			t.rows = append(t.rows, []string{ws.Sheet, c.Cell, c.Author, oneLine(c.Comment), oneLine(c.Value)})
		}
	}
	return t
}

func questionsTable(r *analysis.QuestionsReport) table {
	t := table{
		title:   fmt.Sprintf("Questions in %s (%d)", r.Filename, r.TotalQuestions),
		headers: []string{"Sheet", "Cell", "Question", "Answer Cell", "Answer"},
	}
	for _, ws := range r.Worksheets {
		for _, q := range ws.Questions {
			t.rows = append(t.rows, []string{ws.Sheet, q.Cell, oneLine(q.Question), q.AnswerCell, oneLine(q.Answer)})
		}
	}
	return t
}

func hiddenTable(r *analysis.HiddenContentReport) table {
	t := table{
		title:   fmt.Sprintf("Hidden content in %s (%d rows, %d columns)", r.Filename, r.TotalHiddenRows, r.TotalHiddenColumns),
		headers: []string{"Sheet", "State", "Rows", "Columns", "Hidden Rows", "Hidden Columns"},
	}
	for _, ws := range r.Worksheets {
		rows := make([]string, len(ws.HiddenRows))
		for i, n := range ws.HiddenRows {
			rows[i] = strconv.Itoa(n)
		}
		t.rows = append(t.rows, []string{
			ws.Sheet,
			ws.State,
			strconv.Itoa(ws.RowCount),
			strconv.Itoa(ws.ColumnCount),
			listed(rows, ws.HiddenRowCount),
			listed(ws.HiddenColumns, ws.HiddenColumnCount),
		})
	}
	return t
}

func formulasTable(r *analysis.FormulasReport) table {
	t := table{
		title:   fmt.Sprintf("Formulas in %s (%d)", r.Filename, r.TotalFormulas),
		headers: []string{"Sheet", "Cell", "Formula"},
	}
	for _, ws := range r.Worksheets {
		for _, f := range ws.Formulas {
			t.rows = append(t.rows, []string{ws.Sheet, f.Cell, f.Formula})
		}
	}
	return t
}

func summaryTable(r *analysis.ComprehensiveReport) table {
	s := r.Summary
	return table{
		title:   fmt.Sprintf("Summary of %s", r.Filename),
		headers: []string{"Metric", "Count"},
		rows: [][]string{
			{"Worksheets", strconv.Itoa(s.WorksheetCount)},
			{"Comments", strconv.Itoa(s.TotalComments)},
			{"Questions", strconv.Itoa(s.TotalQuestions)},
			{"Hidden rows", strconv.Itoa(s.TotalHiddenRows)},
			{"Hidden columns", strconv.Itoa(s.TotalHiddenColumns)},
		},
	}
}

// listed joins a possibly truncated list and notes how many were left out.
func listed(items []string, total int) string {
	out := strings.Join(items, ",")
	if more := total - len(items); more > 0 {
		out += fmt.Sprintf(" (+%d more)", more)
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
