package workbooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Visibility is the sheet-level tab state recorded in the workbook part.
type Visibility string

const (
	Visible    Visibility = "visible"
	Hidden     Visibility = "hidden"
	VeryHidden Visibility = "veryHidden"
)

// UnknownAuthor is reported for comments whose author was not recorded.
const UnknownAuthor = "Unknown"

// Comment is a cell annotation.
type Comment struct {
	Text   string
	Author string
}

// Cell is one populated position of a worksheet. Formula cells carry the
// formula text (with a leading "=") as their Value; cached results are never read.
type Cell struct {
	Row     int
	Col     int
	Value   string
	Formula string
	Comment *Comment
}

// Coordinate returns the A1-style label of the cell, e.g. "B7".
func (c Cell) Coordinate() string {
	return Coordinate(c.Row, c.Col)
}

// Coordinate converts 1-based row/column indexes to an A1-style label.
// Out-of-range input yields an empty string.
func Coordinate(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	return name
}

// ColumnLetter converts a 1-based column index to its letter label.
func ColumnLetter(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return ""
	}
	return name
}

type cellKey struct{ row, col int }

// Sheet is an immutable snapshot of one worksheet.
type Sheet struct {
	Name   string
	State  Visibility
	MaxRow int
	MaxCol int

	cells      map[cellKey]*Cell
	hiddenRows map[int]struct{}
	hiddenCols map[int]struct{}
}

func newSheet(name string, state Visibility) *Sheet {
	return &Sheet{
		Name:       name,
		State:      state,
		MaxRow:     1,
		MaxCol:     1,
		cells:      make(map[cellKey]*Cell),
		hiddenRows: make(map[int]struct{}),
		hiddenCols: make(map[int]struct{}),
	}
}

// Hidden reports whether the tab is in the plain "hidden" state. A veryHidden
// tab reports false; callers read State to tell it apart from a visible one.
func (s *Sheet) Hidden() bool {
	return s.State == Hidden
}

// Cell returns the populated cell at (row, col).
func (s *Sheet) Cell(row, col int) (Cell, bool) {
	c, ok := s.cells[cellKey{row, col}]
	if !ok {
		return Cell{Row: row, Col: col}, false
	}
	return *c, true
}

// Value returns the stringified value at (row, col), or "" when the cell is empty or absent.
func (s *Sheet) Value(row, col int) string {
	if c, ok := s.cells[cellKey{row, col}]; ok {
		return c.Value
	}
	return ""
}

// Cells returns every populated cell in row-major order.
func (s *Sheet) Cells() []Cell {
	out := make([]Cell, 0, len(s.cells))
	for _, c := range s.cells {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// RowHidden reports the author-set hidden flag of a 1-based row.
func (s *Sheet) RowHidden(row int) bool {
	_, ok := s.hiddenRows[row]
	return ok
}

// ColumnHidden reports the author-set hidden flag of a 1-based column.
func (s *Sheet) ColumnHidden(col int) bool {
	_, ok := s.hiddenCols[col]
	return ok
}

func (s *Sheet) cell(row, col int) *Cell {
	k := cellKey{row, col}
	c, ok := s.cells[k]
	if !ok {
		c = &Cell{Row: row, Col: col}
		s.cells[k] = c
	}
	s.extend(row, col)
	return c
}

func (s *Sheet) extend(row, col int) {
	if row > s.MaxRow {
		s.MaxRow = row
	}
	if col > s.MaxCol {
		s.MaxCol = col
	}
}

// Workbook is the ordered set of worksheets materialized from one payload.
type Workbook struct {
	Sheets []*Sheet
}

// Sheet looks a worksheet up by name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// LoadErrorKind separates missing, unreadable and oversized input.
type LoadErrorKind int

const (
	NotFound LoadErrorKind = iota + 1
	Corrupt
	// TooLarge means the package parts unzip past the configured limit.
	TooLarge
)

func (k LoadErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case Corrupt:
		return "corrupt"
	case TooLarge:
		return "too large"
	default:
		return "unknown"
	}
}

// ErrNoContent is the cause of a NotFound LoadError when no bytes were supplied.
var ErrNoContent = errors.New("no workbook content supplied")

// LoadError reports why a payload could not be materialized.
type LoadError struct {
	Kind  LoadErrorKind
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("workbook %s: %v", e.Kind, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// IsNotFound reports whether err is a LoadError of kind NotFound.
func IsNotFound(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == NotFound
}

// IsCorrupt reports whether err is a LoadError of kind Corrupt.
func IsCorrupt(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == Corrupt
}

// IsTooLarge reports whether err is a LoadError of kind TooLarge.
func IsTooLarge(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == TooLarge
}

// WorkbookGate coordinates capacity for open workbooks (backed by runtime.Controller).
type WorkbookGate interface {
	AcquireWorkbook(ctx context.Context) error
	ReleaseWorkbook()
}

// Loader materializes workbook payloads. It holds no per-request state and is
// safe for concurrent use.
type Loader struct {
	gate   WorkbookGate
	opts   excelize.Options
	logger zerolog.Logger
}

// NewLoader constructs a Loader. Gate may be nil for tests and CLI use.
// maxUnzipped bounds the total uncompressed size of the package parts, not
// the payload itself (<= 0 keeps excelize's default).
func NewLoader(gate WorkbookGate, maxUnzipped int64, logger zerolog.Logger) *Loader {
	opts := excelize.Options{}
	if maxUnzipped > 0 {
		opts.UnzipSizeLimit = maxUnzipped
		opts.UnzipXMLSizeLimit = min(maxUnzipped, excelize.StreamChunkSize)
	}
	return &Loader{gate: gate, opts: opts, logger: logger.With().Str("component", "workbooks").Logger()}
}

// Load materializes data with a default Loader.
func Load(data []byte) (*Workbook, error) {
	return NewLoader(nil, 0, zerolog.Nop()).Load(context.Background(), data)
}

// Load parses data into a Workbook. The excelize handle, and any temporary
// files it staged for oversized parts, is closed before Load returns.
func (l *Loader) Load(ctx context.Context, data []byte) (*Workbook, error) {
	if len(data) == 0 {
		return nil, &LoadError{Kind: NotFound, Cause: ErrNoContent}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.gate != nil {
		if err := l.gate.AcquireWorkbook(ctx); err != nil {
			return nil, fmt.Errorf("workbooks: acquire open slot: %w", err)
		}
		defer l.gate.ReleaseWorkbook()
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), l.opts)
	if err != nil {
		// excelize has no sentinel for the unzip limit.
		if strings.Contains(err.Error(), "unzip size exceeds") {
			return nil, &LoadError{Kind: TooLarge, Cause: err}
		}
		return nil, &LoadError{Kind: Corrupt, Cause: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.logger.Warn().Err(cerr).Msg("close workbook")
		}
	}()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, &LoadError{Kind: Corrupt, Cause: errors.New("workbook has no sheets")}
	}
	states := sheetStates(f)

	wb := &Workbook{Sheets: make([]*Sheet, 0, len(names))}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sh, err := l.materialize(f, name, states[name])
		if errors.Is(err, errNotWorksheet) {
			l.logger.Debug().Str("sheet", name).Msg("skipping non-worksheet sheet")
			continue
		}
		if err != nil {
			return nil, &LoadError{Kind: Corrupt, Cause: fmt.Errorf("sheet %q: %w", name, err)}
		}
		wb.Sheets = append(wb.Sheets, sh)
	}
	return wb, nil
}

var errNotWorksheet = errors.New("not a worksheet")

func sheetStates(f *excelize.File) map[string]Visibility {
	out := make(map[string]Visibility)
	if f.WorkBook == nil {
		return out
	}
	for _, s := range f.WorkBook.Sheets.Sheet {
		switch strings.ToLower(s.State) {
		case "hidden":
			out[s.Name] = Hidden
		case "veryhidden":
			out[s.Name] = VeryHidden
		default:
			out[s.Name] = Visible
		}
	}
	return out
}

func (l *Loader) materialize(f *excelize.File, name string, state Visibility) (*Sheet, error) {
	if state == "" {
		state = Visible
	}
	sh := newSheet(name, state)

	// Chart, dialog and macro sheets have no cell grid.
	ref, err := f.GetSheetDimension(name)
	if err != nil {
		if strings.Contains(err.Error(), "is not a worksheet") {
			return nil, errNotWorksheet
		}
		return nil, err
	}
	if row, col, ok := dimensionEnd(ref); ok {
		sh.extend(row, col)
	}

	// Display text: booleans read TRUE/FALSE and dates follow their number format.
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	for r, cols := range rows {
		for c, v := range cols {
			row, col := r+1, c+1
			formula, ferr := f.GetCellFormula(name, Coordinate(row, col))
			if ferr != nil {
				l.logger.Debug().Err(ferr).Str("sheet", name).Int("row", row).Int("col", col).Msg("skipping unreadable formula")
				formula = ""
			}
			if v == "" && formula == "" {
				continue
			}
			cell := sh.cell(row, col)
			cell.Value = v
			if formula != "" {
				cell.Formula = "=" + strings.TrimPrefix(formula, "=")
				cell.Value = cell.Formula
			}
		}
	}

	comments, err := f.GetComments(name)
	if err != nil {
		return nil, err
	}
	for _, cm := range comments {
		col, row, cerr := excelize.CellNameToCoordinates(cm.Cell)
		if cerr != nil {
			l.logger.Debug().Err(cerr).Str("sheet", name).Str("ref", cm.Cell).Msg("skipping comment with bad reference")
			continue
		}
		if c := newComment(cm); c != nil {
			sh.cell(row, col).Comment = c
		}
	}

	rowElems, err := rowElementCount(f, name)
	if err != nil {
		return nil, err
	}
	for row := 1; row <= min(sh.MaxRow, rowElems); row++ {
		visible, verr := f.GetRowVisible(name, row)
		if verr == nil && !visible {
			sh.hiddenRows[row] = struct{}{}
		}
	}
	for col := 1; col <= sh.MaxCol; col++ {
		visible, verr := f.GetColVisible(name, ColumnLetter(col))
		if verr == nil && !visible {
			sh.hiddenCols[col] = struct{}{}
		}
	}
	return sh, nil
}

// newComment folds the plain and rich-text runs of a comment into one string
// and fills the author default. Comments without text yield nil.
func newComment(c excelize.Comment) *Comment {
	var b strings.Builder
	b.WriteString(c.Text)
	for _, run := range c.Paragraph {
		b.WriteString(run.Text)
	}
	if b.Len() == 0 {
		return nil
	}
	author := strings.TrimSpace(c.Author)
	if author == "" {
		author = UnknownAuthor
	}
	return &Comment{Text: b.String(), Author: author}
}

// dimensionEnd parses the bottom-right corner of a dimension ref ("A1:F20" or "C3").
func dimensionEnd(ref string) (row, col int, ok bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, 0, false
	}
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		ref = ref[i+1:]
	}
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(ref, "$", ""))
	if err != nil {
		return 0, 0, false
	}
	return row, col, true
}

// rowElementCount returns the highest row number that has a row element in the
// sheet XML. GetRowVisible reports rows past it as not visible, so the hidden
// scan is bounded by it.
func rowElementCount(f *excelize.File, name string) (int, error) {
	rows, err := f.Rows(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Error(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	return n, rows.Close()
}
