package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vinodismyname/sheetaudit/internal/workbooks"
)

// Input names the workbook for reporting and carries its bytes.
type Input struct {
	Filename string `json:"filename" validate:"required,max=512,workbook_name,spreadsheet_ext" jsonschema_description:"Workbook filename (.xlsx file)"`
	Content  []byte `json:"-"`
}

// Analyzer runs scan passes against freshly loaded workbooks. Every pass loads
// the payload itself so one pass failing never taints another.
type Analyzer struct {
	Loader          *workbooks.Loader
	MaxListedHidden int
	Logger          zerolog.Logger
}

// New constructs an Analyzer. A nil loader falls back to an ungated default.
func New(loader *workbooks.Loader, maxListedHidden int, logger zerolog.Logger) *Analyzer {
	if loader == nil {
		loader = workbooks.NewLoader(nil, 0, logger)
	}
	return &Analyzer{
		Loader:          loader,
		MaxListedHidden: maxListedHidden,
		Logger:          logger.With().Str("component", "analysis").Logger(),
	}
}

func (a *Analyzer) load(ctx context.Context, pass string, in Input) (*workbooks.Workbook, error) {
	start := time.Now()
	wb, err := a.Loader.Load(ctx, in.Content)
	if err != nil {
		a.Logger.Debug().Err(err).Str("pass", pass).Str("filename", in.Filename).Msg("load failed")
		return nil, err
	}
	a.Logger.Debug().
		Str("pass", pass).
		Str("filename", in.Filename).
		Int("sheets", len(wb.Sheets)).
		Dur("load", time.Since(start)).
		Msg("workbook loaded")
	return wb, nil
}

// ExtractComments loads the workbook and lists its comments.
func (a *Analyzer) ExtractComments(ctx context.Context, in Input) (*CommentsReport, error) {
	wb, err := a.load(ctx, "comments", in)
	if err != nil {
		return nil, err
	}
	return ScanComments(in.Filename, wb), nil
}

// ExtractQuestions loads the workbook and lists its question/answer pairs.
func (a *Analyzer) ExtractQuestions(ctx context.Context, in Input) (*QuestionsReport, error) {
	wb, err := a.load(ctx, "questions", in)
	if err != nil {
		return nil, err
	}
	return ScanQuestions(in.Filename, wb), nil
}

// DetectHiddenContent loads the workbook and reports hidden rows, columns and sheets.
func (a *Analyzer) DetectHiddenContent(ctx context.Context, in Input) (*HiddenContentReport, error) {
	wb, err := a.load(ctx, "hidden", in)
	if err != nil {
		return nil, err
	}
	return ScanHidden(in.Filename, wb, a.MaxListedHidden), nil
}

// ExtractFormulas loads the workbook and lists formula text per cell.
func (a *Analyzer) ExtractFormulas(ctx context.Context, in Input) (*FormulasReport, error) {
	wb, err := a.load(ctx, "formulas", in)
	if err != nil {
		return nil, err
	}
	return ScanFormulas(in.Filename, wb), nil
}

// ComprehensiveAnalysis runs the comments, questions and hidden-content passes
// one after another and composes their summary. The first failure aborts it.
func (a *Analyzer) ComprehensiveAnalysis(ctx context.Context, in Input) (*ComprehensiveReport, error) {
	comments, err := a.ExtractComments(ctx, in)
	if err != nil {
		return nil, err
	}
	questions, err := a.ExtractQuestions(ctx, in)
	if err != nil {
		return nil, err
	}
	hidden, err := a.DetectHiddenContent(ctx, in)
	if err != nil {
		return nil, err
	}
	return Compose(in.Filename, comments, questions, hidden), nil
}
