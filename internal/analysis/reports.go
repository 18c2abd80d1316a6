package analysis

// DefaultMaxListedHidden caps the hidden row/column ids listed per worksheet.
const DefaultMaxListedHidden = 50

// CommentFinding is one annotated cell.
type CommentFinding struct {
	Cell    string `json:"cell"`
	Value   string `json:"value"`
	Comment string `json:"comment"`
	Author  string `json:"author"`
}

// SheetComments groups the comments of one worksheet.
type SheetComments struct {
	Sheet        string           `json:"sheet"`
	CommentCount int              `json:"comment_count"`
	Comments     []CommentFinding `json:"comments"`
}

// CommentsReport is the output of extract_comments.
type CommentsReport struct {
	Filename      string          `json:"filename"`
	TotalComments int             `json:"total_comments"`
	Worksheets    []SheetComments `json:"worksheets"`
}

// QuestionFinding pairs a question cell with the cell immediately to its right.
type QuestionFinding struct {
	Cell       string `json:"cell"`
	Question   string `json:"question"`
	AnswerCell string `json:"answer_cell"`
	Answer     string `json:"answer"`
}

// SheetQuestions groups the questions of one worksheet.
type SheetQuestions struct {
	Sheet         string            `json:"sheet"`
	QuestionCount int               `json:"question_count"`
	Questions     []QuestionFinding `json:"questions"`
}

// QuestionsReport is the output of extract_questions.
type QuestionsReport struct {
	Filename       string           `json:"filename"`
	TotalQuestions int              `json:"total_questions"`
	Worksheets     []SheetQuestions `json:"worksheets"`
}

// SheetHidden describes the hidden state of one worksheet. HiddenRows and
// HiddenColumns are truncated; the counts are not.
type SheetHidden struct {
	Sheet             string   `json:"sheet"`
	Hidden            bool     `json:"hidden"`
	State             string   `json:"state"`
	RowCount          int      `json:"row_count"`
	ColumnCount       int      `json:"column_count"`
	HiddenRowCount    int      `json:"hidden_row_count"`
	HiddenColumnCount int      `json:"hidden_column_count"`
	HiddenRows        []int    `json:"hidden_rows"`
	HiddenColumns     []string `json:"hidden_columns"`
}

// HiddenContentReport is the output of detect_hidden_content. Every worksheet is listed.
type HiddenContentReport struct {
	Filename           string        `json:"filename"`
	TotalHiddenRows    int           `json:"total_hidden_rows"`
	TotalHiddenColumns int           `json:"total_hidden_columns"`
	Worksheets         []SheetHidden `json:"worksheets"`
}

// Summary totals the three underlying reports.
type Summary struct {
	TotalComments      int `json:"total_comments"`
	TotalQuestions     int `json:"total_questions"`
	TotalHiddenRows    int `json:"total_hidden_rows"`
	TotalHiddenColumns int `json:"total_hidden_columns"`
	WorksheetCount     int `json:"worksheet_count"`
}

// ComprehensiveReport is the output of comprehensive_analysis.
type ComprehensiveReport struct {
	Filename      string               `json:"filename"`
	Summary       Summary              `json:"summary"`
	Comments      *CommentsReport      `json:"comments"`
	Questions     *QuestionsReport     `json:"questions"`
	HiddenContent *HiddenContentReport `json:"hidden_content"`
}

// FormulaFinding is one formula-bearing cell.
type FormulaFinding struct {
	Cell    string `json:"cell"`
	Formula string `json:"formula"`
}

// SheetFormulas groups the formulas of one worksheet.
type SheetFormulas struct {
	Sheet        string           `json:"sheet"`
	FormulaCount int              `json:"formula_count"`
	Formulas     []FormulaFinding `json:"formulas"`
}

// FormulasReport is the output of extract_formulas.
type FormulasReport struct {
	Filename      string          `json:"filename"`
	TotalFormulas int             `json:"total_formulas"`
	Worksheets    []SheetFormulas `json:"worksheets"`
}
