package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type args struct {
	Filename string `validate:"required,max=16,workbook_name"`
}

type nameArgs struct {
	Filename string `validate:"required,workbook_name,spreadsheet_ext"`
}

func TestValidateStruct(t *testing.T) {
	require.Equal(t, "", ValidateStruct(args{Filename: "book.xlsx"}))
	require.Equal(t, "VALIDATION: filename is required", ValidateStruct(args{}))
	require.Contains(t, ValidateStruct(args{Filename: "   "}), "non-blank")
	require.Contains(t, ValidateStruct(args{Filename: "a\x00b.xlsx"}), "control characters")
	require.Equal(t, "VALIDATION: filename must satisfy max=16", ValidateStruct(args{Filename: "a-very-long-workbook-name.xlsx"}))
}

func TestSpreadsheetExt(t *testing.T) {
	require.Equal(t, "", ValidateStruct(nameArgs{Filename: "/data/Q3.XLSM"}))
	require.Equal(t, "", ValidateStruct(nameArgs{Filename: "quarterly budget"}), "names without an extension pass")
	require.Equal(t,
		"VALIDATION: filename must be an Excel workbook (.xlsx, .xlsm, .xltx, .xltm)",
		ValidateStruct(nameArgs{Filename: "notes.docx"}))
	require.Contains(t, ValidateStruct(nameArgs{Filename: "/data/q3.csv"}), "must be an Excel workbook")
	require.True(t, HasSpreadsheetExt("x.xltx"))
	require.False(t, HasSpreadsheetExt("x.xls"))
}
