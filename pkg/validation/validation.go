package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	v    *validator.Validate
	once sync.Once
)

var spreadsheetExts = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// Validator returns a singleton validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		// Custom: a workbook label must be printable and not blank
		_ = v.RegisterValidation("workbook_name", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if strings.TrimSpace(s) == "" {
				return false
			}
			for _, r := range s {
				if unicode.IsControl(r) {
					return false
				}
			}
			return true
		})
		// Custom: a name with an extension must carry a spreadsheet one
		_ = v.RegisterValidation("spreadsheet_ext", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if filepath.Ext(s) == "" {
				return true
			}
			return HasSpreadsheetExt(s)
		})
	})
	return v
}

// HasSpreadsheetExt reports whether name ends in one of the OOXML spreadsheet extensions.
func HasSpreadsheetExt(name string) bool {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, ext := range spreadsheetExts {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// ValidateStruct validates a struct and returns a user-friendly error string
// in "CODE: message" form. Returns empty string when valid.
func ValidateStruct(s any) string {
	if err := Validator().Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Sprintf("VALIDATION: %s is required", field)
			case "workbook_name":
				return fmt.Sprintf("VALIDATION: %s must be a non-blank name without control characters", field)
			case "spreadsheet_ext":
				return fmt.Sprintf("VALIDATION: %s must be an Excel workbook (.xlsx, .xlsm, .xltx, .xltm)", field)
			case "min", "max", "gte", "lte":
				return fmt.Sprintf("VALIDATION: %s must satisfy %s=%s", field, fe.Tag(), fe.Param())
			}
			return fmt.Sprintf("VALIDATION: invalid %s", field)
		}
		return "VALIDATION: invalid inputs"
	}
	return ""
}
