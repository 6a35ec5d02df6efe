package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wimwenigerkind/LetsMeet/internal/normalize"
)

// Fixed column layout of the legacy "Lets Meet DB Dump" sheet.
const (
	colName = iota
	colAddress
	colPhone
	colHobbies
	colEmail
	colGender
	colPreferredGender
	colBirthDate
	excelColumns
)

// ExcelSource reads the legacy spreadsheet dump. The first sheet carries one
// user per row; a header row is detected by its leading "Nachname" cell.
type ExcelSource struct {
	path string
}

func NewExcelSource(path string) *ExcelSource {
	return &ExcelSource{path: path}
}

func (s *ExcelSource) Name() string { return "excel" }

func (s *ExcelSource) Records(_ context.Context) ([]Record, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	var records []Record
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if isEmptyRow(row) {
			continue
		}
		records = append(records, parseExcelRow(row))
	}
	return records, nil
}

// parseExcelRow normalizes one spreadsheet row. Missing cells simply stay
// empty; validity (in particular the email) is judged by the pipeline.
func parseExcelRow(row []string) Record {
	if len(row) < excelColumns {
		padded := make([]string, excelColumns)
		copy(padded, row)
		row = padded
	}

	rec := Record{
		Email:           normalize.Email(row[colEmail]),
		PhoneNumber:     strings.TrimSpace(row[colPhone]),
		Gender:          normalize.Gender(row[colGender]),
		PreferredGender: normalize.PreferredGender(row[colPreferredGender]),
		BirthDate:       normalize.ParseExcelDate(row[colBirthDate]),
		Hobbies:         normalize.ParseHobbies(row[colHobbies]),
	}
	rec.FirstName, rec.LastName = normalize.SplitName(row[colName])

	if addr := normalize.ParseAddress(row[colAddress]); addr != (normalize.Address{}) {
		rec.Address = &addr
	}
	return rec
}

func isHeaderRow(row []string) bool {
	return len(row) > 0 && strings.Contains(row[0], "Nachname")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
