package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"riddlehunt/utils/apperror"

	"github.com/xuri/excelize/v2"
)

// Column headers expected on the first row of the source
const (
	ColumnTeamID      = "Team_ID"
	ColumnRiddle      = "Riddle"
	ColumnLeadName    = "Lead_Name"
	ColumnFinalAnswer = "Final_Answer"
)

var RequiredColumns = []string{ColumnTeamID, ColumnRiddle, ColumnLeadName, ColumnFinalAnswer}

// Structural errors, all detected before any database work starts
var (
	ErrSourceNotFound    = errors.New("source file not found")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrUnsupportedSource = errors.New("unsupported source format")
)

// ImportRow is one data row of the source. Line is the 1-based row number in the file.
type ImportRow struct {
	Line        int
	TeamID      string
	Riddle      string
	LeadName    string
	FinalAnswer string
}

// ReadImportRows loads every data row from an .xlsx sheet or a .csv file
// after checking that the header row has all required columns
func ReadImportRows(path, sheet string) ([]ImportRow, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperror.New(apperror.KindValidation, fmt.Sprintf("file %s does not exist", path), ErrSourceNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path, sheet)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, apperror.New(apperror.KindValidation, fmt.Sprintf("cannot read %s, use .xlsx or .csv", path), ErrUnsupportedSource)
	}
	if err != nil {
		return nil, err
	}

	return mapRecords(records)
}

func readWorkbook(path, sheet string) ([][]string, error) {
	xlsx, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX file: %w", err)
	}
	defer xlsx.Close()

	idx, err := xlsx.GetSheetIndex(sheet)
	if err != nil || idx == -1 {
		return nil, apperror.New(apperror.KindValidation,
			fmt.Sprintf("a sheet named '%s' was not found, available sheets: %s", sheet, strings.Join(xlsx.GetSheetList(), ", ")),
			ErrSheetNotFound)
	}

	rows, err := xlsx.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func mapRecords(records [][]string) ([]ImportRow, error) {
	columns := make(map[string]int)
	if len(records) > 0 {
		for i, cell := range records[0] {
			name := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
			if _, seen := columns[name]; !seen {
				columns[name] = i
			}
		}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.New(apperror.KindValidation,
			fmt.Sprintf("the sheet is missing %s, it must have: %s", strings.Join(missing, ", "), strings.Join(RequiredColumns, ", ")),
			ErrMissingColumns)
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for i, record := range records[1:] {
		// Rows may be shorter than the header when trailing cells are empty
		cell := func(name string) string {
			idx := columns[name]
			if idx < len(record) {
				return record[idx]
			}
			return ""
		}
		rows = append(rows, ImportRow{
			Line:        i + 2,
			TeamID:      cell(ColumnTeamID),
			Riddle:      cell(ColumnRiddle),
			LeadName:    cell(ColumnLeadName),
			FinalAnswer: cell(ColumnFinalAnswer),
		})
	}
	return rows, nil
}
