package xlsform

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

const (
	minColumnWidth = 8
	maxColumnWidth = 60
)

// Write saves wb as an xlsx file at path.
func Write(fs afero.Fs, path string, wb *Workbook) error {
	if len(wb.Settings.Rows) == 0 {
		return ErrNoSettings
	}

	out, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	if err := Encode(out, wb); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

// Encode writes wb to w in xlsx format.
func Encode(w io.Writer, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, sheet := range wb.sheets() {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), sheet.Name)
		} else {
			_, err = f.NewSheet(sheet.Name)
		}
		if err != nil {
			return fmt.Errorf("adding sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet *Sheet, headerStyle int) error {
	if len(sheet.Columns) == 0 {
		return nil
	}

	header := make([]any, len(sheet.Columns))
	widths := make([]int, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col
		widths[i] = utf8.RuneCountInString(col)
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(sheet.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, row := range sheet.Rows {
		values := make([]any, len(sheet.Columns))
		for i, col := range sheet.Columns {
			v, ok := row[col]
			if !ok {
				continue
			}
			values[i] = v
			widths[i] = max(widths[i], utf8.RuneCountInString(v))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return err
		}
	}

	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(min(max(w+2, minColumnWidth), maxColumnWidth))
		if err := f.SetColWidth(sheet.Name, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the workbook at path. Missing choices or settings sheets load
// as empty sheets.
func Load(fs afero.Fs, path string) (*Workbook, error) {
	in, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()

	wb, err := Decode(in)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return wb, nil
}

// Decode reads an xlsx workbook from r. Empty cells are left out of the
// rows.
func Decode(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	present := map[string]bool{}
	for _, name := range f.GetSheetList() {
		present[name] = true
	}
	if !present[SurveySheet] {
		return nil, fmt.Errorf("no %s sheet", SurveySheet)
	}

	wb := &Workbook{
		Survey:   Sheet{Name: SurveySheet},
		Choices:  Sheet{Name: ChoicesSheet},
		Settings: Sheet{Name: SettingsSheet},
	}
	for _, sheet := range wb.sheets() {
		if !present[sheet.Name] {
			continue
		}
		if err := readSheet(f, sheet); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet.Name, err)
		}
	}
	return wb, nil
}

func readSheet(f *excelize.File, sheet *Sheet) error {
	rows, err := f.GetRows(sheet.Name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	sheet.Columns = rows[0]
	for _, cells := range rows[1:] {
		row := Row{}
		for i, v := range cells {
			if i < len(sheet.Columns) && sheet.Columns[i] != "" && v != "" {
				row[sheet.Columns[i]] = v
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return nil
}
