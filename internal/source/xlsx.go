package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Read loads the selected sheet. If SheetName is empty and SheetIndex <= 0,
// the first sheet is used.
func (xlsxReader) Read(name string, data []byte, opt Options) (*RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("workbook has no sheets")}
	}
	sheet := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &ParseError{Source: name, Err: fmt.Errorf("sheet '%s' not found; available sheets: %s",
				opt.SheetName, strings.Join(sheets, ", "))}
		}
	} else {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		if idx > len(sheets) {
			return nil, &ParseError{Source: name, Err: fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))}
		}
		sheet = sheets[idx-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("read sheet %s: %w", sheet, err)}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("sheet %s has no header row", sheet)}
	}
	header := rows[0]
	ncol := len(header)
	rt := &RawTable{Name: fmt.Sprintf("%s (sheet: %s)", name, sheet), Header: header}
	for i, row := range rows[1:] {
		if len(row) > ncol {
			return nil, &ParseError{Source: name, Err: fmt.Errorf("sheet %s row %d: expected %d fields, saw %d", sheet, i+1, ncol, len(row))}
		}
		// GetRows trims trailing empty cells, so pad every row to the header width.
		rec := make([]string, ncol)
		copy(rec, row)
		rt.Records = append(rt.Records, rec)
	}
	return rt, nil
}
