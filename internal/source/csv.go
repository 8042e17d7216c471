package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvReader) Read(name string, data []byte, opt Options) (*RawTable, error) {
	if err := checkUTF8(name, data); err != nil {
		return nil, err
	}
	// Excel "CSV UTF-8" exports start with a byte order mark.
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Source: name, Err: errors.New("no header row")}
		}
		return nil, &ParseError{Source: name, Err: fmt.Errorf("read header: %w", err)}
	}
	ncol := len(header)
	rt := &RawTable{Name: name, Header: header}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Source: name, Err: fmt.Errorf("read row %d: %w", line-1, err)}
		}
		if len(rec) > ncol {
			return nil, &ParseError{Source: name, Err: fmt.Errorf("row %d: expected %d fields, saw %d", line-1, ncol, len(rec))}
		}
		// Short rows are padded with empty (missing) cells.
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		rt.Records = append(rt.Records, rec)
	}
	return rt, nil
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}
