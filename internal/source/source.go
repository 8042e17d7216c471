package source

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// RawTable is a header plus string-typed records, one per measured subject.
type RawTable struct {
	Name    string
	Header  []string
	Records [][]string
}

// Options controls how a source is decoded into a RawTable.
type Options struct {
	// Delimiter for CSV. If 0, ',' is used (or '\t' for .tsv files).
	Delimiter rune
	// XLSX sheet selection. SheetName wins over SheetIndex; SheetIndex is 1-based.
	SheetName  string
	SheetIndex int
}

// Reader decodes one family of tabular formats.
type Reader interface {
	CanRead(filename string) bool
	Read(name string, data []byte, opt Options) (*RawTable, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ParseError reports a source that cannot be read as tabular data at all.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("cannot parse %s as tabular data: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("cannot parse tabular data: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadFile reads path from disk and decodes it.
func ReadFile(path string, opt Options) (*RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Decode(path, data, opt)
}

// Decode selects a reader by filename and decodes data. Unknown extensions
// are treated as CSV.
func Decode(name string, data []byte, opt Options) (*RawTable, error) {
	base := filepath.Base(name)
	for _, r := range registry {
		if r.CanRead(name) {
			return r.Read(base, data, opt)
		}
	}
	return csvReader{}.Read(base, data, opt)
}

func checkUTF8(name string, data []byte) error {
	if !utf8.Valid(data) {
		return &ParseError{Source: name, Err: fmt.Errorf("input is not valid UTF-8")}
	}
	return nil
}

func init() {
	Register(xlsxReader{})
	Register(csvReader{})
}
