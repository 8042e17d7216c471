package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/fitcorr/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV_PadsShortRows(t *testing.T) {
	data := []byte("height,weight,note\n170,70,a\n180,80\n")
	rt, err := source.Decode("people.csv", data, source.Options{})
	require.NoError(t, err)
	assert.Equal(t, "people.csv", rt.Name)
	assert.Equal(t, []string{"height", "weight", "note"}, rt.Header)
	require.Len(t, rt.Records, 2)
	assert.Equal(t, []string{"180", "80", ""}, rt.Records[1])
}

func TestDecodeCSV_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"too many fields", "a,b\n1,2,3\n"},
		{"bare quote", "a,b\n1,\"2\"x\n"},
		{"invalid utf8", "a,b\n\xff\xfe,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.Decode("bad.csv", []byte(tt.data), source.Options{})
			var pe *source.ParseError
			require.True(t, errors.As(err, &pe), "want ParseError, got %v", err)
			assert.Equal(t, "bad.csv", pe.Source)
		})
	}
}

func TestDecodeCSV_StripsByteOrderMark(t *testing.T) {
	data := []byte("\ufeff\"height\",\"weight\"\n170,70\n180,80\n")
	rt, err := source.Decode("fit.csv", data, source.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"height", "weight"}, rt.Header)
	require.Len(t, rt.Records, 2)

	rt, err = source.Decode("fit.csv", []byte("\ufeffheight,weight\n170,70\n"), source.Options{})
	require.NoError(t, err)
	assert.Equal(t, "height", rt.Header[0])
}

func TestDecodeTSVAndDelimiterOverride(t *testing.T) {
	rt, err := source.Decode("m.tsv", []byte("age\theight\n30\t170\n"), source.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "height"}, rt.Header)

	rt, err = source.Decode("m.csv", []byte("age;height\n30;170\n"), source.Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"30", "170"}, rt.Records[0])
}

func TestReadFile_Missing(t *testing.T) {
	_, err := source.ReadFile(filepath.Join(t.TempDir(), "nope.csv"), source.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func writeWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"ignored"}))
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"height", "weight", "grip_left"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{170, 70, 30}))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]interface{}{180, 80}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecodeXLSX_SheetSelection(t *testing.T) {
	data := writeWorkbook(t)

	byName, err := source.Decode("fit.xlsx", data, source.Options{SheetName: "data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"height", "weight", "grip_left"}, byName.Header)
	require.Len(t, byName.Records, 2)
	assert.Equal(t, []string{"180", "80", ""}, byName.Records[1])

	byIndex, err := source.Decode("fit.xlsx", data, source.Options{SheetIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, byName.Records, byIndex.Records)

	_, err = source.Decode("fit.xlsx", data, source.Options{SheetName: "Missing"})
	var pe *source.ParseError
	require.True(t, errors.As(err, &pe))

	_, err = source.Decode("fit.xlsx", []byte("not a zip"), source.Options{})
	require.True(t, errors.As(err, &pe))
}

func TestDecodeXLSX_RowWiderThanHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"height", "weight"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{170, 70, 99}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = source.Decode("wide.xlsx", buf.Bytes(), source.Options{})
	var pe *source.ParseError
	require.True(t, errors.As(err, &pe), "want ParseError, got %v", err)
	assert.Contains(t, pe.Error(), "expected 2 fields, saw 3")
}
