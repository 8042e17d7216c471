package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/KaramelBytes/fitcorr/internal/analysis"
	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, rows ...string) *Document {
	t.Helper()
	tbl, err := dataset.Load("fitness.csv", []byte(strings.Join(rows, "\n")), dataset.Options{})
	require.NoError(t, err)
	res, err := analysis.Analyze(tbl)
	require.NoError(t, err)
	return New("run-1", tbl, res)
}

func TestMarkdownSections(t *testing.T) {
	d := build(t,
		"height,weight,grip_left,reaction_time,subject",
		"170,70,30,0.40,a",
		"180,80,35,0.35,b",
		"160,61,28,0.45,c",
		",,,,d",
	)
	md := d.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: fitness.csv",
		"Rows: 3 (read 4)",
		"Columns: 4",
		"[SCHEMA]",
		"- height: non-null 3, missing 0.0%",
		"[EXTREME PAIRS]",
		"+ strongest positive: ",
		"- strongest negative: ",
		"[CORRELATIONS]",
		"[NOTES]",
		"ignored columns outside the allow-list: subject",
		"dropped 1/4 rows with no recognized measurement",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "degenerate")
}

func TestMarkdownDegenerate(t *testing.T) {
	d := build(t, "height,weight", "170,70", "180,80", "160,60")
	md := d.Markdown()
	assert.Contains(t, md, "+ strongest positive: height ~ weight: r=1.0000 (n=3)")
	assert.Contains(t, md, "degenerate: single pair")
	assert.Contains(t, md, "reported as both extremes")
}

func TestJSONDocument(t *testing.T) {
	d := build(t, "height,weight,bmi", "170,70,x", "180,80,y", "160,60,z")
	b, err := d.JSON()
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "run-1", out["run_id"])
	assert.Equal(t, []interface{}{"bmi"}, out["dropped_columns"])
	result := out["result"].(map[string]interface{})
	assert.Equal(t, true, result["degenerate"])
	pos := result["positive"].(map[string]interface{})
	assert.Equal(t, "height", pos["a"])
	assert.Equal(t, "weight", pos["b"])
}

func TestWriteHeatmapCSV(t *testing.T) {
	cells := []analysis.Cell{
		{Variable1: "height", Variable2: "weight", Correlation: 0.98766},
		{Variable1: "height", Variable2: "grip_left", Correlation: -0.5},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteHeatmapCSV(&buf, cells))
	want := "variable_1,variable_2,correlation\nheight,weight,0.9877\nheight,grip_left,-0.5000\n"
	assert.Equal(t, want, buf.String())
}
