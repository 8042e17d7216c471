package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataFile, c.DataFile)
	assert.Equal(t, filepath.Join(".", DefaultDataFile), c.DataPath())
	assert.Equal(t, "127.0.0.1:8501", c.ListenAddr)
	assert.Equal(t, int64(64<<20), c.CacheMaxCost)
	assert.Equal(t, rune(0), c.DatasetOptions().Source.Delimiter)
	assert.Equal(t, '.', c.DatasetOptions().DecimalSeparator)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_file: a.csv\ndata_dir: /data\ndelimiter: tab\n"), 0o644))
	t.Setenv("FITCORR_DATA_FILE", "b.csv")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", c.DataFile)
	assert.Equal(t, filepath.Join("/data", "b.csv"), c.DataPath())
	assert.Equal(t, '\t', c.DatasetOptions().Source.Delimiter)
}

func TestSaveAndReload(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("data_file", "measurements.xlsx"))
	require.NoError(t, c.Set("sheet_index", "2"))
	require.NoError(t, Save(c, ""))

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "measurements.xlsx", again.DataFile)
	assert.Equal(t, 2, again.SheetIndex)
	got, err := again.Get("sheet_index")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestSetRejectsInvalid(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Error(t, c.Set("unknown", "x"))
	assert.Error(t, c.Set("log_level", "loud"))
	assert.Error(t, c.Set("delimiter", "#"))
	assert.Error(t, c.Set("sheet_index", "zero"))
	assert.Error(t, c.Set("listen_addr", "nope"))
	assert.NoError(t, c.Set("decimal_separator", "comma"))
	assert.Equal(t, ',', c.DatasetOptions().DecimalSeparator)
}

func TestDataPathAbsolute(t *testing.T) {
	c := &Global{DataFile: "/abs/file.csv", DataDir: "/ignored"}
	assert.Equal(t, "/abs/file.csv", c.DataPath())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "fitcorr.yaml")
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("log_format", "json"))
	require.NoError(t, Save(c, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", again.LogFormat)
}

func TestDefaultDelimiterFollowsExtension(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	opt := c.DatasetOptions()

	tsv, err := dataset.Load("fit.tsv", []byte("height\tweight\n170\t70\n180\t80\n160\t61\n"), opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"height", "weight"}, tsv.Names())
	assert.Empty(t, tsv.Ignored)

	csv, err := dataset.Load("fit.csv", []byte("height,weight\n170,70\n180,80\n"), opt)
	require.NoError(t, err)
	assert.Equal(t, []string{"height", "weight"}, csv.Names())

	require.NoError(t, c.Set("delimiter", "auto"))
	assert.Equal(t, rune(0), c.DatasetOptions().Source.Delimiter)
}
