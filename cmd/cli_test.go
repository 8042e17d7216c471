package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/fitcorr/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const fitnessCSV = "height,weight,reaction_time,member_id\n" +
	"170,70,0.40,a1\n" +
	"180,80,0.35,a2\n" +
	"160,61,0.45,a3\n" +
	"175,77,0.37,a4\n"

// resetFlags clears flag values and Changed state left by earlier invocations.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range []*cobra.Command{analyzeCmd, heatmapCmd, scatterCmd, serveCmd} {
		c.Flags().VisitAll(reset)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setup isolates HOME and writes the sample export into it.
func setup(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	csvPath = filepath.Join(home, "fit.csv")
	if err := os.WriteFile(csvPath, []byte(fitnessCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return home, csvPath
}

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	_, csvPath := setup(t)
	out := mustRun(t, "analyze", csvPath)
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"[SCHEMA]",
		"+ strongest positive: height ~ weight",
		"- strongest negative: height ~ reaction_time",
		"ignored columns outside the allow-list: member_id",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONToFile(t *testing.T) {
	home, csvPath := setup(t)
	outPath := filepath.Join(home, "reports", "fit.json")
	mustRun(t, "analyze", csvPath, "--format", "json", "-o", outPath)

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var doc struct {
		RunID  string `json:"run_id"`
		Rows   int    `json:"rows"`
		Result struct {
			Positive struct {
				A string  `json:"a"`
				B string  `json:"b"`
				R float64 `json:"r"`
			} `json:"positive"`
			Degenerate bool `json:"degenerate"`
		} `json:"result"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.RunID == "" || doc.Rows != 4 {
		t.Fatalf("unexpected header fields: %+v", doc)
	}
	if doc.Result.Positive.A != "height" || doc.Result.Positive.B != "weight" || doc.Result.Degenerate {
		t.Fatalf("unexpected positive extreme: %+v", doc.Result)
	}
}

func TestCLI_HeatmapCSV(t *testing.T) {
	_, csvPath := setup(t)
	out := mustRun(t, "heatmap", csvPath)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 cells, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "variable_1,variable_2,correlation" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "height,weight,0.9") {
		t.Fatalf("unexpected first cell: %q", lines[1])
	}
}

func TestCLI_ScatterPNG(t *testing.T) {
	home, csvPath := setup(t)
	outPath := filepath.Join(home, "neg.png")
	mustRun(t, "scatter", csvPath, "--pair", "negative", "-o", outPath, "--width", "320", "--height", "240")
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("not a PNG")
	}

	if _, err := runCmd(t, "scatter", csvPath, "--pair", "sideways", "-o", outPath); err == nil {
		t.Fatalf("expected error for unknown pair kind")
	}
}

func TestCLI_DomainErrorWritesNothing(t *testing.T) {
	home, _ := setup(t)
	bad := filepath.Join(home, "names.csv")
	if err := os.WriteFile(bad, []byte("name,city\nkim,seoul\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	outPath := filepath.Join(home, "report.md")
	_, err := runCmd(t, "analyze", bad, "-o", outPath)
	var empty *dataset.EmptyResultError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyResultError, got %v", err)
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Fatalf("report should not be written on failure")
	}
}

func TestCLI_ConfigSetShowAndDefaultFile(t *testing.T) {
	home, _ := setup(t)
	cfgPath := filepath.Join(home, "fitcorr.yaml")

	mustRun(t, "--config", cfgPath, "config", "set", "data_dir", home)
	mustRun(t, "--config", cfgPath, "config", "set", "data_file", "fit.csv")
	if _, err := runCmd(t, "--config", cfgPath, "config", "set", "log_level", "loud"); err == nil {
		t.Fatalf("expected invalid log_level to be rejected")
	}

	show := mustRun(t, "--config", cfgPath, "config", "show")
	if !strings.Contains(show, "data_file: fit.csv") || !strings.Contains(show, "log_level: info") {
		t.Fatalf("unexpected config show output:\n%s", show)
	}

	// No positional file: the configured data_dir/data_file is analyzed.
	out := mustRun(t, "--config", cfgPath, "analyze")
	if !strings.Contains(out, "height ~ weight") {
		t.Fatalf("expected analysis of configured file:\n%s", out)
	}
}

func TestCLI_DataDirAndFileFlags(t *testing.T) {
	home, _ := setup(t)
	out := mustRun(t, "--data-dir", home, "--file", "fit.csv", "heatmap", "--format", "json")
	var cells []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &cells); err != nil {
		t.Fatalf("decode heatmap json: %v\n%s", err, out)
	}
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}

	_, err := runCmd(t, "--data-dir", home, "--file", "missing.csv", "analyze")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCLI_Columns(t *testing.T) {
	setup(t)
	out := mustRun(t, "columns")
	for _, want := range []string{"grip_left", "reaction_time", "BMI"} {
		if !strings.Contains(out, want+"\n") {
			t.Fatalf("expected %q in columns output", want)
		}
	}
}

func TestCLI_AnalyzeTSVWithDefaultConfig(t *testing.T) {
	home, _ := setup(t)
	tsvPath := filepath.Join(home, "fit.tsv")
	tsv := strings.ReplaceAll(fitnessCSV, ",", "\t")
	if err := os.WriteFile(tsvPath, []byte(tsv), 0o644); err != nil {
		t.Fatalf("write tsv: %v", err)
	}
	out := mustRun(t, "analyze", tsvPath)
	if !strings.Contains(out, "+ strongest positive: height ~ weight") {
		t.Fatalf("expected tab-separated columns to be recognized:\n%s", out)
	}
}

func TestCLI_GlobalFlagsApplyToConfig(t *testing.T) {
	home, _ := setup(t)
	out := mustRun(t, "--debug", "--data-dir", home, "--file", "fit.csv", "config", "show")
	for _, want := range []string{"data_dir: " + home, "data_file: fit.csv", "log_level: debug"} {
		if !strings.Contains(out, want+"\n") {
			t.Fatalf("expected %q in config show output:\n%s", want, out)
		}
	}
}
