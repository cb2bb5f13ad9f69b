package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	wd "github.com/KaramelBytes/waterborne-cli/internal/waterdata"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so state does not leak
// between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args, returning stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// writeDataset writes a small dataset with every column, minus drop.
func writeDataset(t *testing.T, dir string, drop ...string) string {
	t.Helper()
	header := []string{wd.Country, wd.Region, wd.Year, wd.WaterSourceType}
	header = append(header, wd.QualityColumns()...)
	header = append(header, wd.DiseaseColumns()...)
	header = append(header, wd.TreatmentMethod, wd.CleanWaterAccess, wd.InfantMortalityRate,
		wd.GDPPerCapita, wd.HealthcareAccess, wd.SanitationCoverage)
	skip := map[int]bool{}
	for i, h := range header {
		for _, d := range drop {
			if h == d {
				skip[i] = true
			}
		}
	}
	keep := func(rec []string) []string {
		var out []string
		for i, v := range rec {
			if !skip[i] {
				out = append(out, v)
			}
		}
		return out
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(keep(header))
	countries := []string{"Brazil", "India", "Nigeria"}
	for i := 0; i < 9; i++ {
		f := float64(i)
		rec := []string{countries[i%3], []string{"North", "South"}[i%2], fmt.Sprint(2010 + i%3), []string{"Lake", "Well"}[i%2]}
		for q := range wd.QualityColumns() {
			rec = append(rec, fmt.Sprintf("%.2f", f+float64(q*i%4)))
		}
		rec = append(rec,
			fmt.Sprintf("%.1f", 100+f*12), fmt.Sprintf("%.1f", 10+float64(i%3)), fmt.Sprintf("%.1f", 5+float64(i%4)),
			[]string{"Boiling", "None", "Filtration"}[i%3],
			fmt.Sprintf("%.1f", 50+f*5), fmt.Sprintf("%.1f", 40-f), fmt.Sprintf("%.0f", 800+f*700),
			fmt.Sprintf("%.1f", 30+f*5), fmt.Sprintf("%.1f", 35+f*6),
		)
		_ = w.Write(keep(rec))
	}
	w.Flush()
	p := filepath.Join(dir, "water.csv")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return p
}

func TestCLI_AnalyzeWritesChartsAndManifest(t *testing.T) {
	home := isolateHome(t)
	data := writeDataset(t, home)
	out := filepath.Join(home, "out")

	stdout := runCmd(t, "analyze", data, "--out", out)
	for _, want := range []string{"=== Dataset Info ===", "=== Summary Statistics ===", "=== Mean by Country ===", "=== Correlation ===", "9 chart(s) written"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("expected 9 charts and a manifest, got %d entries", len(entries))
	}
	b, err := os.ReadFile(filepath.Join(out, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m struct {
		RunID  string `json:"run_id"`
		Rows   int    `json:"rows"`
		Charts []struct {
			Name string `json:"name"`
			Path string `json:"path"`
		} `json:"charts"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if m.RunID == "" || m.Rows != 9 || len(m.Charts) != 9 || m.Charts[0].Name != "disease_by_country" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestCLI_ChartsDefaultRunDirAndYearSkip(t *testing.T) {
	home := isolateHome(t)
	data := writeDataset(t, home, wd.Year)
	runCmd(t, "config", "set", "output_dir", filepath.Join(home, "charts"))

	stdout := runCmd(t, "charts", data, "--format", "svg")
	if !strings.Contains(stdout, "06 yearly_trends: skipped") || !strings.Contains(stdout, "8 chart(s) written") {
		t.Fatalf("unexpected stdout:\n%s", stdout)
	}
	runs, err := os.ReadDir(filepath.Join(home, "charts"))
	if err != nil || len(runs) != 1 || !runs[0].IsDir() {
		t.Fatalf("expected a single run directory, got %v (%v)", runs, err)
	}
	if _, err := os.Stat(filepath.Join(home, "charts", runs[0].Name(), "09_gdp_vs_diarrhea.svg")); err != nil {
		t.Fatalf("svg chart missing: %v", err)
	}
}

func TestCLI_MissingColumnFailsStrict(t *testing.T) {
	home := isolateHome(t)
	data := writeDataset(t, home, wd.LeadConcentration)

	_, err := execCmd("charts", data, "--out", filepath.Join(home, "out"), "--only", "5")
	var mc *analysis.MissingColumnError
	if !errors.As(err, &mc) || mc.Column != wd.LeadConcentration {
		t.Fatalf("expected MissingColumnError for lead, got %v", err)
	}

	stdout := runCmd(t, "charts", data, "--out", filepath.Join(home, "lenient"), "--strict=false")
	if !strings.Contains(stdout, "05 lead_vs_infant_mortality: skipped") || !strings.Contains(stdout, "02 quality_disease_correlation: skipped") {
		t.Fatalf("expected skipped charts:\n%s", stdout)
	}
}

func TestCLI_MissingDatasetIsLoadError(t *testing.T) {
	isolateHome(t)
	_, err := execCmd("describe", filepath.Join(t.TempDir(), "nope.csv"))
	var le *analysis.DataLoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected DataLoadError, got %v", err)
	}
}

func TestCLI_DescribeAggregateCorrelate(t *testing.T) {
	home := isolateHome(t)
	data := writeDataset(t, home)

	md := runCmd(t, "describe", data, "--markdown")
	if !strings.Contains(md, "[DATASET SUMMARY]") || !strings.Contains(md, "Rows: 9") {
		t.Fatalf("unexpected describe output:\n%s", md)
	}

	agg := runCmd(t, "aggregate", data, "--by", wd.Region, "--cols", wd.DiarrhealCases, "--sort", wd.DiarrhealCases, "--desc", "--markdown")
	lines := strings.Split(strings.TrimSpace(agg), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[2], "| North") {
		t.Fatalf("unexpected aggregate output:\n%s", agg)
	}

	corr := runCmd(t, "correlate", data)
	if !strings.Contains(corr, wd.LeadConcentration) || !strings.Contains(corr, wd.TyphoidCases) {
		t.Fatalf("unexpected correlate output:\n%s", corr)
	}

	if _, err := execCmd("aggregate", data, "--by", "Continent"); err == nil {
		t.Fatal("expected error for unknown group column")
	}
}

func TestCLI_ConfigShowSet(t *testing.T) {
	home := isolateHome(t)
	runCmd(t, "config", "set", "format", "svg")
	runCmd(t, "config", "set", "parallel", "3")
	if _, err := os.Stat(filepath.Join(home, ".waterborne", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "format: svg") || !strings.Contains(out, "parallel: 3") {
		t.Fatalf("unexpected config show:\n%s", out)
	}
	if _, err := execCmd("config", "set", "parallel", "0"); err == nil {
		t.Fatal("expected validation error for parallel=0")
	}
	if _, err := execCmd("config", "set", "colour", "red"); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestCLI_LogFormatIsCaseInsensitive(t *testing.T) {
	home := isolateHome(t)
	data := writeDataset(t, home)
	cfgPath := filepath.Join(home, "upper.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_format: JSON\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out := runCmd(t, "describe", data, "--config", cfgPath); !strings.Contains(out, "=== Dataset Info ===") {
		t.Fatalf("unexpected describe output:\n%s", out)
	}
	runCmd(t, "describe", data, "--log-format", "JSON")
	if _, err := execCmd("describe", data, "--log-format", "xml"); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}
