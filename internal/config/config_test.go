package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Dataset != "water_pollution_disease.csv" || c.OutputDir != "charts" || c.Format != "png" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Width != 1200 || c.Height != 800 || c.SizeMin != 2 || c.SizeMax != 10 {
		t.Fatalf("unexpected figure defaults: %+v", c)
	}
	if !c.Strict || c.Parallel != 1 || c.SheetIndex != 1 || c.Decimal != "." {
		t.Fatalf("unexpected run defaults: %+v", c)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.Format = "svg"
	c.Parallel = 4
	c.Strict = false
	if err := Save(c, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".waterborne", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Format != "svg" || got.Parallel != 4 || got.Strict {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("output_dir: from-file\nwidth: 640\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WATERBORNE_OUTPUT_DIR", "from-env")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.OutputDir != "from-env" {
		t.Fatalf("env should win, got %q", c.OutputDir)
	}
	if c.Width != 640 {
		t.Fatalf("file value lost, got %d", c.Width)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Global {
		return Global{Format: "png", Width: 10, Height: 10, SizeMin: 2, SizeMax: 10, Parallel: 1, LogLevel: "info", LogFormat: "text"}
	}
	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cases := map[string]func(*Global){
		"format":    func(g *Global) { g.Format = "gif" },
		"size":      func(g *Global) { g.Width = 0 },
		"dot size":  func(g *Global) { g.SizeMax = 1 },
		"parallel":  func(g *Global) { g.Parallel = 0 },
		"delimiter": func(g *Global) { g.Delimiter = ";;" },
		"log":       func(g *Global) { g.LogFormat = "xml" },
		"level":     func(g *Global) { g.LogLevel = "loud" },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			g := base()
			mut(&g)
			if err := g.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRune(t *testing.T) {
	if Rune("") != 0 || Rune(";") != ';' || Rune("µ") != 'µ' {
		t.Fatal("unexpected rune conversion")
	}
}

func TestLoadNormalisesCase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("log_format: JSON\nlog_level: DEBUG\nformat: SVG\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.LogFormat != "json" || c.LogLevel != "debug" || c.Format != "svg" {
		t.Fatalf("values not lowercased: %+v", c)
	}
}
