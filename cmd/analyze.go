package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	"github.com/KaramelBytes/waterborne-cli/internal/charts"
	"github.com/KaramelBytes/waterborne-cli/internal/eda"
	"github.com/KaramelBytes/waterborne-cli/internal/logging"
	"github.com/KaramelBytes/waterborne-cli/internal/report"
	"github.com/KaramelBytes/waterborne-cli/internal/utils"
	wd "github.com/KaramelBytes/waterborne-cli/internal/waterdata"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Chart flags shared by analyze and charts.
var (
	chOut      string
	chOnly     []string
	chFormat   string
	chParallel int
	chStrict   bool
)

func addChartFlags(c *cobra.Command) {
	c.Flags().StringVarP(&chOut, "out", "o", "", "write charts to this directory (default <output_dir>/<run-id>)")
	c.Flags().StringSliceVar(&chOnly, "only", nil, "render only these charts, by number or name (e.g. 1,4,gdp_vs_diarrhea)")
	c.Flags().StringVar(&chFormat, "format", "", "image format: png|svg (overrides config)")
	c.Flags().IntVar(&chParallel, "parallel", 0, "charts rendered concurrently (overrides config)")
	c.Flags().BoolVar(&chStrict, "strict", true, "fail on a missing column instead of skipping the chart")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Load the dataset, print the report and render every chart",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newRunContext(cmd)
		t, err := loadTable(ctx, cmd, args)
		if err != nil {
			return err
		}
		p := report.New(cmd.OutOrStdout())
		p.Describe(analysis.Describe(t))
		if t.Has(wd.Country) && len(t.Missing(wd.DiseaseColumns()...)) == 0 {
			g, err := analysis.GroupMeans(t, wd.Country, wd.DiseaseColumns())
			if err != nil {
				return err
			}
			p.Grouped(g)
		}
		if len(t.Missing(append(wd.QualityColumns(), wd.DiseaseColumns()...)...)) == 0 {
			m, err := analysis.Correlate(t, wd.QualityColumns(), wd.DiseaseColumns())
			if err != nil {
				return err
			}
			p.Correlation(m)
		}
		return renderCharts(ctx, cmd, t)
	},
}

func newRunContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.ContextWithRunID(ctx, uuid.NewString())
}

// renderCharts runs the chart steps and writes a manifest.json next to the
// figures.
func renderCharts(ctx context.Context, cmd *cobra.Command, t *analysis.Table) error {
	f := cmd.Flags()
	format := cfg.Format
	if f.Changed("format") {
		format = chFormat
	}
	ff, err := charts.ParseFormat(format)
	if err != nil {
		return err
	}
	parallel := cfg.Parallel
	if f.Changed("parallel") {
		if chParallel < 1 {
			return fmt.Errorf("invalid --parallel: %d (must be >= 1)", chParallel)
		}
		parallel = chParallel
	}
	strict := cfg.Strict
	if f.Changed("strict") {
		strict = chStrict
	}
	runID := logging.RunID(ctx)
	outDir := chOut
	if outDir == "" {
		outDir = filepath.Join(cfg.OutputDir, runID)
	}

	log := logging.WithContext(ctx, "cli")
	log.Info("rendering charts", "out", outDir, "format", ff, "parallel", parallel, "strict", strict)
	started := time.Now()
	results, runErr := eda.Run(ctx, t, eda.Options{
		OutDir:   outDir,
		Format:   ff,
		Width:    cfg.Width,
		Height:   cfg.Height,
		SizeMin:  cfg.SizeMin,
		SizeMax:  cfg.SizeMax,
		Parallel: parallel,
		Strict:   strict,
		Only:     chOnly,
	})
	if len(results) > 0 {
		if err := writeManifest(outDir, runID, t, started, results); err != nil {
			log.Warn("manifest not written", "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	written := 0
	for _, r := range results {
		if r.Skipped {
			fmt.Fprintf(out, "- %02d %s: skipped (%s)\n", r.Num, r.Name, r.Reason)
			continue
		}
		written++
		fmt.Fprintf(out, "✓ %02d %s → %s\n", r.Num, r.Name, r.Path)
	}
	fmt.Fprintf(out, "%d chart(s) written to %s\n", written, outDir)
	return nil
}

type manifest struct {
	RunID    string       `json:"run_id"`
	Dataset  string       `json:"dataset"`
	Rows     int          `json:"rows"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Charts   []eda.Result `json:"charts"`
}

func writeManifest(dir, runID string, t *analysis.Table, started time.Time, results []eda.Result) error {
	b, err := utils.PrettyJSON(manifest{
		RunID:    runID,
		Dataset:  t.Name,
		Rows:     t.Rows(),
		Started:  started.UTC(),
		Finished: time.Now().UTC(),
		Charts:   results,
	})
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, "manifest.json"), b)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addLoadFlags(analyzeCmd)
	addChartFlags(analyzeCmd)
}
