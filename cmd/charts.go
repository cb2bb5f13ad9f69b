package cmd

import (
	"github.com/spf13/cobra"
)

var chartsCmd = &cobra.Command{
	Use:   "charts [file]",
	Short: "Render the charts without printing the report",
	Long: `Render the analysis charts into <output_dir>/<run-id>/NN_<name>.<png|svg>.

  1 disease_by_country           6 yearly_trends (needs a Year column)
  2 quality_disease_correlation  7 health_by_region
  3 disease_by_treatment         8 disease_by_source
  4 clean_water_vs_diarrhea      9 gdp_vs_diarrhea
  5 lead_vs_infant_mortality`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newRunContext(cmd)
		t, err := loadTable(ctx, cmd, args)
		if err != nil {
			return err
		}
		return renderCharts(ctx, cmd, t)
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	addLoadFlags(chartsCmd)
	addChartFlags(chartsCmd)
}
