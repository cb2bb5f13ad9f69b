package cmd

import (
	"fmt"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	"github.com/KaramelBytes/waterborne-cli/internal/report"
	wd "github.com/KaramelBytes/waterborne-cli/internal/waterdata"
	"github.com/spf13/cobra"
)

var corrMarkdown bool

var correlateCmd = &cobra.Command{
	Use:   "correlate [file]",
	Short: "Print Pearson correlations of water-quality metrics against disease rates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(newRunContext(cmd), cmd, args)
		if err != nil {
			return err
		}
		m, err := analysis.Correlate(t, wd.QualityColumns(), wd.DiseaseColumns())
		if err != nil {
			return err
		}
		if corrMarkdown {
			fmt.Fprint(cmd.OutOrStdout(), m.Markdown())
			return nil
		}
		report.New(cmd.OutOrStdout()).Correlation(m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	addLoadFlags(correlateCmd)
	correlateCmd.Flags().BoolVar(&corrMarkdown, "markdown", false, "print Markdown instead of a table")
}
