package cmd

import (
	"fmt"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	"github.com/KaramelBytes/waterborne-cli/internal/report"
	wd "github.com/KaramelBytes/waterborne-cli/internal/waterdata"
	"github.com/spf13/cobra"
)

var (
	aggBy       string
	aggCols     []string
	aggSort     string
	aggDesc     bool
	aggMarkdown bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [file]",
	Short: "Print per-group means of numeric columns",
	Long: `Group rows by a column and print the mean of each value column per group.
Rows with a null key are dropped and nulls are skipped in means. Column names
contain commas, so pass --cols once per column. Without --cols the three
disease rates are used.`,
	Example: `  waterborne aggregate --by Country
  waterborne aggregate data.csv --by Region --cols "pH Level" --cols "Turbidity (NTU)" --sort "pH Level" --desc`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if aggBy == "" {
			return fmt.Errorf("--by is required")
		}
		cols := aggCols
		if len(cols) == 0 {
			cols = wd.DiseaseColumns()
		}
		t, err := loadTable(newRunContext(cmd), cmd, args)
		if err != nil {
			return err
		}
		g, err := analysis.GroupMeans(t, aggBy, cols)
		if err != nil {
			return err
		}
		if aggSort != "" {
			if g, err = g.SortBy(aggSort, aggDesc); err != nil {
				return err
			}
		}
		if aggMarkdown {
			fmt.Fprint(cmd.OutOrStdout(), g.Markdown())
			return nil
		}
		report.New(cmd.OutOrStdout()).Grouped(g)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	addLoadFlags(aggregateCmd)
	aggregateCmd.Flags().StringVar(&aggBy, "by", "", "group-by column")
	aggregateCmd.Flags().StringArrayVar(&aggCols, "cols", nil, "value column (repeatable)")
	aggregateCmd.Flags().StringVar(&aggSort, "sort", "", "order groups by this value column")
	aggregateCmd.Flags().BoolVar(&aggDesc, "desc", false, "sort descending")
	aggregateCmd.Flags().BoolVar(&aggMarkdown, "markdown", false, "print Markdown instead of a table")
}
