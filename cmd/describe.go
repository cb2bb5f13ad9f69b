package cmd

import (
	"fmt"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	"github.com/KaramelBytes/waterborne-cli/internal/report"
	"github.com/spf13/cobra"
)

var descMarkdown bool

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print dataset info and summary statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(newRunContext(cmd), cmd, args)
		if err != nil {
			return err
		}
		d := analysis.Describe(t)
		if descMarkdown {
			fmt.Fprint(cmd.OutOrStdout(), d.Markdown())
			return nil
		}
		report.New(cmd.OutOrStdout()).Describe(d)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addLoadFlags(describeCmd)
	describeCmd.Flags().BoolVar(&descMarkdown, "markdown", false, "print Markdown instead of tables")
}
